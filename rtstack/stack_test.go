package rtstack

import (
	"testing"

	"github.com/jmchacon/basic/basicerr"
)

func TestForNextUnwindsInnerLoops(t *testing.T) {
	s := New()
	if err := s.PushFor(ForFrame{Var: "I"}); err != nil {
		t.Fatal(err)
	}
	if err := s.PushFor(ForFrame{Var: "J"}); err != nil {
		t.Fatal(err)
	}
	idx, f, ok := s.FindFor("I")
	if !ok || f.Var != "I" {
		t.Fatalf("FindFor(I) = (%d,%v,%v)", idx, f, ok)
	}
	s.PopTo(idx)
	if s.Depth() != 1 {
		t.Fatalf("Depth after unwinding NEXT I = %d, want 1", s.Depth())
	}
}

func TestNextWithoutForOnEmptyStack(t *testing.T) {
	s := New()
	if _, _, ok := s.FindTopFor(); ok {
		t.Fatalf("FindTopFor on empty stack should not find anything")
	}
}

func TestReturnWithoutGosub(t *testing.T) {
	s := New()
	if _, err := s.PopGosub(); err == nil {
		t.Fatalf("expected RG error")
	} else if e, ok := err.(*basicerr.Error); !ok || e.Code != basicerr.ReturnWithoutGosub {
		t.Fatalf("wrong error: %v", err)
	}
}

func TestReturnDiscardsForFramesAboveGosub(t *testing.T) {
	s := New()
	if err := s.PushGosub(GosubFrame{ResumeLine: 10}); err != nil {
		t.Fatal(err)
	}
	if err := s.PushFor(ForFrame{Var: "I"}); err != nil {
		t.Fatal(err)
	}
	g, err := s.PopGosub()
	if err != nil {
		t.Fatal(err)
	}
	if g.ResumeLine != 10 {
		t.Fatalf("ResumeLine = %d, want 10", g.ResumeLine)
	}
	if s.Depth() != 0 {
		t.Fatalf("Depth after RETURN = %d, want 0", s.Depth())
	}
}

func TestDepthCap(t *testing.T) {
	s := New()
	for i := 0; i < MaxDepth; i++ {
		if err := s.PushGosub(GosubFrame{}); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}
	if err := s.PushGosub(GosubFrame{}); err == nil {
		t.Fatalf("expected OM at depth cap")
	} else if e, ok := err.(*basicerr.Error); !ok || e.Code != basicerr.OutOfMemory {
		t.Fatalf("wrong error: %v", err)
	}
}
