package vars

import (
	"testing"

	"github.com/jmchacon/basic/basicerr"
	"github.com/jmchacon/basic/memimg"
	"github.com/jmchacon/basic/strheap"
	"github.com/jmchacon/basic/value"
)

func newTestHeap() *strheap.Heap {
	img := memimg.New(4096)
	_ = img.SetStrend(16)
	return strheap.New(img)
}

func noRoots() []*strheap.Descriptor { return nil }

func TestCanonicalName(t *testing.T) {
	tests := []struct {
		raw      string
		wantName string
		wantStr  bool
	}{
		{"A", "A", false},
		{"AB", "AB", false},
		{"ABC", "AB", false},
		{"A$", "A$", true},
		{"ABCDE$", "AB$", true},
	}
	for _, tc := range tests {
		name, isStr := CanonicalName(tc.raw)
		if name != tc.wantName || isStr != tc.wantStr {
			t.Errorf("CanonicalName(%q) = (%q,%v), want (%q,%v)", tc.raw, name, isStr, tc.wantName, tc.wantStr)
		}
	}
}

func TestScalarsZeroInitAndTypeMismatch(t *testing.T) {
	s := NewScalars(newTestHeap())
	if got := s.Get("A"); got.Num != 0 {
		t.Fatalf("fresh numeric scalar = %v, want 0", got)
	}
	if got := s.Get("A$"); len(got.Str) != 0 {
		t.Fatalf("fresh string scalar = %v, want empty", got)
	}
	if err := s.Set("A", value.String([]byte("x")), noRoots); err == nil {
		t.Fatalf("expected TYPE MISMATCH setting a string into numeric A")
	} else if e, ok := err.(*basicerr.Error); !ok || e.Code != basicerr.TypeMismatch {
		t.Fatalf("wrong error: %v", err)
	}
}

func TestScalarsRoundTripString(t *testing.T) {
	s := NewScalars(newTestHeap())
	if err := s.Set("A$", value.String([]byte("HELLO")), noRoots); err != nil {
		t.Fatal(err)
	}
	got := s.Get("A$")
	if string(got.Str) != "HELLO" {
		t.Fatalf("A$ = %q, want HELLO", got.Str)
	}
}

func TestArraysDimAndSubscript(t *testing.T) {
	a := NewArrays(newTestHeap())
	if err := a.Dim("A", false, []uint16{5}); err != nil {
		t.Fatal(err)
	}
	if err := a.Set("A", []int{3}, value.Number(7), noRoots); err != nil {
		t.Fatal(err)
	}
	v, err := a.Get("A", false, []int{3})
	if err != nil {
		t.Fatal(err)
	}
	if v.Num != 7 {
		t.Fatalf("A(3) = %v, want 7", v.Num)
	}
	if _, err := a.Get("A", false, []int{6}); err == nil {
		t.Fatalf("expected BS error for out-of-range subscript")
	} else if e, ok := err.(*basicerr.Error); !ok || e.Code != basicerr.SubscriptOutOfRange {
		t.Fatalf("wrong error: %v", err)
	}
}

func TestArraysRedimensioned(t *testing.T) {
	a := NewArrays(newTestHeap())
	if err := a.Dim("A", false, []uint16{5}); err != nil {
		t.Fatal(err)
	}
	if err := a.Dim("A", false, []uint16{10}); err == nil {
		t.Fatalf("expected RD error on re-dimensioning")
	} else if e, ok := err.(*basicerr.Error); !ok || e.Code != basicerr.RedimensionedArray {
		t.Fatalf("wrong error: %v", err)
	}
}

func TestArraysImplicitDim(t *testing.T) {
	a := NewArrays(newTestHeap())
	v, err := a.Get("Z", false, []int{DefaultDim})
	if err != nil {
		t.Fatalf("implicit dim should allow index up to %d: %v", DefaultDim, err)
	}
	if v.Num != 0 {
		t.Fatalf("implicit array element = %v, want 0", v.Num)
	}
	if _, err := a.Get("Z", false, []int{DefaultDim + 1}); err == nil {
		t.Fatalf("expected BS beyond the implicit bound")
	}
}

func TestFunctionsUndefined(t *testing.T) {
	f := NewFunctions()
	if _, err := f.Lookup("X"); err == nil {
		t.Fatalf("expected UF error for undefined function")
	} else if e, ok := err.(*basicerr.Error); !ok || e.Code != basicerr.UndefinedFunction {
		t.Fatalf("wrong error: %v", err)
	}
	f.Define("X", "P", []byte("P"), false)
	fn, err := f.Lookup("X")
	if err != nil {
		t.Fatal(err)
	}
	if fn.Param != "P" {
		t.Fatalf("param = %q, want P", fn.Param)
	}
}
