package interp_test

import (
	"bytes"
	"testing"

	"github.com/jmchacon/basic/basicerr"
	"github.com/jmchacon/basic/breaksignal"
	"github.com/jmchacon/basic/interp"
	"github.com/jmchacon/basic/screen"
)

// stubInput feeds INPUT/GET a fixed queue of lines and keystrokes.
type stubInput struct {
	lines []string
	keys  []byte
}

func (s *stubInput) ReadLine() (string, error) {
	if len(s.lines) == 0 {
		return "", nil
	}
	l := s.lines[0]
	s.lines = s.lines[1:]
	return l, nil
}

func (s *stubInput) ReadKey() (byte, bool, error) {
	if len(s.keys) == 0 {
		return 0, false, nil
	}
	k := s.keys[0]
	s.keys = s.keys[1:]
	return k, true, nil
}

func newFixture(input *stubInput) (*interp.Interpreter, *bytes.Buffer) {
	var buf bytes.Buffer
	sink := screen.NewColumnWriter(&buf, 40)
	if input == nil {
		input = &stubInput{}
	}
	i := interp.New(10000, sink, input, breaksignal.None())
	return i, &buf
}

func run(t *testing.T, i *interp.Interpreter, lines []string) *interp.Interpreter {
	t.Helper()
	for _, l := range lines {
		if err := i.ExecuteLine(l); err != nil {
			t.Fatalf("ExecuteLine(%q) error: %v", l, err)
		}
	}
	return i
}

func TestPrintHelloWorld(t *testing.T) {
	i, buf := newFixture(nil)
	run(t, i, []string{`10 PRINT "HELLO"`, "RUN"})
	if buf.String() != "HELLO\n" {
		t.Errorf("output = %q, want %q", buf.String(), "HELLO\n")
	}
}

func TestForNextCountsUp(t *testing.T) {
	i, buf := newFixture(nil)
	run(t, i, []string{"10 FOR I=1 TO 5 : PRINT I : NEXT I", "RUN"})
	want := " 1\n 2\n 3\n 4\n 5\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestForNextZeroTripSkipsBody(t *testing.T) {
	i, buf := newFixture(nil)
	run(t, i, []string{
		`10 FOR I=5 TO 1`,
		`20 PRINT "BODY"`,
		`30 NEXT I`,
		`40 PRINT "AFTER"`,
		"RUN",
	})
	if buf.String() != "AFTER\n" {
		t.Errorf("output = %q, want skip of loop body", buf.String())
	}
}

func TestDataReadRestore(t *testing.T) {
	i, buf := newFixture(nil)
	run(t, i, []string{
		`10 DATA 1,2,"X",4`,
		`20 READ A,B,C$,D`,
		`30 PRINT A;B;C$;D`,
		`40 RESTORE`,
		`50 READ E`,
		`60 PRINT E`,
		"RUN",
	})
	want := " 1  2 X 4\n 1\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestDefFn(t *testing.T) {
	i, buf := newFixture(nil)
	run(t, i, []string{
		`10 DEF FNA(X)=X*X+1`,
		`20 PRINT FNA(3); FNA(5)`,
		"RUN",
	})
	want := " 10  26\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestGosubReturn(t *testing.T) {
	i, buf := newFixture(nil)
	run(t, i, []string{
		`10 GOSUB 100`,
		`20 PRINT "BACK"`,
		`30 END`,
		`100 PRINT "IN SUB"`,
		`110 RETURN`,
		"RUN",
	})
	want := "IN SUB\nBACK\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestReturnWithoutGosub(t *testing.T) {
	i, _ := newFixture(nil)
	err := i.ExecuteLine("RETURN")
	be, ok := err.(*basicerr.Error)
	if !ok || be.Code != basicerr.ReturnWithoutGosub {
		t.Errorf("err = %v, want ReturnWithoutGosub", err)
	}
}

func TestDivisionByZeroStopsProgramAndPreservesState(t *testing.T) {
	i, buf := newFixture(nil)
	run(t, i, []string{"10 A=5", "20 B=0", "30 PRINT A/B"})
	err := i.ExecuteLine("RUN")
	be, ok := err.(*basicerr.Error)
	if !ok || be.Code != basicerr.DivisionByZero || be.Line != 30 {
		t.Fatalf("err = %v, want DivisionByZero IN 30", err)
	}
	buf.Reset()
	if err := i.ExecuteLine("PRINT A"); err != nil {
		t.Fatalf("PRINT A after error: %v", err)
	}
	if buf.String() != " 5\n" {
		t.Errorf("PRINT A = %q, want %q (state preserved across error)", buf.String(), " 5\n")
	}
}

func TestArrayDimAndSubscriptOutOfRange(t *testing.T) {
	i, buf := newFixture(nil)
	run(t, i, []string{"10 DIM A(5)", "20 A(3)=7", "30 PRINT A(3)"})
	if err := i.ExecuteLine("RUN"); err != nil {
		t.Fatalf("RUN error: %v", err)
	}
	if buf.String() != " 7\n" {
		t.Errorf("PRINT A(3) = %q, want \" 7\\n\"", buf.String())
	}
	err := i.ExecuteLine("PRINT A(6)")
	be, ok := err.(*basicerr.Error)
	if !ok || be.Code != basicerr.SubscriptOutOfRange {
		t.Errorf("PRINT A(6) err = %v, want SubscriptOutOfRange", err)
	}
}

func TestLineEditingAndList(t *testing.T) {
	i, buf := newFixture(nil)
	run(t, i, []string{`10 PRINT "A"`, `30 PRINT "C"`, `20 PRINT "B"`})
	if err := i.ExecuteLine("LIST"); err != nil {
		t.Fatalf("LIST error: %v", err)
	}
	want := "10 PRINT \"A\"\n20 PRINT \"B\"\n30 PRINT \"C\"\n"
	if buf.String() != want {
		t.Errorf("LIST = %q, want %q", buf.String(), want)
	}
	buf.Reset()
	if err := i.ExecuteLine("20"); err != nil {
		t.Fatalf("delete line 20: %v", err)
	}
	if err := i.ExecuteLine("LIST"); err != nil {
		t.Fatalf("LIST error: %v", err)
	}
	want = "10 PRINT \"A\"\n30 PRINT \"C\"\n"
	if buf.String() != want {
		t.Errorf("LIST after delete = %q, want %q", buf.String(), want)
	}
}

func TestPeekPokeRoundTrip(t *testing.T) {
	i, _ := newFixture(nil)
	if err := i.ExecuteLine("POKE 1024,65"); err != nil {
		t.Fatalf("POKE: %v", err)
	}
	b, err := i.Peek(1024)
	if err != nil || b != 65 {
		t.Errorf("Peek(1024) = %v,%v want 65,nil", b, err)
	}
}

func TestOnGotoDispatches(t *testing.T) {
	i, buf := newFixture(nil)
	run(t, i, []string{
		`10 X=2`,
		`20 ON X GOTO 100,200,300`,
		`100 PRINT "ONE" : END`,
		`200 PRINT "TWO" : END`,
		`300 PRINT "THREE" : END`,
		"RUN",
	})
	if buf.String() != "TWO\n" {
		t.Errorf("output = %q, want %q", buf.String(), "TWO\n")
	}
}

func TestInputRedoOnTypeMismatch(t *testing.T) {
	input := &stubInput{lines: []string{"ABC", "42"}}
	i, buf := newFixture(input)
	run(t, i, []string{`10 INPUT N`, `20 PRINT N`})
	if err := i.ExecuteLine("RUN"); err != nil {
		t.Fatalf("RUN error: %v", err)
	}
	if buf.String() != "? ?REDO FROM START\n?  42\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPendingBreakStopsRun(t *testing.T) {
	flag := breaksignal.NewFlag()
	var buf bytes.Buffer
	sink := screen.NewColumnWriter(&buf, 40)
	i := interp.New(10000, sink, &stubInput{}, flag)
	run(t, i, []string{
		`10 PRINT "FIRST"`,
		`20 PRINT "SECOND"`,
	})
	flag.Raise()
	err := i.ExecuteLine("RUN")
	be, ok := err.(*basicerr.Error)
	if !ok || be.Code != basicerr.Break {
		t.Fatalf("err = %v, want Break", err)
	}
}
