package eval_test

import (
	"testing"

	"github.com/jmchacon/basic/basicerr"
	"github.com/jmchacon/basic/eval"
	"github.com/jmchacon/basic/token"
	"github.com/jmchacon/basic/value"
)

// testEnv is a minimal eval.Env stub: scalars come from a map, every
// array element reads as its type's zero value, and every FN call fails
// with UndefinedFunction.
type testEnv struct {
	scalars map[string]value.Value
	mem     [65536]byte
	rndSeq  []float64
	rndIdx  int
}

func newTestEnv() *testEnv {
	return &testEnv{scalars: map[string]value.Value{}}
}

func (e *testEnv) GetScalar(name string) value.Value {
	if v, ok := e.scalars[name]; ok {
		return v
	}
	if len(name) > 0 && name[len(name)-1] == '$' {
		return value.String(nil)
	}
	return value.Number(0)
}

func (e *testEnv) GetArrayElem(name string, isString bool, subs []int) (value.Value, error) {
	return value.ZeroFor(isString), nil
}

func (e *testEnv) CallFunction(name string, arg value.Value) (value.Value, error) {
	return value.Value{}, basicerr.New(basicerr.UndefinedFunction)
}

func (e *testEnv) Peek(addr uint16) (byte, error) {
	return e.mem[addr], nil
}

func (e *testEnv) Rnd(seed float64) float64 {
	if e.rndIdx < len(e.rndSeq) {
		v := e.rndSeq[e.rndIdx]
		e.rndIdx++
		return v
	}
	return 0.5
}

func (e *testEnv) Fre(x float64) float64 { return 1000 }
func (e *testEnv) Pos(x float64) float64 { return 0 }

func evalTok(t *testing.T, env *testEnv, toks []byte) value.Value {
	t.Helper()
	v, pos, err := eval.New(env, toks, 0).Eval()
	if err != nil {
		t.Fatalf("eval(%v) error: %v", toks, err)
	}
	if pos != len(toks) {
		t.Fatalf("eval(%v) stopped at %d, wanted %d", toks, pos, len(toks))
	}
	return v
}

func evalTokErr(t *testing.T, env *testEnv, toks []byte) error {
	t.Helper()
	_, _, err := eval.New(env, toks, 0).Eval()
	if err == nil {
		t.Fatalf("eval(%v) succeeded, wanted error", toks)
	}
	return err
}

func TestArithmeticPrecedence(t *testing.T) {
	env := newTestEnv()
	cases := []struct {
		expr string
		want float64
	}{
		{"2+3*4", 14},
		{"(2+3)*4", 20},
		{"2*3+4", 10},
		{"2+3^2", 11},
		{"-2^2", -4},
		{"2^3^2", 512}, // right-associative: 2^(3^2)
		{"10-2-3", 5},  // left-associative
		{"10/2/5", 1},
	}
	for _, c := range cases {
		v := evalTok(t, env, token.TokenizeString(c.expr))
		if !v.IsNumber() || v.Num != c.want {
			t.Errorf("%s = %v, want %v", c.expr, v, c.want)
		}
	}
}

func TestStringConcatAndCompare(t *testing.T) {
	env := newTestEnv()
	v := evalTok(t, env, token.TokenizeString(`"AB"+"CD"`))
	if !v.IsString() || string(v.Str) != "ABCD" {
		t.Errorf(`"AB"+"CD" = %v`, v)
	}
	v = evalTok(t, env, token.TokenizeString(`"AB"<"AC"`))
	if v.Num != 1 {
		t.Errorf(`"AB"<"AC" = %v, want 1`, v)
	}
	v = evalTok(t, env, token.TokenizeString(`"AB"="AB"`))
	if v.Num != 1 {
		t.Errorf(`"AB"="AB" = %v, want 1`, v)
	}
}

func TestTypeMismatch(t *testing.T) {
	env := newTestEnv()
	err := evalTokErr(t, env, token.TokenizeString(`"AB"+5`))
	be, ok := err.(*basicerr.Error)
	if !ok || be.Code != basicerr.TypeMismatch {
		t.Errorf("err = %v, want TypeMismatch", err)
	}
}

func TestDivisionByZero(t *testing.T) {
	env := newTestEnv()
	err := evalTokErr(t, env, token.TokenizeString("5/0"))
	be, ok := err.(*basicerr.Error)
	if !ok || be.Code != basicerr.DivisionByZero {
		t.Errorf("err = %v, want DivisionByZero", err)
	}
}

func TestLogicalOperators(t *testing.T) {
	env := newTestEnv()
	toks := []byte{'1', byte(token.AND), '3'}
	v := evalTok(t, env, toks)
	if v.Num != 1 {
		t.Errorf("1 AND 3 = %v, want 1", v)
	}
	toks = []byte{'1', byte(token.OR), '2'}
	v = evalTok(t, env, toks)
	if v.Num != 3 {
		t.Errorf("1 OR 2 = %v, want 3", v)
	}
	toks = append([]byte{byte(token.NOT)}, '0')
	v = evalTok(t, env, toks)
	if v.Num != -1 {
		t.Errorf("NOT 0 = %v, want -1", v)
	}
}

func TestBuiltinMath(t *testing.T) {
	env := newTestEnv()
	toks := append([]byte{byte(token.ABS)}, token.TokenizeString("(-5)")...)
	v := evalTok(t, env, toks)
	if v.Num != 5 {
		t.Errorf("ABS(-5) = %v, want 5", v)
	}
	toks = append([]byte{byte(token.SQR)}, []byte("(9)")...)
	v = evalTok(t, env, toks)
	if v.Num != 3 {
		t.Errorf("SQR(9) = %v, want 3", v)
	}
	toks = append([]byte{byte(token.SQR)}, token.TokenizeString("(-1)")...)
	err := evalTokErr(t, env, toks)
	be, ok := err.(*basicerr.Error)
	if !ok || be.Code != basicerr.IllegalQuantity {
		t.Errorf("SQR(-1) err = %v, want IllegalQuantity", err)
	}
}

func TestBuiltinStringFuncs(t *testing.T) {
	env := newTestEnv()
	toks := append([]byte{byte(token.LEN)}, []byte(`("HELLO")`)...)
	v := evalTok(t, env, toks)
	if v.Num != 5 {
		t.Errorf("LEN(\"HELLO\") = %v, want 5", v)
	}

	toks = append([]byte{byte(token.LEFTD)}, []byte(`("HELLO",2)`)...)
	v = evalTok(t, env, toks)
	if string(v.Str) != "HE" {
		t.Errorf(`LEFT$("HELLO",2) = %q, want "HE"`, v.Str)
	}

	toks = append([]byte{byte(token.RIGHTD)}, []byte(`("HELLO",2)`)...)
	v = evalTok(t, env, toks)
	if string(v.Str) != "LO" {
		t.Errorf(`RIGHT$("HELLO",2) = %q, want "LO"`, v.Str)
	}

	toks = append([]byte{byte(token.MIDD)}, []byte(`("HELLO",2,3)`)...)
	v = evalTok(t, env, toks)
	if string(v.Str) != "ELL" {
		t.Errorf(`MID$("HELLO",2,3) = %q, want "ELL"`, v.Str)
	}

	toks = append([]byte{byte(token.MIDD)}, []byte(`("HELLO",9)`)...)
	v = evalTok(t, env, toks)
	if string(v.Str) != "" {
		t.Errorf(`MID$("HELLO",9) = %q, want ""`, v.Str)
	}

	toks = append([]byte{byte(token.CHRD)}, []byte("(65)")...)
	v = evalTok(t, env, toks)
	if string(v.Str) != "A" {
		t.Errorf("CHR$(65) = %q, want \"A\"", v.Str)
	}

	toks = append([]byte{byte(token.ASC)}, []byte(`("A")`)...)
	v = evalTok(t, env, toks)
	if v.Num != 65 {
		t.Errorf(`ASC("A") = %v, want 65`, v)
	}

	toks = append([]byte{byte(token.VAL)}, []byte(`("  42 FEET")`)...)
	v = evalTok(t, env, toks)
	if v.Num != 42 {
		t.Errorf(`VAL("  42 FEET") = %v, want 42`, v)
	}
}

func TestPeekReadsMemoryWithWraparound(t *testing.T) {
	env := newTestEnv()
	env.mem[34662] = 7
	toks := append([]byte{byte(token.PEEK)}, token.TokenizeString("(-30874)")...)
	v := evalTok(t, env, toks)
	if v.Num != 7 {
		t.Errorf("PEEK(-30874) = %v, want 7 (address wraparound to 34662)", v)
	}
}

func TestTabOutsidePrintIsSyntaxError(t *testing.T) {
	env := newTestEnv()
	toks := append([]byte{byte(token.TABP)}, []byte("10)")...)
	err := evalTokErr(t, env, toks)
	be, ok := err.(*basicerr.Error)
	if !ok || be.Code != basicerr.SyntaxError {
		t.Errorf("TAB( outside PRINT err = %v, want SyntaxError", err)
	}
}

func TestTabInsidePrint(t *testing.T) {
	env := newTestEnv()
	toks := append([]byte{byte(token.TABP)}, []byte("10)")...)
	e := eval.New(env, toks, 0)
	e.InPrint = true
	v, _, err := e.Eval()
	if err != nil {
		t.Fatalf("TAB(10) err: %v", err)
	}
	if v.Kind != value.KindTab || v.Num != 10 {
		t.Errorf("TAB(10) = %v, want Tab(10)", v)
	}
}
