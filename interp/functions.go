package interp

import (
	"github.com/jmchacon/basic/basicerr"
	"github.com/jmchacon/basic/eval"
	"github.com/jmchacon/basic/token"
	"github.com/jmchacon/basic/value"
	"github.com/jmchacon/basic/vars"
)

// execDef parses "DEF FN name(param)=expr" and stores the definition,
// per spec §4.7. The body is kept as a token slice and re-evaluated on
// every call rather than compiled, the same deferred-evaluation
// approach the rest of the interpreter uses for expressions.
func (i *Interpreter) execDef(toks []byte, pos int) (int, ctrl, error) {
	pos = skipSpaces(toks, pos)
	if pos >= len(toks) || token.Token(toks[pos]) != token.FN {
		return pos, ctrlNext, basicerr.New(basicerr.SyntaxError)
	}
	pos++
	pos = skipSpaces(toks, pos)
	start := pos
	if pos >= len(toks) || !isLetterByte(toks[pos]) {
		return pos, ctrlNext, basicerr.New(basicerr.SyntaxError)
	}
	pos++
	for pos < len(toks) && isIdentCont(toks[pos]) {
		pos++
	}
	if pos < len(toks) && toks[pos] == '$' {
		pos++
	}
	fname, isString := vars.CanonicalName(string(toks[start:pos]))

	pos = skipSpaces(toks, pos)
	if pos >= len(toks) || toks[pos] != '(' {
		return pos, ctrlNext, basicerr.New(basicerr.SyntaxError)
	}
	pos++
	pos = skipSpaces(toks, pos)
	pstart := pos
	if pos >= len(toks) || !isLetterByte(toks[pos]) {
		return pos, ctrlNext, basicerr.New(basicerr.SyntaxError)
	}
	pos++
	for pos < len(toks) && isIdentCont(toks[pos]) {
		pos++
	}
	if pos < len(toks) && toks[pos] == '$' {
		pos++
	}
	param, _ := vars.CanonicalName(string(toks[pstart:pos]))
	pos = skipSpaces(toks, pos)
	if pos >= len(toks) || toks[pos] != ')' {
		return pos, ctrlNext, basicerr.New(basicerr.SyntaxError)
	}
	pos++
	pos = skipSpaces(toks, pos)
	if pos >= len(toks) || token.Token(toks[pos]) != token.EQ {
		return pos, ctrlNext, basicerr.New(basicerr.SyntaxError)
	}
	pos++

	bodyStart := pos
	for pos < len(toks) && toks[pos] != ':' {
		pos++
	}
	body := append([]byte(nil), toks[bodyStart:pos]...)
	i.Funcs.Define(fname, param, body, isString)
	return pos, ctrlNext, nil
}

// CallFunction implements eval.Env: it binds arg to the function's
// parameter (saving and restoring the parameter's prior scalar value so
// recursive/nested FN calls unwind in LIFO order), evaluates the stored
// body, and checks the result's kind against the function's declared
// type.
func (i *Interpreter) CallFunction(name string, arg value.Value) (value.Value, error) {
	fn, err := i.Funcs.Lookup(name)
	if err != nil {
		return value.Value{}, err
	}
	if arg.IsString() != isString(fn.Param) {
		return value.Value{}, basicerr.New(basicerr.TypeMismatch)
	}

	old := i.Scalars.Get(fn.Param)
	if err := i.Scalars.Set(fn.Param, arg, i.roots); err != nil {
		return value.Value{}, err
	}
	defer func() {
		_ = i.Scalars.Set(fn.Param, old, i.roots)
	}()

	v, pos, err := eval.New(i, fn.Body, 0).Eval()
	if err != nil {
		return value.Value{}, err
	}
	if pos != len(fn.Body) {
		return value.Value{}, basicerr.New(basicerr.SyntaxError)
	}
	if v.IsString() != fn.IsString {
		return value.Value{}, basicerr.New(basicerr.TypeMismatch)
	}
	return v, nil
}

func isString(canonicalName string) bool {
	return len(canonicalName) > 0 && canonicalName[len(canonicalName)-1] == '$'
}
