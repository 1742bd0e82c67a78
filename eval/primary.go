package eval

import (
	"github.com/jmchacon/basic/basicerr"
	"github.com/jmchacon/basic/token"
	"github.com/jmchacon/basic/value"
	"github.com/jmchacon/basic/vars"
)

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
func isAlnum(b byte) bool { return isDigit(b) || isLetter(b) }
func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

// parsePrimary parses a parenthesized expression, a numeric or string
// literal, a variable/array reference, a built-in function call, a
// TAB(/SPC( pseudo-function, or an FN user-function call.
func (e *Evaluator) parsePrimary() (value.Value, error) {
	e.skipSpaces()
	if e.atEnd() {
		return value.Value{}, basicerr.New(basicerr.SyntaxError)
	}
	b := e.buf[e.pos]

	if b == '(' {
		e.pos++
		v, err := e.parseExpr(1)
		if err != nil {
			return value.Value{}, err
		}
		if err := e.expectByte(')'); err != nil {
			return value.Value{}, err
		}
		return v, nil
	}

	if b == '"' {
		return e.parseStringLiteral()
	}

	if isDigit(b) || b == '.' {
		return e.parseNumericLiteral()
	}

	if token.Token(b) == token.TABP {
		e.pos++
		return e.parseTabSpc(true)
	}
	if token.Token(b) == token.SPCP {
		e.pos++
		return e.parseTabSpc(false)
	}
	if token.Token(b) == token.FN {
		e.pos++
		return e.parseFnCall()
	}
	if bf, ok := builtins[token.Token(b)]; ok {
		e.pos++
		return e.callBuiltin(bf)
	}

	if isLetter(b) {
		return e.parseVariableOrArray()
	}

	return value.Value{}, basicerr.New(basicerr.SyntaxError)
}

func (e *Evaluator) parseStringLiteral() (value.Value, error) {
	e.pos++ // opening quote
	start := e.pos
	for !e.atEnd() && e.buf[e.pos] != '"' {
		e.pos++
	}
	s := append([]byte(nil), e.buf[start:e.pos]...)
	if !e.atEnd() {
		e.pos++ // closing quote
	}
	if len(s) > value.MaxStringLen {
		return value.Value{}, basicerr.New(basicerr.StringTooLong)
	}
	return value.String(s), nil
}

func (e *Evaluator) parseNumericLiteral() (value.Value, error) {
	start := e.pos
	for !e.atEnd() && isDigit(e.buf[e.pos]) {
		e.pos++
	}
	if !e.atEnd() && e.buf[e.pos] == '.' {
		e.pos++
		for !e.atEnd() && isDigit(e.buf[e.pos]) {
			e.pos++
		}
	}
	if !e.atEnd() && upper(e.buf[e.pos]) == 'E' {
		save := e.pos
		j := e.pos + 1
		if j < len(e.buf) && (e.buf[j] == '+' || e.buf[j] == '-') {
			j++
		}
		digitsStart := j
		for j < len(e.buf) && isDigit(e.buf[j]) {
			j++
		}
		if j > digitsStart {
			e.pos = j
		} else {
			e.pos = save
		}
	}
	n := parseFloatBASIC(string(e.buf[start:e.pos]))
	return value.Number(n), nil
}

// parseIdentifierName reads a raw identifier: a letter, optional
// trailing alnum, optional trailing '$'. Returns the raw (uncanonicalized) text.
func (e *Evaluator) parseIdentifierName() string {
	start := e.pos
	if e.atEnd() || !isLetter(e.buf[e.pos]) {
		return ""
	}
	e.pos++
	// Consume the rest of the identifier; only the first two characters
	// are significant (CanonicalName truncates), but the full spelling
	// must still be scanned past.
	for !e.atEnd() && isAlnum(e.buf[e.pos]) {
		e.pos++
	}
	if !e.atEnd() && e.buf[e.pos] == '$' {
		e.pos++
	}
	return string(e.buf[start:e.pos])
}

func (e *Evaluator) parseVariableOrArray() (value.Value, error) {
	raw := e.parseIdentifierName()
	if raw == "" {
		return value.Value{}, basicerr.New(basicerr.SyntaxError)
	}
	name, isString := vars.CanonicalName(raw)
	e.skipSpaces()
	if !e.atEnd() && e.buf[e.pos] == '(' {
		e.pos++
		args, err := e.parseArgList()
		if err != nil {
			return value.Value{}, err
		}
		subs, err := toIntSubscripts(args)
		if err != nil {
			return value.Value{}, err
		}
		return e.env.GetArrayElem(name, isString, subs)
	}
	return e.env.GetScalar(name), nil
}

func (e *Evaluator) parseFnCall() (value.Value, error) {
	e.skipSpaces()
	raw := e.parseIdentifierName()
	if raw == "" {
		return value.Value{}, basicerr.New(basicerr.SyntaxError)
	}
	name, _ := vars.CanonicalName(raw)
	if err := e.expectByte('('); err != nil {
		return value.Value{}, err
	}
	arg, err := e.parseExpr(1)
	if err != nil {
		return value.Value{}, err
	}
	if err := e.expectByte(')'); err != nil {
		return value.Value{}, err
	}
	return e.env.CallFunction(name, arg)
}

func (e *Evaluator) parseTabSpc(isTab bool) (value.Value, error) {
	if !e.InPrint {
		return value.Value{}, basicerr.New(basicerr.SyntaxError)
	}
	v, err := e.parseExpr(1)
	if err != nil {
		return value.Value{}, err
	}
	if err := e.expectByte(')'); err != nil {
		return value.Value{}, err
	}
	if !v.IsNumber() {
		return value.Value{}, basicerr.New(basicerr.TypeMismatch)
	}
	n, err := toInt16(v.Num)
	if err != nil {
		return value.Value{}, err
	}
	if isTab {
		return value.Tab(float64(n)), nil
	}
	return value.Spc(float64(n)), nil
}
