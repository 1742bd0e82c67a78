// Package eval implements the precedence-driven expression evaluator of
// spec §4.2: numbers, strings, variables, built-in and user-defined
// functions, with tagged numeric/string values and strict type-mismatch
// checking. The core loop is precedence climbing rather than the
// spec's two-explicit-stack formulation — the two are the same
// left-to-right, correctly-associating algorithm; climbing was chosen
// for the simpler Go recursion shape, the way the teacher's
// disassemble.Step hand-rolls a big switch over the opcode byte rather
// than building an opcode table object.
package eval

import (
	"github.com/jmchacon/basic/basicerr"
	"github.com/jmchacon/basic/token"
	"github.com/jmchacon/basic/value"
)

// Env is everything the evaluator needs from the surrounding interpreter:
// variable and array storage, the DEF FN table (via CallFunction so
// parameter binding/restore stays the interpreter's responsibility),
// memory PEEK access, and the few stateful built-ins (RND/FRE/POS).
type Env interface {
	GetScalar(name string) value.Value
	GetArrayElem(name string, isString bool, subs []int) (value.Value, error)
	CallFunction(name string, arg value.Value) (value.Value, error)
	Peek(addr uint16) (byte, error)
	Rnd(seed float64) float64
	Fre(x float64) float64
	Pos(x float64) float64
}

// Evaluator parses and evaluates a token byte sequence from a given
// offset. One Evaluator is created per expression parse; it holds no
// state beyond the input buffer, the cursor and flags.
type Evaluator struct {
	env   Env
	buf   []byte
	pos   int
	// InPrint must be true for TAB(/SPC( to be accepted; they are valid
	// only inside PRINT per spec §4.2.
	InPrint bool
}

// New returns an Evaluator over buf starting at offset start, reading
// against env for variable/function/memory access.
func New(env Env, buf []byte, start int) *Evaluator {
	return &Evaluator{env: env, buf: buf, pos: start}
}

// Eval evaluates one full expression starting at the evaluator's current
// offset and returns its value and the offset just past the expression
// (the first byte that is not part of it).
func (e *Evaluator) Eval() (value.Value, int, error) {
	v, err := e.parseExpr(1)
	if err != nil {
		return value.Value{}, e.pos, err
	}
	return v, e.pos, nil
}

// Pos returns the evaluator's current cursor offset into buf.
func (e *Evaluator) Pos() int { return e.pos }

func (e *Evaluator) atEnd() bool { return e.pos >= len(e.buf) }

func (e *Evaluator) peek() byte {
	if e.atEnd() {
		return 0
	}
	return e.buf[e.pos]
}

func (e *Evaluator) skipSpaces() {
	for !e.atEnd() && e.buf[e.pos] == ' ' {
		e.pos++
	}
}

// parseExpr is the precedence-climbing core: parse one primary/unary
// term, then repeatedly consume binary operators whose precedence is >=
// minPrec, recursing for the right-hand side at the operator's next
// tighter precedence (or the same precedence for right-associative ^).
func (e *Evaluator) parseExpr(minPrec int) (value.Value, error) {
	left, err := e.parseUnary()
	if err != nil {
		return value.Value{}, err
	}
	for {
		e.skipSpaces()
		op, prec, rightAssoc, ok := e.peekBinaryOp()
		if !ok || prec < minPrec {
			return left, nil
		}
		e.consumeOp(op)
		nextMin := prec + 1
		if rightAssoc {
			nextMin = prec
		}
		right, err := e.parseExpr(nextMin)
		if err != nil {
			return value.Value{}, err
		}
		left, err = apply(op, left, right)
		if err != nil {
			return value.Value{}, err
		}
	}
}

// parseUnary handles the unary prefix operators (NOT at level 3, unary
// +/- sharing level 5 with binary +/- but binding tighter than them —
// their operand is parsed at level 7, the power level, so "-2^2" means
// -(2^2) and "-2*3" still lets the outer loop consume the "*3").
func (e *Evaluator) parseUnary() (value.Value, error) {
	e.skipSpaces()
	switch {
	case e.matchToken(token.NOT):
		v, err := e.parseExpr(precComparison)
		if err != nil {
			return value.Value{}, err
		}
		return applyNot(v)
	case e.matchToken(token.MINUS):
		v, err := e.parseExpr(precPower)
		if err != nil {
			return value.Value{}, err
		}
		if !v.IsNumber() {
			return value.Value{}, basicerr.New(basicerr.TypeMismatch)
		}
		return value.Number(-v.Num), nil
	case e.matchToken(token.PLUS):
		v, err := e.parseExpr(precPower)
		if err != nil {
			return value.Value{}, err
		}
		if !v.IsNumber() {
			return value.Value{}, basicerr.New(basicerr.TypeMismatch)
		}
		return v, nil
	default:
		return e.parsePrimary()
	}
}

// matchToken consumes tok if it is next in the stream (after the spaces
// the caller already skipped), returning whether it matched.
func (e *Evaluator) matchToken(tok token.Token) bool {
	if e.atEnd() || e.buf[e.pos] != byte(tok) {
		return false
	}
	e.pos++
	return true
}

// expectByte consumes a single expected byte, raising SyntaxError if absent.
func (e *Evaluator) expectByte(b byte) error {
	e.skipSpaces()
	if e.atEnd() || e.buf[e.pos] != b {
		return basicerr.New(basicerr.SyntaxError)
	}
	e.pos++
	return nil
}

// parseArgList parses a comma-separated list of expressions up to a
// closing ')', which is consumed.
func (e *Evaluator) parseArgList() ([]value.Value, error) {
	var args []value.Value
	e.skipSpaces()
	if e.peek() == ')' {
		e.pos++
		return args, nil
	}
	for {
		v, err := e.parseExpr(1)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
		e.skipSpaces()
		if e.peek() == ',' {
			e.pos++
			continue
		}
		if err := e.expectByte(')'); err != nil {
			return nil, err
		}
		return args, nil
	}
}

func toIntSubscripts(args []value.Value) ([]int, error) {
	subs := make([]int, len(args))
	for i, a := range args {
		if !a.IsNumber() {
			return nil, basicerr.New(basicerr.TypeMismatch)
		}
		n, err := toInt16(a.Num)
		if err != nil {
			return nil, err
		}
		subs[i] = int(n)
	}
	return subs, nil
}
