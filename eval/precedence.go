package eval

import (
	"bytes"
	"math"

	"github.com/jmchacon/basic/basicerr"
	"github.com/jmchacon/basic/token"
	"github.com/jmchacon/basic/value"
)

// Precedence levels, per spec §4.2 (higher binds tighter).
const (
	precOr         = 1
	precAnd        = 2
	precNot        = 3
	precComparison = 4
	precAdditive   = 5
	precMultiplic  = 6
	precPower      = 7
)

// op identifies a binary operator token along with the two-byte lookahead
// combinations (<=, >=, <>) that are recognized pairwise rather than
// tokenizer-composed, per spec §9's reference choice.
type op int

const (
	opAdd op = iota
	opSub
	opMul
	opDiv
	opPow
	opEq
	opLt
	opGt
	opLe
	opGe
	opNe
	opAnd
	opOr
)

// peekBinaryOp looks at the evaluator's current position (spaces already
// skipped by the caller) and classifies it as a binary operator, without
// consuming anything.
func (e *Evaluator) peekBinaryOp() (op, int, bool, bool) {
	if e.atEnd() {
		return 0, 0, false, false
	}
	b := e.buf[e.pos]
	switch token.Token(b) {
	case token.PLUS:
		return opAdd, precAdditive, false, true
	case token.MINUS:
		return opSub, precAdditive, false, true
	case token.STAR:
		return opMul, precMultiplic, false, true
	case token.SLASH:
		return opDiv, precMultiplic, false, true
	case token.CARET:
		return opPow, precPower, true, true
	case token.AND:
		return opAnd, precAnd, false, true
	case token.OR:
		return opOr, precOr, false, true
	case token.LT:
		if e.pos+1 < len(e.buf) {
			switch token.Token(e.buf[e.pos+1]) {
			case token.EQ:
				return opLe, precComparison, false, true
			case token.GT:
				return opNe, precComparison, false, true
			}
		}
		return opLt, precComparison, false, true
	case token.GT:
		if e.pos+1 < len(e.buf) && token.Token(e.buf[e.pos+1]) == token.EQ {
			return opGe, precComparison, false, true
		}
		return opGt, precComparison, false, true
	case token.EQ:
		return opEq, precComparison, false, true
	}
	return 0, 0, false, false
}

// consumeOp advances past the operator bytes peekBinaryOp identified.
func (e *Evaluator) consumeOp(o op) {
	switch o {
	case opLe, opGe, opNe:
		e.pos += 2
	default:
		e.pos++
	}
}

// apply performs a single binary operation, per spec §4.2's semantics.
func apply(o op, l, r value.Value) (value.Value, error) {
	switch o {
	case opAdd:
		return applyAdd(l, r)
	case opSub:
		return applyArith(l, r, func(a, b float64) (float64, error) { return a - b, nil })
	case opMul:
		return applyArith(l, r, func(a, b float64) (float64, error) { return a * b, nil })
	case opDiv:
		return applyArith(l, r, func(a, b float64) (float64, error) {
			if b == 0 {
				return 0, basicerr.New(basicerr.DivisionByZero)
			}
			return a / b, nil
		})
	case opPow:
		return applyArith(l, r, func(a, b float64) (float64, error) {
			if a == 0 && b < 0 {
				return 0, basicerr.New(basicerr.IllegalQuantity)
			}
			return math.Pow(a, b), nil
		})
	case opEq, opLt, opGt, opLe, opGe, opNe:
		return applyCompare(o, l, r)
	case opAnd, opOr:
		return applyLogical(o, l, r)
	}
	return value.Value{}, basicerr.New(basicerr.SyntaxError)
}

func applyArith(l, r value.Value, f func(a, b float64) (float64, error)) (value.Value, error) {
	if !l.IsNumber() || !r.IsNumber() {
		return value.Value{}, basicerr.New(basicerr.TypeMismatch)
	}
	n, err := f(l.Num, r.Num)
	if err != nil {
		return value.Value{}, err
	}
	return value.Number(n), nil
}

func applyAdd(l, r value.Value) (value.Value, error) {
	if l.IsNumber() && r.IsNumber() {
		return value.Number(l.Num + r.Num), nil
	}
	if l.IsString() && r.IsString() {
		if len(l.Str)+len(r.Str) > value.MaxStringLen {
			return value.Value{}, basicerr.New(basicerr.StringTooLong)
		}
		out := make([]byte, 0, len(l.Str)+len(r.Str))
		out = append(out, l.Str...)
		out = append(out, r.Str...)
		return value.String(out), nil
	}
	return value.Value{}, basicerr.New(basicerr.TypeMismatch)
}

func boolNum(b bool) value.Value {
	if b {
		return value.Number(1)
	}
	return value.Number(0)
}

func applyCompare(o op, l, r value.Value) (value.Value, error) {
	if !l.SameKind(r) {
		return value.Value{}, basicerr.New(basicerr.TypeMismatch)
	}
	var cmp int
	if l.IsNumber() {
		switch {
		case l.Num < r.Num:
			cmp = -1
		case l.Num > r.Num:
			cmp = 1
		default:
			cmp = 0
		}
	} else {
		cmp = bytes.Compare(l.Str, r.Str)
	}
	switch o {
	case opEq:
		return boolNum(cmp == 0), nil
	case opLt:
		return boolNum(cmp < 0), nil
	case opGt:
		return boolNum(cmp > 0), nil
	case opLe:
		return boolNum(cmp <= 0), nil
	case opGe:
		return boolNum(cmp >= 0), nil
	case opNe:
		return boolNum(cmp != 0), nil
	}
	return value.Value{}, basicerr.New(basicerr.SyntaxError)
}

func applyLogical(o op, l, r value.Value) (value.Value, error) {
	if !l.IsNumber() || !r.IsNumber() {
		return value.Value{}, basicerr.New(basicerr.TypeMismatch)
	}
	li, err := toInt16(l.Num)
	if err != nil {
		return value.Value{}, err
	}
	ri, err := toInt16(r.Num)
	if err != nil {
		return value.Value{}, err
	}
	var res int16
	switch o {
	case opAnd:
		res = li & ri
	case opOr:
		res = li | ri
	}
	return value.Number(float64(res)), nil
}

func applyNot(v value.Value) (value.Value, error) {
	if !v.IsNumber() {
		return value.Value{}, basicerr.New(basicerr.TypeMismatch)
	}
	n, err := toInt16(v.Num)
	if err != nil {
		return value.Value{}, err
	}
	return value.Number(float64(^n)), nil
}

// toInt16 narrows f to 16-bit signed two's complement via INT()
// (truncation toward negative infinity, i.e. floor), raising
// IllegalQuantity if the floored value is out of int16 range. Used by
// AND/OR/NOT, TAB, SPC, subscripts and the string functions' integer
// arguments; PEEK and POKE addresses go through addrFromValue/
// addrFromFloat instead.
func toInt16(f float64) (int16, error) {
	i := math.Floor(f)
	if i < -32768 || i > 32767 {
		return 0, basicerr.New(basicerr.IllegalQuantity)
	}
	return int16(i), nil
}
