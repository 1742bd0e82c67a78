package interp

import (
	"math"
	"strconv"

	"github.com/jmchacon/basic/basicerr"
	"github.com/jmchacon/basic/eval"
	"github.com/jmchacon/basic/token"
	"github.com/jmchacon/basic/value"
	"github.com/jmchacon/basic/vars"
)

func isDigitByte(b byte) bool { return b >= '0' && b <= '9' }
func isLetterByte(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
func isIdentCont(b byte) bool { return isDigitByte(b) || isLetterByte(b) }

// tokenizeLine compresses one line of raw source into its token byte
// form, the same compression stored lines go through.
func tokenizeLine(raw string) []byte {
	return token.TokenizeString(raw)
}

func skipSpaces(toks []byte, pos int) int {
	for pos < len(toks) && toks[pos] == ' ' {
		pos++
	}
	return pos
}

func atoiToks(toks []byte) int {
	n, _ := strconv.Atoi(string(toks))
	return n
}

// isContToken reports whether toks[pos:] begins with the CONT token,
// the one direct-mode-only statement that isn't dispatched through
// execStmt (it resumes runFrom rather than behaving like an ordinary
// statement).
func isContToken(toks []byte, pos int) bool {
	return pos < len(toks) && token.Token(toks[pos]) == token.CONT
}

// parseLineNumber reads a decimal line number at toks[pos:], returning
// the updated position.
func parseLineNumber(toks []byte, pos int) (uint16, int, error) {
	pos = skipSpaces(toks, pos)
	start := pos
	for pos < len(toks) && isDigitByte(toks[pos]) {
		pos++
	}
	if pos == start {
		return 0, pos, basicerr.New(basicerr.SyntaxError)
	}
	return uint16(atoiToks(toks[start:pos])), pos, nil
}

// lvalue is a parsed assignment target: a scalar or array element.
type lvalue struct {
	name     string
	isString bool
	subs     []int // nil for a scalar
}

// parseLValue parses a variable or array-element reference starting at
// toks[pos:], the same identifier grammar parsePrimary uses for reads.
func (i *Interpreter) parseLValue(toks []byte, pos int) (lvalue, int, error) {
	pos = skipSpaces(toks, pos)
	start := pos
	if pos >= len(toks) || !isLetterByte(toks[pos]) {
		return lvalue{}, pos, basicerr.New(basicerr.SyntaxError)
	}
	pos++
	for pos < len(toks) && isIdentCont(toks[pos]) {
		pos++
	}
	if pos < len(toks) && toks[pos] == '$' {
		pos++
	}
	name, isString := vars.CanonicalName(string(toks[start:pos]))
	pos = skipSpaces(toks, pos)
	if pos < len(toks) && toks[pos] == '(' {
		e := eval.New(i, toks, pos+1)
		var subs []int
		for {
			v, next, err := e.Eval()
			if err != nil {
				return lvalue{}, next, err
			}
			n, err := intFromValue(v)
			if err != nil {
				return lvalue{}, next, err
			}
			subs = append(subs, int(n))
			pos = skipSpaces(toks, next)
			if pos < len(toks) && toks[pos] == ',' {
				e = eval.New(i, toks, pos+1)
				continue
			}
			if pos >= len(toks) || toks[pos] != ')' {
				return lvalue{}, pos, basicerr.New(basicerr.SyntaxError)
			}
			pos++
			break
		}
		return lvalue{name: name, isString: isString, subs: subs}, pos, nil
	}
	return lvalue{name: name, isString: isString}, pos, nil
}

func (i *Interpreter) setLValue(lv lvalue, v value.Value) error {
	if lv.subs == nil {
		return i.Scalars.Set(lv.name, v, i.roots)
	}
	return i.Arrays.Set(lv.name, lv.subs, v, i.roots)
}

// evalExprAt evaluates one expression starting at toks[pos:], returning
// its value and the position just past it.
func (i *Interpreter) evalExprAt(toks []byte, pos int) (value.Value, int, error) {
	return eval.New(i, toks, pos).Eval()
}

// intFromValue narrows a numeric value to the strict signed 16-bit range
// used for subscripts and ON's selector index, rejecting strings and
// out-of-range magnitudes with the same errors the expression evaluator
// uses for AND/OR/NOT and TAB/SPC arguments.
func intFromValue(v value.Value) (int16, error) {
	if !v.IsNumber() {
		return 0, basicerr.New(basicerr.TypeMismatch)
	}
	n := math.Floor(v.Num)
	if n < -32768 || n > 32767 {
		return 0, basicerr.New(basicerr.IllegalQuantity)
	}
	return int16(n), nil
}

// addrFromFloat narrows a numeric PEEK/POKE/WAIT/SYS address argument:
// the full 0..65535 range is accepted directly, and -32768..-1 wraps by
// +65536, matching addrFromValue in the expression evaluator's PEEK
// builtin. Address arguments are deliberately wider than intFromValue's
// subscript range: real hardware addresses run the full unsigned 16-bit
// span, not just the positive half of a signed 16-bit word.
func addrFromFloat(f float64) (uint16, error) {
	n := math.Floor(f)
	if n < -32768 || n > 65535 {
		return 0, basicerr.New(basicerr.IllegalQuantity)
	}
	if n < 0 {
		n += 65536
	}
	return uint16(n), nil
}

// byteFromFloat narrows a numeric argument to a single byte, 0..255,
// used for POKE's stored value and WAIT's mask/eor arguments.
func byteFromFloat(f float64) (byte, error) {
	n := math.Floor(f)
	if n < 0 || n > 255 {
		return 0, basicerr.New(basicerr.IllegalQuantity)
	}
	return byte(n), nil
}
