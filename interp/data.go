package interp

import (
	"github.com/samber/lo"

	"github.com/jmchacon/basic/basicerr"
	"github.com/jmchacon/basic/token"
	"github.com/jmchacon/basic/value"
)

// execData is a no-op at run time: DATA's payload is only ever consulted
// by the READ cursor's forward scan, never executed in place. It simply
// skips to the end of the statement (DATA's tokenized tail runs to the
// next ':' or end of line, set by the tokenizer).
func (i *Interpreter) execData(toks []byte, pos int) (int, ctrl, error) {
	for pos < len(toks) && toks[pos] != ':' {
		pos++
	}
	return pos, ctrlNext, nil
}

// execRestore resets the DATA cursor to the start of the program (bare
// RESTORE) or to the start of a given line (RESTORE linenum), per spec
// §4.6.
func (i *Interpreter) execRestore(toks []byte, pos int) (int, ctrl, error) {
	save := pos
	p := skipSpaces(toks, pos)
	if p < len(toks) && isDigitByte(toks[p]) {
		n, next, err := parseLineNumber(toks, p)
		if err != nil {
			return save, ctrlNext, err
		}
		if _, ok := i.Prog.Get(n); !ok {
			return next, ctrlNext, basicerr.New(basicerr.UndefinedLine)
		}
		i.dataLine, i.dataOffset, i.dataInPayload = n, 0, false
		return next, ctrlNext, nil
	}
	if first, ok := i.Prog.First(); ok {
		i.dataLine, i.dataOffset, i.dataInPayload = first, 0, false
	}
	return save, ctrlNext, nil
}

// execRead parses a comma-separated lvalue list, pulls one literal per
// lvalue off the DATA cursor in order (the cursor is stateful, so this
// pass must stay sequential), then converts the whole batch to values in
// one lo.Map pass before assigning, raising OutOfData if the program
// runs out of DATA statements before the list is satisfied.
func (i *Interpreter) execRead(toks []byte, pos int) (int, ctrl, error) {
	var lvs []lvalue
	for {
		lv, next, err := i.parseLValue(toks, pos)
		if err != nil {
			return next, ctrlNext, err
		}
		pos = next
		lvs = append(lvs, lv)
		pos = skipSpaces(toks, pos)
		if pos < len(toks) && toks[pos] == ',' {
			pos++
			continue
		}
		break
	}

	literals := make([][]byte, len(lvs))
	for idx := range lvs {
		lit, err := i.nextDataLiteral()
		if err != nil {
			return pos, ctrlNext, err
		}
		literals[idx] = lit
	}

	values := lo.Map(literals, func(lit []byte, idx int) value.Value {
		if lvs[idx].isString {
			return value.String(lit)
		}
		return value.Number(value.ParseValPrefix(lit))
	})

	for idx, lv := range lvs {
		if err := i.setLValue(lv, values[idx]); err != nil {
			return pos, ctrlNext, err
		}
	}
	return pos, ctrlNext, nil
}

// nextDataLiteral advances the DATA cursor to the next literal in
// program order, scanning forward across line boundaries for a DATA
// statement if the cursor isn't already positioned inside one.
func (i *Interpreter) nextDataLiteral() ([]byte, error) {
	for {
		toks, ok := i.Prog.Get(i.dataLine)
		if !ok {
			return nil, basicerr.New(basicerr.OutOfData)
		}
		if !i.dataInPayload {
			found := false
			for i.dataOffset < len(toks) {
				if token.Token(toks[i.dataOffset]) == token.DATA {
					i.dataOffset++
					found = true
					break
				}
				i.dataOffset++
			}
			if !found {
				nl, ok := i.Prog.Next(i.dataLine)
				if !ok {
					return nil, basicerr.New(basicerr.OutOfData)
				}
				i.dataLine, i.dataOffset = nl, 0
				continue
			}
			i.dataInPayload = true
		}
		lit, next, more := scanDataLiteral(toks, i.dataOffset)
		i.dataOffset = next
		i.dataInPayload = more
		return lit, nil
	}
}

// scanDataLiteral parses one comma-separated DATA literal starting at
// toks[pos:] (the tokenizer leaves a DATA statement's tail as verbatim
// ASCII, quote-aware the same way string literals are elsewhere: a
// quoted literal may contain commas and colons, an unquoted one ends at
// the first comma, colon, or end of line). Returns the literal, the
// position just past it (and any following comma), and whether more
// literals remain before the statement ends.
func scanDataLiteral(toks []byte, pos int) (lit []byte, next int, more bool) {
	pos = skipSpaces(toks, pos)
	if pos < len(toks) && toks[pos] == '"' {
		pos++
		start := pos
		for pos < len(toks) && toks[pos] != '"' {
			pos++
		}
		lit = append([]byte(nil), toks[start:pos]...)
		if pos < len(toks) {
			pos++
		}
	} else {
		start := pos
		for pos < len(toks) && toks[pos] != ',' && toks[pos] != ':' {
			pos++
		}
		lit = trimTrailingSpaces(toks[start:pos])
	}
	pos = skipSpaces(toks, pos)
	if pos < len(toks) && toks[pos] == ',' {
		return lit, pos + 1, true
	}
	return lit, pos, false
}

func trimTrailingSpaces(b []byte) []byte {
	end := len(b)
	for end > 0 && b[end-1] == ' ' {
		end--
	}
	return append([]byte(nil), b[:end]...)
}
