package interp

import (
	"github.com/jmchacon/basic/basicerr"
	"github.com/jmchacon/basic/rtstack"
	"github.com/jmchacon/basic/token"
	"github.com/jmchacon/basic/value"
)

// execFor parses "FOR var = start TO limit [STEP step]", pushes a
// ForFrame recording where NEXT should resume the loop body, and — per
// spec §4.5's zero-trip rule — skips straight past the matching NEXT
// without ever entering the body if the loop would terminate on its very
// first test.
func (i *Interpreter) execFor(line uint16, toks []byte, pos int) (int, ctrl, error) {
	lv, pos, err := i.parseLValue(toks, pos)
	if err != nil || lv.subs != nil {
		if err == nil {
			err = basicerr.New(basicerr.SyntaxError)
		}
		return pos, ctrlNext, err
	}
	pos = skipSpaces(toks, pos)
	if pos >= len(toks) || token.Token(toks[pos]) != token.EQ {
		return pos, ctrlNext, basicerr.New(basicerr.SyntaxError)
	}
	pos++
	start, pos, err := i.evalExprAt(toks, pos)
	if err != nil {
		return pos, ctrlNext, err
	}
	if !start.IsNumber() {
		return pos, ctrlNext, basicerr.New(basicerr.TypeMismatch)
	}
	pos = skipSpaces(toks, pos)
	if pos >= len(toks) || token.Token(toks[pos]) != token.TO {
		return pos, ctrlNext, basicerr.New(basicerr.SyntaxError)
	}
	pos++
	limit, pos, err := i.evalExprAt(toks, pos)
	if err != nil {
		return pos, ctrlNext, err
	}
	if !limit.IsNumber() {
		return pos, ctrlNext, basicerr.New(basicerr.TypeMismatch)
	}
	step := 1.0
	pos = skipSpaces(toks, pos)
	if pos < len(toks) && token.Token(toks[pos]) == token.STEP {
		pos++
		stepVal, next, err := i.evalExprAt(toks, pos)
		if err != nil {
			return next, ctrlNext, err
		}
		if !stepVal.IsNumber() {
			return next, ctrlNext, basicerr.New(basicerr.TypeMismatch)
		}
		step = stepVal.Num
		pos = next
	}

	if err := i.setLValue(lv, start); err != nil {
		return pos, ctrlNext, err
	}

	loopDone := (step >= 0 && start.Num > limit.Num) || (step < 0 && start.Num < limit.Num)
	if loopDone {
		l, next, err := skipForBody(i.Prog, line, pos)
		if err != nil {
			return pos, ctrlNext, err
		}
		i.jumpLine, i.jumpOffset = l, next
		return pos, ctrlJump, nil
	}

	frame := rtstack.ForFrame{
		Var:          lv.name,
		Step:         step,
		Limit:        limit.Num,
		ResumeLine:   line,
		ResumeOffset: uint16(pos),
	}
	if err := i.Stack.PushFor(frame); err != nil {
		return pos, ctrlNext, err
	}
	return pos, ctrlNext, nil
}

// execNext parses "NEXT" or "NEXT var[,var...]". It handles the first
// named variable; once that loop ends, execNext re-enters itself for the
// remaining comma-separated variables, so NEXT I,J acts as two successive
// NEXTs.
func (i *Interpreter) execNext(line uint16, toks []byte, pos int) (int, ctrl, error) {
	pos = skipSpaces(toks, pos)
	var varName string
	if pos < len(toks) && isLetterByte(toks[pos]) {
		lv, next, err := i.parseLValue(toks, pos)
		if err != nil {
			return next, ctrlNext, err
		}
		varName = lv.name
		pos = next
	}

	var idx int
	var frame *rtstack.ForFrame
	var ok bool
	if varName == "" {
		idx, frame, ok = i.Stack.FindTopFor()
	} else {
		idx, frame, ok = i.Stack.FindFor(varName)
	}
	if !ok {
		return pos, ctrlNext, basicerr.New(basicerr.NextWithoutFor)
	}

	cur := i.Scalars.Get(frame.Var)
	newVal := cur.Num + frame.Step
	if err := i.setLValue(lvalue{name: frame.Var}, value.Number(newVal)); err != nil {
		return pos, ctrlNext, err
	}

	loopDone := (frame.Step >= 0 && newVal > frame.Limit) || (frame.Step < 0 && newVal < frame.Limit)
	if loopDone {
		i.Stack.PopTo(idx)
		i.Stack.Pop()
		if p := skipSpaces(toks, pos); p < len(toks) && toks[p] == ',' {
			return i.execNext(line, toks, p+1)
		}
		return pos, ctrlNext, nil
	}
	i.Stack.PopTo(idx)
	i.jumpLine, i.jumpOffset = frame.ResumeLine, int(frame.ResumeOffset)
	return pos, ctrlJump, nil
}

// progGetter is the subset of *program.Program skipForBody needs; kept
// as a tiny interface only so forloop.go doesn't import program directly
// for a single call shape.
type progGetter interface {
	Get(n uint16) ([]byte, bool)
	Next(after uint16) (uint16, bool)
}

// skipForBody scans forward from (line, pos) across token bytes —
// crossing line boundaries via prog.Next as needed — tracking FOR/NEXT
// nesting depth, and returns the line holding the matching NEXT and the
// offset just past that NEXT's variable (if any). This is safe as a raw
// byte scan because token bytes are all >= 0x80 and can never occur inside
// string literals or REM/DATA verbatim tails, which are plain ASCII.
func skipForBody(prog progGetter, line uint16, pos int) (uint16, int, error) {
	depth := 0
	curLine := line
	toks, ok := prog.Get(curLine)
	if !ok {
		return line, pos, basicerr.New(basicerr.NextWithoutFor)
	}
	p := pos
	for {
		if p >= len(toks) {
			nl, ok := prog.Next(curLine)
			if !ok {
				return curLine, p, basicerr.New(basicerr.NextWithoutFor)
			}
			curLine = nl
			toks, _ = prog.Get(curLine)
			p = 0
			continue
		}
		switch token.Token(toks[p]) {
		case token.FOR:
			depth++
		case token.NEXT:
			if depth == 0 {
				p++
				for p < len(toks) && toks[p] == ' ' {
					p++
				}
				for p < len(toks) && isIdentCont(toks[p]) {
					p++
				}
				if p < len(toks) && toks[p] == '$' {
					p++
				}
				return curLine, p, nil
			}
			depth--
		}
		p++
	}
}
