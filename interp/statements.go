package interp

import (
	"strconv"

	"github.com/jmchacon/basic/basicerr"
	"github.com/jmchacon/basic/eval"
	"github.com/jmchacon/basic/rtstack"
	"github.com/jmchacon/basic/screen"
	"github.com/jmchacon/basic/token"
	"github.com/jmchacon/basic/value"
	"github.com/jmchacon/basic/vars"
)

// newPrintEval builds an evaluator with InPrint set, so TAB(/SPC( are
// accepted as PRINT's own arguments while remaining a syntax error
// anywhere else in an expression.
func newPrintEval(env eval.Env, toks []byte, pos int) *eval.Evaluator {
	e := eval.New(env, toks, pos)
	e.InPrint = true
	return e
}

func lineNumberText(n uint16) string {
	return strconv.Itoa(int(n))
}

func detokenize(toks []byte) []byte {
	return token.Detokenize(toks)
}

// execStmt dispatches a single statement starting at toks[pos:], the
// token-byte switch the way disassemble.Step and c64basic.List switch
// over the same token byte range. A line starting with a letter (rather
// than a keyword token) is an implicit LET.
func (i *Interpreter) execStmt(line uint16, toks []byte, pos int) (int, ctrl, error) {
	pos = skipSpaces(toks, pos)
	if pos >= len(toks) {
		return pos, ctrlEndLine, nil
	}
	b := toks[pos]
	if b == ':' {
		// Empty statement (e.g. a FOR/GOSUB resume point just before a
		// separator): the caller steps over the ':'.
		return pos, ctrlNext, nil
	}
	if isLetterByte(b) {
		return i.execAssign(toks, pos)
	}

	tok := token.Token(b)
	switch tok {
	case token.LET:
		return i.execAssign(toks, pos+1)
	case token.PRINT, token.PRINTH:
		return i.execPrint(toks, pos+1, tok == token.PRINTH)
	case token.INPUT, token.INPUTH:
		return i.execInput(toks, pos+1, tok == token.INPUTH)
	case token.IF:
		return i.execIf(line, toks, pos+1)
	case token.GOTO:
		return i.execGoto(toks, pos+1)
	case token.GOSUB:
		return i.execGosub(line, toks, pos+1)
	case token.RETURN:
		return i.execReturn(pos)
	case token.FOR:
		return i.execFor(line, toks, pos+1)
	case token.NEXT:
		return i.execNext(line, toks, pos+1)
	case token.ON:
		return i.execOn(line, toks, pos+1)
	case token.DEF:
		return i.execDef(toks, pos+1)
	case token.DATA:
		return i.execData(toks, pos+1)
	case token.READ:
		return i.execRead(toks, pos+1)
	case token.RESTORE:
		return i.execRestore(toks, pos+1)
	case token.DIM:
		return i.execDim(toks, pos+1)
	case token.REM:
		return len(toks), ctrlEndLine, nil
	case token.STOP:
		return pos + 1, ctrlStop, nil
	case token.END:
		return pos + 1, ctrlHalt, nil
	case token.NEW:
		i.doNew()
		return pos + 1, ctrlHalt, nil
	case token.CLR:
		i.resetForRun()
		return skipToStatementEnd(toks, pos+1), ctrlNext, nil
	case token.LIST:
		return i.execList(toks, pos+1)
	case token.RUN:
		return i.execRun(toks, pos+1)
	case token.POKE:
		return i.execPoke(toks, pos+1)
	case token.GET:
		return i.execGet(toks, pos+1)
	case token.WAIT:
		return i.execWait(toks, pos+1)
	case token.SYS:
		return i.execSys(toks, pos+1)
	case token.CMD, token.OPEN, token.CLOSE, token.SAVE, token.LOAD, token.VERIFY:
		return skipToStatementEnd(toks, pos+1), ctrlNext, nil
	default:
		return pos, ctrlNext, basicerr.New(basicerr.SyntaxError)
	}
}

func skipToStatementEnd(toks []byte, pos int) int {
	for pos < len(toks) && toks[pos] != ':' {
		pos++
	}
	return pos
}

// execAssign handles "[LET] var = expr".
func (i *Interpreter) execAssign(toks []byte, pos int) (int, ctrl, error) {
	lv, pos, err := i.parseLValue(toks, pos)
	if err != nil {
		return pos, ctrlNext, err
	}
	pos = skipSpaces(toks, pos)
	if pos >= len(toks) || token.Token(toks[pos]) != token.EQ {
		return pos, ctrlNext, basicerr.New(basicerr.SyntaxError)
	}
	pos++
	v, pos, err := i.evalExprAt(toks, pos)
	if err != nil {
		return pos, ctrlNext, err
	}
	if !v.IsNumber() && !v.IsString() {
		return pos, ctrlNext, basicerr.New(basicerr.TypeMismatch)
	}
	if err := i.setLValue(lv, v); err != nil {
		return pos, ctrlNext, err
	}
	return pos, ctrlNext, nil
}

// execPrint walks PRINT's separator-delimited argument list. A leading
// "#n" channel selector (PRINT#) is parsed and discarded: the supplemental
// channel statements degrade to the default screen sink (SPEC_FULL.md's
// accepted-but-minimal treatment of device multiplexing).
func (i *Interpreter) execPrint(toks []byte, pos int, hasChannel bool) (int, ctrl, error) {
	if hasChannel {
		var err error
		pos, err = skipChannelNumber(toks, pos)
		if err != nil {
			return pos, ctrlNext, err
		}
	}
	lastSep := byte(0)
	lastNum := false
	for {
		pos = skipSpaces(toks, pos)
		if pos >= len(toks) || toks[pos] == ':' {
			break
		}
		if toks[pos] == ';' {
			// A number printed before ';' is followed by one space.
			if lastNum {
				if err := i.Screen.WriteByte(' '); err != nil {
					return pos, ctrlNext, err
				}
				lastNum = false
			}
			lastSep = ';'
			pos++
			continue
		}
		if toks[pos] == ',' {
			if err := screen.AdvanceToTabZone(i.Screen); err != nil {
				return pos, ctrlNext, err
			}
			lastNum = false
			lastSep = ','
			pos++
			continue
		}
		e := newPrintEval(i, toks, pos)
		v, next, err := e.Eval()
		if err != nil {
			return next, ctrlNext, err
		}
		pos = next
		lastSep = 0
		if err := i.printValue(v); err != nil {
			return pos, ctrlNext, err
		}
		lastNum = v.IsNumber()
	}
	if lastSep != ';' && lastSep != ',' {
		if err := i.Screen.Newline(); err != nil {
			return pos, ctrlNext, err
		}
	}
	return pos, ctrlNext, nil
}

func (i *Interpreter) printValue(v value.Value) error {
	switch v.Kind {
	case value.KindNumber:
		return i.Screen.WriteString(value.FormatNumber(v.Num))
	case value.KindString:
		return i.Screen.WriteString(string(v.Str))
	case value.KindTab:
		return screen.AdvanceToColumn(i.Screen, int(v.Num))
	case value.KindSpc:
		n := int(v.Num)
		for j := 0; j < n; j++ {
			if err := i.Screen.WriteByte(' '); err != nil {
				return err
			}
		}
		return nil
	default:
		return basicerr.New(basicerr.SyntaxError)
	}
}

func skipChannelNumber(toks []byte, pos int) (int, error) {
	pos = skipSpaces(toks, pos)
	if pos < len(toks) && toks[pos] == '#' {
		pos++
	}
	start := pos
	for pos < len(toks) && isDigitByte(toks[pos]) {
		pos++
	}
	if pos == start {
		return pos, basicerr.New(basicerr.SyntaxError)
	}
	pos = skipSpaces(toks, pos)
	if pos < len(toks) && toks[pos] == ',' {
		pos++
	}
	return pos, nil
}

// execInput handles "INPUT [#ch,] [prompt;] var[,var...]". A re-prompt
// loop ("?REDO FROM START") runs instead of a goto, since Go disallows
// jumping into a block that declares new loop-local variables.
func (i *Interpreter) execInput(toks []byte, pos int, hasChannel bool) (int, ctrl, error) {
	if hasChannel {
		var err error
		pos, err = skipChannelNumber(toks, pos)
		if err != nil {
			return pos, ctrlNext, err
		}
	}
	prompt := "? "
	p := skipSpaces(toks, pos)
	if p < len(toks) && toks[p] == '"' {
		p++
		start := p
		for p < len(toks) && toks[p] != '"' {
			p++
		}
		prompt = string(toks[start:p])
		if p < len(toks) {
			p++
		}
		p = skipSpaces(toks, p)
		if p < len(toks) && toks[p] == ';' {
			p++
		}
		pos = p
	}

	var lvs []lvalue
	p = pos
	for {
		lv, next, err := i.parseLValue(toks, p)
		if err != nil {
			return next, ctrlNext, err
		}
		lvs = append(lvs, lv)
		p = skipSpaces(toks, next)
		if p < len(toks) && toks[p] == ',' {
			p++
			continue
		}
		break
	}

	for {
		if err := i.Screen.WriteString(prompt); err != nil {
			return p, ctrlNext, err
		}
		line, err := i.Input.ReadLine()
		if err != nil {
			return p, ctrlNext, err
		}
		fields := splitInputFields(line)
		if len(fields) < len(lvs) {
			prompt = "?REDO FROM START\n? "
			continue
		}
		redo := false
		for idx, lv := range lvs {
			field := fields[idx]
			var v value.Value
			if lv.isString {
				v = value.String([]byte(field))
			} else {
				trimmed := trimSpacesStr(field)
				if !looksNumeric(trimmed) {
					redo = true
					break
				}
				v = value.Number(value.ParseValPrefix([]byte(field)))
			}
			if err := i.setLValue(lv, v); err != nil {
				return p, ctrlNext, err
			}
		}
		if redo {
			prompt = "?REDO FROM START\n? "
			continue
		}
		return p, ctrlNext, nil
	}
}

func splitInputFields(line string) []string {
	var fields []string
	start := 0
	for idx := 0; idx < len(line); idx++ {
		if line[idx] == ',' {
			fields = append(fields, line[start:idx])
			start = idx + 1
		}
	}
	fields = append(fields, line[start:])
	return fields
}

func trimSpacesStr(s string) string {
	start, end := 0, len(s)
	for start < end && s[start] == ' ' {
		start++
	}
	for end > start && s[end-1] == ' ' {
		end--
	}
	return s[start:end]
}

func looksNumeric(s string) bool {
	if s == "" {
		return true
	}
	j := 0
	if s[j] == '+' || s[j] == '-' {
		j++
	}
	sawDigit := false
	for j < len(s) && isDigitByte(s[j]) {
		j++
		sawDigit = true
	}
	if j < len(s) && s[j] == '.' {
		j++
		for j < len(s) && isDigitByte(s[j]) {
			j++
			sawDigit = true
		}
	}
	if j < len(s) && (s[j] == 'e' || s[j] == 'E') {
		j++
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		for j < len(s) && isDigitByte(s[j]) {
			j++
		}
	}
	return sawDigit && j == len(s)
}

// execIf parses "IF cond THEN stmt-or-linenum". A false condition skips
// to end-of-line, not merely to the next ':' — a statement-separated
// trailer belongs to the same IF, never to an independent statement.
func (i *Interpreter) execIf(line uint16, toks []byte, pos int) (int, ctrl, error) {
	cond, pos, err := i.evalExprAt(toks, pos)
	if err != nil {
		return pos, ctrlNext, err
	}
	if !cond.IsNumber() {
		return pos, ctrlNext, basicerr.New(basicerr.TypeMismatch)
	}
	pos = skipSpaces(toks, pos)
	if pos >= len(toks) || token.Token(toks[pos]) != token.THEN {
		return pos, ctrlNext, basicerr.New(basicerr.SyntaxError)
	}
	pos++
	if cond.Num == 0 {
		return len(toks), ctrlEndLine, nil
	}
	pos = skipSpaces(toks, pos)
	if pos < len(toks) && isDigitByte(toks[pos]) {
		n, next, err := parseLineNumber(toks, pos)
		if err != nil {
			return next, ctrlNext, err
		}
		if _, ok := i.Prog.Get(n); !ok {
			return next, ctrlNext, basicerr.New(basicerr.UndefinedLine)
		}
		i.jumpLine, i.jumpOffset = n, 0
		return next, ctrlJump, nil
	}
	return i.execStmt(line, toks, pos)
}

func (i *Interpreter) execGoto(toks []byte, pos int) (int, ctrl, error) {
	n, pos, err := parseLineNumber(toks, pos)
	if err != nil {
		return pos, ctrlNext, err
	}
	if _, ok := i.Prog.Get(n); !ok {
		return pos, ctrlNext, basicerr.New(basicerr.UndefinedLine)
	}
	i.jumpLine, i.jumpOffset = n, 0
	return pos, ctrlJump, nil
}

func (i *Interpreter) execGosub(line uint16, toks []byte, pos int) (int, ctrl, error) {
	n, pos, err := parseLineNumber(toks, pos)
	if err != nil {
		return pos, ctrlNext, err
	}
	if _, ok := i.Prog.Get(n); !ok {
		return pos, ctrlNext, basicerr.New(basicerr.UndefinedLine)
	}
	if err := i.Stack.PushGosub(rtstack.GosubFrame{ResumeLine: line, ResumeOffset: uint16(pos)}); err != nil {
		return pos, ctrlNext, err
	}
	i.jumpLine, i.jumpOffset = n, 0
	return pos, ctrlJump, nil
}

func (i *Interpreter) execReturn(pos int) (int, ctrl, error) {
	frame, err := i.Stack.PopGosub()
	if err != nil {
		return pos, ctrlNext, err
	}
	i.jumpLine, i.jumpOffset = frame.ResumeLine, int(frame.ResumeOffset)
	return pos, ctrlJump, nil
}

// execOn parses "ON expr GOTO/GOSUB n1,n2,...", clamping the evaluated
// selector to an integer and falling through (no error) if it is outside
// 1..count.
func (i *Interpreter) execOn(line uint16, toks []byte, pos int) (int, ctrl, error) {
	sel, pos, err := i.evalExprAt(toks, pos)
	if err != nil {
		return pos, ctrlNext, err
	}
	idx, err := intFromValue(sel)
	if err != nil {
		return pos, ctrlNext, err
	}
	pos = skipSpaces(toks, pos)
	if pos >= len(toks) {
		return pos, ctrlNext, basicerr.New(basicerr.SyntaxError)
	}
	isGosub := token.Token(toks[pos]) == token.GOSUB
	if !isGosub && token.Token(toks[pos]) != token.GOTO {
		return pos, ctrlNext, basicerr.New(basicerr.SyntaxError)
	}
	pos++

	var targets []uint16
	for {
		n, next, err := parseLineNumber(toks, pos)
		if err != nil {
			return next, ctrlNext, err
		}
		targets = append(targets, n)
		pos = skipSpaces(toks, next)
		if pos < len(toks) && toks[pos] == ',' {
			pos++
			continue
		}
		break
	}
	if idx < 1 || int(idx) > len(targets) {
		return pos, ctrlNext, nil
	}
	target := targets[idx-1]
	if _, ok := i.Prog.Get(target); !ok {
		return pos, ctrlNext, basicerr.New(basicerr.UndefinedLine)
	}
	if isGosub {
		if err := i.Stack.PushGosub(rtstack.GosubFrame{ResumeLine: line, ResumeOffset: uint16(pos)}); err != nil {
			return pos, ctrlNext, err
		}
	}
	i.jumpLine, i.jumpOffset = target, 0
	return pos, ctrlJump, nil
}

// execDim parses "DIM name(d1,...)[,name(d1,...)...]".
func (i *Interpreter) execDim(toks []byte, pos int) (int, ctrl, error) {
	for {
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
		name, isString := vars.CanonicalName(string(toks[start:pos]))
		pos = skipSpaces(toks, pos)
		if pos >= len(toks) || toks[pos] != '(' {
			return pos, ctrlNext, basicerr.New(basicerr.SyntaxError)
		}
		pos++
		var dims []uint16
		for {
			v, next, err := i.evalExprAt(toks, pos)
			if err != nil {
				return next, ctrlNext, err
			}
			n, err := intFromValue(v)
			if err != nil || n < 0 {
				return next, ctrlNext, basicerr.New(basicerr.IllegalQuantity)
			}
			dims = append(dims, uint16(n))
			pos = skipSpaces(toks, next)
			if pos < len(toks) && toks[pos] == ',' {
				pos++
				continue
			}
			break
		}
		if pos >= len(toks) || toks[pos] != ')' {
			return pos, ctrlNext, basicerr.New(basicerr.SyntaxError)
		}
		pos++
		if err := i.Arrays.Dim(name, isString, dims); err != nil {
			return pos, ctrlNext, err
		}
		pos = skipSpaces(toks, pos)
		if pos < len(toks) && toks[pos] == ',' {
			pos++
			continue
		}
		return pos, ctrlNext, nil
	}
}

func (i *Interpreter) execPoke(toks []byte, pos int) (int, ctrl, error) {
	addrV, pos, err := i.evalExprAt(toks, pos)
	if err != nil {
		return pos, ctrlNext, err
	}
	if !addrV.IsNumber() {
		return pos, ctrlNext, basicerr.New(basicerr.TypeMismatch)
	}
	addr, err := addrFromFloat(addrV.Num)
	if err != nil {
		return pos, ctrlNext, err
	}
	pos = skipSpaces(toks, pos)
	if pos >= len(toks) || toks[pos] != ',' {
		return pos, ctrlNext, basicerr.New(basicerr.SyntaxError)
	}
	pos++
	valV, pos, err := i.evalExprAt(toks, pos)
	if err != nil {
		return pos, ctrlNext, err
	}
	if !valV.IsNumber() {
		return pos, ctrlNext, basicerr.New(basicerr.TypeMismatch)
	}
	b, err := byteFromFloat(valV.Num)
	if err != nil {
		return pos, ctrlNext, err
	}
	i.Img.WriteByte(addr, b)
	return pos, ctrlNext, nil
}

// execGet reads one lvalue with a single polled keystroke, setting it to
// the zero value if no key is pending, per spec §5's GET-is-a-poll
// contract.
func (i *Interpreter) execGet(toks []byte, pos int) (int, ctrl, error) {
	lv, pos, err := i.parseLValue(toks, pos)
	if err != nil {
		return pos, ctrlNext, err
	}
	b, ok, err := i.Input.ReadKey()
	if err != nil {
		return pos, ctrlNext, err
	}
	var v value.Value
	switch {
	case !ok:
		v = value.ZeroFor(lv.isString)
	case lv.isString:
		v = value.String([]byte{b})
	default:
		v = value.Number(float64(b))
	}
	if err := i.setLValue(lv, v); err != nil {
		return pos, ctrlNext, err
	}
	return pos, ctrlNext, nil
}

// execWait parses and validates "WAIT addr, mask[, eor]" but never
// blocks: the simulated memory image has no asynchronous mutation source
// that could ever satisfy a real busy-wait, so this accepts the syntax
// and performs a single no-op poll rather than hanging forever.
func (i *Interpreter) execWait(toks []byte, pos int) (int, ctrl, error) {
	addrV, pos, err := i.evalExprAt(toks, pos)
	if err != nil {
		return pos, ctrlNext, err
	}
	if !addrV.IsNumber() {
		return pos, ctrlNext, basicerr.New(basicerr.TypeMismatch)
	}
	if _, err := addrFromFloat(addrV.Num); err != nil {
		return pos, ctrlNext, err
	}
	pos = skipSpaces(toks, pos)
	if pos >= len(toks) || toks[pos] != ',' {
		return pos, ctrlNext, basicerr.New(basicerr.SyntaxError)
	}
	pos++
	maskV, pos, err := i.evalExprAt(toks, pos)
	if err != nil {
		return pos, ctrlNext, err
	}
	if !maskV.IsNumber() {
		return pos, ctrlNext, basicerr.New(basicerr.TypeMismatch)
	}
	if _, err := byteFromFloat(maskV.Num); err != nil {
		return pos, ctrlNext, err
	}
	pos = skipSpaces(toks, pos)
	if pos < len(toks) && toks[pos] == ',' {
		pos++
		eorV, next, err := i.evalExprAt(toks, pos)
		if err != nil {
			return next, ctrlNext, err
		}
		if !eorV.IsNumber() {
			return next, ctrlNext, basicerr.New(basicerr.TypeMismatch)
		}
		if _, err := byteFromFloat(eorV.Num); err != nil {
			return next, ctrlNext, err
		}
		pos = next
	}
	return pos, ctrlNext, nil
}

// execSys parses and validates a SYS address argument. There is no
// machine code to transfer control to (the Non-goals exclude 6502
// execution), so this accepts the statement and does nothing further.
func (i *Interpreter) execSys(toks []byte, pos int) (int, ctrl, error) {
	addrV, pos, err := i.evalExprAt(toks, pos)
	if err != nil {
		return pos, ctrlNext, err
	}
	if !addrV.IsNumber() {
		return pos, ctrlNext, basicerr.New(basicerr.TypeMismatch)
	}
	if _, err := addrFromFloat(addrV.Num); err != nil {
		return pos, ctrlNext, err
	}
	return pos, ctrlNext, nil
}

// execRun parses an optional start line and begins program-mode
// execution via RUN, by returning a jump to (line, 0) after a fresh
// reset. Because RUN can itself appear mid-program or typed directly, it
// is expressed as an ordinary ctrlJump after resetForRun rather than a
// special control signal.
func (i *Interpreter) execRun(toks []byte, pos int) (int, ctrl, error) {
	i.resetForRun()
	p := skipSpaces(toks, pos)
	line := uint16(0)
	if p < len(toks) && isDigitByte(toks[p]) {
		n, next, err := parseLineNumber(toks, p)
		if err != nil {
			return next, ctrlNext, err
		}
		if _, ok := i.Prog.Get(n); !ok {
			return next, ctrlNext, basicerr.New(basicerr.UndefinedLine)
		}
		line, pos = n, next
	} else {
		first, ok := i.Prog.First()
		if !ok {
			return pos, ctrlHalt, nil
		}
		line = first
	}
	i.jumpLine, i.jumpOffset = line, 0
	return pos, ctrlJump, nil
}

// execList detokenizes and emits program lines in [a,b] (or all lines if
// no range is given) through the screen sink.
func (i *Interpreter) execList(toks []byte, pos int) (int, ctrl, error) {
	lo, hi := uint16(0), uint16(65535)
	p := skipSpaces(toks, pos)
	if p < len(toks) && isDigitByte(toks[p]) {
		n, next, err := parseLineNumber(toks, p)
		if err != nil {
			return next, ctrlNext, err
		}
		lo, hi = n, n
		p = skipSpaces(toks, next)
		if p < len(toks) && toks[p] == '-' {
			p++
			p = skipSpaces(toks, p)
			if p < len(toks) && isDigitByte(toks[p]) {
				n2, next2, err := parseLineNumber(toks, p)
				if err != nil {
					return next2, ctrlNext, err
				}
				hi = n2
				p = next2
			} else {
				hi = 65535
			}
		}
	}
	for _, n := range i.Prog.Lines() {
		if n < lo || n > hi {
			continue
		}
		body, _ := i.Prog.Get(n)
		if err := i.Screen.WriteString(lineNumberText(n)); err != nil {
			return p, ctrlNext, err
		}
		if err := i.Screen.WriteByte(' '); err != nil {
			return p, ctrlNext, err
		}
		if err := i.Screen.WriteString(string(detokenize(body))); err != nil {
			return p, ctrlNext, err
		}
		if err := i.Screen.Newline(); err != nil {
			return p, ctrlNext, err
		}
	}
	return len(toks), ctrlEndLine, nil
}
