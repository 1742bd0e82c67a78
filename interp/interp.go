// Package interp implements the statement dispatcher of spec §4.6: the
// central Interpreter struct bundling the memory image, variable/array/
// function tables, program storage, runtime stack, string heap, DATA
// cursor, screen sink and input source, grounded on cpu.Chip's
// single-struct-owns-everything shape and atari2600.Atari2600's
// orchestration of cooperating sub-components into one run loop.
package interp

import (
	"errors"
	"math/rand"

	"github.com/jmchacon/basic/basicerr"
	"github.com/jmchacon/basic/breaksignal"
	"github.com/jmchacon/basic/internal/basicutil"
	"github.com/jmchacon/basic/memimg"
	"github.com/jmchacon/basic/program"
	"github.com/jmchacon/basic/rtstack"
	"github.com/jmchacon/basic/screen"
	"github.com/jmchacon/basic/strheap"
	"github.com/jmchacon/basic/value"
	"github.com/jmchacon/basic/vars"
)

// errCantContinue is raised by CONT when no program is stopped. It falls
// outside the closed §7 taxonomy (the original dialect reports it the
// same way), so it is a plain error rather than a *basicerr.Error.
var errCantContinue = errors.New("?CAN'T CONTINUE ERROR")

// InputSource is the external collaborator for INPUT and GET.
type InputSource interface {
	// ReadLine blocks for one line of input (INPUT), without the
	// trailing newline.
	ReadLine() (string, error)
	// ReadKey polls for a single pending keystroke (GET), returning
	// ok=false immediately if none is available.
	ReadKey() (b byte, ok bool, err error)
}

// ctrl is the outcome a statement handler hands back to the dispatch
// loop: whether to continue sequentially, jump elsewhere, end the
// current line early, or halt.
type ctrl int

const (
	ctrlNext ctrl = iota
	ctrlJump
	ctrlEndLine
	ctrlStop
	ctrlHalt
)

// Interpreter owns every piece of mutable state a running BASIC program
// touches. It implements eval.Env directly so the expression evaluator
// reads variables, calls functions and peeks memory through the same
// object that dispatches statements.
type Interpreter struct {
	Img     *memimg.Image
	Scalars *vars.Scalars
	Arrays  *vars.Arrays
	Funcs   *vars.Functions
	Prog    *program.Program
	Stack   *rtstack.Stack
	Heap    *strheap.Heap
	Screen  screen.Sink
	Input   InputSource
	Break   breaksignal.Source

	rnd     *rand.Rand
	lastRnd float64

	inDirect bool

	// jumpLine/jumpOffset are the target of a pending ctrlJump, set by
	// the statement handler that produced it and consumed immediately
	// by the dispatch loop.
	jumpLine   uint16
	jumpOffset int

	// contLine/contOffset/contValid record where STOP halted, for CONT.
	contLine   uint16
	contOffset int
	contValid  bool

	// DATA cursor: dataLine/dataOffset is the next scan position;
	// dataInPayload is true when it points inside an already-located
	// DATA statement's literal list rather than at a fresh search
	// position.
	dataLine      uint16
	dataOffset    int
	dataInPayload bool
}

// New returns a freshly powered-on Interpreter with memsiz bytes of
// simulated memory.
func New(memsiz uint16, sink screen.Sink, input InputSource, brk breaksignal.Source) *Interpreter {
	img := memimg.New(memsiz)
	heap := strheap.New(img)
	i := &Interpreter{
		Img:    img,
		Heap:   heap,
		Prog:   program.New(),
		Stack:  rtstack.New(),
		Screen: sink,
		Input:  input,
		Break:  brk,
		rnd:    rand.New(rand.NewSource(1)),
	}
	i.Scalars = vars.NewScalars(heap)
	i.Arrays = vars.NewArrays(heap)
	i.Funcs = vars.NewFunctions()
	return i
}

// roots implements strheap.Roots by flattening every live string
// descriptor reachable from scalars and arrays into one slice, dropping
// any already-empty descriptor so Collect never wastes a relocation slot
// on one. Expression-evaluation temporaries never enter the heap until
// committed via Set, so they need no root enumeration of their own.
func (i *Interpreter) roots() []*strheap.Descriptor {
	return basicutil.LiveDescriptors(i.Scalars.StringRoots(), i.Arrays.StringRoots())
}

// --- eval.Env ---

// GetScalar implements eval.Env.
func (i *Interpreter) GetScalar(name string) value.Value {
	return i.Scalars.Get(name)
}

// GetArrayElem implements eval.Env.
func (i *Interpreter) GetArrayElem(name string, isString bool, subs []int) (value.Value, error) {
	return i.Arrays.Get(name, isString, subs)
}

// Peek implements eval.Env.
func (i *Interpreter) Peek(addr uint16) (byte, error) {
	return i.Img.ReadByte(addr), nil
}

// Rnd implements eval.Env's RND(x): negative x reseeds from x, zero
// repeats the last value produced, positive draws a fresh uniform value
// in [0,1).
func (i *Interpreter) Rnd(seed float64) float64 {
	switch {
	case seed < 0:
		i.rnd = rand.New(rand.NewSource(int64(seed * 1e6)))
		i.lastRnd = i.rnd.Float64()
		return i.lastRnd
	case seed == 0:
		return i.lastRnd
	default:
		i.lastRnd = i.rnd.Float64()
		return i.lastRnd
	}
}

// Fre implements eval.Env's FRE(x): the free byte count in the string
// heap gap between STREND and FRETOP. x is accepted but unused, matching
// the original's two FRE variants collapsing to the same measurement
// here.
func (i *Interpreter) Fre(x float64) float64 {
	return float64(int(i.Img.Fretop()) - int(i.Img.Strend()))
}

// Pos implements eval.Env's POS(x): the screen sink's current column. x
// is accepted but unused.
func (i *Interpreter) Pos(x float64) float64 {
	return float64(i.Screen.Column())
}

// --- mode entry points ---

// ExecuteLine is the direct-mode REPL entry point of spec §6. A line
// whose first non-space token is a decimal integer is a program edit
// (stored or, with an empty body, deleted); anything else is tokenized
// and executed immediately.
func (i *Interpreter) ExecuteLine(raw string) error {
	toks := tokenizeLine(raw)
	pos := skipSpaces(toks, 0)
	if pos < len(toks) && isDigitByte(toks[pos]) {
		start := pos
		for pos < len(toks) && isDigitByte(toks[pos]) {
			pos++
		}
		n := atoiToks(toks[start:pos])
		pos = skipSpaces(toks, pos)
		i.Prog.Put(uint16(n), append([]byte(nil), toks[pos:]...))
		return nil
	}
	i.inDirect = true
	defer func() { i.inDirect = false }()
	return i.runDirect(toks, pos)
}

// runDirect executes a direct-mode statement stream. CONT is special: it
// resumes a stopped program run via runFrom rather than being treated as
// an ordinary statement, since there is no enclosing runFrom loop at the
// REPL.
func (i *Interpreter) runDirect(toks []byte, pos int) error {
	p := pos
	for {
		p = skipSpaces(toks, p)
		if p >= len(toks) {
			return nil
		}
		if isContToken(toks, p) {
			if !i.contValid {
				return errCantContinue
			}
			i.contValid = false
			return i.runFrom(i.contLine, i.contOffset)
		}
		if i.Break.Raised() {
			i.Break.Clear()
			return basicerr.New(basicerr.Break)
		}
		next, sig, err := i.execStmt(0, toks, p)
		if err != nil {
			return err
		}
		switch sig {
		case ctrlHalt, ctrlStop, ctrlEndLine:
			return nil
		case ctrlJump:
			return i.runFrom(i.jumpLine, i.jumpOffset)
		default:
			p = next
			if p < len(toks) && toks[p] == ':' {
				p++
			}
		}
	}
}

// Run starts program-mode execution at start (or the first stored line
// if start is 0 and absent), resetting runtime state first, per spec
// §4.6's RUN contract.
func (i *Interpreter) Run(start uint16) error {
	i.resetForRun()
	line := start
	if line == 0 {
		first, ok := i.Prog.First()
		if !ok {
			return nil
		}
		line = first
	}
	return i.runFrom(line, 0)
}

// runFrom drives the program-mode statement loop from (line, offset)
// until STOP, END, NEW, a break, or the program runs off the end of
// stored lines.
func (i *Interpreter) runFrom(line uint16, offset int) error {
	for {
		toks, ok := i.Prog.Get(line)
		if !ok {
			return basicerr.AtLine(basicerr.UndefinedLine, line)
		}
		jumped := false
		for offset < len(toks) {
			if i.Break.Raised() {
				i.Break.Clear()
				i.contLine, i.contOffset = line, offset
				i.contValid = true
				return basicerr.AtLine(basicerr.Break, line)
			}
			next, sig, err := i.execStmt(line, toks, offset)
			if err != nil {
				if be, isBE := err.(*basicerr.Error); isBE && be.Line == 0 {
					err = basicerr.AtLine(be.Code, line)
				}
				return err
			}
			switch sig {
			case ctrlHalt:
				return nil
			case ctrlStop:
				i.contLine, i.contOffset = line, next
				i.contValid = true
				return basicerr.AtLine(basicerr.Break, line)
			case ctrlJump:
				line, offset = i.jumpLine, i.jumpOffset
				jumped = true
			case ctrlEndLine:
				offset = len(toks)
			default:
				offset = next
				if offset < len(toks) && toks[offset] == ':' {
					offset++
				}
			}
			if jumped {
				break
			}
		}
		if jumped {
			continue
		}
		nl, ok := i.Prog.Next(line)
		if !ok {
			return nil
		}
		line, offset = nl, 0
	}
}

// resetForRun reinitializes scalars, arrays, functions, the runtime
// stack, the memory image's variable/heap pointers and the DATA cursor,
// without touching stored program lines. Driven by RUN and CLR.
func (i *Interpreter) resetForRun() {
	i.Scalars = vars.NewScalars(i.Heap)
	i.Arrays = vars.NewArrays(i.Heap)
	i.Funcs = vars.NewFunctions()
	i.Stack.Reset()
	i.Img.Reset()
	i.contValid = false
	if first, ok := i.Prog.First(); ok {
		i.dataLine, i.dataOffset, i.dataInPayload = first, 0, false
	} else {
		i.dataLine, i.dataOffset, i.dataInPayload = 0, 0, false
	}
}

// doNew additionally clears stored program lines, per NEW's contract.
func (i *Interpreter) doNew() {
	i.Prog.Clear()
	i.resetForRun()
}
