// Command basic is a REPL and batch runner for the interpreter,
// restructured from vcs_main.go's flag-driven main onto cobra
// subcommands the way ajroetker-goat's CLI layers cobra over a single
// binary: "basic repl" drives ExecuteLine interactively the way the
// original drove atari2600.Atari2600.Tick in a loop, and "basic run"
// loads a source or PRG file non-interactively the way convertprg's
// single-shot file conversion did.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/jmchacon/basic/basicerr"
	"github.com/jmchacon/basic/breaksignal"
	"github.com/jmchacon/basic/interp"
	"github.com/jmchacon/basic/prg"
	"github.com/jmchacon/basic/program"
	"github.com/jmchacon/basic/screen"
	"github.com/jmchacon/basic/token"
)

var (
	memsiz   uint16
	cols     int
	loadAddr uint16
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "basic",
		Short: "A Commodore-dialect BASIC interpreter",
	}
	root.PersistentFlags().Uint16Var(&memsiz, "mem", 38911, "top of usable memory (MEMSIZ)")
	root.PersistentFlags().IntVar(&cols, "cols", screen.DefaultWidth, "screen width in columns")
	root.PersistentFlags().Uint16Var(&loadAddr, "load", prg.DefaultLoadAddr, "load address recorded in PRG files written by save")

	root.AddCommand(newRunCmd())
	root.AddCommand(newReplCmd())
	root.AddCommand(newSaveCmd())
	return root
}

// stdinSource implements interp.InputSource over the process's stdin.
// ReadKey never reports a pending key: GET's single-keystroke polling
// has no sensible meaning against a line-buffered pipe, so GET always
// sees nothing pending when driven this way (documented, not a bug).
type stdinSource struct {
	r *bufio.Reader
}

func newStdinSource() *stdinSource {
	return &stdinSource{r: bufio.NewReader(os.Stdin)}
}

func (s *stdinSource) ReadLine() (string, error) {
	line, err := s.r.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line, nil
}

func (s *stdinSource) ReadKey() (byte, bool, error) {
	return 0, false, nil
}

// breakOnInterrupt raises flag the first time the process receives
// SIGINT, giving RUN's long-running program-mode loop a way to stop at
// the next statement boundary and fall into CONT instead of the process
// just dying, matching the interpreter's BREAK-key contract.
func breakOnInterrupt(flag *breaksignal.Flag) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	go func() {
		<-ch
		flag.Raise()
	}()
}

func newInterpreter() (*interp.Interpreter, *breaksignal.Flag) {
	flag := breaksignal.NewFlag()
	breakOnInterrupt(flag)
	sink := screen.NewColumnWriter(os.Stdout, cols)
	i := interp.New(memsiz, sink, newStdinSource(), flag)
	return i, flag
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "Load a .bas or .prg file and run it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			i, _ := newInterpreter()
			if err := loadProgram(i, args[0]); err != nil {
				return err
			}
			if err := i.Run(0); err != nil {
				return err
			}
			return nil
		},
	}
}

func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive direct-mode session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			i, _ := newInterpreter()
			in := bufio.NewScanner(os.Stdin)
			for in.Scan() {
				if err := i.ExecuteLine(in.Text()); err != nil {
					fmt.Fprintln(os.Stderr, err.Error())
				}
			}
			return in.Err()
		},
	}
}

func newSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "save <in.bas> <out.prg>",
		Short: "Tokenize a plain-text program and write it as a PRG file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := loadSourceFile(args[0])
			if err != nil {
				return err
			}
			return os.WriteFile(args[1], prg.Encode(prog, loadAddr), 0o644)
		},
	}
}

// loadProgram populates i.Prog from either a tokenized PRG file (sniffed
// by the .prg extension) or a plain-text listing.
func loadProgram(i *interp.Interpreter, path string) error {
	if hasPrgExtension(path) {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		p, err := prg.Decode(f)
		if err != nil {
			return fmt.Errorf("decoding %s: %w", path, err)
		}
		for _, n := range p.Lines() {
			body, _ := p.Get(n)
			i.Prog.Put(n, body)
		}
		return nil
	}
	p, err := loadSourceFile(path)
	if err != nil {
		return err
	}
	for _, n := range p.Lines() {
		body, _ := p.Get(n)
		i.Prog.Put(n, body)
	}
	return nil
}

// loadSourceFile tokenizes a plain-text listing (one numbered line per
// text line) into a fresh *program.Program.
func loadSourceFile(path string) (*program.Program, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	prog := program.New()
	for _, line := range splitLines(string(b)) {
		if line == "" {
			continue
		}
		toks := token.TokenizeString(line)
		n, rest, err := leadingLineNumber(toks)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		prog.Put(n, rest)
	}
	return prog, nil
}

func hasPrgExtension(path string) bool {
	return len(path) >= 4 && path[len(path)-4:] == ".prg"
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for idx := 0; idx < len(s); idx++ {
		if s[idx] == '\n' {
			out = append(out, trimCR(s[start:idx]))
			start = idx + 1
		}
	}
	if start < len(s) {
		out = append(out, trimCR(s[start:]))
	}
	return out
}

func trimCR(s string) string {
	if len(s) > 0 && s[len(s)-1] == '\r' {
		return s[:len(s)-1]
	}
	return s
}

// leadingLineNumber splits a tokenized line into its line number and
// remaining token body, raising a syntax error for a line with no
// leading number (program files are expected fully numbered, unlike the
// REPL where a bare statement means direct mode).
func leadingLineNumber(toks []byte) (uint16, []byte, error) {
	pos := 0
	for pos < len(toks) && toks[pos] == ' ' {
		pos++
	}
	start := pos
	for pos < len(toks) && toks[pos] >= '0' && toks[pos] <= '9' {
		pos++
	}
	if pos == start {
		return 0, nil, basicerr.New(basicerr.SyntaxError)
	}
	n := 0
	for _, c := range toks[start:pos] {
		n = n*10 + int(c-'0')
	}
	for pos < len(toks) && toks[pos] == ' ' {
		pos++
	}
	return uint16(n), toks[pos:], nil
}
