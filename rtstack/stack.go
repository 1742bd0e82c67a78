// Package rtstack implements the runtime stack of FOR and GOSUB frames
// described in spec §4.5, grounded on cpu.Chip's pattern of a concrete
// struct with explicit typed fields (no interface indirection) and
// custom error types for exhaustion/mismatch conditions instead of
// sentinel errors.
package rtstack

import "github.com/jmchacon/basic/basicerr"

// MaxDepth is the combined FOR+GOSUB frame cap (reference: 256 frames).
const MaxDepth = 256

// Frame is a single stack entry, either a ForFrame or a GosubFrame.
type Frame struct {
	IsFor bool
	For   ForFrame
	Gosub GosubFrame
}

// ForFrame is pushed by FOR and consulted/popped by NEXT.
type ForFrame struct {
	Var          string
	Step         float64
	Limit        float64
	ResumeLine   uint16
	ResumeOffset uint16
}

// GosubFrame is pushed by GOSUB and popped by RETURN.
type GosubFrame struct {
	ResumeLine   uint16
	ResumeOffset uint16
}

// Stack is the combined runtime stack; FOR and GOSUB frames interleave on
// the same stack so that RETURN can discard FOR frames above the
// matching GOSUB, per spec §4.5.
type Stack struct {
	frames []Frame
}

// New returns an empty runtime stack.
func New() *Stack {
	return &Stack{}
}

// Reset empties the stack (used by NEW/RUN/CLR).
func (s *Stack) Reset() {
	s.frames = nil
}

// Depth returns the current number of frames.
func (s *Stack) Depth() int {
	return len(s.frames)
}

// PushFor pushes a FOR frame, raising OutOfMemory if the depth cap would
// be exceeded.
func (s *Stack) PushFor(f ForFrame) error {
	if len(s.frames) >= MaxDepth {
		return basicerr.New(basicerr.OutOfMemory)
	}
	s.frames = append(s.frames, Frame{IsFor: true, For: f})
	return nil
}

// PushGosub pushes a GOSUB frame, raising OutOfMemory if the depth cap
// would be exceeded.
func (s *Stack) PushGosub(f GosubFrame) error {
	if len(s.frames) >= MaxDepth {
		return basicerr.New(basicerr.OutOfMemory)
	}
	s.frames = append(s.frames, Frame{IsFor: false, Gosub: f})
	return nil
}

// FindFor locates the nearest FOR frame matching varName, searching from
// the top, and whether it was found. Used to implement NEXT V which must
// unwind any inner loops above it.
func (s *Stack) FindFor(varName string) (int, *ForFrame, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].IsFor && s.frames[i].For.Var == varName {
			return i, &s.frames[i].For, true
		}
	}
	return -1, nil, false
}

// FindTopFor locates the nearest FOR frame of any name, along with its
// stack index, for a bare NEXT with no variable.
func (s *Stack) FindTopFor() (int, *ForFrame, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if s.frames[i].IsFor {
			return i, &s.frames[i].For, true
		}
	}
	return -1, nil, false
}

// PopTo truncates the stack to length idx+1, discarding every frame above
// it (NEXT discarding the frames stacked above the matched FOR while
// keeping that FOR frame itself).
func (s *Stack) PopTo(idx int) {
	s.frames = s.frames[:idx+1]
}

// Pop removes and returns the top frame.
func (s *Stack) Pop() (Frame, bool) {
	if len(s.frames) == 0 {
		return Frame{}, false
	}
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return f, true
}

// PopGosub pops frames down to and including the nearest GOSUB frame,
// discarding any FOR frames above it, and returns that GOSUB frame.
// ReturnWithoutGosub if none exists.
func (s *Stack) PopGosub() (GosubFrame, error) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if !s.frames[i].IsFor {
			g := s.frames[i].Gosub
			s.frames = s.frames[:i]
			return g, nil
		}
	}
	return GosubFrame{}, basicerr.New(basicerr.ReturnWithoutGosub)
}
