package tree

import "github.com/arloliu/vtree/section"

// containerKind distinguishes array frames from dict frames.
type containerKind uint8

const (
	kindArray containerKind = iota + 1
	kindDict
)

func (k containerKind) String() string {
	if k == kindDict {
		return "dict"
	}

	return "array"
}

// frame is the bookkeeping record of one open container.
type frame struct {
	kind     containerKind
	expected int   // element count declared at begin
	written  int   // elements written so far; dict pairs count once, at the value
	start    int64 // sink offset of the container's type code; key offsets are relative to it

	keyPending bool                    // dict only: a key was written and its value is due
	keys       []section.KeyIndexEntry // dict only: one entry per key, in write order
}

// remaining returns how many elements may still be written.
func (f *frame) remaining() int {
	return f.expected - f.written
}

// frameStack is the strictly nested stack of open containers.
//
// Popped frames stay in the backing array so a later push at the same depth
// reuses their key slice.
type frameStack struct {
	frames []frame
}

// push opens a new frame on top of the stack and returns it.
func (s *frameStack) push(kind containerKind, count int, start int64) *frame {
	n := len(s.frames)
	if n < cap(s.frames) {
		s.frames = s.frames[:n+1]
	} else {
		s.frames = append(s.frames, frame{})
	}

	f := &s.frames[n]
	keys := f.keys[:0]
	*f = frame{
		kind:     kind,
		expected: count,
		start:    start,
		keys:     keys,
	}

	return f
}

// top returns the innermost open frame, or nil at root level.
func (s *frameStack) top() *frame {
	if len(s.frames) == 0 {
		return nil
	}

	return &s.frames[len(s.frames)-1]
}

// pop removes the innermost frame. The caller must have validated it.
func (s *frameStack) pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

// depth returns the number of open containers.
func (s *frameStack) depth() int {
	return len(s.frames)
}
