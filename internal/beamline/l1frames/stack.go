package l1frames

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrEmptyStack is returned for stacks without frames or with zero-sized frames.
var ErrEmptyStack = errors.New("empty frame stack")

// Stack is an ordered sequence of readout frames. Each frame is a dense
// matrix whose rows are x and whose columns are y, so a pixel is addressed
// as (frame, x, y).
type Stack struct {
	Frames []*mat.Dense
}

// NewStack allocates a zeroed stack of n frames of nx × ny pixels.
func NewStack(n, nx, ny int) *Stack {
	s := &Stack{Frames: make([]*mat.Dense, n)}
	for i := range s.Frames {
		s.Frames[i] = mat.NewDense(nx, ny, nil)
	}
	return s
}

// StackFromSlices builds a stack from data[frame][x][y].
func StackFromSlices(data [][][]float64) (*Stack, error) {
	if len(data) == 0 || len(data[0]) == 0 || len(data[0][0]) == 0 {
		return nil, ErrEmptyStack
	}
	nx, ny := len(data[0]), len(data[0][0])
	s := NewStack(len(data), nx, ny)
	for f, frame := range data {
		if len(frame) != nx {
			return nil, fmt.Errorf("frame %d has %d rows, want %d", f, len(frame), nx)
		}
		for x, row := range frame {
			if len(row) != ny {
				return nil, fmt.Errorf("frame %d row %d has %d columns, want %d", f, x, len(row), ny)
			}
			s.Frames[f].SetRow(x, row)
		}
	}
	return s, nil
}

// Len returns the number of frames.
func (s *Stack) Len() int { return len(s.Frames) }

// Dims returns the frame shape (nx, ny). A stack without frames is 0 × 0.
func (s *Stack) Dims() (nx, ny int) {
	if len(s.Frames) == 0 {
		return 0, 0
	}
	return s.Frames[0].Dims()
}

// At returns the count at (frame, x, y).
func (s *Stack) At(frame, x, y int) float64 {
	return s.Frames[frame].At(x, y)
}

// Set stores v at (frame, x, y).
func (s *Stack) Set(frame, x, y int, v float64) {
	s.Frames[frame].Set(x, y, v)
}

// Contains reports whether (x, y) lies inside the frame shape.
func (s *Stack) Contains(x, y int) bool {
	nx, ny := s.Dims()
	return x >= 0 && x < nx && y >= 0 && y < ny
}

// Clone returns a deep copy that shares no storage with s.
func (s *Stack) Clone() *Stack {
	out := &Stack{Frames: make([]*mat.Dense, len(s.Frames))}
	for i, f := range s.Frames {
		out.Frames[i] = mat.DenseCopyOf(f)
	}
	return out
}

// Values returns every count in (frame, x, y) order.
func (s *Stack) Values() []float64 {
	nx, ny := s.Dims()
	out := make([]float64, 0, len(s.Frames)*nx*ny)
	for _, f := range s.Frames {
		for x := 0; x < nx; x++ {
			out = append(out, f.RawRowView(x)...)
		}
	}
	return out
}

// Validate checks that the stack has frames and that every frame has the
// same shape.
func (s *Stack) Validate() error {
	if s == nil || len(s.Frames) == 0 {
		return ErrEmptyStack
	}
	nx, ny := s.Dims()
	for i, f := range s.Frames {
		if f == nil {
			return fmt.Errorf("frame %d is nil", i)
		}
		r, c := f.Dims()
		if r != nx || c != ny {
			return fmt.Errorf("frame %d is %d×%d, want %d×%d", i, r, c, nx, ny)
		}
	}
	return nil
}
