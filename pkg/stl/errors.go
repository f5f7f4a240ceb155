package stl

import (
	"errors"
	"fmt"
)

// ErrFormat is matched by every *FormatError through errors.Is
var ErrFormat = errors.New("invalid binary STL")

// FormatError reports a binary STL buffer that is too short for its own
// header or for the number of triangles it declares.
type FormatError struct {
	// Triangles is the declared triangle count, or -1 when the header itself
	// is incomplete
	Triangles int64
	// Declared is the number of bytes the header requires
	Declared int64
	// Available is the length of the input
	Available int
}

func (e *FormatError) Error() string {
	if e.Triangles < 0 {
		return fmt.Sprintf("STL file too short or invalid: need at least %d bytes, got %d", e.Declared, e.Available)
	}
	return fmt.Sprintf("STL file size does not match number of triangles: %d triangles need %d bytes, got %d",
		e.Triangles, e.Declared, e.Available)
}

// Is lets errors.Is(err, ErrFormat) match
func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}
