package math3d

import (
	"errors"
	"fmt"
)

// Sentinel errors for the failure kinds of the algebra and geometry code.
// Every concrete error type below matches exactly one of these with errors.Is.
var (
	ErrInvalidDimension  = errors.New("invalid dimension")
	ErrIndexOutOfRange   = errors.New("index out of range")
	ErrDegenerate        = errors.New("degenerate operation")
	ErrMalformedGeometry = errors.New("malformed geometry")
)

// DimensionError reports operands whose sizes don't fit the operation.
type DimensionError struct {
	Op   string
	Want string
	Got  string
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: %v: want %s, got %s", e.Op, ErrInvalidDimension, e.Want, e.Got)
}

func (e *DimensionError) Is(target error) bool { return target == ErrInvalidDimension }

// IndexError reports an element or vertex lookup outside its container.
type IndexError struct {
	Op    string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: %v: index %d, length %d", e.Op, ErrIndexOutOfRange, e.Index, e.Len)
}

func (e *IndexError) Is(target error) bool { return target == ErrIndexOutOfRange }

// DegenerateError reports an operation with no meaningful result, such as
// inverting a singular matrix.
type DegenerateError struct {
	Op     string
	Reason string
}

func (e *DegenerateError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Op, ErrDegenerate, e.Reason)
}

func (e *DegenerateError) Is(target error) bool { return target == ErrDegenerate }

// GeometryError reports a face that cannot be turned into triangles.
type GeometryError struct {
	Face    int
	Corners int
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("face %d: %v: %d corners, need at least 3", e.Face, ErrMalformedGeometry, e.Corners)
}

func (e *GeometryError) Is(target error) bool { return target == ErrMalformedGeometry }

func dims(rows, cols int) string {
	return fmt.Sprintf("%dx%d", rows, cols)
}
