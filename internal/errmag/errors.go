package errmag

import (
	"errors"
	"fmt"
)

var (
	ErrShapeMismatch = errors.New("shape mismatch")
	ErrTypeMismatch  = errors.New("type mismatch")
)

// ShapeMismatchError reports a leaf whose [D, N] dims differ from the transposed reference.
type ShapeMismatchError struct {
	Scale       ScaleKey
	Method      MethodKey
	Measurement [2]int // rows, cols of the leaf
	Reference   [2]int // rows, cols of transpose(reference)
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("%s: scale %q method %q: measurement is %dx%d, transposed reference is %dx%d",
		ErrShapeMismatch, e.Scale, e.Method,
		e.Measurement[0], e.Measurement[1], e.Reference[0], e.Reference[1])
}

func (e *ShapeMismatchError) Is(target error) bool {
	return target == ErrShapeMismatch
}

// TypeMismatchError reports a leaf or reference that is not a usable numeric matrix.
// Scale and Method are empty when the failure is not tied to a leaf.
type TypeMismatchError struct {
	Scale  ScaleKey
	Method MethodKey
	Reason string
}

func (e *TypeMismatchError) Error() string {
	if e.Scale == "" && e.Method == "" {
		return fmt.Sprintf("%s: %s", ErrTypeMismatch, e.Reason)
	}
	if e.Method == "" {
		return fmt.Sprintf("%s: scale %q: %s", ErrTypeMismatch, e.Scale, e.Reason)
	}
	return fmt.Sprintf("%s: scale %q method %q: %s", ErrTypeMismatch, e.Scale, e.Method, e.Reason)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}
