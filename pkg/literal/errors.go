package literal

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrEvaluation indicates the text could not be interpreted as literal declarations.
	ErrEvaluation = errors.New("evaluation failed")
	// ErrEvaluationTimeout indicates materialization did not finish before the deadline.
	ErrEvaluationTimeout = errors.New("evaluation timed out")
	// ErrShape indicates a required binding is missing or has the wrong container type.
	ErrShape = errors.New("unexpected shape")
)

// SyntaxError reports malformed input at a position.
type SyntaxError struct {
	Msg string
	Pos Position
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at %s", e.Msg, e.Pos)
}

func (e *SyntaxError) Is(target error) bool {
	return target == ErrEvaluation
}

// ShapeError reports a binding that is absent or not of the expected kind.
type ShapeError struct {
	Binding string
	Want    Kind
	Got     Kind
	Missing bool
}

func (e *ShapeError) Error() string {
	if e.Missing {
		return fmt.Sprintf("binding %s is not defined", e.Binding)
	}
	return fmt.Sprintf("%s is not an %s (got %s)", e.Binding, e.Want, e.Got)
}

func (e *ShapeError) Is(target error) bool {
	return target == ErrShape
}
