package pipeline

import "fmt"

// Kind classifies where in the pipeline a failure happened, so callers can
// report it without inspecting the wrapped cause.
type Kind string

const (
	KindAnalysis   Kind = "analysis"
	KindIndexing   Kind = "indexing"
	KindGeneration Kind = "generation"
	KindInternal   Kind = "internal"
)

// Error wraps a pipeline failure with its stage classification.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}
