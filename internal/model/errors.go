package model

import (
	"errors"
	"fmt"
)

// DataError reports malformed or referentially inconsistent input.
// It is raised at load time, never deferred to solve time.
type DataError struct {
	Field   string
	Message string
}

func (e *DataError) Error() string {
	if e.Field == "" {
		return "data error: " + e.Message
	}
	return fmt.Sprintf("data error: %s: %s", e.Field, e.Message)
}

// NewDataError formats a DataError for field.
func NewDataError(field, format string, args ...any) *DataError {
	return &DataError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ModelConsistencyError reports a payload that does not match the shape
// (scenario set, horizon, weights) fixed when the model was built.
type ModelConsistencyError struct {
	Message string
}

func (e *ModelConsistencyError) Error() string {
	return "model consistency error: " + e.Message
}

// SolveError surfaces a non-optimal solver outcome. Status is the solver's
// status string (INFEASIBLE, UNBOUNDED, ERROR).
type SolveError struct {
	Status string
	Err    error
}

func (e *SolveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("solve error: status %s: %v", e.Status, e.Err)
	}
	return "solve error: status " + e.Status
}

func (e *SolveError) Unwrap() error { return e.Err }

func IsDataError(err error) bool {
	var de *DataError
	return errors.As(err, &de)
}

func IsModelConsistencyError(err error) bool {
	var me *ModelConsistencyError
	return errors.As(err, &me)
}

func IsSolveError(err error) bool {
	var se *SolveError
	return errors.As(err, &se)
}
