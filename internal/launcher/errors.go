package launcher

import (
	"errors"
	"fmt"
)

// Failure kinds. Every one of them ends the invocation.
var (
	ErrUsage       = errors.New("usage error")
	ErrParse       = errors.New("parse error")
	ErrPrivilege   = errors.New("privilege error")
	ErrFilesystem  = errors.New("filesystem error")
	ErrResource    = errors.New("resource error")
	ErrEnvironment = errors.New("environment error")
	ErrExec        = errors.New("exec error")
)

// StepError records which preparation step failed, its kind and the
// underlying OS error if there was one.
type StepError struct {
	Kind error
	Step string
	Err  error
}

func (e *StepError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%v: %s", e.Kind, e.Step)
	}
	return fmt.Sprintf("%v: %s: %v", e.Kind, e.Step, e.Err)
}

func (e *StepError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func stepError(kind error, step string, err error) error {
	return &StepError{Kind: kind, Step: step, Err: err}
}
