package buildrun

import (
	"errors"
	"fmt"
)

// DirError is returned when the build directory can't be created.
type DirError struct {
	Path string
	Err  error
}

var _ error = (*DirError)(nil)

func (e *DirError) Error() string {
	return fmt.Sprintf("failed to create build directory %s: %v", e.Path, e.Err)
}

func (e *DirError) Unwrap() error {
	return e.Err
}

// StepError reports a step that exited with a non-zero status. None of the following steps were run.
type StepError struct {
	Step     string
	ExitCode int
}

var _ error = (*StepError)(nil)

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s exited with status %d", e.Step, e.ExitCode)
}

// ExitCode maps the result of Run to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.ExitCode
	}

	return 1
}
