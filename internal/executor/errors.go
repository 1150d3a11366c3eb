package executor

import "fmt"

// PanicError reports a task that panicked instead of returning.
type PanicError struct {
	TaskID string
	Value  any
}

// Error implements the error interface for PanicError.
func (e *PanicError) Error() string {
	return fmt.Sprintf("task %q panicked: %v", e.TaskID, e.Value)
}
