package workerpool

import (
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
)

var (
	ErrPoolDestroyed   = errors.New("workerpool: pool destroyed")
	ErrInvalidOperand  = errors.New("workerpool: invalid operand")
	ErrUnitBusy        = errors.New("workerpool: unit already has a request in flight")
	ErrUnitTerminated  = errors.New("workerpool: unit terminated")
	ErrNoUnits         = errors.New("workerpool: runtime started no units")
	errMalformedResult = errors.New("workerpool: malformed response")
)

// TaskError is returned to the single caller whose task failed on a unit.
type TaskError struct {
	TaskID uuid.UUID
	Worker int
	Err    error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("workerpool: task %s on worker %d: %v", e.TaskID, e.Worker, e.Err)
}

func (e *TaskError) Unwrap() error {
	return e.Err
}
