package entities

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Domain errors
var (
	ErrUserNotFound = errors.New("user not found")
	ErrTaskLocked   = errors.New("task is approved")
)

// UnknownTaskAuthorError rejects a task evaluation that scores an author without a task plan.
type UnknownTaskAuthorError struct {
	AuthorID uuid.UUID
}

func (e *UnknownTaskAuthorError) Error() string {
	return fmt.Sprintf("Task author %s not found in task plannings", e.AuthorID)
}
