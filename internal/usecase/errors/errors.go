package errors

import "errors"

// Common errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden access")
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
)

// Meeting errors
var (
	ErrMeetingNotFound     = errors.New("meeting not found")
	ErrInvalidPhase        = errors.New("invalid meeting phase")
	ErrNotCreator          = errors.New("user is not the meeting creator")
	ErrNotParticipant      = errors.New("user is not a participant")
	ErrMeetingNotFinished  = errors.New("statistics are only available for finished meetings")
	ErrPhaseMismatch       = errors.New("submission does not match the current phase")
	ErrCreatorCannotSubmit = errors.New("meeting creator cannot submit evaluations")
	ErrUnknownTaskAuthor   = errors.New("task author not found in task plannings")
)

// Task errors
var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrNotTaskAuthor     = errors.New("user is not the task author")
	ErrTaskApproved      = errors.New("cannot edit approved tasks")
	ErrTaskAlreadyExists = errors.New("task already exists for this meeting")
)

// User errors
var (
	ErrUserNotFound = errors.New("user not found")
)

// Integration errors
var (
	ErrStorageUnavailable = errors.New("report storage is not configured")
	ErrStorageFailed      = errors.New("report storage failed")
)

// PhaseMismatchError names the phase a meeting is in when a submission for another phase
// is rejected. It is wrapped together with ErrPhaseMismatch.
type PhaseMismatchError struct {
	Current string
}

func (e *PhaseMismatchError) Error() string {
	return "current phase is " + e.Current
}
