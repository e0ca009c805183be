package errors

import (
	"fmt"
	"net/http"
	"time"
)

// AppError is the transport-facing error carried from handlers to the response envelope.
type AppError struct {
	Raw       error
	HTTPCode  int
	Code      ErrorCode
	Message   string
	Details   map[string]string
	Timestamp time.Time
}

// Error implements error interface
func (e AppError) Error() string {
	if e.Raw != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code.String(), e.Message, e.Raw)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e AppError) Unwrap() error {
	return e.Raw
}

// WithDetail adds a detail to the error
func (e AppError) WithDetail(key, value string) AppError {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// WithRaw attaches the underlying cause.
func (e AppError) WithRaw(err error) AppError {
	e.Raw = err
	return e
}

// General Errors
func ErrInternal(err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusInternalServerError,
		Code:      ErrorCode_INTERNAL,
		Message:   "Internal server error",
		Timestamp: time.Now().UTC(),
	}
}

func ErrInvalidArgument(message string) AppError {
	return AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_INVALID_ARGUMENT,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

func ErrNotFound(resource string) AppError {
	return AppError{
		HTTPCode:  http.StatusNotFound,
		Code:      ErrorCode_NOT_FOUND,
		Message:   fmt.Sprintf("%s not found", resource),
		Timestamp: time.Now().UTC(),
	}
}

func ErrAlreadyExists(resource string) AppError {
	return AppError{
		HTTPCode:  http.StatusConflict,
		Code:      ErrorCode_ALREADY_EXISTS,
		Message:   fmt.Sprintf("%s already exists", resource),
		Timestamp: time.Now().UTC(),
	}
}

func ErrPermissionDenied(action string) AppError {
	return AppError{
		HTTPCode:  http.StatusForbidden,
		Code:      ErrorCode_PERMISSION_DENIED,
		Message:   fmt.Sprintf("Permission denied: %s", action),
		Timestamp: time.Now().UTC(),
	}
}

func ErrForbidden(message string) AppError {
	return AppError{
		HTTPCode:  http.StatusForbidden,
		Code:      ErrorCode_FORBIDDEN,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

func ErrUnauthenticated() AppError {
	return AppError{
		HTTPCode:  http.StatusUnauthorized,
		Code:      ErrorCode_UNAUTHENTICATED,
		Message:   "Authentication required",
		Timestamp: time.Now().UTC(),
	}
}

// Authentication Errors
func ErrInvalidToken() AppError {
	return AppError{
		HTTPCode:  http.StatusUnauthorized,
		Code:      ErrorCode_AUTH_INVALID_TOKEN,
		Message:   "Invalid authentication token",
		Timestamp: time.Now().UTC(),
	}
}

func ErrTokenExpired() AppError {
	return AppError{
		HTTPCode:  http.StatusUnauthorized,
		Code:      ErrorCode_AUTH_TOKEN_EXPIRED,
		Message:   "Authentication token has expired",
		Timestamp: time.Now().UTC(),
	}
}

func ErrUserNotFound() AppError {
	return AppError{
		HTTPCode:  http.StatusNotFound,
		Code:      ErrorCode_AUTH_USER_NOT_FOUND,
		Message:   "User not found",
		Timestamp: time.Now().UTC(),
	}
}

// Meeting Errors
func ErrInvalidMeetingID(raw string) AppError {
	return AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_MEETING_INVALID_ID,
		Message:   "Invalid meeting ID",
		Timestamp: time.Now().UTC(),
	}.WithDetail("meeting_id", raw)
}

func ErrMeetingNotFound(meetingID string) AppError {
	return AppError{
		HTTPCode:  http.StatusNotFound,
		Code:      ErrorCode_MEETING_NOT_FOUND,
		Message:   "Meeting not found",
		Timestamp: time.Now().UTC(),
	}.WithDetail("meeting_id", meetingID)
}

func ErrNotCreator() AppError {
	return AppError{
		HTTPCode:  http.StatusForbidden,
		Code:      ErrorCode_MEETING_NOT_CREATOR,
		Message:   "Only the meeting creator can perform this action",
		Timestamp: time.Now().UTC(),
	}
}

func ErrNotParticipant() AppError {
	return AppError{
		HTTPCode:  http.StatusForbidden,
		Code:      ErrorCode_MEETING_NOT_PARTICIPANT,
		Message:   "You are not a participant of this meeting",
		Timestamp: time.Now().UTC(),
	}
}

func ErrPhaseMismatch(current string) AppError {
	return AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_MEETING_PHASE_MISMATCH,
		Message:   "Submission does not match the current meeting phase",
		Timestamp: time.Now().UTC(),
	}.WithDetail("current_phase", current)
}

func ErrCreatorCannotSubmit() AppError {
	return AppError{
		HTTPCode:  http.StatusForbidden,
		Code:      ErrorCode_MEETING_CREATOR_CANNOT_SUBMIT,
		Message:   "Meeting creator cannot submit evaluations",
		Timestamp: time.Now().UTC(),
	}
}

func ErrUnknownTaskAuthor(message string) AppError {
	return AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_MEETING_UNKNOWN_TASK_AUTHOR,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

func ErrMeetingNotFinished() AppError {
	return AppError{
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_MEETING_NOT_FINISHED,
		Message:   "Statistics are only available for finished meetings",
		Timestamp: time.Now().UTC(),
	}
}

// Task Errors
func ErrTaskNotFound(taskID string) AppError {
	return AppError{
		HTTPCode:  http.StatusNotFound,
		Code:      ErrorCode_TASK_NOT_FOUND,
		Message:   "Task not found",
		Timestamp: time.Now().UTC(),
	}.WithDetail("task_id", taskID)
}

func ErrNotTaskAuthor() AppError {
	return AppError{
		HTTPCode:  http.StatusForbidden,
		Code:      ErrorCode_TASK_NOT_AUTHOR,
		Message:   "You can only access your own tasks",
		Timestamp: time.Now().UTC(),
	}
}

func ErrTaskApproved() AppError {
	return AppError{
		HTTPCode:  http.StatusForbidden,
		Code:      ErrorCode_TASK_APPROVED,
		Message:   "Cannot edit approved tasks",
		Timestamp: time.Now().UTC(),
	}
}

func ErrTaskAlreadyExists(meetingID string) AppError {
	return AppError{
		HTTPCode:  http.StatusConflict,
		Code:      ErrorCode_TASK_ALREADY_EXISTS,
		Message:   "You already have a task for this meeting",
		Timestamp: time.Now().UTC(),
	}.WithDetail("meeting_id", meetingID)
}

// Integration Errors
func ErrStorageUnavailable() AppError {
	return AppError{
		HTTPCode:  http.StatusServiceUnavailable,
		Code:      ErrorCode_INTEGRATION_STORAGE_UNAVAILABLE,
		Message:   "Report storage is not configured",
		Timestamp: time.Now().UTC(),
	}
}

func ErrStorageFailed(operation string, err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusBadGateway,
		Code:      ErrorCode_INTEGRATION_STORAGE_FAILED,
		Message:   fmt.Sprintf("Storage operation failed: %s", operation),
		Timestamp: time.Now().UTC(),
	}
}

// Validation Errors
func ErrInvalidPayload(err error) AppError {
	return AppError{
		Raw:       err,
		HTTPCode:  http.StatusBadRequest,
		Code:      ErrorCode_INVALID_PAYLOAD,
		Message:   "Invalid request payload",
		Timestamp: time.Now().UTC(),
	}
}
