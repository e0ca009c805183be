package errors

// ErrorCode is the stable, client-visible error kind.
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 200

	// General
	ErrorCode_INTERNAL          ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT  ErrorCode = 1001
	ErrorCode_NOT_FOUND         ErrorCode = 1002
	ErrorCode_ALREADY_EXISTS    ErrorCode = 1003
	ErrorCode_PERMISSION_DENIED ErrorCode = 1004
	ErrorCode_FORBIDDEN         ErrorCode = 1005
	ErrorCode_UNAUTHENTICATED   ErrorCode = 1006
	ErrorCode_INVALID_PAYLOAD   ErrorCode = 1007

	// Auth
	ErrorCode_AUTH_INVALID_TOKEN  ErrorCode = 2000
	ErrorCode_AUTH_TOKEN_EXPIRED  ErrorCode = 2001
	ErrorCode_AUTH_USER_NOT_FOUND ErrorCode = 2002

	// Meeting
	ErrorCode_MEETING_INVALID_ID            ErrorCode = 3000
	ErrorCode_MEETING_NOT_FOUND             ErrorCode = 3001
	ErrorCode_MEETING_NOT_CREATOR           ErrorCode = 3002
	ErrorCode_MEETING_NOT_PARTICIPANT       ErrorCode = 3003
	ErrorCode_MEETING_PHASE_MISMATCH        ErrorCode = 3004
	ErrorCode_MEETING_CREATOR_CANNOT_SUBMIT ErrorCode = 3005
	ErrorCode_MEETING_UNKNOWN_TASK_AUTHOR   ErrorCode = 3006
	ErrorCode_MEETING_NOT_FINISHED          ErrorCode = 3007

	// Task
	ErrorCode_TASK_NOT_FOUND      ErrorCode = 4000
	ErrorCode_TASK_NOT_AUTHOR     ErrorCode = 4001
	ErrorCode_TASK_APPROVED       ErrorCode = 4002
	ErrorCode_TASK_ALREADY_EXISTS ErrorCode = 4003

	// Integration
	ErrorCode_INTEGRATION_STORAGE_UNAVAILABLE ErrorCode = 5000
	ErrorCode_INTEGRATION_STORAGE_FAILED      ErrorCode = 5001
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                         "OK",
	ErrorCode_INTERNAL:                        "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:                "INVALID_ARGUMENT",
	ErrorCode_NOT_FOUND:                       "NOT_FOUND",
	ErrorCode_ALREADY_EXISTS:                  "ALREADY_EXISTS",
	ErrorCode_PERMISSION_DENIED:               "PERMISSION_DENIED",
	ErrorCode_FORBIDDEN:                       "FORBIDDEN",
	ErrorCode_UNAUTHENTICATED:                 "UNAUTHENTICATED",
	ErrorCode_INVALID_PAYLOAD:                 "INVALID_PAYLOAD",
	ErrorCode_AUTH_INVALID_TOKEN:              "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:              "AUTH_TOKEN_EXPIRED",
	ErrorCode_AUTH_USER_NOT_FOUND:             "AUTH_USER_NOT_FOUND",
	ErrorCode_MEETING_INVALID_ID:              "MEETING_INVALID_ID",
	ErrorCode_MEETING_NOT_FOUND:               "MEETING_NOT_FOUND",
	ErrorCode_MEETING_NOT_CREATOR:             "MEETING_NOT_CREATOR",
	ErrorCode_MEETING_NOT_PARTICIPANT:         "MEETING_NOT_PARTICIPANT",
	ErrorCode_MEETING_PHASE_MISMATCH:          "MEETING_PHASE_MISMATCH",
	ErrorCode_MEETING_CREATOR_CANNOT_SUBMIT:   "MEETING_CREATOR_CANNOT_SUBMIT",
	ErrorCode_MEETING_UNKNOWN_TASK_AUTHOR:     "MEETING_UNKNOWN_TASK_AUTHOR",
	ErrorCode_MEETING_NOT_FINISHED:            "MEETING_NOT_FINISHED",
	ErrorCode_TASK_NOT_FOUND:                  "TASK_NOT_FOUND",
	ErrorCode_TASK_NOT_AUTHOR:                 "TASK_NOT_AUTHOR",
	ErrorCode_TASK_APPROVED:                   "TASK_APPROVED",
	ErrorCode_TASK_ALREADY_EXISTS:             "TASK_ALREADY_EXISTS",
	ErrorCode_INTEGRATION_STORAGE_UNAVAILABLE: "INTEGRATION_STORAGE_UNAVAILABLE",
	ErrorCode_INTEGRATION_STORAGE_FAILED:      "INTEGRATION_STORAGE_FAILED",
}

// String returns the symbolic name of the code.
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
