package common

// SuccessResponse is the envelope of every successful response
type SuccessResponse struct {
	Code    int         `json:"code" example:"200"`
	Message string      `json:"message" example:"success"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorResponse is the envelope of every failed response
type ErrorResponse struct {
	Code    string            `json:"code" example:"MEETING_NOT_FOUND"`
	Message string            `json:"message" example:"Meeting not found"`
	Info    string            `json:"info,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// MessageResponse carries a plain confirmation
type MessageResponse struct {
	Message string `json:"message" example:"Meeting deleted"`
}
