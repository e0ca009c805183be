package user

import "github.com/google/uuid"

// UserSummary is the participant picker entry
type UserSummary struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"fullName"`
	Email    string    `json:"email"`
}

// ListUsersResponse represents the list of users
type ListUsersResponse struct {
	Users []*UserSummary `json:"users"`
	Total int            `json:"total"`
}
