package presenter

import (
	userDTO "github.com/johnquangdev/meeting-quality/internal/adapter/dto/user"
	"github.com/johnquangdev/meeting-quality/internal/domain/entities"
)

// ToUserSummary converts a User entity to the participant picker entry
func ToUserSummary(u *entities.User) *userDTO.UserSummary {
	if u == nil {
		return nil
	}
	return &userDTO.UserSummary{
		ID:       u.ID,
		FullName: u.DisplayName(),
		Email:    u.Email,
	}
}

// ToListUsersResponse converts users to the list response
func ToListUsersResponse(users []*entities.User) *userDTO.ListUsersResponse {
	out := make([]*userDTO.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, ToUserSummary(u))
	}
	return &userDTO.ListUsersResponse{Users: out, Total: len(out)}
}
