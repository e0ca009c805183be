package entities

import (
	"time"

	"github.com/google/uuid"
)

// User is a person who can create or take part in meetings.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email     string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	FullName  string    `json:"fullName" gorm:"type:varchar(255);not null"`
	IsActive  bool      `json:"isActive" gorm:"default:true;not null"`
	CreatedAt time.Time `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updatedAt" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// DisplayName returns the full name, falling back to the email.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}
