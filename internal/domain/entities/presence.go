package entities

import (
	"time"

	"github.com/google/uuid"
)

// PresenceRecord is a live connection of a user to a meeting room. It is never persisted.
type PresenceRecord struct {
	UserID    uuid.UUID `json:"userId"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	ChannelID string    `json:"channelId"`
	JoinedAt  time.Time `json:"joinedAt"`
	LastSeen  time.Time `json:"lastSeen"`
}

// Identity is the caller identity carried by an authenticated channel.
type Identity struct {
	UserID   uuid.UUID
	FullName string
	Email    string
}
