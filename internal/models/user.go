package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleParticipant UserRole = "participant"
	RoleAdmin       UserRole = "admin"
)

// User is the authenticated identity as resolved from Casdoor. It is not
// persisted here; the local persistence counterpart is Profile.
type User struct {
	ID       string   `json:"id"`
	FullName string   `json:"full_name"`
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`

	AvatarURL *string `json:"avatar_url"`

	EmailVerified bool `json:"email_verified"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile is the local per-user row used by reporting to materialize a display
// name and email. One row per identity, upserted on first authenticated call.
type Profile struct {
	ID       string  `json:"id" gorm:"primaryKey;size:255"`
	Username string  `json:"username" gorm:"not null;size:100"`
	Email    *string `json:"email" gorm:"size:255"`
	Phone    *string `json:"phone" gorm:"size:32"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Profile) TableName() string {
	return "profiles"
}
