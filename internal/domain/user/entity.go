package user

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents the users table. Rows are created on first authored write by
// upserting on email; the external identity provider owns credentials.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalID   string    `gorm:"size:128;index" json:"-"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:320;uniqueIndex;not null" json:"email"`
	AvatarURL    string    `gorm:"size:512" json:"avatar_url,omitempty"`
	AuthProvider string    `gorm:"size:32;not null;default:'jwt'" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// DefaultName derives a display name from the local part of an email address.
func DefaultName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if local == "" {
		return "member"
	}
	return local
}
