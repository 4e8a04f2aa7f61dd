package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

var ErrProfileNotFound = errors.New("profile not found")
var ErrHandleTaken = errors.New("handle already used")

type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
)

func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleUser, RoleModerator:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// Profile is the public identity of a contributor. Karma is only ever
// changed by moderation outcomes and votes on the profile's tips.
type Profile struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Handle       string         `gorm:"uniqueIndex;not null" json:"handle"`
	Role         Role           `gorm:"type:text;not null;default:'user'" json:"role"`
	Karma        int            `gorm:"not null;default:0" json:"karma"`
	Languages    pq.StringArray `gorm:"type:text[];not null;default:'{en}'" json:"languages"`
	PasswordHash string         `gorm:"not null" json:"-"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
}

// BeforeCreate assigns a fresh UUID when none is set.
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Role == "" {
		p.Role = RoleUser
	}
	return nil
}
