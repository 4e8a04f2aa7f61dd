package auth

import (
	"context"

	"github.com/google/uuid"
)

// ProfileRepository is implemented by the stores.
type ProfileRepository interface {
	CreateProfile(ctx context.Context, p *Profile) error
	GetProfile(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetProfileByHandle(ctx context.Context, handle string) (*Profile, error)
	SetRole(ctx context.Context, id uuid.UUID, role Role) error
	DeleteProfile(ctx context.Context, id uuid.UUID) error
}
