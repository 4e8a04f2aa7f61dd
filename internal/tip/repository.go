package tip

import (
	"context"

	"github.com/google/uuid"
)

// Repository owns tip records. Implementations live in internal/store.
type Repository interface {
	AreaExists(ctx context.Context, areaID string) (bool, error)
	ProfileExists(ctx context.Context, id uuid.UUID) (bool, error)

	CreateTip(ctx context.Context, t *Tip) error
	GetTip(ctx context.Context, id uint64) (*Tip, error)

	// WithTip runs fn while holding the exclusive lock of one tip. Changes
	// fn makes to the tip (status, counts, decision fields) and through tx
	// are committed together when fn returns nil, and discarded otherwise.
	// Returns ErrNotFound for an unknown id.
	WithTip(ctx context.Context, id uint64, fn func(tx Tx, t *Tip) error) error

	// ListTips returns the area's tips with the given status, unordered.
	ListTips(ctx context.Context, areaID string, status Status) ([]Tip, error)
	// ListPending returns pending tips oldest first (created_at, then id).
	// limit <= 0 means no limit.
	ListPending(ctx context.Context, limit int) ([]Tip, error)

	CreateReport(ctx context.Context, r *Report) error
	CountReports(ctx context.Context, tipIDs []uint64) (map[uint64]int, error)
}

// Tx is the write scope handed to WithTip callbacks.
type Tx interface {
	// VoteOf returns the caller's current vote weight (+1, -1) or 0.
	VoteOf(userID uuid.UUID) (int8, error)
	// SetVote replaces the user's vote; weight 0 removes it.
	SetVote(userID uuid.UUID, weight int8) error
	AdjustKarma(profileID uuid.UUID, delta int) error
}
