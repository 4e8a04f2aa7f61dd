package store

import (
	"context"
	"errors"
	"time"

	"areasense/internal/area"
	"areasense/internal/auth"
	"areasense/internal/jobs"
	"areasense/internal/tip"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Postgres is the durable store. Catalog writes enqueue an AREA_REINDEX job
// in the same transaction.
type Postgres struct {
	DB *gorm.DB
}

func NewPostgres(db *gorm.DB) *Postgres { return &Postgres{DB: db} }

// ---- areas

func (p *Postgres) ListAreas(ctx context.Context) ([]area.Area, error) {
	var out []area.Area
	err := p.DB.WithContext(ctx).Order("id asc").Find(&out).Error
	return out, err
}

func (p *Postgres) GetArea(ctx context.Context, id string) (*area.Area, error) {
	var a area.Area
	if err := p.DB.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, area.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (p *Postgres) ListBriefings(ctx context.Context, areaID string) ([]area.BriefingCard, error) {
	var out []area.BriefingCard
	err := p.DB.WithContext(ctx).Where("area_id = ?", areaID).Order("id asc").Find(&out).Error
	return out, err
}

func (p *Postgres) ListEvents(ctx context.Context, areaID string) ([]area.Event, error) {
	var out []area.Event
	err := p.DB.WithContext(ctx).Where("area_id = ?", areaID).Order("start_ts asc, id asc").Find(&out).Error
	return out, err
}

// ImportCatalog upserts the catalog's areas and replaces their briefings
// and events. Areas missing from the catalog are left alone.
func (p *Postgres) ImportCatalog(ctx context.Context, c area.Catalog) error {
	now := time.Now().UTC()
	return p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ca := range c.Areas {
			a, cards, evs := ca.Records(now)

			if err := tx.Omit(clause.Associations).
				Clauses(clause.OnConflict{
					Columns:   []clause.Column{{Name: "id"}},
					DoUpdates: clause.AssignmentColumns([]string{"name", "city", "ward", "lat", "lng", "boundary", "radius_km", "updated_at"}),
				}).
				Create(&a).Error; err != nil {
				return err
			}

			if err := tx.Where("area_id = ?", a.ID).Delete(&area.BriefingCard{}).Error; err != nil {
				return err
			}
			if err := tx.Where("area_id = ?", a.ID).Delete(&area.Event{}).Error; err != nil {
				return err
			}
			if len(cards) > 0 {
				if err := tx.Create(&cards).Error; err != nil {
					return err
				}
			}
			if len(evs) > 0 {
				if err := tx.Create(&evs).Error; err != nil {
					return err
				}
			}
		}
		return jobs.EnqueueReindex(tx, "catalog import")
	})
}

// DeleteArea removes the area; foreign keys cascade to its content and tips.
func (p *Postgres) DeleteArea(ctx context.Context, id string) error {
	return p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&area.Area{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return area.ErrNotFound
		}
		return jobs.EnqueueReindex(tx, "area deleted: "+id)
	})
}

// ---- profiles

func (p *Postgres) CreateProfile(ctx context.Context, pr *auth.Profile) error {
	if len(pr.Languages) == 0 {
		pr.Languages = []string{"en"}
	}
	err := p.DB.WithContext(ctx).Create(pr).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return auth.ErrHandleTaken
	}
	return err
}

func (p *Postgres) GetProfile(ctx context.Context, id uuid.UUID) (*auth.Profile, error) {
	var pr auth.Profile
	if err := p.DB.WithContext(ctx).First(&pr, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrProfileNotFound
		}
		return nil, err
	}
	return &pr, nil
}

func (p *Postgres) GetProfileByHandle(ctx context.Context, handle string) (*auth.Profile, error) {
	var pr auth.Profile
	if err := p.DB.WithContext(ctx).Where("lower(handle) = lower(?)", handle).First(&pr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrProfileNotFound
		}
		return nil, err
	}
	return &pr, nil
}

func (p *Postgres) SetRole(ctx context.Context, id uuid.UUID, role auth.Role) error {
	res := p.DB.WithContext(ctx).Model(&auth.Profile{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return auth.ErrProfileNotFound
	}
	return nil
}

// DeleteProfile relies on ON DELETE SET NULL for tips and reports.
func (p *Postgres) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	res := p.DB.WithContext(ctx).Delete(&auth.Profile{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return auth.ErrProfileNotFound
	}
	return nil
}

// ---- tips

func (p *Postgres) AreaExists(ctx context.Context, areaID string) (bool, error) {
	var n int64
	err := p.DB.WithContext(ctx).Model(&area.Area{}).Where("id = ?", areaID).Count(&n).Error
	return n > 0, err
}

func (p *Postgres) ProfileExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	err := p.DB.WithContext(ctx).Model(&auth.Profile{}).Where("id = ?", id).Count(&n).Error
	return n > 0, err
}

func (p *Postgres) CreateTip(ctx context.Context, t *tip.Tip) error {
	err := p.DB.WithContext(ctx).Omit(clause.Associations).Create(t).Error
	if !errors.Is(err, gorm.ErrForeignKeyViolated) {
		return err
	}
	// either the area or the author went away after validation
	ok, aerr := p.AreaExists(ctx, t.AreaID)
	if aerr != nil {
		return err
	}
	return tipReferenceError(ok)
}

func tipReferenceError(areaExists bool) error {
	if !areaExists {
		return area.ErrNotFound
	}
	return &tip.ValidationError{Field: "author_id", Reason: "unknown profile"}
}

func (p *Postgres) GetTip(ctx context.Context, id uint64) (*tip.Tip, error) {
	var t tip.Tip
	if err := p.DB.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tip.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// WithTip locks the tip row with SELECT ... FOR UPDATE for the length of
// the transaction.
func (p *Postgres) WithTip(ctx context.Context, id uint64, fn func(tx tip.Tx, t *tip.Tip) error) error {
	return p.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var t tip.Tip
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&t, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return tip.ErrNotFound
			}
			return err
		}

		if err := fn(&postgresTx{db: tx, tipID: id}, &t); err != nil {
			return err
		}

		return tx.Model(&tip.Tip{}).Where("id = ?", id).Updates(map[string]any{
			"status":     t.Status,
			"upvotes":    t.Upvotes,
			"downvotes":  t.Downvotes,
			"decided_at": t.DecidedAt,
			"decided_by": t.DecidedBy,
		}).Error
	})
}

type postgresTx struct {
	db    *gorm.DB
	tipID uint64
}

func (tx *postgresTx) VoteOf(userID uuid.UUID) (int8, error) {
	var v tip.Vote
	err := tx.db.Where("tip_id = ? AND user_id = ?", tx.tipID, userID).Take(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v.Direction, nil
}

func (tx *postgresTx) SetVote(userID uuid.UUID, weight int8) error {
	if weight == 0 {
		return tx.db.Where("tip_id = ? AND user_id = ?", tx.tipID, userID).Delete(&tip.Vote{}).Error
	}
	v := tip.Vote{TipID: tx.tipID, UserID: userID, Direction: weight, UpdatedAt: time.Now().UTC()}
	return tx.db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "tip_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"direction", "updated_at"}),
	}).Create(&v).Error
}

// AdjustKarma is a no-op for a profile that no longer exists.
func (tx *postgresTx) AdjustKarma(profileID uuid.UUID, delta int) error {
	return tx.db.Model(&auth.Profile{}).
		Where("id = ?", profileID).
		UpdateColumn("karma", gorm.Expr("karma + ?", delta)).Error
}

func (p *Postgres) ListTips(ctx context.Context, areaID string, status tip.Status) ([]tip.Tip, error) {
	var out []tip.Tip
	err := p.DB.WithContext(ctx).Where("area_id = ? AND status = ?", areaID, status).Find(&out).Error
	return out, err
}

func (p *Postgres) ListPending(ctx context.Context, limit int) ([]tip.Tip, error) {
	var out []tip.Tip
	q := p.DB.WithContext(ctx).Where("status = ?", tip.StatusPending).Order("created_at asc, id asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

func (p *Postgres) CreateReport(ctx context.Context, r *tip.Report) error {
	err := p.DB.WithContext(ctx).Omit(clause.Associations).Create(r).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return tip.ErrNotFound
	}
	return err
}

func (p *Postgres) CountReports(ctx context.Context, tipIDs []uint64) (map[uint64]int, error) {
	out := make(map[uint64]int, len(tipIDs))
	if len(tipIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		TipID uint64
		N     int
	}
	err := p.DB.WithContext(ctx).Model(&tip.Report{}).
		Select("tip_id, count(*) as n").
		Where("tip_id IN ?", tipIDs).
		Group("tip_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.TipID] = r.N
	}
	return out, nil
}
