package tip

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"areasense/internal/area"
	"areasense/internal/metrics"

	"github.com/google/uuid"
)

const maxReportReason = 500

type Config struct {
	MaxTextLength int
	ApproveKarma  int
	RejectKarma   int
	VoteKarma     int
	HalfLife      time.Duration
}

func DefaultConfig() Config {
	return Config{
		MaxTextLength: 240,
		ApproveKarma:  10,
		RejectKarma:   2,
		VoteKarma:     1,
		HalfLife:      7 * 24 * time.Hour,
	}
}

// Service is the tip store: submission, moderation transitions, votes and
// the ranked read path.
type Service struct {
	Repo Repository
	Cfg  Config
	Now  func() time.Time
}

func NewService(repo Repository, cfg Config) *Service {
	return &Service{Repo: repo, Cfg: cfg, Now: time.Now}
}

type SubmitInput struct {
	AreaID   string
	Category string
	Text     string
	MediaURL string
	AuthorID uuid.UUID
}

func (s *Service) Submit(ctx context.Context, in SubmitInput) (*Tip, error) {
	t, err := s.validate(ctx, in)
	if err != nil {
		metrics.TipSubmissions.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if err := s.Repo.CreateTip(ctx, t); err != nil {
		return nil, fmt.Errorf("create tip: %w", err)
	}
	metrics.TipSubmissions.WithLabelValues("accepted").Inc()
	log.Printf("INFO: [TipStore] tip %d submitted to area %s (category=%s)", t.ID, t.AreaID, t.Category)
	return t, nil
}

func (s *Service) validate(ctx context.Context, in SubmitInput) (*Tip, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, invalid("text", "must not be empty")
	}
	if n := utf8.RuneCountInString(text); n > s.Cfg.MaxTextLength {
		return nil, invalid("text", fmt.Sprintf("%d characters exceeds the limit of %d", n, s.Cfg.MaxTextLength))
	}

	cat, err := ParseCategory(strings.TrimSpace(in.Category))
	if err != nil {
		return nil, invalid("category", err.Error())
	}

	var media *string
	if raw := strings.TrimSpace(in.MediaURL); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return nil, invalid("media_url", "must be an absolute http(s) URL")
		}
		media = &raw
	}

	areaID := strings.TrimSpace(in.AreaID)
	if areaID == "" {
		return nil, invalid("area_id", "required")
	}
	ok, err := s.Repo.AreaExists(ctx, areaID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, invalid("area_id", fmt.Sprintf("unknown area %q", areaID))
	}

	if in.AuthorID == uuid.Nil {
		return nil, invalid("author_id", "required")
	}
	ok, err = s.Repo.ProfileExists(ctx, in.AuthorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, invalid("author_id", "unknown profile")
	}

	author := in.AuthorID
	return &Tip{
		AreaID:    areaID,
		AuthorID:  &author,
		Category:  cat,
		Text:      text,
		MediaURL:  media,
		Status:    StatusPending,
		CreatedAt: s.Now().UTC(),
	}, nil
}

type VoteResult struct {
	TipID     uint64 `json:"tip_id"`
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
}

// Vote records userID's vote on an approved tip. A repeated vote replaces
// the previous one; it never accumulates.
func (s *Service) Vote(ctx context.Context, tipID uint64, userID uuid.UUID, dir Direction) (VoteResult, error) {
	if _, err := ParseDirection(string(dir)); err != nil {
		return VoteResult{}, invalid("direction", err.Error())
	}
	if userID == uuid.Nil {
		return VoteResult{}, invalid("user_id", "required")
	}

	var res VoteResult
	err := s.Repo.WithTip(ctx, tipID, func(tx Tx, t *Tip) error {
		if t.Status != StatusApproved {
			return fmt.Errorf("%w: tip %d is %s", ErrNotVotable, t.ID, t.Status)
		}

		prev, err := tx.VoteOf(userID)
		if err != nil {
			return err
		}
		next := dir.weight()

		if prev != next {
			applyWeight(t, prev, -1)
			applyWeight(t, next, +1)
			if err := tx.SetVote(userID, next); err != nil {
				return err
			}
			if t.AuthorID != nil && s.Cfg.VoteKarma != 0 {
				if err := tx.AdjustKarma(*t.AuthorID, int(next-prev)*s.Cfg.VoteKarma); err != nil {
					return err
				}
			}
		}

		res = VoteResult{TipID: t.ID, Upvotes: t.Upvotes, Downvotes: t.Downvotes}
		return nil
	})
	if err != nil {
		return VoteResult{}, err
	}
	metrics.TipVotes.WithLabelValues(string(dir)).Inc()
	return res, nil
}

func applyWeight(t *Tip, w int8, sign int) {
	switch w {
	case 1:
		t.Upvotes += sign
	case -1:
		t.Downvotes += sign
	}
}

type Decision struct {
	Tip        Tip `json:"tip"`
	KarmaDelta int `json:"karma_delta"`
}

// Decide moves a pending tip to approved or rejected and applies the
// author's karma change in the same commit.
func (s *Service) Decide(ctx context.Context, tipID uint64, moderatorID uuid.UUID, outcome Status) (Decision, error) {
	if outcome != StatusApproved && outcome != StatusRejected {
		return Decision{}, invalid("outcome", fmt.Sprintf("must be %s or %s", StatusApproved, StatusRejected))
	}

	var dec Decision
	err := s.Repo.WithTip(ctx, tipID, func(tx Tx, t *Tip) error {
		if !t.Status.CanTransition(outcome) {
			return fmt.Errorf("%w: tip %d is already %s", ErrInvalidTransition, t.ID, t.Status)
		}

		now := s.Now().UTC()
		t.Status = outcome
		t.DecidedAt = &now
		if moderatorID != uuid.Nil {
			mod := moderatorID
			t.DecidedBy = &mod
		}

		delta := s.Cfg.ApproveKarma
		if outcome == StatusRejected {
			delta = -s.Cfg.RejectKarma
		}
		if t.AuthorID == nil {
			delta = 0
		}
		if delta != 0 {
			if err := tx.AdjustKarma(*t.AuthorID, delta); err != nil {
				return err
			}
		}

		dec = Decision{Tip: *t, KarmaDelta: delta}
		return nil
	})
	if err != nil {
		return Decision{}, err
	}

	metrics.TipTransitions.WithLabelValues(string(outcome)).Inc()
	log.Printf("INFO: [TipStore] tip %d %s by %s (karma %+d)", tipID, outcome, moderatorID, dec.KarmaDelta)
	return dec, nil
}

// Report files a moderation signal against a tip. reporterID may be nil.
func (s *Service) Report(ctx context.Context, tipID uint64, reporterID *uuid.UUID, reason string) (*Report, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, invalid("reason", "must not be empty")
	}
	if utf8.RuneCountInString(reason) > maxReportReason {
		return nil, invalid("reason", fmt.Sprintf("exceeds the limit of %d characters", maxReportReason))
	}
	if _, err := s.Repo.GetTip(ctx, tipID); err != nil {
		return nil, err
	}

	r := &Report{
		TipID:      tipID,
		ReporterID: reporterID,
		Reason:     reason,
		CreatedAt:  s.Now().UTC(),
	}
	if err := s.Repo.CreateReport(ctx, r); err != nil {
		return nil, fmt.Errorf("create report: %w", err)
	}
	return r, nil
}

// ListTips returns the approved tips of an area in ranking order.
func (s *Service) ListTips(ctx context.Context, areaID string) ([]Ranked, error) {
	ok, err := s.Repo.AreaExists(ctx, areaID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, area.ErrNotFound
	}
	tips, err := s.Repo.ListTips(ctx, areaID, StatusApproved)
	if err != nil {
		return nil, err
	}
	return Scorer{HalfLife: s.Cfg.HalfLife}.Rank(tips, s.Now()), nil
}

func (s *Service) Get(ctx context.Context, id uint64) (*Tip, error) {
	return s.Repo.GetTip(ctx, id)
}
