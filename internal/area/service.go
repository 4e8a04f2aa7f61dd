package area

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"sync/atomic"

	"areasense/internal/metrics"
)

// Repository is the read side of the curated catalog.
type Repository interface {
	ListAreas(ctx context.Context) ([]Area, error)
	GetArea(ctx context.Context, id string) (*Area, error)
	ListBriefings(ctx context.Context, areaID string) ([]BriefingCard, error)
	ListEvents(ctx context.Context, areaID string) ([]Event, error)
}

// Resolver serves Resolve from the last published Index.
type Resolver struct {
	Repo            Repository
	DefaultRadiusKm float64

	rebuildMu sync.Mutex
	current   atomic.Pointer[Index]
}

func NewResolver(repo Repository, defaultRadiusKm float64) *Resolver {
	r := &Resolver{Repo: repo, DefaultRadiusKm: defaultRadiusKm}
	r.current.Store(NewIndex(nil, defaultRadiusKm))
	return r
}

// Rebuild loads every area, builds a fresh index and swaps it in.
// On error the previous index stays published. Rebuilds run one at a
// time, so the last one to publish is also the last one to load.
func (r *Resolver) Rebuild(ctx context.Context, trigger string) error {
	r.rebuildMu.Lock()
	defer r.rebuildMu.Unlock()

	areas, err := r.Repo.ListAreas(ctx)
	if err != nil {
		metrics.AreaReindexes.WithLabelValues(trigger, "error").Inc()
		return fmt.Errorf("load areas: %w", err)
	}
	ix := NewIndex(areas, r.DefaultRadiusKm)
	r.current.Store(ix)

	metrics.AreaIndexSize.Set(float64(ix.Len()))
	metrics.AreaReindexes.WithLabelValues(trigger, "ok").Inc()
	log.Printf("INFO: [AreaIndex] rebuilt with %d areas (trigger=%s)", ix.Len(), trigger)
	return nil
}

func (r *Resolver) Index() *Index { return r.current.Load() }

func (r *Resolver) Resolve(p LatLng) (Match, error) {
	m, err := r.Index().Resolve(p)
	switch {
	case err == nil:
		metrics.AreaResolves.WithLabelValues(string(m.Via)).Inc()
	case errors.Is(err, ErrNotFound):
		metrics.AreaResolves.WithLabelValues("not_found").Inc()
	default:
		metrics.AreaResolves.WithLabelValues("invalid").Inc()
	}
	return m, err
}

// Service is the read API over areas and their curated content.
type Service struct {
	Repo     Repository
	Resolver *Resolver
}

func (s *Service) Resolve(p LatLng) (Match, error) { return s.Resolver.Resolve(p) }

func (s *Service) Area(ctx context.Context, id string) (*Area, error) {
	return s.Repo.GetArea(ctx, id)
}

// Briefings returns the area's cards grouped by category, then by id.
func (s *Service) Briefings(ctx context.Context, areaID string) ([]BriefingCard, error) {
	if _, err := s.Repo.GetArea(ctx, areaID); err != nil {
		return nil, err
	}
	cards, err := s.Repo.ListBriefings(ctx, areaID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(cards, func(i, j int) bool {
		ri, rj := cards[i].Category.rank(), cards[j].Category.rank()
		if ri != rj {
			return ri < rj
		}
		return cards[i].ID < cards[j].ID
	})
	return cards, nil
}

// Events returns the area's events by start time, then id.
func (s *Service) Events(ctx context.Context, areaID string) ([]Event, error) {
	if _, err := s.Repo.GetArea(ctx, areaID); err != nil {
		return nil, err
	}
	evs, err := s.Repo.ListEvents(ctx, areaID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(evs, func(i, j int) bool {
		if !evs[i].StartTS.Equal(evs[j].StartTS) {
			return evs[i].StartTS.Before(evs[j].StartTS)
		}
		return evs[i].ID < evs[j].ID
	})
	return evs, nil
}
