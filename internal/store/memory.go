package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"areasense/internal/area"
	"areasense/internal/auth"
	"areasense/internal/tip"

	"github.com/google/uuid"
)

// Memory keeps every record in process. It backs DATABASE_URL=memory and
// the tests. Tip mutations serialize on a per-tip mutex and commit their
// staged writes under the store lock, so a failed or cancelled callback
// leaves nothing behind.
type Memory struct {
	mu sync.RWMutex

	areas     map[string]area.Area
	briefings map[string][]area.BriefingCard
	events    map[string][]area.Event

	profiles map[uuid.UUID]auth.Profile
	handles  map[string]uuid.UUID

	tips    map[uint64]tip.Tip
	votes   map[uint64]map[uuid.UUID]int8
	reports map[uint64][]tip.Report

	lastTipID      uint64
	lastReportID   uint64
	lastBriefingID uint64
	lastEventID    uint64

	tipLocks sync.Map
}

func NewMemory() *Memory {
	return &Memory{
		areas:     map[string]area.Area{},
		briefings: map[string][]area.BriefingCard{},
		events:    map[string][]area.Event{},
		profiles:  map[uuid.UUID]auth.Profile{},
		handles:   map[string]uuid.UUID{},
		tips:      map[uint64]tip.Tip{},
		votes:     map[uint64]map[uuid.UUID]int8{},
		reports:   map[uint64][]tip.Report{},
	}
}

// ---- areas

func (m *Memory) ListAreas(ctx context.Context) ([]area.Area, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]area.Area, 0, len(m.areas))
	for _, a := range m.areas {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *Memory) GetArea(ctx context.Context, id string) (*area.Area, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.areas[id]
	if !ok {
		return nil, area.ErrNotFound
	}
	return &a, nil
}

func (m *Memory) ListBriefings(ctx context.Context, areaID string) ([]area.BriefingCard, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]area.BriefingCard(nil), m.briefings[areaID]...), nil
}

func (m *Memory) ListEvents(ctx context.Context, areaID string) ([]area.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]area.Event(nil), m.events[areaID]...), nil
}

// ImportCatalog upserts the catalog's areas and replaces their briefings
// and events. Areas missing from the catalog are left alone.
func (m *Memory) ImportCatalog(ctx context.Context, c area.Catalog) error {
	now := time.Now().UTC()
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ca := range c.Areas {
		a, cards, evs := ca.Records(now)
		for i := range cards {
			m.lastBriefingID++
			cards[i].ID = m.lastBriefingID
		}
		for i := range evs {
			m.lastEventID++
			evs[i].ID = m.lastEventID
		}
		m.areas[a.ID] = a
		m.briefings[a.ID] = cards
		m.events[a.ID] = evs
	}
	return nil
}

// DeleteArea removes the area and everything it owns.
func (m *Memory) DeleteArea(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.areas[id]; !ok {
		return area.ErrNotFound
	}
	delete(m.areas, id)
	delete(m.briefings, id)
	delete(m.events, id)
	for tid, t := range m.tips {
		if t.AreaID == id {
			delete(m.tips, tid)
			delete(m.votes, tid)
			delete(m.reports, tid)
			m.tipLocks.Delete(tid)
		}
	}
	return nil
}

// ---- profiles

func (m *Memory) CreateProfile(ctx context.Context, p *auth.Profile) error {
	if err := p.BeforeCreate(nil); err != nil {
		return err
	}
	key := strings.ToLower(p.Handle)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.handles[key]; taken {
		return auth.ErrHandleTaken
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if len(p.Languages) == 0 {
		p.Languages = []string{"en"}
	}
	m.profiles[p.ID] = *p
	m.handles[key] = p.ID
	return nil
}

func (m *Memory) GetProfile(ctx context.Context, id uuid.UUID) (*auth.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.profiles[id]
	if !ok {
		return nil, auth.ErrProfileNotFound
	}
	return &p, nil
}

func (m *Memory) GetProfileByHandle(ctx context.Context, handle string) (*auth.Profile, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.handles[strings.ToLower(handle)]
	if !ok {
		return nil, auth.ErrProfileNotFound
	}
	p := m.profiles[id]
	return &p, nil
}

func (m *Memory) SetRole(ctx context.Context, id uuid.UUID, role auth.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return auth.ErrProfileNotFound
	}
	p.Role = role
	m.profiles[id] = p
	return nil
}

// DeleteProfile keeps the profile's tips and reports with a null author.
func (m *Memory) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[id]
	if !ok {
		return auth.ErrProfileNotFound
	}
	delete(m.profiles, id)
	delete(m.handles, strings.ToLower(p.Handle))
	for tid, t := range m.tips {
		if t.AuthorID != nil && *t.AuthorID == id {
			t.AuthorID = nil
			m.tips[tid] = t
		}
	}
	for tid, rs := range m.reports {
		for i := range rs {
			if rs[i].ReporterID != nil && *rs[i].ReporterID == id {
				rs[i].ReporterID = nil
			}
		}
		m.reports[tid] = rs
	}
	return nil
}

// ---- tips

func (m *Memory) AreaExists(ctx context.Context, areaID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.areas[areaID]
	return ok, nil
}

func (m *Memory) ProfileExists(ctx context.Context, id uuid.UUID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.profiles[id]
	return ok, nil
}

func (m *Memory) CreateTip(ctx context.Context, t *tip.Tip) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.areas[t.AreaID]; !ok {
		return area.ErrNotFound
	}
	if t.AuthorID != nil {
		if _, ok := m.profiles[*t.AuthorID]; !ok {
			return &tip.ValidationError{Field: "author_id", Reason: "unknown profile"}
		}
	}
	m.lastTipID++
	t.ID = m.lastTipID
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	m.tips[t.ID] = *t
	return nil
}

func (m *Memory) GetTip(ctx context.Context, id uint64) (*tip.Tip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tips[id]
	if !ok {
		return nil, tip.ErrNotFound
	}
	return &t, nil
}

func (m *Memory) tipLock(id uint64) *sync.Mutex {
	l, _ := m.tipLocks.LoadOrStore(id, &sync.Mutex{})
	return l.(*sync.Mutex)
}

func (m *Memory) WithTip(ctx context.Context, id uint64, fn func(tx tip.Tx, t *tip.Tip) error) error {
	lock := m.tipLock(id)
	lock.Lock()
	defer lock.Unlock()

	m.mu.RLock()
	current, ok := m.tips[id]
	base := make(map[uuid.UUID]int8, len(m.votes[id]))
	for u, w := range m.votes[id] {
		base[u] = w
	}
	m.mu.RUnlock()
	if !ok {
		return tip.ErrNotFound
	}

	tx := &memoryTx{base: base, votes: map[uuid.UUID]int8{}, karma: map[uuid.UUID]int{}}
	work := current
	if err := fn(tx, &work); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tips[id]; !ok {
		return tip.ErrNotFound
	}
	// Only the fields a callback owns are copied back; AuthorID may have
	// been cleared by DeleteProfile meanwhile.
	latest := m.tips[id]
	latest.Status = work.Status
	latest.Upvotes = work.Upvotes
	latest.Downvotes = work.Downvotes
	latest.DecidedAt = work.DecidedAt
	latest.DecidedBy = work.DecidedBy
	m.tips[id] = latest
	if len(tx.votes) > 0 {
		vs := m.votes[id]
		if vs == nil {
			vs = map[uuid.UUID]int8{}
			m.votes[id] = vs
		}
		for u, w := range tx.votes {
			if w == 0 {
				delete(vs, u)
			} else {
				vs[u] = w
			}
		}
	}
	for pid, delta := range tx.karma {
		if p, ok := m.profiles[pid]; ok {
			p.Karma += delta
			m.profiles[pid] = p
		}
	}
	return nil
}

type memoryTx struct {
	base  map[uuid.UUID]int8
	votes map[uuid.UUID]int8
	karma map[uuid.UUID]int
}

func (tx *memoryTx) VoteOf(userID uuid.UUID) (int8, error) {
	if w, ok := tx.votes[userID]; ok {
		return w, nil
	}
	return tx.base[userID], nil
}

func (tx *memoryTx) SetVote(userID uuid.UUID, weight int8) error {
	tx.votes[userID] = weight
	return nil
}

func (tx *memoryTx) AdjustKarma(profileID uuid.UUID, delta int) error {
	tx.karma[profileID] += delta
	return nil
}

func (m *Memory) ListTips(ctx context.Context, areaID string, status tip.Status) ([]tip.Tip, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []tip.Tip
	for _, t := range m.tips {
		if t.AreaID == areaID && t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *Memory) ListPending(ctx context.Context, limit int) ([]tip.Tip, error) {
	m.mu.RLock()
	var out []tip.Tip
	for _, t := range m.tips {
		if t.Status == tip.StatusPending {
			out = append(out, t)
		}
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) CreateReport(ctx context.Context, r *tip.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tips[r.TipID]; !ok {
		return tip.ErrNotFound
	}
	m.lastReportID++
	r.ID = m.lastReportID
	m.reports[r.TipID] = append(m.reports[r.TipID], *r)
	return nil
}

func (m *Memory) CountReports(ctx context.Context, tipIDs []uint64) (map[uint64]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[uint64]int, len(tipIDs))
	for _, id := range tipIDs {
		if n := len(m.reports[id]); n > 0 {
			out[id] = n
		}
	}
	return out, nil
}
