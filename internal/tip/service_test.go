package tip_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"areasense/internal/area"
	"areasense/internal/auth"
	"areasense/internal/store"
	"areasense/internal/tip"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	mem   *store.Memory
	svc   *tip.Service
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemory()
	require.NoError(t, mem.ImportCatalog(context.Background(), area.Catalog{Areas: []area.CatalogArea{
		{ID: "andheri_w", Name: "Andheri West", City: "Mumbai", Lat: 19.1197, Lng: 72.8468},
		{ID: "colaba", Name: "Colaba", City: "Mumbai", Lat: 18.9067, Lng: 72.8147},
	}}))

	f := &fixture{mem: mem, clock: time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)}
	f.svc = tip.NewService(mem, tip.DefaultConfig())
	f.svc.Now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) profile(t *testing.T, handle string) uuid.UUID {
	t.Helper()
	p := &auth.Profile{Handle: handle, PasswordHash: "x"}
	require.NoError(t, f.mem.CreateProfile(context.Background(), p))
	return p.ID
}

func (f *fixture) karma(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := f.mem.GetProfile(context.Background(), id)
	require.NoError(t, err)
	return p.Karma
}

func (f *fixture) submit(t *testing.T, author uuid.UUID, text string) *tip.Tip {
	t.Helper()
	tp, err := f.svc.Submit(context.Background(), tip.SubmitInput{
		AreaID: "andheri_w", Category: "auto", Text: text, AuthorID: author,
	})
	require.NoError(t, err)
	return tp
}

func (f *fixture) approved(t *testing.T, author, mod uuid.UUID, text string) *tip.Tip {
	t.Helper()
	tp := f.submit(t, author, text)
	_, err := f.svc.Decide(context.Background(), tp.ID, mod, tip.StatusApproved)
	require.NoError(t, err)
	return tp
}

func TestSubmitApproveListScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.profile(t, "LocalGuide_97")
	mod := f.profile(t, "mod")

	tp, err := f.svc.Submit(ctx, tip.SubmitInput{
		AreaID:   "andheri_w",
		Category: "auto",
		Text:     "  Shared auto ₹12 to DN Nagar  ",
		AuthorID: author,
	})
	require.NoError(t, err)
	assert.Equal(t, tip.StatusPending, tp.Status)
	assert.Equal(t, "Shared auto ₹12 to DN Nagar", tp.Text)
	assert.Zero(t, tp.Upvotes)
	assert.Zero(t, tp.Downvotes)

	listed, err := f.svc.ListTips(ctx, "andheri_w")
	require.NoError(t, err)
	assert.Empty(t, listed, "pending tips are hidden")

	dec, err := f.svc.Decide(ctx, tp.ID, mod, tip.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, tip.StatusApproved, dec.Tip.Status)
	assert.Equal(t, 10, dec.KarmaDelta)
	require.NotNil(t, dec.Tip.DecidedAt)
	require.NotNil(t, dec.Tip.DecidedBy)
	assert.Equal(t, mod, *dec.Tip.DecidedBy)

	listed, err = f.svc.ListTips(ctx, "andheri_w")
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, tp.ID, listed[0].ID)
	assert.Zero(t, listed[0].Upvotes)
	assert.InDelta(t, 1.0, listed[0].Score, 1e-9)

	assert.Equal(t, 10, f.karma(t, author))
}

func TestSubmitValidation(t *testing.T) {
	f := newFixture(t)
	author := f.profile(t, "author")

	cases := []struct {
		name  string
		in    tip.SubmitInput
		field string
	}{
		{"blank text", tip.SubmitInput{AreaID: "andheri_w", Category: "auto", Text: "   ", AuthorID: author}, "text"},
		{"too long", tip.SubmitInput{AreaID: "andheri_w", Category: "auto", Text: strings.Repeat("₹", 241), AuthorID: author}, "text"},
		{"category", tip.SubmitInput{AreaID: "andheri_w", Category: "taxi", Text: "ok", AuthorID: author}, "category"},
		{"media url", tip.SubmitInput{AreaID: "andheri_w", Category: "bus", Text: "ok", MediaURL: "ftp://x/y.jpg", AuthorID: author}, "media_url"},
		{"unknown area", tip.SubmitInput{AreaID: "pune", Category: "bus", Text: "ok", AuthorID: author}, "area_id"},
		{"missing author", tip.SubmitInput{AreaID: "andheri_w", Category: "bus", Text: "ok"}, "author_id"},
		{"unknown author", tip.SubmitInput{AreaID: "andheri_w", Category: "bus", Text: "ok", AuthorID: uuid.New()}, "author_id"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Submit(context.Background(), tc.in)
			var verr *tip.ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tc.field, verr.Field)
		})
	}

	pending, err := f.mem.ListPending(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, pending, "failed submissions leave no record")

	// exactly at the limit, counted in characters
	_, err = f.svc.Submit(context.Background(), tip.SubmitInput{
		AreaID: "andheri_w", Category: "misc", Text: strings.Repeat("₹", 240), AuthorID: author,
	})
	assert.NoError(t, err)
}

func TestDecideTwiceDoesNotDoubleKarma(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.profile(t, "author")
	mod := f.profile(t, "mod")
	tp := f.submit(t, author, "Backpacks front-carry in metro")

	_, err := f.svc.Decide(ctx, tp.ID, mod, tip.StatusApproved)
	require.NoError(t, err)

	_, err = f.svc.Decide(ctx, tp.ID, mod, tip.StatusApproved)
	assert.ErrorIs(t, err, tip.ErrInvalidTransition)
	_, err = f.svc.Decide(ctx, tp.ID, mod, tip.StatusRejected)
	assert.ErrorIs(t, err, tip.ErrInvalidTransition)

	assert.Equal(t, 10, f.karma(t, author))
}

func TestDecideReject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.profile(t, "author")
	tp := f.submit(t, author, "spam")

	dec, err := f.svc.Decide(ctx, tp.ID, uuid.Nil, tip.StatusRejected)
	require.NoError(t, err)
	assert.Equal(t, -2, dec.KarmaDelta)
	assert.Nil(t, dec.Tip.DecidedBy)
	assert.Equal(t, -2, f.karma(t, author))

	_, err = f.svc.Decide(ctx, tp.ID, uuid.Nil, tip.Status("archived"))
	var verr *tip.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "outcome", verr.Field)

	_, err = f.svc.Decide(ctx, 999, uuid.Nil, tip.StatusApproved)
	assert.ErrorIs(t, err, tip.ErrNotFound)
}

func TestDecideCancelledLeavesNoMutation(t *testing.T) {
	f := newFixture(t)
	author := f.profile(t, "author")
	tp := f.submit(t, author, "text")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.svc.Decide(ctx, tp.ID, uuid.Nil, tip.StatusApproved)
	assert.ErrorIs(t, err, context.Canceled)

	got, err := f.svc.Get(context.Background(), tp.ID)
	require.NoError(t, err)
	assert.Equal(t, tip.StatusPending, got.Status)
	assert.Nil(t, got.DecidedAt)
	assert.Zero(t, f.karma(t, author))
}

func TestVoteReplacesNeverAccumulates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.profile(t, "author")
	voter := f.profile(t, "voter")
	tp := f.approved(t, author, uuid.Nil, "Four Bungalows BEST stop")

	for i := 0; i < 3; i++ {
		res, err := f.svc.Vote(ctx, tp.ID, voter, tip.DirectionUp)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Upvotes)
		assert.Zero(t, res.Downvotes)
	}
	assert.Equal(t, 11, f.karma(t, author))

	res, err := f.svc.Vote(ctx, tp.ID, voter, tip.DirectionDown)
	require.NoError(t, err)
	assert.Zero(t, res.Upvotes)
	assert.Equal(t, 1, res.Downvotes)
	assert.Equal(t, 9, f.karma(t, author))

	res, err = f.svc.Vote(ctx, tp.ID, voter, tip.DirectionClear)
	require.NoError(t, err)
	assert.Zero(t, res.Upvotes)
	assert.Zero(t, res.Downvotes)
	assert.Equal(t, 10, f.karma(t, author))

	_, err = f.svc.Vote(ctx, tp.ID, voter, tip.Direction("sideways"))
	var verr *tip.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "direction", verr.Field)
}

func TestVoteRequiresApprovedTip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.profile(t, "author")
	voter := f.profile(t, "voter")

	pending := f.submit(t, author, "pending")
	_, err := f.svc.Vote(ctx, pending.ID, voter, tip.DirectionUp)
	assert.ErrorIs(t, err, tip.ErrNotVotable)

	rejected := f.submit(t, author, "rejected")
	_, err = f.svc.Decide(ctx, rejected.ID, uuid.Nil, tip.StatusRejected)
	require.NoError(t, err)
	_, err = f.svc.Vote(ctx, rejected.ID, voter, tip.DirectionUp)
	assert.ErrorIs(t, err, tip.ErrNotVotable)

	_, err = f.svc.Vote(ctx, 404, voter, tip.DirectionUp)
	assert.ErrorIs(t, err, tip.ErrNotFound)
}

func TestListTipsRanking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.profile(t, "author")

	old := f.approved(t, author, uuid.Nil, "old")
	f.clock = f.clock.Add(time.Hour)
	mid := f.approved(t, author, uuid.Nil, "mid")

	first, err := f.svc.ListTips(ctx, "andheri_w")
	require.NoError(t, err)
	second, err := f.svc.ListTips(ctx, "andheri_w")
	require.NoError(t, err)
	assert.Equal(t, first, second, "unchanged snapshot, identical sequence")
	require.Len(t, first, 2)
	assert.Equal(t, mid.ID, first[0].ID)
	assert.Equal(t, old.ID, first[1].ID)

	// a newly approved tip with more votes moves strictly ahead
	f.clock = f.clock.Add(time.Hour)
	fresh := f.approved(t, author, uuid.Nil, "fresh")
	for _, h := range []string{"v1", "v2"} {
		_, err := f.svc.Vote(ctx, fresh.ID, f.profile(t, h), tip.DirectionUp)
		require.NoError(t, err)
	}
	_, err = f.svc.Vote(ctx, mid.ID, f.profile(t, "v3"), tip.DirectionDown)
	require.NoError(t, err)

	ranked, err := f.svc.ListTips(ctx, "andheri_w")
	require.NoError(t, err)
	require.Len(t, ranked, 3)
	assert.Equal(t, []uint64{fresh.ID, old.ID, mid.ID}, []uint64{ranked[0].ID, ranked[1].ID, ranked[2].ID})
	assert.Greater(t, ranked[0].Score, ranked[1].Score)

	other, err := f.svc.ListTips(ctx, "colaba")
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = f.svc.ListTips(ctx, "pune")
	assert.ErrorIs(t, err, area.ErrNotFound)
}

func TestConcurrentVotesAllPersist(t *testing.T) {
	f := newFixture(t)
	author := f.profile(t, "author")
	tp := f.approved(t, author, uuid.Nil, "popular")

	const n = 50
	voters := make([]uuid.UUID, n)
	for i := range voters {
		voters[i] = f.profile(t, "voter"+strings.Repeat("x", i))
	}

	var wg sync.WaitGroup
	for i, v := range voters {
		wg.Add(1)
		go func(i int, v uuid.UUID) {
			defer wg.Done()
			dir := tip.DirectionUp
			if i%5 == 0 {
				dir = tip.DirectionDown
			}
			_, err := f.svc.Vote(context.Background(), tp.ID, v, dir)
			assert.NoError(t, err)
		}(i, v)
	}
	wg.Wait()

	got, err := f.svc.Get(context.Background(), tp.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, got.Upvotes)
	assert.Equal(t, 10, got.Downvotes)
	assert.Equal(t, 10+30, f.karma(t, author))
}

func TestConcurrentVoteAndRejectEndRejected(t *testing.T) {
	f := newFixture(t)
	author := f.profile(t, "author")
	voter := f.profile(t, "voter")

	for i := 0; i < 20; i++ {
		tp := f.submit(t, author, "racing")

		var wg sync.WaitGroup
		var voteErr, decideErr error
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, voteErr = f.svc.Vote(context.Background(), tp.ID, voter, tip.DirectionUp)
		}()
		go func() {
			defer wg.Done()
			_, decideErr = f.svc.Decide(context.Background(), tp.ID, uuid.Nil, tip.StatusRejected)
		}()
		wg.Wait()

		require.NoError(t, decideErr)
		assert.ErrorIs(t, voteErr, tip.ErrNotVotable)

		got, err := f.svc.Get(context.Background(), tp.ID)
		require.NoError(t, err)
		assert.Equal(t, tip.StatusRejected, got.Status)
		assert.Zero(t, got.Upvotes)

		_, err = f.svc.Vote(context.Background(), tp.ID, voter, tip.DirectionUp)
		assert.ErrorIs(t, err, tip.ErrNotVotable)
	}
	assert.Equal(t, -40, f.karma(t, author))
}

func TestReportAndQueue(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	author := f.profile(t, "author")
	reporter := f.profile(t, "reporter")

	first := f.submit(t, author, "first")
	f.clock = f.clock.Add(time.Minute)
	second := f.submit(t, author, "second")
	approved := f.approved(t, author, uuid.Nil, "already live")

	_, err := f.svc.Report(ctx, second.ID, &reporter, "wrong fare")
	require.NoError(t, err)
	_, err = f.svc.Report(ctx, second.ID, nil, "outdated")
	require.NoError(t, err)

	_, err = f.svc.Report(ctx, second.ID, &reporter, "  ")
	var verr *tip.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "reason", verr.Field)

	_, err = f.svc.Report(ctx, 999, &reporter, "gone")
	assert.ErrorIs(t, err, tip.ErrNotFound)

	q := &tip.Queue{Repo: f.mem}
	pending, err := q.Pending(ctx, 0)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, first.ID, pending[0].ID)
	assert.Zero(t, pending[0].Reports)
	assert.Equal(t, second.ID, pending[1].ID)
	assert.Equal(t, 2, pending[1].Reports)
	for _, p := range pending {
		assert.NotEqual(t, approved.ID, p.ID)
	}

	limited, err := q.Pending(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, first.ID, limited[0].ID)
}
