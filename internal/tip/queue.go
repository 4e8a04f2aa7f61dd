package tip

import (
	"context"
	"sort"
)

// Queue is the moderation view: every pending tip, oldest first. It is
// derived from the repository on each call and never cached.
type Queue struct {
	Repo Repository
}

type PendingTip struct {
	Tip
	Reports int `json:"reports"`
}

func (q *Queue) Pending(ctx context.Context, limit int) ([]PendingTip, error) {
	tips, err := q.Repo.ListPending(ctx, limit)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tips, func(i, j int) bool {
		if !tips[i].CreatedAt.Equal(tips[j].CreatedAt) {
			return tips[i].CreatedAt.Before(tips[j].CreatedAt)
		}
		return tips[i].ID < tips[j].ID
	})

	ids := make([]uint64, len(tips))
	for i, t := range tips {
		ids[i] = t.ID
	}
	counts, err := q.Repo.CountReports(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]PendingTip, len(tips))
	for i, t := range tips {
		out[i] = PendingTip{Tip: t, Reports: counts[t.ID]}
	}
	return out, nil
}
