package tip

import (
	"math"
	"sort"
	"time"
)

// Scorer ranks approved tips by net votes with an exponential half-life,
// so that fresh tips can climb over old but popular ones.
//
//	base  = net + 1
//	decay = 2^(-age/halfLife)
//	score = base*decay  (base >= 0)
//	        base/decay  (base < 0)
//
// The relative order of two tips does not change with the evaluation time.
type Scorer struct {
	HalfLife time.Duration
}

func (s Scorer) Score(t Tip, now time.Time) float64 {
	base := float64(t.Net() + 1)
	if s.HalfLife <= 0 {
		return base
	}
	age := now.Sub(t.CreatedAt)
	if age < 0 {
		age = 0
	}
	decay := math.Exp2(-age.Hours() / s.HalfLife.Hours())
	if base >= 0 {
		return base * decay
	}
	return base / decay
}

type Ranked struct {
	Tip
	Score float64 `json:"score"`
}

// Rank orders tips by score desc, then created_at desc, then id desc.
func (s Scorer) Rank(tips []Tip, now time.Time) []Ranked {
	out := make([]Ranked, len(tips))
	for i, t := range tips {
		out[i] = Ranked{Tip: t, Score: s.Score(t, now)}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return out
}
