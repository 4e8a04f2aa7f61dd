package area

import (
	"sort"
)

// distances closer than this are considered equal
const tieEpsilonKm = 1e-9

type Via string

const (
	ViaBoundary Via = "boundary"
	ViaCentroid Via = "centroid"
)

type Match struct {
	Area       Area
	DistanceKm float64
	Via        Via
}

// Index is an immutable snapshot of the curated areas. Build a new one
// instead of mutating it; Resolver publishes snapshots atomically.
type Index struct {
	areas         []Area
	byID          map[string]int
	defaultRadius float64
}

func NewIndex(areas []Area, defaultRadiusKm float64) *Index {
	sorted := make([]Area, len(areas))
	copy(sorted, areas)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	byID := make(map[string]int, len(sorted))
	for i, a := range sorted {
		byID[a.ID] = i
	}
	return &Index{areas: sorted, byID: byID, defaultRadius: defaultRadiusKm}
}

func (ix *Index) Len() int { return len(ix.areas) }

func (ix *Index) Get(id string) (Area, bool) {
	i, ok := ix.byID[id]
	if !ok {
		return Area{}, false
	}
	return ix.areas[i], true
}

func (ix *Index) radiusFor(a Area) float64 {
	if a.RadiusKm > 0 {
		return a.RadiusKm
	}
	return ix.defaultRadius
}

// Resolve maps p to an area. A boundary that contains p wins over any
// centroid; an area whose boundary does not contain p is never picked.
// Areas without a boundary match by nearest centroid within their radius.
// Equal distances go to the lowest id.
func (ix *Index) Resolve(p LatLng) (Match, error) {
	if err := ValidateCoordinate(p); err != nil {
		return Match{}, err
	}

	var contained, nearest *Match
	for _, a := range ix.areas {
		d := Haversine(p, a.Centroid())

		if a.HasBoundary() {
			if !a.Boundary.Contains(p) {
				continue
			}
			if contained == nil || d < contained.DistanceKm-tieEpsilonKm {
				contained = &Match{Area: a, DistanceKm: d, Via: ViaBoundary}
			}
			continue
		}

		if d > ix.radiusFor(a) {
			continue
		}
		if nearest == nil || d < nearest.DistanceKm-tieEpsilonKm {
			nearest = &Match{Area: a, DistanceKm: d, Via: ViaCentroid}
		}
	}

	if contained != nil {
		return *contained, nil
	}
	if nearest != nil {
		return *nearest, nil
	}
	return Match{}, ErrNotFound
}
