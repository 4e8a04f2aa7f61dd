package area

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `
areas:
  - id: andheri_w
    name: Andheri West
    city: Mumbai
    ward: K/West
    lat: 19.1197
    lng: 72.8468
    briefings:
      - category: todo
        title: Use Metro & Shared Autos
        body: Line-1/2A for N-S hops.
      - category: safety
        title: Monsoon Watch
        body: Prefer main roads at night.
        language: hi
    events:
      - title: Ganesh Aarti
        start: 2026-09-14T19:30:00+05:30
        venue: JP Road
`

func TestParseCatalog(t *testing.T) {
	c, err := ParseCatalog([]byte(sampleCatalog))
	require.NoError(t, err)
	require.Len(t, c.Areas, 1)

	now := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	a, cards, evs := c.Areas[0].Records(now)

	assert.Equal(t, "andheri_w", a.ID)
	require.NotNil(t, a.Ward)
	assert.Equal(t, "K/West", *a.Ward)
	assert.False(t, a.HasBoundary())
	assert.Equal(t, now, a.UpdatedAt)

	require.Len(t, cards, 2)
	assert.Equal(t, BriefingDo, cards[0].Category)
	assert.Equal(t, "en", cards[0].Language)
	assert.Equal(t, "hi", cards[1].Language)
	assert.Nil(t, cards[0].Source)

	require.Len(t, evs, 1)
	assert.Equal(t, "andheri_w", evs[0].AreaID)
	require.NotNil(t, evs[0].Venue)
	assert.Equal(t, "JP Road", *evs[0].Venue)
	assert.Nil(t, evs[0].EndTS)
}

func TestParseCatalogRejects(t *testing.T) {
	cases := map[string]string{
		"empty": `areas: []`,
		"unknown briefing category": `
areas:
  - {id: a, name: A, city: C, lat: 1, lng: 1, briefings: [{category: gossip, title: x}]}`,
		"duplicate id": `
areas:
  - {id: a, name: A, city: C, lat: 1, lng: 1}
  - {id: a, name: B, city: C, lat: 2, lng: 2}`,
		"missing name": `
areas:
  - {id: a, city: C, lat: 1, lng: 1}`,
		"bad coordinate": `
areas:
  - {id: a, name: A, city: C, lat: 95, lng: 1}`,
		"short boundary": `
areas:
  - {id: a, name: A, city: C, lat: 1, lng: 1, boundary: [{lat: 1, lng: 1}, {lat: 2, lng: 2}]}`,
		"event without start": `
areas:
  - {id: a, name: A, city: C, lat: 1, lng: 1, events: [{title: x}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestSeedCatalogResolves(t *testing.T) {
	c, err := LoadCatalog("../../catalog/mumbai.yaml")
	require.NoError(t, err)

	areas := make([]Area, 0, len(c.Areas))
	for _, ca := range c.Areas {
		a, _, _ := ca.Records(time.Now())
		areas = append(areas, a)
	}
	m, err := NewIndex(areas, 25).Resolve(LatLng{Lat: 19.1197, Lng: 72.8468})
	require.NoError(t, err)
	assert.Equal(t, "andheri_w", m.Area.ID)
}
