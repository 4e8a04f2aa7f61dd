package area

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Catalog is the curator-maintained YAML document that seeds areas,
// briefings and events.
type Catalog struct {
	Areas []CatalogArea `yaml:"areas"`
}

type CatalogArea struct {
	ID        string            `yaml:"id"`
	Name      string            `yaml:"name"`
	City      string            `yaml:"city"`
	Ward      string            `yaml:"ward"`
	Lat       float64           `yaml:"lat"`
	Lng       float64           `yaml:"lng"`
	RadiusKm  float64           `yaml:"radius_km"`
	Boundary  []LatLng          `yaml:"boundary"`
	Briefings []CatalogBriefing `yaml:"briefings"`
	Events    []CatalogEvent    `yaml:"events"`
}

type CatalogBriefing struct {
	Category BriefingCategory `yaml:"category"`
	Title    string           `yaml:"title"`
	Body     string           `yaml:"body"`
	Language string           `yaml:"language"`
	Source   string           `yaml:"source"`
	Verified bool             `yaml:"verified"`
}

type CatalogEvent struct {
	Title    string     `yaml:"title"`
	Start    time.Time  `yaml:"start"`
	End      *time.Time `yaml:"end"`
	Venue    string     `yaml:"venue"`
	URL      string     `yaml:"url"`
	Category string     `yaml:"category"`
}

func LoadCatalog(path string) (Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, err
	}
	return ParseCatalog(b)
}

func ParseCatalog(b []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(b, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

func (c Catalog) Validate() error {
	if len(c.Areas) == 0 {
		return errors.New("catalog has no areas")
	}
	seen := map[string]struct{}{}
	for i, a := range c.Areas {
		id := strings.TrimSpace(a.ID)
		if id == "" {
			return fmt.Errorf("areas[%d]: id required", i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("areas[%d]: duplicate id %q", i, id)
		}
		seen[id] = struct{}{}
		if a.Name == "" || a.City == "" {
			return fmt.Errorf("area %q: name and city required", id)
		}
		if err := ValidateCoordinate(LatLng{Lat: a.Lat, Lng: a.Lng}); err != nil {
			return fmt.Errorf("area %q: %w", id, err)
		}
		if n := len(a.Boundary); n > 0 && n < 3 {
			return fmt.Errorf("area %q: boundary needs at least 3 vertices", id)
		}
		for _, v := range a.Boundary {
			if err := ValidateCoordinate(v); err != nil {
				return fmt.Errorf("area %q boundary: %w", id, err)
			}
		}
		for j, ev := range a.Events {
			if ev.Title == "" || ev.Start.IsZero() {
				return fmt.Errorf("area %q events[%d]: title and start required", id, j)
			}
		}
		for j, br := range a.Briefings {
			if br.Category == "" || br.Title == "" {
				return fmt.Errorf("area %q briefings[%d]: category and title required", id, j)
			}
		}
	}
	return nil
}

// Records converts one catalog entry into the persisted records.
func (ca CatalogArea) Records(now time.Time) (Area, []BriefingCard, []Event) {
	a := Area{
		ID:        strings.TrimSpace(ca.ID),
		Name:      ca.Name,
		City:      ca.City,
		Ward:      optional(ca.Ward),
		Lat:       ca.Lat,
		Lng:       ca.Lng,
		RadiusKm:  ca.RadiusKm,
		Boundary:  Polygon(ca.Boundary),
		UpdatedAt: now,
	}

	cards := make([]BriefingCard, 0, len(ca.Briefings))
	for _, b := range ca.Briefings {
		lang := b.Language
		if lang == "" {
			lang = "en"
		}
		cards = append(cards, BriefingCard{
			AreaID:    a.ID,
			Category:  b.Category,
			Title:     b.Title,
			Body:      b.Body,
			Language:  lang,
			Source:    optional(b.Source),
			Verified:  b.Verified,
			UpdatedAt: now,
		})
	}

	events := make([]Event, 0, len(ca.Events))
	for _, e := range ca.Events {
		events = append(events, Event{
			AreaID:   a.ID,
			Title:    e.Title,
			StartTS:  e.Start,
			EndTS:    e.End,
			Venue:    optional(e.Venue),
			URL:      optional(e.URL),
			Category: optional(e.Category),
		})
	}
	return a, cards, events
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
