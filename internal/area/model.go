package area

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("area not found")
var ErrInvalidCoordinate = errors.New("invalid coordinate")

// LatLng is a WGS84 coordinate in degrees.
type LatLng struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lng float64 `json:"lng" yaml:"lng"`
}

// Polygon is a single closed ring. The closing vertex may be omitted.
type Polygon []LatLng

// Area is the aggregation root for curated content and tips.
// ID is client-visible and never changes once created.
type Area struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	City      string    `gorm:"index;not null" json:"city"`
	Ward      *string   `gorm:"type:text" json:"ward,omitempty"`
	Lat       float64   `gorm:"not null" json:"lat"`
	Lng       float64   `gorm:"not null" json:"lng"`
	Boundary  Polygon   `gorm:"type:jsonb;serializer:json" json:"boundary,omitempty"`
	RadiusKm  float64   `gorm:"not null;default:0" json:"radius_km,omitempty"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	Briefings []BriefingCard `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Events    []Event        `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (a Area) Centroid() LatLng { return LatLng{Lat: a.Lat, Lng: a.Lng} }

func (a Area) HasBoundary() bool { return len(a.Boundary) >= 3 }

// BriefingCategory is closed: unknown values are rejected when parsed,
// scanned from the database or written to it.
type BriefingCategory string

const (
	BriefingDo         BriefingCategory = "todo"
	BriefingAvoid      BriefingCategory = "nottodo"
	BriefingAppreciate BriefingCategory = "appreciate"
	BriefingSafety     BriefingCategory = "safety"
)

// briefingOrder is also the display order of categories.
var briefingOrder = []BriefingCategory{BriefingDo, BriefingAvoid, BriefingAppreciate, BriefingSafety}

func ParseBriefingCategory(s string) (BriefingCategory, error) {
	for _, c := range briefingOrder {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown briefing category %q", s)
}

func (c BriefingCategory) rank() int {
	for i, o := range briefingOrder {
		if o == c {
			return i
		}
	}
	return len(briefingOrder)
}

func (c *BriefingCategory) UnmarshalText(b []byte) error {
	v, err := ParseBriefingCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

func (c BriefingCategory) Value() (driver.Value, error) {
	if _, err := ParseBriefingCategory(string(c)); err != nil {
		return nil, err
	}
	return string(c), nil
}

func (c *BriefingCategory) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return c.UnmarshalText([]byte(v))
	case []byte:
		return c.UnmarshalText(v)
	default:
		return fmt.Errorf("briefing category: unsupported type %T", src)
	}
}

// BriefingCard is curator-authored orientation content. UpdatedAt acts as the version.
type BriefingCard struct {
	ID         uint64           `gorm:"primaryKey" json:"id"`
	AreaID     string           `gorm:"index;not null;type:text" json:"area_id"`
	Category   BriefingCategory `gorm:"type:text;not null" json:"category"`
	Title      string           `gorm:"not null" json:"title"`
	Body       string           `gorm:"type:text;not null" json:"body"`
	Language   string           `gorm:"type:text;not null;default:'en'" json:"language"`
	Source     *string          `gorm:"type:text" json:"source,omitempty"`
	Verified   bool             `gorm:"not null;default:false" json:"verified"`
	VerifiedBy *string          `gorm:"type:text" json:"verified_by,omitempty"`
	UpdatedAt  time.Time        `gorm:"not null" json:"updated_at"`
}

// Event is curated or partner content attached to an area.
type Event struct {
	ID       uint64     `gorm:"primaryKey" json:"id"`
	AreaID   string     `gorm:"index;not null;type:text" json:"area_id"`
	Title    string     `gorm:"not null" json:"title"`
	StartTS  time.Time  `gorm:"index;not null" json:"start"`
	EndTS    *time.Time `json:"end,omitempty"`
	Venue    *string    `gorm:"type:text" json:"venue,omitempty"`
	URL      *string    `gorm:"type:text" json:"url,omitempty"`
	Category *string    `gorm:"type:text" json:"category,omitempty"`
}
