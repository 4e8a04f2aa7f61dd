package tip

import (
	"database/sql/driver"
	"fmt"
	"time"

	"areasense/internal/area"
	"areasense/internal/auth"

	"github.com/google/uuid"
)

type Category string

const (
	CategoryAuto      Category = "auto"
	CategoryMetro     Category = "metro"
	CategoryBus       Category = "bus"
	CategorySafety    Category = "safety"
	CategoryEtiquette Category = "etiquette"
	CategoryMisc      Category = "misc"
)

var categories = []Category{CategoryAuto, CategoryMetro, CategoryBus, CategorySafety, CategoryEtiquette, CategoryMisc}

func Categories() []Category { return append([]Category(nil), categories...) }

func ParseCategory(s string) (Category, error) {
	for _, c := range categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown tip category %q", s)
}

func (c Category) Value() (driver.Value, error) {
	if _, err := ParseCategory(string(c)); err != nil {
		return nil, err
	}
	return string(c), nil
}

func (c *Category) Scan(src any) error {
	s, err := scanString(src)
	if err != nil {
		return err
	}
	v, err := ParseCategory(s)
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Status follows pending -> approved | rejected. Both outcomes are terminal.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown tip status %q", s)
}

func (s Status) CanTransition(to Status) bool {
	return s == StatusPending && (to == StatusApproved || to == StatusRejected)
}

func (s Status) Value() (driver.Value, error) {
	if _, err := ParseStatus(string(s)); err != nil {
		return nil, err
	}
	return string(s), nil
}

func (s *Status) Scan(src any) error {
	str, err := scanString(src)
	if err != nil {
		return err
	}
	v, err := ParseStatus(str)
	if err != nil {
		return err
	}
	*s = v
	return nil
}

func scanString(src any) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return "", fmt.Errorf("unsupported type %T", src)
}

// Direction of a vote. Clear retracts the caller's vote.
type Direction string

const (
	DirectionUp    Direction = "up"
	DirectionDown  Direction = "down"
	DirectionClear Direction = "clear"
)

func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionUp, DirectionDown, DirectionClear:
		return Direction(s), nil
	}
	return "", fmt.Errorf("unknown vote direction %q", s)
}

func (d Direction) weight() int8 {
	switch d {
	case DirectionUp:
		return 1
	case DirectionDown:
		return -1
	}
	return 0
}

type Tip struct {
	ID        uint64     `gorm:"primaryKey" json:"id"`
	AreaID    string     `gorm:"type:text;not null;index:idx_tips_area_status,priority:1" json:"area_id"`
	AuthorID  *uuid.UUID `gorm:"type:uuid;index" json:"author_id"`
	Category  Category   `gorm:"type:text;not null" json:"category"`
	Text      string     `gorm:"type:text;not null" json:"text"`
	MediaURL  *string    `gorm:"type:text" json:"media_url,omitempty"`
	Status    Status     `gorm:"type:text;not null;default:'pending';index:idx_tips_area_status,priority:2" json:"status"`
	Upvotes   int        `gorm:"not null;default:0" json:"upvotes"`
	Downvotes int        `gorm:"not null;default:0" json:"downvotes"`
	CreatedAt time.Time  `gorm:"not null;index" json:"created_at"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
	DecidedBy *uuid.UUID `gorm:"type:uuid" json:"-"`

	Area   *area.Area    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Author *auth.Profile `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"-"`
}

func (t Tip) Net() int { return t.Upvotes - t.Downvotes }

// Vote is the single net vote of one user on one tip. Only aggregates
// leave the service.
type Vote struct {
	TipID     uint64    `gorm:"primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Direction int8      `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`

	Tip *Tip `gorm:"constraint:OnDelete:CASCADE"`
}

type Report struct {
	ID         uint64     `gorm:"primaryKey" json:"id"`
	TipID      uint64     `gorm:"index;not null" json:"tip_id"`
	ReporterID *uuid.UUID `gorm:"type:uuid" json:"reporter_id,omitempty"`
	Reason     string     `gorm:"type:text;not null" json:"reason"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`

	Tip      *Tip          `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Reporter *auth.Profile `gorm:"foreignKey:ReporterID;constraint:OnDelete:SET NULL" json:"-"`
}
