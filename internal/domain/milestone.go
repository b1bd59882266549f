package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Milestone is a dated, titled record of a life event.
type Milestone struct {
	ID          uuid.UUID `db:"id"`
	CreatedAt   time.Time `db:"created_at"`
	Title       string    `db:"title"`
	Description *string   `db:"description"`
	Date        time.Time `db:"date"`
	Category    Category  `db:"category"`
	Media       MediaList `db:"media"`
	Likes       int       `db:"likes"`
}

// HasMedia reports whether any photo or video is attached.
func (m Milestone) HasMedia() bool { return len(m.Media) > 0 }

// NewMilestone carries the user-supplied fields of a milestone.
type NewMilestone struct {
	Title       string
	Description string
	Date        time.Time
	Category    Category
	Media       MediaList
}

// Normalize trims input and applies defaults, then validates.
func (n *NewMilestone) Normalize() error {
	n.Title = strings.TrimSpace(n.Title)
	if n.Title == "" {
		return NewValidationError("title", "请输入标题")
	}
	if n.Date.IsZero() {
		return NewValidationError("date", "date is required")
	}
	if n.Category == "" {
		n.Category = CategoryOther
	}
	if !n.Category.IsValid() {
		return NewValidationError("category", "unknown category "+string(n.Category))
	}
	if n.Media == nil {
		n.Media = MediaList{}
	}
	return nil
}

// MilestonePatch holds the fields of a partial update; nil means unchanged.
type MilestonePatch struct {
	Title       *string
	Description *string
	Date        *time.Time
	Category    *Category
}

// Validate rejects patches that would break milestone invariants.
func (p MilestonePatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return NewValidationError("title", "请输入标题")
	}
	if p.Category != nil && !p.Category.IsValid() {
		return NewValidationError("category", "unknown category "+string(*p.Category))
	}
	if p.Date != nil && p.Date.IsZero() {
		return NewValidationError("date", "date is required")
	}
	return nil
}
