package view

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"io.winapps.babytracker/internal/agecalc"
	"io.winapps.babytracker/internal/domain"
	"io.winapps.babytracker/internal/uploader"
)

// Page is the composed view returned after every navigation or mutation.
type Page struct {
	Tab      Tab                 `json:"tab"`
	Category string              `json:"category"`
	Birthday string              `json:"birthday"`
	Timeline *Timeline           `json:"timeline,omitempty"`
	Albums   *AlbumsPage         `json:"albums,omitempty"`
	Draft    *DraftPage          `json:"draft,omitempty"`
	Rejected []uploader.Rejected `json:"rejected,omitempty"`
}

// FilterOption is one category chip.
type FilterOption struct {
	Value  string `json:"value"`
	Label  string `json:"label"`
	Emoji  string `json:"emoji,omitempty"`
	Active bool   `json:"active"`
}

// Stats summarises every entry, independent of the active filter.
type Stats struct {
	Total      int `json:"total"`
	WithMedia  int `json:"withMedia"`
	TotalLikes int `json:"totalLikes"`
}

// Card is one rendered timeline entry.
type Card struct {
	ID            uuid.UUID          `json:"id"`
	CreatedAt     time.Time          `json:"createdAt"`
	Title         string             `json:"title"`
	Description   string             `json:"description,omitempty"`
	Date          string             `json:"date"`
	AgeLabel      string             `json:"ageLabel"`
	Category      domain.Category    `json:"category"`
	CategoryLabel string             `json:"categoryLabel"`
	CategoryEmoji string             `json:"categoryEmoji"`
	Media         domain.MediaList   `json:"media"`
	MediaURLs     []string           `json:"mediaUrls"`
	MediaTypes    []domain.MediaType `json:"mediaTypes"`
	Likes         int                `json:"likes"`
}

// Timeline is the timeline tab.
type Timeline struct {
	Filters []FilterOption `json:"filters"`
	Stats   Stats          `json:"stats"`
	Cards   []Card         `json:"cards"`
}

// AlbumsPage is the albums tab: the list, or one album drilled into.
type AlbumsPage struct {
	Albums   []domain.Album `json:"albums"`
	Selected *AlbumDetail   `json:"selected,omitempty"`
}

// AlbumDetail is an opened album with its items.
type AlbumDetail struct {
	Album domain.Album       `json:"album"`
	Items []domain.AlbumItem `json:"items"`
}

// DraftFile is a staged file as shown in the add-entry form.
type DraftFile struct {
	Index      int              `json:"index"`
	Filename   string           `json:"filename"`
	Type       domain.MediaType `json:"type"`
	Size       int64            `json:"size"`
	PreviewURL string           `json:"previewUrl"`
}

// DraftPage is the add-entry tab.
type DraftPage struct {
	Files      []DraftFile    `json:"files"`
	Remaining  int            `json:"remaining"`
	Categories []FilterOption `json:"categories"`
}

// FilterMilestones narrows a fetched list to one category, keeping order.
// FilterAll returns the list unchanged.
func FilterMilestones(ms []domain.Milestone, filter string) []domain.Milestone {
	if filter == domain.FilterAll || filter == "" {
		return ms
	}
	out := make([]domain.Milestone, 0, len(ms))
	for _, m := range ms {
		if string(m.Category) == filter {
			out = append(out, m)
		}
	}
	return out
}

// ComputeStats counts entries, entries with media and likes.
func ComputeStats(ms []domain.Milestone) Stats {
	var s Stats
	for _, m := range ms {
		s.Total++
		if m.HasMedia() {
			s.WithMedia++
		}
		s.TotalLikes += m.Likes
	}
	return s
}

func filterOptions(active string) []FilterOption {
	opts := []FilterOption{{Value: domain.FilterAll, Label: domain.FilterLabel(domain.FilterAll), Active: active == domain.FilterAll}}
	for _, c := range domain.Categories() {
		opts = append(opts, FilterOption{
			Value:  string(c),
			Label:  c.Label(),
			Emoji:  c.Emoji(),
			Active: active == string(c),
		})
	}
	return opts
}

func newCard(m domain.Milestone, birthday time.Time) Card {
	c := Card{
		ID:            m.ID,
		CreatedAt:     m.CreatedAt,
		Title:         m.Title,
		Date:          m.Date.Format(agecalc.DateLayout),
		AgeLabel:      agecalc.Label(birthday, m.Date),
		Category:      m.Category,
		CategoryLabel: m.Category.Label(),
		CategoryEmoji: m.Category.Emoji(),
		Media:         m.Media,
		MediaURLs:     m.Media.URLs(),
		MediaTypes:    m.Media.Types(),
		Likes:         m.Likes,
	}
	if c.Media == nil {
		c.Media = domain.MediaList{}
	}
	if m.Description != nil {
		c.Description = *m.Description
	}
	return c
}

func buildTimeline(ms []domain.Milestone, filter string, birthday time.Time) *Timeline {
	shown := FilterMilestones(ms, filter)
	cards := make([]Card, 0, len(shown))
	for _, m := range shown {
		cards = append(cards, newCard(m, birthday))
	}
	return &Timeline{
		Filters: filterOptions(filter),
		Stats:   ComputeStats(ms),
		Cards:   cards,
	}
}

func buildDraft(d Draft, maxFiles int, previewBase string) *DraftPage {
	files := make([]DraftFile, 0, len(d.Staged))
	for i, f := range d.Staged {
		files = append(files, DraftFile{
			Index:      i,
			Filename:   f.Filename,
			Type:       f.Type,
			Size:       f.Size,
			PreviewURL: previewBase + "/" + strconv.Itoa(i),
		})
	}
	categories := make([]FilterOption, 0, len(domain.Categories()))
	for _, c := range domain.Categories() {
		categories = append(categories, FilterOption{
			Value:  string(c),
			Label:  c.Label(),
			Emoji:  c.Emoji(),
			Active: c == domain.CategoryOther,
		})
	}
	remaining := maxFiles - len(d.Staged)
	if remaining < 0 {
		remaining = 0
	}
	return &DraftPage{Files: files, Remaining: remaining, Categories: categories}
}
