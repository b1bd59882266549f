// Package viewtest provides in-memory collaborators for view.Controller.
package viewtest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"io.winapps.babytracker/internal/domain"
	"io.winapps.babytracker/internal/store"
	"io.winapps.babytracker/internal/uploader"
	"io.winapps.babytracker/internal/view"
)

// MemDB holds the four collections in memory with the same cascade rules as PostgreSQL.
type MemDB struct {
	mu         sync.Mutex
	Milestones map[uuid.UUID]domain.Milestone
	Comments   map[uuid.UUID]domain.Comment
	Albums     map[uuid.UUID]domain.Album
	Items      map[uuid.UUID]domain.AlbumItem
	clock      time.Time
	FailCreate error
}

// NewMemDB creates an empty database.
func NewMemDB() *MemDB {
	return &MemDB{
		Milestones: map[uuid.UUID]domain.Milestone{},
		Comments:   map[uuid.UUID]domain.Comment{},
		Albums:     map[uuid.UUID]domain.Album{},
		Items:      map[uuid.UUID]domain.AlbumItem{},
		clock:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (db *MemDB) tick() time.Time {
	db.clock = db.clock.Add(time.Second)
	return db.clock
}

// Milestones is an in-memory view.MilestoneStore.
type Milestones struct{ db *MemDB }

func (m Milestones) List(ctx context.Context, opts store.ListOptions) ([]domain.Milestone, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := make([]domain.Milestone, 0, len(m.db.Milestones))
	for _, v := range m.db.Milestones {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (m Milestones) Get(ctx context.Context, id uuid.UUID) (domain.Milestone, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	v, ok := m.db.Milestones[id]
	if !ok {
		return v, fmt.Errorf("milestone %s: %w", id, domain.ErrNotFound)
	}
	return v, nil
}

func (m Milestones) Create(ctx context.Context, n domain.NewMilestone) (domain.Milestone, error) {
	if err := ctx.Err(); err != nil {
		return domain.Milestone{}, err
	}
	if err := n.Normalize(); err != nil {
		return domain.Milestone{}, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if m.db.FailCreate != nil {
		return domain.Milestone{}, m.db.FailCreate
	}
	v := domain.Milestone{ID: uuid.New(), CreatedAt: m.db.tick(), Title: n.Title, Date: n.Date, Category: n.Category, Media: n.Media}
	if n.Description != "" {
		d := n.Description
		v.Description = &d
	}
	m.db.Milestones[v.ID] = v
	return v, nil
}

func (m Milestones) Update(ctx context.Context, id uuid.UUID, p domain.MilestonePatch) (domain.Milestone, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	v, ok := m.db.Milestones[id]
	if !ok {
		return v, domain.ErrNotFound
	}
	if p.Title != nil {
		v.Title = *p.Title
	}
	m.db.Milestones[id] = v
	return v, nil
}

func (m Milestones) IncrementLikes(ctx context.Context, id uuid.UUID) (domain.Milestone, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	v, ok := m.db.Milestones[id]
	if !ok {
		return v, domain.ErrNotFound
	}
	v.Likes++
	m.db.Milestones[id] = v
	return v, nil
}

func (m Milestones) Delete(ctx context.Context, id uuid.UUID) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.Milestones[id]; !ok {
		return domain.ErrNotFound
	}
	for cid, c := range m.db.Comments {
		if c.MilestoneID == id {
			delete(m.db.Comments, cid)
		}
	}
	for iid, it := range m.db.Items {
		if it.MilestoneID != nil && *it.MilestoneID == id {
			it.MilestoneID = nil
			m.db.Items[iid] = it
		}
	}
	delete(m.db.Milestones, id)
	return nil
}

// Comments is an in-memory view.CommentStore.
type Comments struct{ db *MemDB }

func (m Comments) ListByMilestone(ctx context.Context, id uuid.UUID) ([]domain.Comment, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := []domain.Comment{}
	for _, c := range m.db.Comments {
		if c.MilestoneID == id {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m Comments) Create(ctx context.Context, n domain.NewComment) (domain.Comment, error) {
	if err := n.Normalize(); err != nil {
		return domain.Comment{}, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.Milestones[n.MilestoneID]; !ok {
		return domain.Comment{}, domain.ErrNotFound
	}
	c := domain.Comment{ID: uuid.New(), CreatedAt: m.db.tick(), MilestoneID: n.MilestoneID, Content: n.Content, AuthorName: n.AuthorName}
	m.db.Comments[c.ID] = c
	return c, nil
}

func (m Comments) Delete(ctx context.Context, id uuid.UUID) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.Comments[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.db.Comments, id)
	return nil
}

// Albums is an in-memory view.AlbumStore.
type Albums struct{ db *MemDB }

func (m Albums) List(ctx context.Context, opts store.ListOptions) ([]domain.Album, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := []domain.Album{}
	for _, a := range m.db.Albums {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m Albums) Get(ctx context.Context, id uuid.UUID) (domain.Album, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	a, ok := m.db.Albums[id]
	if !ok {
		return a, fmt.Errorf("album %s: %w", id, domain.ErrNotFound)
	}
	return a, nil
}

func (m Albums) Create(ctx context.Context, n domain.NewAlbum) (domain.Album, error) {
	if err := n.Normalize(); err != nil {
		return domain.Album{}, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	a := domain.Album{ID: uuid.New(), CreatedAt: m.db.tick(), Name: n.Name}
	if n.Description != "" {
		d := n.Description
		a.Description = &d
	}
	m.db.Albums[a.ID] = a
	return a, nil
}

func (m Albums) Update(ctx context.Context, id uuid.UUID, p domain.AlbumPatch) (domain.Album, error) {
	if p.Name != nil {
		n := domain.NewAlbum{Name: *p.Name}
		if err := n.Normalize(); err != nil {
			return domain.Album{}, err
		}
		p.Name = &n.Name
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	a, ok := m.db.Albums[id]
	if !ok {
		return a, fmt.Errorf("album %s: %w", id, domain.ErrNotFound)
	}
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Description != nil {
		a.Description = optional(*p.Description)
	}
	if p.CoverImage != nil {
		a.CoverImage = optional(*p.CoverImage)
	}
	m.db.Albums[id] = a
	return a, nil
}

func (m Albums) Delete(ctx context.Context, id uuid.UUID) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.Albums[id]; !ok {
		return domain.ErrNotFound
	}
	for iid, it := range m.db.Items {
		if it.AlbumID == id {
			delete(m.db.Items, iid)
		}
	}
	delete(m.db.Albums, id)
	return nil
}

// AlbumItems is an in-memory view.AlbumItemStore.
type AlbumItems struct{ db *MemDB }

func (m AlbumItems) ListByAlbum(ctx context.Context, albumID uuid.UUID) ([]domain.AlbumItem, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := []domain.AlbumItem{}
	for _, it := range m.db.Items {
		if it.AlbumID == albumID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m AlbumItems) Create(ctx context.Context, n domain.NewAlbumItem) (domain.AlbumItem, error) {
	if err := n.Normalize(); err != nil {
		return domain.AlbumItem{}, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.Albums[n.AlbumID]; !ok {
		return domain.AlbumItem{}, domain.ErrNotFound
	}
	it := domain.AlbumItem{ID: uuid.New(), CreatedAt: m.db.tick(), AlbumID: n.AlbumID, MilestoneID: n.MilestoneID, MediaURL: n.Media.URL, MediaType: n.Media.Type, Caption: optional(n.Caption)}
	m.db.Items[it.ID] = it
	return it, nil
}

func (m AlbumItems) UpdateCaption(ctx context.Context, id uuid.UUID, caption string) (domain.AlbumItem, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	it, ok := m.db.Items[id]
	if !ok {
		return it, domain.ErrNotFound
	}
	it.Caption = optional(caption)
	m.db.Items[id] = it
	return it, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (m AlbumItems) Delete(ctx context.Context, id uuid.UUID) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.Items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.db.Items, id)
	return nil
}

// Uploads is a view.MediaUploader that never touches disk. Files with
// content type text/plain are rejected.
type Uploads struct {
	mu              sync.Mutex
	CommitErr       error
	Commits         int
	Discarded       []string
	CommitErrAtCall error
	data            map[string][]byte
}

func (f *Uploads) Stage(ctx context.Context, sessionID string, existing []uploader.StagedFile, incoming []uploader.Incoming) ([]uploader.StagedFile, []uploader.Rejected, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.data == nil {
		f.data = map[string][]byte{}
	}
	out := append([]uploader.StagedFile(nil), existing...)
	var rejected []uploader.Rejected
	for _, in := range incoming {
		if in.ContentType == "text/plain" {
			rejected = append(rejected, uploader.Rejected{Filename: in.Filename, Reason: "格式不支持"})
			continue
		}
		if len(out) >= 9 {
			rejected = append(rejected, uploader.Rejected{Filename: in.Filename, Reason: "最多 9 个文件"})
			continue
		}
		sf := uploader.StagedFile{
			ID:          uuid.NewString(),
			Filename:    in.Filename,
			ContentType: in.ContentType,
			Type:        domain.ClassifyMIME(in.ContentType),
			Path:        "/staging/" + sessionID + "/" + in.Filename,
		}
		var data []byte
		if in.Content != nil {
			b, err := io.ReadAll(in.Content)
			if err != nil {
				return nil, nil, err
			}
			data = b
		}
		f.data[sf.Path] = data
		out = append(out, sf)
	}
	return out, rejected, nil
}

func (f *Uploads) Remove(staged []uploader.StagedFile, index int) ([]uploader.StagedFile, error) {
	if index < 0 || index >= len(staged) {
		return staged, domain.NewValidationError("index", "out of range")
	}
	out := append([]uploader.StagedFile(nil), staged[:index]...)
	return append(out, staged[index+1:]...), nil
}

func (f *Uploads) Discard(sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Discarded = append(f.Discarded, sessionID)
	prefix := "/staging/" + sessionID + "/"
	for p := range f.data {
		if strings.HasPrefix(p, prefix) {
			delete(f.data, p)
		}
	}
	return nil
}

func (f *Uploads) Open(sf uploader.StagedFile) (io.ReadSeekCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.data[sf.Path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: sf.Path, Err: os.ErrNotExist}
	}
	return nopCloser{bytes.NewReader(data)}, nil
}

type nopCloser struct{ *bytes.Reader }

func (nopCloser) Close() error { return nil }

func (f *Uploads) Commit(ctx context.Context, staged []uploader.StagedFile) (domain.MediaList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Commits++
	f.CommitErrAtCall = ctx.Err()
	if f.CommitErr != nil {
		return nil, f.CommitErr
	}
	media := domain.MediaList{}
	for i, s := range staged {
		media = append(media, domain.Media{URL: fmt.Sprintf("https://cdn.test/%s/%d-%s", s.Type.Bucket(), i, s.Filename), Type: s.Type})
	}
	return media, nil
}

// States is an in-memory view.StateStore.
type States struct {
	mu sync.Mutex
	M  map[string]view.State
}

func NewStates() *States { return &States{M: map[string]view.State{}} }

func (m *States) Load(ctx context.Context, id string) (view.State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st, ok := m.M[id]
	return st, ok, nil
}

func (m *States) Save(ctx context.Context, id string, st view.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.M[id] = st
	return nil
}

// Guard is an in-memory view.Guard.
type Guard struct {
	mu   sync.Mutex
	Held map[string]bool
}

func NewGuard() *Guard { return &Guard{Held: map[string]bool{}} }

func (g *Guard) Acquire(ctx context.Context, sessionID, action string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	key := sessionID + ":" + action
	if g.Held[key] {
		return nil, fmt.Errorf("%s: %w", action, domain.ErrInFlight)
	}
	g.Held[key] = true
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.Held, key)
	}, nil
}

// Env bundles the in-memory collaborators of a controller.
type Env struct {
	DB      *MemDB
	Uploads *Uploads
	States  *States
	Guard   *Guard
}

// NewEnv creates an empty environment.
func NewEnv() *Env {
	return &Env{DB: NewMemDB(), Uploads: &Uploads{}, States: NewStates(), Guard: NewGuard()}
}

// Deps returns controller dependencies backed by the environment.
func (e *Env) Deps() view.Deps {
	return view.Deps{
		Milestones: Milestones{e.DB},
		Comments:   Comments{e.DB},
		Albums:     Albums{e.DB},
		AlbumItems: AlbumItems{e.DB},
		Uploads:    e.Uploads,
		States:     e.States,
		Guard:      e.Guard,
	}
}

// Seed inserts a milestone directly.
func (e *Env) Seed(title string, date time.Time, cat domain.Category, media domain.MediaList, likes int) domain.Milestone {
	m, err := Milestones{e.DB}.Create(context.Background(), domain.NewMilestone{Title: title, Date: date, Category: cat, Media: media})
	if err != nil {
		panic(err)
	}
	e.DB.mu.Lock()
	defer e.DB.mu.Unlock()
	m.Likes = likes
	e.DB.Milestones[m.ID] = m
	return m
}
