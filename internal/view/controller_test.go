package view_test

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"io.winapps.babytracker/internal/domain"
	"io.winapps.babytracker/internal/session"
	"io.winapps.babytracker/internal/uploader"
	"io.winapps.babytracker/internal/view"
	"io.winapps.babytracker/internal/view/viewtest"
)

var errBackend = errors.New("backend exploded")

type harness struct {
	c       *view.Controller
	env     *viewtest.Env
	db      *viewtest.MemDB
	uploads *viewtest.Uploads
	states  *viewtest.States
	guard   *viewtest.Guard
	s       session.Session
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	env := viewtest.NewEnv()
	return &harness{
		c: view.NewController(env.Deps(), view.Options{
			Birthday:      "2024-01-01",
			MaxFiles:      9,
			CommitTimeout: time.Minute,
			PreviewBase:   "/api/v1/drafts/files",
		}, zap.NewNop().Sugar()),
		env:     env,
		db:      env.DB,
		uploads: env.Uploads,
		states:  env.States,
		guard:   env.Guard,
		s:       session.Session{ID: "sess-1", Authenticated: true},
	}
}

func (h *harness) seed(t *testing.T, title, date string, cat domain.Category, media domain.MediaList, likes int) domain.Milestone {
	t.Helper()
	d, err := time.Parse("2006-01-02", date)
	require.NoError(t, err)
	return h.env.Seed(title, d, cat, media, likes)
}

func TestRender_InitialTimeline(t *testing.T) {
	h := newHarness(t)
	photo := domain.MediaList{{URL: "https://cdn.test/photos/a.jpg", Type: domain.MediaImage}}
	h.seed(t, "First smile", "2024-01-20", domain.CategoryFirst, photo, 2)
	h.seed(t, "Vaccine", "2025-03-15", domain.CategoryHealth, nil, 1)

	page, err := h.c.Render(context.Background(), h.s)
	require.NoError(t, err)

	assert.Equal(t, view.TabTimeline, page.Tab)
	assert.Equal(t, domain.FilterAll, page.Category)
	require.NotNil(t, page.Timeline)
	require.Len(t, page.Timeline.Cards, 2)

	newest := page.Timeline.Cards[0]
	assert.Equal(t, "Vaccine", newest.Title)
	assert.Equal(t, "1岁 2个月", newest.AgeLabel)
	assert.Equal(t, "健康", newest.CategoryLabel)

	oldest := page.Timeline.Cards[1]
	assert.Equal(t, "19天", oldest.AgeLabel)
	assert.Equal(t, []string{"https://cdn.test/photos/a.jpg"}, oldest.MediaURLs)
	assert.Equal(t, []domain.MediaType{domain.MediaImage}, oldest.MediaTypes)

	assert.Equal(t, view.Stats{Total: 2, WithMedia: 1, TotalLikes: 3}, page.Timeline.Stats)
	assert.Len(t, page.Timeline.Filters, 8)
	assert.True(t, page.Timeline.Filters[0].Active)
}

func TestRender_RequiresAuthentication(t *testing.T) {
	h := newHarness(t)
	_, err := h.c.Render(context.Background(), session.Session{ID: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = h.c.Like(context.Background(), session.Session{}, uuid.New())
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestFilterMilestones(t *testing.T) {
	d := func(s string) time.Time { v, _ := time.Parse("2006-01-02", s); return v }
	ms := []domain.Milestone{
		{Title: "a", Date: d("2024-06-01"), Category: domain.CategoryHealth},
		{Title: "b", Date: d("2024-05-01"), Category: domain.CategoryPlay},
		{Title: "c", Date: d("2024-04-01"), Category: domain.CategoryHealth},
		{Title: "d", Date: d("2024-03-01"), Category: domain.CategoryOther},
	}

	tests := []struct {
		filter string
		want   []string
	}{
		{domain.FilterAll, []string{"a", "b", "c", "d"}},
		{"health", []string{"a", "c"}},
		{"play", []string{"b"}},
		{"travel", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.filter, func(t *testing.T) {
			got := []string{}
			for _, m := range view.FilterMilestones(ms, tt.filter) {
				got = append(got, m.Title)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetFilter_NoRefetchSemantics(t *testing.T) {
	h := newHarness(t)
	h.seed(t, "walk", "2024-09-01", domain.CategoryFirst, nil, 0)
	h.seed(t, "cold", "2024-08-01", domain.CategoryHealth, nil, 0)
	h.seed(t, "word", "2024-07-01", domain.CategoryFirst, nil, 0)

	page, err := h.c.SetFilter(context.Background(), h.s, "first")
	require.NoError(t, err)
	require.Len(t, page.Timeline.Cards, 2)
	assert.Equal(t, "walk", page.Timeline.Cards[0].Title)
	assert.Equal(t, "word", page.Timeline.Cards[1].Title)
	assert.Equal(t, 3, page.Timeline.Stats.Total, "stats cover every entry")

	_, err = h.c.SetFilter(context.Background(), h.s, "sleep")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSwitchTab_LeavingAddDiscardsDraft(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	page, err := h.c.StageFiles(ctx, h.s, []uploader.Incoming{
		{Filename: "a.jpg", ContentType: "image/jpeg"},
		{Filename: "b.mp4", ContentType: "video/mp4"},
		{Filename: "c.txt", ContentType: "text/plain"},
	})
	require.NoError(t, err)
	assert.Equal(t, view.TabAdd, page.Tab)
	require.NotNil(t, page.Draft)
	assert.Len(t, page.Draft.Files, 2)
	assert.Equal(t, 7, page.Draft.Remaining)
	assert.Equal(t, "/api/v1/drafts/files/1", page.Draft.Files[1].PreviewURL)
	assert.Len(t, page.Rejected, 1)

	page, err = h.c.SwitchTab(ctx, h.s, view.TabTimeline)
	require.NoError(t, err)
	assert.Equal(t, view.TabTimeline, page.Tab)
	assert.Equal(t, []string{"sess-1"}, h.uploads.Discarded)

	page, err = h.c.SwitchTab(ctx, h.s, view.TabAdd)
	require.NoError(t, err)
	assert.Empty(t, page.Draft.Files)
}

func TestRemoveStaged(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.c.StageFiles(ctx, h.s, []uploader.Incoming{
		{Filename: "a.jpg", ContentType: "image/jpeg", Content: strings.NewReader("aaa")},
		{Filename: "b.jpg", ContentType: "image/jpeg", Content: strings.NewReader("bbb")},
	})
	require.NoError(t, err)

	page, err := h.c.RemoveStaged(ctx, h.s, 0)
	require.NoError(t, err)
	require.Len(t, page.Draft.Files, 1)
	assert.Equal(t, "b.jpg", page.Draft.Files[0].Filename)

	f, content, err := h.c.OpenStaged(ctx, h.s, 0)
	require.NoError(t, err)
	defer content.Close()
	assert.Equal(t, "b.jpg", f.Filename)
	b, err := io.ReadAll(content)
	require.NoError(t, err)
	assert.Equal(t, "bbb", string(b))

	_, _, err = h.c.OpenStaged(ctx, h.s, 3)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestOpenStaged_MissingFileIsNotFound(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.c.StageFiles(ctx, h.s, []uploader.Incoming{{Filename: "a.jpg", ContentType: "image/jpeg"}})
	require.NoError(t, err)
	require.NoError(t, h.uploads.Discard(h.s.ID))

	_, _, err = h.c.OpenStaged(ctx, h.s, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateEntry_Success(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.c.StageFiles(ctx, h.s, []uploader.Incoming{
		{Filename: "a.jpg", ContentType: "image/jpeg"},
		{Filename: "b.mov", ContentType: "video/quicktime"},
	})
	require.NoError(t, err)

	page, err := h.c.CreateEntry(ctx, h.s, view.EntryInput{Title: "  First steps ", Date: "2024-10-01"})
	require.NoError(t, err)

	assert.Equal(t, view.TabTimeline, page.Tab)
	require.Len(t, page.Timeline.Cards, 1)
	card := page.Timeline.Cards[0]
	assert.Equal(t, "First steps", card.Title)
	assert.Equal(t, domain.CategoryOther, card.Category)
	assert.Equal(t, 0, card.Likes)
	assert.Equal(t, []domain.MediaType{domain.MediaImage, domain.MediaVideo}, card.MediaTypes)
	assert.Empty(t, h.states.M["sess-1"].Draft.Staged)
}

func TestCreateEntry_UploadFailureKeepsDraft(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.c.StageFiles(ctx, h.s, []uploader.Incoming{{Filename: "a.jpg", ContentType: "image/jpeg"}})
	require.NoError(t, err)
	h.uploads.CommitErr = domain.ErrUpload

	_, err = h.c.CreateEntry(ctx, h.s, view.EntryInput{Title: "x", Date: "2024-10-01"})
	assert.ErrorIs(t, err, domain.ErrUpload)

	st := h.states.M["sess-1"]
	assert.Equal(t, view.TabAdd, st.Tab)
	assert.Len(t, st.Draft.Staged, 1)
	assert.Empty(t, h.db.Milestones)
	assert.Empty(t, h.guard.Held, "guard released after failure")
}

func TestCreateEntry_InsertFailureKeepsDraft(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.c.StageFiles(ctx, h.s, []uploader.Incoming{{Filename: "a.jpg", ContentType: "image/jpeg"}})
	require.NoError(t, err)
	h.db.FailCreate = errBackend

	_, err = h.c.CreateEntry(ctx, h.s, view.EntryInput{Title: "x", Date: "2024-10-01"})
	assert.ErrorIs(t, err, errBackend)
	assert.Equal(t, 1, h.uploads.Commits)
	assert.Len(t, h.states.M["sess-1"].Draft.Staged, 1)
}

func TestCreateEntry_Validation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	tests := []struct {
		name string
		in   view.EntryInput
		msg  string
	}{
		{"empty title", view.EntryInput{Title: "  ", Date: "2024-01-01"}, "请输入标题"},
		{"bad date", view.EntryInput{Title: "x", Date: "yesterday"}, "请选择日期"},
		{"bad category", view.EntryInput{Title: "x", Date: "2024-01-01", Category: "sleep"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.c.CreateEntry(ctx, h.s, tt.in)
			assert.ErrorIs(t, err, domain.ErrValidation)
			if tt.msg != "" {
				var ve *domain.ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, tt.msg, ve.Message)
			}
		})
	}
	assert.Zero(t, h.uploads.Commits, "nothing is uploaded for an invalid form")
}

func TestCreateEntry_SurvivesClientCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := h.c.StageFiles(ctx, h.s, []uploader.Incoming{{Filename: "a.jpg", ContentType: "image/jpeg"}})
	require.NoError(t, err)

	cancel()
	// the state store and render ignore ctx in the fakes; the insert does not
	_, err = h.c.CreateEntry(ctx, h.s, view.EntryInput{Title: "x", Date: "2024-10-01"})
	require.NoError(t, err)
	assert.Len(t, h.db.Milestones, 1)
	assert.NoError(t, h.uploads.CommitErrAtCall)
}

func TestMutations_InFlightGuard(t *testing.T) {
	h := newHarness(t)
	m := h.seed(t, "walk", "2024-09-01", domain.CategoryFirst, nil, 0)

	release, err := h.guard.Acquire(context.Background(), h.s.ID, "like:"+m.ID.String())
	require.NoError(t, err)

	_, err = h.c.Like(context.Background(), h.s, m.ID)
	assert.ErrorIs(t, err, domain.ErrInFlight)

	// other sessions are not blocked
	other := session.Session{ID: "sess-2", Authenticated: true}
	page, err := h.c.Like(context.Background(), other, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Timeline.Cards[0].Likes)

	release()
	page, err = h.c.Like(context.Background(), h.s, m.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Timeline.Cards[0].Likes)
}

func TestEditTitleAndDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.seed(t, "walk", "2024-09-01", domain.CategoryFirst, nil, 0)

	page, err := h.c.EditTitle(ctx, h.s, m.ID, "first walk")
	require.NoError(t, err)
	assert.Equal(t, "first walk", page.Timeline.Cards[0].Title)

	_, err = h.c.EditTitle(ctx, h.s, m.ID, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.c.AddComment(ctx, h.s, m.ID, "yay", "")
	require.NoError(t, err)
	_, err = h.c.AddComment(ctx, h.s, m.ID, "wow", "爷爷")
	require.NoError(t, err)

	page, err = h.c.DeleteEntry(ctx, h.s, m.ID)
	require.NoError(t, err)
	assert.Empty(t, page.Timeline.Cards)

	comments, err := h.c.Comments(ctx, h.s, m.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestAddComment_OldestFirst(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.seed(t, "walk", "2024-09-01", domain.CategoryFirst, nil, 0)

	_, err := h.c.AddComment(ctx, h.s, m.ID, "first", "")
	require.NoError(t, err)
	comments, err := h.c.AddComment(ctx, h.s, m.ID, "second", "奶奶")
	require.NoError(t, err)

	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, domain.AnonymousAuthor, comments[0].AuthorName)
	assert.Equal(t, "奶奶", comments[1].AuthorName)

	_, err = h.c.AddComment(ctx, h.s, m.ID, "   ", "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestAlbums_DrillAndDelete(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	page, err := h.c.CreateAlbum(ctx, h.s, "Summer", "")
	require.NoError(t, err)
	assert.Equal(t, view.TabAlbums, page.Tab)
	require.Len(t, page.Albums.Albums, 1)
	album := page.Albums.Albums[0]

	photo := domain.MediaList{
		{URL: "https://cdn.test/photos/1.jpg", Type: domain.MediaImage},
		{URL: "https://cdn.test/videos/2.mp4", Type: domain.MediaVideo},
	}
	m := h.seed(t, "beach", "2024-07-01", domain.CategoryTravel, photo, 0)

	page, err = h.c.AddAlbumItemsFromEntry(ctx, h.s, album.ID, m.ID, "")
	require.NoError(t, err)
	require.NotNil(t, page.Albums.Selected)
	assert.Len(t, page.Albums.Selected.Items, 2)

	// deleting the milestone keeps its album items, unlinked
	_, err = h.c.DeleteEntry(ctx, h.s, m.ID)
	require.NoError(t, err)
	page, err = h.c.OpenAlbum(ctx, h.s, album.ID)
	require.NoError(t, err)
	require.Len(t, page.Albums.Selected.Items, 2)
	for _, it := range page.Albums.Selected.Items {
		assert.Nil(t, it.MilestoneID)
	}

	page, err = h.c.CloseAlbum(ctx, h.s)
	require.NoError(t, err)
	assert.Nil(t, page.Albums.Selected)

	_, err = h.c.OpenAlbum(ctx, h.s, album.ID)
	require.NoError(t, err)
	page, err = h.c.DeleteAlbum(ctx, h.s, album.ID)
	require.NoError(t, err)
	assert.Nil(t, page.Albums.Selected)
	assert.Empty(t, page.Albums.Albums)
	assert.Nil(t, h.states.M["sess-1"].SelectedAlbumID)
	assert.Empty(t, h.db.Items)
}

func TestAlbums_UploadAndDeleteItem(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	page, err := h.c.CreateAlbum(ctx, h.s, "Zoo", "")
	require.NoError(t, err)
	album := page.Albums.Albums[0]

	page, err = h.c.AddAlbumItemsFromUpload(ctx, h.s, album.ID, []uploader.Incoming{
		{Filename: "lion.jpg", ContentType: "image/jpeg"},
		{Filename: "notes.txt", ContentType: "text/plain"},
	}, "lion")
	require.NoError(t, err)
	require.Len(t, page.Albums.Selected.Items, 1)
	assert.Len(t, page.Rejected, 1)
	assert.Contains(t, h.uploads.Discarded, "sess-1-album")

	item := page.Albums.Selected.Items[0]
	_, err = h.c.DeleteAlbumItem(ctx, h.s, uuid.New(), item.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	page, err = h.c.DeleteAlbumItem(ctx, h.s, album.ID, item.ID)
	require.NoError(t, err)
	assert.Empty(t, page.Albums.Selected.Items)

	_, err = h.c.AddAlbumItemsFromUpload(ctx, h.s, album.ID, []uploader.Incoming{{Filename: "x.txt", ContentType: "text/plain"}}, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRender_StaleAlbumSelectionIsCleared(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	gone := uuid.New()
	require.NoError(t, h.states.Save(ctx, h.s.ID, view.State{Tab: view.TabAlbums, Category: domain.FilterAll, Birthday: "2024-01-01", SelectedAlbumID: &gone}))

	page, err := h.c.Render(ctx, h.s)
	require.NoError(t, err)
	assert.Nil(t, page.Albums.Selected)
	assert.Nil(t, h.states.M["sess-1"].SelectedAlbumID)
}

func TestSetBirthday(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.seed(t, "walk", "2024-09-01", domain.CategoryFirst, nil, 0)

	page, err := h.c.SetBirthday(ctx, h.s, "2024-08-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-08-01", page.Birthday)
	assert.Equal(t, "1个月 1天", page.Timeline.Cards[0].AgeLabel)

	_, err = h.c.SetBirthday(ctx, h.s, "01/08/2024")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParseTab(t *testing.T) {
	for _, s := range []string{"timeline", "albums", "add"} {
		tab, err := view.ParseTab(s)
		require.NoError(t, err)
		assert.Equal(t, view.Tab(s), tab)
	}
	_, err := view.ParseTab("settings")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateAlbum(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	page, err := h.c.CreateAlbum(ctx, h.s, "Summer", "beach days")
	require.NoError(t, err)
	album := page.Albums.Albums[0]

	name := "  Summer 2024 "
	page, err = h.c.UpdateAlbum(ctx, h.s, album.ID, domain.AlbumPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, view.TabAlbums, page.Tab)
	require.Len(t, page.Albums.Albums, 1)
	assert.Equal(t, "Summer 2024", page.Albums.Albums[0].Name)
	require.NotNil(t, page.Albums.Albums[0].Description)
	assert.Equal(t, "beach days", *page.Albums.Albums[0].Description, "unset fields are kept")

	empty := ""
	page, err = h.c.UpdateAlbum(ctx, h.s, album.ID, domain.AlbumPatch{Description: &empty})
	require.NoError(t, err)
	assert.Nil(t, page.Albums.Albums[0].Description)

	blank := "   "
	_, err = h.c.UpdateAlbum(ctx, h.s, album.ID, domain.AlbumPatch{Name: &blank})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.c.UpdateAlbum(ctx, h.s, album.ID, domain.AlbumPatch{})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = h.c.UpdateAlbum(ctx, h.s, uuid.New(), domain.AlbumPatch{Name: &name})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEditAlbumItemCaption(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	page, err := h.c.CreateAlbum(ctx, h.s, "Zoo", "")
	require.NoError(t, err)
	album := page.Albums.Albums[0]
	page, err = h.c.AddAlbumItemsFromUpload(ctx, h.s, album.ID, []uploader.Incoming{{Filename: "lion.jpg", ContentType: "image/jpeg"}}, "lion")
	require.NoError(t, err)
	item := page.Albums.Selected.Items[0]
	require.NotNil(t, item.Caption)
	assert.Equal(t, "lion", *item.Caption)

	page, err = h.c.EditAlbumItemCaption(ctx, h.s, album.ID, item.ID, "  sleepy lion ")
	require.NoError(t, err)
	require.NotNil(t, page.Albums.Selected.Items[0].Caption)
	assert.Equal(t, "sleepy lion", *page.Albums.Selected.Items[0].Caption)

	page, err = h.c.EditAlbumItemCaption(ctx, h.s, album.ID, item.ID, "")
	require.NoError(t, err)
	assert.Nil(t, page.Albums.Selected.Items[0].Caption)

	_, err = h.c.EditAlbumItemCaption(ctx, h.s, uuid.New(), item.ID, "x")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteComment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	m := h.seed(t, "walk", "2024-09-01", domain.CategoryFirst, nil, 0)
	other := h.seed(t, "word", "2024-10-01", domain.CategoryFirst, nil, 0)

	_, err := h.c.AddComment(ctx, h.s, m.ID, "first", "")
	require.NoError(t, err)
	comments, err := h.c.AddComment(ctx, h.s, m.ID, "second", "")
	require.NoError(t, err)
	require.Len(t, comments, 2)

	_, err = h.c.DeleteComment(ctx, h.s, other.ID, comments[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound, "comment must belong to the milestone")

	comments, err = h.c.DeleteComment(ctx, h.s, m.ID, comments[0].ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, "second", comments[0].Content)

	_, err = h.c.DeleteComment(ctx, session.Session{}, m.ID, comments[0].ID)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

// pngBytes is enough for content sniffing.
const pngBytes = "\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"

// gatedStore holds its first upload until release is closed.
type gatedStore struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	mu      sync.Mutex
	objects map[string][]byte
}

func newGatedStore() *gatedStore {
	return &gatedStore{started: make(chan struct{}), release: make(chan struct{}), objects: map[string][]byte{}}
}

func (s *gatedStore) Upload(ctx context.Context, bucket, key string, r io.Reader, contentType string) error {
	first := false
	s.once.Do(func() { first = true })
	if first {
		close(s.started)
		<-s.release
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[bucket+"/"+key] = b
	return nil
}

func (s *gatedStore) PublicURL(bucket, key string) string {
	return "https://cdn.test/" + bucket + "/" + key
}

func (s *gatedStore) EnsureBucket(ctx context.Context, bucket string) error { return nil }

type diskHarness struct {
	c     *view.Controller
	env   *viewtest.Env
	store *gatedStore
	dir   string
	s     session.Session
}

// newDiskHarness wires the controller to a real uploader staging on disk.
func newDiskHarness(t *testing.T) *diskHarness {
	t.Helper()
	env := viewtest.NewEnv()
	store := newGatedStore()
	dir := t.TempDir()
	deps := env.Deps()
	deps.Uploads = uploader.New(store, uploader.Options{StagingDir: dir, MaxBytes: 1 << 20, MaxFiles: 9}, zap.NewNop().Sugar())
	return &diskHarness{
		c: view.NewController(deps, view.Options{
			Birthday:      "2024-01-01",
			MaxFiles:      9,
			CommitTimeout: time.Minute,
		}, zap.NewNop().Sugar()),
		env:   env,
		store: store,
		dir:   dir,
		s:     session.Session{ID: "sess-1", Authenticated: true},
	}
}

func pngs(names ...string) []uploader.Incoming {
	out := make([]uploader.Incoming, 0, len(names))
	for _, n := range names {
		out = append(out, uploader.Incoming{Filename: n, ContentType: "image/png", Size: int64(len(pngBytes)), Content: strings.NewReader(pngBytes)})
	}
	return out
}

type entryResult struct {
	page view.Page
	err  error
}

// startEntry runs CreateEntry in the background and returns once the first
// upload is in progress.
func (h *diskHarness) startEntry(t *testing.T) <-chan entryResult {
	t.Helper()
	done := make(chan entryResult, 1)
	go func() {
		page, err := h.c.CreateEntry(context.Background(), h.s, view.EntryInput{Title: "bath", Date: "2024-10-01"})
		done <- entryResult{page, err}
	}()
	select {
	case <-h.store.started:
	case <-time.After(5 * time.Second):
		t.Fatal("upload never started")
	}
	return done
}

func TestCreateEntry_LeavingAddTabMidCommit(t *testing.T) {
	h := newDiskHarness(t)
	ctx := context.Background()
	_, err := h.c.StageFiles(ctx, h.s, pngs("a.png", "b.png"))
	require.NoError(t, err)

	done := h.startEntry(t)

	page, err := h.c.SwitchTab(ctx, h.s, view.TabTimeline)
	require.NoError(t, err)
	assert.Equal(t, view.TabTimeline, page.Tab)
	assert.DirExists(t, filepath.Join(h.dir, "sess-1"), "files of the running commit stay")

	_, err = h.c.SetFilter(ctx, h.s, "first")
	require.NoError(t, err)

	_, err = h.c.StageFiles(ctx, h.s, pngs("c.png"))
	assert.ErrorIs(t, err, domain.ErrInFlight)

	close(h.store.release)
	res := <-done
	require.NoError(t, res.err)
	assert.Len(t, h.store.objects, 2)
	require.Len(t, h.env.DB.Milestones, 1)
	for _, m := range h.env.DB.Milestones {
		assert.Len(t, m.Media, 2)
	}

	st := h.env.States.M["sess-1"]
	assert.Empty(t, st.Draft.Staged)
	assert.Equal(t, "first", st.Category, "navigation during the commit is kept")
	assert.Equal(t, "first", res.page.Category)
	assert.NoDirExists(t, filepath.Join(h.dir, "sess-1"))
}

func TestCreateEntry_LogoutMidCommit(t *testing.T) {
	h := newDiskHarness(t)
	ctx := context.Background()
	_, err := h.c.StageFiles(ctx, h.s, pngs("a.png", "b.png"))
	require.NoError(t, err)

	done := h.startEntry(t)
	h.c.Logout(ctx, h.s)
	assert.DirExists(t, filepath.Join(h.dir, "sess-1"))

	close(h.store.release)
	res := <-done
	require.NoError(t, res.err)
	assert.Len(t, h.env.DB.Milestones, 1)
	assert.Empty(t, h.env.States.M["sess-1"].Draft.Staged)
	assert.NoDirExists(t, filepath.Join(h.dir, "sess-1"))
}
