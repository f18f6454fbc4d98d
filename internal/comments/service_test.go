package comments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aari-docs/internal/content"
	"aari-docs/internal/documents"
	"aari-docs/internal/events"
	"aari-docs/internal/users"
)

type fixture struct {
	svc      *Service
	docs     *documents.Service
	docRepo  *documents.MemoryRepo
	repo     *MemoryRepo
	recorder *events.Recorder
	alice    users.User
	bob      users.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	userSvc := users.NewService(users.NewMemoryRepo())
	alice, err := userSvc.UpsertFromAuth(ctx, users.Identity{Email: "alice@example.com", Name: "Alice"})
	require.NoError(t, err)
	bob, err := userSvc.UpsertFromAuth(ctx, users.Identity{Email: "bob@example.com", Name: "Bob"})
	require.NoError(t, err)

	docRepo := documents.NewMemoryRepo()
	repo := NewMemoryRepo()
	docRepo.OnDelete(repo.DeleteByDocument)
	recorder := &events.Recorder{}

	docs := &documents.Service{Repo: docRepo}
	svc := &Service{
		Repo:      repo,
		Documents: docs,
		Authors:   userSvc,
		Events:    recorder,
	}
	return &fixture{svc: svc, docs: docs, docRepo: docRepo, repo: repo, recorder: recorder, alice: alice, bob: bob}
}

func (f *fixture) document(t *testing.T, text string) documents.Document {
	t.Helper()
	body, err := content.FromPlainText(text).MarshalJSON()
	require.NoError(t, err)
	doc, err := f.docs.Create(context.Background(), documents.CreateInput{Content: body})
	require.NoError(t, err)
	return doc
}

func intPtr(v int) *int { return &v }

func TestCommentWithReplyScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.document(t, "")

	c, err := f.svc.Create(ctx, doc.ID, CreateInput{
		UserID:          f.alice.ID,
		Content:         "Needs a source",
		HighlightedText: "hello",
		SelectionFrom:   intPtr(10),
	})
	require.NoError(t, err)
	assert.Equal(t, 10, c.SelectionFrom)
	assert.Equal(t, 15, c.SelectionTo)
	assert.Equal(t, "Alice", c.User.Name)
	assert.Empty(t, c.Replies)

	_, err = f.svc.CreateReply(ctx, c.ID, ReplyInput{UserID: f.bob.ID, Content: "Added"})
	require.NoError(t, err)

	list, err := f.svc.ListByDocument(ctx, doc.ID, StatusAll)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsResolved)
	require.Len(t, list[0].Replies, 1)
	assert.Equal(t, "Bob", list[0].Replies[0].User.Name)
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.document(t, "some text")

	cases := map[string]CreateInput{
		"missing user":      {Content: "x", HighlightedText: "some"},
		"missing content":   {UserID: f.alice.ID, HighlightedText: "some"},
		"missing highlight": {UserID: f.alice.ID, Content: "x"},
		"negative from":     {UserID: f.alice.ID, Content: "x", HighlightedText: "some", SelectionFrom: intPtr(-1)},
		"inverted range":    {UserID: f.alice.ID, Content: "x", HighlightedText: "some", SelectionFrom: intPtr(5), SelectionTo: intPtr(2)},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.svc.Create(ctx, doc.ID, in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	_, err := f.svc.Create(ctx, doc.ID, CreateInput{UserID: "ghost", Content: "x", HighlightedText: "some"})
	assert.ErrorIs(t, err, ErrUnknownUser)

	_, err = f.svc.Create(ctx, "missing-doc", CreateInput{UserID: f.alice.ID, Content: "x", HighlightedText: "some"})
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	stored, err := f.repo.ListByDocument(ctx, doc.ID, StatusAll)
	require.NoError(t, err)
	assert.Empty(t, stored)
	assert.Empty(t, f.recorder.Events())
}

func TestCreateDefaultsSelection(t *testing.T) {
	f := newFixture(t)
	doc := f.document(t, "héllo world")

	c, err := f.svc.Create(context.Background(), doc.ID, CreateInput{
		UserID:          f.alice.ID,
		Content:         "accent",
		HighlightedText: "héllo",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, c.SelectionFrom)
	assert.Equal(t, 5, c.SelectionTo)
}

func TestListOrderingAndStatusFilter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.document(t, "alpha beta gamma")

	first, err := f.svc.Create(ctx, doc.ID, CreateInput{UserID: f.alice.ID, Content: "one", HighlightedText: "alpha"})
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, doc.ID, CreateInput{UserID: f.bob.ID, Content: "two", HighlightedText: "beta", SelectionFrom: intPtr(6)})
	require.NoError(t, err)

	r1, err := f.svc.CreateReply(ctx, first.ID, ReplyInput{UserID: f.bob.ID, Content: "r1"})
	require.NoError(t, err)
	r2, err := f.svc.CreateReply(ctx, first.ID, ReplyInput{UserID: f.alice.ID, Content: "r2"})
	require.NoError(t, err)

	list, err := f.svc.ListByDocument(ctx, doc.ID, StatusAll)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	require.Len(t, list[1].Replies, 2)
	assert.Equal(t, r1.ID, list[1].Replies[0].ID)
	assert.Equal(t, r2.ID, list[1].Replies[1].ID)

	_, err = f.svc.SetResolved(ctx, first.ID, true)
	require.NoError(t, err)

	open, err := f.svc.ListByDocument(ctx, doc.ID, StatusOpen)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, second.ID, open[0].ID)

	resolved, err := f.svc.ListByDocument(ctx, doc.ID, StatusResolved)
	require.NoError(t, err)
	require.Len(t, resolved, 1)
	assert.Equal(t, first.ID, resolved[0].ID)
}

func TestResolveIsIdempotentAndReversible(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.document(t, "text")
	c, err := f.svc.Create(ctx, doc.ID, CreateInput{UserID: f.alice.ID, Content: "c", HighlightedText: "text"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		got, err := f.svc.SetResolved(ctx, c.ID, true)
		require.NoError(t, err)
		assert.True(t, got.IsResolved)
	}

	reopened, err := f.svc.SetResolved(ctx, c.ID, false)
	require.NoError(t, err)
	assert.False(t, reopened.IsResolved)

	open, err := f.svc.ListByDocument(ctx, doc.ID, StatusOpen)
	require.NoError(t, err)
	require.Len(t, open, 1)

	var types []string
	for _, evt := range f.recorder.Events() {
		types = append(types, evt.Type)
	}
	assert.Equal(t, []string{
		events.CommentCreated,
		events.CommentResolved,
		events.CommentResolved,
		events.CommentReopened,
	}, types)

	_, err = f.svc.SetResolved(ctx, "missing", true)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.document(t, "text")
	c, err := f.svc.Create(ctx, doc.ID, CreateInput{UserID: f.alice.ID, Content: "c", HighlightedText: "text"})
	require.NoError(t, err)
	reply, err := f.svc.CreateReply(ctx, c.ID, ReplyInput{UserID: f.bob.ID, Content: "r"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, c.ID))
	_, err = f.repo.GetReply(ctx, reply.ID)
	assert.ErrorIs(t, err, ErrReplyNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, c.ID), ErrNotFound)

	other, err := f.svc.Create(ctx, doc.ID, CreateInput{UserID: f.alice.ID, Content: "c2", HighlightedText: "te"})
	require.NoError(t, err)
	otherReply, err := f.svc.CreateReply(ctx, other.ID, ReplyInput{UserID: f.bob.ID, Content: "r2"})
	require.NoError(t, err)

	require.NoError(t, f.docs.Delete(ctx, doc.ID))
	_, err = f.repo.GetByID(ctx, other.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = f.repo.GetReply(ctx, otherReply.ID)
	assert.ErrorIs(t, err, ErrReplyNotFound)
}

func TestReplyLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.document(t, "text")
	c, err := f.svc.Create(ctx, doc.ID, CreateInput{UserID: f.alice.ID, Content: "c", HighlightedText: "text"})
	require.NoError(t, err)

	_, err = f.svc.CreateReply(ctx, c.ID, ReplyInput{Content: "no user"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = f.svc.CreateReply(ctx, "missing", ReplyInput{UserID: f.bob.ID, Content: "r"})
	assert.ErrorIs(t, err, ErrNotFound)

	reply, err := f.svc.CreateReply(ctx, c.ID, ReplyInput{UserID: f.bob.ID, Content: "first"})
	require.NoError(t, err)

	updated, err := f.svc.UpdateReply(ctx, reply.ID, "edited")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Content)
	assert.Equal(t, "Bob", updated.User.Name)

	require.NoError(t, f.svc.DeleteReply(ctx, reply.ID))
	assert.ErrorIs(t, f.svc.DeleteReply(ctx, reply.ID), ErrReplyNotFound)

	got, err := f.svc.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Replies)
}

func TestHighlightsSkipResolvedAndClamp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doc := f.document(t, "hello world")

	open, err := f.svc.Create(ctx, doc.ID, CreateInput{UserID: f.alice.ID, Content: "a", HighlightedText: "world", SelectionFrom: intPtr(6)})
	require.NoError(t, err)
	past, err := f.svc.Create(ctx, doc.ID, CreateInput{UserID: f.alice.ID, Content: "b", HighlightedText: "gone", SelectionFrom: intPtr(40)})
	require.NoError(t, err)
	done, err := f.svc.Create(ctx, doc.ID, CreateInput{UserID: f.alice.ID, Content: "c", HighlightedText: "hello"})
	require.NoError(t, err)
	_, err = f.svc.SetResolved(ctx, done.ID, true)
	require.NoError(t, err)

	list, err := f.svc.Highlights(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, open.ID, list[0].CommentID)
	assert.Equal(t, "world", list[0].Text)
	assert.NotEqual(t, past.ID, list[0].CommentID)
}

type fakeIndexer struct {
	indexed map[string]Comment
	removed []string
}

func (f *fakeIndexer) IndexComment(ctx context.Context, c Comment) error {
	f.indexed[c.ID] = c
	return nil
}

func (f *fakeIndexer) RemoveComment(ctx context.Context, id string) error {
	f.removed = append(f.removed, id)
	return nil
}

func TestIndexerFollowsMutations(t *testing.T) {
	f := newFixture(t)
	idx := &fakeIndexer{indexed: map[string]Comment{}}
	f.svc.Indexer = idx
	f.svc.Now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()
	doc := f.document(t, "text")

	c, err := f.svc.Create(ctx, doc.ID, CreateInput{UserID: f.alice.ID, Content: "c", HighlightedText: "text"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), c.CreatedAt)

	_, err = f.svc.UpdateContent(ctx, c.ID, "changed")
	require.NoError(t, err)
	assert.Equal(t, "changed", idx.indexed[c.ID].Content)

	require.NoError(t, f.svc.Delete(ctx, c.ID))
	assert.Equal(t, []string{c.ID}, idx.removed)
}
