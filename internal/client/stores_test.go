package client

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aari-docs/internal/comments"
	"aari-docs/internal/content"
)

func TestDocumentsStorePrependsAndRemoves(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	store := NewDocumentsStore(ts.client)

	require.NoError(t, store.Load(ctx))
	assert.Empty(t, store.Items())
	assert.False(t, store.Loading())

	first, err := store.Create(ctx, ptr("First"))
	require.NoError(t, err)
	second, err := store.Create(ctx, nil)
	require.NoError(t, err)

	items := store.Items()
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)
	assert.Equal(t, first.ID, items[1].ID)

	require.NoError(t, store.Delete(ctx, first.ID))
	items = store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, second.ID, items[0].ID)
}

func TestDocumentsStoreKeepsStateOnError(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()
	store := NewDocumentsStore(ts.client)

	_, err := store.Create(ctx, ptr("Keep"))
	require.NoError(t, err)

	err = store.Delete(ctx, "missing")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Len(t, store.Items(), 1)
	assert.Equal(t, err, store.Err())
}

func TestDocumentStoreUpdateReplacesDocument(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	created, err := ts.client.CreateDocument(ctx, DocumentInput{Title: ptr("Draft")})
	require.NoError(t, err)

	store := NewDocumentStore(ts.client, created.ID)
	_, ok := store.Document()
	assert.False(t, ok)

	require.NoError(t, store.Load(ctx))
	doc, ok := store.Document()
	require.True(t, ok)
	assert.Equal(t, "Draft", doc.Title)

	_, err = store.Update(ctx, DocumentInput{Title: ptr("Final")})
	require.NoError(t, err)
	doc, _ = store.Document()
	assert.Equal(t, "Final", doc.Title)

	missing := NewDocumentStore(ts.client, "missing")
	require.Error(t, missing.Load(ctx))
	_, ok = missing.Document()
	assert.False(t, ok)
	assert.Error(t, missing.Err())
}

func TestCommentsStoreReconciles(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	body := content.FromPlainText("alpha beta gamma")
	doc, err := ts.client.CreateDocument(ctx, DocumentInput{Content: &body})
	require.NoError(t, err)

	store := NewCommentsStore(ts.client, doc.ID)
	require.NoError(t, store.Load(ctx))
	assert.Empty(t, store.Items())

	first, err := store.Add(ctx, CommentInput{UserID: ts.alice.ID, Content: "one", HighlightedText: "alpha", SelectionFrom: ptr(0)})
	require.NoError(t, err)
	second, err := store.Add(ctx, CommentInput{UserID: ts.bob.ID, Content: "two", HighlightedText: "beta", SelectionFrom: ptr(6)})
	require.NoError(t, err)

	items := store.Items()
	require.Len(t, items, 2)
	assert.Equal(t, second.ID, items[0].ID)

	_, err = store.Update(ctx, first.ID, "one, edited")
	require.NoError(t, err)
	_, err = store.Resolve(ctx, second.ID, true)
	require.NoError(t, err)

	items = store.Items()
	assert.Equal(t, second.ID, items[0].ID)
	assert.True(t, items[0].IsResolved)
	assert.Equal(t, "one, edited", items[1].Content)

	require.NoError(t, store.AddReply(ctx, first.ID, ts.bob.ID, "ack"))
	items = store.Items()
	var withReply comments.Comment
	for _, c := range items {
		if c.ID == first.ID {
			withReply = c
		}
	}
	require.Len(t, withReply.Replies, 1)
	replyID := withReply.Replies[0].ID

	require.NoError(t, store.UpdateReply(ctx, replyID, "ack!"))
	require.NoError(t, store.DeleteReply(ctx, replyID))
	for _, c := range store.Items() {
		assert.Empty(t, c.Replies)
	}

	require.NoError(t, store.Delete(ctx, second.ID))
	items = store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, first.ID, items[0].ID)
}

func TestCommentsStoreErrorLeavesItems(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	doc, err := ts.client.CreateDocument(ctx, DocumentInput{})
	require.NoError(t, err)
	store := NewCommentsStore(ts.client, doc.ID)

	_, err = store.Add(ctx, CommentInput{UserID: ts.alice.ID, Content: "hi", HighlightedText: "x"})
	require.NoError(t, err)
	before := store.Items()

	_, err = store.Resolve(ctx, "missing", true)
	require.Error(t, err)
	require.Error(t, store.AddReply(ctx, "missing", ts.bob.ID, "nope"))
	assert.Equal(t, before, store.Items())
}

func TestCommentsStoreReappliesHighlights(t *testing.T) {
	ts := newTestServer(t)
	ctx := context.Background()

	body := content.FromPlainText("alpha beta gamma")
	doc, err := ts.client.CreateDocument(ctx, DocumentInput{Content: &body})
	require.NoError(t, err)

	store := NewCommentsStore(ts.client, doc.ID)
	store.SetDocument(body)
	require.NoError(t, store.Load(ctx))
	assert.Empty(t, store.Highlights())

	second, err := store.Add(ctx, CommentInput{UserID: ts.bob.ID, Content: "two", HighlightedText: "beta", SelectionFrom: ptr(6)})
	require.NoError(t, err)
	first, err := store.Add(ctx, CommentInput{UserID: ts.alice.ID, Content: "one", HighlightedText: "alpha", SelectionFrom: ptr(0)})
	require.NoError(t, err)

	marks := store.Highlights()
	require.Len(t, marks, 2)
	assert.Equal(t, first.ID, marks[0].CommentID)
	assert.Equal(t, second.ID, marks[1].CommentID)
	assert.Equal(t, []string{second.ID}, store.ThreadsAt(7))
	assert.Empty(t, store.ThreadsAt(5))

	_, err = store.Resolve(ctx, second.ID, true)
	require.NoError(t, err)
	_, ok := store.HighlightFor(second.ID)
	assert.False(t, ok)

	store.SetDocument(content.FromPlainText("alp"))
	mark, ok := store.HighlightFor(first.ID)
	require.True(t, ok)
	assert.Equal(t, 0, mark.From)
	assert.Equal(t, 3, mark.To)
	assert.True(t, mark.Drifted)

	require.NoError(t, store.Delete(ctx, first.ID))
	assert.Empty(t, store.Highlights())
}

func TestPartitionAndActions(t *testing.T) {
	list := []comments.Comment{
		{ID: "a", UserID: "u1"},
		{ID: "b", UserID: "u2", IsResolved: true},
		{ID: "c", UserID: "u2"},
	}
	open, resolved := Partition(list)
	require.Len(t, open, 2)
	require.Len(t, resolved, 1)
	assert.Equal(t, "a", open[0].ID)
	assert.Equal(t, "c", open[1].ID)
	assert.Equal(t, 2, ActiveCount(list))

	own := ActionsFor("u1", list[0])
	assert.True(t, own.Edit)
	assert.True(t, own.Delete)
	assert.True(t, own.Reply)
	assert.False(t, own.Reopen)

	other := ActionsFor("u1", list[2])
	assert.False(t, other.Edit)
	assert.False(t, other.Delete)
	assert.True(t, other.Resolve)

	closed := ActionsFor("u2", list[1])
	assert.False(t, closed.Edit)
	assert.False(t, closed.Reply)
	assert.True(t, closed.Reopen)

	assert.False(t, CanModify("", ""))
}
