package client

import (
	"context"
	"sync"

	"aari-docs/internal/anchors"
	"aari-docs/internal/comments"
	"aari-docs/internal/content"
	"aari-docs/internal/documents"
)

// API is the subset of Client the state containers use.
type API interface {
	ListDocuments(ctx context.Context) ([]documents.Document, error)
	CreateDocument(ctx context.Context, in DocumentInput) (documents.Document, error)
	GetDocument(ctx context.Context, id string) (documents.Document, error)
	UpdateDocument(ctx context.Context, id string, in DocumentInput) (documents.Document, error)
	DeleteDocument(ctx context.Context, id string) error

	ListComments(ctx context.Context, documentID string, status comments.Status) ([]comments.Comment, error)
	CreateComment(ctx context.Context, documentID string, in CommentInput) (comments.Comment, error)
	UpdateComment(ctx context.Context, id, text string) (comments.Comment, error)
	ResolveComment(ctx context.Context, id string, resolved bool) (comments.Comment, error)
	DeleteComment(ctx context.Context, id string) error
	CreateReply(ctx context.Context, commentID, userID, text string) (comments.Reply, error)
	UpdateReply(ctx context.Context, id, text string) (comments.Reply, error)
	DeleteReply(ctx context.Context, id string) error
}

var _ API = (*Client)(nil)

// status tracks the loading flag and last error every container exposes.
type status struct {
	loading bool
	err     error
}

// Loading reports whether a fetch is in progress.
func (s *status) Loading() bool { return s.loading }

// Err is the last error seen by the container, nil after a successful fetch.
func (s *status) Err() error { return s.err }

// DocumentsStore holds the document list. Creates prepend, deletes remove by
// id, and a failed call leaves the list untouched.
type DocumentsStore struct {
	api   API
	mu    sync.RWMutex
	st    status
	items []documents.Document
}

func NewDocumentsStore(api API) *DocumentsStore {
	return &DocumentsStore{api: api, items: []documents.Document{}}
}

// Load fetches the full list, replacing local state on success.
func (s *DocumentsStore) Load(ctx context.Context) error {
	s.mu.Lock()
	s.st.loading = true
	s.mu.Unlock()

	list, err := s.api.ListDocuments(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.loading = false
	if err != nil {
		s.st.err = err
		return err
	}
	s.st.err = nil
	s.items = list
	return nil
}

// Items returns a copy of the current list.
func (s *DocumentsStore) Items() []documents.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]documents.Document(nil), s.items...)
}

// Loading reports whether Load is in flight.
func (s *DocumentsStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Loading()
}

// Err returns the last error.
func (s *DocumentsStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Err()
}

// Create asks the server for a new document and prepends it.
func (s *DocumentsStore) Create(ctx context.Context, title *string) (documents.Document, error) {
	doc, err := s.api.CreateDocument(ctx, DocumentInput{Title: title})
	if err != nil {
		s.fail(err)
		return documents.Document{}, err
	}
	s.mu.Lock()
	s.items = append([]documents.Document{doc}, s.items...)
	s.mu.Unlock()
	return doc, nil
}

// Delete removes the document on the server, then locally.
func (s *DocumentsStore) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteDocument(ctx, id); err != nil {
		s.fail(err)
		return err
	}
	s.mu.Lock()
	s.items = removeByID(s.items, id, func(d documents.Document) string { return d.ID })
	s.mu.Unlock()
	return nil
}

func (s *DocumentsStore) fail(err error) {
	s.mu.Lock()
	s.st.err = err
	s.mu.Unlock()
}

// DocumentStore holds one open document.
type DocumentStore struct {
	api API
	id  string
	mu  sync.RWMutex
	st  status
	doc *documents.Document
}

func NewDocumentStore(api API, id string) *DocumentStore {
	return &DocumentStore{api: api, id: id}
}

// Load fetches the document.
func (s *DocumentStore) Load(ctx context.Context) error {
	s.mu.Lock()
	s.st.loading = true
	s.mu.Unlock()

	doc, err := s.api.GetDocument(ctx, s.id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.loading = false
	if err != nil {
		s.st.err = err
		return err
	}
	s.st.err = nil
	s.doc = &doc
	return nil
}

// Document returns the loaded document, if any.
func (s *DocumentStore) Document() (documents.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.doc == nil {
		return documents.Document{}, false
	}
	return *s.doc, true
}

// Err returns the last error.
func (s *DocumentStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Err()
}

// Update sends a partial update and replaces local state with the server's copy.
func (s *DocumentStore) Update(ctx context.Context, in DocumentInput) (documents.Document, error) {
	doc, err := s.api.UpdateDocument(ctx, s.id, in)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.st.err = err
		return documents.Document{}, err
	}
	s.doc = &doc
	return doc, nil
}

// CommentsStore holds a document's threads. Creates prepend, updates and
// resolves replace by id, deletes remove by id. Reply mutations refetch the
// whole list so nested replies stay consistent. Every change to the threads
// or the document reapplies the highlight layer.
type CommentsStore struct {
	api        API
	documentID string
	mu         sync.RWMutex
	st         status
	items      []comments.Comment
	doc        content.Doc
	layer      anchors.Layer
}

func NewCommentsStore(api API, documentID string) *CommentsStore {
	return &CommentsStore{api: api, documentID: documentID, items: []comments.Comment{}}
}

// Load fetches every thread of the document.
func (s *CommentsStore) Load(ctx context.Context) error {
	s.mu.Lock()
	s.st.loading = true
	s.mu.Unlock()

	list, err := s.api.ListComments(ctx, s.documentID, comments.StatusAll)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.loading = false
	if err != nil {
		s.st.err = err
		return err
	}
	s.st.err = nil
	s.items = list
	s.relayer()
	return nil
}

// SetDocument swaps the text the highlights are computed against.
func (s *CommentsStore) SetDocument(doc content.Doc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = doc
	s.relayer()
}

// Highlights returns the marks for open threads ordered by position.
func (s *CommentsStore) Highlights() []anchors.Highlight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layer.Highlights()
}

// HighlightFor returns the mark rendered for a thread, if any.
func (s *CommentsStore) HighlightFor(commentID string) (anchors.Highlight, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layer.For(commentID)
}

// ThreadsAt returns the ids of threads whose marks cover pos.
func (s *CommentsStore) ThreadsAt(pos int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.layer.At(pos)
}

// Items returns a copy of the current threads.
func (s *CommentsStore) Items() []comments.Comment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]comments.Comment(nil), s.items...)
}

// Err returns the last error.
func (s *CommentsStore) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.Err()
}

func (s *CommentsStore) Add(ctx context.Context, in CommentInput) (comments.Comment, error) {
	c, err := s.api.CreateComment(ctx, s.documentID, in)
	if err != nil {
		s.fail(err)
		return comments.Comment{}, err
	}
	s.mu.Lock()
	s.items = append([]comments.Comment{c}, s.items...)
	s.relayer()
	s.mu.Unlock()
	return c, nil
}

func (s *CommentsStore) Update(ctx context.Context, id, text string) (comments.Comment, error) {
	c, err := s.api.UpdateComment(ctx, id, text)
	if err != nil {
		s.fail(err)
		return comments.Comment{}, err
	}
	s.replace(c)
	return c, nil
}

func (s *CommentsStore) Resolve(ctx context.Context, id string, resolved bool) (comments.Comment, error) {
	c, err := s.api.ResolveComment(ctx, id, resolved)
	if err != nil {
		s.fail(err)
		return comments.Comment{}, err
	}
	s.replace(c)
	return c, nil
}

func (s *CommentsStore) Delete(ctx context.Context, id string) error {
	if err := s.api.DeleteComment(ctx, id); err != nil {
		s.fail(err)
		return err
	}
	s.mu.Lock()
	s.items = removeByID(s.items, id, func(c comments.Comment) string { return c.ID })
	s.relayer()
	s.mu.Unlock()
	return nil
}

func (s *CommentsStore) AddReply(ctx context.Context, commentID, userID, text string) error {
	if _, err := s.api.CreateReply(ctx, commentID, userID, text); err != nil {
		s.fail(err)
		return err
	}
	return s.Load(ctx)
}

func (s *CommentsStore) UpdateReply(ctx context.Context, id, text string) error {
	if _, err := s.api.UpdateReply(ctx, id, text); err != nil {
		s.fail(err)
		return err
	}
	return s.Load(ctx)
}

func (s *CommentsStore) DeleteReply(ctx context.Context, id string) error {
	if err := s.api.DeleteReply(ctx, id); err != nil {
		s.fail(err)
		return err
	}
	return s.Load(ctx)
}

func (s *CommentsStore) replace(c comments.Comment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]comments.Comment, len(s.items))
	for i, existing := range s.items {
		if existing.ID == c.ID {
			next[i] = c
		} else {
			next[i] = existing
		}
	}
	s.items = next
	s.relayer()
}

// relayer must be called with mu held.
func (s *CommentsStore) relayer() {
	s.layer.Reset(s.doc, comments.Anchors(s.items))
}

func (s *CommentsStore) fail(err error) {
	s.mu.Lock()
	s.st.err = err
	s.mu.Unlock()
}

func removeByID[T any](items []T, id string, key func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if key(item) != id {
			out = append(out, item)
		}
	}
	return out
}
