package comments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"aari-docs/internal/anchors"
	"aari-docs/internal/documents"
	"aari-docs/internal/events"
	"aari-docs/internal/shared/metrics"
	"aari-docs/internal/shared/telemetry"
	"aari-docs/internal/users"
)

var (
	// ErrDocumentNotFound is returned when the target document does not exist.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrUnknownUser is returned when userId does not name a known user.
	ErrUnknownUser = errors.New("unknown user")
)

// DocumentGetter loads documents for existence checks and highlight rendering.
type DocumentGetter interface {
	Get(ctx context.Context, id string) (documents.Document, error)
}

// AuthorDirectory resolves author profiles.
type AuthorDirectory interface {
	Profiles(ctx context.Context, userIDs []string) (map[string]users.Profile, error)
}

// Indexer keeps the search index in step with comment mutations.
type Indexer interface {
	IndexComment(ctx context.Context, comment Comment) error
	RemoveComment(ctx context.Context, commentID string) error
}

// Service contains business logic for comment threads.
type Service struct {
	Repo      Repo
	Documents DocumentGetter
	Authors   AuthorDirectory
	Indexer   Indexer
	Events    events.Publisher
	Now       func() time.Time
}

// CreateInput is the payload for a new comment. Nil selection offsets take
// their defaults: from is 0 and to is from plus the highlighted text length.
type CreateInput struct {
	UserID          string
	Content         string
	HighlightedText string
	SelectionFrom   *int
	SelectionTo     *int
}

// ReplyInput is the payload for a new reply.
type ReplyInput struct {
	UserID  string
	Content string
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// ListByDocument returns a document's comments newest first, each with replies
// oldest first and author profiles attached.
func (s *Service) ListByDocument(ctx context.Context, documentID string, status Status) ([]Comment, error) {
	if err := s.requireDocument(ctx, documentID); err != nil {
		return nil, err
	}
	list, err := s.Repo.ListByDocument(ctx, documentID, status)
	if err != nil {
		return nil, err
	}
	if err := s.attachAuthors(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// Create opens a thread on a document.
func (s *Service) Create(ctx context.Context, documentID string, in CreateInput) (Comment, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return Comment{}, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Content) == "" {
		return Comment{}, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if in.HighlightedText == "" {
		return Comment{}, fmt.Errorf("%w: highlightedText is required", ErrInvalidInput)
	}
	from := 0
	if in.SelectionFrom != nil {
		from = *in.SelectionFrom
	}
	if from < 0 {
		return Comment{}, fmt.Errorf("%w: selectionFrom must not be negative", ErrInvalidInput)
	}
	to := anchors.DefaultTo(from, in.HighlightedText)
	if in.SelectionTo != nil {
		to = *in.SelectionTo
	}
	if to < from {
		return Comment{}, fmt.Errorf("%w: selectionTo must not precede selectionFrom", ErrInvalidInput)
	}

	if err := s.requireDocument(ctx, documentID); err != nil {
		return Comment{}, err
	}
	author, err := s.author(ctx, userID)
	if err != nil {
		return Comment{}, err
	}

	now := s.now()
	c := Comment{
		ID:              uuid.NewString(),
		DocumentID:      documentID,
		UserID:          userID,
		HighlightedText: in.HighlightedText,
		SelectionFrom:   from,
		SelectionTo:     to,
		Content:         in.Content,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return Comment{}, err
	}
	c.User = author
	c.Replies = make([]Reply, 0)
	metrics.IncCommentsCreated()
	s.index(ctx, c)

	evt := events.New(events.CommentCreated)
	evt.DocumentID = documentID
	evt.CommentID = c.ID
	evt.UserID = userID
	events.Emit(ctx, s.Events, evt)
	return c, nil
}

// Get returns a single comment with replies and authors.
func (s *Service) Get(ctx context.Context, id string) (Comment, error) {
	c, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Comment{}, err
	}
	return s.withAuthors(ctx, c)
}

// UpdateContent edits the comment body.
func (s *Service) UpdateContent(ctx context.Context, id, content string) (Comment, error) {
	if strings.TrimSpace(content) == "" {
		return Comment{}, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	c, err := s.Repo.UpdateContent(ctx, id, content)
	if err != nil {
		return Comment{}, err
	}
	s.index(ctx, c)
	return s.withAuthors(ctx, c)
}

// SetResolved resolves or reopens a thread. Repeating the current state is a no-op
// that still succeeds.
func (s *Service) SetResolved(ctx context.Context, id string, resolved bool) (Comment, error) {
	c, err := s.Repo.SetResolved(ctx, id, resolved)
	if err != nil {
		return Comment{}, err
	}
	s.index(ctx, c)

	evtType := events.CommentReopened
	if resolved {
		metrics.IncCommentsResolved()
		evtType = events.CommentResolved
	}
	evt := events.New(evtType)
	evt.DocumentID = c.DocumentID
	evt.CommentID = c.ID
	events.Emit(ctx, s.Events, evt)
	return s.withAuthors(ctx, c)
}

// Delete removes a thread and its replies.
func (s *Service) Delete(ctx context.Context, id string) error {
	c, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.Indexer != nil {
		if err := s.Indexer.RemoveComment(ctx, id); err != nil {
			telemetry.Warn("comments.unindex_failed", map[string]any{"comment_id": id, "error": err})
		}
	}
	evt := events.New(events.CommentDeleted)
	evt.DocumentID = c.DocumentID
	evt.CommentID = id
	events.Emit(ctx, s.Events, evt)
	return nil
}

// CreateReply appends a reply to a thread.
func (s *Service) CreateReply(ctx context.Context, commentID string, in ReplyInput) (Reply, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return Reply{}, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Content) == "" {
		return Reply{}, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	parent, err := s.Repo.GetByID(ctx, commentID)
	if err != nil {
		return Reply{}, err
	}
	author, err := s.author(ctx, userID)
	if err != nil {
		return Reply{}, err
	}

	now := s.now()
	reply := Reply{
		ID:        uuid.NewString(),
		CommentID: commentID,
		UserID:    userID,
		Content:   in.Content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.CreateReply(ctx, reply); err != nil {
		return Reply{}, err
	}
	reply.User = author
	metrics.IncRepliesCreated()

	evt := events.New(events.ReplyCreated)
	evt.DocumentID = parent.DocumentID
	evt.CommentID = commentID
	evt.ReplyID = reply.ID
	evt.UserID = userID
	events.Emit(ctx, s.Events, evt)
	return reply, nil
}

// UpdateReply edits a reply body.
func (s *Service) UpdateReply(ctx context.Context, id, content string) (Reply, error) {
	if strings.TrimSpace(content) == "" {
		return Reply{}, fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	reply, err := s.Repo.UpdateReply(ctx, id, content)
	if err != nil {
		return Reply{}, err
	}
	profiles, err := s.profiles(ctx, []string{reply.UserID})
	if err != nil {
		return Reply{}, err
	}
	reply.User = profiles[reply.UserID]
	return reply, nil
}

// DeleteReply removes a reply.
func (s *Service) DeleteReply(ctx context.Context, id string) error {
	return s.Repo.DeleteReply(ctx, id)
}

// Highlights returns the open-thread highlight ranges for a document's current content.
func (s *Service) Highlights(ctx context.Context, documentID string) ([]anchors.Highlight, error) {
	doc, err := s.document(ctx, documentID)
	if err != nil {
		return nil, err
	}
	list, err := s.Repo.ListByDocument(ctx, documentID, StatusOpen)
	if err != nil {
		return nil, err
	}
	return anchors.Compute(doc.Content, Anchors(list)), nil
}

// Anchors converts comments into anchor inputs.
func Anchors(list []Comment) []anchors.Anchor {
	out := make([]anchors.Anchor, 0, len(list))
	for _, c := range list {
		out = append(out, anchors.Anchor{
			CommentID:       c.ID,
			From:            c.SelectionFrom,
			To:              c.SelectionTo,
			HighlightedText: c.HighlightedText,
			Resolved:        c.IsResolved,
		})
	}
	return out
}

func (s *Service) requireDocument(ctx context.Context, documentID string) error {
	_, err := s.document(ctx, documentID)
	return err
}

func (s *Service) document(ctx context.Context, documentID string) (documents.Document, error) {
	if s.Documents == nil {
		return documents.Document{ID: documentID}, nil
	}
	doc, err := s.Documents.Get(ctx, documentID)
	if err != nil {
		if errors.Is(err, documents.ErrNotFound) {
			return documents.Document{}, ErrDocumentNotFound
		}
		return documents.Document{}, err
	}
	return doc, nil
}

func (s *Service) author(ctx context.Context, userID string) (users.Profile, error) {
	profiles, err := s.profiles(ctx, []string{userID})
	if err != nil {
		return users.Profile{}, err
	}
	profile, ok := profiles[userID]
	if !ok && s.Authors != nil {
		return users.Profile{}, fmt.Errorf("%w: %s", ErrUnknownUser, userID)
	}
	if !ok {
		profile = users.Profile{ID: userID}
	}
	return profile, nil
}

func (s *Service) profiles(ctx context.Context, ids []string) (map[string]users.Profile, error) {
	if s.Authors == nil {
		return map[string]users.Profile{}, nil
	}
	return s.Authors.Profiles(ctx, ids)
}

func (s *Service) withAuthors(ctx context.Context, c Comment) (Comment, error) {
	list := []Comment{c}
	if err := s.attachAuthors(ctx, list); err != nil {
		return Comment{}, err
	}
	return list[0], nil
}

func (s *Service) attachAuthors(ctx context.Context, list []Comment) error {
	ids := make([]string, 0, len(list))
	for _, c := range list {
		ids = append(ids, c.UserID)
		for _, r := range c.Replies {
			ids = append(ids, r.UserID)
		}
	}
	profiles, err := s.profiles(ctx, ids)
	if err != nil {
		return err
	}
	for i := range list {
		list[i].User = profileOr(profiles, list[i].UserID)
		if list[i].Replies == nil {
			list[i].Replies = make([]Reply, 0)
		}
		for j := range list[i].Replies {
			list[i].Replies[j].User = profileOr(profiles, list[i].Replies[j].UserID)
		}
	}
	return nil
}

func profileOr(profiles map[string]users.Profile, id string) users.Profile {
	if p, ok := profiles[id]; ok {
		return p
	}
	return users.Profile{ID: id}
}

func (s *Service) index(ctx context.Context, c Comment) {
	if s.Indexer == nil {
		return
	}
	if err := s.Indexer.IndexComment(ctx, c); err != nil {
		telemetry.Warn("comments.index_failed", map[string]any{"comment_id": c.ID, "error": err})
	}
}
