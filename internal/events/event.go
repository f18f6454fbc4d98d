// Package events publishes activity events about documents and comment threads.
package events

import (
	"encoding/json"
	"time"
)

// Event types.
const (
	DocumentCreated = "document.created"
	DocumentDeleted = "document.deleted"
	CommentCreated  = "comment.created"
	CommentResolved = "comment.resolved"
	CommentReopened = "comment.reopened"
	CommentDeleted  = "comment.deleted"
	ReplyCreated    = "reply.created"
)

// Event is the payload sent to downstream consumers.
type Event struct {
	Type       string `json:"type"`
	DocumentID string `json:"documentId,omitempty"`
	CommentID  string `json:"commentId,omitempty"`
	ReplyID    string `json:"replyId,omitempty"`
	UserID     string `json:"userId,omitempty"`
	OccurredAt string `json:"occurredAt"`
	Version    int    `json:"version"`
}

// New stamps an event of the given type with the current time.
func New(eventType string) Event {
	return Event{
		Type:       eventType,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
		Version:    1,
	}
}

// Encode returns the JSON representation of an event.
func Encode(evt Event) ([]byte, error) {
	return json.Marshal(evt)
}
