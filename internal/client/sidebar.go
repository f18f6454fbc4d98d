package client

import "aari-docs/internal/comments"

// Partition splits threads into open and resolved, keeping their order.
func Partition(list []comments.Comment) (open, resolved []comments.Comment) {
	open = make([]comments.Comment, 0, len(list))
	resolved = make([]comments.Comment, 0)
	for _, c := range list {
		if c.IsResolved {
			resolved = append(resolved, c)
		} else {
			open = append(open, c)
		}
	}
	return open, resolved
}

// ActiveCount is the number of open threads.
func ActiveCount(list []comments.Comment) int {
	n := 0
	for _, c := range list {
		if !c.IsResolved {
			n++
		}
	}
	return n
}

// CanModify reports whether the current user authored the item. The server
// does not repeat this check.
func CanModify(currentUserID, authorID string) bool {
	return currentUserID != "" && currentUserID == authorID
}

// ThreadActions lists what the sidebar offers on a thread.
type ThreadActions struct {
	Edit    bool
	Delete  bool
	Resolve bool
	Reopen  bool
	Reply   bool
}

// ActionsFor computes the actions for a thread. Edit and delete belong to the
// author of an open thread; anyone may resolve, reopen or reply to an open one.
func ActionsFor(currentUserID string, c comments.Comment) ThreadActions {
	owner := CanModify(currentUserID, c.UserID)
	return ThreadActions{
		Edit:    owner && !c.IsResolved,
		Delete:  owner && !c.IsResolved,
		Resolve: !c.IsResolved,
		Reopen:  c.IsResolved,
		Reply:   !c.IsResolved,
	}
}
