package client

import (
	"context"
	"sync"
	"time"

	"aari-docs/internal/content"
)

// DefaultAutosaveDelay is the quiet period after the last edit before a save.
const DefaultAutosaveDelay = 2 * time.Second

// Draft is the full editable state of a document at one moment.
type Draft struct {
	Title   string
	Content content.Doc
}

// SaveFunc persists a draft.
type SaveFunc func(ctx context.Context, d Draft) error

// Autosaver debounces edits. Every Change restarts the timer; when it fires
// the latest draft is saved in full. Saves are not queued, so a timer that
// fires while another save is running starts a second one.
type Autosaver struct {
	delay time.Duration
	save  SaveFunc
	onErr func(error)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	draft   Draft
	dirty   bool
	saving  int
	stopped bool
	wg      sync.WaitGroup
}

// NewAutosaver returns a saver with the given delay, or DefaultAutosaveDelay
// when delay is not positive. onErr may be nil.
func NewAutosaver(delay time.Duration, save SaveFunc, onErr func(error)) *Autosaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &Autosaver{delay: delay, save: save, onErr: onErr}
}

// ForDocument saves drafts through the store's Update.
func ForDocument(store *DocumentStore, delay time.Duration, onErr func(error)) *Autosaver {
	return NewAutosaver(delay, func(ctx context.Context, d Draft) error {
		title := d.Title
		doc := d.Content
		_, err := store.Update(ctx, DocumentInput{Title: &title, Content: &doc})
		return err
	}, onErr)
}

// Change records the current draft and restarts the debounce timer.
func (a *Autosaver) Change(d Draft) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return
	}
	a.draft = d
	a.dirty = true
	if a.timer != nil {
		a.timer.Stop()
	}
	a.gen++
	gen := a.gen
	a.timer = time.AfterFunc(a.delay, func() { a.fire(gen) })
}

// Saving reports whether any save is in flight.
func (a *Autosaver) Saving() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saving > 0
}

// Pending reports whether an edit is waiting for the timer.
func (a *Autosaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dirty
}

// Flush cancels the timer and saves the pending draft now, if there is one.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.mu.Lock()
	a.gen++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	if !a.dirty {
		a.mu.Unlock()
		return nil
	}
	d := a.begin()
	a.mu.Unlock()
	return a.run(ctx, d)
}

// Stop cancels any pending save and waits for in-flight saves to finish.
func (a *Autosaver) Stop() {
	a.mu.Lock()
	a.stopped = true
	a.gen++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	a.mu.Unlock()
	a.wg.Wait()
}

// fire runs when the timer armed for gen expires. A timer that was already
// running when a later Change, Flush or Stop took the lock does nothing.
func (a *Autosaver) fire(gen uint64) {
	a.mu.Lock()
	if a.stopped || !a.dirty || gen != a.gen {
		a.mu.Unlock()
		return
	}
	a.timer = nil
	d := a.begin()
	a.mu.Unlock()

	if err := a.run(context.Background(), d); err != nil && a.onErr != nil {
		a.onErr(err)
	}
}

// begin snapshots the draft and marks a save in flight. Callers hold mu.
func (a *Autosaver) begin() Draft {
	d := a.draft
	a.dirty = false
	a.saving++
	a.wg.Add(1)
	return d
}

func (a *Autosaver) run(ctx context.Context, d Draft) error {
	defer a.wg.Done()
	err := a.save(ctx, d)
	a.mu.Lock()
	a.saving--
	if err != nil && !a.stopped {
		// keep the draft so the next change or flush retries it
		a.dirty = true
	}
	a.mu.Unlock()
	return err
}
