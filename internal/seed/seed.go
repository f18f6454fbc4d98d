// Package seed generates demo users, documents and comment threads.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"

	"aari-docs/internal/comments"
	"aari-docs/internal/content"
	"aari-docs/internal/documents"
	"aari-docs/internal/shared/storage/db"
	"aari-docs/internal/shared/telemetry"
	"aari-docs/internal/users"
)

// Options sizes the generated dataset.
type Options struct {
	Users     int
	Documents int
	// Seed fixes the generated data. Zero picks a random seed.
	Seed      uint64
	Now       time.Time
}

// DefaultOptions matches the demo workspace: 20 users and 100 documents.
func DefaultOptions() Options {
	return Options{Users: 20, Documents: 100, Seed: 1}
}

// Dataset is everything a seed run inserts.
type Dataset struct {
	Users     []users.User
	Documents []documents.Document
	Comments  []comments.Comment
	Replies   []comments.Reply
}

// Repos receives the generated rows.
type Repos struct {
	Users     users.Repo
	Documents documents.DocumentsRepo
	Comments  comments.Repo
}

type weighted struct {
	min, max int
	weight   int
}

var (
	commentCounts = []weighted{{0, 3, 50}, {4, 10, 30}, {11, 20, 15}, {21, 30, 5}}
	replyCounts   = []weighted{{0, 0, 40}, {1, 2, 35}, {3, 5, 20}, {6, 8, 5}}
)

// Generate builds a deterministic dataset for opts.Seed.
func Generate(opts Options) Dataset {
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}
	g := generator{f: gofakeit.New(opts.Seed), now: opts.Now}

	var ds Dataset
	for i := 0; i < opts.Users; i++ {
		ds.Users = append(ds.Users, g.user(i))
	}
	if len(ds.Users) == 0 {
		return ds
	}

	for i := 0; i < opts.Documents; i++ {
		doc := g.document()
		ds.Documents = append(ds.Documents, doc)

		for n := g.pick(commentCounts); n > 0; n-- {
			c := g.comment(doc, ds.Users)
			ds.Comments = append(ds.Comments, c)
			for r := g.pick(replyCounts); r > 0; r-- {
				ds.Replies = append(ds.Replies, g.reply(c, ds.Users))
			}
		}
	}
	return ds
}

// Load inserts ds through the repositories. Users are upserted by email, so
// author IDs are remapped to the stored rows.
func Load(ctx context.Context, repos Repos, ds Dataset) error {
	ids := make(map[string]string, len(ds.Users))
	for _, u := range ds.Users {
		stored, err := repos.Users.UpsertByEmail(ctx, u)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		ids[u.ID] = stored.ID
	}
	for _, doc := range ds.Documents {
		if err := repos.Documents.Create(ctx, doc); err != nil {
			return fmt.Errorf("seed document %s: %w", doc.ID, err)
		}
	}
	for _, c := range ds.Comments {
		c.UserID = ids[c.UserID]
		if err := repos.Comments.Create(ctx, c); err != nil {
			return fmt.Errorf("seed comment %s: %w", c.ID, err)
		}
	}
	for _, r := range ds.Replies {
		r.UserID = ids[r.UserID]
		if err := repos.Comments.CreateReply(ctx, r); err != nil {
			return fmt.Errorf("seed reply %s: %w", r.ID, err)
		}
	}
	telemetry.Info("seed.loaded", map[string]any{
		"users":     len(ds.Users),
		"documents": len(ds.Documents),
		"comments":  len(ds.Comments),
		"replies":   len(ds.Replies),
	})
	return nil
}

// Wipe removes every row, children first.
func Wipe(ctx context.Context, database *sql.DB) error {
	return db.WithTx(ctx, database, func(tx *sql.Tx) error {
		for _, table := range []string{"replies", "comments", "documents", "users"} {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("wipe %s: %w", table, err)
			}
		}
		return nil
	})
}

type generator struct {
	f   *gofakeit.Faker
	now time.Time
}

func (g generator) between(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return g.f.Number(lo, hi)
}

func (g generator) pick(options []weighted) int {
	total := 0
	for _, o := range options {
		total += o.weight
	}
	roll := g.f.Number(0, total-1)
	for _, o := range options {
		if roll < o.weight {
			return g.between(o.min, o.max)
		}
		roll -= o.weight
	}
	return 0
}

func (g generator) chance(n int) bool {
	return g.f.Number(1, n) == 1
}

func (g generator) sentence(lo, hi int) string {
	return g.f.LoremIpsumSentence(g.between(lo, hi))
}

// timeBetween returns a time in [from, to).
func (g generator) timeBetween(from, to time.Time) time.Time {
	span := to.Sub(from)
	if span <= 0 {
		return from
	}
	return from.Add(time.Duration(g.f.Number(0, int(span)-1)))
}

func (g generator) user(i int) users.User {
	first, last := g.f.FirstName(), g.f.LastName()
	avatar := fmt.Sprintf("https://i.pravatar.cc/150?u=%d", i)
	return users.User{
		ID:        uuid.NewString(),
		Name:      first + " " + last,
		Email:     strings.ToLower(fmt.Sprintf("%s.%s%d@example.com", first, last, i)),
		AvatarURL: &avatar,
	}
}

func (g generator) title() string {
	switch g.f.Number(0, 4) {
	case 0:
		return fmt.Sprintf("%s %s Guide", capitalize(g.f.Adjective()), capitalize(g.f.Noun()))
	case 1:
		return fmt.Sprintf("Q%d Report", g.between(1, 4))
	case 2:
		return strings.TrimSuffix(g.sentence(3, 6), ".")
	case 3:
		return "Meeting Notes: " + g.f.Company()
	default:
		return "Project: " + capitalize(g.f.BuzzWord()) + " " + capitalize(g.f.Noun())
	}
}

func (g generator) document() documents.Document {
	nodes := []content.Node{content.Heading(1, strings.TrimSuffix(g.sentence(3, 5), "."))}
	for p := g.between(3, 6); p > 0; p-- {
		var sentences []string
		for s := g.between(3, 6); s > 0; s-- {
			sentences = append(sentences, g.sentence(6, 14))
		}
		nodes = append(nodes, content.Paragraph(strings.Join(sentences, " ")))
		if g.chance(4) {
			nodes = append(nodes, content.Heading(2, strings.TrimSuffix(g.sentence(2, 4), ".")))
		}
	}
	created := g.timeBetween(g.now.AddDate(-1, 0, 0), g.now.AddDate(0, 0, -30))
	return documents.Document{
		ID:        uuid.NewString(),
		Title:     g.title(),
		Content:   content.Doc{Type: content.TypeDoc, Content: nodes},
		CreatedAt: created,
		UpdatedAt: g.timeBetween(g.now.AddDate(0, 0, -30), g.now),
	}
}

func (g generator) author(list []users.User) string {
	return list[g.f.Number(0, len(list)-1)].ID
}

func (g generator) comment(doc documents.Document, authors []users.User) comments.Comment {
	highlighted := g.sentence(3, 8)
	from := g.between(0, 500)
	created := g.timeBetween(doc.CreatedAt, g.now)
	return comments.Comment{
		ID:              uuid.NewString(),
		DocumentID:      doc.ID,
		UserID:          g.author(authors),
		HighlightedText: highlighted,
		SelectionFrom:   from,
		SelectionTo:     from + len([]rune(highlighted)),
		Content:         g.f.RandomString(commentLines),
		IsResolved:      g.chance(4),
		CreatedAt:       created,
		UpdatedAt:       created,
	}
}

func (g generator) reply(c comments.Comment, authors []users.User) comments.Reply {
	created := g.timeBetween(c.CreatedAt, g.now)
	return comments.Reply{
		ID:        uuid.NewString(),
		CommentID: c.ID,
		UserID:    g.author(authors),
		Content:   g.f.RandomString(replyLines),
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
