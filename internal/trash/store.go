// Package trash archives messages purged from an mbox in a SQLite database
// so they can be listed and restored later.
package trash

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/smbox/smbox/internal/log"
	"github.com/smbox/smbox/internal/mbox"
	"github.com/smbox/smbox/internal/tracing"
)

// ErrNotFound is returned when no entry has the requested ID.
var ErrNotFound = errors.New("trash entry not found")

// Entry is one archived message.
type Entry struct {
	ID          string
	MboxPath    string
	Separator   string
	From        string
	Subject     string
	MessageDate string
	Raw         string
	ArchivedAt  time.Time
}

// Message parses the archived text back into a message.
func (e Entry) Message() (*mbox.Message, error) {
	box := mbox.ParseString(e.Raw)
	if box.Len() != 1 {
		return nil, fmt.Errorf("trash entry %s: expected one message, found %d", e.ID, box.Len())
	}
	return box.At(0), nil
}

// Store is the trash database.
type Store struct {
	db    *sql.DB
	clock Clock
}

// Open opens or creates the trash database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := openDB(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Store{db: db, clock: RealClock{}}, nil
}

// WithClock replaces the store's time source.
func (s *Store) WithClock(clock Clock) *Store {
	s.clock = clock
	return s
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Archive stores msgs as purged from mboxPath and returns the new entries.
func (s *Store) Archive(ctx context.Context, mboxPath string, msgs []*mbox.Message) (entries []Entry, err error) {
	ctx, span := tracing.Start(ctx, tracing.SpanTrashArchive,
		attribute.String(tracing.AttrMboxPath, mboxPath),
		attribute.Int(tracing.AttrTrashCount, len(msgs)))
	defer func() { tracing.End(span, err) }()

	if len(msgs) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("archiving messages: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := s.clock.Now().UTC()
	for _, m := range msgs {
		date, _ := m.FieldValue(mbox.FieldDate)
		e := Entry{
			ID:          uuid.NewString(),
			MboxPath:    mboxPath,
			Separator:   m.Separator(),
			From:        m.From(),
			Subject:     m.Subject(),
			MessageDate: date,
			Raw:         m.String(),
			ArchivedAt:  now,
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO trash (id, mbox_path, separator, sender, subject, message_date, raw, archived_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.MboxPath, e.Separator, e.From, e.Subject, e.MessageDate, e.Raw, e.ArchivedAt.UnixMilli(),
		); err != nil {
			return nil, fmt.Errorf("archiving message %q: %w", e.Subject, err)
		}
		entries = append(entries, e)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("archiving messages: %w", err)
	}
	log.Info(log.CatTrash, "Archived purged messages", "mbox", mboxPath, "count", len(entries))
	return entries, nil
}

const entryColumns = `id, mbox_path, separator, sender, subject, message_date, raw, archived_at`

func scanEntry(scanner interface{ Scan(...any) error }) (Entry, error) {
	var (
		e          Entry
		archivedAt int64
	)
	err := scanner.Scan(&e.ID, &e.MboxPath, &e.Separator, &e.From, &e.Subject, &e.MessageDate, &e.Raw, &archivedAt)
	e.ArchivedAt = time.UnixMilli(archivedAt).UTC()
	return e, err
}

// List returns every entry, most recently archived first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM trash ORDER BY archived_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing trash: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("listing trash: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing trash: %w", err)
	}
	return entries, nil
}

// Get returns the entry with the given ID. A unique prefix of an ID is
// accepted too.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	if id == "" {
		return Entry{}, fmt.Errorf("%w: empty id", ErrNotFound)
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM trash WHERE id = ? OR id LIKE ? || '%' LIMIT 2`, id, id)
	if err != nil {
		return Entry{}, fmt.Errorf("reading trash entry: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var found []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return Entry{}, fmt.Errorf("reading trash entry: %w", err)
		}
		if e.ID == id {
			return e, nil
		}
		found = append(found, e)
	}
	if err := rows.Err(); err != nil {
		return Entry{}, fmt.Errorf("reading trash entry: %w", err)
	}

	switch len(found) {
	case 0:
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	case 1:
		return found[0], nil
	default:
		return Entry{}, fmt.Errorf("trash entry prefix %q is ambiguous", id)
	}
}

// Remove deletes the entry with the given ID.
func (s *Store) Remove(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM trash WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("removing trash entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("removing trash entry: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Restore appends the archived message back onto the mbox at mboxPath,
// clearing its Deleted flag, and removes it from the trash. An empty
// mboxPath restores to the mbox the message was purged from.
func (s *Store) Restore(ctx context.Context, id, mboxPath string) (e Entry, err error) {
	ctx, span := tracing.Start(ctx, tracing.SpanTrashRestore, attribute.String(tracing.AttrTrashEntryID, id))
	defer func() { tracing.End(span, err) }()

	e, err = s.Get(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	msg, err := e.Message()
	if err != nil {
		return Entry{}, err
	}
	msg.UnsetStatus(mbox.StatusDeleted)

	if mboxPath == "" {
		mboxPath = e.MboxPath
	}
	span.SetAttributes(attribute.String(tracing.AttrMboxPath, mboxPath))

	box, err := mbox.Load(ctx, mboxPath)
	if err != nil {
		return Entry{}, err
	}
	box.Append(msg)
	if err := box.WriteFile(ctx, mboxPath); err != nil {
		return Entry{}, err
	}
	if err := s.Remove(ctx, e.ID); err != nil {
		return Entry{}, err
	}

	log.Info(log.CatTrash, "Restored message", "id", e.ID, "mbox", mboxPath)
	return e, nil
}
