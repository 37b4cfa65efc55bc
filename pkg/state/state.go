// Package state persists reading positions and bookmarks in a SQLite
// database.
package state

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

var (
	ErrNoPosition = errors.New("no saved position")
	ErrNoBookmark = errors.New("no such bookmark")
)

const schema = `
CREATE TABLE IF NOT EXISTS positions (
	book    TEXT PRIMARY KEY,
	section INTEGER NOT NULL,
	page    INTEGER NOT NULL,
	font    TEXT NOT NULL DEFAULT '',
	updated INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bookmarks (
	id      INTEGER PRIMARY KEY,
	book    TEXT NOT NULL,
	section INTEGER NOT NULL,
	page    INTEGER NOT NULL,
	label   TEXT NOT NULL DEFAULT '',
	created INTEGER NOT NULL,
	UNIQUE (book, section, page)
);
`

// Position is where a book was left.
type Position struct {
	Updated time.Time
	Book    string
	Font    string
	Section int
	Page    int
}

// Resume describes the position for the status bar, relative to now.
func (p Position) Resume(now time.Time) string {
	return fmt.Sprintf("Resumed at section %d, page %d (last read %s)",
		p.Section+1, p.Page+1, humanize.RelTime(p.Updated, now, "ago", "from now"))
}

// Bookmark is a page marked by the reader.
type Bookmark struct {
	Created time.Time
	Book    string
	Label   string
	ID      int64
	Section int
	Page    int
}

// Store is a reading position store. It is safe for concurrent use.
type Store struct {
	conn *sqlite.Conn
	mu   sync.Mutex
}

// DefaultPath returns the state database path below the user's state or
// cache directory.
func DefaultPath() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "folio", "state.db")
	}

	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "folio", "state.db")
	}

	return filepath.Join(os.TempDir(), "folio", "state.db")
}

// Open opens or creates the database at path. Use ":memory:" for a
// throwaway store.
func Open(path string) (*Store, error) {
	flags := []sqlite.OpenFlags{sqlite.OpenReadWrite, sqlite.OpenCreate}

	if path == ":memory:" {
		flags = append(flags, sqlite.OpenMemory)
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}

		flags = append(flags, sqlite.OpenWAL)
	}

	conn, err := sqlite.OpenConn(path, flags...)
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}

	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	slog.Debug("opened state db", slog.String("path", path))

	return &Store{conn: conn}, nil
}

// Save records pos, replacing any earlier position of the same book. A zero
// Updated time is set to now.
func (s *Store) Save(pos Position) error {
	if pos.Updated.IsZero() {
		pos.Updated = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := sqlitex.Execute(s.conn, `
		INSERT INTO positions (book, section, page, font, updated)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(book) DO UPDATE SET
			section = excluded.section,
			page = excluded.page,
			font = excluded.font,
			updated = excluded.updated`,
		&sqlitex.ExecOptions{
			Args: []any{pos.Book, pos.Section, pos.Page, pos.Font, pos.Updated.UnixMilli()},
		})
	if err != nil {
		return fmt.Errorf("save position: %w", err)
	}

	return nil
}

// Load returns the saved position of book, or [ErrNoPosition].
func (s *Store) Load(book string) (Position, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		pos   Position
		found bool
	)

	err := sqlitex.Execute(s.conn,
		`SELECT section, page, font, updated FROM positions WHERE book = ?`,
		&sqlitex.ExecOptions{
			Args: []any{book},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				found = true
				pos = Position{
					Book:    book,
					Section: int(stmt.ColumnInt64(0)),
					Page:    int(stmt.ColumnInt64(1)),
					Font:    stmt.ColumnText(2),
					Updated: time.UnixMilli(stmt.ColumnInt64(3)),
				}

				return nil
			},
		})
	if err != nil {
		return Position{}, fmt.Errorf("load position: %w", err)
	}

	if !found {
		return Position{}, fmt.Errorf("%q: %w", book, ErrNoPosition)
	}

	return pos, nil
}

// Forget removes the saved position of book.
func (s *Store) Forget(book string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := sqlitex.Execute(s.conn, `DELETE FROM positions WHERE book = ?`,
		&sqlitex.ExecOptions{Args: []any{book}})
	if err != nil {
		return fmt.Errorf("forget position: %w", err)
	}

	return nil
}

// AddBookmark marks a page of a book and returns the stored bookmark. Marking
// the same page again replaces its label. A zero Created time is set to now.
func (s *Store) AddBookmark(b Bookmark) (Bookmark, error) {
	if b.Created.IsZero() {
		b.Created = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	err := sqlitex.Execute(s.conn, `
		INSERT INTO bookmarks (book, section, page, label, created)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(book, section, page) DO UPDATE SET
			label = excluded.label
		RETURNING id, created`,
		&sqlitex.ExecOptions{
			Args: []any{b.Book, b.Section, b.Page, b.Label, b.Created.UnixMilli()},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				b.ID = stmt.ColumnInt64(0)
				b.Created = time.UnixMilli(stmt.ColumnInt64(1))

				return nil
			},
		})
	if err != nil {
		return Bookmark{}, fmt.Errorf("add bookmark: %w", err)
	}

	return b, nil
}

// Bookmarks returns the bookmarks of book in reading order.
func (s *Store) Bookmarks(book string) ([]Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var marks []Bookmark

	err := sqlitex.Execute(s.conn, `
		SELECT id, section, page, label, created FROM bookmarks
		WHERE book = ?
		ORDER BY section, page`,
		&sqlitex.ExecOptions{
			Args: []any{book},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				marks = append(marks, Bookmark{
					ID:      stmt.ColumnInt64(0),
					Book:    book,
					Section: int(stmt.ColumnInt64(1)),
					Page:    int(stmt.ColumnInt64(2)),
					Label:   stmt.ColumnText(3),
					Created: time.UnixMilli(stmt.ColumnInt64(4)),
				})

				return nil
			},
		})
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	return marks, nil
}

// RemoveBookmark deletes the bookmark with the given id, or returns
// [ErrNoBookmark].
func (s *Store) RemoveBookmark(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := sqlitex.Execute(s.conn, `DELETE FROM bookmarks WHERE id = ?`,
		&sqlitex.ExecOptions{Args: []any{id}})
	if err != nil {
		return fmt.Errorf("remove bookmark: %w", err)
	}

	if s.conn.Changes() == 0 {
		return fmt.Errorf("bookmark %d: %w", id, ErrNoBookmark)
	}

	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("close state db: %w", err)
	}

	return nil
}
