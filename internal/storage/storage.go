package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// DateLayout is how task dates are persisted. It is fixed width so that
// lexical order in SQL matches chronological order.
const DateLayout = "2006-01-02 15:04:05.000000000"

var (
	ErrNotFound     = errors.New("task not found")
	ErrUnknownField = errors.New("unknown task field")
)

type Task struct {
	ID       int
	Title    string
	Contents string
	Date     time.Time
	Category string
}

// Store owns every persisted Task. Mutations are serialized through write.
type Store struct {
	db *sql.DB

	writeMu sync.Mutex

	viewsMu sync.Mutex
	views   map[*Results]struct{}
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	dsn := sqliteDSN(dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, views: map[*Results]struct{}{}}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL DEFAULT '',
	contents TEXT NOT NULL DEFAULT '',
	date TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	seq INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS tasks_date ON tasks (date, seq);
CREATE INDEX IF NOT EXISTS tasks_category ON tasks (category);`
	_, err := s.db.Exec(ddl)
	return err
}

// InsertOrUpdate overwrites the task with the same ID or adds it.
// An updated task keeps its original insertion position for sort ties.
func (s *Store) InsertOrUpdate(t Task) error {
	return s.write(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
INSERT INTO tasks (id, title, contents, date, category, seq)
VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM tasks))
ON CONFLICT (id) DO UPDATE SET
	title = excluded.title,
	contents = excluded.contents,
	date = excluded.date,
	category = excluded.category;`,
			t.ID, t.Title, t.Contents, formatDate(t.Date), t.Category)
		if err != nil {
			return fmt.Errorf("upsert task %d: %w", t.ID, err)
		}
		return nil
	})
}

// Delete removes the task with t's ID. A missing task is not an error.
func (s *Store) Delete(t Task) error {
	return s.write(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM tasks WHERE id = ?;`, t.ID); err != nil {
			return fmt.Errorf("delete task %d: %w", t.ID, err)
		}
		return nil
	})
}

// NextID returns 0 for an empty store, otherwise max(id)+1.
func (s *Store) NextID() (int, error) {
	var next int
	if err := s.db.QueryRow(`SELECT COALESCE(MAX(id) + 1, 0) FROM tasks;`).Scan(&next); err != nil {
		return 0, fmt.Errorf("next id: %w", err)
	}
	return next, nil
}

func (s *Store) Task(id int) (Task, error) {
	row := s.db.QueryRow(`SELECT id, title, contents, date, category FROM tasks WHERE id = ?;`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return Task{}, fmt.Errorf("task %d: %w", id, err)
	}
	return t, nil
}

// write runs fn in a single transaction and, once committed, refreshes
// every open view before returning.
func (s *Store) write(fn func(tx *sql.Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	s.publish()
	return nil
}

func (s *Store) publish() {
	s.viewsMu.Lock()
	views := make([]*Results, 0, len(s.views))
	for r := range s.views {
		views = append(views, r)
	}
	s.viewsMu.Unlock()

	for _, r := range views {
		r.refresh()
	}
}

func (s *Store) register(r *Results) {
	s.viewsMu.Lock()
	s.views[r] = struct{}{}
	s.viewsMu.Unlock()
}

func (s *Store) unregister(r *Results) {
	s.viewsMu.Lock()
	delete(s.views, r)
	s.viewsMu.Unlock()
}

func (s *Store) fetch(q Query) ([]Task, error) {
	stmt, args := q.sql()
	rows, err := s.db.Query(stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (Task, error) {
	var t Task
	var dateStr string
	if err := row.Scan(&t.ID, &t.Title, &t.Contents, &dateStr, &t.Category); err != nil {
		return Task{}, err
	}
	date, err := time.ParseInLocation(DateLayout, dateStr, time.Local)
	if err != nil {
		return Task{}, fmt.Errorf("task %d: bad date %q: %w", t.ID, dateStr, err)
	}
	t.Date = date
	return t, nil
}

// formatDate keeps the wall clock of t as given; no zone conversion.
func formatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
