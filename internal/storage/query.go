package storage

import "fmt"

// Field names a sortable and filterable Task column.
type Field string

const (
	FieldID       Field = "id"
	FieldTitle    Field = "title"
	FieldContents Field = "contents"
	FieldDate     Field = "date"
	FieldCategory Field = "category"
)

func (f Field) valid() bool {
	switch f {
	case FieldID, FieldTitle, FieldContents, FieldDate, FieldCategory:
		return true
	}
	return false
}

// Query describes a view. A zero FilterField or empty FilterValue means
// every task is included.
type Query struct {
	SortBy      Field
	Ascending   bool
	FilterField Field
	FilterValue string
}

func (q Query) Filtered() bool {
	return q.FilterField != "" && q.FilterValue != ""
}

func (q Query) validate() error {
	if !q.SortBy.valid() {
		return fmt.Errorf("sort by %q: %w", q.SortBy, ErrUnknownField)
	}
	if q.Filtered() && !q.FilterField.valid() {
		return fmt.Errorf("filter on %q: %w", q.FilterField, ErrUnknownField)
	}
	return nil
}

// sql builds the statement for a validated query. Column names come from
// the Field whitelist only.
func (q Query) sql() (string, []any) {
	stmt := `SELECT id, title, contents, date, category FROM tasks`
	var args []any
	if q.Filtered() {
		stmt += fmt.Sprintf(` WHERE %s = ?`, q.FilterField)
		args = append(args, q.FilterValue)
	}
	dir := "ASC"
	if !q.Ascending {
		dir = "DESC"
	}
	stmt += fmt.Sprintf(` ORDER BY %s %s, seq ASC;`, q.SortBy, dir)
	return stmt, args
}

// Query opens a live view for q.
func (s *Store) Query(q Query) (*Results, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	r := &Results{store: s, query: q, listeners: map[int]func(){}}

	// Holding the writer lock keeps a commit from landing between the
	// initial fetch and registration.
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	tasks, err := s.fetch(q)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	r.tasks = tasks
	s.register(r)
	return r, nil
}

// Sorted is a live view of all tasks ordered by field.
func (s *Store) Sorted(field Field, ascending bool) (*Results, error) {
	return s.Query(Query{SortBy: field, Ascending: ascending})
}

// Filtered is a live view of tasks whose field equals value exactly,
// ordered by date. An empty value falls back to the full date-sorted view.
func (s *Store) Filtered(field Field, value string) (*Results, error) {
	q := Query{SortBy: FieldDate, Ascending: true}
	if value != "" {
		q.FilterField = field
		q.FilterValue = value
	}
	return s.Query(q)
}
