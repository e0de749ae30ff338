// Package table turns derived rows into a searchable, sortable, paged grid
// that a single template partial can render.
package table

import (
	"cmp"
	"slices"
	"strings"
)

// DefaultPageSize is used when the query names none.
const DefaultPageSize = 10

const maxPageSize = 100

// Key is a sort key: numeric keys order before string keys and compare by
// value, strings compare case-insensitively.
type Key struct {
	n       int64
	s       string
	numeric bool
}

// Num orders numerically.
func Num(n int64) Key { return Key{n: n, numeric: true} }
// Str orders case-insensitively.
func Str(s string) Key { return Key{s: strings.ToLower(s)} }

func compareKeys(a, b Key) int {
	switch {
	case a.numeric && b.numeric:
		return cmp.Compare(a.n, b.n)
	case a.numeric:
		return -1
	case b.numeric:
		return 1
	}
	return strings.Compare(a.s, b.s)
}

// Column renders one cell per row. Title is a message catalog key.
type Column[R any] struct {
	Key   string
	Title string
	Value func(R) string
	// Sort overrides Value as the ordering key; date columns order by
	// epoch milliseconds.
	Sort     func(R) Key
	Sortable bool
	// Wide marks long free-text columns.
	Wide bool
}

func (c Column[R]) sortKey(r R) Key {
	if c.Sort != nil {
		return c.Sort(r)
	}
	return Str(c.Value(r))
}

// RowAction is an explicit per-row callback rendered as a link. Label is a
// catalog key.
type RowAction[R any] struct {
	Name  string
	Label string
	Href  func(R) string
}

// Table describes a grid over rows of type R.
type Table[R any] struct {
	Columns []Column[R]
	Actions []RowAction[R]
	ID      func(R) string
	// Default ordering when the query names none.
	DefaultSort string
	DefaultDesc bool
}

type Header struct {
	Key      string
	Title    string
	Sortable bool
	Active   bool
	Desc     bool
	Wide     bool
}

type Action struct {
	Name  string
	Label string
	Href  string
}

type Row struct {
	ID      string
	Cells   []string
	Actions []Action
}

// Page is one rendered page of a Table.
type Page struct {
	Query    Query
	Headers  []Header
	Rows     []Row
	Total    int
	Filtered int
	Pages    int
	// HasActions is true when the grid carries an actions column.
	HasActions bool
}

func (t Table[R]) column(key string) (Column[R], bool) {
	for _, c := range t.Columns {
		if c.Key == key && c.Sortable {
			return c, true
		}
	}
	return Column[R]{}, false
}

// Apply filters rows by q.Search across every cell, orders them stably by
// the requested column and returns the requested page.
func (t Table[R]) Apply(rows []R, q Query) Page {
	q = q.normalize()
	if q.Sort == "" && !q.explicitSort {
		q.Sort, q.Desc = t.DefaultSort, t.DefaultDesc
	}

	filtered := make([]R, 0, len(rows))
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	for _, r := range rows {
		if needle == "" || t.matches(r, needle) {
			filtered = append(filtered, r)
		}
	}

	if col, ok := t.column(q.Sort); ok {
		slices.SortStableFunc(filtered, func(a, b R) int {
			c := compareKeys(col.sortKey(a), col.sortKey(b))
			if q.Desc {
				return -c
			}
			return c
		})
	} else {
		q.Sort, q.Desc = "", false
	}

	pages := max(1, (len(filtered)+q.Size-1)/q.Size)
	q.Page = min(max(q.Page, 1), pages)
	lo := min((q.Page-1)*q.Size, len(filtered))
	hi := min(lo+q.Size, len(filtered))

	p := Page{
		Query:      q,
		Total:      len(rows),
		Filtered:   len(filtered),
		Pages:      pages,
		HasActions: len(t.Actions) > 0,
		Rows:       make([]Row, 0, hi-lo),
	}
	for _, c := range t.Columns {
		p.Headers = append(p.Headers, Header{
			Key:      c.Key,
			Title:    c.Title,
			Sortable: c.Sortable,
			Active:   c.Key == q.Sort,
			Desc:     c.Key == q.Sort && q.Desc,
			Wide:     c.Wide,
		})
	}
	for _, r := range filtered[lo:hi] {
		p.Rows = append(p.Rows, t.render(r))
	}
	return p
}

func (t Table[R]) matches(r R, needle string) bool {
	for _, c := range t.Columns {
		if strings.Contains(strings.ToLower(c.Value(r)), needle) {
			return true
		}
	}
	return false
}

func (t Table[R]) render(r R) Row {
	row := Row{Cells: make([]string, len(t.Columns))}
	if t.ID != nil {
		row.ID = t.ID(r)
	}
	for i, c := range t.Columns {
		row.Cells[i] = c.Value(r)
	}
	for _, a := range t.Actions {
		row.Actions = append(row.Actions, Action{Name: a.Name, Label: a.Label, Href: a.Href(r)})
	}
	return row
}
