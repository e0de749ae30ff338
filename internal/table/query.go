package table

import (
	"net/url"
	"strconv"
)

// Query parameter names.
const (
	ParamSearch = "q"
	ParamSort   = "sort"
	ParamDir    = "dir"
	ParamPage   = "page"
	ParamSize   = "size"
)

// Query is the grid state carried in the URL.
type Query struct {
	Search string
	Sort   string
	Desc   bool
	Page   int
	Size   int

	explicitSort bool
}

// ParseQuery reads the grid state from a query string.
func ParseQuery(v url.Values) Query {
	q := Query{
		Search: v.Get(ParamSearch),
		Sort:   v.Get(ParamSort),
		Desc:   v.Get(ParamDir) == "desc",
	}
	_, q.explicitSort = v[ParamSort]
	q.Page, _ = strconv.Atoi(v.Get(ParamPage))
	q.Size, _ = strconv.Atoi(v.Get(ParamSize))
	return q.normalize()
}

func (q Query) normalize() Query {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Size < 1 {
		q.Size = DefaultPageSize
	}
	if q.Size > maxPageSize {
		q.Size = maxPageSize
	}
	return q
}

// Values encodes q, omitting defaults.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set(ParamSearch, q.Search)
	}
	if q.Sort != "" {
		v.Set(ParamSort, q.Sort)
		if q.Desc {
			v.Set(ParamDir, "desc")
		} else {
			v.Set(ParamDir, "asc")
		}
	}
	if q.Page > 1 {
		v.Set(ParamPage, strconv.Itoa(q.Page))
	}
	if q.Size != DefaultPageSize && q.Size > 0 {
		v.Set(ParamSize, strconv.Itoa(q.Size))
	}
	return v
}

func href(path string, v url.Values) string {
	if s := v.Encode(); s != "" {
		return path + "?" + s
	}
	return path
}

// SortHref links to the grid ordered by key, flipping direction when key
// is already the active column.
func (p Page) SortHref(path, key string) string {
	q := p.Query
	if q.Sort == key {
		q.Desc = !q.Desc
	} else {
		q.Sort, q.Desc = key, false
	}
	q.Page = 1
	return href(path, q.Values())
}

// PageHref links to page n of the current grid.
func (p Page) PageHref(path string, n int) string {
	q := p.Query
	q.Page = n
	return href(path, q.Values())
}

func (p Page) HasPrev() bool { return p.Query.Page > 1 }
func (p Page) HasNext() bool { return p.Query.Page < p.Pages }
func (p Page) Prev() int { return p.Query.Page - 1 }
func (p Page) Next() int { return p.Query.Page + 1 }

// First is the 1-based index of the first row shown, 0 when empty.
func (p Page) First() int {
	if p.Filtered == 0 {
		return 0
	}
	return (p.Query.Page-1)*p.Query.Size + 1
}

func (p Page) Last() int { return p.First() + len(p.Rows) - min(1, len(p.Rows)) }
