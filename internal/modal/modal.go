// Package modal holds the single active overlay of a list page.
package modal

import (
	"net/url"
	"slices"
	"sync"

	"github.com/diewo77/sp-admin/internal/models"
)

type Kind string

const (
	None          Kind = ""
	Add           Kind = "add"
	Edit          Kind = "edit"
	View          Kind = "view"
	ConfirmDelete Kind = "delete"
)

// Query parameter names.
const (
	ParamModal = "modal"
	ParamID    = "id"
)

// State is the overlay currently shown. ID is empty for None; for Add it
// optionally names the parent record (the provider a workoff is added for).
type State struct {
	Kind Kind
	ID   models.ID
}

func (s State) Open() bool { return s.Kind != None }

// Is reports whether s shows kind for id.
func (s State) Is(kind Kind, id models.ID) bool { return s.Kind == kind && s.ID == id }

func needsID(k Kind) bool { return k == Edit || k == View || k == ConfirmDelete }

// Parse reads the overlay from a query string. Unknown kinds, and id-bound
// kinds without an id, parse as None.
func Parse(q url.Values) State {
	k := Kind(q.Get(ParamModal))
	id := models.ID(q.Get(ParamID))
	switch k {
	case Add:
		return State{Kind: Add, ID: id}
	case Edit, View, ConfirmDelete:
		if id == "" {
			return State{}
		}
		return State{Kind: k, ID: id}
	}
	return State{}
}

// Values encodes s; None encodes to no parameters.
func (s State) Values() url.Values {
	v := url.Values{}
	if s.Kind == None {
		return v
	}
	v.Set(ParamModal, string(s.Kind))
	if s.ID != "" {
		v.Set(ParamID, s.ID.String())
	}
	return v
}

// Href appends the overlay to path.
func (s State) Href(path string) string {
	q := s.Values().Encode()
	if q == "" {
		return path
	}
	return path + "?" + q
}

// Controller owns one overlay slot. Opening replaces whatever is shown.
type Controller struct {
	mu       sync.Mutex
	state    State
	onChange []func(State)
}

// NewController starts at initial. A kind that needs an id but has none
// starts closed.
func NewController(initial State) *Controller {
	if needsID(initial.Kind) && initial.ID == "" {
		initial = State{}
	}
	return &Controller{state: initial}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// OnChange registers fn to run after every transition.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	c.onChange = append(c.onChange, fn)
	c.mu.Unlock()
}

func (c *Controller) set(s State) {
	c.mu.Lock()
	c.state = s
	subs := slices.Clone(c.onChange)
	c.mu.Unlock()
	for _, fn := range subs {
		fn(s)
	}
}

func (c *Controller) OpenAdd(parent models.ID) { c.set(State{Kind: Add, ID: parent}) }

func (c *Controller) OpenEdit(id models.ID) { c.openFor(Edit, id) }

func (c *Controller) OpenView(id models.ID) { c.openFor(View, id) }

func (c *Controller) OpenConfirmDelete(id models.ID) { c.openFor(ConfirmDelete, id) }

func (c *Controller) openFor(k Kind, id models.ID) {
	if id == "" {
		return
	}
	c.set(State{Kind: k, ID: id})
}

// Close resets the slot to None and clears the id.
func (c *Controller) Close() { c.set(State{}) }
