// Package selection models the provider multi-select of the notification
// forms.
package selection

import (
	"slices"
	"sync"

	"github.com/diewo77/sp-admin/internal/models"
)

// Toggle is the "select all" checkbox: turning it on selects every id in
// all, turning it off clears the selection.
func Toggle(on bool, all []models.ID) []models.ID {
	if !on {
		return []models.ID{}
	}
	return slices.Clone(all)
}

// MultiSelect is the capability a selection widget exposes.
type MultiSelect interface {
	Selected() []models.ID
	SetSelected(ids []models.ID)
	OnChange(fn func(ids []models.ID))
}

// Set is an in-memory MultiSelect that keeps ids unique and in insertion
// order.
type Set struct {
	mu   sync.Mutex
	ids  []models.ID
	subs []func([]models.ID)
}

// NewSet starts with ids selected, duplicates and blanks dropped.
func NewSet(ids ...models.ID) *Set {
	s := &Set{}
	s.ids = dedupe(ids)
	return s
}

func (s *Set) Selected() []models.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ids)
}

func (s *Set) SetSelected(ids []models.ID) {
	s.mu.Lock()
	s.ids = dedupe(ids)
	snapshot := slices.Clone(s.ids)
	subs := slices.Clone(s.subs)
	s.mu.Unlock()
	for _, fn := range subs {
		fn(snapshot)
	}
}

func (s *Set) OnChange(fn func([]models.ID)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

// Remove drops one id, the chip "x" button.
func (s *Set) Remove(id models.ID) {
	cur := s.Selected()
	s.SetSelected(slices.DeleteFunc(cur, func(x models.ID) bool { return x == id }))
}

// SelectAll applies Toggle to the set.
func SelectAll(ms MultiSelect, on bool, all []models.ID) {
	ms.SetSelected(Toggle(on, all))
}

// AllSelected reports whether every id in all is selected, which is how
// the select-all checkbox renders after a round trip.
func AllSelected(selected, all []models.ID) bool {
	if len(all) == 0 {
		return false
	}
	for _, id := range all {
		if !slices.Contains(selected, id) {
			return false
		}
	}
	return true
}

// Unknown returns the selected ids missing from known, in order.
func Unknown(selected, known []models.ID) []models.ID {
	var out []models.ID
	for _, id := range selected {
		if !slices.Contains(known, id) {
			out = append(out, id)
		}
	}
	return out
}

func dedupe(ids []models.ID) []models.ID {
	out := make([]models.ID, 0, len(ids))
	for _, id := range ids {
		if id == "" || slices.Contains(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
