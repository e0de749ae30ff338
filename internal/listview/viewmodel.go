// Package listview implements the remote collection view-model behind every
// list page: fetch a primary collection and its auxiliaries concurrently,
// join them into display rows, and keep the selected record and overlay in
// step with refreshes and mutations.
package listview

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/diewo77/sp-admin/internal/logger"
	"github.com/diewo77/sp-admin/internal/modal"
	"github.com/diewo77/sp-admin/internal/models"
)

type State int

const (
	Idle State = iota
	Loading
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

var (
	ErrClosed   = errors.New("listview: view-model closed")
	ErrReadOnly = errors.New("listview: collection is read-only")
)

// Config wires a view-model. Primary, Derive and ID are required.
type Config[P, R, W any] struct {
	Name        string
	Primary     Source[P]
	Auxiliaries []Auxiliary
	// Derive turns the primary collection into rows. It runs after the
	// auxiliaries of the same refresh are committed.
	Derive    func(items []P) []R
	ID        func(P) models.ID
	Mutations Mutations[W]
	Modal     *modal.Controller
	Notices   Notices
	Logger    *zap.Logger
}

// ViewModel is safe for concurrent use.
type ViewModel[P, R, W any] struct {
	name      string
	primary   Source[P]
	aux       []Auxiliary
	derive    func([]P) []R
	id        func(P) models.ID
	mutations Mutations[W]
	modal     *modal.Controller
	notices   Notices
	log       *zap.Logger

	mu         sync.Mutex
	state      State
	inflight   int
	closed     bool
	items      []P
	rows       []R
	err        error
	selectedID models.ID
	selected   *P
	notice     *Notice
}

// New builds an Idle view-model. A nil Modal gets a fresh controller.
// Closing the modal clears the selection.
func New[P, R, W any](cfg Config[P, R, W]) *ViewModel[P, R, W] {
	if cfg.Modal == nil {
		cfg.Modal = modal.NewController(modal.State{})
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	vm := &ViewModel[P, R, W]{
		name:      cfg.Name,
		primary:   cfg.Primary,
		aux:       cfg.Auxiliaries,
		derive:    cfg.Derive,
		id:        cfg.ID,
		mutations: cfg.Mutations,
		modal:     cfg.Modal,
		notices:   cfg.Notices.withDefaults(),
		log:       cfg.Logger,
		items:     []P{},
		rows:      []R{},
	}
	cfg.Modal.OnChange(func(s modal.State) {
		if !s.Open() {
			vm.ClearSelection()
		}
	})
	return vm
}

func (vm *ViewModel[P, R, W]) Modal() *modal.Controller { return vm.modal }

// State reports Loading while any refresh is in flight, otherwise the
// outcome of the last one to resolve.
func (vm *ViewModel[P, R, W]) State() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.inflight > 0 {
		return Loading
	}
	return vm.state
}

func (vm *ViewModel[P, R, W]) Loading() bool { return vm.State() == Loading }

// Rows are the derived rows of the last settled refresh, never nil.
func (vm *ViewModel[P, R, W]) Rows() []R {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.rows
}

// Items is the primary collection of the last settled refresh, never nil.
func (vm *ViewModel[P, R, W]) Items() []P {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.items
}

// Err is the primary fetch error of the last settled refresh.
func (vm *ViewModel[P, R, W]) Err() error {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.err
}

// Refresh re-fetches the primary collection and every auxiliary in
// parallel and rebuilds the rows once all of them settle. Overlapping
// refreshes are allowed; whichever resolves last wins. A failed primary
// fetch leaves the view Failed with no rows, a failed auxiliary only
// degrades the join to placeholders. The returned error is the primary
// one.
func (vm *ViewModel[P, R, W]) Refresh(ctx context.Context) error {
	vm.mu.Lock()
	if vm.closed {
		vm.mu.Unlock()
		return ErrClosed
	}
	vm.inflight++
	vm.mu.Unlock()

	var (
		items      []P
		primaryErr error
		commits    = make([]func(), len(vm.aux))
	)
	var g errgroup.Group
	g.Go(func() error {
		items, primaryErr = vm.primary.Fetch(ctx)
		return nil
	})
	for i, a := range vm.aux {
		g.Go(func() error {
			commit, err := a.Load(ctx)
			if err != nil {
				logger.FromContext(ctx, vm.log).Debug("auxiliary load failed",
					zap.String("view", vm.name), zap.Error(err))
			}
			commits[i] = commit
			return nil
		})
	}
	_ = g.Wait()

	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.inflight--
	if vm.closed {
		return nil
	}
	for _, commit := range commits {
		if commit != nil {
			commit()
		}
	}
	if primaryErr != nil || items == nil {
		items = []P{}
	}
	vm.items = items
	vm.err = primaryErr
	if primaryErr != nil {
		vm.state = Failed
		vm.rows = []R{}
	} else {
		vm.state = Ready
		vm.rows = vm.derive(items)
		if vm.rows == nil {
			vm.rows = []R{}
		}
	}
	vm.reselect()
	return primaryErr
}

// Close tears the view-model down. Refreshes still in flight finish but
// their results are dropped.
func (vm *ViewModel[P, R, W]) Close() {
	vm.mu.Lock()
	vm.closed = true
	vm.mu.Unlock()
}

// Select marks the record with id in the current primary collection.
func (vm *ViewModel[P, R, W]) Select(id models.ID) bool {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.selectedID = id
	vm.reselect()
	return vm.selected != nil
}

// Selected returns the record picked by Select, if it is still listed.
func (vm *ViewModel[P, R, W]) Selected() (P, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.selected == nil {
		var zero P
		return zero, false
	}
	return *vm.selected, true
}

// ClearSelection forgets the selected record. Closing the overlay calls it.
func (vm *ViewModel[P, R, W]) ClearSelection() {
	vm.mu.Lock()
	vm.selectedID, vm.selected = "", nil
	vm.mu.Unlock()
}

// reselect resolves selectedID against items. Caller holds mu.
func (vm *ViewModel[P, R, W]) reselect() {
	vm.selected = nil
	if vm.selectedID == "" {
		return
	}
	for i := range vm.items {
		if vm.id(vm.items[i]) == vm.selectedID {
			p := vm.items[i]
			vm.selected = &p
			return
		}
	}
}

// Create posts payload through the configured mutations.
func (vm *ViewModel[P, R, W]) Create(ctx context.Context, payload W) error {
	return vm.mutate(ctx, VerbCreate, func(ctx context.Context) error {
		return vm.mutations.Create(ctx, payload)
	})
}

// Update replaces the record id with payload.
func (vm *ViewModel[P, R, W]) Update(ctx context.Context, id models.ID, payload W) error {
	return vm.mutate(ctx, VerbUpdate, func(ctx context.Context) error {
		return vm.mutations.Update(ctx, id, payload)
	})
}

// Delete removes the record id.
func (vm *ViewModel[P, R, W]) Delete(ctx context.Context, id models.ID) error {
	return vm.mutate(ctx, VerbDelete, func(ctx context.Context) error {
		return vm.mutations.Delete(ctx, id)
	})
}

// mutate runs one write. Success triggers exactly one refresh and closes
// the overlay; failure records a notice and leaves rows, state and overlay
// untouched. Nothing is retried.
func (vm *ViewModel[P, R, W]) mutate(ctx context.Context, verb Verb, fn func(context.Context) error) error {
	if vm.mutations == nil {
		return ErrReadOnly
	}
	vm.mu.Lock()
	closed := vm.closed
	vm.mu.Unlock()
	if closed {
		return ErrClosed
	}

	if err := fn(ctx); err != nil {
		logger.FromContext(ctx, vm.log).Warn("mutation failed",
			zap.String("view", vm.name), zap.String("verb", string(verb)), zap.Error(err))
		vm.setNotice(Notice{Level: NoticeError, Code: vm.notices.failure(verb), Err: err})
		return err
	}

	vm.setNotice(Notice{Level: NoticeSuccess, Code: vm.notices.success(verb)})
	_ = vm.Refresh(ctx)
	vm.modal.Close()
	return nil
}
