package remote

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/diewo77/sp-admin/internal/logger"
	"github.com/diewo77/sp-admin/internal/metrics"
	"github.com/diewo77/sp-admin/internal/models"
)

// Fetcher reads one remote collection.
//
// Fetch never fails hard: on any error the collection is empty (not nil)
// and the error is logged and returned for callers that care.
type Fetcher[T any] struct {
	client   *Client
	endpoint Endpoint
	inflight atomic.Int32
}

// NewFetcher reads the collection behind ep.
func NewFetcher[T any](c *Client, ep Endpoint) *Fetcher[T] {
	return &Fetcher[T]{client: c, endpoint: ep}
}

func (f *Fetcher[T]) Endpoint() Endpoint { return f.endpoint }

// Loading reports whether a Fetch or Get is in flight.
func (f *Fetcher[T]) Loading() bool { return f.inflight.Load() > 0 }

// Fetch lists the whole collection. The result is never nil, even on error.
func (f *Fetcher[T]) Fetch(ctx context.Context) ([]T, error) {
	f.inflight.Add(1)
	defer f.inflight.Add(-1)

	start := time.Now()
	var items []T
	err := f.client.Do(ctx, http.MethodGet, f.endpoint.Collection, f.endpoint.List, nil, &items)
	metrics.RecordRemoteFetch(f.endpoint.Collection, err, time.Since(start))
	if err != nil {
		logger.FromContext(ctx, f.client.log).Warn("remote fetch failed",
			zap.String("collection", f.endpoint.Collection),
			zap.String("path", f.endpoint.List),
			zap.Error(err))
		return []T{}, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Get reads a single record by id.
func (f *Fetcher[T]) Get(ctx context.Context, id models.ID) (T, error) {
	f.inflight.Add(1)
	defer f.inflight.Add(-1)

	var item T
	path, err := f.endpoint.itemPath(id)
	if err != nil {
		return item, err
	}
	start := time.Now()
	err = f.client.Do(ctx, http.MethodGet, f.endpoint.Collection, path, nil, &item)
	metrics.RecordRemoteFetch(f.endpoint.Collection, err, time.Since(start))
	if err != nil {
		logger.FromContext(ctx, f.client.log).Warn("remote get failed",
			zap.String("collection", f.endpoint.Collection),
			zap.String("id", id.String()),
			zap.Error(err))
		var zero T
		return zero, err
	}
	return item, nil
}
