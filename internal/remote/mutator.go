package remote

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/diewo77/sp-admin/internal/logger"
	"github.com/diewo77/sp-admin/internal/metrics"
	"github.com/diewo77/sp-admin/internal/models"
)

// Mutator writes to one remote collection. Errors are returned as is; the
// caller decides how to surface them.
type Mutator[T any] struct {
	client   *Client
	endpoint Endpoint
}

// NewMutator writes to the collection behind ep.
func NewMutator[T any](c *Client, ep Endpoint) *Mutator[T] {
	return &Mutator[T]{client: c, endpoint: ep}
}

// Create POSTs payload to the collection.
func (m *Mutator[T]) Create(ctx context.Context, payload T) error {
	return m.send(ctx, http.MethodPost, m.endpoint.createPath(), payload)
}

// Update PUTs payload to the record id.
func (m *Mutator[T]) Update(ctx context.Context, id models.ID, payload T) error {
	path, err := m.endpoint.itemPath(id)
	if err != nil {
		return err
	}
	return m.send(ctx, http.MethodPut, path, payload)
}

// Delete removes the record id.
func (m *Mutator[T]) Delete(ctx context.Context, id models.ID) error {
	path, err := m.endpoint.itemPath(id)
	if err != nil {
		return err
	}
	return m.send(ctx, http.MethodDelete, path, nil)
}

func (m *Mutator[T]) send(ctx context.Context, method, path string, body any) error {
	err := m.client.Do(ctx, method, m.endpoint.Collection, path, body, nil)
	metrics.RecordRemoteMutation(m.endpoint.Collection, method, err)
	log := logger.FromContext(ctx, m.client.log)
	if err != nil {
		log.Warn("remote mutation failed",
			zap.String("collection", m.endpoint.Collection),
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return err
	}
	log.Info("remote mutation",
		zap.String("collection", m.endpoint.Collection),
		zap.String("method", method),
		zap.String("path", path))
	return nil
}
