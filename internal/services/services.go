// Package services wires one list view-model per dashboard page: which
// remote collections it reads, how they join, and how rows are derived.
package services

import (
	"go.uber.org/zap"

	"github.com/diewo77/sp-admin/internal/format"
	"github.com/diewo77/sp-admin/internal/listview"
	"github.com/diewo77/sp-admin/internal/modal"
	"github.com/diewo77/sp-admin/internal/models"
	"github.com/diewo77/sp-admin/internal/remote"
)

// Env is what a page needs to build its view-model. One Env is built per
// request; nothing in it is shared across page instances except Client.
type Env struct {
	Client              *remote.Client
	Lang                string
	UploadsBaseURL      string
	PlaceholderImageURL string
	Logger              *zap.Logger
	// Modal is the overlay requested by the URL.
	Modal modal.State
}

func (e Env) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

func (e Env) image(file string) string {
	return format.ImageURL(e.UploadsBaseURL, file, e.PlaceholderImageURL)
}

func providerRef(c *remote.Client, ep remote.Endpoint) *listview.Reference[models.ID, models.Provider] {
	return listview.NewReference[models.ID, models.Provider](remote.NewFetcher[models.Provider](c, ep),
		func(p models.Provider) models.ID { return p.ID })
}
