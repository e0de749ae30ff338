package services

import (
	"context"

	"github.com/diewo77/sp-admin/internal/correlate"
	"github.com/diewo77/sp-admin/internal/format"
	"github.com/diewo77/sp-admin/internal/listview"
	"github.com/diewo77/sp-admin/internal/modal"
	"github.com/diewo77/sp-admin/internal/models"
	"github.com/diewo77/sp-admin/internal/remote"
)

const UnknownProvider = "Unknown Provider"

type WorkoffRow struct {
	ID            models.ID `json:"id"`
	ProviderID    models.ID `json:"provider_id"`
	User          string    `json:"user"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	Duration      string    `json:"duration"`
	Reason        string    `json:"reason"`
	AddedOn       string    `json:"added_on"`
	StartMillis   int64     `json:"start_ms"`
	EndMillis     int64     `json:"end_ms"`
	AddedOnMillis int64     `json:"added_on_ms"`
}

// Workoffs is the Manage Workoffs page. Allotments are created through the
// same view-model; the list itself is read-only.
type Workoffs struct {
	*listview.ViewModel[models.Workoff, WorkoffRow, models.WorkoffAllotment]
	Providers *listview.Reference[models.ID, models.Provider]

	fetcher *remote.Fetcher[models.Workoff]
}

// NewWorkoffs lists workoff allotments with their provider names.
func NewWorkoffs(env Env) *Workoffs {
	w := &Workoffs{
		Providers: providerRef(env.Client, remote.Providers),
		fetcher:   remote.NewFetcher[models.Workoff](env.Client, remote.Workoffs),
	}
	w.ViewModel = listview.New(listview.Config[models.Workoff, WorkoffRow, models.WorkoffAllotment]{
		Name:        "workoffs",
		Primary:     w.fetcher,
		Auxiliaries: []listview.Auxiliary{w.Providers},
		ID:          func(x models.Workoff) models.ID { return x.ID },
		Derive: func(items []models.Workoff) []WorkoffRow {
			return DeriveWorkoffRows(items, w.Providers.Index(), env.Lang)
		},
		Mutations: remote.NewMutator[models.WorkoffAllotment](env.Client, remote.Workoffs),
		Modal:     modal.NewController(env.Modal),
		Notices:   listview.Notices{CreateOK: "workoffs.add_ok", CreateFailed: "workoffs.add_failed"},
		Logger:    env.logger(),
	})
	return w
}

func (w *Workoffs) Get(ctx context.Context, id models.ID) (models.Workoff, error) {
	return w.fetcher.Get(ctx, id)
}

// Provider looks a provider up in the last loaded roster.
func (w *Workoffs) Provider(id models.ID) (models.Provider, bool) {
	return w.Providers.Index().Lookup(id)
}

// ProviderName is the User cell for id.
func ProviderName(ix correlate.Index[models.ID, models.Provider], id models.ID) string {
	return correlate.Project(ix, id,
		func(p models.Provider) string { return format.Text(p.Name, UnknownProvider) },
		func(models.ID) string { return UnknownProvider })
}

func DeriveWorkoffRows(items []models.Workoff, providers correlate.Index[models.ID, models.Provider], lang string) []WorkoffRow {
	return correlate.Join(items, func(x models.Workoff) WorkoffRow {
		return WorkoffRow{
			ID:            x.ID,
			ProviderID:    x.ProviderID,
			User:          ProviderName(providers, x.ProviderID),
			StartDate:     format.DateOr(x.StartDate, lang, format.NoDate),
			EndDate:       format.DateOr(x.EndDate, lang, format.NoDate),
			Duration:      x.Duration.String(),
			Reason:        format.Truncate(x.Reason, format.TrimLength),
			AddedOn:       format.DateOr(x.AddedOn, lang, format.NoDate),
			StartMillis:   format.EpochMillis(x.StartDate),
			EndMillis:     format.EpochMillis(x.EndDate),
			AddedOnMillis: format.EpochMillis(x.AddedOn),
		}
	})
}
