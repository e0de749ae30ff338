package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/diewo77/sp-admin/internal/correlate"
	"github.com/diewo77/sp-admin/internal/format"
	"github.com/diewo77/sp-admin/internal/listview"
	"github.com/diewo77/sp-admin/internal/modal"
	"github.com/diewo77/sp-admin/internal/models"
	"github.com/diewo77/sp-admin/internal/remote"
)

// MissingProvider is the label of an assigned id no provider matches.
func MissingProvider(id models.ID) string {
	return fmt.Sprintf("Provider with ID %s not found.", id)
}

// Assignee is one assigned provider as shown in rows and selection chips.
type Assignee struct {
	ID    models.ID `json:"id"`
	Label string    `json:"label"`
	Image string    `json:"image,omitempty"`
	Found bool      `json:"found"`
}

type NotificationRow struct {
	ID            models.ID  `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	AddedOn       string     `json:"added_on"`
	DueDate       string     `json:"due_date"`
	AddedOnMillis int64      `json:"added_on_ms"`
	DueDateMillis int64      `json:"due_date_ms"`
	Assigned      []Assignee `json:"assigned"`
}

// AssignedLabels joins the assignee labels for a table cell.
func (r NotificationRow) AssignedLabels() string {
	labels := make([]string, len(r.Assigned))
	for i, a := range r.Assigned {
		labels[i] = a.Label
	}
	return strings.Join(labels, ", ")
}

// Notifications is the Manage Notifications page. Rows join against every
// provider; the assignment picker offers only active ones.
type Notifications struct {
	*listview.ViewModel[models.Notification, NotificationRow, models.Notification]
	Providers *listview.Reference[models.ID, models.Provider]
	Active    *listview.Reference[models.ID, models.Provider]

	fetcher *remote.Fetcher[models.Notification]
	env     Env
}

// NewNotifications joins notifications with the provider roster.
func NewNotifications(env Env) *Notifications {
	n := &Notifications{
		Providers: providerRef(env.Client, remote.Providers),
		Active:    providerRef(env.Client, remote.ActiveProviders),
		fetcher:   remote.NewFetcher[models.Notification](env.Client, remote.Notifications),
		env:       env,
	}
	n.ViewModel = listview.New(listview.Config[models.Notification, NotificationRow, models.Notification]{
		Name:        "notifications",
		Primary:     n.fetcher,
		Auxiliaries: []listview.Auxiliary{n.Providers, n.Active},
		ID:          func(x models.Notification) models.ID { return x.ID },
		Derive: func(items []models.Notification) []NotificationRow {
			return DeriveNotificationRows(items, n.Providers.Index(), env)
		},
		Mutations: remote.NewMutator[models.Notification](env.Client, remote.Notifications),
		Modal:     modal.NewController(env.Modal),
		Notices: listview.Notices{
			CreateOK: "notifications.create_ok", CreateFailed: "notifications.create_failed",
			UpdateOK: "notifications.update_ok", UpdateFailed: "notifications.update_failed",
			DeleteOK: "notifications.delete_ok", DeleteFailed: "notifications.delete_failed",
		},
		Logger: env.logger(),
	})
	return n
}

// Get reads one notification for the view and edit overlays.
func (n *Notifications) Get(ctx context.Context, id models.ID) (models.Notification, error) {
	return n.fetcher.Get(ctx, id)
}

// ActiveIDs is the full id set offered by the picker, in API order.
func (n *Notifications) ActiveIDs() []models.ID { return n.Active.Keys() }

// Chips resolves the selected ids against the active providers.
func (n *Notifications) Chips(ids []models.ID) []Assignee {
	return resolveAssignees(n.Active.Index(), ids, n.env, models.Provider.Handle)
}

// DeriveNotificationRows joins notifications with providers, keeping the
// API order.
func DeriveNotificationRows(items []models.Notification, providers correlate.Index[models.ID, models.Provider], env Env) []NotificationRow {
	return correlate.Join(items, func(x models.Notification) NotificationRow {
		return NotificationRow{
			ID:            x.ID,
			Title:         format.Text(x.Title, format.NoTitle),
			Description:   format.Truncate(format.PlainText(x.Description), format.TrimLength),
			AddedOn:       format.DateOr(x.AddedOn, env.Lang, format.NoDate),
			DueDate:       format.DateOr(x.DueDate, env.Lang, format.NoDate),
			AddedOnMillis: format.EpochMillis(x.AddedOn),
			DueDateMillis: format.EpochMillis(x.DueDate),
			Assigned:      resolveAssignees(providers, x.AssignedIDs, env, models.Provider.DisplayName),
		}
	})
}

func resolveAssignees(ix correlate.Index[models.ID, models.Provider], ids []models.ID, env Env, label func(models.Provider) string) []Assignee {
	return correlate.Join(ids, func(id models.ID) Assignee {
		return correlate.Project(ix, id,
			func(p models.Provider) Assignee {
				return Assignee{ID: id, Label: label(p), Image: env.image(p.ProfileImage), Found: true}
			},
			func(id models.ID) Assignee {
				return Assignee{ID: id, Label: MissingProvider(id), Image: env.PlaceholderImageURL}
			})
	})
}
