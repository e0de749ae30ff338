package services

import (
	"context"

	"github.com/diewo77/sp-admin/internal/correlate"
	"github.com/diewo77/sp-admin/internal/format"
	"github.com/diewo77/sp-admin/internal/listview"
	"github.com/diewo77/sp-admin/internal/models"
	"github.com/diewo77/sp-admin/internal/remote"
)

const (
	UnknownProject = "Unknown Project"
	UnknownUser    = "Unknown"
	LoadingUser    = "Loading..."
)

type WorkSummaryRow struct {
	ID            models.ID `json:"id"`
	Project       string    `json:"project"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	AddedOn       string    `json:"added_on"`
	AddedOnMillis int64     `json:"added_on_ms"`
}

// UserHeader heads the work summary page.
type UserHeader struct {
	ID    models.ID `json:"id"`
	Name  string    `json:"name"`
	Image string    `json:"image"`
	Found bool      `json:"found"`
}

// WorkSummaries is the read-only work summary page of one provider.
type WorkSummaries struct {
	*listview.ViewModel[models.WorkSummary, WorkSummaryRow, models.WorkSummary]
	Projects *listview.Reference[models.ID, models.Project]
	User     *listview.Record[models.Provider]

	userID models.ID
	env    Env
}

// NewWorkSummaries lists the work summaries of userID.
func NewWorkSummaries(env Env, userID models.ID) *WorkSummaries {
	users := remote.NewFetcher[models.Provider](env.Client, remote.Providers)
	s := &WorkSummaries{
		Projects: listview.NewReference[models.ID, models.Project](
			remote.NewFetcher[models.Project](env.Client, remote.Projects),
			func(p models.Project) models.ID { return p.ID }),
		User: listview.NewRecord(func(ctx context.Context) (models.Provider, error) {
			return users.Get(ctx, userID)
		}),
		userID: userID,
		env:    env,
	}
	s.ViewModel = listview.New(listview.Config[models.WorkSummary, WorkSummaryRow, models.WorkSummary]{
		Name:        "worksummaries",
		Primary:     remote.NewFetcher[models.WorkSummary](env.Client, remote.WorkSummaries.Bind(userID)),
		Auxiliaries: []listview.Auxiliary{s.Projects, s.User},
		ID:          func(x models.WorkSummary) models.ID { return x.ID },
		Derive: func(items []models.WorkSummary) []WorkSummaryRow {
			return DeriveWorkSummaryRows(items, s.Projects.Index(), env.Lang)
		},
		Logger: env.logger(),
	})
	return s
}

// Header reports the user, "Loading..." until the first refresh settles
// and "Unknown" when the user could not be fetched.
func (s *WorkSummaries) Header() UserHeader {
	h := UserHeader{ID: s.userID, Image: s.env.PlaceholderImageURL}
	switch s.State() {
	case listview.Idle, listview.Loading:
		h.Name = LoadingUser
		return h
	}
	u, ok := s.User.Value()
	if !ok {
		h.Name = UnknownUser
		return h
	}
	h.Found = true
	h.Name = format.Text(u.Name, format.Text(u.Username, UnknownUser))
	h.Image = s.env.image(u.ProfileImage)
	return h
}

// ProjectTitle distinguishes a missing project from an untitled one.
func ProjectTitle(ix correlate.Index[models.ID, models.Project], id models.ID) string {
	return correlate.Project(ix, id,
		func(p models.Project) string { return format.Text(p.Title, format.NoTitle) },
		func(models.ID) string { return UnknownProject })
}

func DeriveWorkSummaryRows(items []models.WorkSummary, projects correlate.Index[models.ID, models.Project], lang string) []WorkSummaryRow {
	return correlate.Join(items, func(x models.WorkSummary) WorkSummaryRow {
		return WorkSummaryRow{
			ID:            x.ID,
			Project:       ProjectTitle(projects, x.ProjectID),
			Description:   format.Truncate(format.Text(format.PlainText(x.Description), format.NoDescription), format.TrimLength),
			Status:        format.Text(x.Status, format.NoStatus),
			AddedOn:       format.DateOr(x.AddedOn, lang, format.NoDate),
			AddedOnMillis: format.EpochMillis(x.AddedOn),
		}
	})
}
