package handlers

import (
	"github.com/diewo77/sp-admin/internal/modal"
	"github.com/diewo77/sp-admin/internal/models"
	"github.com/diewo77/sp-admin/internal/services"
	"github.com/diewo77/sp-admin/internal/table"
)

// Page paths.
const (
	NotificationsPath = "/notifications"
	WorkoffsPath      = "/workoffs"
)

// WorkSummaryPath is the work summary page of one provider.
func WorkSummaryPath(userID models.ID) string {
	return "/users/" + userID.String() + "/worksummary"
}

// notificationsTable lists notifications in API order unless a column is
// picked. Row links keep the current grid state.
func notificationsTable(q table.Query) table.Table[services.NotificationRow] {
	open := func(kind modal.Kind) func(services.NotificationRow) string {
		return func(r services.NotificationRow) string {
			return overlayHref(NotificationsPath, q, modal.State{Kind: kind, ID: r.ID})
		}
	}
	return table.Table[services.NotificationRow]{
		ID: func(r services.NotificationRow) string { return r.ID.String() },
		Columns: []table.Column[services.NotificationRow]{
			{Key: "title", Title: "col.title", Sortable: true,
				Value: func(r services.NotificationRow) string { return r.Title }},
			{Key: "description", Title: "col.description", Sortable: true, Wide: true,
				Value: func(r services.NotificationRow) string { return r.Description }},
			{Key: "added_on", Title: "col.added_on", Sortable: true,
				Value: func(r services.NotificationRow) string { return r.AddedOn },
				Sort:  func(r services.NotificationRow) table.Key { return table.Num(r.AddedOnMillis) }},
			{Key: "due_date", Title: "col.due_date", Sortable: true,
				Value: func(r services.NotificationRow) string { return r.DueDate },
				Sort:  func(r services.NotificationRow) table.Key { return table.Num(r.DueDateMillis) }},
			{Key: "assigned", Title: "col.assigned",
				Value: services.NotificationRow.AssignedLabels},
		},
		Actions: []table.RowAction[services.NotificationRow]{
			{Name: "view", Label: "action.view", Href: open(modal.View)},
			{Name: "edit", Label: "action.edit", Href: open(modal.Edit)},
			{Name: "delete", Label: "action.delete", Href: open(modal.ConfirmDelete)},
		},
	}
}

// workoffsTable shows the latest workoffs first.
func workoffsTable(q table.Query) table.Table[services.WorkoffRow] {
	return table.Table[services.WorkoffRow]{
		ID:          func(r services.WorkoffRow) string { return r.ID.String() },
		DefaultSort: "added_on",
		DefaultDesc: true,
		Columns: []table.Column[services.WorkoffRow]{
			{Key: "user", Title: "col.user", Sortable: true,
				Value: func(r services.WorkoffRow) string { return r.User }},
			{Key: "start_date", Title: "col.start_date", Sortable: true,
				Value: func(r services.WorkoffRow) string { return r.StartDate },
				Sort:  func(r services.WorkoffRow) table.Key { return table.Num(r.StartMillis) }},
			{Key: "end_date", Title: "col.end_date", Sortable: true,
				Value: func(r services.WorkoffRow) string { return r.EndDate },
				Sort:  func(r services.WorkoffRow) table.Key { return table.Num(r.EndMillis) }},
			{Key: "duration", Title: "col.duration", Sortable: true,
				Value: func(r services.WorkoffRow) string { return r.Duration }},
			{Key: "reason", Title: "col.reason", Wide: true,
				Value: func(r services.WorkoffRow) string { return r.Reason }},
			{Key: "added_on", Title: "col.added_on", Sortable: true,
				Value: func(r services.WorkoffRow) string { return r.AddedOn },
				Sort:  func(r services.WorkoffRow) table.Key { return table.Num(r.AddedOnMillis) }},
		},
		Actions: []table.RowAction[services.WorkoffRow]{
			{Name: "view", Label: "action.view", Href: func(r services.WorkoffRow) string {
				return overlayHref(WorkoffsPath, q, modal.State{Kind: modal.View, ID: r.ID})
			}},
		},
	}
}

// workSummaryTable has no row actions; the page is read-only.
func workSummaryTable() table.Table[services.WorkSummaryRow] {
	return table.Table[services.WorkSummaryRow]{
		ID:          func(r services.WorkSummaryRow) string { return r.ID.String() },
		DefaultSort: "added_on",
		DefaultDesc: true,
		Columns: []table.Column[services.WorkSummaryRow]{
			{Key: "project", Title: "col.project", Sortable: true,
				Value: func(r services.WorkSummaryRow) string { return r.Project }},
			{Key: "description", Title: "col.description", Wide: true,
				Value: func(r services.WorkSummaryRow) string { return r.Description }},
			{Key: "status", Title: "col.status", Sortable: true,
				Value: func(r services.WorkSummaryRow) string { return r.Status }},
			{Key: "added_on", Title: "col.date_added", Sortable: true,
				Value: func(r services.WorkSummaryRow) string { return r.AddedOn },
				Sort:  func(r services.WorkSummaryRow) table.Key { return table.Num(r.AddedOnMillis) }},
		},
	}
}
