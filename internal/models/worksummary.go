package models

// WorkSummary is a status update a provider filed against a project.
type WorkSummary struct {
	ID          ID     `json:"_id,omitempty"`
	ProjectID   ID     `json:"fld_projectid"`
	Description string `json:"fld_description,omitempty"`
	Status      string `json:"status,omitempty"`
	AddedOn     string `json:"fld_addedon,omitempty"`
}

// Project is referenced by work summaries.
type Project struct {
	ID    ID     `json:"_id"`
	Title string `json:"fld_title"`
}
