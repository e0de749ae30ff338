package models

// Notification is a message addressed to one or more service providers.
// Description holds rich-text HTML produced by the editor and is passed
// through untouched.
type Notification struct {
	ID          ID     `json:"_id,omitempty"`
	Title       string `json:"fld_title"`
	Description string `json:"fld_description"`
	DueDate     string `json:"fld_due_date"`
	AddedOn     string `json:"fld_addedon,omitempty"`
	AssignedIDs []ID   `json:"fld_userid"`
	AdminID     ID     `json:"fld_adminid,omitempty"`
}

// DefaultNotificationAdminID is the admin id stamped on notifications created
// from the dashboard.
const DefaultNotificationAdminID ID = "1"
