package models

import "github.com/diewo77/sp-admin/internal/format"

// Provider is a service provider (a remote user account).
type Provider struct {
	ID           ID     `json:"_id"`
	Username     string `json:"fld_username,omitempty"`
	Name         string `json:"fld_name,omitempty"`
	ProfileImage string `json:"fld_profile_image,omitempty"`
}

// DisplayName prefers the full name, then the username.
func (p Provider) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.Username != "" {
		return p.Username
	}
	return format.NoName
}

// Handle prefers the username, the label used in the assignment picker.
func (p Provider) Handle() string {
	if p.Username != "" {
		return p.Username
	}
	return p.DisplayName()
}
