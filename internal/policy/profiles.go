package policy

import (
	"github.com/diewo77/sp-admin/gate"
	"github.com/diewo77/sp-admin/internal/models"
)

// Resource types guarded by the dashboard.
const (
	ResourceDashboard    = "dashboard"
	ResourceNotification = "notification"
	ResourceWorkoff      = "workoff"
	ResourceWorkSummary  = "worksummary"
)

var (
	superProfile = gate.NewStaticProfile(models.AdminTypeSuper, gate.PermissionSuperAdmin)
	staffProfile = gate.NewStaticProfile(models.AdminTypeStaff,
		gate.NewPermission(ResourceDashboard, gate.ActionView))
)

// ProfileFor maps an admin type to its permissions. Unknown types get none.
func ProfileFor(adminType string) gate.Profile {
	switch adminType {
	case models.AdminTypeSuper:
		return superProfile
	case models.AdminTypeStaff:
		return staffProfile
	}
	return nil
}
