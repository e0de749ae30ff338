package policy

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/diewo77/sp-admin/auth"
	"github.com/diewo77/sp-admin/gate"
	"github.com/diewo77/sp-admin/internal/models"
)

// DBProfileResolver resolves a session to the profile of the admin's
// current type in the database, so a demotion takes effect without
// waiting for the session to expire.
type DBProfileResolver struct {
	DB *gorm.DB
}

func NewDBProfileResolver(db *gorm.DB) *DBProfileResolver {
	return &DBProfileResolver{DB: db}
}

// Resolve returns nil when the admin no longer exists.
func (r *DBProfileResolver) Resolve(ctx context.Context, sess auth.Session) (gate.Profile, error) {
	var admin models.Admin
	err := r.DB.WithContext(ctx).Select("id", "admin_type").First(&admin, sess.AdminID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ProfileFor(admin.AdminType), nil
}

// SessionProfileResolver trusts the admin type signed into the session.
func SessionProfileResolver() gate.ResolverFunc[auth.Session] {
	return func(_ context.Context, sess auth.Session) (gate.Profile, error) {
		return ProfileFor(sess.AdminType), nil
	}
}
