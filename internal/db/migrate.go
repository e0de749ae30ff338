package db

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/diewo77/sp-admin/internal/config"
	"github.com/diewo77/sp-admin/internal/models"
)

// Migrate runs AutoMigrate for the local tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&models.Admin{})
}

// Seed creates the configured superadmin if it does not exist yet. An
// existing account is left untouched, so a password changed later survives
// restarts.
func Seed(db *gorm.DB, admin config.AdminConfig) error {
	if admin.Username == "" || admin.Password == "" {
		return nil
	}
	var existing models.Admin
	err := db.Where("username = ?", admin.Username).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("db: lookup admin: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("db: hash password: %w", err)
	}
	return db.Create(&models.Admin{
		Username:  admin.Username,
		Name:      admin.Name,
		Password:  string(hash),
		AdminType: models.AdminTypeSuper,
	}).Error
}
