package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/diewo77/sp-admin/internal/config"
)

// Open connects to the admin store. Postgres is retried a few times to let
// the database come up alongside the app.
func Open(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	if log == nil {
		log = zap.NewNop()
	}
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}
	switch cfg.Driver {
	case "sqlite":
		return gorm.Open(sqlite.Open(cfg.Path), gcfg)
	case "postgres":
		dsn := NormalizeDSN(cfg.PostgresDSN())
		var (
			conn *gorm.DB
			err  error
		)
		for i := 0; i < 5; i++ {
			conn, err = gorm.Open(postgres.Open(dsn), gcfg)
			if err == nil {
				return conn, nil
			}
			log.Warn("database connect failed, retrying", zap.Int("attempt", i+1), zap.Error(err))
			time.Sleep(2 * time.Second)
		}
		return nil, fmt.Errorf("db: connect postgres: %w", err)
	}
	return nil, fmt.Errorf("db: unsupported driver %q", cfg.Driver)
}
