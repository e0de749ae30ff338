package handlers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/diewo77/sp-admin/httpx"
	"github.com/diewo77/sp-admin/internal/remote"
)

// Collections whose breaker state /healthz reports.
var healthCollections = []remote.Endpoint{
	remote.Notifications, remote.Workoffs, remote.Providers,
	remote.ActiveProviders, remote.WorkSummaries, remote.Projects,
}

type healthPayload struct {
	Status   string            `json:"status"`
	Database string            `json:"database"`
	Breakers map[string]string `json:"breakers"`
}

// Health reports the admin store and the remote breakers. An open breaker
// degrades the status but still answers 200; only the database fails it.
func Health(db *gorm.DB, client *remote.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := healthPayload{Status: "ok", Database: "ok", Breakers: map[string]string{}}
		status := http.StatusOK
		if err := ping(db); err != nil {
			p.Status, p.Database = "unavailable", err.Error()
			status = http.StatusServiceUnavailable
		}
		if client != nil {
			for _, ep := range healthCollections {
				state := client.Breaker(ep.Collection).State()
				p.Breakers[ep.Collection] = state.String()
				if state != remote.BreakerClosed && p.Status == "ok" {
					p.Status = "degraded"
				}
			}
		}
		httpx.JSON(w, status, p)
	}
}

func ping(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
