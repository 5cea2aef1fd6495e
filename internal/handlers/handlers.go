package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/AnshRaj112/travel-journal-backend/internal/services"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Auth          *services.AuthService
	Journals      *services.JournalService
	Social        *services.SocialService
	Notifications *services.NotificationService
	Media         *services.MediaIntake
	Health        Pinger
	Log           *zap.Logger
	Production    bool
}

// Handlers holds the HTTP handlers of the API.
type Handlers struct {
	auth          *services.AuthService
	journals      *services.JournalService
	social        *services.SocialService
	notifications *services.NotificationService
	media         *services.MediaIntake
	health        Pinger
	log           *zap.Logger
	production    bool
}

func New(d Deps) *Handlers {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{
		auth:          d.Auth,
		journals:      d.Journals,
		social:        d.Social,
		notifications: d.Notifications,
		media:         d.Media,
		health:        d.Health,
		log:           log,
		production:    d.Production,
	}
}

// HealthCheck answers 200 while the database is reachable.
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.health.Ping(ctx); err != nil {
			h.log.Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
