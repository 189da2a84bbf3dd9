package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"rosterforge/internal/auth"
	"rosterforge/internal/config"
	"rosterforge/internal/drive"
	"rosterforge/internal/logging"
	"rosterforge/internal/store"
	"rosterforge/internal/task"
)

// GatewayFactory builds a Drive gateway bound to one access token.
type GatewayFactory func(token string) drive.Gateway

// Handler carries the dependencies shared by all HTTP handlers.
type Handler struct {
	Registry *task.Registry
	Store    *store.Store
	Config   *config.Config
	OAuth    *auth.OAuth
	Log      *logging.Logger

	NewGateway GatewayFactory

	upgrader websocket.Upgrader
}

func New(reg *task.Registry, st *store.Store, cfg *config.Config, oa *auth.OAuth, log *logging.Logger, gw GatewayFactory) *Handler {
	return &Handler{
		Registry:   reg,
		Store:      st,
		Config:     cfg,
		OAuth:      oa,
		Log:        log,
		NewGateway: gw,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Healthz reports liveness
// @Summary Health check
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{} "Service is up"
// @Router /healthz [get]
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]interface{}{"ok": true})
}

// gateway resolves the caller's Google access token into a Drive gateway.
// Writes a 401 and returns nil when no token is present.
func (h *Handler) gateway(w http.ResponseWriter, r *http.Request) drive.Gateway {
	tok, err := auth.TokenFromRequest(r)
	if err != nil {
		http.Error(w, "Missing Google access token", http.StatusUnauthorized)
		return nil
	}
	return h.NewGateway(tok)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
