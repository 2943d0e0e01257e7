package sessions

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"jdgap-backend/internal/shared/server/respond"
	"jdgap-backend/internal/shared/telemetry"
)

// Handler wires session HTTP endpoints to the store.
type Handler struct {
	Store *Store
}

// NewHandler constructs a Handler.
func NewHandler(store *Store) *Handler {
	return &Handler{Store: store}
}

// RegisterRoutes attaches session routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sessions", h.create)
	rg.GET("/sessions/:id", h.get)
}

func (h *Handler) create(c *gin.Context) {
	session, err := h.Store.Create(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create session", nil)
		return
	}

	telemetry.Info("sessions.created", map[string]any{
		"session_id": session.ID,
		"expires_at": session.ExpiresAt,
		"request_id": c.GetString("requestId"),
	})
	respond.OK(c, toResponse(session))
}

func (h *Handler) get(c *gin.Context) {
	session, err := h.Store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Session not found or expired", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load session", nil)
		return
	}

	respond.OK(c, toResponse(session))
}
