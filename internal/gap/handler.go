package gap

import (
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"jdgap-backend/internal/llm"
	"jdgap-backend/internal/sessions"
	"jdgap-backend/internal/shared/server/respond"
	"jdgap-backend/internal/shared/telemetry"
)

const (
	jdTextMinChars = 50
	jdTextMaxChars = 50000

	apiKeyHeader = "X-OpenAI-Key"
)

// Handler wires the analysis endpoint to the engine and session store.
type Handler struct {
	Sessions *sessions.Store
	Engine   *Engine
}

// NewHandler constructs a Handler.
func NewHandler(store *sessions.Store, engine *Engine) *Handler {
	return &Handler{Sessions: store, Engine: engine}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze/jd-gap", h.analyze)
}

type analyzeRequest struct {
	SessionID  string `json:"session_id"`
	JDText     string `json:"jd_text"`
	TargetRole string `json:"target_role"`
}

func (h *Handler) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	req.SessionID = strings.TrimSpace(req.SessionID)
	if req.SessionID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "session_id is required", nil)
		return
	}
	if n := utf8.RuneCountInString(req.JDText); n < jdTextMinChars || n > jdTextMaxChars {
		respond.Error(c, http.StatusBadRequest, "validation_error", "jd_text must be between 50 and 50000 characters", nil)
		return
	}

	ctx := c.Request.Context()
	session, err := h.Sessions.Get(ctx, req.SessionID)
	if err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Session not found or expired", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load session", nil)
		return
	}
	if !session.HasResume {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Please upload a resume first", nil)
		return
	}

	resumeText, err := h.Sessions.LoadResumeText(ctx, req.SessionID)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Resume text not found", nil)
		return
	}

	result, err := h.Engine.Analyze(ctx, Input{
		ResumeText: resumeText,
		JDText:     req.JDText,
		TargetRole: strings.TrimSpace(req.TargetRole),
		APIKey:     strings.TrimSpace(c.GetHeader(apiKeyHeader)),
	})
	if err != nil {
		h.respondAnalyzeError(c, req.SessionID, err)
		return
	}

	respond.OK(c, result)
}

func (h *Handler) respondAnalyzeError(c *gin.Context, sessionID string, err error) {
	if errors.Is(err, llm.ErrMissingCredential) {
		respond.Error(c, http.StatusBadRequest, "missing_credential", err.Error(), nil)
		return
	}

	fields := map[string]any{
		"session_id": sessionID,
		"err":        err.Error(),
		"request_id": c.GetString("requestId"),
	}
	var invalidOutput *llm.InvalidOutputError
	if errors.As(err, &invalidOutput) {
		fields["raw_output"] = invalidOutput.Raw
	}
	telemetry.Error("gap.analyze.failed", fields)
	respond.Error(c, http.StatusInternalServerError, "internal_error", "Analysis failed", nil)
}
