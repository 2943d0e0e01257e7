package resumes

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"jdgap-backend/internal/extract"
	"jdgap-backend/internal/sessions"
	"jdgap-backend/internal/shared/server/respond"
	"jdgap-backend/internal/shared/telemetry"
)

const maxUploadSize = 10 << 20 // 10MB

// contentTypes maps declared MIME types to supported file types. Unlisted
// types fall back to the filename extension.
var contentTypes = map[string]extract.FileType{
	"application/pdf": extract.FileTypePDF,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": extract.FileTypeDOCX,
	"text/plain": extract.FileTypeTXT,
}

// Handler wires the resume upload endpoint to the service.
type Handler struct {
	Svc      *Service
	Sessions *sessions.Store
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service, store *sessions.Store) *Handler {
	return &Handler{Svc: svc, Sessions: store}
}

// RegisterRoutes attaches upload routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/sessions/:id/resume", h.upload)
}

func (h *Handler) upload(c *gin.Context) {
	sessionID := c.Param("id")

	if _, err := h.Sessions.Get(c.Request.Context(), sessionID); err != nil {
		if errors.Is(err, sessions.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "Session not found or expired", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load session", nil)
		return
	}

	// Slack above the limit so the explicit size check below can answer 413
	// instead of a generic read failure.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize+1<<20)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	fileName := fileHeader.Filename
	if fileName == "" {
		fileName = "resume"
	}

	fileType, ok := resolveFileType(fileHeader.Header.Get("Content-Type"), fileName)
	if !ok {
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_type", "Unsupported file type. Allowed: PDF, DOCX, TXT", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	if len(content) > maxUploadSize {
		respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "File too large. Max 10MB.", nil)
		return
	}

	result, err := h.Svc.Process(c.Request.Context(), sessionID, fileName, fileType, content)
	if err != nil {
		var extractErr *extract.Error
		switch {
		case errors.As(err, &extractErr), errors.Is(err, ErrNoText):
			respond.Error(c, http.StatusBadRequest, "extraction_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process resume", nil)
		}
		return
	}

	telemetry.Info("resumes.processed", map[string]any{
		"session_id": result.SessionID,
		"file_name":  result.FileName,
		"file_type":  result.FileType,
		"text_chars": result.TextChars,
		"request_id": c.GetString("requestId"),
	})
	respond.OK(c, result)
}

// resolveFileType maps the declared content type, falling back to the
// filename extension when the type is unrecognized.
func resolveFileType(contentType, fileName string) (extract.FileType, bool) {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if fileType, ok := contentTypes[clean]; ok {
		return fileType, true
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return extract.FileTypePDF, true
	case ".docx":
		return extract.FileTypeDOCX, true
	case ".txt":
		return extract.FileTypeTXT, true
	default:
		return "", false
	}
}
