package resumes

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"jdgap-backend/internal/extract"
	"jdgap-backend/internal/sessions"
)

// ErrNoText means the document parsed but yielded no usable text.
var ErrNoText = errors.New("Could not extract text from file. Please try another format.")

// UploadResult summarizes a processed resume upload.
type UploadResult struct {
	SessionID string           `json:"session_id"`
	FileName  string           `json:"file_name"`
	FileType  extract.FileType `json:"file_type"`
	TextChars int              `json:"text_chars"`
}

// Service runs the upload pipeline: persist original bytes, extract text,
// persist text, mark the session.
type Service struct {
	Sessions *sessions.Store
}

// NewService constructs a Service.
func NewService(store *sessions.Store) *Service {
	return &Service{Sessions: store}
}

// Process ingests one uploaded resume for a session. On extraction failure
// the session's has_resume flag is left untouched.
func (s *Service) Process(ctx context.Context, sessionID, fileName string, fileType extract.FileType, content []byte) (UploadResult, error) {
	if err := s.Sessions.SaveOriginalFile(ctx, sessionID, fileName, content); err != nil {
		return UploadResult{}, err
	}

	text, err := extract.Text(content, fileType)
	if err != nil {
		return UploadResult{}, err
	}
	if strings.TrimSpace(text) == "" {
		return UploadResult{}, ErrNoText
	}

	if err := s.Sessions.SaveResumeText(ctx, sessionID, text); err != nil {
		return UploadResult{}, err
	}
	if err := s.Sessions.Update(ctx, sessionID, true, fileName, string(fileType)); err != nil {
		return UploadResult{}, err
	}

	return UploadResult{
		SessionID: sessionID,
		FileName:  fileName,
		FileType:  fileType,
		TextChars: utf8.RuneCountInString(text),
	}, nil
}
