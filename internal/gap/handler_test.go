package gap_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"jdgap-backend/internal/bootstrap"
	"jdgap-backend/internal/llm"
	"jdgap-backend/internal/shared/config"
)

// stubLLM records the last request and returns a canned analysis payload.
type stubLLM struct {
	lastReq llm.ChatRequest
	payload map[string]any
	err     error
}

func (s *stubLLM) ChatJSON(_ context.Context, req llm.ChatRequest) (map[string]any, error) {
	s.lastReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.payload, nil
}

func newTestRouter(t *testing.T, opts ...bootstrap.Option) *gin.Engine {
	t.Helper()
	cfg := config.Config{
		DataDir:         t.TempDir(),
		OpenAIModel:     "gpt-4o-mini",
		SessionTTLHours: 24,
	}
	app, err := bootstrap.Build(cfg, opts...)
	if err != nil {
		t.Fatalf("build app: %v", err)
	}
	return app.Router
}

func createSession(t *testing.T, router *gin.Engine) string {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("create session: status %d body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode session response: %v", err)
	}
	return body.SessionID
}

func uploadResume(t *testing.T, router *gin.Engine, sessionID, fileName, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/sessions/"+sessionID+"/resume", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func analyzeJDGap(router *gin.Engine, sessionID, jdText, apiKey string) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(map[string]string{
		"session_id": sessionID,
		"jd_text":    jdText,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/jd-gap", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if apiKey != "" {
		req.Header.Set("X-OpenAI-Key", apiKey)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

var testJDText = strings.Repeat("We are hiring a senior Go backend engineer. ", 3)

func TestAnalyzeEndToEnd(t *testing.T) {
	stub := &stubLLM{payload: map[string]any{
		"match_score": float64(78),
		"summary":     "Strong backend fit with a Kubernetes gap",
		"strengths": []any{
			map[string]any{"point": "Go experience", "evidence": "5 years of Go services"},
		},
		"gaps": []any{
			map[string]any{"point": "no CI ownership", "priority": "low", "suggestion": "mention pipeline work"},
			map[string]any{"point": "no Kubernetes", "priority": "high", "suggestion": "add container experience"},
		},
		"keywords": []any{
			map[string]any{"jd_keyword": "Python", "evidence": "Python scripting for tooling", "recommended_phrase": "Python automation"},
			map[string]any{"jd_keyword": "Kubernetes"},
		},
		"craft_questions": []any{"Have you operated containerized workloads?"},
	}}
	router := newTestRouter(t, bootstrap.WithLLMClient(stub))

	sessionID := createSession(t, router)
	if rec := uploadResume(t, router, sessionID, "resume.txt", "5 years of Go services and Python scripting for tooling"); rec.Code != http.StatusOK {
		t.Fatalf("upload: status %d body %s", rec.Code, rec.Body.String())
	}

	rec := analyzeJDGap(router, sessionID, testJDText, "sk-test")
	if rec.Code != http.StatusOK {
		t.Fatalf("analyze: status %d body %s", rec.Code, rec.Body.String())
	}

	var result struct {
		MatchScore int    `json:"match_score"`
		Summary    string `json:"summary"`
		Gaps       []struct {
			Point    string `json:"point"`
			Priority string `json:"priority"`
		} `json:"gaps"`
		Keywords []struct {
			JDKeyword string  `json:"jd_keyword"`
			Evidence  *string `json:"evidence"`
		} `json:"keywords"`
		CraftQuestions []string `json:"craft_questions"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode analysis: %v", err)
	}

	if result.MatchScore != 78 {
		t.Fatalf("unexpected score: %d", result.MatchScore)
	}
	if len(result.Gaps) != 2 || result.Gaps[0].Priority != "high" {
		t.Fatalf("expected gaps sorted high first, got %+v", result.Gaps)
	}
	if result.Keywords[0].Evidence == nil || *result.Keywords[0].Evidence != "Python scripting for tooling" {
		t.Fatalf("expected keyword evidence preserved, got %+v", result.Keywords[0])
	}
	if result.Keywords[1].Evidence != nil {
		t.Fatalf("expected null evidence for unmatched keyword, got %+v", result.Keywords[1])
	}

	// The model call carries the stored resume text and the per-request key.
	if stub.lastReq.APIKey != "sk-test" {
		t.Fatalf("expected header key forwarded, got %q", stub.lastReq.APIKey)
	}
	if !strings.Contains(stub.lastReq.Messages[1].Content, "5 years of Go services") {
		t.Fatal("expected stored resume text in prompt")
	}
}

func TestAnalyzeWithoutResume(t *testing.T) {
	router := newTestRouter(t, bootstrap.WithLLMClient(&stubLLM{payload: map[string]any{}}))
	sessionID := createSession(t, router)

	rec := analyzeJDGap(router, sessionID, testJDText, "sk-test")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Please upload a resume first") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAnalyzeMissingCredential(t *testing.T) {
	// No stub: the real client is wired with an empty server key, so the
	// request fails before any network call.
	router := newTestRouter(t)
	sessionID := createSession(t, router)
	if rec := uploadResume(t, router, sessionID, "resume.txt", "Go engineer with cloud experience"); rec.Code != http.StatusOK {
		t.Fatalf("upload: status %d body %s", rec.Code, rec.Body.String())
	}

	rec := analyzeJDGap(router, sessionID, testJDText, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "missing_credential") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAnalyzeJDTextTooShort(t *testing.T) {
	router := newTestRouter(t, bootstrap.WithLLMClient(&stubLLM{payload: map[string]any{}}))
	sessionID := createSession(t, router)

	rec := analyzeJDGap(router, sessionID, "too short", "sk-test")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAnalyzeUnknownSession(t *testing.T) {
	router := newTestRouter(t, bootstrap.WithLLMClient(&stubLLM{payload: map[string]any{}}))

	rec := analyzeJDGap(router, "00000000-0000-0000-0000-000000000000", testJDText, "sk-test")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAnalyzeModelFailure(t *testing.T) {
	stub := &stubLLM{err: fmt.Errorf("chat: %w", &llm.InvalidOutputError{Raw: "not json"})}
	router := newTestRouter(t, bootstrap.WithLLMClient(stub))
	sessionID := createSession(t, router)
	if rec := uploadResume(t, router, sessionID, "resume.txt", "Go engineer with cloud experience"); rec.Code != http.StatusOK {
		t.Fatalf("upload: status %d body %s", rec.Code, rec.Body.String())
	}

	rec := analyzeJDGap(router, sessionID, testJDText, "sk-test")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Analysis failed") {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}
