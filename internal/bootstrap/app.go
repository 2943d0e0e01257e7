package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"jdgap-backend/internal/gap"
	"jdgap-backend/internal/llm"
	"jdgap-backend/internal/llm/openai"
	"jdgap-backend/internal/resumes"
	"jdgap-backend/internal/services/health"
	"jdgap-backend/internal/sessions"
	"jdgap-backend/internal/shared/config"
	"jdgap-backend/internal/shared/server"
	"jdgap-backend/internal/shared/storage/blob"
	localstore "jdgap-backend/internal/shared/storage/blob/local"
	s3store "jdgap-backend/internal/shared/storage/blob/s3"
)

// App holds the process-wide components, constructed once at startup and
// passed explicitly to handlers.
type App struct {
	Config        config.Config
	Router        *gin.Engine
	Blobs         blob.Store
	Sessions      *sessions.Store
	LLM           llm.Client
	Engine        *gap.Engine
	ResumeService *resumes.Service
}

// Option overrides a dependency before the router is wired. Used by tests to
// substitute the generation client.
type Option func(*App)

// WithLLMClient replaces the generation client.
func WithLLMClient(client llm.Client) Option {
	return func(a *App) { a.LLM = client }
}

// Build prepares all shared dependencies and wires the router.
func Build(cfg config.Config, opts ...Option) (*App, error) {
	blobs, err := NewBlobStore(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		Blobs:  blobs,
		LLM:    buildLLMClient(cfg),
	}
	for _, opt := range opts {
		opt(app)
	}

	app.Sessions = sessions.NewStore(blobs, time.Duration(cfg.SessionTTLHours)*time.Hour)
	app.Engine = gap.NewEngine(app.LLM, cfg.OpenAIModel)
	app.ResumeService = resumes.NewService(app.Sessions)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:         cfg,
		Health:         health.NewService(),
		SessionHandler: sessions.NewHandler(app.Sessions),
		ResumeHandler:  resumes.NewHandler(app.ResumeService, app.Sessions),
		GapHandler:     gap.NewHandler(app.Sessions, app.Engine),
	})

	return app, nil
}

// NewBlobStore builds the configured blob store backend.
func NewBlobStore(ctx context.Context, cfg config.Config) (blob.Store, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		store, err := s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix)
		if err != nil {
			return nil, fmt.Errorf("bootstrap s3 store: %w", err)
		}
		return store, nil
	default:
		return localstore.New(cfg.DataDir), nil
	}
}

func buildLLMClient(cfg config.Config) llm.Client {
	opts := []openai.Option{}
	if cfg.OpenAIBaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.OpenAIBaseURL))
	}
	if cfg.OpenAITimeoutSeconds > 0 {
		opts = append(opts, openai.WithTimeout(time.Duration(cfg.OpenAITimeoutSeconds)*time.Second))
	}
	return openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, opts...)
}
