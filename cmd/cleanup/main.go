package main

import (
	"context"
	"log"
	"time"

	"jdgap-backend/internal/bootstrap"
	"jdgap-backend/internal/sessions"
	"jdgap-backend/internal/shared/config"
)

// One-shot sweep of expired sessions, for cron or manual use. The API server
// already reclaims lazily; this keeps storage bounded when traffic is idle.
func main() {
	cfg := config.Load()

	ctx := context.Background()
	blobs, err := bootstrap.NewBlobStore(ctx, cfg)
	if err != nil {
		log.Fatalf("cleanup: %v", err)
	}

	store := sessions.NewStore(blobs, time.Duration(cfg.SessionTTLHours)*time.Hour)
	removed, err := store.CleanupExpired(ctx)
	if err != nil {
		log.Fatalf("cleanup: %v", err)
	}
	log.Printf("removed %d expired sessions", removed)
}
