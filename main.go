package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pathakanu/medTrack/internal/config"
	"github.com/pathakanu/medTrack/internal/database"
	"github.com/pathakanu/medTrack/internal/localstore"
	"github.com/pathakanu/medTrack/internal/mirror"
	myopenai "github.com/pathakanu/medTrack/internal/openai"
	"github.com/pathakanu/medTrack/internal/speech"
	"github.com/pathakanu/medTrack/internal/tracker"
	"github.com/pathakanu/medTrack/internal/twilio"
)

func main() {
	logger := log.New(os.Stdout, "[medTrack] ", log.LstdFlags|log.Lshortfile)
	cfg := config.Load()

	// The mirror is best-effort: an unreachable database means local-only
	// operation, never a refusal to start.
	var mirrorStore *mirror.Store
	if db, err := database.New(cfg.DatabaseURL); err != nil {
		logger.Printf("remote mirror unavailable, running local-only: %v", err)
	} else {
		mirrorStore = mirror.NewStore(db)
	}

	statePath := cfg.StatePath
	if statePath == "" {
		statePath = localstore.DefaultPath()
	}
	store := localstore.New(statePath, logger)

	openAIClient := myopenai.New(cfg.OpenAIAPIKey)
	speaker := speech.New(openAIClient, logger)
	var twilioClient *twilio.Client
	if cfg.TwilioAccountSID != "" {
		twilioClient = twilio.New(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioWhatsAppNumber)
	}

	tr := tracker.New(cfg, store, mirrorStore, openAIClient, twilioClient, speaker, logger)
	if err := tr.Start(); err != nil {
		logger.Fatalf("tracker start: %v", err)
	}
	if cfg.CaregiverMode() {
		logger.Printf("caregiver mode: following patient %s", cfg.CaregiverTargetID)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: tr.Handler(),
	}

	go func() {
		logger.Printf("server starting on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	waitForShutdown(server, tr, logger)
}

func waitForShutdown(server *http.Server, tr *tracker.Tracker, logger *log.Logger) {
	stopCtx := make(chan os.Signal, 1)
	signal.Notify(stopCtx, syscall.SIGINT, syscall.SIGTERM)
	<-stopCtx
	logger.Println("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Printf("server shutdown error: %v", err)
	}
	tr.Stop()
}
