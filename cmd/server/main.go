package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calliope-music/calliope/internal/artwork"
	"github.com/calliope-music/calliope/internal/config"
	"github.com/calliope-music/calliope/internal/enrich"
	apphttp "github.com/calliope-music/calliope/internal/http"
	"github.com/calliope-music/calliope/internal/library"
	"github.com/calliope-music/calliope/internal/logger"
	"github.com/calliope-music/calliope/internal/store"
	"github.com/calliope-music/calliope/internal/transcode"
)

func main() {
	cfg := config.Load()

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Logger
	appLogger := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	// Initialize DB
	db, err := store.Open(cfg.DBPath, appLogger)
	if err != nil {
		appLogger.Error("Failed to init DB", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize Artwork Store
	art, err := artwork.New(cfg.ArtDir, appLogger)
	if err != nil {
		appLogger.Error("Failed to init artwork store", "error", err)
		os.Exit(1)
	}

	// Initialize Transcoder
	tc, err := transcode.New(cfg.FFmpegPath, cfg.CacheDir, appLogger)
	if err != nil {
		appLogger.Error("Failed to init transcoder", "error", err)
		os.Exit(1)
	}

	// Initialize Ingestion Pipeline
	bios := enrich.NewLastFM(cfg.LastFMAPIKey, appLogger)
	images := enrich.NewSpotify(cfg.SpotifyID, cfg.SpotifySecret, appLogger)
	resolver := library.NewResolver(db, art, bios, images, appLogger)
	scanner := library.NewScanner(cfg.MusicDir, resolver, cfg.ArtistSplitExceptions, appLogger)
	watcher := library.NewWatcher(cfg.MusicDir, scanner, db, appLogger)

	ingestCtx, stopIngest := context.WithCancel(context.Background())
	defer stopIngest()
	if !cfg.NoScan {
		go func() {
			if err := scanner.Scan(ingestCtx); err != nil && ingestCtx.Err() == nil {
				appLogger.Error("Initial scan failed", "error", err)
			}
			if err := watcher.Run(ingestCtx); err != nil && ingestCtx.Err() == nil {
				appLogger.Error("Watcher stopped", "error", err)
			}
		}()
	}

	// Initialize Router
	h := apphttp.NewHandler(db, art, tc, appLogger)
	r := apphttp.NewRouter(h)

	// Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	stopIngest()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
