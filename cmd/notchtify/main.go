// Package main is the entry point for the notchtify now-playing backend.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/patricknelwan/notchtify/internal/config"
	"github.com/patricknelwan/notchtify/internal/domain/artwork"
	"github.com/patricknelwan/notchtify/internal/domain/nowplaying"
	"github.com/patricknelwan/notchtify/internal/infra/mpd"
	"github.com/patricknelwan/notchtify/internal/infra/spotify"
	"github.com/patricknelwan/notchtify/internal/infra/webart"
	"github.com/patricknelwan/notchtify/internal/transport/socketio"
	"github.com/patricknelwan/notchtify/internal/version"
)

func main() {
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	if *debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Print startup banner
	versionInfo := version.GetInfo()
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().Msgf("  %s", versionInfo.String())
	log.Info().Msg("  Now-Playing Backend")
	log.Info().Msg("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	log.Info().
		Int("port", cfg.Port).
		Str("backend", cfg.PlayerBackend).
		Str("cache_dir", cfg.CacheDir).
		Dur("poll_interval", cfg.PollInterval).
		Bool("credentials_set", cfg.Spotify.ClientID != "").
		Msg("Configuration")

	// Artwork pipeline: memory cache over disk cache over web search.
	memCache, err := artwork.NewMemoryCache(artwork.DefaultMaxEntries, artwork.DefaultMaxCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create memory cache")
	}
	diskCache, err := artwork.NewDiskCache(cfg.CacheDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create disk cache")
	}

	var fetcher artwork.Fetcher
	webClient := webart.NewClient(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)
	if webClient.Enabled() {
		fetcher = webClient
	}

	provider := artwork.NewProvider(memCache, diskCache, fetcher)

	// Player controller
	var controller nowplaying.PlayerController
	switch cfg.PlayerBackend {
	case config.BackendMPD:
		client := mpd.NewClient(cfg.MPD.Host, cfg.MPD.Port, cfg.MPD.Password)
		defer client.Close()
		controller = client
	default:
		controller = spotify.NewController()
	}

	state := nowplaying.NewState()
	monitor := nowplaying.NewMonitor(controller, provider, state,
		nowplaying.WithInterval(cfg.PollInterval),
		nowplaying.WithRetryDelay(cfg.RetryDelay),
	)

	// Create Socket.io server before monitoring starts so the first
	// transition is already observed.
	socketServer, err := socketio.NewServer(monitor)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Socket.io server")
	}
	defer socketServer.Close()

	monitor.StartMonitoring()
	defer monitor.StopMonitoring()

	// Setup HTTP server
	mux := http.NewServeMux()

	// Socket.io endpoint
	mux.Handle("/socket.io/", socketServer)

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Version endpoint
	mux.HandleFunc("/api/v1/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(version.GetInfo())
	})

	// Album art for the current track
	mux.HandleFunc("/albumart", func(w http.ResponseWriter, r *http.Request) {
		snap := state.Snapshot()
		if snap.Artwork == nil {
			http.Error(w, "no album art for current track", http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Cache-Control", "no-cache")
		w.Write(snap.Artwork.Data)
	})

	// State snapshot (REST fallback for clients without Socket.io)
	mux.HandleFunc("/api/v1/getState", func(w http.ResponseWriter, r *http.Request) {
		snap := state.Snapshot()
		payload := map[string]interface{}{
			"status":        snap.Status,
			"playerRunning": snap.PlayerRunning,
			"playing":       snap.Playing,
			"track":         snap.Track,
			"artist":        snap.Artist,
			"album":         snap.Album,
			"position":      snap.Position,
			"duration":      snap.Duration,
			"autoExpand":    snap.AutoExpand,
			"showProgress":  snap.ShowProgress,
		}
		if snap.Artwork != nil {
			payload["albumart"] = "/albumart"
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	})

	addr := ":" + strconv.Itoa(cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      corsMiddleware(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Info().Msg("Shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
	}()

	log.Info().Str("addr", addr).Msg("HTTP server listening")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("HTTP server error")
	}

	log.Info().Msg("Server stopped")
}
