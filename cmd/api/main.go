package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mdnazib963/ShortsCraft/internal/api"
	"github.com/mdnazib963/ShortsCraft/internal/assembly"
	"github.com/mdnazib963/ShortsCraft/internal/browse"
	"github.com/mdnazib963/ShortsCraft/internal/classify"
	"github.com/mdnazib963/ShortsCraft/internal/config"
	"github.com/mdnazib963/ShortsCraft/internal/db"
	"github.com/mdnazib963/ShortsCraft/internal/pipeline"
	"github.com/mdnazib963/ShortsCraft/internal/providers"
	"github.com/mdnazib963/ShortsCraft/internal/queue"
	"github.com/mdnazib963/ShortsCraft/internal/resolver"
	"github.com/mdnazib963/ShortsCraft/internal/services"
	"github.com/mdnazib963/ShortsCraft/internal/worker"
)

func main() {
	log.Println("Starting ShortsCraft API...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := os.MkdirAll(cfg.MediaDir, 0755); err != nil {
		log.Fatalf("Failed to create media dir: %v", err)
	}

	// Connect to database
	database, err := db.New(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()
	log.Println("Connected to database")

	// Connect to Redis queue
	q, err := queue.New(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to connect to queue: %v", err)
	}
	defer q.Close()
	log.Println("Connected to Redis queue")

	// Clip resolution pipeline, shared by the API (regeneration) and the
	// worker (generation and export)
	browser := browse.NewEngine()
	defer browser.Release()

	rng := providers.NewRand(time.Now().UnixNano())
	provs := providers.Defaults(browser, cfg.DenylistMarkers, rng)
	res := resolver.New(provs, cfg.FallbackClips, time.Now().UnixNano())
	classifier := classify.New()
	orch := pipeline.New(res, classifier)

	workspaces, err := assembly.NewWorkspaceManager(cfg.WorkspaceRoot)
	if err != nil {
		log.Fatalf("Failed to create workspace root: %v", err)
	}

	// Create API handler
	handler := api.NewHandler(database, q, classifier, orch, workspaces, cfg.MediaDir, cfg.SceneCount)
	router := api.NewRouter(handler, api.RouterConfig{
		BackendAPIKey:      cfg.BackendAPIKey,
		CorsAllowedOrigins: cfg.CorsAllowedOrigins,
	})

	if cfg.BackendAPIKey != "" {
		log.Println("API key authentication enabled")
	} else {
		log.Println("WARNING: No BACKEND_API_KEY set — API is unprotected (dev mode)")
	}

	// Start HTTP server
	server := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: router,
	}

	// Start worker if enabled
	var workerCtx context.Context
	var workerCancel context.CancelFunc
	if cfg.WorkerEnabled {
		log.Println("Worker enabled, starting background processing...")

		// Storyboard provider — OpenAI default, Gemini alternative
		var storyboardSvc services.StoryboardService
		if cfg.StoryboardProvider == "gemini" {
			storyboardSvc = services.NewGeminiService(cfg.GeminiKey)
			log.Println("Storyboard provider: Gemini")
		} else {
			storyboardSvc = services.NewOpenAIService(cfg.OpenAIKey)
			log.Println("Storyboard provider: OpenAI")
		}

		ttsSvc := services.NewElevenLabsService(cfg.ElevenLabsKey, cfg.ElevenLabsVoiceID)
		log.Printf("TTS provider: ElevenLabs (voice: %s)", cfg.ElevenLabsVoiceID)

		engine := assembly.NewEngine(services.NewFFmpegService(), assembly.NewDownloader(), workspaces)

		w := worker.New(database, q, storyboardSvc, ttsSvc, orch, engine,
			cfg.MediaDir, time.Duration(cfg.InterSceneDelayMs)*time.Millisecond)

		workerCtx, workerCancel = context.WithCancel(context.Background())
		go w.Start(workerCtx, cfg.MaxConcurrentJobs)
	}

	// Start server in goroutine
	go func() {
		log.Printf("API server listening on :%s", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Shutdown worker
	if workerCancel != nil {
		workerCancel()
	}

	// Shutdown HTTP server
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
