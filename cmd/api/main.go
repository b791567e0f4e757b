package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/leroy-ai/ai-friend/backend/internal/config"
	"github.com/leroy-ai/ai-friend/backend/internal/handler"
	"github.com/leroy-ai/ai-friend/backend/internal/service/ai"
	"github.com/leroy-ai/ai-friend/backend/internal/service/chat"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: failed to load .env file: %v", err)
		log.Println("continuing with system environment variables only")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Missing completion credentials are fatal here, before any session can
	// exist; per-turn failures are handled in-band later.
	if !cfg.AI.Enabled() {
		log.Fatal("completion credentials missing: set AI_API_KEY (or GROQ_API_KEY) before starting")
	}

	chatModel, err := cfg.AI.NewChatModel(ctx)
	if err != nil {
		log.Fatalf("failed to create chat model: %v", err)
	}

	sessions := chat.NewService()
	turns, err := ai.NewService(ctx, chatModel, sessions, cfg.AI.CallTimeout)
	if err != nil {
		log.Fatalf("failed to initialize turn service: %v", err)
	}
	log.Printf("turn service ready, provider=%s model=%s", cfg.AI.Provider, cfg.AI.Model)

	router := handler.NewRouter(sessions, turns)

	startServer(ctx, cfg.Server, router)
}

func startServer(ctx context.Context, serverCfg config.ServerConfig, router http.Handler) {
	srv := &http.Server{
		Addr:              serverCfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("AI Friend backend listening on %s", serverCfg.Addr)
	if err := runServer(ctx, srv); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
