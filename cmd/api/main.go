package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"promovideo/internal/assets"
	"promovideo/internal/http/handlers"
	"promovideo/internal/http/httpapi"
	"promovideo/internal/infra"
	"promovideo/internal/infra/credentials"
	"promovideo/internal/providers/genai"
	"promovideo/internal/providers/ideas"
	"promovideo/internal/providers/refine"
	"promovideo/internal/video"
	"promovideo/internal/wizard"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	gate := credentials.NewGate(cfg.GeminiAPIKey, cfg.VideoEnabled)
	if !gate.HasCredential() {
		logger.Warn().Msg("api: GEMINI_API_KEY missing, generation blocked until a credential is set")
	}

	httpClient := &http.Client{Timeout: 60 * time.Second}
	client, err := genai.NewClient(genai.Options{
		Credentials: gate,
		BaseURL:     cfg.GeminiBaseURL,
		Model:       cfg.GeminiModel,
		VideoModel:  cfg.GeminiVideoModel,
		HTTPClient:  httpClient,
		Logger:      &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("api: failed to configure gemini client")
	}

	sessions := wizard.NewStore(cfg.SessionTTL, logger)

	app := &handlers.App{
		Logger:   logger,
		Cfg:      cfg,
		Sessions: sessions,
		Ideas:    ideas.NewGateway(client, logger),
		Refine:   refine.NewGateway(client, logger),
		Gate:     gate,
		Fetcher:  assets.NewHTTPFetcher(cfg.PreloadBaseURL, httpClient),
		NewSession: func() *wizard.Session {
			registry := assets.NewRegistry(logger, nil)
			orchestrator := video.New(video.Options{
				Client:          client,
				Gate:            gate,
				Logger:          logger,
				PollInterval:    cfg.PollInterval,
				MaxPollAttempts: cfg.MaxPollAttempts,
			})
			return wizard.NewSession(registry, orchestrator)
		},
	}

	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router, logger)

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
