package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"crowlands/internal/grimoire"
	"crowlands/internal/http/handlers"
	"crowlands/internal/http/httpapi"
	"crowlands/internal/infra"
	"crowlands/internal/ledger"
	"crowlands/internal/orchestrator"
	"crowlands/internal/payments"
	"crowlands/internal/persona"
	"crowlands/internal/providers/image"
	"crowlands/internal/providers/spelltext"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx := context.Background()
	if err := infra.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("migrations failed")
	}

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect database")
	}
	defer pool.Close()
	runner := infra.NewSQLRunner(pool, logger)

	registry, err := persona.NewRegistry()
	if err != nil {
		logger.Fatal().Err(err).Msg("persona catalog failed to load")
	}

	led := ledger.New(runner, logger, cfg.FreeMonthlyQuota)
	sessions := payments.NewStore(runner, logger)
	processor := payments.NewStripeProcessor(payments.StripeOptions{
		SecretKey: cfg.StripeSecretKey,
		BaseURL:   cfg.StripeBaseURL,
		PriceID:   cfg.StripePriceID,
	})
	confirmer := payments.NewWorker(sessions, processor, led,
		payments.DefaultPollPolicy(cfg.PaymentPollAttempts, cfg.PaymentPollInterval), logger)

	orch := orchestrator.New(registry, led, textGenerator(cfg, logger), imageGenerator(cfg, logger), logger)

	app := &handlers.App{
		Logger:    logger,
		Config:    cfg,
		Personas:  registry,
		Ledger:    led,
		Generator: orch,
		Grimoire:  grimoire.NewStore(runner, logger),
		Sessions:  sessions,
		Processor: processor,
		Confirmer: confirmer,
	}

	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app, cfg, logger))

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil {
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

// textGenerator picks the configured provider, falling back to the
// deterministic generator when no API key is present so local development
// works offline.
func textGenerator(cfg *infra.Config, logger infra.Logger) spelltext.Generator {
	client := &http.Client{Timeout: 60 * time.Second}

	switch cfg.PromptProvider {
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			break
		}
		gen, err := spelltext.NewOpenAIGenerator(spelltext.OpenAIOptions{
			APIKey:       cfg.OpenAIAPIKey,
			Model:        cfg.OpenAIModel,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
			HTTPClient:   client,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("openai generator misconfigured")
		}
		return gen
	default:
		if cfg.GeminiAPIKey == "" {
			break
		}
		gen, err := spelltext.NewGeminiGenerator(spelltext.GeminiOptions{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.GeminiModel,
			BaseURL:    cfg.GeminiBaseURL,
			HTTPClient: client,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("gemini generator misconfigured")
		}
		return gen
	}

	logger.Warn().Str("provider", cfg.PromptProvider).Msg("no text provider key configured, using static generation")
	return spelltext.NewStaticGenerator()
}

func imageGenerator(cfg *infra.Config, logger infra.Logger) image.Generator {
	client := &http.Client{Timeout: 120 * time.Second}

	switch cfg.ImageProvider {
	case "qwen":
		if cfg.QwenAPIKey == "" {
			break
		}
		gen, err := image.NewQwenGenerator(image.QwenOptions{
			APIKey:     cfg.QwenAPIKey,
			BaseURL:    cfg.QwenBaseURL,
			HTTPClient: client,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("qwen image generator misconfigured")
		}
		return gen
	default:
		if cfg.GeminiAPIKey == "" {
			break
		}
		gen, err := image.NewGeminiGenerator(image.GeminiOptions{
			APIKey:     cfg.GeminiAPIKey,
			Model:      cfg.ImageModel,
			BaseURL:    cfg.GeminiBaseURL,
			HTTPClient: client,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("image generator misconfigured")
		}
		return gen
	}

	logger.Warn().Str("provider", cfg.ImageProvider).Msg("no image provider key configured, using placeholder images")
	return image.NewStaticGenerator()
}
