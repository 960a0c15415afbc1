package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stemsi/formfill-backend/internal/config"
	"github.com/stemsi/formfill-backend/internal/database"
	"github.com/stemsi/formfill-backend/internal/generate"
	"github.com/stemsi/formfill-backend/internal/logger"
	"github.com/stemsi/formfill-backend/internal/middleware"
	"github.com/stemsi/formfill-backend/internal/scrape"
	"github.com/stemsi/formfill-backend/internal/service"
	"github.com/stemsi/formfill-backend/internal/telegram"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat, "formfill-bot")

	if cfg.TelegramBotToken == "" {
		log.Fatal().Msg("TELEGRAM_BOT_TOKEN is not set")
	}
	if cfg.TelegramOwnerID == 0 && len(cfg.TelegramAllowedUsers) == 0 {
		log.Warn().Msg("No TELEGRAM_OWNER_ID or TELEGRAM_ALLOWED_USERS, the bot is open to everyone")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ─── Connect to Redis ──────────────────────────────────────────────
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	// ─── Initialize Collaborators ─────────────────────────────────────
	scraper := scrape.New(scrape.Options{
		APIKey:  cfg.FirecrawlAPIKey,
		BaseURL: cfg.FirecrawlBaseURL,
		Timeout: cfg.ScrapeTimeout,
		WaitFor: 3 * time.Second,
	}, log)

	gemini := generate.NewGemini(cfg.GeminiAPIKey, cfg.GeminiModel, log)
	defer gemini.Close()

	// History lands in Postgres through the server's worker.
	deps := service.FormServiceDeps{
		Fetcher:  scraper,
		Drafter:  gemini,
		Cache:    service.NewRedisFormCache(rdb),
		CacheTTL: cfg.ParseCacheTTL,
	}
	if cfg.TelegramUserID > 0 {
		deps.Queue = service.NewRedisHistoryQueue(rdb)
	}
	formService := service.NewFormService(deps, log)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Run(ctx.Done())

	// ─── Telegram ──────────────────────────────────────────────────────
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to authorize Telegram bot")
	}
	log.Info().Str("username", api.Self.UserName).Msg("Telegram bot authorized")

	bot := telegram.New(api, formService, telegram.NewRedisSessions(rdb), limiter, telegram.Options{
		OwnerID:       cfg.TelegramOwnerID,
		AllowedUsers:  cfg.TelegramAllowedUsers,
		HistoryUserID: cfg.TelegramUserID,
	}, log)

	bot.Run(ctx, api)

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
