// Package main contains the entrypoint for the Telegram bot application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/telegembot/telegem/internal/analyzer"
	"github.com/telegembot/telegem/internal/bot"
	"github.com/telegembot/telegem/internal/bot/handlers"
	"github.com/telegembot/telegem/internal/bot/tasks"
	"github.com/telegembot/telegem/internal/config"
	"github.com/telegembot/telegem/internal/database"
	"github.com/telegembot/telegem/internal/gemini"
	"github.com/telegembot/telegem/internal/logger"
	"github.com/telegembot/telegem/internal/telegram"
	"github.com/telegembot/telegem/internal/websearch"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all components in dependency order, starts the bot,
// and returns the process exit code. Any startup failure aborts before
// the listener connects.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)
	if err := store.Ping(ctx); err != nil {
		log.Error("Database ping failed", "error", err)
		return 1
	}

	gemClient, err := gemini.NewClient(ctx, cfg.Gemini, log)
	if err != nil {
		log.Error("Failed to initialize Gemini client", "error", err)
		return 1
	}

	search := websearch.New(gemClient, cfg.Search, cfg.Messages, log)
	contentAnalyzer := analyzer.New(gemClient, cfg.Analyzer, cfg.Messages, log)
	pending := handlers.NewPendingSteps()

	hDeps := handlers.HandlerDeps{
		Logger:   log,
		Config:   cfg,
		Store:    store,
		Gemini:   gemClient,
		Search:   search,
		Analyzer: contentAnalyzer,
		Pending:  pending,
	}

	// The Router is the default handler: every message update flows
	// through its classification instead of per-command registrations.
	// It is assigned after the bot client exists, since its reply and
	// download adapters wrap that client; updates only start flowing
	// once app.Run is called, well after the assignment.
	var router *handlers.Router

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			router.HandleUpdate(ctx, b, update)
		}),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	telegram.RegisterCommandMenu(ctx, tg, log)

	hDeps.Replier = telegram.NewReplier(tg, log)
	hDeps.Files = telegram.NewDownloader(tg, cfg.Telegram.Token, log)
	router = handlers.NewRouter(hDeps)

	tDeps := tasks.TaskDeps{
		Logger: log,
		Store:  store,
		Config: cfg,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, cfg, db, store, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
