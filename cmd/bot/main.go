package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"strings"
	"syscall"
	"time"

	sqlitedb "github.com/agalitsyn/sqlite"
	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/agalitsyn/progress-bot/internal/app"
	"github.com/agalitsyn/progress-bot/internal/conversation"
	"github.com/agalitsyn/progress-bot/internal/model"
	"github.com/agalitsyn/progress-bot/internal/server"
	"github.com/agalitsyn/progress-bot/internal/storage/gsheets"
	"github.com/agalitsyn/progress-bot/internal/storage/memory"
	redisstorage "github.com/agalitsyn/progress-bot/internal/storage/redis"
	sqlitestorage "github.com/agalitsyn/progress-bot/internal/storage/sqlite"
	"github.com/agalitsyn/progress-bot/internal/storage/sqlite/migrations"
)

const sessionTTL = 24 * time.Hour

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Local development reads secrets from .env, the file is optional.
	_ = godotenv.Load()

	cfg := ParseFlags()
	setupLog(cfg.Debug)

	if cfg.Debug {
		log.Printf("[DEBUG] running with config\n%s", cfg.String())
	}

	if cfg.Token.Unmask() == "" {
		log.Fatalf("[ERROR] telegram bot token is required")
	}
	if cfg.SpreadsheetID == "" {
		log.Fatalf("[ERROR] spreadsheet id is required")
	}

	projects, err := gsheets.New(ctx, []byte(cfg.GoogleCredsJSON.Unmask()), cfg.SpreadsheetID, cfg.SheetName)
	if err != nil {
		log.Fatalf("[ERROR] could not init sheets storage: %s", err)
	}

	sessions, cleanup, err := makeSessionStore(cfg)
	if err != nil {
		log.Fatalf("[ERROR] could not init session store: %s", err)
	}
	defer cleanup()

	conv := conversation.New(projects, sessions)
	metrics := server.NewMetrics(prometheus.DefaultRegisterer)

	bot, err := app.NewBot(
		app.BotConfig{UpdateTimeout: cfg.UpdateTimeout},
		cfg.Token.Unmask(),
		BotDebugLogger{},
		conv,
		metrics,
	)
	if err != nil {
		log.Fatalf("[ERROR] could not init bot: %s", err)
	}
	if cfg.Debug {
		bot.SetDebug(true)
	}
	log.Printf("[INFO] authorized as @%s", bot.GetSelf().UserName)

	if cfg.WebhookURL != "" {
		// Telegram posts updates to /webhook/<token>, matching the webhook
		// registration below.
		webhookPath := "/webhook/" + cfg.Token.Unmask()
		if err := bot.SetWebhook(strings.TrimSuffix(cfg.WebhookURL, "/") + webhookPath); err != nil {
			log.Fatalf("[ERROR] could not set webhook: %s", err)
		}

		updates := make(chan tgbotapi.Update, 100)
		srv := server.New(cfg.HTTP.Addr, webhookPath, updates, metrics)
		go func() {
			if err := srv.Run(ctx); err != nil {
				log.Printf("[ERROR] http server: %s", err)
				stop()
			}
		}()

		bot.Run(ctx, updates)
		return
	}

	srv := server.New(cfg.HTTP.Addr, "", nil, metrics)
	go func() {
		if err := srv.Run(ctx); err != nil {
			log.Printf("[ERROR] http server: %s", err)
			stop()
		}
	}()

	bot.Run(ctx, bot.UpdatesChan())
}

func makeSessionStore(cfg Config) (model.SessionStore, func(), error) {
	noop := func() {}

	switch cfg.SessionStore {
	case "memory":
		return memory.NewSessionStorage(), noop, nil

	case "sqlite":
		db, err := sqlitedb.Connect(cfg.DBPath)
		if err != nil {
			return nil, noop, fmt.Errorf("could not connect to sqlite: %w", err)
		}
		if err := sqlitedb.MigrateUp(db, migrations.FS); err != nil {
			db.Close()
			return nil, noop, fmt.Errorf("could not apply migrations: %w", err)
		}
		return sqlitestorage.NewSessionStorage(db), func() { db.Close() }, nil

	case "redis":
		store := redisstorage.New(
			cfg.Redis.Addr,
			cfg.Redis.Password.Unmask(),
			cfg.Redis.DB,
			redisstorage.WithTTL(sessionTTL),
		)
		return store, func() { store.Close() }, nil

	default:
		return nil, noop, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
}

func setupLog(dbg bool) {
	logOpts := []lgr.Option{lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = []lgr.Option{lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.Msec, lgr.LevelBraces}
	}

	colorizer := lgr.Mapper{
		ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
		WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
		InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
		DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
		CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
		TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
	}
	logOpts = append(logOpts, lgr.Map(colorizer))

	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}

type BotDebugLogger struct{}

func (l BotDebugLogger) Printf(msg string, args ...interface{}) {
	log.Printf("[DEBUG] "+msg, args...)
}

func (l BotDebugLogger) Println(v ...interface{}) {
	log.Printf("[DEBUG] %s", fmt.Sprintln(v...))
}
