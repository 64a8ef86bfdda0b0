package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/agalitsyn/flagutils"
	"github.com/agalitsyn/secret"

	"github.com/agalitsyn/progress-bot/version"
)

const EnvPrefix = "PROGRESS_BOT"

type Config struct {
	Debug bool

	Log struct {
		Level string
	}

	Token           secret.String
	GoogleCredsJSON secret.String
	SpreadsheetID   string
	SheetName       string

	SessionStore string
	DBPath       string
	Redis        struct {
		Addr     string
		Password secret.String
		DB       int
	}

	HTTP struct {
		Addr string
	}
	WebhookURL    string
	UpdateTimeout int
}

func (c Config) String() string {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stdout, err)
		os.Exit(0)
	}
	return string(b)
}

func ParseFlags() Config {
	var cfg Config

	printVersion := flag.Bool("version", false, "Show version.")
	logLevel := flag.String("log-level", "info", "Log level (debug | info | warn | error).")

	token := flag.String("token", "", "Telegram bot token.")
	googleCredsJSON := flag.String("google-creds-json", "", "Google service account credentials JSON.")
	spreadsheetID := flag.String("spreadsheet-id", "", "Google Sheets spreadsheet ID.")
	sheetName := flag.String("sheet-name", "Project Summary", "Sheet with project rows.")

	sessionStore := flag.String("session-store", "memory", "Session store backend (memory | sqlite | redis).")
	dbPath := flag.String("db-path", "progress-bot.db", "SQLite database path, used with -session-store=sqlite.")
	redisAddr := flag.String("redis-addr", "127.0.0.1:6379", "Redis address, used with -session-store=redis.")
	redisPassword := flag.String("redis-password", "", "Redis password.")
	redisDB := flag.Int("redis-db", 0, "Redis database number.")

	httpAddr := flag.String("http-addr", ":8080", "HTTP server address (health, metrics, webhook).")
	webhookURL := flag.String("webhook-url", "", "Public webhook URL. Long polling is used when empty.")
	updateTimeout := flag.Int("update-timeout", 60, "Long polling timeout in seconds.")

	flagutils.Prefix = EnvPrefix
	flagutils.Parse()
	flag.Parse()

	cfg.Log.Level = *logLevel
	if *logLevel == "debug" {
		cfg.Debug = true
	}

	cfg.Token = secret.NewString(*token)
	cfg.GoogleCredsJSON = secret.NewString(*googleCredsJSON)
	cfg.SpreadsheetID = *spreadsheetID
	cfg.SheetName = *sheetName

	cfg.SessionStore = *sessionStore
	cfg.DBPath = *dbPath
	cfg.Redis.Addr = *redisAddr
	cfg.Redis.Password = secret.NewString(*redisPassword)
	cfg.Redis.DB = *redisDB

	cfg.HTTP.Addr = *httpAddr
	cfg.WebhookURL = *webhookURL
	cfg.UpdateTimeout = *updateTimeout

	if *printVersion {
		fmt.Fprintln(os.Stdout, version.String())
		os.Exit(0)
	}

	return cfg
}
