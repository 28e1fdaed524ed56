// Package config provides configuration loading, validation, and management
// for the bot. It reads defaults, an optional YAML file, and BOT_*
// environment variables, then validates the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-telegram/bot/models"
	"github.com/spf13/viper"
)

// Config defines the application configuration for all components:
// logging, Telegram transport, Gemini integration, persistence, web
// search, content analysis, scheduled tasks, and user-facing messages.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Search    SearchConfig    `mapstructure:"search"`
	Analyzer  AnalyzerConfig  `mapstructure:"analyzer"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls log level and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot credential and runtime bot identity.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`

	// BotInfo is populated at startup from GetMe, not from config.
	BotInfo *models.User `mapstructure:"-"`
}

// GeminiConfig holds the generation API credential and model settings.
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key" validate:"required"`
	Model       string  `mapstructure:"model"        validate:"required"`
	VisionModel string  `mapstructure:"vision_model" validate:"required"`
	Temperature float32 `mapstructure:"temperature"  validate:"min=0,max=2"`
}

// DatabaseConfig holds the SQLite database location.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// SearchConfig tunes the web search pipeline.
type SearchConfig struct {
	BaseURL          string        `mapstructure:"base_url" validate:"required,url"`
	UserAgent        string        `mapstructure:"user_agent"`
	MaxResults       int           `mapstructure:"max_results"        validate:"min=1,max=20"`
	FetchCount       int           `mapstructure:"fetch_count"        validate:"min=1"`
	FetchTimeout     time.Duration `mapstructure:"fetch_timeout"      validate:"min=1s,max=1m"`
	PageContentLimit int           `mapstructure:"page_content_limit" validate:"min=100"`
}

// AnalyzerConfig tunes document and image analysis.
type AnalyzerConfig struct {
	DocumentTextLimit int `mapstructure:"document_text_limit" validate:"min=100"`
	DescriptionLimit  int `mapstructure:"description_limit"   validate:"min=10"`
}

// TaskConfig configures one scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig holds the scheduled task table.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// MessagesConfig collects every fixed user-visible string. Handler
// apologies are per handler; no internal error text ever reaches users.
type MessagesConfig struct {
	Welcome             string `mapstructure:"welcome"`
	Help                string `mapstructure:"help"`
	ContactSaved        string `mapstructure:"contact_saved"`
	SearchPrompt        string `mapstructure:"search_prompt"`
	NothingFound        string `mapstructure:"nothing_found"`
	UnsupportedDocument string `mapstructure:"unsupported_document"`
	StatsNotRegistered  string `mapstructure:"stats_not_registered"`
	ImageApology        string `mapstructure:"image_apology"`
	DocumentApology     string `mapstructure:"document_apology"`

	ErrorStart     string `mapstructure:"error_start"`
	ErrorContact   string `mapstructure:"error_contact"`
	ErrorHelp      string `mapstructure:"error_help"`
	ErrorWebSearch string `mapstructure:"error_websearch"`
	ErrorSearch    string `mapstructure:"error_search"`
	ErrorPhoto     string `mapstructure:"error_photo"`
	ErrorDocument  string `mapstructure:"error_document"`
	ErrorStats     string `mapstructure:"error_stats"`
	ErrorChat      string `mapstructure:"error_chat"`
}

// LoadConfig loads and validates configuration from:
// 1. Default values
// 2. The YAML file at configPath (optional)
// 3. BOT_* environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Missing config file is fine; env vars and defaults still apply.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", true)

	// Empty defaults so env-only credentials are picked up by Unmarshal.
	v.SetDefault("telegram.token", "")
	v.SetDefault("gemini.api_key", "")

	v.SetDefault("gemini.model", "gemini-2.0-flash")
	v.SetDefault("gemini.vision_model", "gemini-2.0-flash")
	v.SetDefault("gemini.temperature", 1.0)

	v.SetDefault("database.path", "storage.db")

	v.SetDefault("search.base_url", "https://html.duckduckgo.com/html/")
	v.SetDefault("search.user_agent", "telegem/1.0 (+https://github.com/telegembot/telegem)")
	v.SetDefault("search.max_results", 5)
	v.SetDefault("search.fetch_count", 3)
	v.SetDefault("search.fetch_timeout", 5*time.Second)
	v.SetDefault("search.page_content_limit", 1000)

	v.SetDefault("analyzer.document_text_limit", 2000)
	v.SetDefault("analyzer.description_limit", 100)

	v.SetDefault("scheduler.tasks", map[string]TaskConfig{
		"sql_maintenance": {Enabled: true, Schedule: "0 0 4 * * *"},
	})

	v.SetDefault("messages.welcome",
		"Welcome! 👋 I'm your AI assistant. I can help you with:\n"+
			"• General questions and chat\n"+
			"• Image and file analysis\n"+
			"• Web searches\n\n"+
			"Please share your contact to get started!")
	v.SetDefault("messages.help",
		"Here's what I can do:\n\n"+
			"/websearch - Search the web\n"+
			"/stats - View your usage statistics\n\n"+
			"You can also send me images or files for analysis!")
	v.SetDefault("messages.contact_saved",
		"Thanks! You're all set. Try asking me something or use /help to see all commands.")
	v.SetDefault("messages.search_prompt", "What would you like to search for?")
	v.SetDefault("messages.nothing_found", "I couldn't find any relevant information.")
	v.SetDefault("messages.unsupported_document", "Sorry, I can only analyze PDF documents at the moment.")
	v.SetDefault("messages.stats_not_registered", "Sorry, I couldn't find your statistics. Try using /start first.")
	v.SetDefault("messages.image_apology", "Sorry, I couldn't analyze this image. Please try again.")
	v.SetDefault("messages.document_apology", "Sorry, I couldn't analyze this PDF. Please try again.")

	v.SetDefault("messages.error_start", "Sorry, something went wrong. Please try again later.")
	v.SetDefault("messages.error_contact", "Sorry, I couldn't save your contact information. Please try again.")
	v.SetDefault("messages.error_help", "Sorry, I couldn't process the help command. Please try again.")
	v.SetDefault("messages.error_websearch", "Sorry, I couldn't process the web search command. Please try again.")
	v.SetDefault("messages.error_search", "Sorry, I couldn't complete the web search. Please try again.")
	v.SetDefault("messages.error_photo", "Sorry, I couldn't process this image. Please try again.")
	v.SetDefault("messages.error_document", "Sorry, I couldn't process this document. Please try again.")
	v.SetDefault("messages.error_stats", "Sorry, I couldn't retrieve your statistics. Please try again.")
	v.SetDefault("messages.error_chat", "Sorry, I couldn't process your message. Please try again.")
}
