package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/daszybak/predictit_bot/internal/chat/telegram"
	configtypes "github.com/daszybak/predictit_bot/internal/config"
	"github.com/daszybak/predictit_bot/internal/predictit"
	"github.com/daszybak/predictit_bot/internal/reply"
	"github.com/daszybak/predictit_bot/internal/shortener"
	"go.yaml.in/yaml/v4"
)

const defaultHTTPAddr = ":8080"

type config struct {
	LogLevel string `yaml:"log_level"` // debug, info, warn, error
	HTTP     struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	PredictIt struct {
		URLTemplate string               `yaml:"url_template"`
		UserAgent   string               `yaml:"user_agent"`
		Timeout     configtypes.Duration `yaml:"timeout"`
	} `yaml:"predictit"`
	Shortener struct {
		Endpoint string               `yaml:"endpoint"`
		APIKey   configtypes.Secret   `yaml:"api_key"`
		Timeout  configtypes.Duration `yaml:"timeout"`
	} `yaml:"shortener"`
	Telegram struct {
		Enabled      bool                 `yaml:"enabled"`
		APIURL       string               `yaml:"api_url"`
		Token        configtypes.Secret   `yaml:"token"`
		PollTimeout  configtypes.Duration `yaml:"poll_timeout"`
		AllowedChats []int64              `yaml:"allowed_chats"`
	} `yaml:"telegram"`
	WebSocket struct {
		Enabled bool   `yaml:"enabled"`
		Style   string `yaml:"style"`
	} `yaml:"websocket"`
}

func readConfig(configPath *string) (*config, error) {
	rawConfig, err := os.ReadFile(*configPath)
	if err != nil {
		return nil, fmt.Errorf("couldn't read file %s: %w", *configPath, err)
	}

	cfg := &config{}
	if err = yaml.Unmarshal(rawConfig, cfg); err != nil {
		return nil, fmt.Errorf("couldn't parse config: %w", err)
	}

	applyDefaults(cfg)

	err = validateConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("couldn't validate config: %w", err)
	}

	return cfg, nil
}

// defaultConfig is used by one-shot lookups when no config file exists.
func defaultConfig() *config {
	cfg := &config{}
	cfg.Shortener.APIKey = configtypes.Secret(os.Getenv("SHORTENER_API_KEY"))
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = defaultHTTPAddr
	}
	if cfg.PredictIt.URLTemplate == "" {
		cfg.PredictIt.URLTemplate = predictit.DefaultURLTemplate
	}
	if cfg.Shortener.Endpoint == "" {
		cfg.Shortener.Endpoint = shortener.DefaultEndpoint
	}
	if cfg.Telegram.APIURL == "" {
		cfg.Telegram.APIURL = telegram.DefaultAPIURL
	}
	if cfg.Telegram.PollTimeout == 0 {
		cfg.Telegram.PollTimeout = configtypes.Duration(telegram.DefaultPollTimeout)
	}
	if cfg.WebSocket.Style == "" {
		cfg.WebSocket.Style = "plain"
	}
}

func validateConfig(cfg *config) error {
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return err
	}

	// PredictIt
	if !strings.Contains(cfg.PredictIt.URLTemplate, predictit.TickerPlaceholder) {
		return fmt.Errorf("predictit.url_template must contain %s", predictit.TickerPlaceholder)
	}

	// Telegram
	if cfg.Telegram.Enabled && cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required when telegram is enabled")
	}

	// WebSocket
	if _, ok := reply.StyleByName(cfg.WebSocket.Style); !ok {
		return fmt.Errorf("websocket.style must be one of plain, irc, html")
	}

	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("log_level must be one of debug, info, warn, error")
	}
	return level, nil
}

func newLogger(levelName string) *slog.Logger {
	level, err := parseLevel(levelName)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
