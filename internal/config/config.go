package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Core
	GeminiAPIKey string `env:"GEMINI_API_KEY,required"`
	DatabaseURL  string `env:"DATABASE_URL"` // empty -> in-memory history
	DBMaxConns   int32  `env:"DB_MAX_CONNS" envDefault:"16"`
	DBMinConns   int32  `env:"DB_MIN_CONNS" envDefault:"2"`

	// Models
	TextModel   string `env:"TEXT_MODEL" envDefault:"gemini-2.5-flash"`
	ImageModel  string `env:"IMAGE_MODEL" envDefault:"imagen-4.0-fast-generate-001"`
	SpeechModel string `env:"SPEECH_MODEL" envDefault:"gemini-2.5-flash-preview-tts"`

	// Server
	Port int `env:"PORT" envDefault:"8080"`

	// Delay before a capability view-switch signal is broadcast, so the
	// chat bubble renders first. Zero is valid.
	ViewSwitchDelayMs int `env:"VIEW_SWITCH_DELAY_MS" envDefault:"1000"`

	// Ops alerting via Telegram (optional)
	AlertBotToken string `env:"ALERT_BOT_TOKEN"`
	AlertChatID   int64  `env:"ALERT_CHAT_ID"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
