package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Server      ServerConfig
	OpenAI      OpenAIConfig
	Redis       RedisConfig
	CacheEnable bool `env:"CACHE_ENABLE"`
}

type ServerConfig struct {
	Port            string        `env:"SERVER_PORT" envDefault:"8080"`
	Timeout         time.Duration `env:"SERVER_TIMEOUT" envDefault:"2m"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ThrottleLimit   int           `env:"SERVER_THROTTLE_LIMIT" envDefault:"50"`
	MaxUploadBytes  int64         `env:"SERVER_MAX_UPLOAD_BYTES" envDefault:"10485760"`
}

// OpenAIConfig carries the credential plus per-operation generation
// parameters. An empty APIKey does not prevent startup: LLM-backed
// operations degrade to error diagrams instead.
type OpenAIConfig struct {
	APIKey              string  `env:"OPENAI_API_KEY"`
	BaseURL             string  `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	Model               string  `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	GenerateMaxTokens   int64   `env:"OPENAI_GENERATE_MAX_TOKENS" envDefault:"1000"`
	RefineMaxTokens     int64   `env:"OPENAI_REFINE_MAX_TOKENS" envDefault:"1500"`
	GenerateTemperature float64 `env:"OPENAI_GENERATE_TEMPERATURE" envDefault:"0.5"`
	RefineTemperature   float64 `env:"OPENAI_REFINE_TEMPERATURE" envDefault:"0.6"`
}

type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR" envDefault:"redis:6379"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"REDIS_TTL" envDefault:"10m"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
