package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	LLMAPIKey         string `env:"LLM_API_KEY,required"`
	LLMBaseURL        string `env:"LLM_BASE_URL" envDefault:"https://api.openai.com/v1"`
	LLMProvider       string `env:"LLM_PROVIDER" envDefault:"openai"`
	LLMModel          string `env:"LLM_MODEL" envDefault:"gpt-5.1"`
	LLMEmbeddingModel string `env:"LLM_EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`

	ImageBaseURL string `env:"IMAGE_BASE_URL"`
	ImageAPIKey  string `env:"IMAGE_API_KEY"`
	ImageModel   string `env:"IMAGE_MODEL" envDefault:"flux-schnell"`

	// Tope de espera para cada llamada upstream (LLM e imagenes).
	UpstreamTimeoutSeconds int `env:"UPSTREAM_TIMEOUT_SECONDS" envDefault:"90"`

	DefaultLanguage string `env:"DEFAULT_LANGUAGE" envDefault:"en"`
	JWTSecret       string `env:"JWT_SECRET"`

	RedisAddr           string `env:"REDIS_ADDR"`
	RedisPassword       string `env:"REDIS_PASSWORD"`
	RedisDB             int    `env:"REDIS_DB" envDefault:"0"`
	ChatRateLimitMax    int    `env:"CHAT_RATE_LIMIT_MAX" envDefault:"30"`
	ChatRateLimitWindow int    `env:"CHAT_RATE_LIMIT_WINDOW_SECONDS" envDefault:"60"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
