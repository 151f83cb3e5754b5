package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"
)

// Config represents the gateway configuration. One ProviderEnv group exists
// per backend; a group with no credential (or endpoint, for local backends)
// leaves that backend disabled rather than erroring at startup.
type Config struct {
	Server    ServerConfig
	CORS      CORSConfig
	Router    RouterConfig
	Redis     RedisConfig
	Embedding EmbeddingConfig

	OpenAI    ProviderEnv `envPrefix:"OPENAI_"`
	Anthropic ProviderEnv `envPrefix:"ANTHROPIC_"`
	Gemini    ProviderEnv `envPrefix:"GEMINI_"`
	Mistral   ProviderEnv `envPrefix:"MISTRAL_"`
	Ollama    ProviderEnv `envPrefix:"OLLAMA_"`
	LMStudio  ProviderEnv `envPrefix:"LMSTUDIO_"`
	LlamaCpp  ProviderEnv `envPrefix:"LLAMACPP_"`
}

// ProviderEnv contains one backend's environment settings. Cloud backends use
// APIKey, local HTTP backends use BaseURL, and the local process backend uses
// Bin; the unused fields are ignored for each backend kind.
type ProviderEnv struct {
	APIKey      string  `env:"API_KEY"`
	BaseURL     string  `env:"BASE_URL"`
	Bin         string  `env:"BIN"`
	Model       string  `env:"MODEL"`
	MaxTokens   int     `env:"MAX_TOKENS"  envDefault:"1024"`
	Temperature float64 `env:"TEMPERATURE" envDefault:"0.7"`
	Timeout     int     `env:"TIMEOUT"     envDefault:"120"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port         int `env:"SERVER_PORT"          envDefault:"8080"`
	ReadTimeout  int `env:"SERVER_READ_TIMEOUT"  envDefault:"30"`
	WriteTimeout int `env:"SERVER_WRITE_TIMEOUT" envDefault:"300"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// RouterConfig contains routing and fallback settings.
type RouterConfig struct {
	// DefaultProvider overrides the first-configured-backend default.
	DefaultProvider string `env:"ROUTER_DEFAULT_PROVIDER"`
	// FallbackEnabled toggles the fallback chain after a backend failure.
	FallbackEnabled bool `env:"ROUTER_FALLBACK_ENABLED" envDefault:"true"`
}

// EmbeddingConfig contains settings for the embedding sub-service.
type EmbeddingConfig struct {
	Model string `env:"EMBEDDING_MODEL" envDefault:"text-embedding-3-small"`
}

// RedisConfig contains settings for the multi-turn context store.
// An empty Addr disables the store; context identifiers are then inert.
type RedisConfig struct {
	Addr       string `env:"REDIS_ADDR"`
	Password   string `env:"REDIS_PASSWORD"`
	DB         int    `env:"REDIS_DB"          envDefault:"0"`
	ContextTTL int    `env:"CONTEXT_TTL"       envDefault:"3600"`
}

// DepConfig is used for dependency injection with dig.
type DepConfig struct {
	dig.Out
	*ServerConfig
	*CORSConfig
	*RouterConfig
	*RedisConfig
	*EmbeddingConfig
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		dig.Out{},
		&cfg.Server,
		&cfg.CORS,
		&cfg.Router,
		&cfg.Redis,
		&cfg.Embedding,
	}
}
