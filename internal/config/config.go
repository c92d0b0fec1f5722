package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by ELDERS_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("ELDERS_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

func OpenAIAPIKey() string {
	return os.Getenv("OPENAI_API_KEY")
}

func AnthropicAPIKey() string {
	return os.Getenv("ANTHROPIC_API_KEY")
}

func GeminiAPIKey() string {
	return os.Getenv("GEMINI_API_KEY")
}

func CerebrasAPIKey() string {
	return os.Getenv("CEREBRAS_API_KEY")
}

// LLMProvider returns the configured LLM provider.
// Defaults to "gemini" if not set.
// Valid values: gemini, openai, anthropic, cerebras, mock
func LLMProvider() string {
	p := strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	if p == "" {
		return "gemini"
	}
	return p
}

// LLMAPIKey returns the API key for the configured LLM provider.
func LLMAPIKey() string {
	switch LLMProvider() {
	case "openai":
		return OpenAIAPIKey()
	case "anthropic":
		return AnthropicAPIKey()
	case "cerebras":
		return CerebrasAPIKey()
	case "mock":
		return ""
	default:
		return GeminiAPIKey()
	}
}

// LLMModel returns the model override. Empty means the provider default.
func LLMModel() string {
	return os.Getenv("LLM_MODEL")
}

// GenerationTimeout bounds a single generation call.
// Defaults to 60s if not set.
func GenerationTimeout() time.Duration {
	return durationOr("GENERATION_TIMEOUT", 60*time.Second)
}

// HistoryBackend returns where concluded cycles are recorded.
// Defaults to "none" if not set.
// Valid values: none, postgres, sqlite
func HistoryBackend() string {
	b := strings.ToLower(strings.TrimSpace(os.Getenv("HISTORY_BACKEND")))
	if b == "" {
		return "none"
	}
	return b
}

func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

func SQLitePath() string {
	p := os.Getenv("SQLITE_PATH")
	if p == "" {
		return "./data/elders.db"
	}
	return p
}

// SessionIdleTTL returns how long an unused session is kept.
// Defaults to 2h if not set.
func SessionIdleTTL() time.Duration {
	return durationOr("SESSION_IDLE_TTL", 2*time.Hour)
}

// RateLimitRPS returns requests per second limit.
// Defaults to 10 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 10
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 5 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 5
	}
	return burst
}

// APIToken returns the bearer token required on /v1 routes.
// Empty disables authentication.
func APIToken() string {
	return os.Getenv("API_TOKEN")
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}

func durationOr(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}
