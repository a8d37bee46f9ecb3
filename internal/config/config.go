package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port            int
	DBDSN           string
	DBMigrate       bool
	RedisURL        string
	JWTAccessTTL    time.Duration
	JWTRefreshTTL   time.Duration
	JWTSecret       string
	AllowOrigins    []string
	LogLevel        string
	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig
	AI              AIConfig
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// AIConfig agrupa credenciais e limites do provedor de IA do diagnóstico.
type AIConfig struct {
	Provider      string
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiKey     string
	GeminiModel   string
	Timeout       time.Duration
	CacheTTL      time.Duration
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.DBDSN = getEnv("DB_DSN", "")
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN obrigatório")
	}

	migrate, err := parseBoolEnv("DB_MIGRATE", true)
	if err != nil {
		return nil, err
	}
	cfg.DBMigrate = migrate

	cfg.RedisURL = getEnv("REDIS_URL", "")
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL obrigatório")
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.JWTAccessTTL = accessTTL

	refreshTTL, err := parseDurationEnv("JWT_REFRESH_TTL", 30*24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWTRefreshTTL = refreshTTL

	cfg.AllowOrigins = splitCSV(getEnv("ALLOW_ORIGINS", ""))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info")))

	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: 10, Burst: 20}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: 10, Burst: 40}

	ai, err := loadAI()
	if err != nil {
		return nil, err
	}
	cfg.AI = ai

	return cfg, nil
}

func loadAI() (AIConfig, error) {
	ai := AIConfig{
		Provider:      strings.ToLower(strings.TrimSpace(getEnv("AI_PROVIDER", "openai"))),
		OpenAIKey:     strings.TrimSpace(getEnv("OPENAI_API_KEY", "")),
		OpenAIModel:   strings.TrimSpace(getEnv("OPENAI_MODEL", "gpt-4o-mini")),
		OpenAIBaseURL: strings.TrimRight(strings.TrimSpace(getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1")), "/"),
		GeminiKey:     strings.TrimSpace(getEnv("GEMINI_API_KEY", "")),
		GeminiModel:   strings.TrimSpace(getEnv("GEMINI_MODEL", "gemini-2.0-flash")),
	}

	switch ai.Provider {
	case "openai", "gemini", "none":
	default:
		return AIConfig{}, errors.New("AI_PROVIDER deve ser openai, gemini ou none")
	}

	timeout, err := parseDurationEnv("AI_TIMEOUT", 45*time.Second)
	if err != nil {
		return AIConfig{}, err
	}
	ai.Timeout = timeout

	cacheTTL, err := parseDurationEnv("DIAGNOSIS_CACHE_TTL", 24*time.Hour)
	if err != nil {
		return AIConfig{}, err
	}
	ai.CacheTTL = cacheTTL

	return ai, nil
}

// DevCookies indica ambiente local, onde cookies dispensam Secure.
func (c *Config) DevCookies() bool {
	for _, origin := range c.AllowOrigins {
		if strings.Contains(origin, "localhost") {
			return true
		}
	}
	return false
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func splitCSV(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	val := strings.TrimSpace(getEnv(key, ""))
	if val == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, errors.New(key + " inválido")
	}
	return b, nil
}
