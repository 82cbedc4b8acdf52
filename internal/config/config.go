package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config содержит конфигурацию сервера
type Config struct {
	Port                 int
	MaxAmount            float64
	MaxIncome            float64
	MaxMonths            int
	MaxRate              float64
	MaxItems             int
	MaxSensitivityPoints int
	MaxScenarios         int
	RateLimitPerMinute   int
	CORSAllowedOrigins   []string
	OTELEndpoint         string
	OTELServiceName      string
	LogLevel             string
	LogPretty            bool
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	// Загружаем .env файл, если он существует (игнорируем ошибку)
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnvInt("PORT", 8000),
		MaxAmount:            getEnvFloat("MAX_AMOUNT", 1e9),
		MaxIncome:            getEnvFloat("MAX_INCOME", 1e8),
		MaxMonths:            getEnvInt("MAX_MONTHS", 600),
		MaxRate:              getEnvFloat("MAX_RATE", 200),
		MaxItems:             getEnvInt("MAX_ITEMS", 200),
		MaxSensitivityPoints: getEnvInt("MAX_SENSITIVITY_POINTS", 101),
		MaxScenarios:         getEnvInt("MAX_SCENARIOS", 10),
		RateLimitPerMinute:   getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		CORSAllowedOrigins:   getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		OTELEndpoint:         getEnvString("OTEL_ENDPOINT", ""),
		OTELServiceName:      getEnvString("OTEL_SERVICE_NAME", "mcp-investment-sim"),
		LogLevel:             getEnvString("LOG_LEVEL", "info"),
		LogPretty:            getEnvBool("LOG_PRETTY", false),
	}

	return cfg, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvList читает список, разделенный запятыми
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
