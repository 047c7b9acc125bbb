package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds everything the service reads from the environment.
type Config struct {
	Port            string
	LogMode         string
	DatabaseURL     string
	DataPath        string
	SolverBaseURL   string
	ScheduleBaseURL string
	PollInterval    time.Duration
	JWTSecret       string
	APIMasterSecret string
	AdminUsername   string
	AdminPassword   string
}

// Load reads the environment (and a .env file if one exists) into a Config.
func Load() Config {
	// Try root and parent directories for flexibility
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			break
		}
	}

	cfg := Config{
		Port:            getenv("PORT", "8000"),
		LogMode:         getenv("LOG_MODE", "dev"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		DataPath:        getenv("DATA_PATH", "gateway.db"),
		SolverBaseURL:   getenv("SOLVER_BASE_URL", "http://localhost:8080"),
		ScheduleBaseURL: getenv("SCHEDULE_API_BASE_URL", "http://localhost:8081"),
		PollInterval:    3 * time.Second,
		JWTSecret:       os.Getenv("JWT_SECRET"),
		APIMasterSecret: os.Getenv("API_MASTER_SECRET"),
		AdminUsername:   getenv("ADMIN_USERNAME", "admin"),
		AdminPassword:   getenv("ADMIN_PASSWORD", "admin123"),
	}

	if v := os.Getenv("POLL_INTERVAL_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			cfg.PollInterval = time.Duration(secs) * time.Second
		}
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
