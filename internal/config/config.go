package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration
type Config struct {
	Port           string
	DBPath         string
	JWTSecret      string
	WeatherBaseURL string
	RateLimit      int
	RateWindow     time.Duration
	GinMode        string
}

// Load reads configuration from the environment with sane defaults
func Load() *Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = ":8080"
	}

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./data/accidents.db"
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "your-secret-key-change-in-production"
	}

	weatherBaseURL := os.Getenv("WEATHER_BASE_URL")
	if weatherBaseURL == "" {
		weatherBaseURL = "https://api.open-meteo.com/v1/forecast"
	}

	rateLimit := 120
	if raw := os.Getenv("RATE_LIMIT"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			rateLimit = v
		}
	}

	return &Config{
		Port:           port,
		DBPath:         dbPath,
		JWTSecret:      jwtSecret,
		WeatherBaseURL: weatherBaseURL,
		RateLimit:      rateLimit,
		RateWindow:     time.Minute,
		GinMode:        os.Getenv("GIN_MODE"),
	}
}
