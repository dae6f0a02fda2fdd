// Package config loads environment configuration. A .env file is honored
// when present; system environment variables always win.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      int
	LogLevel  string
	JWTSecret string

	// Store selection: "sqlite" (default), "mongo", or "memory".
	StoreDriver string
	SQLitePath  string
	MongoURI    string
	MongoDB     string

	// Image hosting collaborator; uploads are disabled when the key is empty.
	ImgBBKey string
}

// Load reads configuration from the environment. JWT_SECRET is the only
// hard requirement; everything else has a workable default.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		Port:        8080,
		LogLevel:    getenv("LOG_LEVEL", "info"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		StoreDriver: getenv("STORE_DRIVER", "sqlite"),
		SQLitePath:  getenv("SQLITE_PATH", "canteen.db"),
		MongoURI:    os.Getenv("MONGO_URI"),
		MongoDB:     getenv("MONGO_DB", "canteen"),
		ImgBBKey:    os.Getenv("IMGBB_API_KEY"),
	}
	if p := os.Getenv("PORT"); p != "" {
		if _, err := fmt.Sscanf(p, "%d", &cfg.Port); err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", p, err)
		}
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	if cfg.StoreDriver == "mongo" && cfg.MongoURI == "" {
		return nil, fmt.Errorf("STORE_DRIVER=mongo requires MONGO_URI")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
