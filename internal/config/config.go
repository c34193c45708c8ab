package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                string
	AppEnv                 string
	AppPort                string
	DatabaseURL            string
	RedisURL               string
	NATSURL                string
	JWTSecret              string
	CloudinaryCloudName    string
	CloudinaryAPIKey       string
	CloudinaryAPISecret    string
	CloudinaryUploadFolder string
	CacheTTL               time.Duration
	UploadMaxSizeMB        int
	UploadAllowedExts      []string
	WriteRateLimit         int
	WriteRateWindow        time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CLASSROOM")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Classroom API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("cloudinary.folder", "classroom/submissions")
	v.SetDefault("cache.ttl", "5m")
	v.SetDefault("upload.max_size_mb", 10)
	v.SetDefault("upload.allowed_exts", "pdf,zip,doc,docx,txt")
	v.SetDefault("write.rate_limit", 20)
	v.SetDefault("write.rate_window", "1m")

	ttl, err := time.ParseDuration(v.GetString("cache.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid cache ttl: %w", err)
	}

	window, err := time.ParseDuration(v.GetString("write.rate_window"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid rate window: %w", err)
	}

	cfg := Config{
		AppName:                v.GetString("app.name"),
		AppEnv:                 v.GetString("app.env"),
		AppPort:                v.GetString("app.port"),
		DatabaseURL:            v.GetString("database.url"),
		RedisURL:               v.GetString("redis.url"),
		NATSURL:                v.GetString("nats.url"),
		JWTSecret:              v.GetString("jwt.secret"),
		CloudinaryCloudName:    v.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:       v.GetString("cloudinary.api_key"),
		CloudinaryAPISecret:    v.GetString("cloudinary.api_secret"),
		CloudinaryUploadFolder: v.GetString("cloudinary.folder"),
		CacheTTL:               ttl,
		UploadMaxSizeMB:        v.GetInt("upload.max_size_mb"),
		UploadAllowedExts:      splitExtensions(v.GetString("upload.allowed_exts")),
		WriteRateLimit:         v.GetInt("write.rate_limit"),
		WriteRateWindow:        window,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.UploadMaxSizeMB <= 0 {
		cfg.UploadMaxSizeMB = 10
	}

	return cfg, nil
}

func splitExtensions(raw string) []string {
	parts := strings.Split(raw, ",")
	exts := make([]string, 0, len(parts))
	for _, part := range parts {
		ext := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(part, ".")))
		if ext != "" {
			exts = append(exts, ext)
		}
	}
	return exts
}
