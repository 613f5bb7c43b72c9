package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Output  OutputConfig
	Assets  AssetConfig
	Fonts   FontConfig
	Logging LoggingConfig
	Watch   WatchConfig
}

type OutputConfig struct {
	Dir          string
	PreviewWidth int
}

type AssetConfig struct {
	MaxUploadBytes int64
}

type FontConfig struct {
	// File points at a TTF/OTF to use instead of the embedded typeface.
	// Empty means the built-in bold face.
	File string
}

type LoggingConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

type WatchConfig struct {
	Debounce time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := &Config{
		Output: OutputConfig{
			Dir:          getEnv("STORYFRAME_OUT_DIR", "./exports"),
			PreviewWidth: getEnvAsInt("STORYFRAME_PREVIEW_WIDTH", 360),
		},
		Assets: AssetConfig{
			MaxUploadBytes: getEnvAsInt64("STORYFRAME_MAX_UPLOAD_BYTES", 25*1024*1024), // 25MB
		},
		Fonts: FontConfig{
			File: getEnv("STORYFRAME_FONT_FILE", ""),
		},
		Logging: LoggingConfig{
			Level:      getEnv("STORYFRAME_LOG_LEVEL", "info"),
			File:       getEnv("STORYFRAME_LOG_FILE", ""),
			MaxSizeMB:  getEnvAsInt("STORYFRAME_LOG_MAX_SIZE_MB", 20),
			MaxBackups: getEnvAsInt("STORYFRAME_LOG_MAX_BACKUPS", 3),
		},
		Watch: WatchConfig{
			Debounce: getDuration("STORYFRAME_WATCH_DEBOUNCE", 250*time.Millisecond),
		},
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsInt64(key string, defaultVal int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}
