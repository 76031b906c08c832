// Package config provides centralized configuration for the blog server.
package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Environments accepted in APP_ENV.
const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

// Config holds all application configuration values.
type Config struct {
	Port            string        // HTTP listen address (e.g., ":8080")
	DBPath          string        // Path to the SQLite database file
	DBURL           string        // Remote libsql URL; overrides DBPath when set
	PhotoDir        string        // Directory holding uploaded photos
	UploadTmpDir    string        // Staging directory for uploads before the final move
	MaxUploadBytes  int64         // Maximum multipart upload size in bytes
	IndexPath       string        // Optional static landing page served at /index.html
	Env             string        // local, dev or prod
	LogLevel        string        // debug, info, warn or error
	ShutdownTimeout time.Duration // Grace period for in-flight requests on shutdown
}

// Load reads configuration from a .env file (if present) and the
// environment, falling back to defaults.
func Load() Config {
	// Missing .env is fine, the environment is authoritative.
	godotenv.Load()

	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("port", ":8080")
	v.SetDefault("db_path", "myblog.db")
	v.SetDefault("db_url", "")
	v.SetDefault("photo_dir", "photos")
	v.SetDefault("upload_tmp_dir", os.TempDir())
	v.SetDefault("max_upload_bytes", int64(32<<20))
	v.SetDefault("index_path", "index.html")
	v.SetDefault("app_env", EnvLocal)
	v.SetDefault("log_level", "info")
	v.SetDefault("shutdown_timeout", 10*time.Second)

	return v
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) Config {
	maxUpload := v.GetInt64("max_upload_bytes")
	if maxUpload <= 0 {
		maxUpload = 32 << 20
	}

	shutdown := v.GetDuration("shutdown_timeout")
	if shutdown <= 0 {
		shutdown = 10 * time.Second
	}

	env := v.GetString("app_env")
	switch env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		env = EnvLocal
	}

	return Config{
		Port:            v.GetString("port"),
		DBPath:          v.GetString("db_path"),
		DBURL:           v.GetString("db_url"),
		PhotoDir:        v.GetString("photo_dir"),
		UploadTmpDir:    v.GetString("upload_tmp_dir"),
		MaxUploadBytes:  maxUpload,
		IndexPath:       v.GetString("index_path"),
		Env:             env,
		LogLevel:        v.GetString("log_level"),
		ShutdownTimeout: shutdown,
	}
}
