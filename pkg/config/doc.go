// Package config loads typed configuration from environment variables.
//
// Structs declare their variables with github.com/caarlos0/env tags. Load reads
// an optional .env file (github.com/joho/godotenv) on first use, parses the
// struct, and caches the result per type so every component asking for the
// same config sees the same values:
//
//	type Config struct {
//		Port string `env:"PORT"`
//		Env  string `env:"APP_ENV" envDefault:"development"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// A failed parse is not cached, so a later call can succeed once the
// environment is fixed.
package config
