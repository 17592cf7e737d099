package main

import (
	"fmt"
	"time"
)

const (
	storageMongo    = "mongo"
	storageRedis    = "redis"
	storagePostgres = "postgres"
	storageMemory   = "memory"

	providerPostmark = "postmark"
	providerBrevo    = "brevo"
	providerDev      = "dev"
)

type appConfig struct {
	AppEnv             string        `env:"APP_ENV" envDefault:"development"`
	AppName            string        `env:"APP_NAME" envDefault:"mailmerge"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	PreviewStorage     string        `env:"PREVIEW_STORAGE" envDefault:"mongo"`
	EmailProvider      string        `env:"EMAIL_PROVIDER" envDefault:"postmark"`
	EmailDevDir        string        `env:"EMAIL_DEV_DIR" envDefault:"./tmp/emails"`
	SweepInterval      time.Duration `env:"PREVIEW_SWEEP_INTERVAL" envDefault:"1h"`
	TrustedIPHeaders   []string      `env:"TRUSTED_IP_HEADERS" envSeparator:"," envDefault:"X-Forwarded-For,X-Real-IP"`
}

func (c appConfig) validate() error {
	switch c.PreviewStorage {
	case storageMongo, storageRedis, storagePostgres, storageMemory:
	default:
		return fmt.Errorf("unknown PREVIEW_STORAGE %q", c.PreviewStorage)
	}
	switch c.EmailProvider {
	case providerPostmark, providerBrevo, providerDev:
	default:
		return fmt.Errorf("unknown EMAIL_PROVIDER %q", c.EmailProvider)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("PREVIEW_SWEEP_INTERVAL must be positive, got %s", c.SweepInterval)
	}
	return nil
}
