package httpserver

import (
	"strconv"
	"time"
)

const defaultShutdownTimeout = 10 * time.Second

// DefaultPort is used when neither HTTP_ADDR nor a numeric PORT is set.
const DefaultPort = "10000"

type Config struct {
	Addr            string        `env:"HTTP_ADDR"`                             // Addr takes precedence over Port.
	Port            string        `env:"PORT"`                                  // Port as injected by hosting platforms.
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT" envDefault:"30s"`    // ReadTimeout covers reading the entire request, uploads included.
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT" envDefault:"90s"`   // WriteTimeout must outlast a preview generation.
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT" envDefault:"120s"`   // IdleTimeout for keep-alive connections.
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"` // ShutdownTimeout bounds graceful shutdown.
}

// ListenAddr resolves the listen address: Addr if set, ":PORT" if Port is
// numeric, ":10000" otherwise.
func (c Config) ListenAddr() string {
	if c.Addr != "" {
		return c.Addr
	}
	if n, err := strconv.Atoi(c.Port); err == nil && n > 0 && n <= 65535 {
		return ":" + strconv.Itoa(n)
	}
	return ":" + DefaultPort
}
