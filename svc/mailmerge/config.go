package mailmerge

import "time"

// DefaultPrompt is used when a preview request carries no prompt.
const DefaultPrompt = "Write a friendly intro about {{Company}}"

// Config holds orchestration settings.
type Config struct {
	PreviewTTL        time.Duration `env:"PREVIEW_TTL" envDefault:"24h"`
	GenerationTimeout time.Duration `env:"GENERATION_TIMEOUT" envDefault:"60s"`
	DispatchTimeout   time.Duration `env:"DISPATCH_TIMEOUT" envDefault:"15s"`
	DefaultPrompt     string        `env:"DEFAULT_PROMPT" envDefault:"Write a friendly intro about {{Company}}"`
}

func defaultConfig() Config {
	return Config{
		PreviewTTL:        24 * time.Hour,
		GenerationTimeout: 60 * time.Second,
		DispatchTimeout:   15 * time.Second,
		DefaultPrompt:     DefaultPrompt,
	}
}

// withDefaults fills zero fields so a partially populated Config still works.
func (c Config) withDefaults() Config {
	d := defaultConfig()
	if c.PreviewTTL <= 0 {
		c.PreviewTTL = d.PreviewTTL
	}
	if c.GenerationTimeout <= 0 {
		c.GenerationTimeout = d.GenerationTimeout
	}
	if c.DispatchTimeout <= 0 {
		c.DispatchTimeout = d.DispatchTimeout
	}
	if c.DefaultPrompt == "" {
		c.DefaultPrompt = d.DefaultPrompt
	}
	return c
}
