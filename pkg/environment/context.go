package environment

import (
	"context"
	"strings"
)

// Environment is the deployment environment the process runs in.
type Environment string

const (
	Development Environment = "development"
	Production  Environment = "production"
	Staging     Environment = "staging"
)

// Parse normalises s, accepting the short forms "dev", "prod" and "stage".
// Anything unrecognised is returned lower-cased as a custom environment;
// an empty string yields Development.
func Parse(s string) Environment {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "", "dev", string(Development):
		return Development
	case "prod", string(Production):
		return Production
	case "stage", string(Staging):
		return Staging
	default:
		return Environment(v)
	}
}

func (e Environment) String() string {
	return string(e)
}

type contextKey struct{}

// WithContext stores env in ctx.
func WithContext(ctx context.Context, env Environment) context.Context {
	return context.WithValue(ctx, contextKey{}, env)
}

// FromContext returns the environment stored in ctx, or "".
func FromContext(ctx context.Context) Environment {
	if ctx == nil {
		return ""
	}
	env, _ := ctx.Value(contextKey{}).(Environment)
	return env
}

func IsProduction(ctx context.Context) bool {
	return FromContext(ctx) == Production
}

func IsDevelopment(ctx context.Context) bool {
	return FromContext(ctx) == Development
}
