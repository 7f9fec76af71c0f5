package util

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogFromContext returns the request scoped logger stored in ctx, falling back
// to the global logger.
func LogFromContext(ctx context.Context) *zerolog.Logger {
	l := log.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		l = &log.Logger
	}

	return l
}

// ContextWithComponent attaches a logger tagged with component to ctx.
func ContextWithComponent(ctx context.Context, component string) context.Context {
	l := LogFromContext(ctx).With().Str("component", component).Logger()
	return l.WithContext(ctx)
}
