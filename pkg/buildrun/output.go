package buildrun

import (
	"context"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

type logKey struct{}

func log(ctx context.Context) *zerolog.Logger {
	logger, ok := ctx.Value(logKey{}).(*zerolog.Logger)
	if !ok {
		return &zlog.Logger
	}

	return logger
}

// WithLogger attaches the given logger to the context
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	return context.WithValue(ctx, logKey{}, logger)
}
