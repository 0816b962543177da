package services

import (
	"context"
	"time"

	"memora/pkg/logger"
)

const defaultTimeout = 5 * time.Second

// Options carries the collaborators shared by every service.
type Options struct {
	Clock   Clock
	Timeout time.Duration
	Logger  *logger.Logger
	Policy  *ContentPolicy
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = SystemClock()
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.Logger == nil {
		o.Logger = logger.GetGlobalLogger()
	}
	if o.Policy == nil {
		o.Policy = NewContentPolicy()
	}
	return o
}

// withTimeout bounds one persistence operation.
func (o Options) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, o.Timeout)
}
