package commands

import (
	"context"
	"errors"

	"memora/internal/domain/user"
)

type Command interface {
	CommandType() string
	Validate() error
	IdempotencyKey() string
}

// ActorCommand is implemented by commands issued on behalf of a user.
type ActorCommand interface {
	Command
	ActorIdentity() user.Identity
}

type Result struct {
	AggregateID string
	Payload     interface{}
}

type Handler interface {
	Handle(ctx context.Context, cmd Command) (Result, error)
}

type HandlerFunc func(ctx context.Context, cmd Command) (Result, error)

func (f HandlerFunc) Handle(ctx context.Context, cmd Command) (Result, error) {
	return f(ctx, cmd)
}

var ErrHandlerNotFound = errors.New("command handler not found")
