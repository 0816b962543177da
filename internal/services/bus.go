package services

import (
	"context"
	"fmt"

	"memora/internal/commands"
	memora_errors "memora/pkg/errors"
)

func ensureBus(bus *commands.Bus) *commands.Bus {
	if bus == nil {
		return commands.NewBus(commands.RequireActor())
	}
	return bus
}

// handle adapts a typed command function to the bus handler signature.
func handle[C commands.Command](fn func(ctx context.Context, cmd C) (commands.Result, error)) commands.Handler {
	return commands.HandlerFunc(func(ctx context.Context, cmd commands.Command) (commands.Result, error) {
		typed, ok := cmd.(C)
		if !ok {
			return commands.Result{}, memora_errors.ErrInvalidInput
		}
		return fn(ctx, typed)
	})
}

// execute dispatches cmd and unwraps the typed payload.
func execute[T any](ctx context.Context, bus *commands.Bus, cmd commands.Command) (T, error) {
	var zero T
	res, err := bus.Execute(ctx, cmd)
	if err != nil {
		return zero, err
	}
	out, ok := res.Payload.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected payload %T for %s", res.Payload, cmd.CommandType())
	}
	return out, nil
}
