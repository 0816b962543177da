package commands

import (
	"memora/internal/domain/user"

	"github.com/google/uuid"
)

type CastVoteCommand struct {
	Actor        user.Identity
	PromptID     uuid.UUID
	PollOptionID uuid.UUID
}

func (CastVoteCommand) CommandType() string {
	return "poll.vote"
}

func (c CastVoteCommand) Validate() error {
	if err := requireID("prompt_id", c.PromptID); err != nil {
		return err
	}
	return requireID("poll_option_id", c.PollOptionID)
}

func (c CastVoteCommand) IdempotencyKey() string {
	return c.PromptID.String() + ":" + c.PollOptionID.String() + ":" + c.Actor.Email
}

func (c CastVoteCommand) ActorIdentity() user.Identity {
	return c.Actor
}

type RetractVoteCommand struct {
	Actor    user.Identity
	PromptID uuid.UUID
}

func (RetractVoteCommand) CommandType() string {
	return "poll.retract"
}

func (c RetractVoteCommand) Validate() error {
	return requireID("prompt_id", c.PromptID)
}

func (c RetractVoteCommand) IdempotencyKey() string {
	return c.PromptID.String() + ":" + c.Actor.Email
}

func (c RetractVoteCommand) ActorIdentity() user.Identity {
	return c.Actor
}
