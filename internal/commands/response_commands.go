package commands

import (
	"memora/internal/domain/user"

	"github.com/google/uuid"
)

type CreateResponseCommand struct {
	Actor               user.Identity
	PromptID            uuid.UUID
	ParentID            *uuid.UUID
	Text                string
	IdempotencyKeyValue string
}

func (CreateResponseCommand) CommandType() string {
	return "response.create"
}

func (c CreateResponseCommand) Validate() error {
	if err := requireID("prompt_id", c.PromptID); err != nil {
		return err
	}
	if c.ParentID != nil {
		if err := requireID("parent_id", *c.ParentID); err != nil {
			return err
		}
	}
	return requireLength("text", c.Text, 1, MaxResponseLength)
}

func (c CreateResponseCommand) IdempotencyKey() string {
	return c.IdempotencyKeyValue
}

func (c CreateResponseCommand) ActorIdentity() user.Identity {
	return c.Actor
}

type ToggleUpvoteCommand struct {
	Actor      user.Identity
	ResponseID uuid.UUID
}

func (ToggleUpvoteCommand) CommandType() string {
	return "response.upvote"
}

func (c ToggleUpvoteCommand) Validate() error {
	return requireID("response_id", c.ResponseID)
}

func (c ToggleUpvoteCommand) IdempotencyKey() string {
	return ""
}

func (c ToggleUpvoteCommand) ActorIdentity() user.Identity {
	return c.Actor
}
