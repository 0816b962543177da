package commands

import (
	"memora/internal/domain/prompt"
	"memora/internal/domain/user"

	"github.com/google/uuid"
)

type CreatePromptCommand struct {
	Actor       user.Identity
	Title       string
	Body        string
	Type        prompt.Type
	Options     []string
	CommunityID *uuid.UUID
}

func (CreatePromptCommand) CommandType() string {
	return "prompt.create"
}

func (c CreatePromptCommand) Validate() error {
	if err := requireLength("title", c.Title, 1, MaxTitleLength); err != nil {
		return err
	}
	if err := requireLength("body", c.Body, 0, MaxBodyLength); err != nil {
		return err
	}
	if !c.Type.Valid() {
		return invalid("type must be TEXT or POLL")
	}
	if c.CommunityID != nil {
		if err := requireID("community_id", *c.CommunityID); err != nil {
			return err
		}
	}

	if c.Type == prompt.TypeText {
		if len(c.Options) > 0 {
			return invalid("text prompts cannot have poll options")
		}
		return nil
	}
	if len(c.Options) < prompt.MinPollOptions || len(c.Options) > prompt.MaxPollOptions {
		return invalid("polls need between %d and %d options", prompt.MinPollOptions, prompt.MaxPollOptions)
	}
	for _, opt := range c.Options {
		if err := requireLength("option", opt, 1, MaxOptionLength); err != nil {
			return err
		}
	}
	return nil
}

func (c CreatePromptCommand) IdempotencyKey() string {
	return ""
}

func (c CreatePromptCommand) ActorIdentity() user.Identity {
	return c.Actor
}

type DeletePromptCommand struct {
	Actor    user.Identity
	PromptID uuid.UUID
}

func (DeletePromptCommand) CommandType() string {
	return "prompt.delete"
}

func (c DeletePromptCommand) Validate() error {
	return requireID("prompt_id", c.PromptID)
}

func (c DeletePromptCommand) IdempotencyKey() string {
	return c.PromptID.String()
}

func (c DeletePromptCommand) ActorIdentity() user.Identity {
	return c.Actor
}

type ToggleLikeCommand struct {
	Actor    user.Identity
	PromptID uuid.UUID
}

func (ToggleLikeCommand) CommandType() string {
	return "prompt.like"
}

func (c ToggleLikeCommand) Validate() error {
	return requireID("prompt_id", c.PromptID)
}

func (c ToggleLikeCommand) IdempotencyKey() string {
	return ""
}

func (c ToggleLikeCommand) ActorIdentity() user.Identity {
	return c.Actor
}
