package commands

import (
	"strings"

	"memora/internal/domain/community"
	"memora/internal/domain/user"
)

func validateSlug(slug string) error {
	if err := requireLength("slug", slug, 1, MaxCommunitySlugLen); err != nil {
		return err
	}
	if !community.SlugPattern.MatchString(strings.TrimSpace(slug)) {
		return invalid("slug may only contain lowercase letters, digits and dashes")
	}
	return nil
}

type CreateCommunityCommand struct {
	Actor user.Identity
	Name  string
	Slug  string
}

func (CreateCommunityCommand) CommandType() string {
	return "community.create"
}

func (c CreateCommunityCommand) Validate() error {
	if err := requireLength("name", c.Name, 1, MaxCommunityNameLen); err != nil {
		return err
	}
	return validateSlug(c.Slug)
}

func (c CreateCommunityCommand) IdempotencyKey() string {
	return c.Slug
}

func (c CreateCommunityCommand) ActorIdentity() user.Identity {
	return c.Actor
}

// UpdateCommunityCommand renames the community found by Slug. Empty fields are left unchanged.
type UpdateCommunityCommand struct {
	Actor   user.Identity
	Slug    string
	Name    string
	NewSlug string
}

func (UpdateCommunityCommand) CommandType() string {
	return "community.update"
}

func (c UpdateCommunityCommand) Validate() error {
	if strings.TrimSpace(c.Slug) == "" {
		return invalid("slug is required")
	}
	if c.Name == "" && c.NewSlug == "" {
		return invalid("nothing to update")
	}
	if c.Name != "" {
		if err := requireLength("name", c.Name, 1, MaxCommunityNameLen); err != nil {
			return err
		}
	}
	if c.NewSlug != "" {
		return validateSlug(c.NewSlug)
	}
	return nil
}

func (c UpdateCommunityCommand) IdempotencyKey() string {
	return ""
}

func (c UpdateCommunityCommand) ActorIdentity() user.Identity {
	return c.Actor
}
