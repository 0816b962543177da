package services

import (
	"context"
	"errors"
	"testing"

	"memora/internal/commands"
	"memora/internal/domain/prompt"
	"memora/internal/repository"
	memora_errors "memora/pkg/errors"
)

func TestCommunityLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ada := identity("ada")
	ctx := context.Background()

	c, err := env.communities.Create(ctx, commands.CreateCommunityCommand{Actor: ada, Name: "Night Owls", Slug: "night-owls"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := env.communities.Create(ctx, commands.CreateCommunityCommand{Actor: ada, Name: "Again", Slug: "night-owls"}); !errors.Is(err, memora_errors.ErrConflict) {
		t.Errorf("expected Conflict for duplicate slug, got %v", err)
	}
	if _, err := env.communities.Create(ctx, commands.CreateCommunityCommand{Actor: ada, Name: "Bad", Slug: "Bad Slug"}); !errors.Is(err, memora_errors.ErrInvalidInput) {
		t.Errorf("expected InvalidInput for malformed slug, got %v", err)
	}

	_, err = env.prompts.Create(ctx, commands.CreatePromptCommand{Actor: ada, Title: "Late shows", Type: prompt.TypeText, CommunityID: &c.ID})
	if err != nil {
		t.Fatal(err)
	}
	env.textPrompt(t, ada, "Elsewhere")

	got, err := env.communities.GetBySlug(ctx, "night-owls")
	if err != nil {
		t.Fatal(err)
	}
	if got.PromptCount != 1 {
		t.Errorf("expected 1 prompt in community, got %d", got.PromptCount)
	}

	page, err := env.communities.Prompts(ctx, "night-owls", repository.PromptFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if page.Total != 1 || page.Prompts[0].Title != "Late shows" {
		t.Errorf("unexpected community prompts %+v", page.Prompts)
	}
	if _, err := env.communities.Prompts(ctx, "nobody-home", repository.PromptFilter{}); !errors.Is(err, memora_errors.ErrNotFound) {
		t.Errorf("expected NotFound for unknown slug, got %v", err)
	}

	updated, err := env.communities.Update(ctx, commands.UpdateCommunityCommand{Actor: ada, Slug: "night-owls", Name: "Owls", NewSlug: "owls"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Owls" || updated.Slug != "owls" || updated.PromptCount != 1 {
		t.Errorf("unexpected update result %+v", updated)
	}

	if _, err := env.communities.Create(ctx, commands.CreateCommunityCommand{Actor: ada, Name: "Larks", Slug: "larks"}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.communities.Update(ctx, commands.UpdateCommunityCommand{Actor: ada, Slug: "larks", NewSlug: "owls"}); !errors.Is(err, memora_errors.ErrConflict) {
		t.Errorf("expected Conflict when renaming onto a taken slug, got %v", err)
	}

	list, err := env.communities.List(ctx, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if list.Total != 2 || list.Communities[0].Slug != "larks" {
		t.Errorf("expected newest community first, got %+v", list.Communities)
	}
}
