package database

import (
	"errors"
	"fmt"
	"log"

	"memora/internal/domain/community"
	"memora/internal/domain/prompt"
	"memora/internal/domain/response"
	"memora/internal/domain/user"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedResult holds the result of the seeding operation
type SeedResult struct {
	Users       []*user.User
	Community   *community.Community
	Prompts     []*prompt.Prompt
	Responses   int
	AlreadyDone bool
}

var seedUsers = []struct {
	email string
	name  string
}{
	{"alice@memora.dev", "Alice Johnson"},
	{"bob@memora.dev", "Bob Smith"},
	{"charlie@memora.dev", "Charlie Brown"},
}

const seedCommunitySlug = "memora-lounge"

// Seed inserts a small demo dataset: three members, one community, a text
// prompt with a short thread and a poll. It is a no-op when the demo
// community already exists.
func Seed(db *gorm.DB) (*SeedResult, error) {
	result := &SeedResult{}

	var existing community.Community
	err := db.Where("slug = ?", seedCommunitySlug).First(&existing).Error
	if err == nil {
		log.Println("Seed data already present, skipping")
		result.AlreadyDone = true
		result.Community = &existing
		return result, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, su := range seedUsers {
			u := &user.User{Email: su.email, Name: su.name, AuthProvider: "seed"}
			if err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "email"}}, DoNothing: true}).Create(u).Error; err != nil {
				return fmt.Errorf("seed user %s: %w", su.email, err)
			}
			if err := tx.Where("email = ?", su.email).First(u).Error; err != nil {
				return err
			}
			result.Users = append(result.Users, u)
		}
		alice, bob, charlie := result.Users[0], result.Users[1], result.Users[2]

		lounge := &community.Community{Name: "Memora Lounge", Slug: seedCommunitySlug}
		if err := tx.Create(lounge).Error; err != nil {
			return fmt.Errorf("seed community: %w", err)
		}
		result.Community = lounge

		story := &prompt.Prompt{
			Title:       "What is your earliest memory?",
			Body:        "Share the **first** thing you can remember.",
			Type:        prompt.TypeText,
			AuthorID:    alice.ID,
			CommunityID: &lounge.ID,
		}
		if err := tx.Create(story).Error; err != nil {
			return fmt.Errorf("seed text prompt: %w", err)
		}

		root := &response.Response{Text: "Watching snow fall from my grandmother's kitchen.", AuthorID: bob.ID, PromptID: story.ID, UpvotesCount: 1}
		if err := tx.Create(root).Error; err != nil {
			return err
		}
		reply := &response.Response{Text: "That sounds peaceful.", AuthorID: charlie.ID, PromptID: story.ID, ParentID: &root.ID, Depth: 1}
		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		if err := tx.Create(&response.Upvote{UserID: alice.ID, ResponseID: root.ID}).Error; err != nil {
			return err
		}
		result.Responses = 2

		poll := &prompt.Prompt{
			Title:    "Best season for a walk?",
			Type:     prompt.TypePoll,
			AuthorID: bob.ID,
			PollOptions: []prompt.PollOption{
				{Text: "Spring", Position: 0},
				{Text: "Summer", Position: 1},
				{Text: "Autumn", Position: 2, VoteCount: 1},
				{Text: "Winter", Position: 3},
			},
		}
		if err := tx.Create(poll).Error; err != nil {
			return fmt.Errorf("seed poll: %w", err)
		}
		autumn := poll.PollOptions[2]
		if err := tx.Create(&prompt.PollVote{UserID: charlie.ID, PromptID: poll.ID, PollOptionID: autumn.ID}).Error; err != nil {
			return err
		}

		result.Prompts = []*prompt.Prompt{story, poll}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("Seeded %d users, %d prompts, %d responses", len(result.Users), len(result.Prompts), result.Responses)
	return result, nil
}
