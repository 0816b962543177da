package httpdto

import (
	"time"

	"memora/internal/domain/prompt"

	"github.com/google/uuid"
)

// CreatePromptRequest is used for POST /api/prompts
type CreatePromptRequest struct {
	Title       string   `json:"title" binding:"required"`
	Body        string   `json:"body"`
	Type        string   `json:"type" binding:"required"` // "TEXT" or "POLL"
	CommunityID string   `json:"community_id"`
	Options     []string `json:"options"`
}

// VoteRequest is used for POST /api/prompts/:id/vote
type VoteRequest struct {
	OptionID string `json:"option_id" binding:"required"`
}

type PollOptionDTO struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Position  int    `json:"position"`
	VoteCount int    `json:"vote_count"`
}

type PromptDTO struct {
	ID            string          `json:"id"`
	Title         string          `json:"title"`
	Body          string          `json:"body,omitempty"`
	Type          string          `json:"type"`
	Author        *AuthorDTO      `json:"author,omitempty"`
	Community     *CommunityDTO   `json:"community,omitempty"`
	PollOptions   []PollOptionDTO `json:"poll_options"`
	TotalVotes    int             `json:"total_votes"`
	ResponseCount int64           `json:"response_count"`
	LikeCount     int64           `json:"like_count"`
	CreatedAt     string          `json:"created_at"`
}

// PromptDetailDTO adds the thread and the caller's own state to a prompt.
type PromptDetailDTO struct {
	PromptDTO
	BodyHTML  string             `json:"body_html"`
	Responses []*ResponseNodeDTO `json:"responses"`
	UserVote  *string            `json:"user_vote"`
	Liked     bool               `json:"liked"`
}

type PromptListResponse struct {
	Prompts    []PromptDTO `json:"prompts"`
	Pagination Pagination  `json:"pagination"`
}

// PollResultDTO is returned after a vote is cast or retracted.
type PollResultDTO struct {
	Options    []PollOptionDTO `json:"options"`
	TotalVotes int             `json:"total_votes"`
}

type LikeResultDTO struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

func FromPollOptions(options []prompt.PollOption) []PollOptionDTO {
	dtos := make([]PollOptionDTO, len(options))
	for i, o := range options {
		dtos[i] = PollOptionDTO{ID: o.ID.String(), Text: o.Text, Position: o.Position, VoteCount: o.VoteCount}
	}
	return dtos
}

func FromPollResult(options []prompt.PollOption) PollResultDTO {
	return PollResultDTO{Options: FromPollOptions(options), TotalVotes: prompt.TotalVotes(options)}
}

func FromPrompt(p prompt.Prompt) PromptDTO {
	dto := PromptDTO{
		ID:            p.ID.String(),
		Title:         p.Title,
		Body:          p.Body,
		Type:          string(p.Type),
		Author:        FromAuthor(p.Author),
		PollOptions:   FromPollOptions(p.PollOptions),
		TotalVotes:    prompt.TotalVotes(p.PollOptions),
		ResponseCount: p.ResponseCount,
		LikeCount:     p.LikeCount,
		CreatedAt:     p.CreatedAt.UTC().Format(time.RFC3339),
	}
	if p.Community != nil {
		c := FromCommunity(*p.Community)
		dto.Community = &c
	}
	return dto
}

func FromPromptSlice(prompts []prompt.Prompt) []PromptDTO {
	dtos := make([]PromptDTO, len(prompts))
	for i, p := range prompts {
		dtos[i] = FromPrompt(p)
	}
	return dtos
}

func optionalID(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
