package httpdto

import (
	"time"

	"memora/internal/domain/community"
)

// CreateCommunityRequest is used for POST /api/communities
type CreateCommunityRequest struct {
	Name string `json:"name" binding:"required"`
	Slug string `json:"slug" binding:"required"`
}

// UpdateCommunityRequest is used for PATCH /api/communities/:slug
type UpdateCommunityRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type CommunityDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	PromptCount int64  `json:"prompt_count"`
	CreatedAt   string `json:"created_at"`
}

type CommunityListResponse struct {
	Communities []CommunityDTO `json:"communities"`
	Pagination  Pagination     `json:"pagination"`
}

func FromCommunity(c community.Community) CommunityDTO {
	return CommunityDTO{
		ID:          c.ID.String(),
		Name:        c.Name,
		Slug:        c.Slug,
		PromptCount: c.PromptCount,
		CreatedAt:   c.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func FromCommunitySlice(communities []community.Community) []CommunityDTO {
	dtos := make([]CommunityDTO, len(communities))
	for i, c := range communities {
		dtos[i] = FromCommunity(c)
	}
	return dtos
}
