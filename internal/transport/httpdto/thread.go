package httpdto

import (
	"time"

	"memora/internal/domain/response"

	"github.com/google/uuid"
)

// CreateResponseRequest is used for POST /api/responses
type CreateResponseRequest struct {
	PromptID string  `json:"prompt_id" binding:"required"`
	Text     string  `json:"text" binding:"required"`
	ParentID *string `json:"parent_id"`
}

type ResponseNodeDTO struct {
	ID           string             `json:"id"`
	Text         string             `json:"text"`
	Author       *AuthorDTO         `json:"author,omitempty"`
	PromptID     string             `json:"prompt_id"`
	ParentID     *string            `json:"parent_id"`
	Depth        int                `json:"depth"`
	UpvotesCount int                `json:"upvotes_count"`
	Upvoted      bool               `json:"upvoted"`
	CreatedAt    string             `json:"created_at"`
	Replies      []*ResponseNodeDTO `json:"replies"`
}

type UpvoteResultDTO struct {
	Upvoted  bool `json:"upvoted"`
	NewCount int  `json:"new_count"`
}

func FromResponse(r *response.Response, upvoted map[uuid.UUID]bool) *ResponseNodeDTO {
	node := &ResponseNodeDTO{
		ID:           r.ID.String(),
		Text:         r.Text,
		Author:       FromAuthor(r.Author),
		PromptID:     r.PromptID.String(),
		ParentID:     optionalID(r.ParentID),
		Depth:        r.Depth,
		UpvotesCount: r.UpvotesCount,
		Upvoted:      upvoted[r.ID],
		CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
		Replies:      FromResponseTree(r.Replies, upvoted),
	}
	return node
}

// FromResponseTree converts a tree, marking nodes the caller has upvoted.
// upvoted may be nil.
func FromResponseTree(tree []*response.Response, upvoted map[uuid.UUID]bool) []*ResponseNodeDTO {
	nodes := make([]*ResponseNodeDTO, len(tree))
	for i, r := range tree {
		nodes[i] = FromResponse(r, upvoted)
	}
	return nodes
}
