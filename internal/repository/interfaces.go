package repository

import (
	"context"

	"github.com/google/uuid"

	"memora/internal/domain/community"
	"memora/internal/domain/prompt"
	"memora/internal/domain/report"
	"memora/internal/domain/response"
	"memora/internal/domain/user"
)

type UserRepository interface {
	// EnsureByEmail inserts u unless a user with the same email exists, then
	// returns the stored row.
	EnsureByEmail(ctx context.Context, u *user.User) (user.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	// LockUser takes a row lock on the user until the surrounding transaction ends.
	LockUser(ctx context.Context, id uuid.UUID) error
}

type CommunityRepository interface {
	Create(ctx context.Context, c *community.Community) error
	GetByID(ctx context.Context, id uuid.UUID) (community.Community, error)
	GetBySlug(ctx context.Context, slug string) (community.Community, error)
	List(ctx context.Context, page, limit int) ([]community.Community, int64, error)
	Update(ctx context.Context, c community.Community) error
}

const (
	SortRecent   = "recent"
	SortTrending = "trending"
)

type PromptFilter struct {
	CommunityID *uuid.UUID
	Type        prompt.Type
	Search      string
	// Sort is SortRecent (default) or SortTrending.
	Sort  string
	Page  int
	Limit int
}

type PromptRepository interface {
	Create(ctx context.Context, p *prompt.Prompt) error
	GetByID(ctx context.Context, id uuid.UUID) (prompt.Prompt, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	// GetForShare reads the prompt row under a shared lock.
	GetForShare(ctx context.Context, id uuid.UUID) (prompt.Prompt, error)
	List(ctx context.Context, f PromptFilter) ([]prompt.Prompt, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error

	CountResponses(ctx context.Context, promptIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	CountLikes(ctx context.Context, promptIDs []uuid.UUID) (map[uuid.UUID]int64, error)
	CountByCommunity(ctx context.Context, communityIDs []uuid.UUID) (map[uuid.UUID]int64, error)

	HasLike(ctx context.Context, userID, promptID uuid.UUID) (bool, error)
	AddLike(ctx context.Context, l *prompt.Like) error
	RemoveLike(ctx context.Context, userID, promptID uuid.UUID) error
}

type PollRepository interface {
	GetOption(ctx context.Context, id uuid.UUID) (prompt.PollOption, error)
	// ListOptions returns options ordered by vote count desc, then position.
	ListOptions(ctx context.Context, promptID uuid.UUID) ([]prompt.PollOption, error)
	GetUserVote(ctx context.Context, userID, promptID uuid.UUID) (prompt.PollVote, error)
	ListUserVotes(ctx context.Context, userID, promptID uuid.UUID) ([]prompt.PollVote, error)
	CreateVote(ctx context.Context, v *prompt.PollVote) error
	DeleteVote(ctx context.Context, id uuid.UUID) error
	AdjustVoteCount(ctx context.Context, optionID uuid.UUID, delta int) error
}

type ResponseRepository interface {
	Create(ctx context.Context, r *response.Response) error
	GetByID(ctx context.Context, id uuid.UUID) (response.Response, error)
	GetForShare(ctx context.Context, id uuid.UUID) (response.Response, error)
	GetForUpdate(ctx context.Context, id uuid.UUID) (response.Response, error)
	// ListByPrompt returns every response of a prompt, oldest first, with authors loaded.
	ListByPrompt(ctx context.Context, promptID uuid.UUID) ([]response.Response, error)

	HasUpvote(ctx context.Context, userID, responseID uuid.UUID) (bool, error)
	CreateUpvote(ctx context.Context, u *response.Upvote) error
	DeleteUpvote(ctx context.Context, userID, responseID uuid.UUID) error
	AdjustUpvotes(ctx context.Context, responseID uuid.UUID, delta int) error
	UpvotedBy(ctx context.Context, userID, promptID uuid.UUID) (map[uuid.UUID]bool, error)
}

type ReportRepository interface {
	Create(ctx context.Context, r *report.Report) error
	ListByResource(ctx context.Context, t report.ResourceType, resourceID uuid.UUID) ([]report.Report, error)
}
