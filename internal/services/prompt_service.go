package services

import (
	"context"
	"errors"
	"fmt"

	"memora/internal/commands"
	"memora/internal/domain/prompt"
	"memora/internal/domain/response"
	"memora/internal/domain/user"
	"memora/internal/repository"
	memora_errors "memora/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type PromptPage struct {
	Prompts []prompt.Prompt
	Total   int64
	Page    int
	Limit   int
}

// PromptDetail is a prompt with everything the detail view renders.
type PromptDetail struct {
	Prompt    prompt.Prompt
	BodyHTML  string
	Responses []*response.Response

	// Viewer state, only set for authenticated reads
	UserVoteOptionID *uuid.UUID
	Liked            bool
	Upvoted          map[uuid.UUID]bool
}

type LikeResult struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

type PromptService struct {
	db      *gorm.DB
	threads *ThreadService
	polls   *PollService
	bus     *commands.Bus
	opts    Options
}

func NewPromptService(db *gorm.DB, threads *ThreadService, polls *PollService, bus *commands.Bus, opts Options) *PromptService {
	svc := &PromptService{db: db, threads: threads, polls: polls, bus: ensureBus(bus), opts: opts.withDefaults()}
	svc.RegisterHandlers(svc.bus)
	return svc
}

func (s *PromptService) RegisterHandlers(bus *commands.Bus) {
	bus.Register(commands.CreatePromptCommand{}.CommandType(), handle(s.executeCreate))
	bus.Register(commands.DeletePromptCommand{}.CommandType(), handle(s.executeDelete))
	bus.Register(commands.ToggleLikeCommand{}.CommandType(), handle(s.executeToggleLike))
}

func (s *PromptService) List(ctx context.Context, f repository.PromptFilter) (PromptPage, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	repo := repository.NewPromptRepository(s.db)
	prompts, total, err := repo.List(ctx, f)
	if err != nil {
		return PromptPage{}, err
	}
	if err := s.fillCounts(ctx, repo, prompts); err != nil {
		return PromptPage{}, err
	}

	page := PromptPage{Prompts: prompts, Total: total, Page: f.Page, Limit: f.Limit}
	if page.Page < 1 {
		page.Page = 1
	}
	if page.Limit < 1 || page.Limit > 100 {
		page.Limit = 20
	}
	return page, nil
}

func (s *PromptService) fillCounts(ctx context.Context, repo repository.PromptRepository, prompts []prompt.Prompt) error {
	ids := make([]uuid.UUID, len(prompts))
	for i := range prompts {
		ids[i] = prompts[i].ID
	}
	responses, err := repo.CountResponses(ctx, ids)
	if err != nil {
		return err
	}
	likes, err := repo.CountLikes(ctx, ids)
	if err != nil {
		return err
	}
	for i := range prompts {
		prompts[i].ResponseCount = responses[prompts[i].ID]
		prompts[i].LikeCount = likes[prompts[i].ID]
	}
	return nil
}

// Get loads a prompt with its response tree. viewer may be nil.
func (s *PromptService) Get(ctx context.Context, id uuid.UUID, viewer *user.Identity) (PromptDetail, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	repo := repository.NewPromptRepository(s.db)
	p, err := repo.GetByID(ctx, id)
	if err != nil {
		return PromptDetail{}, fmt.Errorf("prompt %s: %w", id, err)
	}
	one := []prompt.Prompt{p}
	if err := s.fillCounts(ctx, repo, one); err != nil {
		return PromptDetail{}, err
	}

	detail := PromptDetail{Prompt: one[0], BodyHTML: s.opts.Policy.RenderBody(p.Body), Responses: []*response.Response{}}
	if !p.IsPoll() {
		tree, err := s.threads.BuildTree(ctx, id)
		if err != nil {
			return PromptDetail{}, err
		}
		detail.Responses = tree
	}

	if viewer == nil || !viewer.Valid() {
		return detail, nil
	}
	u, err := repository.NewUserRepository(s.db).GetUserByEmail(ctx, normalizeEmail(viewer.Email))
	if errors.Is(err, memora_errors.ErrNotFound) {
		return detail, nil
	}
	if err != nil {
		return PromptDetail{}, err
	}

	if p.IsPoll() {
		if detail.UserVoteOptionID, err = s.polls.UserVote(ctx, id, u.ID); err != nil {
			return PromptDetail{}, err
		}
	} else {
		if detail.Upvoted, err = repository.NewResponseRepository(s.db).UpvotedBy(ctx, u.ID, id); err != nil {
			return PromptDetail{}, err
		}
	}
	if detail.Liked, err = repo.HasLike(ctx, u.ID, id); err != nil {
		return PromptDetail{}, err
	}
	return detail, nil
}

func (s *PromptService) Create(ctx context.Context, cmd commands.CreatePromptCommand) (prompt.Prompt, error) {
	return execute[prompt.Prompt](ctx, s.bus, cmd)
}

func (s *PromptService) executeCreate(ctx context.Context, cmd commands.CreatePromptCommand) (commands.Result, error) {
	title := s.opts.Policy.PlainText(cmd.Title)
	if title == "" {
		return commands.Result{}, fmt.Errorf("%w: title is empty after sanitizing", memora_errors.ErrInvalidInput)
	}
	now := s.opts.Clock()
	p := prompt.Prompt{
		Title:       title,
		Body:        s.opts.Policy.PlainText(cmd.Body),
		Type:        cmd.Type,
		CommunityID: cmd.CommunityID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	for i, text := range cmd.Options {
		clean := s.opts.Policy.PlainText(text)
		if clean == "" {
			return commands.Result{}, fmt.Errorf("%w: option %d is empty after sanitizing", memora_errors.ErrInvalidInput, i+1)
		}
		p.PollOptions = append(p.PollOptions, prompt.PollOption{Text: clean, Position: i, CreatedAt: now})
	}

	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	err := repository.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		if cmd.CommunityID != nil {
			c, err := repository.NewCommunityRepository(tx).GetByID(ctx, *cmd.CommunityID)
			if err != nil {
				return fmt.Errorf("community %s: %w", *cmd.CommunityID, err)
			}
			p.Community = &c
		}
		author, err := ensureUser(ctx, tx, cmd.Actor)
		if err != nil {
			return err
		}
		p.AuthorID = author.ID
		community := p.Community
		p.Community = nil
		if err := repository.NewPromptRepository(tx).Create(ctx, &p); err != nil {
			return err
		}
		p.Community = community
		p.Author = &author
		return nil
	})
	if err != nil {
		reject(ctx, s.opts, "create_prompt", err)
		return commands.Result{}, err
	}

	if p.PollOptions == nil {
		p.PollOptions = []prompt.PollOption{}
	}
	s.opts.Logger.InfoCtx(ctx, "prompt created", zap.String("prompt_id", p.ID.String()), zap.String("type", string(p.Type)))
	return commands.Result{AggregateID: p.ID.String(), Payload: p}, nil
}

// Delete removes a prompt and, by cascade, everything attached to it. Only the author may delete.
func (s *PromptService) Delete(ctx context.Context, promptID uuid.UUID, actor user.Identity) error {
	_, err := s.bus.Execute(ctx, commands.DeletePromptCommand{Actor: actor, PromptID: promptID})
	return err
}

func (s *PromptService) executeDelete(ctx context.Context, cmd commands.DeletePromptCommand) (commands.Result, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	err := repository.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		prompts := repository.NewPromptRepository(tx)
		p, err := prompts.GetForShare(ctx, cmd.PromptID)
		if err != nil {
			return fmt.Errorf("prompt %s: %w", cmd.PromptID, err)
		}
		u, err := repository.NewUserRepository(tx).GetUserByEmail(ctx, normalizeEmail(cmd.Actor.Email))
		if errors.Is(err, memora_errors.ErrNotFound) {
			return fmt.Errorf("%w: only the author can delete a prompt", memora_errors.ErrForbidden)
		}
		if err != nil {
			return err
		}
		if p.AuthorID != u.ID {
			return fmt.Errorf("%w: only the author can delete a prompt", memora_errors.ErrForbidden)
		}
		return prompts.Delete(ctx, p.ID)
	})
	if err != nil {
		reject(ctx, s.opts, "delete_prompt", err)
		return commands.Result{}, err
	}

	if s.threads != nil {
		s.threads.invalidate(ctx, cmd.PromptID)
	}
	s.opts.Logger.InfoCtx(ctx, "prompt deleted", zap.String("prompt_id", cmd.PromptID.String()))
	return commands.Result{AggregateID: cmd.PromptID.String()}, nil
}

// ToggleLike likes the prompt for actor, or removes an existing like.
func (s *PromptService) ToggleLike(ctx context.Context, promptID uuid.UUID, actor user.Identity) (LikeResult, error) {
	return execute[LikeResult](ctx, s.bus, commands.ToggleLikeCommand{Actor: actor, PromptID: promptID})
}

func (s *PromptService) executeToggleLike(ctx context.Context, cmd commands.ToggleLikeCommand) (commands.Result, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	var result LikeResult
	err := repository.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		prompts := repository.NewPromptRepository(tx)
		if _, err := prompts.GetForShare(ctx, cmd.PromptID); err != nil {
			return fmt.Errorf("prompt %s: %w", cmd.PromptID, err)
		}
		u, err := ensureUser(ctx, tx, cmd.Actor)
		if err != nil {
			return err
		}
		if err := repository.NewUserRepository(tx).LockUser(ctx, u.ID); err != nil {
			return err
		}

		liked, err := prompts.HasLike(ctx, u.ID, cmd.PromptID)
		if err != nil {
			return err
		}
		if liked {
			err = prompts.RemoveLike(ctx, u.ID, cmd.PromptID)
		} else {
			err = prompts.AddLike(ctx, &prompt.Like{UserID: u.ID, PromptID: cmd.PromptID, CreatedAt: s.opts.Clock()})
		}
		if err != nil {
			return err
		}

		counts, err := prompts.CountLikes(ctx, []uuid.UUID{cmd.PromptID})
		if err != nil {
			return err
		}
		result = LikeResult{Liked: !liked, LikesCount: counts[cmd.PromptID]}
		return nil
	})
	if err != nil {
		reject(ctx, s.opts, "toggle_like", err)
		return commands.Result{}, err
	}
	return commands.Result{AggregateID: cmd.PromptID.String(), Payload: result}, nil
}
