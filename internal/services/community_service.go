package services

import (
	"context"
	"fmt"
	"strings"

	"memora/internal/commands"
	"memora/internal/domain/community"
	"memora/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CommunityPage struct {
	Communities []community.Community
	Total       int64
	Page        int
	Limit       int
}

type CommunityService struct {
	db      *gorm.DB
	prompts *PromptService
	bus     *commands.Bus
	opts    Options
}

func NewCommunityService(db *gorm.DB, prompts *PromptService, bus *commands.Bus, opts Options) *CommunityService {
	svc := &CommunityService{db: db, prompts: prompts, bus: ensureBus(bus), opts: opts.withDefaults()}
	svc.RegisterHandlers(svc.bus)
	return svc
}

func (s *CommunityService) RegisterHandlers(bus *commands.Bus) {
	bus.Register(commands.CreateCommunityCommand{}.CommandType(), handle(s.executeCreate))
	bus.Register(commands.UpdateCommunityCommand{}.CommandType(), handle(s.executeUpdate))
}

// List returns communities newest first with their prompt counts.
func (s *CommunityService) List(ctx context.Context, page, limit int) (CommunityPage, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	communities, total, err := repository.NewCommunityRepository(s.db).List(ctx, page, limit)
	if err != nil {
		return CommunityPage{}, err
	}
	if err := s.fillPromptCounts(ctx, communities); err != nil {
		return CommunityPage{}, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return CommunityPage{Communities: communities, Total: total, Page: page, Limit: limit}, nil
}

func (s *CommunityService) fillPromptCounts(ctx context.Context, communities []community.Community) error {
	ids := make([]uuid.UUID, len(communities))
	for i := range communities {
		ids[i] = communities[i].ID
	}
	counts, err := repository.NewPromptRepository(s.db).CountByCommunity(ctx, ids)
	if err != nil {
		return err
	}
	for i := range communities {
		communities[i].PromptCount = counts[communities[i].ID]
	}
	return nil
}

func (s *CommunityService) GetBySlug(ctx context.Context, slug string) (community.Community, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	c, err := repository.NewCommunityRepository(s.db).GetBySlug(ctx, slug)
	if err != nil {
		return community.Community{}, fmt.Errorf("community %q: %w", slug, err)
	}
	one := []community.Community{c}
	if err := s.fillPromptCounts(ctx, one); err != nil {
		return community.Community{}, err
	}
	return one[0], nil
}

// Prompts lists the prompts posted in the community identified by slug.
func (s *CommunityService) Prompts(ctx context.Context, slug string, f repository.PromptFilter) (PromptPage, error) {
	c, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return PromptPage{}, err
	}
	f.CommunityID = &c.ID
	return s.prompts.List(ctx, f)
}

func (s *CommunityService) Create(ctx context.Context, cmd commands.CreateCommunityCommand) (community.Community, error) {
	return execute[community.Community](ctx, s.bus, cmd)
}

func (s *CommunityService) executeCreate(ctx context.Context, cmd commands.CreateCommunityCommand) (commands.Result, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	now := s.opts.Clock()
	c := community.Community{
		Name:      s.opts.Policy.PlainText(cmd.Name),
		Slug:      strings.TrimSpace(cmd.Slug),
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := repository.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		if _, err := ensureUser(ctx, tx, cmd.Actor); err != nil {
			return err
		}
		if err := repository.NewCommunityRepository(tx).Create(ctx, &c); err != nil {
			return fmt.Errorf("community %q: %w", c.Slug, err)
		}
		return nil
	})
	if err != nil {
		reject(ctx, s.opts, "create_community", err)
		return commands.Result{}, err
	}
	return commands.Result{AggregateID: c.ID.String(), Payload: c}, nil
}

func (s *CommunityService) Update(ctx context.Context, cmd commands.UpdateCommunityCommand) (community.Community, error) {
	return execute[community.Community](ctx, s.bus, cmd)
}

func (s *CommunityService) executeUpdate(ctx context.Context, cmd commands.UpdateCommunityCommand) (commands.Result, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	var updated community.Community
	err := repository.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		repo := repository.NewCommunityRepository(tx)
		c, err := repo.GetBySlug(ctx, strings.TrimSpace(cmd.Slug))
		if err != nil {
			return fmt.Errorf("community %q: %w", cmd.Slug, err)
		}
		if cmd.Name != "" {
			c.Name = s.opts.Policy.PlainText(cmd.Name)
		}
		if cmd.NewSlug != "" {
			c.Slug = strings.TrimSpace(cmd.NewSlug)
		}
		c.UpdatedAt = s.opts.Clock()
		if err := repo.Update(ctx, c); err != nil {
			return err
		}
		updated = c
		return nil
	})
	if err != nil {
		reject(ctx, s.opts, "update_community", err)
		return commands.Result{}, err
	}
	one := []community.Community{updated}
	if err := s.fillPromptCounts(ctx, one); err != nil {
		return commands.Result{}, err
	}
	return commands.Result{AggregateID: updated.ID.String(), Payload: one[0]}, nil
}
