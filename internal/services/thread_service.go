package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"memora/internal/commands"
	"memora/internal/domain/response"
	"memora/internal/domain/user"
	"memora/internal/metrics"
	"memora/internal/repository"
	memora_errors "memora/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TreeCache stores assembled response trees. Load reports the current
// generation even on a miss; Store under an outdated generation is never read.
type TreeCache interface {
	Load(ctx context.Context, promptID uuid.UUID) ([]*response.Response, int64, bool)
	Store(ctx context.Context, promptID uuid.UUID, generation int64, tree []*response.Response)
	Invalidate(ctx context.Context, promptID uuid.UUID)
}

type UpvoteResult struct {
	Upvoted  bool `json:"upvoted"`
	NewCount int  `json:"new_count"`
}

type ThreadService struct {
	db    *gorm.DB
	cache TreeCache
	bus   *commands.Bus
	opts  Options
}

func NewThreadService(db *gorm.DB, cache TreeCache, bus *commands.Bus, opts Options) *ThreadService {
	svc := &ThreadService{db: db, cache: cache, bus: ensureBus(bus), opts: opts.withDefaults()}
	svc.RegisterHandlers(svc.bus)
	return svc
}

func (s *ThreadService) RegisterHandlers(bus *commands.Bus) {
	bus.Register(commands.CreateResponseCommand{}.CommandType(), handle(s.executeCreate))
	bus.Register(commands.ToggleUpvoteCommand{}.CommandType(), handle(s.executeToggleUpvote))
}

// CreateResponse attaches a response to a TEXT prompt, or to another response
// of the same prompt when parentID is set.
func (s *ThreadService) CreateResponse(ctx context.Context, promptID uuid.UUID, author user.Identity, text string, parentID *uuid.UUID) (response.Response, error) {
	return execute[response.Response](ctx, s.bus, commands.CreateResponseCommand{
		Actor:    author,
		PromptID: promptID,
		ParentID: parentID,
		Text:     text,
	})
}

func (s *ThreadService) executeCreate(ctx context.Context, cmd commands.CreateResponseCommand) (commands.Result, error) {
	text := s.opts.Policy.PlainText(cmd.Text)
	if text == "" {
		return commands.Result{}, fmt.Errorf("%w: text is empty after sanitizing", memora_errors.ErrInvalidInput)
	}

	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	var created response.Response
	err := repository.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		prompts := repository.NewPromptRepository(tx)
		responses := repository.NewResponseRepository(tx)

		p, err := prompts.GetForShare(ctx, cmd.PromptID)
		if err != nil {
			return fmt.Errorf("prompt %s: %w", cmd.PromptID, err)
		}
		if p.IsPoll() {
			return fmt.Errorf("%w: cannot respond to a poll", memora_errors.ErrInvalidOperation)
		}

		depth := 0
		if cmd.ParentID != nil {
			parent, err := responses.GetForShare(ctx, *cmd.ParentID)
			if err != nil {
				return fmt.Errorf("parent response %s: %w", *cmd.ParentID, err)
			}
			if parent.PromptID != p.ID {
				return fmt.Errorf("%w: cross-prompt parent", memora_errors.ErrInvalidOperation)
			}
			depth = parent.Depth + 1
			if depth > response.MaxDepth {
				return fmt.Errorf("%w: reply would be at depth %d", memora_errors.ErrDepthExceeded, depth)
			}
		}

		author, err := ensureUser(ctx, tx, cmd.Actor)
		if err != nil {
			return err
		}

		created = response.Response{
			Text:      text,
			AuthorID:  author.ID,
			PromptID:  p.ID,
			ParentID:  cmd.ParentID,
			Depth:     depth,
			CreatedAt: s.opts.Clock(),
		}
		if err := responses.Create(ctx, &created); err != nil {
			return err
		}
		created.Author = &author
		created.Replies = []*response.Response{}
		return nil
	})
	if err != nil {
		s.reject(ctx, "create_response", err)
		return commands.Result{}, err
	}

	kind := "top_level"
	if created.ParentID != nil {
		kind = "reply"
	}
	metrics.Metrics.ResponsesCreatedTotal.WithLabelValues(kind).Inc()
	s.invalidate(ctx, created.PromptID)
	s.opts.Logger.InfoCtx(ctx, "response created",
		zap.String("response_id", created.ID.String()),
		zap.String("prompt_id", created.PromptID.String()),
		zap.Int("depth", created.Depth),
	)
	return commands.Result{AggregateID: created.ID.String(), Payload: created}, nil
}

// BuildTree returns the top-level responses of a prompt ordered by upvotes,
// each carrying its replies in creation order.
func (s *ThreadService) BuildTree(ctx context.Context, promptID uuid.UUID) ([]*response.Response, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	var generation int64
	if s.cache != nil {
		tree, gen, ok := s.cache.Load(ctx, promptID)
		if ok {
			metrics.Metrics.CacheHits.Inc()
			return tree, nil
		}
		metrics.Metrics.CacheMisses.Inc()
		generation = gen
	}

	exists, err := repository.NewPromptRepository(s.db).Exists(ctx, promptID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("prompt %s: %w", promptID, memora_errors.ErrNotFound)
	}

	rows, err := repository.NewResponseRepository(s.db).ListByPrompt(ctx, promptID)
	if err != nil {
		return nil, err
	}
	tree := assembleTree(rows)

	if s.cache != nil {
		s.cache.Store(ctx, promptID, generation, tree)
	}
	return tree, nil
}

// assembleTree links rows (oldest first) into a forest. Replies keep the input
// order; roots are stably sorted by upvotes so ties stay oldest first.
func assembleTree(rows []response.Response) []*response.Response {
	nodes := make(map[uuid.UUID]*response.Response, len(rows))
	for i := range rows {
		rows[i].Replies = []*response.Response{}
		nodes[rows[i].ID] = &rows[i]
	}

	roots := make([]*response.Response, 0)
	for i := range rows {
		node := &rows[i]
		if node.ParentID == nil {
			roots = append(roots, node)
			continue
		}
		parent, ok := nodes[*node.ParentID]
		if !ok || node.Depth > response.MaxDepth {
			continue
		}
		parent.Replies = append(parent.Replies, node)
	}

	sort.SliceStable(roots, func(i, j int) bool {
		return roots[i].UpvotesCount > roots[j].UpvotesCount
	})
	return roots
}

// ToggleUpvote adds the caller's upvote to a response, or removes it if present.
func (s *ThreadService) ToggleUpvote(ctx context.Context, responseID uuid.UUID, voter user.Identity) (UpvoteResult, error) {
	return execute[UpvoteResult](ctx, s.bus, commands.ToggleUpvoteCommand{Actor: voter, ResponseID: responseID})
}

func (s *ThreadService) executeToggleUpvote(ctx context.Context, cmd commands.ToggleUpvoteCommand) (commands.Result, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	var (
		result   UpvoteResult
		promptID uuid.UUID
	)
	err := repository.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		responses := repository.NewResponseRepository(tx)

		resp, err := responses.GetForUpdate(ctx, cmd.ResponseID)
		if err != nil {
			return fmt.Errorf("response %s: %w", cmd.ResponseID, err)
		}
		promptID = resp.PromptID

		voter, err := ensureUser(ctx, tx, cmd.Actor)
		if err != nil {
			return err
		}

		has, err := responses.HasUpvote(ctx, voter.ID, resp.ID)
		if err != nil {
			return err
		}
		delta := 1
		if has {
			delta = -1
			if err := responses.DeleteUpvote(ctx, voter.ID, resp.ID); err != nil {
				return err
			}
		} else {
			if err := responses.CreateUpvote(ctx, &response.Upvote{UserID: voter.ID, ResponseID: resp.ID, CreatedAt: s.opts.Clock()}); err != nil {
				return err
			}
		}
		if err := responses.AdjustUpvotes(ctx, resp.ID, delta); err != nil {
			return err
		}

		fresh, err := responses.GetForUpdate(ctx, resp.ID)
		if err != nil {
			return err
		}
		result = UpvoteResult{Upvoted: !has, NewCount: fresh.UpvotesCount}
		return nil
	})
	if err != nil {
		s.reject(ctx, "toggle_upvote", err)
		return commands.Result{}, err
	}

	action := "add"
	if !result.Upvoted {
		action = "remove"
	}
	metrics.Metrics.UpvotesTotal.WithLabelValues(action).Inc()
	s.invalidate(ctx, promptID)
	return commands.Result{AggregateID: cmd.ResponseID.String(), Payload: result}, nil
}

// UpvotedBy returns the responses under promptID the identity has upvoted.
func (s *ThreadService) UpvotedBy(ctx context.Context, promptID uuid.UUID, viewer user.Identity) (map[uuid.UUID]bool, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	u, err := repository.NewUserRepository(s.db).GetUserByEmail(ctx, normalizeEmail(viewer.Email))
	if errors.Is(err, memora_errors.ErrNotFound) {
		return map[uuid.UUID]bool{}, nil
	}
	if err != nil {
		return nil, err
	}
	return repository.NewResponseRepository(s.db).UpvotedBy(ctx, u.ID, promptID)
}

func (s *ThreadService) invalidate(ctx context.Context, promptID uuid.UUID) {
	if s.cache != nil {
		s.cache.Invalidate(context.WithoutCancel(ctx), promptID)
	}
}

func (s *ThreadService) reject(ctx context.Context, op string, err error) {
	reject(ctx, s.opts, op, err)
}

// reject records a failed core operation. Storage failures are logged as
// errors, business rejections at lower levels.
func reject(ctx context.Context, opts Options, op string, err error) {
	reason := ErrorCode(err)
	metrics.Metrics.RejectionsTotal.WithLabelValues(reason).Inc()
	switch {
	case errors.Is(err, memora_errors.ErrTransient):
		opts.Logger.ErrorCtx(ctx, "storage failure", zap.String("op", op), zap.Error(err))
	case errors.Is(err, memora_errors.ErrDepthExceeded):
		opts.Logger.WarnCtx(ctx, "depth limit rejected reply", zap.String("op", op), zap.Error(err))
	default:
		opts.Logger.InfoCtx(ctx, "operation rejected", zap.String("op", op), zap.String("reason", reason), zap.Error(err))
	}
}
