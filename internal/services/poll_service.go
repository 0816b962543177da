package services

import (
	"context"
	"errors"
	"fmt"

	"memora/internal/commands"
	"memora/internal/domain/prompt"
	"memora/internal/domain/user"
	"memora/internal/metrics"
	"memora/internal/repository"
	memora_errors "memora/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Vote transitions per (user, prompt).
const (
	TransitionCast    = "cast"
	TransitionSwitch  = "switch"
	TransitionNoop    = "noop"
	TransitionRetract = "retract"
)

type PollService struct {
	db   *gorm.DB
	bus  *commands.Bus
	opts Options
}

func NewPollService(db *gorm.DB, bus *commands.Bus, opts Options) *PollService {
	svc := &PollService{db: db, bus: ensureBus(bus), opts: opts.withDefaults()}
	svc.RegisterHandlers(svc.bus)
	return svc
}

func (s *PollService) RegisterHandlers(bus *commands.Bus) {
	bus.Register(commands.CastVoteCommand{}.CommandType(), handle(s.executeCast))
	bus.Register(commands.RetractVoteCommand{}.CommandType(), handle(s.executeRetract))
}

// CastOrChangeVote records voter's choice on a poll, replacing any earlier
// choice. Voting again for the current option changes nothing.
func (s *PollService) CastOrChangeVote(ctx context.Context, promptID uuid.UUID, voter user.Identity, optionID uuid.UUID) ([]prompt.PollOption, error) {
	return execute[[]prompt.PollOption](ctx, s.bus, commands.CastVoteCommand{
		Actor:        voter,
		PromptID:     promptID,
		PollOptionID: optionID,
	})
}

// RetractVote removes voter's choice on a poll if there is one.
func (s *PollService) RetractVote(ctx context.Context, promptID uuid.UUID, voter user.Identity) ([]prompt.PollOption, error) {
	return execute[[]prompt.PollOption](ctx, s.bus, commands.RetractVoteCommand{Actor: voter, PromptID: promptID})
}

func (s *PollService) executeCast(ctx context.Context, cmd commands.CastVoteCommand) (commands.Result, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	var (
		options    []prompt.PollOption
		transition string
	)
	err := repository.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		polls := repository.NewPollRepository(tx)

		voter, p, err := s.lockVoterOnPoll(ctx, tx, cmd.Actor, cmd.PromptID)
		if err != nil {
			return err
		}

		option, err := polls.GetOption(ctx, cmd.PollOptionID)
		if err != nil && !errors.Is(err, memora_errors.ErrNotFound) {
			return err
		}
		if err != nil || option.PromptID != p.ID {
			return fmt.Errorf("%w: option does not belong to prompt", memora_errors.ErrInvalidOperation)
		}

		votes, err := polls.ListUserVotes(ctx, voter.ID, p.ID)
		if err != nil {
			return err
		}

		switch {
		case len(votes) == 1 && votes[0].PollOptionID == option.ID:
			transition = TransitionNoop
		default:
			transition = TransitionCast
			if len(votes) > 0 {
				transition = TransitionSwitch
			}
			if err := removeVotes(ctx, polls, votes); err != nil {
				return err
			}
			vote := &prompt.PollVote{UserID: voter.ID, PromptID: p.ID, PollOptionID: option.ID, CreatedAt: s.opts.Clock()}
			if err := polls.CreateVote(ctx, vote); err != nil {
				return err
			}
			if err := polls.AdjustVoteCount(ctx, option.ID, 1); err != nil {
				return err
			}
		}

		options, err = polls.ListOptions(ctx, p.ID)
		return err
	})
	if err != nil {
		reject(ctx, s.opts, "cast_vote", err)
		return commands.Result{}, err
	}

	metrics.Metrics.PollVotesTotal.WithLabelValues(transition).Inc()
	s.opts.Logger.InfoCtx(ctx, "poll vote",
		zap.String("prompt_id", cmd.PromptID.String()),
		zap.String("option_id", cmd.PollOptionID.String()),
		zap.String("transition", transition),
	)
	return commands.Result{AggregateID: cmd.PromptID.String(), Payload: options}, nil
}

func (s *PollService) executeRetract(ctx context.Context, cmd commands.RetractVoteCommand) (commands.Result, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	var (
		options []prompt.PollOption
		removed int
	)
	err := repository.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		polls := repository.NewPollRepository(tx)

		voter, p, err := s.lockVoterOnPoll(ctx, tx, cmd.Actor, cmd.PromptID)
		if err != nil {
			return err
		}
		votes, err := polls.ListUserVotes(ctx, voter.ID, p.ID)
		if err != nil {
			return err
		}
		if err := removeVotes(ctx, polls, votes); err != nil {
			return err
		}
		removed = len(votes)

		options, err = polls.ListOptions(ctx, p.ID)
		return err
	})
	if err != nil {
		reject(ctx, s.opts, "retract_vote", err)
		return commands.Result{}, err
	}

	transition := TransitionRetract
	if removed == 0 {
		transition = TransitionNoop
	}
	metrics.Metrics.PollVotesTotal.WithLabelValues(transition).Inc()
	return commands.Result{AggregateID: cmd.PromptID.String(), Payload: options}, nil
}

// lockVoterOnPoll ensures the voter, locks their row so concurrent votes by
// the same user serialize, and checks the prompt is a poll.
func (s *PollService) lockVoterOnPoll(ctx context.Context, tx *gorm.DB, actor user.Identity, promptID uuid.UUID) (user.User, prompt.Prompt, error) {
	voter, err := ensureUser(ctx, tx, actor)
	if err != nil {
		return user.User{}, prompt.Prompt{}, err
	}
	if err := repository.NewUserRepository(tx).LockUser(ctx, voter.ID); err != nil {
		return user.User{}, prompt.Prompt{}, err
	}

	p, err := repository.NewPromptRepository(tx).GetForShare(ctx, promptID)
	if err != nil {
		return user.User{}, prompt.Prompt{}, fmt.Errorf("prompt %s: %w", promptID, err)
	}
	if !p.IsPoll() {
		return user.User{}, prompt.Prompt{}, fmt.Errorf("%w: can only vote on poll prompts", memora_errors.ErrInvalidOperation)
	}
	return voter, p, nil
}

// removeVotes deletes each vote and decrements its option once per row.
func removeVotes(ctx context.Context, polls repository.PollRepository, votes []prompt.PollVote) error {
	for _, v := range votes {
		if err := polls.DeleteVote(ctx, v.ID); err != nil {
			return err
		}
		if err := polls.AdjustVoteCount(ctx, v.PollOptionID, -1); err != nil {
			return err
		}
	}
	return nil
}

// UserVote returns the option userID currently votes for on promptID, or nil.
func (s *PollService) UserVote(ctx context.Context, promptID, userID uuid.UUID) (*uuid.UUID, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	vote, err := repository.NewPollRepository(s.db).GetUserVote(ctx, userID, promptID)
	if errors.Is(err, memora_errors.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote.PollOptionID, nil
}
