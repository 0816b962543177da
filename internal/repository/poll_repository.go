package repository

import (
	"context"

	"memora/internal/domain/prompt"
	memora_errors "memora/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresPollRepository struct {
	db *gorm.DB
}

func NewPollRepository(db *gorm.DB) PollRepository {
	return &PostgresPollRepository{db: db}
}

func (r *PostgresPollRepository) GetOption(ctx context.Context, id uuid.UUID) (prompt.PollOption, error) {
	var o prompt.PollOption
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		return prompt.PollOption{}, ClassifyError(err)
	}
	return o, nil
}

func (r *PostgresPollRepository) ListOptions(ctx context.Context, promptID uuid.UUID) ([]prompt.PollOption, error) {
	var options []prompt.PollOption
	err := orderedOptions(r.db.WithContext(ctx)).
		Where("prompt_id = ?", promptID).
		Find(&options).Error
	if err != nil {
		return nil, ClassifyError(err)
	}
	return options, nil
}

func (r *PostgresPollRepository) GetUserVote(ctx context.Context, userID, promptID uuid.UUID) (prompt.PollVote, error) {
	var v prompt.PollVote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND prompt_id = ?", userID, promptID).
		First(&v).Error
	if err != nil {
		return prompt.PollVote{}, ClassifyError(err)
	}
	return v, nil
}

func (r *PostgresPollRepository) ListUserVotes(ctx context.Context, userID, promptID uuid.UUID) ([]prompt.PollVote, error) {
	var votes []prompt.PollVote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND prompt_id = ?", userID, promptID).
		Find(&votes).Error
	if err != nil {
		return nil, ClassifyError(err)
	}
	return votes, nil
}

func (r *PostgresPollRepository) CreateVote(ctx context.Context, v *prompt.PollVote) error {
	return ClassifyError(r.db.WithContext(ctx).Create(v).Error)
}

func (r *PostgresPollRepository) DeleteVote(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&prompt.PollVote{})
	if res.Error != nil {
		return ClassifyError(res.Error)
	}
	if res.RowsAffected == 0 {
		return memora_errors.ErrNotFound
	}
	return nil
}

// AdjustVoteCount adds delta to the option's counter in a single statement.
func (r *PostgresPollRepository) AdjustVoteCount(ctx context.Context, optionID uuid.UUID, delta int) error {
	res := r.db.WithContext(ctx).
		Model(&prompt.PollOption{}).
		Where("id = ?", optionID).
		UpdateColumn("vote_count", gorm.Expr("vote_count + ?", delta))
	if res.Error != nil {
		return ClassifyError(res.Error)
	}
	if res.RowsAffected == 0 {
		return memora_errors.ErrNotFound
	}
	return nil
}
