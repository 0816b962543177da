package repository

import (
	"context"

	"memora/internal/domain/response"
	memora_errors "memora/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresResponseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &PostgresResponseRepository{db: db}
}

func (r *PostgresResponseRepository) Create(ctx context.Context, resp *response.Response) error {
	return ClassifyError(r.db.WithContext(ctx).Create(resp).Error)
}

func (r *PostgresResponseRepository) GetByID(ctx context.Context, id uuid.UUID) (response.Response, error) {
	var resp response.Response
	if err := r.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&resp).Error; err != nil {
		return response.Response{}, ClassifyError(err)
	}
	return resp, nil
}

func (r *PostgresResponseRepository) GetForShare(ctx context.Context, id uuid.UUID) (response.Response, error) {
	var resp response.Response
	if err := forShare(r.db.WithContext(ctx)).Where("id = ?", id).First(&resp).Error; err != nil {
		return response.Response{}, ClassifyError(err)
	}
	return resp, nil
}

func (r *PostgresResponseRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (response.Response, error) {
	var resp response.Response
	if err := forUpdate(r.db.WithContext(ctx)).Where("id = ?", id).First(&resp).Error; err != nil {
		return response.Response{}, ClassifyError(err)
	}
	return resp, nil
}

func (r *PostgresResponseRepository) ListByPrompt(ctx context.Context, promptID uuid.UUID) ([]response.Response, error) {
	var responses []response.Response
	err := r.db.WithContext(ctx).
		Preload("Author").
		Where("prompt_id = ?", promptID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&responses).Error
	if err != nil {
		return nil, ClassifyError(err)
	}
	return responses, nil
}

func (r *PostgresResponseRepository) HasUpvote(ctx context.Context, userID, responseID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&response.Upvote{}).
		Where("user_id = ? AND response_id = ?", userID, responseID).
		Count(&count).Error
	if err != nil {
		return false, ClassifyError(err)
	}
	return count > 0, nil
}

func (r *PostgresResponseRepository) CreateUpvote(ctx context.Context, u *response.Upvote) error {
	return ClassifyError(r.db.WithContext(ctx).Create(u).Error)
}

func (r *PostgresResponseRepository) DeleteUpvote(ctx context.Context, userID, responseID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND response_id = ?", userID, responseID).
		Delete(&response.Upvote{})
	if res.Error != nil {
		return ClassifyError(res.Error)
	}
	if res.RowsAffected == 0 {
		return memora_errors.ErrNotFound
	}
	return nil
}

func (r *PostgresResponseRepository) AdjustUpvotes(ctx context.Context, responseID uuid.UUID, delta int) error {
	res := r.db.WithContext(ctx).
		Model(&response.Response{}).
		Where("id = ?", responseID).
		UpdateColumn("upvotes_count", gorm.Expr("upvotes_count + ?", delta))
	if res.Error != nil {
		return ClassifyError(res.Error)
	}
	if res.RowsAffected == 0 {
		return memora_errors.ErrNotFound
	}
	return nil
}

// UpvotedBy returns the ids of responses under promptID that userID has upvoted.
func (r *PostgresResponseRepository) UpvotedBy(ctx context.Context, userID, promptID uuid.UUID) (map[uuid.UUID]bool, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&response.Upvote{}).
		Joins("JOIN responses ON responses.id = upvotes.response_id").
		Where("upvotes.user_id = ? AND responses.prompt_id = ?", userID, promptID).
		Pluck("upvotes.response_id", &ids).Error
	if err != nil {
		return nil, ClassifyError(err)
	}
	out := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
