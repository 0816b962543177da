package repository

import (
	"context"
	"strings"

	"memora/internal/domain/prompt"
	"memora/internal/domain/response"
	memora_errors "memora/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresPromptRepository struct {
	db *gorm.DB
}

func NewPromptRepository(db *gorm.DB) PromptRepository {
	return &PostgresPromptRepository{db: db}
}

func orderedOptions(db *gorm.DB) *gorm.DB {
	return db.Order("vote_count DESC").Order("position ASC")
}

func (r *PostgresPromptRepository) Create(ctx context.Context, p *prompt.Prompt) error {
	return ClassifyError(r.db.WithContext(ctx).Create(p).Error)
}

func (r *PostgresPromptRepository) GetByID(ctx context.Context, id uuid.UUID) (prompt.Prompt, error) {
	var p prompt.Prompt
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Community").
		Preload("PollOptions", orderedOptions).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return prompt.Prompt{}, ClassifyError(err)
	}
	return p, nil
}

func (r *PostgresPromptRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&prompt.Prompt{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, ClassifyError(err)
	}
	return count > 0, nil
}

func (r *PostgresPromptRepository) GetForShare(ctx context.Context, id uuid.UUID) (prompt.Prompt, error) {
	var p prompt.Prompt
	if err := forShare(r.db.WithContext(ctx)).Where("id = ?", id).First(&p).Error; err != nil {
		return prompt.Prompt{}, ClassifyError(err)
	}
	return p, nil
}

func (r *PostgresPromptRepository) List(ctx context.Context, f PromptFilter) ([]prompt.Prompt, int64, error) {
	var prompts []prompt.Prompt
	var total int64

	page, limit := normalizePage(f.Page, f.Limit)
	q := r.db.WithContext(ctx).Model(&prompt.Prompt{})
	if f.CommunityID != nil {
		q = q.Where("community_id = ?", *f.CommunityID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("(LOWER(title) LIKE ? OR LOWER(body) LIKE ?)", like, like)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, ClassifyError(err)
	}

	if f.Sort == SortTrending {
		q = q.Order("(SELECT COUNT(*) FROM responses WHERE responses.prompt_id = prompts.id) DESC")
	}
	if err := q.
		Preload("Author").
		Preload("Community").
		Preload("PollOptions", orderedOptions).
		Order("created_at DESC").
		Order("id").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&prompts).Error; err != nil {
		return nil, 0, ClassifyError(err)
	}
	return prompts, total, nil
}

func (r *PostgresPromptRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&prompt.Prompt{})
	if res.Error != nil {
		return ClassifyError(res.Error)
	}
	if res.RowsAffected == 0 {
		return memora_errors.ErrNotFound
	}
	return nil
}

type groupCount struct {
	GroupKey uuid.UUID
	Count    int64
}

func (r *PostgresPromptRepository) countBy(ctx context.Context, model interface{}, column string, ids []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []groupCount
	err := r.db.WithContext(ctx).
		Model(model).
		Select(column+" AS group_key, COUNT(*) AS count").
		Where(column+" IN ?", ids).
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, ClassifyError(err)
	}
	for _, row := range rows {
		out[row.GroupKey] = row.Count
	}
	return out, nil
}

func (r *PostgresPromptRepository) CountResponses(ctx context.Context, promptIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.countBy(ctx, &response.Response{}, "prompt_id", promptIDs)
}

func (r *PostgresPromptRepository) CountLikes(ctx context.Context, promptIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.countBy(ctx, &prompt.Like{}, "prompt_id", promptIDs)
}

func (r *PostgresPromptRepository) CountByCommunity(ctx context.Context, communityIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	return r.countBy(ctx, &prompt.Prompt{}, "community_id", communityIDs)
}

func (r *PostgresPromptRepository) HasLike(ctx context.Context, userID, promptID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&prompt.Like{}).
		Where("user_id = ? AND prompt_id = ?", userID, promptID).
		Count(&count).Error
	if err != nil {
		return false, ClassifyError(err)
	}
	return count > 0, nil
}

func (r *PostgresPromptRepository) AddLike(ctx context.Context, l *prompt.Like) error {
	return ClassifyError(r.db.WithContext(ctx).Create(l).Error)
}

func (r *PostgresPromptRepository) RemoveLike(ctx context.Context, userID, promptID uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND prompt_id = ?", userID, promptID).
		Delete(&prompt.Like{})
	if res.Error != nil {
		return ClassifyError(res.Error)
	}
	if res.RowsAffected == 0 {
		return memora_errors.ErrNotFound
	}
	return nil
}
