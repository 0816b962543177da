package repository

import (
	"context"

	"memora/internal/domain/community"
	memora_errors "memora/pkg/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresCommunityRepository struct {
	db *gorm.DB
}

func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &PostgresCommunityRepository{db: db}
}

func (r *PostgresCommunityRepository) Create(ctx context.Context, c *community.Community) error {
	return ClassifyError(r.db.WithContext(ctx).Create(c).Error)
}

func (r *PostgresCommunityRepository) GetByID(ctx context.Context, id uuid.UUID) (community.Community, error) {
	var c community.Community
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error; err != nil {
		return community.Community{}, ClassifyError(err)
	}
	return c, nil
}

func (r *PostgresCommunityRepository) GetBySlug(ctx context.Context, slug string) (community.Community, error) {
	var c community.Community
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&c).Error; err != nil {
		return community.Community{}, ClassifyError(err)
	}
	return c, nil
}

func (r *PostgresCommunityRepository) List(ctx context.Context, page, limit int) ([]community.Community, int64, error) {
	var communities []community.Community
	var total int64

	page, limit = normalizePage(page, limit)
	q := r.db.WithContext(ctx).Model(&community.Community{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, ClassifyError(err)
	}

	if err := q.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&communities).Error; err != nil {
		return nil, 0, ClassifyError(err)
	}
	return communities, total, nil
}

func (r *PostgresCommunityRepository) Update(ctx context.Context, c community.Community) error {
	res := r.db.WithContext(ctx).
		Model(&community.Community{}).
		Where("id = ?", c.ID).
		Updates(map[string]interface{}{
			"name":       c.Name,
			"slug":       c.Slug,
			"updated_at": c.UpdatedAt,
		})
	if res.Error != nil {
		return ClassifyError(res.Error)
	}
	if res.RowsAffected == 0 {
		return memora_errors.ErrNotFound
	}
	return nil
}
