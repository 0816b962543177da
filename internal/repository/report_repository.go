package repository

import (
	"context"

	"memora/internal/domain/report"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PostgresReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &PostgresReportRepository{db: db}
}

func (r *PostgresReportRepository) Create(ctx context.Context, rep *report.Report) error {
	return ClassifyError(r.db.WithContext(ctx).Create(rep).Error)
}

func (r *PostgresReportRepository) ListByResource(ctx context.Context, t report.ResourceType, resourceID uuid.UUID) ([]report.Report, error) {
	var reports []report.Report
	err := r.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", t, resourceID).
		Order("created_at ASC").
		Find(&reports).Error
	if err != nil {
		return nil, ClassifyError(err)
	}
	return reports, nil
}
