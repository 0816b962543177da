package httpdto

import (
	"time"

	"memora/internal/domain/report"
)

// CreateReportRequest is used for POST /api/reports
type CreateReportRequest struct {
	ResourceType string `json:"resource_type" binding:"required"` // "PROMPT" or "RESPONSE"
	ResourceID   string `json:"resource_id" binding:"required"`
	Reason       string `json:"reason" binding:"required"`
}

type ReportDTO struct {
	ID           string `json:"id"`
	ReporterID   string `json:"reporter_id"`
	ResourceType string `json:"resource_type"`
	ResourceID   string `json:"resource_id"`
	Reason       string `json:"reason"`
	CreatedAt    string `json:"created_at"`
}

func FromReport(r report.Report) ReportDTO {
	return ReportDTO{
		ID:           r.ID.String(),
		ReporterID:   r.ReporterID.String(),
		ResourceType: string(r.ResourceType),
		ResourceID:   r.ResourceID.String(),
		Reason:       r.Reason,
		CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func FromReportSlice(reports []report.Report) []ReportDTO {
	dtos := make([]ReportDTO, len(reports))
	for i, r := range reports {
		dtos[i] = FromReport(r)
	}
	return dtos
}
