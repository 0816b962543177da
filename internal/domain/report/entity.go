package report

import (
	"time"

	"memora/internal/domain/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ResourceType string

const (
	ResourcePrompt   ResourceType = "PROMPT"
	ResourceResponse ResourceType = "RESPONSE"
)

func (t ResourceType) Valid() bool {
	return t == ResourcePrompt || t == ResourceResponse
}

// Report flags a prompt or response for moderation. ResourceID is not a foreign
// key: reports outlive the content they point at.
type Report struct {
	ID           uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	ReporterID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"reporter_id"`
	Reporter     *user.User   `gorm:"foreignKey:ReporterID;constraint:OnDelete:CASCADE" json:"-"`
	ResourceType ResourceType `gorm:"type:varchar(16);not null" json:"resource_type"`
	ResourceID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"resource_id"`
	Reason       string       `gorm:"size:500;not null" json:"reason"`
	CreatedAt    time.Time    `json:"created_at"`
}

func (Report) TableName() string {
	return "reports"
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
