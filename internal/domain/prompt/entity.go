package prompt

import (
	"time"

	"memora/internal/domain/community"
	"memora/internal/domain/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Type string

const (
	TypeText Type = "TEXT"
	TypePoll Type = "POLL"
)

func (t Type) Valid() bool {
	return t == TypeText || t == TypePoll
}

// Prompt represents the prompts table. Type is fixed at creation.
type Prompt struct {
	ID          uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string               `gorm:"size:200;not null" json:"title"`
	Body        string               `gorm:"type:text" json:"body,omitempty"`
	Type        Type                 `gorm:"type:varchar(8);not null" json:"type"`
	AuthorID    uuid.UUID            `gorm:"type:uuid;not null;index" json:"author_id"`
	Author      *user.User           `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	CommunityID *uuid.UUID           `gorm:"type:uuid;index" json:"community_id,omitempty"`
	Community   *community.Community `gorm:"foreignKey:CommunityID;constraint:OnDelete:SET NULL" json:"community,omitempty"`
	PollOptions []PollOption         `gorm:"foreignKey:PromptID;constraint:OnDelete:CASCADE" json:"poll_options"`
	CreatedAt   time.Time            `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`

	// Filled on read
	ResponseCount int64 `gorm:"-" json:"response_count"`
	LikeCount     int64 `gorm:"-" json:"like_count"`
}

func (Prompt) TableName() string {
	return "prompts"
}

func (p *Prompt) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

func (p Prompt) IsPoll() bool {
	return p.Type == TypePoll
}

// Like represents the likes table: one row per (user, prompt).
type Like struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_likes_user_prompt" json:"user_id"`
	User      *user.User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PromptID  uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_likes_user_prompt" json:"prompt_id"`
	Prompt    *Prompt    `gorm:"foreignKey:PromptID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time  `json:"created_at"`
}

func (Like) TableName() string {
	return "likes"
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
