package response

import (
	"time"

	"memora/internal/domain/prompt"
	"memora/internal/domain/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaxDepth is the deepest allowed reply. Top-level responses have depth 0.
const MaxDepth = 10

// Response represents the responses table. Deleting a parent cascades to
// its whole subtree; deleting the prompt cascades to every response.
type Response struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Text         string         `gorm:"size:1000;not null" json:"text"`
	AuthorID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Author       *user.User     `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	PromptID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_responses_prompt_created,priority:1" json:"prompt_id"`
	Prompt       *prompt.Prompt `gorm:"foreignKey:PromptID;constraint:OnDelete:CASCADE" json:"-"`
	ParentID     *uuid.UUID     `gorm:"type:uuid;index" json:"parent_id"`
	Parent       *Response      `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"-"`
	Depth        int            `gorm:"not null;default:0" json:"depth"`
	UpvotesCount int            `gorm:"not null;default:0;check:chk_responses_upvotes_count,upvotes_count >= 0" json:"upvotes_count"`
	CreatedAt    time.Time      `gorm:"index:idx_responses_prompt_created,priority:2" json:"created_at"`

	Replies []*Response `gorm:"-" json:"replies"`
}

func (Response) TableName() string {
	return "responses"
}

func (r *Response) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (r Response) IsTopLevel() bool {
	return r.ParentID == nil
}

// Upvote represents the upvotes table: at most one row per (user, response).
type Upvote struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_upvotes_user_response" json:"user_id"`
	User       *user.User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	ResponseID uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_upvotes_user_response" json:"response_id"`
	Response   *Response  `gorm:"foreignKey:ResponseID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (Upvote) TableName() string {
	return "upvotes"
}

func (u *Upvote) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
