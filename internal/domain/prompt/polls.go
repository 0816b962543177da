package prompt

import (
	"time"

	"memora/internal/domain/user"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	MinPollOptions = 2
	MaxPollOptions = 10
)

// PollOption represents poll_options. VoteCount mirrors the number of
// poll_votes rows that reference the option.
type PollOption struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PromptID  uuid.UUID `gorm:"type:uuid;not null;index" json:"prompt_id"`
	Text      string    `gorm:"size:100;not null" json:"text"`
	Position  int       `gorm:"not null" json:"position"`
	VoteCount int       `gorm:"not null;default:0;check:chk_poll_options_vote_count,vote_count >= 0" json:"vote_count"`
	CreatedAt time.Time `json:"-"`
}

// PollVote represents poll_votes. PromptID is denormalized from the option so
// the (user, prompt) unique index can enforce a single active vote per poll.
type PollVote struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_poll_votes_user_prompt;uniqueIndex:idx_poll_votes_user_option" json:"user_id"`
	User         *user.User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PromptID     uuid.UUID   `gorm:"type:uuid;not null;index;uniqueIndex:idx_poll_votes_user_prompt" json:"prompt_id"`
	Prompt       *Prompt     `gorm:"foreignKey:PromptID;constraint:OnDelete:CASCADE" json:"-"`
	PollOptionID uuid.UUID   `gorm:"type:uuid;not null;index;uniqueIndex:idx_poll_votes_user_option" json:"poll_option_id"`
	PollOption   *PollOption `gorm:"foreignKey:PollOptionID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
}

func (PollOption) TableName() string {
	return "poll_options"
}

func (PollVote) TableName() string {
	return "poll_votes"
}

func (o *PollOption) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

func (v *PollVote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// TotalVotes sums the vote counters of a poll's options.
func TotalVotes(options []PollOption) int {
	total := 0
	for _, o := range options {
		total += o.VoteCount
	}
	return total
}
