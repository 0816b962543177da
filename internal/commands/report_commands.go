package commands

import (
	"memora/internal/domain/report"
	"memora/internal/domain/user"

	"github.com/google/uuid"
)

type CreateReportCommand struct {
	Actor        user.Identity
	ResourceType report.ResourceType
	ResourceID   uuid.UUID
	Reason       string
}

func (CreateReportCommand) CommandType() string {
	return "report.create"
}

func (c CreateReportCommand) Validate() error {
	if !c.ResourceType.Valid() {
		return invalid("resource_type must be PROMPT or RESPONSE")
	}
	if err := requireID("resource_id", c.ResourceID); err != nil {
		return err
	}
	return requireLength("reason", c.Reason, 1, MaxReasonLength)
}

func (c CreateReportCommand) IdempotencyKey() string {
	return c.ResourceID.String() + ":" + c.Actor.Email
}

func (c CreateReportCommand) ActorIdentity() user.Identity {
	return c.Actor
}
