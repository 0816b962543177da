package services

import (
	"context"
	"fmt"

	"memora/internal/commands"
	"memora/internal/domain/report"
	"memora/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ReportService struct {
	db   *gorm.DB
	bus  *commands.Bus
	opts Options
}

func NewReportService(db *gorm.DB, bus *commands.Bus, opts Options) *ReportService {
	svc := &ReportService{db: db, bus: ensureBus(bus), opts: opts.withDefaults()}
	svc.RegisterHandlers(svc.bus)
	return svc
}

func (s *ReportService) RegisterHandlers(bus *commands.Bus) {
	bus.Register(commands.CreateReportCommand{}.CommandType(), handle(s.executeCreate))
}

// Create files a moderation report against an existing prompt or response.
func (s *ReportService) Create(ctx context.Context, cmd commands.CreateReportCommand) (report.Report, error) {
	return execute[report.Report](ctx, s.bus, cmd)
}

func (s *ReportService) executeCreate(ctx context.Context, cmd commands.CreateReportCommand) (commands.Result, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	var rep report.Report
	err := repository.WithTx(ctx, s.db, func(tx *gorm.DB) error {
		switch cmd.ResourceType {
		case report.ResourcePrompt:
			if _, err := repository.NewPromptRepository(tx).GetForShare(ctx, cmd.ResourceID); err != nil {
				return fmt.Errorf("prompt %s: %w", cmd.ResourceID, err)
			}
		case report.ResourceResponse:
			if _, err := repository.NewResponseRepository(tx).GetForShare(ctx, cmd.ResourceID); err != nil {
				return fmt.Errorf("response %s: %w", cmd.ResourceID, err)
			}
		}

		reporter, err := ensureUser(ctx, tx, cmd.Actor)
		if err != nil {
			return err
		}
		rep = report.Report{
			ReporterID:   reporter.ID,
			ResourceType: cmd.ResourceType,
			ResourceID:   cmd.ResourceID,
			Reason:       s.opts.Policy.PlainText(cmd.Reason),
			CreatedAt:    s.opts.Clock(),
		}
		return repository.NewReportRepository(tx).Create(ctx, &rep)
	})
	if err != nil {
		reject(ctx, s.opts, "create_report", err)
		return commands.Result{}, err
	}

	s.opts.Logger.InfoCtx(ctx, "report filed",
		zap.String("report_id", rep.ID.String()),
		zap.String("resource_type", string(rep.ResourceType)),
		zap.String("resource_id", rep.ResourceID.String()),
	)
	return commands.Result{AggregateID: rep.ID.String(), Payload: rep}, nil
}

// ForResource lists reports filed against one resource, oldest first.
func (s *ReportService) ForResource(ctx context.Context, t report.ResourceType, id uuid.UUID) ([]report.Report, error) {
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()
	return repository.NewReportRepository(s.db).ListByResource(ctx, t, id)
}
