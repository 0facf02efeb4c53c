package milestone

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"tradeflow/internal/config"
	"tradeflow/internal/infrastructure/mysql"
	"tradeflow/internal/milestone/controller"
	"tradeflow/internal/milestone/repository"
	"tradeflow/internal/milestone/service"
	"tradeflow/internal/milestone/usecase"
)

// Module exposes the milestone routes and lets shutdown wait for pending
// notifications.
type Module struct {
	*controller.MilestoneController
	useCase *usecase.MilestoneUseCase
}

func NewModule(db *sql.DB, cfg *config.Config, publisher usecase.Publisher, logger *zap.Logger) *Module {
	milestoneSvc := service.NewMilestoneService(
		mysql.NewUnitOfWork(db, sql.LevelSerializable, cfg.Milestone.TxTimeout),
		repository.NewMySQLOrderRepository(db),
		repository.NewMySQLInvoiceRepository(db),
		repository.NewMySQLMilestoneRepository(db),
		repository.NewMySQLCommunicationRepository(db),
		logger,
	)

	milestoneUC := usecase.NewMilestoneUseCase(
		milestoneSvc,
		publisher,
		cfg.Redis.Channel,
		cfg.Redis.PublishTimeout,
		logger,
		cfg.Milestone.MaxRetryAttempts,
		cfg.Milestone.RetryBackoff,
	)

	return &Module{
		MilestoneController: controller.NewMilestoneController(milestoneUC, logger),
		useCase:             milestoneUC,
	}
}

func (m *Module) Drain(ctx context.Context) error {
	return m.useCase.Drain(ctx)
}
