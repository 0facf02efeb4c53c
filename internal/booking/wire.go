package booking

import (
	"database/sql"

	"go.uber.org/zap"

	"tradeflow/internal/booking/repository"
)

func NewModule(db *sql.DB, logger *zap.Logger) *Controller {
	repo := repository.NewMySQLBookingRepository(db)
	svc := NewService(repo, logger)
	uc := NewUseCase(svc)
	return NewController(uc, logger)
}
