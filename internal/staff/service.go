package staff

import (
	"context"

	"ordersetu-be/internal/auth"
	"ordersetu-be/internal/logger"
	"ordersetu-be/internal/realtime"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service interface {
	UpdateSalary(ctx context.Context, owner auth.Principal, workerID uuid.UUID, salary float64) (*Worker, error)
}

type service struct {
	repo     Repository
	notifier realtime.Sender
}

func NewService(repo Repository, notifier realtime.Sender) Service {
	return &service{repo: repo, notifier: notifier}
}

func (s *service) UpdateSalary(ctx context.Context, owner auth.Principal, workerID uuid.UUID, salary float64) (*Worker, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateSalary"),
		zap.String("worker_id", workerID.String()),
	)

	if salary < 0 {
		return nil, ErrInvalidSalary
	}

	w, err := s.repo.UpdateSalary(ctx, owner.RestaurantID, workerID, salary)
	if err != nil {
		return nil, err
	}

	s.notifier.Send(realtime.WorkerTarget(w.ID.String()), realtime.SalaryUpdated(w.Salary))

	log.Info("salary updated", zap.Float64("salary", w.Salary))
	return w, nil
}
