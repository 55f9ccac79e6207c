package staff

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"ordersetu-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Repository interface {
	UpdateSalary(ctx context.Context, restaurantID, workerID uuid.UUID, salary float64) (*Worker, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// UpdateSalary only touches workers of the given restaurant, so an owner
// cannot reach another tenant's staff.
func (r *repository) UpdateSalary(ctx context.Context, restaurantID, workerID uuid.UUID, salary float64) (*Worker, error) {
	var w Worker
	err := r.db.QueryRowContext(ctx, `
		UPDATE workers
		SET salary = $3
		WHERE id = $1 AND restaurant_id = $2
		RETURNING id, restaurant_id, name, role, salary
	`, workerID, restaurantID, salary).Scan(&w.ID, &w.RestaurantID, &w.Name, &w.Role, &w.Salary)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWorkerNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("failed to update salary",
			zap.String("layer", "repository"),
			zap.String("worker_id", workerID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("update salary: %w", err)
	}
	return &w, nil
}
