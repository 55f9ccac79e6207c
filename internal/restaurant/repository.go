package restaurant

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
	GetByID(ctx context.Context, id uuid.UUID) (*Restaurant, error)
	IncrementAcceptedOrders(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (Stats, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Restaurant, error) {
	var res Restaurant
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, table_count, accepted_orders_count
		FROM restaurants
		WHERE id = $1
	`, id).Scan(&res.ID, &res.Name, &res.TableCount, &res.AcceptedOrdersCount)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRestaurantNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get restaurant: %w", err)
	}
	return &res, nil
}

func (r *repository) IncrementAcceptedOrders(ctx context.Context, id uuid.UUID) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "IncrementAcceptedOrders"),
		zap.String("restaurant_id", id.String()),
	)

	res, err := r.db.ExecContext(ctx, `
		UPDATE restaurants
		SET accepted_orders_count = accepted_orders_count + 1
		WHERE id = $1
	`, id)
	if err != nil {
		log.Error("failed to increment accepted orders", zap.Error(err))
		return fmt.Errorf("increment accepted orders: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("increment accepted orders: %w", err)
	}
	if n == 0 {
		return ErrRestaurantNotFound
	}
	return nil
}

// Stats counts owners and workers as users and sums the per restaurant
// accepted order counters.
func (r *repository) Stats(ctx context.Context) (Stats, error) {
	var (
		s       Stats
		workers int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM restaurants),
			(SELECT COUNT(*) FROM workers),
			(SELECT COALESCE(SUM(accepted_orders_count), 0) FROM restaurants),
			(SELECT COUNT(*) FROM menu_items)
	`).Scan(&s.Restaurants, &workers, &s.Orders, &s.Items)
	if err != nil {
		return Stats{}, fmt.Errorf("load stats: %w", err)
	}
	s.Users = s.Restaurants + workers
	return s, nil
}
