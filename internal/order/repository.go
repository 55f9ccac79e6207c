package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ordersetu-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

// MutateFunc edits a locked order in place. Returning an error rolls the
// transaction back.
type MutateFunc func(o *ConfirmedOrder) error

type Repository interface {
	Create(ctx context.Context, o *ConfirmedOrder) error
	GetByID(ctx context.Context, id uuid.UUID) (*ConfirmedOrder, error)
	MarkAccepted(ctx context.Context, id, workerID uuid.UUID, at time.Time) (*ConfirmedOrder, error)
	MutateByID(ctx context.Context, id uuid.UUID, fn MutateFunc) (*ConfirmedOrder, error)
	MutateByTable(ctx context.Context, restaurantID uuid.UUID, table int, fn MutateFunc) (*ConfirmedOrder, error)
	Delete(ctx context.Context, id uuid.UUID) (*ConfirmedOrder, error)
	ListForWaiter(ctx context.Context, restaurantID, workerID uuid.UUID) ([]*ConfirmedOrder, error)
	ListAccepted(ctx context.Context, restaurantID uuid.UUID) ([]*ConfirmedOrder, error)
}

type repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db, now: time.Now}
}

const orderColumns = `id, restaurant_id, table_number, confirmed_items, is_accepted, accepted_by, delivered_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*ConfirmedOrder, error) {
	var (
		o           ConfirmedOrder
		items       []byte
		acceptedBy  uuid.NullUUID
		deliveredAt sql.NullTime
	)
	if err := row.Scan(
		&o.ID, &o.RestaurantID, &o.TableNumber, &items,
		&o.IsAccepted, &acceptedBy, &deliveredAt, &o.CreatedAt, &o.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("decode confirmed_items: %w", err)
	}
	if o.Items == nil {
		o.Items = []Item{}
	}
	if acceptedBy.Valid {
		id := acceptedBy.UUID
		o.AcceptedBy = &id
	}
	if deliveredAt.Valid {
		t := deliveredAt.Time
		o.DeliveredAt = &t
	}
	return &o, nil
}

func (r *repository) Create(ctx context.Context, o *ConfirmedOrder) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("restaurant_id", o.RestaurantID.String()),
		zap.Int("table_number", o.TableNumber),
	)

	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encode confirmed_items: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO confirmed_orders (
			id, restaurant_id, table_number, confirmed_items,
			is_accepted, created_at, updated_at
		) VALUES ($1, $2, $3, $4, FALSE, $5, $6)
	`, o.ID, o.RestaurantID, o.TableNumber, items, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == PgUniqueViolation {
			log.Info("table already has an open order")
			return ErrTableOccupied
		}
		log.Error("failed to insert confirmed order", zap.Error(err))
		return fmt.Errorf("insert confirmed order: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*ConfirmedOrder, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM confirmed_orders WHERE id = $1`, id)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get confirmed order: %w", err)
	}
	return o, nil
}

// MarkAccepted flips is_accepted only if it is still false, so of two racing
// accepts exactly one succeeds.
func (r *repository) MarkAccepted(ctx context.Context, id, workerID uuid.UUID, at time.Time) (*ConfirmedOrder, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE confirmed_orders
		SET is_accepted = TRUE, accepted_by = $2, updated_at = $3
		WHERE id = $1 AND is_accepted = FALSE
		RETURNING `+orderColumns, id, workerID, at)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAlreadyAccepted
	}
	if err != nil {
		return nil, fmt.Errorf("accept confirmed order: %w", err)
	}
	return o, nil
}

func (r *repository) MutateByID(ctx context.Context, id uuid.UUID, fn MutateFunc) (*ConfirmedOrder, error) {
	return r.mutate(ctx,
		`SELECT `+orderColumns+` FROM confirmed_orders WHERE id = $1 FOR UPDATE`,
		[]any{id}, fn)
}

func (r *repository) MutateByTable(ctx context.Context, restaurantID uuid.UUID, table int, fn MutateFunc) (*ConfirmedOrder, error) {
	return r.mutate(ctx,
		`SELECT `+orderColumns+` FROM confirmed_orders WHERE restaurant_id = $1 AND table_number = $2 FOR UPDATE`,
		[]any{restaurantID, table}, fn)
}

// mutate runs a locked read-modify-write of the item list.
func (r *repository) mutate(ctx context.Context, query string, args []any, fn MutateFunc) (*ConfirmedOrder, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "mutate"),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	o, err := scanOrder(tx.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		log.Error("failed to lock confirmed order", zap.Error(err))
		return nil, fmt.Errorf("lock confirmed order: %w", err)
	}

	if err := fn(o); err != nil {
		return nil, err
	}

	items, err := json.Marshal(o.Items)
	if err != nil {
		return nil, fmt.Errorf("encode confirmed_items: %w", err)
	}
	o.UpdatedAt = r.now()

	if _, err := tx.ExecContext(ctx, `
		UPDATE confirmed_orders
		SET confirmed_items = $2, delivered_at = $3, updated_at = $4
		WHERE id = $1
	`, o.ID, items, o.DeliveredAt, o.UpdatedAt); err != nil {
		log.Error("failed to update confirmed order", zap.Error(err))
		return nil, fmt.Errorf("update confirmed order: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return o, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (*ConfirmedOrder, error) {
	row := r.db.QueryRowContext(ctx,
		`DELETE FROM confirmed_orders WHERE id = $1 RETURNING `+orderColumns, id)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete confirmed order: %w", err)
	}
	return o, nil
}

// ListForWaiter returns the restaurant's orders that are still unclaimed or
// were accepted by workerID.
func (r *repository) ListForWaiter(ctx context.Context, restaurantID, workerID uuid.UUID) ([]*ConfirmedOrder, error) {
	return r.list(ctx, `
		SELECT `+orderColumns+`
		FROM confirmed_orders
		WHERE restaurant_id = $1 AND (is_accepted = FALSE OR accepted_by = $2)
		ORDER BY table_number, created_at
	`, restaurantID, workerID)
}

func (r *repository) ListAccepted(ctx context.Context, restaurantID uuid.UUID) ([]*ConfirmedOrder, error) {
	return r.list(ctx, `
		SELECT `+orderColumns+`
		FROM confirmed_orders
		WHERE restaurant_id = $1 AND is_accepted = TRUE
		ORDER BY created_at
	`, restaurantID)
}

func (r *repository) list(ctx context.Context, query string, args ...any) ([]*ConfirmedOrder, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list confirmed orders: %w", err)
	}
	defer rows.Close()

	orders := []*ConfirmedOrder{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan confirmed order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate confirmed orders: %w", err)
	}
	return orders, nil
}
