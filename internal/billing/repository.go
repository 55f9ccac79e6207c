package billing

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"ordersetu-be/internal/logger"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, b *Bill) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bill, error)
	ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*Bill, error)
	Resolve(ctx context.Context, id uuid.UUID, status PaymentStatus) (*Bill, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const billColumns = `id, request_id, restaurant_id, confirmed_order_id, items, subtotal, service_charges, gst, grand_total, payment_status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (*Bill, error) {
	var (
		b     Bill
		items []byte
	)
	if err := row.Scan(
		&b.ID, &b.RequestID, &b.RestaurantID, &b.ConfirmedOrderID, &items,
		&b.Subtotal, &b.ServiceCharges, &b.GST, &b.GrandTotal, &b.PaymentStatus, &b.CreatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(items, &b.Items); err != nil {
		return nil, fmt.Errorf("decode bill items: %w", err)
	}
	return &b, nil
}

func (r *repository) Create(ctx context.Context, b *Bill) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "Create"),
		zap.String("request_id", b.RequestID),
	)

	items, err := json.Marshal(b.Items)
	if err != nil {
		return fmt.Errorf("encode bill items: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO bills (
			id, request_id, restaurant_id, confirmed_order_id, items,
			subtotal, service_charges, gst, grand_total, payment_status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, b.ID, b.RequestID, b.RestaurantID, b.ConfirmedOrderID, items,
		b.Subtotal, b.ServiceCharges, b.GST, b.GrandTotal, string(b.PaymentStatus), b.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == PgUniqueViolation {
			log.Info("duplicate bill request")
			return ErrDuplicateRequest
		}
		log.Error("failed to insert bill", zap.Error(err))
		return fmt.Errorf("insert bill: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Bill, error) {
	b, err := scanBill(r.db.QueryRowContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBillNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get bill: %w", err)
	}
	return b, nil
}

func (r *repository) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]*Bill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills WHERE restaurant_id = $1 ORDER BY created_at`, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	bills := []*Bill{}
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bill: %w", err)
		}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bills: %w", err)
	}
	return bills, nil
}

// Resolve moves a Pending bill to status. A bill already holding the same
// status matches again, so a resolution interrupted before the bill was
// deleted can be repeated. Any other status is ErrAlreadyResolved.
func (r *repository) Resolve(ctx context.Context, id uuid.UUID, status PaymentStatus) (*Bill, error) {
	b, err := scanBill(r.db.QueryRowContext(ctx, `
		UPDATE bills SET payment_status = $2
		WHERE id = $1 AND payment_status IN ('Pending', $2)
		RETURNING `+billColumns, id, string(status)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAlreadyResolved
	}
	if err != nil {
		return nil, fmt.Errorf("resolve bill: %w", err)
	}
	return b, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bills WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete bill: %w", err)
	}
	if n == 0 {
		return ErrBillNotFound
	}
	return nil
}
