package billing

import (
	"context"
	"time"

	"ordersetu-be/internal/auth"
	"ordersetu-be/internal/events"
	"ordersetu-be/internal/logger"
	"ordersetu-be/internal/realtime"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderSettler removes a paid order. It must treat an already missing order
// as success.
type OrderSettler interface {
	Settle(ctx context.Context, orderID uuid.UUID) error
}

type AcceptedOrderCounter interface {
	IncrementAcceptedOrders(ctx context.Context, restaurantID uuid.UUID) error
}

type Service interface {
	CreateBill(ctx context.Context, in CreateInput) (*Bill, error)
	ListBills(ctx context.Context, p auth.Principal) ([]*Bill, error)
	ResolvePayment(ctx context.Context, p auth.Principal, billID uuid.UUID, status string) (*Bill, error)
}

type service struct {
	repo      Repository
	orders    OrderSettler
	counter   AcceptedOrderCounter
	notifier  realtime.Sender
	publisher events.Publisher
	now       func() time.Time
}

func NewService(
	repo Repository,
	orders OrderSettler,
	counter AcceptedOrderCounter,
	notifier realtime.Sender,
	publisher events.Publisher,
) Service {
	return &service{
		repo:      repo,
		orders:    orders,
		counter:   counter,
		notifier:  notifier,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *service) CreateBill(ctx context.Context, in CreateInput) (*Bill, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "CreateBill"),
	)

	b, err := NewBill(in, s.now().UTC())
	if err != nil {
		log.Info("rejected bill request", zap.Error(err))
		return nil, err
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.Event{
		Type:         events.BillCreated,
		RestaurantID: b.RestaurantID.String(),
		OrderID:      b.ConfirmedOrderID.String(),
		BillID:       b.ID.String(),
		Payload:      map[string]float64{"grandTotal": b.GrandTotal},
	})

	log.Info("bill created",
		zap.String("bill_id", b.ID.String()),
		zap.String("order_id", b.ConfirmedOrderID.String()),
	)
	return b, nil
}

func (s *service) ListBills(ctx context.Context, p auth.Principal) ([]*Bill, error) {
	bills, err := s.repo.ListByRestaurant(ctx, p.RestaurantID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list bills", zap.Error(err))
		return nil, err
	}
	return bills, nil
}

// ResolvePayment settles a Pending bill. Accepting pays off the order, which
// is removed along with the bill. Rejecting only removes the bill so the
// table can be billed again. The customer is notified once both removals
// succeeded; a failed attempt leaves the bill in its resolved status and the
// same call can be repeated.
func (s *service) ResolvePayment(ctx context.Context, p auth.Principal, billID uuid.UUID, raw string) (*Bill, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "ResolvePayment"),
		zap.String("bill_id", billID.String()),
	)

	status, err := ParsePaymentStatus(raw)
	if err != nil {
		return nil, err
	}

	current, err := s.repo.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	if current.RestaurantID != p.RestaurantID {
		return nil, ErrForbidden
	}

	b, err := s.repo.Resolve(ctx, billID, status)
	if err != nil {
		return nil, err
	}

	if status == StatusAccepted {
		if err := s.orders.Settle(ctx, b.ConfirmedOrderID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Delete(ctx, b.ID); err != nil {
		log.Error("failed to delete resolved bill", zap.Error(err))
		return nil, err
	}

	customer := realtime.CustomerTarget(b.ConfirmedOrderID.String())
	event := events.Event{
		RestaurantID: b.RestaurantID.String(),
		OrderID:      b.ConfirmedOrderID.String(),
		BillID:       b.ID.String(),
	}

	switch status {
	case StatusAccepted:
		if err := s.counter.IncrementAcceptedOrders(ctx, b.RestaurantID); err != nil {
			log.Warn("failed to increment accepted orders", zap.Error(err))
		}
		s.notifier.Send(customer, realtime.PaymentAccepted())
		event.Type = events.BillAccepted
	case StatusRejected:
		s.notifier.Send(customer, realtime.PaymentRejected())
		event.Type = events.BillRejected
	}

	events.Emit(ctx, s.publisher, event)
	log.Info("payment resolved", zap.String("status", string(status)))
	return b, nil
}
