package order

import (
	"context"
	"errors"
	"time"

	"ordersetu-be/internal/auth"
	"ordersetu-be/internal/events"
	"ordersetu-be/internal/logger"
	"ordersetu-be/internal/realtime"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type DeliverInput struct {
	RestaurantID string `json:"restaurantId"`
	Table        int    `json:"table"`
	ItemName     string `json:"itemName"`
	Quantity     int    `json:"quantity"`
}

type Service interface {
	Create(ctx context.Context, in CreateInput) (*ConfirmedOrder, error)
	Accept(ctx context.Context, p auth.Principal, orderID uuid.UUID) (*ConfirmedOrder, error)
	UpdateItemQuantity(ctx context.Context, p auth.Principal, orderID uuid.UUID, itemName string, qty int) ([]ItemChange, error)
	MarkDelivered(ctx context.Context, p auth.Principal, in DeliverInput) error
	Delete(ctx context.Context, p auth.Principal, orderID uuid.UUID) (*ConfirmedOrder, error)
	Settle(ctx context.Context, orderID uuid.UUID) error
	ListForWaiter(ctx context.Context, p auth.Principal) ([]TableView, error)
	KitchenSummary(ctx context.Context, p auth.Principal) ([]KitchenLine, error)
}

type service struct {
	repo      Repository
	notifier  realtime.Sender
	publisher events.Publisher
	now       func() time.Time
}

func NewService(repo Repository, notifier realtime.Sender, publisher events.Publisher) Service {
	return &service{
		repo:      repo,
		notifier:  notifier,
		publisher: publisher,
		now:       time.Now,
	}
}

func (s *service) Create(ctx context.Context, in CreateInput) (*ConfirmedOrder, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Create"),
	)

	o, err := NewConfirmedOrder(in, s.now().UTC())
	if err != nil {
		log.Info("rejected confirmed order", zap.Error(err))
		return nil, err
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.Event{
		Type:         events.OrderCreated,
		RestaurantID: o.RestaurantID.String(),
		OrderID:      o.ID.String(),
		Payload:      o.Items,
	})

	log.Info("confirmed order created",
		zap.String("order_id", o.ID.String()),
		zap.Int("table_number", o.TableNumber),
	)
	return o, nil
}

func (s *service) Accept(ctx context.Context, p auth.Principal, orderID uuid.UUID) (*ConfirmedOrder, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Accept"),
		zap.String("order_id", orderID.String()),
	)

	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if current.RestaurantID != p.RestaurantID {
		return nil, ErrForbidden
	}
	if current.IsAccepted {
		return nil, ErrAlreadyAccepted
	}

	o, err := s.repo.MarkAccepted(ctx, orderID, p.ID, s.now().UTC())
	if err != nil {
		if errors.Is(err, ErrAlreadyAccepted) {
			log.Info("lost accept race")
		}
		return nil, err
	}

	s.notifier.Send(realtime.KitchenTarget(o.RestaurantID.String()), realtime.OrderAccepted(o.Items))
	events.Emit(ctx, s.publisher, events.Event{
		Type:         events.OrderAccepted,
		RestaurantID: o.RestaurantID.String(),
		OrderID:      o.ID.String(),
		Payload:      map[string]string{"acceptedBy": p.ID.String()},
	})

	log.Info("order accepted", zap.String("worker_id", p.ID.String()))
	return o, nil
}

func (s *service) UpdateItemQuantity(ctx context.Context, p auth.Principal, orderID uuid.UUID, itemName string, qty int) ([]ItemChange, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateItemQuantity"),
		zap.String("order_id", orderID.String()),
		zap.String("item_name", itemName),
	)

	if qty < 0 {
		return nil, ErrInvalidQuantity
	}

	var changes []ItemChange
	o, err := s.repo.MutateByID(ctx, orderID, func(o *ConfirmedOrder) error {
		if o.RestaurantID != p.RestaurantID {
			return ErrForbidden
		}
		change, err := o.SetItemQuantity(itemName, qty)
		if err != nil {
			return err
		}
		changes = []ItemChange{change}
		return nil
	})
	if err != nil {
		return nil, err
	}

	updates := make([]realtime.ItemUpdate, 0, len(changes))
	for _, c := range changes {
		updates = append(updates, realtime.ItemUpdate(c))
	}
	s.notifier.Send(realtime.CustomerTarget(o.ID.String()), realtime.OrderUpdated(updates))
	events.Emit(ctx, s.publisher, events.Event{
		Type:         events.OrderItemUpdated,
		RestaurantID: o.RestaurantID.String(),
		OrderID:      o.ID.String(),
		Payload:      changes,
	})

	log.Info("item quantity updated", zap.Int("quantity", qty))
	return changes, nil
}

func (s *service) MarkDelivered(ctx context.Context, p auth.Principal, in DeliverInput) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "MarkDelivered"),
		zap.Int("table", in.Table),
		zap.String("item_name", in.ItemName),
	)

	if in.RestaurantID == "" || in.Table <= 0 || in.ItemName == "" || in.Quantity <= 0 {
		return ErrMissingFields
	}
	restaurantID, err := uuid.Parse(in.RestaurantID)
	if err != nil {
		return ErrInvalidData
	}
	if restaurantID != p.RestaurantID {
		return ErrForbidden
	}

	at := s.now().UTC()
	o, err := s.repo.MutateByTable(ctx, restaurantID, in.Table, func(o *ConfirmedOrder) error {
		return o.Deliver(in.ItemName, in.Quantity, at)
	})
	if err != nil {
		return err
	}

	s.notifier.Send(realtime.KitchenTarget(restaurantID.String()), realtime.ItemDelivered(in.ItemName, in.Quantity))
	events.Emit(ctx, s.publisher, events.Event{
		Type:         events.OrderItemDelivered,
		RestaurantID: restaurantID.String(),
		OrderID:      o.ID.String(),
		Payload:      ItemAmount{Name: in.ItemName, Quantity: in.Quantity},
	})

	log.Info("item delivered", zap.Int("quantity", in.Quantity), zap.String("state", string(o.State())))
	return nil
}

func (s *service) Delete(ctx context.Context, p auth.Principal, orderID uuid.UUID) (*ConfirmedOrder, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Delete"),
		zap.String("order_id", orderID.String()),
	)

	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if current.RestaurantID != p.RestaurantID {
		return nil, ErrForbidden
	}

	o, err := s.repo.Delete(ctx, orderID)
	if err != nil {
		return nil, err
	}

	events.Emit(ctx, s.publisher, events.Event{
		Type:         events.OrderDeleted,
		RestaurantID: o.RestaurantID.String(),
		OrderID:      o.ID.String(),
	})

	log.Info("confirmed order deleted")
	return o, nil
}

// Settle removes the order after its bill was paid. A missing order is not
// an error: it may have been deleted by staff already.
func (s *service) Settle(ctx context.Context, orderID uuid.UUID) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Settle"),
		zap.String("order_id", orderID.String()),
	)

	_, err := s.repo.Delete(ctx, orderID)
	if errors.Is(err, ErrOrderNotFound) {
		log.Info("order already gone")
		return nil
	}
	if err != nil {
		log.Error("failed to settle order", zap.Error(err))
		return err
	}

	log.Info("order settled")
	return nil
}

func (s *service) ListForWaiter(ctx context.Context, p auth.Principal) ([]TableView, error) {
	orders, err := s.repo.ListForWaiter(ctx, p.RestaurantID, p.ID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list waiter orders", zap.Error(err))
		return nil, err
	}
	return groupByTable(orders), nil
}

func (s *service) KitchenSummary(ctx context.Context, p auth.Principal) ([]KitchenLine, error) {
	orders, err := s.repo.ListAccepted(ctx, p.RestaurantID)
	if err != nil {
		logger.FromCtx(ctx).Error("failed to list accepted orders", zap.Error(err))
		return nil, err
	}
	return summarize(orders), nil
}
