package order

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ordersetu-be/internal/apperror"
	"ordersetu-be/internal/auth"
	"ordersetu-be/internal/events"
	"ordersetu-be/internal/realtime"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Mocks ---

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, o *ConfirmedOrder) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockRepository) GetByID(ctx context.Context, id uuid.UUID) (*ConfirmedOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ConfirmedOrder), args.Error(1)
}

func (m *MockRepository) MarkAccepted(ctx context.Context, id, workerID uuid.UUID, at time.Time) (*ConfirmedOrder, error) {
	args := m.Called(ctx, id, workerID, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ConfirmedOrder), args.Error(1)
}

// applyMutation stands in for the locked transaction: the stored order is
// handed to fn and returned only if fn succeeds.
func applyMutation(args mock.Arguments, fn MutateFunc) (*ConfirmedOrder, error) {
	if err := args.Error(1); err != nil {
		return nil, err
	}
	o := args.Get(0).(*ConfirmedOrder)
	if err := fn(o); err != nil {
		return nil, err
	}
	return o, nil
}

func (m *MockRepository) MutateByID(ctx context.Context, id uuid.UUID, fn MutateFunc) (*ConfirmedOrder, error) {
	return applyMutation(m.Called(ctx, id), fn)
}

func (m *MockRepository) MutateByTable(ctx context.Context, restaurantID uuid.UUID, table int, fn MutateFunc) (*ConfirmedOrder, error) {
	return applyMutation(m.Called(ctx, restaurantID, table), fn)
}

func (m *MockRepository) Delete(ctx context.Context, id uuid.UUID) (*ConfirmedOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ConfirmedOrder), args.Error(1)
}

func (m *MockRepository) ListForWaiter(ctx context.Context, restaurantID, workerID uuid.UUID) ([]*ConfirmedOrder, error) {
	args := m.Called(ctx, restaurantID, workerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ConfirmedOrder), args.Error(1)
}

func (m *MockRepository) ListAccepted(ctx context.Context, restaurantID uuid.UUID) ([]*ConfirmedOrder, error) {
	args := m.Called(ctx, restaurantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ConfirmedOrder), args.Error(1)
}

type sent struct {
	target realtime.Target
	event  realtime.Event
}

type recordingSender struct {
	mu   sync.Mutex
	sent []sent
}

func (r *recordingSender) Send(target realtime.Target, event realtime.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sent{target: target, event: event})
}

type recordingPublisher struct {
	events []events.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	repo      *MockRepository
	sender    *recordingSender
	publisher *recordingPublisher
	svc       *service
	now       time.Time
}

func newFixture() *fixture {
	f := &fixture{
		repo:      new(MockRepository),
		sender:    &recordingSender{},
		publisher: &recordingPublisher{},
		now:       time.Date(2025, 5, 1, 19, 30, 0, 0, time.UTC),
	}
	f.svc = NewService(f.repo, f.sender, f.publisher).(*service)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func waiterOf(o *ConfirmedOrder) auth.Principal {
	return auth.Principal{ID: uuid.New(), RestaurantID: o.RestaurantID, Role: auth.RoleWaiter}
}

// --- Tests ---

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Create", ctx, mock.AnythingOfType("*order.ConfirmedOrder")).Return(nil)

		o, err := f.svc.Create(ctx, CreateInput{
			RestaurantID: uuid.NewString(),
			TableNumber:  7,
			Items:        []ItemInput{{ItemName: "Pizza", Quantity: 2, Price: 250}},
		})
		require.NoError(t, err)
		assert.Equal(t, StateOpen, o.State())
		assert.Equal(t, f.now, o.CreatedAt)
		assert.Empty(t, f.sender.sent, "creation notifies no one")
		require.Len(t, f.publisher.events, 1)
		assert.Equal(t, events.OrderCreated, f.publisher.events[0].Type)
	})

	t.Run("InvalidInput", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Create(ctx, CreateInput{RestaurantID: "x"})
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("TableOccupied", func(t *testing.T) {
		f := newFixture()
		f.repo.On("Create", ctx, mock.Anything).Return(ErrTableOccupied)

		_, err := f.svc.Create(ctx, CreateInput{
			RestaurantID: uuid.NewString(),
			TableNumber:  1,
			Items:        []ItemInput{{ItemName: "Tea", Quantity: 1}},
		})
		assert.ErrorIs(t, err, ErrTableOccupied)
		assert.Empty(t, f.publisher.events)
	})
}

func TestService_Accept(t *testing.T) {
	ctx := context.Background()

	t.Run("NotifiesKitchen", func(t *testing.T) {
		f := newFixture()
		o := sampleOrder()
		p := waiterOf(o)
		accepted := *o
		accepted.IsAccepted = true
		accepted.AcceptedBy = &p.ID

		f.repo.On("GetByID", ctx, o.ID).Return(o, nil)
		f.repo.On("MarkAccepted", ctx, o.ID, p.ID, f.now).Return(&accepted, nil)

		got, err := f.svc.Accept(ctx, p, o.ID)
		require.NoError(t, err)
		assert.Equal(t, StateAccepted, got.State())

		require.Len(t, f.sender.sent, 1)
		assert.Equal(t, realtime.KitchenTarget(o.RestaurantID.String()), f.sender.sent[0].target)
		event := f.sender.sent[0].event.(realtime.OrderAcceptedEvent)
		assert.Equal(t, o.Items, event.Items)
	})

	t.Run("SecondAcceptIsConflict", func(t *testing.T) {
		f := newFixture()
		o := sampleOrder()
		first := uuid.New()
		o.IsAccepted = true
		o.AcceptedBy = &first

		f.repo.On("GetByID", ctx, o.ID).Return(o, nil)

		_, err := f.svc.Accept(ctx, waiterOf(o), o.ID)
		assert.ErrorIs(t, err, ErrAlreadyAccepted)
		assert.Equal(t, first, *o.AcceptedBy, "acceptedBy is unchanged")
		assert.Empty(t, f.sender.sent)
		f.repo.AssertNotCalled(t, "MarkAccepted", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("LostRace", func(t *testing.T) {
		f := newFixture()
		o := sampleOrder()
		p := waiterOf(o)

		f.repo.On("GetByID", ctx, o.ID).Return(o, nil)
		f.repo.On("MarkAccepted", ctx, o.ID, p.ID, f.now).Return(nil, ErrAlreadyAccepted)

		_, err := f.svc.Accept(ctx, p, o.ID)
		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
		assert.Empty(t, f.sender.sent)
	})

	t.Run("NotFound", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.repo.On("GetByID", ctx, id).Return(nil, ErrOrderNotFound)

		_, err := f.svc.Accept(ctx, auth.Principal{ID: uuid.New()}, id)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("OtherRestaurant", func(t *testing.T) {
		f := newFixture()
		o := sampleOrder()
		f.repo.On("GetByID", ctx, o.ID).Return(o, nil)

		_, err := f.svc.Accept(ctx, auth.Principal{ID: uuid.New(), RestaurantID: uuid.New()}, o.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestService_UpdateItemQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("RemoveNotifiesCustomer", func(t *testing.T) {
		f := newFixture()
		o := sampleOrder()
		f.repo.On("MutateByID", ctx, o.ID).Return(o, nil)

		changes, err := f.svc.UpdateItemQuantity(ctx, waiterOf(o), o.ID, "Pizza", 0)
		require.NoError(t, err)
		assert.Equal(t, []ItemChange{{ItemName: "Pizza", OldQty: 2, NewQty: 0, Action: ActionRemoved}}, changes)
		assert.Len(t, o.Items, 1)

		require.Len(t, f.sender.sent, 1)
		assert.Equal(t, realtime.CustomerTarget(o.ID.String()), f.sender.sent[0].target)
		event := f.sender.sent[0].event.(realtime.OrderUpdatedEvent)
		assert.Equal(t, []realtime.ItemUpdate{{ItemName: "Pizza", OldQty: 2, NewQty: 0, Action: "removed"}}, event.Updates)
	})

	t.Run("Overwrite", func(t *testing.T) {
		f := newFixture()
		o := sampleOrder()
		f.repo.On("MutateByID", ctx, o.ID).Return(o, nil)

		changes, err := f.svc.UpdateItemQuantity(ctx, waiterOf(o), o.ID, "Coke", 3)
		require.NoError(t, err)
		assert.Equal(t, ActionUpdated, changes[0].Action)
		assert.Equal(t, 3, o.Items[1].Quantity)
	})

	t.Run("ItemMissing", func(t *testing.T) {
		f := newFixture()
		o := sampleOrder()
		f.repo.On("MutateByID", ctx, o.ID).Return(o, nil)

		_, err := f.svc.UpdateItemQuantity(ctx, waiterOf(o), o.ID, "Pasta", 1)
		assert.ErrorIs(t, err, ErrItemNotFound)
		assert.Empty(t, f.sender.sent)
	})

	t.Run("OrderMissing", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.repo.On("MutateByID", ctx, id).Return(nil, ErrOrderNotFound)

		_, err := f.svc.UpdateItemQuantity(ctx, auth.Principal{}, id, "Pizza", 1)
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("OtherRestaurant", func(t *testing.T) {
		f := newFixture()
		o := sampleOrder()
		f.repo.On("MutateByID", ctx, o.ID).Return(o, nil)

		_, err := f.svc.UpdateItemQuantity(ctx, auth.Principal{RestaurantID: uuid.New()}, o.ID, "Pizza", 1)
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Len(t, o.Items, 2)
	})

	t.Run("NegativeQuantity", func(t *testing.T) {
		f := newFixture()
		_, err := f.svc.UpdateItemQuantity(ctx, auth.Principal{}, uuid.New(), "Pizza", -1)
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})
}

func TestService_MarkDelivered(t *testing.T) {
	ctx := context.Background()

	t.Run("NotifiesKitchen", func(t *testing.T) {
		f := newFixture()
		o := sampleOrder()
		f.repo.On("MutateByTable", ctx, o.RestaurantID, o.TableNumber).Return(o, nil)

		err := f.svc.MarkDelivered(ctx, waiterOf(o), DeliverInput{
			RestaurantID: o.RestaurantID.String(),
			Table:        o.TableNumber,
			ItemName:     "Pizza",
			Quantity:     2,
		})
		require.NoError(t, err)
		assert.Len(t, o.Items, 1)
		assert.Equal(t, StateDelivering, o.State())

		require.Len(t, f.sender.sent, 1)
		assert.Equal(t, realtime.KitchenTarget(o.RestaurantID.String()), f.sender.sent[0].target)
		assert.Equal(t, realtime.ItemDelivered("Pizza", 2), f.sender.sent[0].event)
	})

	t.Run("MissingFields", func(t *testing.T) {
		f := newFixture()
		err := f.svc.MarkDelivered(ctx, auth.Principal{}, DeliverInput{Table: 1})
		assert.ErrorIs(t, err, ErrMissingFields)
	})

	t.Run("OtherRestaurant", func(t *testing.T) {
		f := newFixture()
		err := f.svc.MarkDelivered(ctx, auth.Principal{RestaurantID: uuid.New()}, DeliverInput{
			RestaurantID: uuid.NewString(), Table: 1, ItemName: "Tea", Quantity: 1,
		})
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("NoOrderAtTable", func(t *testing.T) {
		f := newFixture()
		o := sampleOrder()
		f.repo.On("MutateByTable", ctx, o.RestaurantID, 9).Return(nil, ErrOrderNotFound)

		err := f.svc.MarkDelivered(ctx, waiterOf(o), DeliverInput{
			RestaurantID: o.RestaurantID.String(), Table: 9, ItemName: "Tea", Quantity: 1,
		})
		assert.ErrorIs(t, err, ErrOrderNotFound)
		assert.Empty(t, f.sender.sent)
	})
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		f := newFixture()
		o := sampleOrder()
		f.repo.On("GetByID", ctx, o.ID).Return(o, nil)
		f.repo.On("Delete", ctx, o.ID).Return(o, nil)

		got, err := f.svc.Delete(ctx, waiterOf(o), o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.ID, got.ID)
		assert.Equal(t, events.OrderDeleted, f.publisher.events[0].Type)
	})

	t.Run("OtherRestaurant", func(t *testing.T) {
		f := newFixture()
		o := sampleOrder()
		f.repo.On("GetByID", ctx, o.ID).Return(o, nil)

		_, err := f.svc.Delete(ctx, auth.Principal{RestaurantID: uuid.New()}, o.ID)
		assert.ErrorIs(t, err, ErrForbidden)
		f.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestService_Settle(t *testing.T) {
	ctx := context.Background()

	t.Run("Deletes", func(t *testing.T) {
		f := newFixture()
		o := sampleOrder()
		f.repo.On("Delete", ctx, o.ID).Return(o, nil)
		assert.NoError(t, f.svc.Settle(ctx, o.ID))
	})

	t.Run("AlreadyGone", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.repo.On("Delete", ctx, id).Return(nil, ErrOrderNotFound)
		assert.NoError(t, f.svc.Settle(ctx, id))
	})

	t.Run("StoreFailure", func(t *testing.T) {
		f := newFixture()
		id := uuid.New()
		f.repo.On("Delete", ctx, id).Return(nil, errors.New("db down"))
		assert.Error(t, f.svc.Settle(ctx, id))
	})
}

func TestService_Lists(t *testing.T) {
	ctx := context.Background()
	o := sampleOrder()
	p := waiterOf(o)

	t.Run("ListForWaiter", func(t *testing.T) {
		f := newFixture()
		f.repo.On("ListForWaiter", ctx, p.RestaurantID, p.ID).Return([]*ConfirmedOrder{o}, nil)

		views, err := f.svc.ListForWaiter(ctx, p)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, o.TableNumber, views[0].Table)
	})

	t.Run("KitchenSummary", func(t *testing.T) {
		f := newFixture()
		f.repo.On("ListAccepted", ctx, p.RestaurantID).Return([]*ConfirmedOrder{o}, nil)

		lines, err := f.svc.KitchenSummary(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, KitchenLine{Item: "Pizza", Quantity: 2}, lines[0])
	})

	t.Run("StoreFailure", func(t *testing.T) {
		f := newFixture()
		f.repo.On("ListAccepted", ctx, p.RestaurantID).Return(nil, errors.New("db down"))

		_, err := f.svc.KitchenSummary(ctx, p)
		assert.Error(t, err)
	})
}

// Accept, edit and deliver run against one order in sequence.
func TestService_TableLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	o := sampleOrder()
	p := waiterOf(o)

	accepted := *o
	accepted.IsAccepted = true
	accepted.AcceptedBy = &p.ID

	f.repo.On("GetByID", ctx, o.ID).Return(o, nil)
	f.repo.On("MarkAccepted", ctx, o.ID, p.ID, f.now).Return(&accepted, nil)
	f.repo.On("MutateByID", ctx, o.ID).Return(&accepted, nil)
	f.repo.On("MutateByTable", ctx, o.RestaurantID, o.TableNumber).Return(&accepted, nil)

	_, err := f.svc.Accept(ctx, p, o.ID)
	require.NoError(t, err)

	_, err = f.svc.UpdateItemQuantity(ctx, p, o.ID, "Pizza", 0)
	require.NoError(t, err)

	err = f.svc.MarkDelivered(ctx, p, DeliverInput{
		RestaurantID: o.RestaurantID.String(), Table: o.TableNumber, ItemName: "Coke", Quantity: 1,
	})
	require.NoError(t, err)

	assert.Empty(t, accepted.Items)
	assert.Equal(t, StateDelivering, accepted.State())

	types := make([]realtime.EventType, 0, len(f.sender.sent))
	for _, s := range f.sender.sent {
		types = append(types, s.event.EventType())
	}
	assert.Equal(t, []realtime.EventType{
		realtime.EventOrderAccepted,
		realtime.EventOrderUpdated,
		realtime.EventItemDelivered,
	}, types)
	f.repo.AssertExpectations(t)
}
