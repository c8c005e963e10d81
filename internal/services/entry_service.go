package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"retailtracker/internal/amqp"
	"retailtracker/internal/core"
	"retailtracker/internal/store"
)

// EventPublisher announces committed entry changes.
type EventPublisher interface {
	PublishEntryEvent(ctx context.Context, ev amqp.EntryEvent) error
}

// EntryStore is the part of the store the service writes through.
type EntryStore interface {
	store.SaleStore
	store.ExpenseStore
}

// EntryService validates entry writes, applies them to the store and
// publishes a change event. Validation runs before any store call.
type EntryService struct {
	store     EntryStore
	publisher EventPublisher
	now       func() time.Time
}

type Option func(*EntryService)

// WithPublisher enables change events. Without it writes are silent.
func WithPublisher(p EventPublisher) Option {
	return func(s *EntryService) { s.publisher = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *EntryService) { s.now = now }
}

func NewEntryService(st EntryStore, opts ...Option) *EntryService {
	s := &EntryService{store: st, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *EntryService) CreateSale(ctx context.Context, userID string, in core.SaleInput) (core.Sale, error) {
	if userID == "" {
		return core.Sale{}, core.ErrUnauthenticated
	}
	data, err := in.Validate()
	if err != nil {
		return core.Sale{}, err
	}
	sale, err := s.store.CreateSale(ctx, userID, data)
	if err != nil {
		return core.Sale{}, storeError("create sale", err)
	}
	s.publish(ctx, core.KindSale, amqp.ActionCreated, sale.ID, userID)
	return sale, nil
}

func (s *EntryService) GetSales(ctx context.Context, userID string, r core.DateRange) ([]core.Sale, error) {
	if userID == "" {
		return nil, core.ErrUnauthenticated
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	sales, err := s.store.GetSales(ctx, userID, r)
	if err != nil {
		return nil, storeError("get sales", err)
	}
	return sales, nil
}

func (s *EntryService) GetSale(ctx context.Context, userID string, id int64) (core.Sale, error) {
	if userID == "" {
		return core.Sale{}, core.ErrUnauthenticated
	}
	sale, err := s.store.GetSale(ctx, id, userID)
	if err != nil {
		return core.Sale{}, storeError("get sale", err)
	}
	return sale, nil
}

func (s *EntryService) UpdateSale(ctx context.Context, userID string, id int64, patch core.SalePatch) (core.Sale, error) {
	if userID == "" {
		return core.Sale{}, core.ErrUnauthenticated
	}
	ch, err := patch.Validate()
	if err != nil {
		return core.Sale{}, err
	}
	sale, err := s.store.UpdateSale(ctx, id, userID, ch, s.now())
	if err != nil {
		return core.Sale{}, storeError("update sale", err)
	}
	s.publish(ctx, core.KindSale, amqp.ActionUpdated, sale.ID, userID)
	return sale, nil
}

func (s *EntryService) DeleteSale(ctx context.Context, userID string, id int64) error {
	if userID == "" {
		return core.ErrUnauthenticated
	}
	if err := s.store.DeleteSale(ctx, id, userID); err != nil {
		return storeError("delete sale", err)
	}
	s.publish(ctx, core.KindSale, amqp.ActionDeleted, id, userID)
	return nil
}

func (s *EntryService) CreateExpense(ctx context.Context, userID string, in core.ExpenseInput) (core.Expense, error) {
	if userID == "" {
		return core.Expense{}, core.ErrUnauthenticated
	}
	data, err := in.Validate()
	if err != nil {
		return core.Expense{}, err
	}
	exp, err := s.store.CreateExpense(ctx, userID, data)
	if err != nil {
		return core.Expense{}, storeError("create expense", err)
	}
	s.publish(ctx, core.KindExpense, amqp.ActionCreated, exp.ID, userID)
	return exp, nil
}

func (s *EntryService) GetExpenses(ctx context.Context, userID string, r core.DateRange) ([]core.Expense, error) {
	if userID == "" {
		return nil, core.ErrUnauthenticated
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	expenses, err := s.store.GetExpenses(ctx, userID, r)
	if err != nil {
		return nil, storeError("get expenses", err)
	}
	return expenses, nil
}

func (s *EntryService) GetExpense(ctx context.Context, userID string, id int64) (core.Expense, error) {
	if userID == "" {
		return core.Expense{}, core.ErrUnauthenticated
	}
	exp, err := s.store.GetExpense(ctx, id, userID)
	if err != nil {
		return core.Expense{}, storeError("get expense", err)
	}
	return exp, nil
}

func (s *EntryService) UpdateExpense(ctx context.Context, userID string, id int64, patch core.ExpensePatch) (core.Expense, error) {
	if userID == "" {
		return core.Expense{}, core.ErrUnauthenticated
	}
	ch, err := patch.Validate()
	if err != nil {
		return core.Expense{}, err
	}
	exp, err := s.store.UpdateExpense(ctx, id, userID, ch, s.now())
	if err != nil {
		return core.Expense{}, storeError("update expense", err)
	}
	s.publish(ctx, core.KindExpense, amqp.ActionUpdated, exp.ID, userID)
	return exp, nil
}

func (s *EntryService) DeleteExpense(ctx context.Context, userID string, id int64) error {
	if userID == "" {
		return core.ErrUnauthenticated
	}
	if err := s.store.DeleteExpense(ctx, id, userID); err != nil {
		return storeError("delete expense", err)
	}
	s.publish(ctx, core.KindExpense, amqp.ActionDeleted, id, userID)
	return nil
}

// publish is best effort: the write is already committed.
func (s *EntryService) publish(ctx context.Context, kind core.EntryKind, action amqp.Action, id int64, userID string) {
	if s.publisher == nil {
		return
	}
	ev := amqp.NewEntryEvent(kind, action, id, userID, s.now())
	if err := s.publisher.PublishEntryEvent(ctx, ev); err != nil {
		slog.ErrorContext(ctx, "Failed to publish entry event",
			"kind", kind,
			"action", action,
			"id", id,
			"error", err)
	}
}

// storeError keeps NotFound and Unexpected as they are and classifies
// anything else as Unexpected.
func storeError(op string, err error) error {
	if errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrUnexpected) || errors.Is(err, core.ErrInvalidInput) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, core.ErrUnexpected, err)
}
