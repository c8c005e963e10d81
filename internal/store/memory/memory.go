package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"retailtracker/internal/core"
	"retailtracker/internal/store"
)

// Store keeps entries in process memory. One mutex makes every single
// create/update/delete atomic.
type Store struct {
	mu            sync.Mutex
	now           func() time.Time
	nextSaleID    int64
	nextExpenseID int64
	sales         map[int64]core.Sale
	expenses      map[int64]core.Expense
	users         map[string]core.User
}

var _ store.EntryStore = (*Store)(nil)

func New() *Store {
	return NewWithClock(time.Now)
}

// NewWithClock returns a store stamping CreatedAt with now.
func NewWithClock(now func() time.Time) *Store {
	return &Store{
		now:      now,
		sales:    make(map[int64]core.Sale),
		expenses: make(map[int64]core.Expense),
		users:    make(map[string]core.User),
	}
}

func (s *Store) Ping(_ context.Context) error {
	return nil
}

// CreateSale stores the sale under a fresh sequential id.
func (s *Store) CreateSale(_ context.Context, userID string, data core.SaleData) (core.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSaleID++
	now := s.now().UTC()
	sale := core.Sale{
		ID:        s.nextSaleID,
		UserID:    userID,
		Amount:    data.Amount,
		Category:  data.Category,
		Date:      data.Date,
		Notes:     data.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sales[sale.ID] = sale
	return sale, nil
}

func (s *Store) GetSales(_ context.Context, userID string, r core.DateRange) ([]core.Sale, error) {
	s.mu.Lock()
	out := make([]core.Sale, 0)
	for _, sale := range s.sales {
		if sale.UserID == userID && r.Contains(sale.Date) {
			out = append(out, sale)
		}
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].Date, out[j].Date, out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (s *Store) GetSale(_ context.Context, id int64, userID string) (core.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[id]
	if !ok || sale.UserID != userID {
		return core.Sale{}, fmt.Errorf("sale %d: %w", id, core.ErrNotFound)
	}
	return sale, nil
}

func (s *Store) UpdateSale(_ context.Context, id int64, userID string, ch core.SaleChanges, updatedAt time.Time) (core.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[id]
	if !ok || sale.UserID != userID {
		return core.Sale{}, fmt.Errorf("sale %d: %w", id, core.ErrNotFound)
	}
	sale = sale.Apply(ch, updatedAt.UTC())
	s.sales[id] = sale
	return sale, nil
}

func (s *Store) DeleteSale(_ context.Context, id int64, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sale, ok := s.sales[id]
	if !ok || sale.UserID != userID {
		return fmt.Errorf("sale %d: %w", id, core.ErrNotFound)
	}
	delete(s.sales, id)
	return nil
}

func (s *Store) CreateExpense(_ context.Context, userID string, data core.ExpenseData) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextExpenseID++
	now := s.now().UTC()
	exp := core.Expense{
		ID:          s.nextExpenseID,
		UserID:      userID,
		Amount:      data.Amount,
		Type:        data.Type,
		Date:        data.Date,
		Description: data.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.expenses[exp.ID] = exp
	return exp, nil
}

func (s *Store) GetExpenses(_ context.Context, userID string, r core.DateRange) ([]core.Expense, error) {
	s.mu.Lock()
	out := make([]core.Expense, 0)
	for _, exp := range s.expenses {
		if exp.UserID == userID && r.Contains(exp.Date) {
			out = append(out, exp)
		}
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		return newerFirst(out[i].Date, out[j].Date, out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (s *Store) GetExpense(_ context.Context, id int64, userID string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.expenses[id]
	if !ok || exp.UserID != userID {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	return exp, nil
}

func (s *Store) UpdateExpense(_ context.Context, id int64, userID string, ch core.ExpenseChanges, updatedAt time.Time) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.expenses[id]
	if !ok || exp.UserID != userID {
		return core.Expense{}, fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	exp = exp.Apply(ch, updatedAt.UTC())
	s.expenses[id] = exp
	return exp, nil
}

func (s *Store) DeleteExpense(_ context.Context, id int64, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	exp, ok := s.expenses[id]
	if !ok || exp.UserID != userID {
		return fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	delete(s.expenses, id)
	return nil
}

// UpsertUser inserts u or refreshes its profile fields, keeping CreatedAt.
func (s *Store) UpsertUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	if prev, ok := s.users[u.ID]; ok {
		u.CreatedAt = prev.CreatedAt
	} else {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, fmt.Errorf("user %s: %w", id, core.ErrNotFound)
	}
	return u, nil
}

// newerFirst orders by date, then creation time, then id, all descending.
func newerFirst(da, db core.Date, ca, cb time.Time, ia, ib int64) bool {
	if da != db {
		return da > db
	}
	if !ca.Equal(cb) {
		return ca.After(cb)
	}
	return ia > ib
}
