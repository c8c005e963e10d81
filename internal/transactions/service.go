package transactions

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"retailtracker/internal/core"
	"retailtracker/internal/store"
)

type Service struct {
	entries store.EntryReader
}

func NewService(entries store.EntryReader) *Service {
	return &Service{entries: entries}
}

// List returns the user's merged transactions matching f. Only the kinds
// the filter admits are read, and the range is handed to the store.
func (s *Service) List(ctx context.Context, userID string, f Filter) ([]core.Transaction, error) {
	if userID == "" {
		return nil, core.ErrUnauthenticated
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}

	var (
		sales    []core.Sale
		expenses []core.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	if f.Type.Includes(core.KindSale) {
		g.Go(func() error {
			var err error
			sales, err = s.entries.GetSales(gctx, userID, f.Range)
			return err
		})
	}
	if f.Type.Includes(core.KindExpense) {
		g.Go(func() error {
			var err error
			expenses, err = s.entries.GetExpenses(gctx, userID, f.Range)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, core.ErrUnexpected) {
			return nil, fmt.Errorf("list transactions: %w", err)
		}
		return nil, fmt.Errorf("list transactions: %w: %w", core.ErrUnexpected, err)
	}

	return Merge(sales, expenses, f), nil
}
