package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"retailtracker/internal/core"
	"retailtracker/internal/store"
)

// Engine produces the dashboard Stats for one user as of now.
type Engine interface {
	Stats(ctx context.Context, userID string, now time.Time) (core.Stats, error)
}

// ScanEngine loads the user's rows and aggregates them in process.
type ScanEngine struct {
	entries store.EntryReader
}

func NewScanEngine(entries store.EntryReader) *ScanEngine {
	return &ScanEngine{entries: entries}
}

func (e *ScanEngine) Stats(ctx context.Context, userID string, now time.Time) (core.Stats, error) {
	if userID == "" {
		return core.Stats{}, core.ErrUnauthenticated
	}

	// Rows before the week never contribute
	r := core.DateRange{Start: WindowAt(now).WeekStart}

	var (
		sales    []core.Sale
		expenses []core.Expense
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sales, err = e.entries.GetSales(gctx, userID, r)
		return err
	})
	g.Go(func() error {
		var err error
		expenses, err = e.entries.GetExpenses(gctx, userID, r)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Stats{}, unexpected("scan entries", err)
	}

	return Compute(sales, expenses, now), nil
}

// PushdownEngine lets the backend run the aggregation.
type PushdownEngine struct {
	querier store.StatsQuerier
}

func NewPushdownEngine(q store.StatsQuerier) *PushdownEngine {
	return &PushdownEngine{querier: q}
}

func (e *PushdownEngine) Stats(ctx context.Context, userID string, now time.Time) (core.Stats, error) {
	if userID == "" {
		return core.Stats{}, core.ErrUnauthenticated
	}
	w := WindowAt(now)
	stats, err := e.querier.QueryStats(ctx, userID, store.StatsQuery{
		Today:         w.Today,
		WeekStart:     w.WeekStart,
		TopCategories: TopCategories,
	})
	if err != nil {
		return core.Stats{}, unexpected("query stats", err)
	}
	if stats.ExpensesByCategory == nil {
		stats.ExpensesByCategory = []core.CategoryAmount{}
	}
	if stats.SalesTrend == nil {
		stats.SalesTrend = []core.DateAmount{}
	}
	return withProfit(stats), nil
}

func unexpected(op string, err error) error {
	if errors.Is(err, core.ErrUnexpected) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, core.ErrUnexpected, err)
}
