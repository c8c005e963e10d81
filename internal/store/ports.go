// Package store declares the Entry Store contract shared by the memory and
// SQLite backends.
//
// Every operation is scoped by userID. Operations on a row that is absent or
// owned by someone else fail with core.ErrNotFound; lower-layer failures are
// wrapped with core.ErrUnexpected.
package store

import (
	"context"
	"time"

	"retailtracker/internal/core"
)

// Ports for outbound adapters.
type (
	SaleStore interface {
		CreateSale(ctx context.Context, userID string, data core.SaleData) (core.Sale, error)
		// GetSales returns the user's sales inside r, newest first.
		GetSales(ctx context.Context, userID string, r core.DateRange) ([]core.Sale, error)
		GetSale(ctx context.Context, id int64, userID string) (core.Sale, error)
		UpdateSale(ctx context.Context, id int64, userID string, ch core.SaleChanges, updatedAt time.Time) (core.Sale, error)
		DeleteSale(ctx context.Context, id int64, userID string) error
	}

	ExpenseStore interface {
		CreateExpense(ctx context.Context, userID string, data core.ExpenseData) (core.Expense, error)
		GetExpenses(ctx context.Context, userID string, r core.DateRange) ([]core.Expense, error)
		GetExpense(ctx context.Context, id int64, userID string) (core.Expense, error)
		UpdateExpense(ctx context.Context, id int64, userID string, ch core.ExpenseChanges, updatedAt time.Time) (core.Expense, error)
		DeleteExpense(ctx context.Context, id int64, userID string) error
	}

	// EntryReader is the read side used by aggregation and merging.
	EntryReader interface {
		GetSales(ctx context.Context, userID string, r core.DateRange) ([]core.Sale, error)
		GetExpenses(ctx context.Context, userID string, r core.DateRange) ([]core.Expense, error)
	}

	UserStore interface {
		UpsertUser(ctx context.Context, u core.User) (core.User, error)
		GetUser(ctx context.Context, id string) (core.User, error)
	}

	// EntryStore is everything a backend provides.
	EntryStore interface {
		SaleStore
		ExpenseStore
		UserStore
		Ping(ctx context.Context) error
	}
)

// StatsQuery bounds one aggregated read: rows dated Today form the daily
// sums, rows dated on or after WeekStart form the weekly ones.
type StatsQuery struct {
	Today         core.Date
	WeekStart     core.Date
	TopCategories int
}

// StatsQuerier computes the dashboard rollup inside the backend. Profit
// fields are left to the caller.
type StatsQuerier interface {
	QueryStats(ctx context.Context, userID string, q StatsQuery) (core.Stats, error)
}
