package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"retailtracker/internal/core"
	"retailtracker/internal/store"

	_ "modernc.org/sqlite"
)

// Fixed width so created_at orders lexicographically.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	now     func() time.Time
}

var (
	_ store.EntryStore   = (*SQLiteRepository)(nil)
	_ store.StatsQuerier = (*SQLiteRepository)(nil)
)

type Option func(*SQLiteRepository)

// WithClock replaces the clock used for created_at stamps.
func WithClock(now func() time.Time) Option {
	return func(r *SQLiteRepository) { r.now = now }
}

func NewSQLiteRepository(dbPath string, opts ...Option) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// SQLite allows one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	repo := &SQLiteRepository{
		db:      db,
		queries: New(db),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(repo)
	}

	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite: %w: %w", core.ErrUnexpected, err)
	}
	return nil
}

func (r *SQLiteRepository) CreateSale(ctx context.Context, userID string, data core.SaleData) (core.Sale, error) {
	row, err := r.queries.CreateSale(ctx, CreateSaleParams{
		UserID:      userID,
		AmountCents: data.Amount.Cents(),
		Category:    string(data.Category),
		Date:        string(data.Date),
		Notes:       data.Notes,
		CreatedAt:   r.stamp(r.now()),
	})
	if err != nil {
		return core.Sale{}, fmt.Errorf("create sale: %w: %w", core.ErrUnexpected, err)
	}

	slog.DebugContext(ctx, "Sale saved to SQLite",
		"id", row.ID,
		"amount_cents", row.AmountCents,
		"category", row.Category,
		"date", row.Date)

	return row.toCore()
}

func (r *SQLiteRepository) GetSales(ctx context.Context, userID string, dr core.DateRange) ([]core.Sale, error) {
	rows, err := r.queries.ListSales(ctx, ListParams{UserID: userID, Start: string(dr.Start), End: string(dr.End)})
	if err != nil {
		return nil, fmt.Errorf("list sales: %w: %w", core.ErrUnexpected, err)
	}
	out := make([]core.Sale, 0, len(rows))
	for _, row := range rows {
		s, err := row.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *SQLiteRepository) GetSale(ctx context.Context, id int64, userID string) (core.Sale, error) {
	row, err := r.queries.GetSale(ctx, id, userID)
	if err != nil {
		return core.Sale{}, rowError("sale", id, err)
	}
	return row.toCore()
}

func (r *SQLiteRepository) UpdateSale(ctx context.Context, id int64, userID string, ch core.SaleChanges, updatedAt time.Time) (core.Sale, error) {
	arg := UpdateSaleParams{ID: id, UserID: userID, UpdatedAt: r.stamp(updatedAt)}
	if ch.Amount != nil {
		arg.AmountCents = sql.NullInt64{Int64: ch.Amount.Cents(), Valid: true}
	}
	if ch.Category != nil {
		arg.Category = sql.NullString{String: string(*ch.Category), Valid: true}
	}
	if ch.Date != nil {
		arg.Date = sql.NullString{String: string(*ch.Date), Valid: true}
	}
	if ch.Notes != nil {
		arg.Notes = sql.NullString{String: *ch.Notes, Valid: true}
	}
	row, err := r.queries.UpdateSale(ctx, arg)
	if err != nil {
		return core.Sale{}, rowError("sale", id, err)
	}
	return row.toCore()
}

func (r *SQLiteRepository) DeleteSale(ctx context.Context, id int64, userID string) error {
	n, err := r.queries.DeleteSale(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete sale %d: %w: %w", id, core.ErrUnexpected, err)
	}
	if n == 0 {
		return fmt.Errorf("sale %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, userID string, data core.ExpenseData) (core.Expense, error) {
	row, err := r.queries.CreateExpense(ctx, CreateExpenseParams{
		UserID:      userID,
		AmountCents: data.Amount.Cents(),
		Type:        string(data.Type),
		Date:        string(data.Date),
		Description: data.Description,
		CreatedAt:   r.stamp(r.now()),
	})
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w: %w", core.ErrUnexpected, err)
	}

	slog.DebugContext(ctx, "Expense saved to SQLite",
		"id", row.ID,
		"amount_cents", row.AmountCents,
		"type", row.Type,
		"date", row.Date)

	return row.toCore()
}

func (r *SQLiteRepository) GetExpenses(ctx context.Context, userID string, dr core.DateRange) ([]core.Expense, error) {
	rows, err := r.queries.ListExpenses(ctx, ListParams{UserID: userID, Start: string(dr.Start), End: string(dr.End)})
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w: %w", core.ErrUnexpected, err)
	}
	out := make([]core.Expense, 0, len(rows))
	for _, row := range rows {
		e, err := row.toCore()
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id int64, userID string) (core.Expense, error) {
	row, err := r.queries.GetExpense(ctx, id, userID)
	if err != nil {
		return core.Expense{}, rowError("expense", id, err)
	}
	return row.toCore()
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, id int64, userID string, ch core.ExpenseChanges, updatedAt time.Time) (core.Expense, error) {
	arg := UpdateExpenseParams{ID: id, UserID: userID, UpdatedAt: r.stamp(updatedAt)}
	if ch.Amount != nil {
		arg.AmountCents = sql.NullInt64{Int64: ch.Amount.Cents(), Valid: true}
	}
	if ch.Type != nil {
		arg.Type = sql.NullString{String: string(*ch.Type), Valid: true}
	}
	if ch.Date != nil {
		arg.Date = sql.NullString{String: string(*ch.Date), Valid: true}
	}
	if ch.Description != nil {
		arg.Description = sql.NullString{String: *ch.Description, Valid: true}
	}
	row, err := r.queries.UpdateExpense(ctx, arg)
	if err != nil {
		return core.Expense{}, rowError("expense", id, err)
	}
	return row.toCore()
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id int64, userID string) error {
	n, err := r.queries.DeleteExpense(ctx, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w: %w", id, core.ErrUnexpected, err)
	}
	if n == 0 {
		return fmt.Errorf("expense %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) UpsertUser(ctx context.Context, u core.User) (core.User, error) {
	now := r.stamp(r.now())
	row, err := r.queries.UpsertUser(ctx, User{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return core.User{}, fmt.Errorf("upsert user: %w: %w", core.ErrUnexpected, err)
	}
	return row.toCore()
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id string) (core.User, error) {
	row, err := r.queries.GetUser(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %s: %w", id, core.ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w: %w", core.ErrUnexpected, err)
	}
	return row.toCore()
}

// QueryStats runs the dashboard aggregates as grouped SQL. Sums come back
// split, so the top categories are ranked here.
func (r *SQLiteRepository) QueryStats(ctx context.Context, userID string, q store.StatsQuery) (core.Stats, error) {
	win := WindowParams{UserID: userID, Today: string(q.Today), WeekStart: string(q.WeekStart)}

	sales, err := r.queries.SaleWindowSums(ctx, win)
	if err != nil {
		return core.Stats{}, fmt.Errorf("sale window sums: %w: %w", core.ErrUnexpected, err)
	}
	expenses, err := r.queries.ExpenseWindowSums(ctx, win)
	if err != nil {
		return core.Stats{}, fmt.Errorf("expense window sums: %w: %w", core.ErrUnexpected, err)
	}
	byType, err := r.queries.ExpenseTotalsByType(ctx, userID, win.WeekStart)
	if err != nil {
		return core.Stats{}, fmt.Errorf("expense totals by type: %w: %w", core.ErrUnexpected, err)
	}
	byDate, err := r.queries.SaleTotalsByDate(ctx, userID, win.WeekStart)
	if err != nil {
		return core.Stats{}, fmt.Errorf("sale totals by date: %w: %w", core.ErrUnexpected, err)
	}

	stats := core.Stats{
		TodaySales:         sales.Today.Money(),
		TodayExpenses:      expenses.Today.Money(),
		ThisWeekSales:      sales.Week.Money(),
		ThisWeekExpenses:   expenses.Week.Money(),
		ExpensesByCategory: make([]core.CategoryAmount, 0, len(byType)),
		SalesTrend:         make([]core.DateAmount, 0, len(byDate)),
	}
	for _, g := range byType {
		stats.ExpensesByCategory = append(stats.ExpensesByCategory, core.CategoryAmount{
			Category: g.Key,
			Amount:   g.Total.Money(),
		})
	}
	sort.Slice(stats.ExpensesByCategory, func(i, j int) bool {
		a, b := stats.ExpensesByCategory[i], stats.ExpensesByCategory[j]
		if c := a.Amount.Cmp(b.Amount); c != 0 {
			return c > 0
		}
		return a.Category < b.Category
	})
	if q.TopCategories > 0 && len(stats.ExpensesByCategory) > q.TopCategories {
		stats.ExpensesByCategory = stats.ExpensesByCategory[:q.TopCategories]
	}
	for _, g := range byDate {
		stats.SalesTrend = append(stats.SalesTrend, core.DateAmount{
			Date:   core.Date(g.Key),
			Amount: g.Total.Money(),
		})
	}
	return stats, nil
}

func (r *SQLiteRepository) stamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func rowError(kind string, id int64, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %d: %w", kind, id, core.ErrNotFound)
	}
	return fmt.Errorf("%s %d: %w: %w", kind, id, core.ErrUnexpected, err)
}

func parseStamp(s string) (time.Time, error) {
	t, err := time.Parse(timestampLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w: %w", s, core.ErrUnexpected, err)
	}
	return t, nil
}

func (s Sale) toCore() (core.Sale, error) {
	created, err := parseStamp(s.CreatedAt)
	if err != nil {
		return core.Sale{}, err
	}
	updated, err := parseStamp(s.UpdatedAt)
	if err != nil {
		return core.Sale{}, err
	}
	return core.Sale{
		ID:        s.ID,
		UserID:    s.UserID,
		Amount:    core.MoneyFromCents(s.AmountCents),
		Category:  core.SaleCategory(s.Category),
		Date:      core.Date(s.Date),
		Notes:     s.Notes,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}

func (e Expense) toCore() (core.Expense, error) {
	created, err := parseStamp(e.CreatedAt)
	if err != nil {
		return core.Expense{}, err
	}
	updated, err := parseStamp(e.UpdatedAt)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		ID:          e.ID,
		UserID:      e.UserID,
		Amount:      core.MoneyFromCents(e.AmountCents),
		Type:        core.ExpenseType(e.Type),
		Date:        core.Date(e.Date),
		Description: e.Description,
		CreatedAt:   created,
		UpdatedAt:   updated,
	}, nil
}

func (u User) toCore() (core.User, error) {
	created, err := parseStamp(u.CreatedAt)
	if err != nil {
		return core.User{}, err
	}
	updated, err := parseStamp(u.UpdatedAt)
	if err != nil {
		return core.User{}, err
	}
	return core.User{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: created,
		UpdatedAt: updated,
	}, nil
}
