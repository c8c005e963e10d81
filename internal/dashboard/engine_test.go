package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailtracker/internal/core"
	"retailtracker/internal/storage"
	"retailtracker/internal/store"
	"retailtracker/internal/store/memory"
)

// randomEntries builds a reproducible data set spread around early March
// 2024. Amounts come from a small pool so category sums tie regularly.
func randomEntries(seed int64, n int, userID string) ([]core.Sale, []core.Expense) {
	rng := rand.New(rand.NewSource(seed))
	base := time.Date(2024, 2, 18, 0, 0, 0, 0, time.UTC)
	cats := core.SaleCategories()
	types := core.ExpenseTypes()
	pool := []int64{0, 1, 10, 99, 250, 1000, 1999, 5000}

	var sales []core.Sale
	var expenses []core.Expense
	for i := 0; i < n; i++ {
		d := core.DateOf(base.AddDate(0, 0, rng.Intn(16)))
		amount := core.MoneyFromCents(pool[rng.Intn(len(pool))])
		if rng.Intn(2) == 0 {
			sales = append(sales, core.Sale{UserID: userID, Amount: amount, Category: cats[rng.Intn(len(cats))], Date: d})
		} else {
			expenses = append(expenses, core.Expense{UserID: userID, Amount: amount, Type: types[rng.Intn(len(types))], Date: d})
		}
	}
	return sales, expenses
}

func load(t *testing.T, st interface {
	store.SaleStore
	store.ExpenseStore
}, sales []core.Sale, expenses []core.Expense) {
	t.Helper()
	ctx := context.Background()
	for _, s := range sales {
		_, err := st.CreateSale(ctx, s.UserID, core.SaleData{Amount: s.Amount, Category: s.Category, Date: s.Date})
		require.NoError(t, err)
	}
	for _, e := range expenses {
		_, err := st.CreateExpense(ctx, e.UserID, core.ExpenseData{Amount: e.Amount, Type: e.Type, Date: e.Date})
		require.NoError(t, err)
	}
}

func render(t *testing.T, s core.Stats) string {
	t.Helper()
	b, err := json.Marshal(s)
	require.NoError(t, err)
	return string(b)
}

func TestEnginesAgree(t *testing.T) {
	ctx := context.Background()
	sales, expenses := randomEntries(7, 300, "u1")
	otherSales, otherExpenses := randomEntries(8, 50, "u2")

	mem := memory.New()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "eq.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })

	for _, st := range []interface {
		store.SaleStore
		store.ExpenseStore
	}{mem, repo} {
		load(t, st, sales, expenses)
		load(t, st, otherSales, otherExpenses)
	}

	engines := map[string]Engine{
		"memory-scan":     NewScanEngine(mem),
		"sqlite-scan":     NewScanEngine(repo),
		"sqlite-pushdown": NewPushdownEngine(repo),
	}

	for _, now := range []time.Time{
		time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 2, 25, 23, 59, 59, 0, time.UTC),
		time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC),
		time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
	} {
		want := render(t, Compute(sales, expenses, now))
		for name, e := range engines {
			got, err := e.Stats(ctx, "u1", now)
			require.NoError(t, err, name)
			assert.Equal(t, want, render(t, got), "%s at %s", name, now)
		}
	}
}

func TestEnginesAgreeAtAmountLimit(t *testing.T) {
	ctx := context.Background()
	max, err := core.ParseAmount("999999999999999.99")
	require.NoError(t, err)

	var sales []core.Sale
	var expenses []core.Expense
	for i := 0; i < 100; i++ {
		sales = append(sales, core.Sale{UserID: "u1", Amount: max, Category: core.CategoryRetail, Date: "2024-03-02"})
		expenses = append(expenses, core.Expense{UserID: "u1", Amount: max, Type: core.ExpenseTypes()[i%6], Date: "2024-02-28"})
	}

	mem := memory.New()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "limit.db"))
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	load(t, mem, sales, expenses)
	load(t, repo, sales, expenses)

	now := time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC)
	want := render(t, Compute(sales, expenses, now))
	for name, e := range map[string]Engine{
		"memory-scan":     NewScanEngine(mem),
		"sqlite-scan":     NewScanEngine(repo),
		"sqlite-pushdown": NewPushdownEngine(repo),
	} {
		got, err := e.Stats(ctx, "u1", now)
		require.NoError(t, err, name)
		assert.Equal(t, want, render(t, got), name)
		assert.Equal(t, "99999999999999999.00", got.ThisWeekSales.String(), name)
	}
}

func TestEnginesRequireUser(t *testing.T) {
	mem := memory.New()
	for _, e := range []Engine{NewScanEngine(mem), NewPushdownEngine(stubQuerier{})} {
		_, err := e.Stats(context.Background(), "", time.Now())
		assert.ErrorIs(t, err, core.ErrUnauthenticated)
	}
}

func TestEngineEmptyData(t *testing.T) {
	for _, e := range []Engine{NewScanEngine(memory.New()), NewPushdownEngine(stubQuerier{})} {
		stats, err := e.Stats(context.Background(), "u1", time.Now())
		require.NoError(t, err)
		assert.True(t, stats.ThisWeekSales.IsZero())
		assert.NotNil(t, stats.ExpensesByCategory)
		assert.NotNil(t, stats.SalesTrend)
	}
}

type stubQuerier struct{ err error }

func (s stubQuerier) QueryStats(context.Context, string, store.StatsQuery) (core.Stats, error) {
	return core.Stats{}, s.err
}

type failingReader struct{}

func (failingReader) GetSales(context.Context, string, core.DateRange) ([]core.Sale, error) {
	return nil, errors.New("disk on fire")
}

func (failingReader) GetExpenses(context.Context, string, core.DateRange) ([]core.Expense, error) {
	return []core.Expense{}, nil
}

func TestEngineWrapsStoreFailures(t *testing.T) {
	_, err := NewScanEngine(failingReader{}).Stats(context.Background(), "u1", time.Now())
	assert.ErrorIs(t, err, core.ErrUnexpected)

	_, err = NewPushdownEngine(stubQuerier{err: fmt.Errorf("wrapped: %w", core.ErrUnexpected)}).Stats(context.Background(), "u1", time.Now())
	assert.ErrorIs(t, err, core.ErrUnexpected)
}
