package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailtracker/internal/core"
)

func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	t := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func saleData(amount, date string) core.SaleData {
	d, err := core.SaleInput{Amount: amount, Category: "retail", Date: date}.Validate()
	if err != nil {
		panic(err)
	}
	return d
}

func TestCreateAndGetSales(t *testing.T) {
	ctx := context.Background()
	s := NewWithClock(fixedClock(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)))

	a, err := s.CreateSale(ctx, "u1", saleData("10", "2024-01-09"))
	require.NoError(t, err)
	b, err := s.CreateSale(ctx, "u1", saleData("20", "2024-01-10"))
	require.NoError(t, err)
	c, err := s.CreateSale(ctx, "u1", saleData("30", "2024-01-09"))
	require.NoError(t, err)
	_, err = s.CreateSale(ctx, "u2", saleData("40", "2024-01-10"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)
	assert.Equal(t, "u1", a.UserID)
	assert.Equal(t, "10.00", a.Amount.String())

	got, err := s.GetSales(ctx, "u1", core.DateRange{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	// date desc, then created desc
	assert.Equal(t, []int64{b.ID, c.ID, a.ID}, []int64{got[0].ID, got[1].ID, got[2].ID})

	got, err = s.GetSales(ctx, "u1", core.DateRange{Start: "2024-01-10"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, b.ID, got[0].ID)

	got, err = s.GetSales(ctx, "nobody", core.DateRange{})
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestForeignRowsAreNotFound(t *testing.T) {
	ctx := context.Background()
	s := New()
	sale, err := s.CreateSale(ctx, "owner", saleData("5", "2024-01-01"))
	require.NoError(t, err)

	_, err = s.GetSale(ctx, sale.ID, "intruder")
	assert.ErrorIs(t, err, core.ErrNotFound)
	err = s.DeleteSale(ctx, sale.ID, "intruder")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = s.UpdateSale(ctx, sale.ID, "intruder", core.SaleChanges{}, time.Now())
	assert.ErrorIs(t, err, core.ErrNotFound)

	rows, err := s.GetSales(ctx, "owner", core.DateRange{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, sale, rows[0])

	require.NoError(t, s.DeleteSale(ctx, sale.ID, "owner"))
	assert.ErrorIs(t, s.DeleteSale(ctx, sale.ID, "owner"), core.ErrNotFound)
}

func TestUpdateExpense(t *testing.T) {
	ctx := context.Background()
	s := NewWithClock(fixedClock(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)))
	data, err := core.ExpenseInput{Amount: "30", Type: "rent", Date: "2024-01-10", Description: "jan"}.Validate()
	require.NoError(t, err)
	exp, err := s.CreateExpense(ctx, "u1", data)
	require.NoError(t, err)

	amount := "45.10"
	ch, err := core.ExpensePatch{Amount: &amount}.Validate()
	require.NoError(t, err)
	later := exp.CreatedAt.Add(time.Hour)
	updated, err := s.UpdateExpense(ctx, exp.ID, "u1", ch, later)
	require.NoError(t, err)

	assert.Equal(t, "45.10", updated.Amount.String())
	assert.Equal(t, core.ExpenseRent, updated.Type)
	assert.Equal(t, "jan", updated.Description)
	assert.True(t, updated.UpdatedAt.Equal(later))
	assert.True(t, updated.CreatedAt.Equal(exp.CreatedAt))

	again, err := s.GetExpense(ctx, exp.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, updated, again)
}

func TestExpenseIDsAreIndependentOfSales(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.CreateSale(ctx, "u1", saleData("1", "2024-01-01"))
	require.NoError(t, err)
	data, err := core.ExpenseInput{Amount: "1", Type: "other", Date: "2024-01-01"}.Validate()
	require.NoError(t, err)
	exp, err := s.CreateExpense(ctx, "u1", data)
	require.NoError(t, err)
	assert.Equal(t, int64(1), exp.ID)
}

func TestUpsertUserKeepsCreatedAt(t *testing.T) {
	ctx := context.Background()
	s := NewWithClock(fixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))

	_, err := s.GetUser(ctx, "u1")
	assert.ErrorIs(t, err, core.ErrNotFound)

	first, err := s.UpsertUser(ctx, core.User{ID: "u1", Email: "a@example.com"})
	require.NoError(t, err)
	second, err := s.UpsertUser(ctx, core.User{ID: "u1", Email: "b@example.com", FirstName: "Ada"})
	require.NoError(t, err)

	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))

	got, err := s.GetUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "b@example.com", got.Email)
	assert.Equal(t, "Ada", got.FirstName)
}

func TestConcurrentCreatesGetDistinctIDs(t *testing.T) {
	ctx := context.Background()
	s := New()
	const n = 50
	var wg sync.WaitGroup
	ids := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sale, err := s.CreateSale(ctx, "u1", saleData("1", "2024-01-01"))
			if err == nil {
				ids <- sale.ID
			}
		}()
	}
	wg.Wait()
	close(ids)
	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}
