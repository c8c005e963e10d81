package dashboard

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retailtracker/internal/core"
)

func money(t *testing.T, s string) core.Money {
	t.Helper()
	m, err := core.ParseAmount(s)
	require.NoError(t, err)
	return m
}

func sale(t *testing.T, amount, date string) core.Sale {
	return core.Sale{Amount: money(t, amount), Category: core.CategoryRetail, Date: core.Date(date)}
}

func expense(t *testing.T, amount string, typ core.ExpenseType, date string) core.Expense {
	return core.Expense{Amount: money(t, amount), Type: typ, Date: core.Date(date)}
}

func TestComputeExampleScenario(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	stats := Compute(
		[]core.Sale{sale(t, "100.00", "2024-01-10")},
		[]core.Expense{expense(t, "30.00", core.ExpenseRent, "2024-01-10")},
		now,
	)

	b, err := json.Marshal(stats)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"todaySales": "100.00",
		"todayExpenses": "30.00",
		"todayProfit": "70.00",
		"thisWeekSales": "100.00",
		"thisWeekExpenses": "30.00",
		"thisWeekProfit": "70.00",
		"expensesByCategory": [{"category": "rent", "amount": "30.00"}],
		"salesTrend": [{"date": "2024-01-10", "amount": "100.00"}]
	}`, string(b))
}

func TestComputeEmpty(t *testing.T) {
	stats := Compute(nil, nil, time.Now())
	assert.Equal(t, "0.00", stats.TodaySales.String())
	assert.Equal(t, "0.00", stats.ThisWeekProfit.String())
	require.NotNil(t, stats.ExpensesByCategory)
	require.NotNil(t, stats.SalesTrend)

	b, err := json.Marshal(stats)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"expensesByCategory":[]`)
	assert.Contains(t, string(b), `"salesTrend":[]`)
}

func TestWindowBoundaries(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	w := WindowAt(now)
	assert.Equal(t, core.Date("2024-01-10"), w.Today)
	assert.Equal(t, core.Date("2024-01-03"), w.WeekStart)

	stats := Compute(
		[]core.Sale{
			sale(t, "1", "2024-01-02"), // excluded
			sale(t, "2", "2024-01-03"), // week start is inclusive
			sale(t, "4", "2024-01-10"),
		},
		[]core.Expense{
			expense(t, "8", core.ExpenseRent, "2024-01-02"),
			expense(t, "16", core.ExpenseRent, "2024-01-03"),
		},
		now,
	)
	assert.Equal(t, "4.00", stats.TodaySales.String())
	assert.Equal(t, "6.00", stats.ThisWeekSales.String())
	assert.Equal(t, "0.00", stats.TodayExpenses.String())
	assert.Equal(t, "16.00", stats.ThisWeekExpenses.String())
	assert.Equal(t, "-10.00", stats.ThisWeekProfit.String())
	require.Len(t, stats.SalesTrend, 2)
	assert.Equal(t, core.Date("2024-01-03"), stats.SalesTrend[0].Date)
	require.Len(t, stats.ExpensesByCategory, 1)
	assert.Equal(t, "16.00", stats.ExpensesByCategory[0].Amount.String())
}

func TestWindowUsesUTC(t *testing.T) {
	// 01:00 on the 11th in UTC+2 is still the 10th in UTC
	now := time.Date(2024, 1, 11, 1, 0, 0, 0, time.FixedZone("EET", 2*3600))
	stats := Compute([]core.Sale{sale(t, "5", "2024-01-10"), sale(t, "7", "2024-01-11")}, nil, now)
	assert.Equal(t, "5.00", stats.TodaySales.String())
	// future-dated rows count towards the week
	assert.Equal(t, "12.00", stats.ThisWeekSales.String())
}

func TestExpensesByCategoryTopFive(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	expenses := []core.Expense{
		expense(t, "1", core.ExpenseOther, "2024-01-10"),
		expense(t, "10", core.ExpenseSupplies, "2024-01-09"),
		expense(t, "10", core.ExpenseMarketing, "2024-01-08"),
		expense(t, "20", core.ExpenseUtilities, "2024-01-07"),
		expense(t, "5", core.ExpenseInventory, "2024-01-06"),
		expense(t, "15", core.ExpenseRent, "2024-01-05"),
		expense(t, "15", core.ExpenseRent, "2024-01-04"),
	}
	stats := Compute(nil, expenses, now)

	require.Len(t, stats.ExpensesByCategory, TopCategories)
	var got []string
	for _, c := range stats.ExpensesByCategory {
		got = append(got, c.Category+"="+c.Amount.String())
	}
	assert.Equal(t, []string{"rent=30.00", "utilities=20.00", "marketing=10.00", "supplies=10.00", "inventory=5.00"}, got)
}

func TestComputeIsExact(t *testing.T) {
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	var sales []core.Sale
	for i := 0; i < 3000; i++ {
		sales = append(sales, sale(t, "0.10", "2024-01-10"))
	}
	stats := Compute(sales, nil, now)
	assert.Equal(t, "300.00", stats.TodaySales.String())
	assert.Equal(t, "300.00", stats.SalesTrend[0].Amount.String())
}

func TestComputeInvariants(t *testing.T) {
	now := time.Date(2024, 3, 1, 18, 30, 0, 0, time.UTC)
	sales, expenses := randomEntries(42, 400, "u1")
	stats := Compute(sales, expenses, now)

	assert.LessOrEqual(t, stats.TodaySales.Cmp(stats.ThisWeekSales), 0)
	assert.LessOrEqual(t, stats.TodayExpenses.Cmp(stats.ThisWeekExpenses), 0)

	assert.LessOrEqual(t, len(stats.ExpensesByCategory), TopCategories)
	seen := map[string]bool{}
	for i, c := range stats.ExpensesByCategory {
		assert.False(t, seen[c.Category], "duplicate category %s", c.Category)
		seen[c.Category] = true
		if i > 0 {
			assert.GreaterOrEqual(t, stats.ExpensesByCategory[i-1].Amount.Cmp(c.Amount), 0)
		}
	}

	w := WindowAt(now)
	for i, p := range stats.SalesTrend {
		assert.GreaterOrEqual(t, string(p.Date), string(w.WeekStart))
		assert.True(t, hasSaleOn(sales, p.Date), "trend point %s has no sale", p.Date)
		if i > 0 {
			assert.Less(t, string(stats.SalesTrend[i-1].Date), string(p.Date))
		}
	}
}

func hasSaleOn(sales []core.Sale, d core.Date) bool {
	for _, s := range sales {
		if s.Date == d {
			return true
		}
	}
	return false
}
