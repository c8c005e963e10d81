// Package dashboard turns a user's sales and expenses into the time-windowed
// rollups shown on the dashboard.
//
// All windows are derived from one instant in UTC. "Today" is the calendar
// date of now, "this week" is every row dated on or after the date seven days
// before now. Week windows have no upper bound, so rows dated in the future
// count towards them.
package dashboard

import (
	"sort"
	"time"

	"retailtracker/internal/core"
)

// TopCategories caps the expense breakdown.
const TopCategories = 5

const week = 7 * 24 * time.Hour

type Window struct {
	Today     core.Date
	WeekStart core.Date
}

func WindowAt(now time.Time) Window {
	now = now.UTC()
	return Window{
		Today:     core.DateOf(now),
		WeekStart: core.DateOf(now.Add(-week)),
	}
}

func (w Window) inWeek(d core.Date) bool {
	return d >= w.WeekStart
}

// Compute builds the Stats for the given rows as of now. Rows are expected to
// belong to one user; no ownership filtering happens here. Equal category
// sums are ordered by category name.
func Compute(sales []core.Sale, expenses []core.Expense, now time.Time) core.Stats {
	w := WindowAt(now)
	stats := core.Stats{
		ExpensesByCategory: []core.CategoryAmount{},
		SalesTrend:         []core.DateAmount{},
	}

	byDate := make(map[core.Date]core.Money)
	for _, s := range sales {
		if s.Date == w.Today {
			stats.TodaySales = stats.TodaySales.Add(s.Amount)
		}
		if w.inWeek(s.Date) {
			stats.ThisWeekSales = stats.ThisWeekSales.Add(s.Amount)
			byDate[s.Date] = byDate[s.Date].Add(s.Amount)
		}
	}

	byType := make(map[core.ExpenseType]core.Money)
	for _, e := range expenses {
		if e.Date == w.Today {
			stats.TodayExpenses = stats.TodayExpenses.Add(e.Amount)
		}
		if w.inWeek(e.Date) {
			stats.ThisWeekExpenses = stats.ThisWeekExpenses.Add(e.Amount)
			byType[e.Type] = byType[e.Type].Add(e.Amount)
		}
	}

	for t, amount := range byType {
		stats.ExpensesByCategory = append(stats.ExpensesByCategory, core.CategoryAmount{Category: string(t), Amount: amount})
	}
	sort.Slice(stats.ExpensesByCategory, func(i, j int) bool {
		a, b := stats.ExpensesByCategory[i], stats.ExpensesByCategory[j]
		if c := a.Amount.Cmp(b.Amount); c != 0 {
			return c > 0
		}
		return a.Category < b.Category
	})
	if len(stats.ExpensesByCategory) > TopCategories {
		stats.ExpensesByCategory = stats.ExpensesByCategory[:TopCategories]
	}

	for d, amount := range byDate {
		stats.SalesTrend = append(stats.SalesTrend, core.DateAmount{Date: d, Amount: amount})
	}
	sort.Slice(stats.SalesTrend, func(i, j int) bool {
		return stats.SalesTrend[i].Date < stats.SalesTrend[j].Date
	})

	return withProfit(stats)
}

func withProfit(s core.Stats) core.Stats {
	s.TodayProfit = s.TodaySales.Sub(s.TodayExpenses)
	s.ThisWeekProfit = s.ThisWeekSales.Sub(s.ThisWeekExpenses)
	return s
}
