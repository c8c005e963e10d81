package core

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Category string `json:"category"`
	Amount   Money  `json:"amount"`
}

// DateAmount is one point of a date bucketed series.
type DateAmount struct {
	Date   Date  `json:"date"`
	Amount Money `json:"amount"`
}

// Stats is the dashboard rollup for one user as of one instant.
type Stats struct {
	TodaySales         Money            `json:"todaySales"`
	TodayExpenses      Money            `json:"todayExpenses"`
	TodayProfit        Money            `json:"todayProfit"`
	ThisWeekSales      Money            `json:"thisWeekSales"`
	ThisWeekExpenses   Money            `json:"thisWeekExpenses"`
	ThisWeekProfit     Money            `json:"thisWeekProfit"`
	ExpensesByCategory []CategoryAmount `json:"expensesByCategory"`
	SalesTrend         []DateAmount     `json:"salesTrend"`
}
