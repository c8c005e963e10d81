package storage

import (
	"context"
	"database/sql"

	"retailtracker/internal/core"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

// Row types mirror the tables column for column.
type (
	Sale struct {
		ID          int64
		UserID      string
		AmountCents int64
		Category    string
		Date        string
		Notes       string
		CreatedAt   string
		UpdatedAt   string
	}

	Expense struct {
		ID          int64
		UserID      string
		AmountCents int64
		Type        string
		Date        string
		Description string
		CreatedAt   string
		UpdatedAt   string
	}

	User struct {
		ID        string
		Email     string
		FirstName string
		LastName  string
		CreatedAt string
		UpdatedAt string
	}
)

type scanner interface {
	Scan(dest ...any) error
}

func scanSale(s scanner) (Sale, error) {
	var i Sale
	err := s.Scan(&i.ID, &i.UserID, &i.AmountCents, &i.Category, &i.Date, &i.Notes, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

func scanExpense(s scanner) (Expense, error) {
	var i Expense
	err := s.Scan(&i.ID, &i.UserID, &i.AmountCents, &i.Type, &i.Date, &i.Description, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const saleColumns = `id, user_id, amount_cents, category, date, notes, created_at, updated_at`

const expenseColumns = `id, user_id, amount_cents, type, date, description, created_at, updated_at`

const createSale = `INSERT INTO sales (user_id, amount_cents, category, date, notes, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + saleColumns

type CreateSaleParams struct {
	UserID      string
	AmountCents int64
	Category    string
	Date        string
	Notes       string
	CreatedAt   string
}

func (q *Queries) CreateSale(ctx context.Context, arg CreateSaleParams) (Sale, error) {
	row := q.db.QueryRowContext(ctx, createSale,
		arg.UserID, arg.AmountCents, arg.Category, arg.Date, arg.Notes, arg.CreatedAt, arg.CreatedAt)
	return scanSale(row)
}

// Empty bounds are open.
const listSales = `SELECT ` + saleColumns + ` FROM sales
WHERE user_id = ?1
  AND (?2 = '' OR date >= ?2)
  AND (?3 = '' OR date <= ?3)
ORDER BY date DESC, created_at DESC, id DESC`

type ListParams struct {
	UserID string
	Start  string
	End    string
}

func (q *Queries) ListSales(ctx context.Context, arg ListParams) ([]Sale, error) {
	rows, err := q.db.QueryContext(ctx, listSales, arg.UserID, arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Sale{}
	for rows.Next() {
		i, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getSale = `SELECT ` + saleColumns + ` FROM sales WHERE id = ? AND user_id = ?`

func (q *Queries) GetSale(ctx context.Context, id int64, userID string) (Sale, error) {
	return scanSale(q.db.QueryRowContext(ctx, getSale, id, userID))
}

// NULL parameters keep the stored value.
const updateSale = `UPDATE sales SET
    amount_cents = COALESCE(?, amount_cents),
    category     = COALESCE(?, category),
    date         = COALESCE(?, date),
    notes        = COALESCE(?, notes),
    updated_at   = ?
WHERE id = ? AND user_id = ?
RETURNING ` + saleColumns

type UpdateSaleParams struct {
	ID          int64
	UserID      string
	AmountCents sql.NullInt64
	Category    sql.NullString
	Date        sql.NullString
	Notes       sql.NullString
	UpdatedAt   string
}

func (q *Queries) UpdateSale(ctx context.Context, arg UpdateSaleParams) (Sale, error) {
	row := q.db.QueryRowContext(ctx, updateSale,
		arg.AmountCents, arg.Category, arg.Date, arg.Notes, arg.UpdatedAt, arg.ID, arg.UserID)
	return scanSale(row)
}

const deleteSale = `DELETE FROM sales WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteSale(ctx context.Context, id int64, userID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteSale, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const createExpense = `INSERT INTO expenses (user_id, amount_cents, type, date, description, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING ` + expenseColumns

type CreateExpenseParams struct {
	UserID      string
	AmountCents int64
	Type        string
	Date        string
	Description string
	CreatedAt   string
}

func (q *Queries) CreateExpense(ctx context.Context, arg CreateExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, createExpense,
		arg.UserID, arg.AmountCents, arg.Type, arg.Date, arg.Description, arg.CreatedAt, arg.CreatedAt)
	return scanExpense(row)
}

const listExpenses = `SELECT ` + expenseColumns + ` FROM expenses
WHERE user_id = ?1
  AND (?2 = '' OR date >= ?2)
  AND (?3 = '' OR date <= ?3)
ORDER BY date DESC, created_at DESC, id DESC`

func (q *Queries) ListExpenses(ctx context.Context, arg ListParams) ([]Expense, error) {
	rows, err := q.db.QueryContext(ctx, listExpenses, arg.UserID, arg.Start, arg.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Expense{}
	for rows.Next() {
		i, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getExpense = `SELECT ` + expenseColumns + ` FROM expenses WHERE id = ? AND user_id = ?`

func (q *Queries) GetExpense(ctx context.Context, id int64, userID string) (Expense, error) {
	return scanExpense(q.db.QueryRowContext(ctx, getExpense, id, userID))
}

const updateExpense = `UPDATE expenses SET
    amount_cents = COALESCE(?, amount_cents),
    type         = COALESCE(?, type),
    date         = COALESCE(?, date),
    description  = COALESCE(?, description),
    updated_at   = ?
WHERE id = ? AND user_id = ?
RETURNING ` + expenseColumns

type UpdateExpenseParams struct {
	ID          int64
	UserID      string
	AmountCents sql.NullInt64
	Type        sql.NullString
	Date        sql.NullString
	Description sql.NullString
	UpdatedAt   string
}

func (q *Queries) UpdateExpense(ctx context.Context, arg UpdateExpenseParams) (Expense, error) {
	row := q.db.QueryRowContext(ctx, updateExpense,
		arg.AmountCents, arg.Type, arg.Date, arg.Description, arg.UpdatedAt, arg.ID, arg.UserID)
	return scanExpense(row)
}

const deleteExpense = `DELETE FROM expenses WHERE id = ? AND user_id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id int64, userID string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteExpense, id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const upsertUser = `INSERT INTO users (id, email, first_name, last_name, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    email      = excluded.email,
    first_name = excluded.first_name,
    last_name  = excluded.last_name,
    updated_at = excluded.updated_at
RETURNING id, email, first_name, last_name, created_at, updated_at`

func (q *Queries) UpsertUser(ctx context.Context, u User) (User, error) {
	var i User
	err := q.db.QueryRowContext(ctx, upsertUser, u.ID, u.Email, u.FirstName, u.LastName, u.CreatedAt, u.UpdatedAt).
		Scan(&i.ID, &i.Email, &i.FirstName, &i.LastName, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const getUser = `SELECT id, email, first_name, last_name, created_at, updated_at FROM users WHERE id = ?`

func (q *Queries) GetUser(ctx context.Context, id string) (User, error) {
	var i User
	err := q.db.QueryRowContext(ctx, getUser, id).
		Scan(&i.ID, &i.Email, &i.FirstName, &i.LastName, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

// Aggregates sum amount_cents as separate high and low parts split at
// core.CentsSplit, so no SUM can overflow int64 whatever the row count.
// The parts are recombined exactly in decimal.
const (
	hiCents = `amount_cents / 1000000000`
	loCents = `amount_cents % 1000000000`
)

// Window sums. Rows dated today always fall inside the week.
const windowSumsSelect = `SELECT
    COALESCE(SUM(CASE WHEN date = ?2 THEN ` + hiCents + ` ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN date = ?2 THEN ` + loCents + ` ELSE 0 END), 0),
    COALESCE(SUM(` + hiCents + `), 0),
    COALESCE(SUM(` + loCents + `), 0)
FROM `

const windowSumsWhere = ` WHERE user_id = ?1 AND date >= ?3`

const saleWindowSums = windowSumsSelect + `sales` + windowSumsWhere

const expenseWindowSums = windowSumsSelect + `expenses` + windowSumsWhere

type WindowParams struct {
	UserID    string
	Today     string
	WeekStart string
}

// SplitSum is a cents total as Hi*core.CentsSplit + Lo.
type SplitSum struct {
	Hi int64
	Lo int64
}

func (s SplitSum) Money() core.Money {
	return core.MoneyFromSplitCents(s.Hi, s.Lo)
}

type WindowSumsRow struct {
	Today SplitSum
	Week  SplitSum
}

func (q *Queries) SaleWindowSums(ctx context.Context, arg WindowParams) (WindowSumsRow, error) {
	return q.windowSums(ctx, saleWindowSums, arg)
}

func (q *Queries) ExpenseWindowSums(ctx context.Context, arg WindowParams) (WindowSumsRow, error) {
	return q.windowSums(ctx, expenseWindowSums, arg)
}

func (q *Queries) windowSums(ctx context.Context, query string, arg WindowParams) (WindowSumsRow, error) {
	var i WindowSumsRow
	err := q.db.QueryRowContext(ctx, query, arg.UserID, arg.Today, arg.WeekStart).
		Scan(&i.Today.Hi, &i.Today.Lo, &i.Week.Hi, &i.Week.Lo)
	return i, err
}

// Ordered by the caller: the split parts cannot be compared in SQL.
const expenseTotalsByType = `SELECT type, SUM(` + hiCents + `), SUM(` + loCents + `)
FROM expenses
WHERE user_id = ? AND date >= ?
GROUP BY type`

type GroupTotalRow struct {
	Key   string
	Total SplitSum
}

func (q *Queries) ExpenseTotalsByType(ctx context.Context, userID, weekStart string) ([]GroupTotalRow, error) {
	return q.groupTotals(ctx, expenseTotalsByType, userID, weekStart)
}

const saleTotalsByDate = `SELECT date, SUM(` + hiCents + `), SUM(` + loCents + `)
FROM sales
WHERE user_id = ? AND date >= ?
GROUP BY date
ORDER BY date ASC`

func (q *Queries) SaleTotalsByDate(ctx context.Context, userID, weekStart string) ([]GroupTotalRow, error) {
	return q.groupTotals(ctx, saleTotalsByDate, userID, weekStart)
}

func (q *Queries) groupTotals(ctx context.Context, query string, args ...any) ([]GroupTotalRow, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []GroupTotalRow{}
	for rows.Next() {
		var i GroupTotalRow
		if err := rows.Scan(&i.Key, &i.Total.Hi, &i.Total.Lo); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
