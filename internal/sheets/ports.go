// Package sheets exports ledger rows to spreadsheets.
package sheets

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"retailtracker/internal/amqp"
	"retailtracker/internal/core"
)

// LedgerRow is one appended line of the export ledger. Deletes carry only
// the identifying columns.
type LedgerRow struct {
	Timestamp   time.Time
	Action      amqp.Action
	Kind        core.EntryKind
	ID          int64
	UserID      string
	Date        core.Date
	Category    string
	Amount      string
	Description string
}

// Header names the ledger columns A to I.
var Header = []string{"timestamp", "action", "kind", "id", "user_id", "date", "category", "amount", "description"}

// Values renders the row in column order.
func (r LedgerRow) Values() []any {
	return []any{
		r.Timestamp.UTC().Format(time.RFC3339),
		string(r.Action),
		string(r.Kind),
		strconv.FormatInt(r.ID, 10),
		r.UserID,
		string(r.Date),
		r.Category,
		r.Amount,
		r.Description,
	}
}

// RowFromEvent fills the identifying columns only.
func RowFromEvent(ev amqp.EntryEvent) LedgerRow {
	return LedgerRow{
		Timestamp: ev.Timestamp,
		Action:    ev.Action,
		Kind:      ev.Kind,
		ID:        ev.ID,
		UserID:    ev.UserID,
	}
}

func RowFromSale(ev amqp.EntryEvent, s core.Sale) LedgerRow {
	r := RowFromEvent(ev)
	r.Date = s.Date
	r.Category = string(s.Category)
	r.Amount = s.Amount.String()
	r.Description = s.Notes
	return r
}

func RowFromExpense(ev amqp.EntryEvent, e core.Expense) LedgerRow {
	r := RowFromEvent(ev)
	r.Date = e.Date
	r.Category = string(e.Type)
	r.Amount = e.Amount.String()
	r.Description = e.Description
	return r
}

// LedgerExporter appends rows to an external ledger.
type LedgerExporter interface {
	AppendEntry(ctx context.Context, row LedgerRow) error
}

// LogExporter writes rows to the log. Used when no spreadsheet is configured.
type LogExporter struct{}

func (LogExporter) AppendEntry(ctx context.Context, row LedgerRow) error {
	slog.InfoContext(ctx, "Ledger row",
		"action", row.Action,
		"kind", row.Kind,
		"id", row.ID,
		"date", row.Date,
		"category", row.Category,
		"amount", row.Amount)
	return nil
}
