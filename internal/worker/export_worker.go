package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"retailtracker/internal/amqp"
	"retailtracker/internal/core"
	"retailtracker/internal/sheets"
)

// EntryLookup loads the current state of a single entry.
type EntryLookup interface {
	GetSale(ctx context.Context, id int64, userID string) (core.Sale, error)
	GetExpense(ctx context.Context, id int64, userID string) (core.Expense, error)
}

// ExportWorker turns entry events into ledger rows.
type ExportWorker struct {
	entries  EntryLookup
	exporter sheets.LedgerExporter
}

func NewExportWorker(entries EntryLookup, exporter sheets.LedgerExporter) *ExportWorker {
	return &ExportWorker{entries: entries, exporter: exporter}
}

// HandleEvent exports one event. Created and updated events carry the row
// as currently stored; a row that no longer exists is skipped. Deletes are
// exported from the event alone. A returned error asks for redelivery.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev amqp.EntryEvent) error {
	slog.InfoContext(ctx, "Processing entry event",
		"kind", ev.Kind,
		"action", ev.Action,
		"id", ev.ID)

	row, ok, err := w.rowFor(ctx, ev)
	if err != nil {
		return err
	}
	if !ok {
		slog.WarnContext(ctx, "Entry no longer exists, skipping export",
			"kind", ev.Kind,
			"action", ev.Action,
			"id", ev.ID)
		return nil
	}

	if err := w.exporter.AppendEntry(ctx, row); err != nil {
		return fmt.Errorf("append ledger row: %w", err)
	}
	return nil
}

func (w *ExportWorker) rowFor(ctx context.Context, ev amqp.EntryEvent) (sheets.LedgerRow, bool, error) {
	if ev.Action == amqp.ActionDeleted {
		return sheets.RowFromEvent(ev), true, nil
	}

	switch ev.Kind {
	case core.KindSale:
		s, err := w.entries.GetSale(ctx, ev.ID, ev.UserID)
		if errors.Is(err, core.ErrNotFound) {
			return sheets.LedgerRow{}, false, nil
		}
		if err != nil {
			return sheets.LedgerRow{}, false, fmt.Errorf("load sale %d: %w", ev.ID, err)
		}
		return sheets.RowFromSale(ev, s), true, nil
	case core.KindExpense:
		e, err := w.entries.GetExpense(ctx, ev.ID, ev.UserID)
		if errors.Is(err, core.ErrNotFound) {
			return sheets.LedgerRow{}, false, nil
		}
		if err != nil {
			return sheets.LedgerRow{}, false, fmt.Errorf("load expense %d: %w", ev.ID, err)
		}
		return sheets.RowFromExpense(ev, e), true, nil
	default:
		return sheets.LedgerRow{}, false, fmt.Errorf("%w: kind %q", amqp.ErrMalformedEvent, ev.Kind)
	}
}
