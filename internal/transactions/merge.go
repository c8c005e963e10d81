// Package transactions merges sales and expenses into one chronological,
// filterable list.
package transactions

import (
	"errors"
	"sort"

	"retailtracker/internal/core"
)

// Filter restricts a listing. The zero value matches everything.
type Filter struct {
	Range core.DateRange
	Type  core.EntryKind
}

// ParseFilter validates raw query values. Empty strings leave the
// corresponding constraint open. Every offending value is reported.
func ParseFilter(startDate, endDate, kind string) (Filter, error) {
	f := Filter{Range: core.DateRange{Start: core.Date(startDate), End: core.Date(endDate)}}
	verr := &core.ValidationError{}
	var rangeErr *core.ValidationError
	if err := f.Range.Validate(); errors.As(err, &rangeErr) {
		verr.Fields = append(verr.Fields, rangeErr.Fields...)
	}
	k, err := core.ParseEntryKind(kind)
	if err != nil {
		verr.Add("type", err)
	}
	f.Type = k
	if err := verr.Err(); err != nil {
		return Filter{}, err
	}
	return f, nil
}

// Validate reports malformed bounds or an unknown type.
func (f Filter) Validate() error {
	_, err := ParseFilter(string(f.Range.Start), string(f.Range.End), string(f.Type))
	return err
}

// Merge projects, filters and orders the rows. Order is date descending,
// then creation time descending, then expenses before sales, then id
// descending. The result is never nil.
func Merge(sales []core.Sale, expenses []core.Expense, f Filter) []core.Transaction {
	out := make([]core.Transaction, 0, len(sales)+len(expenses))
	if f.Type.Includes(core.KindSale) {
		for _, s := range sales {
			if f.Range.Contains(s.Date) {
				out = append(out, FromSale(s))
			}
		}
	}
	if f.Type.Includes(core.KindExpense) {
		for _, e := range expenses {
			if f.Range.Contains(e.Date) {
				out = append(out, FromExpense(e))
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		if a.Type != b.Type {
			return a.Type == core.KindExpense
		}
		return a.ID > b.ID
	})
	return out
}

func FromSale(s core.Sale) core.Transaction {
	return core.Transaction{
		ID:          s.ID,
		Type:        core.KindSale,
		Amount:      s.Amount,
		Category:    string(s.Category),
		Date:        s.Date,
		Description: s.Notes,
		CreatedAt:   s.CreatedAt,
	}
}

func FromExpense(e core.Expense) core.Transaction {
	return core.Transaction{
		ID:          e.ID,
		Type:        core.KindExpense,
		Amount:      e.Amount,
		Category:    string(e.Type),
		Date:        e.Date,
		Description: e.Description,
		CreatedAt:   e.CreatedAt,
	}
}
