package core

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// maxTextLength bounds notes and descriptions.
const maxTextLength = 500

type (
	// SaleInput is raw, unvalidated sale data as received from a client.
	SaleInput struct {
		Amount   string `json:"amount"`
		Category string `json:"category"`
		Date     string `json:"date"`
		Notes    string `json:"notes"`
	}

	// SalePatch is a partial update. Nil fields are left untouched.
	SalePatch struct {
		Amount   *string `json:"amount"`
		Category *string `json:"category"`
		Date     *string `json:"date"`
		Notes    *string `json:"notes"`
	}

	// SaleData is validated, normalized sale data ready for the store.
	SaleData struct {
		Amount   Money
		Category SaleCategory
		Date     Date
		Notes    string
	}

	// SaleChanges is a validated patch.
	SaleChanges struct {
		Amount   *Money
		Category *SaleCategory
		Date     *Date
		Notes    *string
	}

	ExpenseInput struct {
		Amount      string `json:"amount"`
		Type        string `json:"type"`
		Date        string `json:"date"`
		Description string `json:"description"`
	}

	ExpensePatch struct {
		Amount      *string `json:"amount"`
		Type        *string `json:"type"`
		Date        *string `json:"date"`
		Description *string `json:"description"`
	}

	ExpenseData struct {
		Amount      Money
		Type        ExpenseType
		Date        Date
		Description string
	}

	ExpenseChanges struct {
		Amount      *Money
		Type        *ExpenseType
		Date        *Date
		Description *string
	}
)

// Validate checks every field and returns the normalized data. All offending
// fields are reported together in a *ValidationError.
func (in SaleInput) Validate() (SaleData, error) {
	var v ValidationError
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		v.Add("amount", err)
	}
	category := SaleCategory(strings.TrimSpace(in.Category))
	if err := category.Validate(); err != nil {
		v.Add("category", err)
	}
	date := Date(strings.TrimSpace(in.Date))
	if err := date.Validate(); err != nil {
		v.Add("date", err)
	}
	notes, err := normalizeText(in.Notes)
	if err != nil {
		v.Add("notes", err)
	}
	if err := v.Err(); err != nil {
		return SaleData{}, err
	}
	return SaleData{Amount: amount, Category: category, Date: date, Notes: notes}, nil
}

// Validate checks only the supplied fields.
func (p SalePatch) Validate() (SaleChanges, error) {
	var (
		v  ValidationError
		ch SaleChanges
	)
	if p.Amount != nil {
		if amount, err := ParseAmount(*p.Amount); err != nil {
			v.Add("amount", err)
		} else {
			ch.Amount = &amount
		}
	}
	if p.Category != nil {
		category := SaleCategory(strings.TrimSpace(*p.Category))
		if err := category.Validate(); err != nil {
			v.Add("category", err)
		} else {
			ch.Category = &category
		}
	}
	if p.Date != nil {
		date := Date(strings.TrimSpace(*p.Date))
		if err := date.Validate(); err != nil {
			v.Add("date", err)
		} else {
			ch.Date = &date
		}
	}
	if p.Notes != nil {
		if notes, err := normalizeText(*p.Notes); err != nil {
			v.Add("notes", err)
		} else {
			ch.Notes = &notes
		}
	}
	if err := v.Err(); err != nil {
		return SaleChanges{}, err
	}
	return ch, nil
}

// Apply returns s with the changes applied and UpdatedAt set to now.
func (s Sale) Apply(ch SaleChanges, now time.Time) Sale {
	if ch.Amount != nil {
		s.Amount = *ch.Amount
	}
	if ch.Category != nil {
		s.Category = *ch.Category
	}
	if ch.Date != nil {
		s.Date = *ch.Date
	}
	if ch.Notes != nil {
		s.Notes = *ch.Notes
	}
	s.UpdatedAt = now
	return s
}

func (in ExpenseInput) Validate() (ExpenseData, error) {
	var v ValidationError
	amount, err := ParseAmount(in.Amount)
	if err != nil {
		v.Add("amount", err)
	}
	typ := ExpenseType(strings.TrimSpace(in.Type))
	if err := typ.Validate(); err != nil {
		v.Add("type", err)
	}
	date := Date(strings.TrimSpace(in.Date))
	if err := date.Validate(); err != nil {
		v.Add("date", err)
	}
	desc, err := normalizeText(in.Description)
	if err != nil {
		v.Add("description", err)
	}
	if err := v.Err(); err != nil {
		return ExpenseData{}, err
	}
	return ExpenseData{Amount: amount, Type: typ, Date: date, Description: desc}, nil
}

func (p ExpensePatch) Validate() (ExpenseChanges, error) {
	var (
		v  ValidationError
		ch ExpenseChanges
	)
	if p.Amount != nil {
		if amount, err := ParseAmount(*p.Amount); err != nil {
			v.Add("amount", err)
		} else {
			ch.Amount = &amount
		}
	}
	if p.Type != nil {
		typ := ExpenseType(strings.TrimSpace(*p.Type))
		if err := typ.Validate(); err != nil {
			v.Add("type", err)
		} else {
			ch.Type = &typ
		}
	}
	if p.Date != nil {
		date := Date(strings.TrimSpace(*p.Date))
		if err := date.Validate(); err != nil {
			v.Add("date", err)
		} else {
			ch.Date = &date
		}
	}
	if p.Description != nil {
		if desc, err := normalizeText(*p.Description); err != nil {
			v.Add("description", err)
		} else {
			ch.Description = &desc
		}
	}
	if err := v.Err(); err != nil {
		return ExpenseChanges{}, err
	}
	return ch, nil
}

func (e Expense) Apply(ch ExpenseChanges, now time.Time) Expense {
	if ch.Amount != nil {
		e.Amount = *ch.Amount
	}
	if ch.Type != nil {
		e.Type = *ch.Type
	}
	if ch.Date != nil {
		e.Date = *ch.Date
	}
	if ch.Description != nil {
		e.Description = *ch.Description
	}
	e.UpdatedAt = now
	return e
}

// normalizeText trims s and removes control characters except tab and newlines.
func normalizeText(s string) (string, error) {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
	if utf8.RuneCountInString(s) > maxTextLength {
		return "", ErrTextTooLong
	}
	return s, nil
}
