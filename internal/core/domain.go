package core

import (
	"time"
)

const (
	CategoryRetail  SaleCategory = "retail"
	CategoryOnline  SaleCategory = "online"
	CategoryService SaleCategory = "service"
	CategoryOther   SaleCategory = "other"
)

const (
	ExpenseInventory ExpenseType = "inventory"
	ExpenseRent      ExpenseType = "rent"
	ExpenseUtilities ExpenseType = "utilities"
	ExpenseMarketing ExpenseType = "marketing"
	ExpenseSupplies  ExpenseType = "supplies"
	ExpenseOther     ExpenseType = "other"
)

const (
	KindSale    EntryKind = "sale"
	KindExpense EntryKind = "expense"
)

type (
	SaleCategory string
	ExpenseType  string

	// EntryKind tells sales and expenses apart in merged views.
	EntryKind string

	Sale struct {
		ID        int64        `json:"id"`
		UserID    string       `json:"userId"`
		Amount    Money        `json:"amount"`
		Category  SaleCategory `json:"category"`
		Date      Date         `json:"date"`
		Notes     string       `json:"notes"`
		CreatedAt time.Time    `json:"createdAt"`
		UpdatedAt time.Time    `json:"updatedAt"`
	}

	Expense struct {
		ID          int64       `json:"id"`
		UserID      string      `json:"userId"`
		Amount      Money       `json:"amount"`
		Type        ExpenseType `json:"type"`
		Date        Date        `json:"date"`
		Description string      `json:"description"`
		CreatedAt   time.Time   `json:"createdAt"`
		UpdatedAt   time.Time   `json:"updatedAt"`
	}

	// Transaction is the read-only projection of a Sale or Expense.
	Transaction struct {
		ID          int64     `json:"id"`
		Type        EntryKind `json:"type"`
		Amount      Money     `json:"amount"`
		Category    string    `json:"category"`
		Date        Date      `json:"date"`
		Description string    `json:"description"`
		CreatedAt   time.Time `json:"createdAt"`
	}

	User struct {
		ID        string    `json:"id"`
		Email     string    `json:"email"`
		FirstName string    `json:"firstName"`
		LastName  string    `json:"lastName"`
		CreatedAt time.Time `json:"createdAt"`
		UpdatedAt time.Time `json:"updatedAt"`
	}
)

// SaleCategories lists the accepted sale categories in display order.
func SaleCategories() []SaleCategory {
	return []SaleCategory{CategoryRetail, CategoryOnline, CategoryService, CategoryOther}
}

// ExpenseTypes lists the accepted expense types in display order.
func ExpenseTypes() []ExpenseType {
	return []ExpenseType{ExpenseInventory, ExpenseRent, ExpenseUtilities, ExpenseMarketing, ExpenseSupplies, ExpenseOther}
}

func (c SaleCategory) Validate() error {
	switch c {
	case CategoryRetail, CategoryOnline, CategoryService, CategoryOther:
		return nil
	case "":
		return ErrEmptyCategory
	default:
		return ErrInvalidCategory
	}
}

func (t ExpenseType) Validate() error {
	switch t {
	case ExpenseInventory, ExpenseRent, ExpenseUtilities, ExpenseMarketing, ExpenseSupplies, ExpenseOther:
		return nil
	case "":
		return ErrEmptyCategory
	default:
		return ErrInvalidCategory
	}
}

// ParseEntryKind accepts "", "sale" or "expense". Empty means both kinds.
func ParseEntryKind(s string) (EntryKind, error) {
	switch k := EntryKind(s); k {
	case "", KindSale, KindExpense:
		return k, nil
	default:
		return "", ErrInvalidEntryKind
	}
}

// Includes reports whether a filter of kind k lets entries of other through.
func (k EntryKind) Includes(other EntryKind) bool {
	return k == "" || k == other
}
