package model

import (
	"time"

	"github.com/google/uuid"
)

// CategoryType indicates whether a category classifies income or expenses.
type CategoryType string

const (
	// CategoryTypeIncome represents categories for income transactions.
	CategoryTypeIncome CategoryType = "income"
	// CategoryTypeExpense represents categories for expense transactions.
	CategoryTypeExpense CategoryType = "expense"
)

// Valid reports whether the type is one of the known classifications.
func (t CategoryType) Valid() bool {
	return t == CategoryTypeIncome || t == CategoryTypeExpense
}

// Fixed identities for the two sentinel categories. Orphaned transaction and
// budget references are reassigned to the sentinel matching their type.
var (
	SentinelIncomeID  = uuid.MustParse("8a0f2f5e-0001-4c80-9d25-3e1fdc6d9101")
	SentinelExpenseID = uuid.MustParse("8a0f2f5e-0002-4c80-9d25-3e1fdc6d9102")
)

// SentinelID returns the fixed sentinel category id for the given type.
func SentinelID(t CategoryType) uuid.UUID {
	if t == CategoryTypeIncome {
		return SentinelIncomeID
	}
	return SentinelExpenseID
}

// Category is a classification bucket for transactions. Records form a flat
// arena keyed by stable id; a record with a ParentID is presented to callers
// as a subcategory of its parent. Deleted records are retained for audit and
// excluded from every active view.
type Category struct {
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	ParentID  *uuid.UUID   `json:"parent_id,omitempty"`
	Name      string       `json:"name"`
	Glyph     string       `json:"glyph"`
	Type      CategoryType `json:"type"`
	ID        uuid.UUID    `json:"id"`
	IsBuiltIn bool         `json:"is_built_in"`
	IsDeleted bool         `json:"is_deleted"`
}

// IsSentinel reports whether the category is one of the two fixed fallback
// categories, which are never editable, deletable, or reparentable.
func (c Category) IsSentinel() bool {
	return c.ID == SentinelIncomeID || c.ID == SentinelExpenseID
}

// TopLevel reports whether the category has no parent.
func (c Category) TopLevel() bool {
	return c.ParentID == nil
}

// Subcategory is the derived view of a child category record, carrying the
// denormalized parent name and id that legacy display code expects.
type Subcategory struct {
	Name       string       `json:"name"`
	Glyph      string       `json:"glyph"`
	ParentName string       `json:"parent_name"`
	Type       CategoryType `json:"type"`
	ID         uuid.UUID    `json:"id"`
	ParentID   uuid.UUID    `json:"parent_id"`
}

// AsSubcategory renders a child record as its legacy subcategory view.
func (c Category) AsSubcategory(parent Category) Subcategory {
	return Subcategory{
		ID:         c.ID,
		Name:       c.Name,
		Glyph:      c.Glyph,
		Type:       c.Type,
		ParentID:   parent.ID,
		ParentName: parent.Name,
	}
}
