package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction represents a single financial transaction. The amount sign
// encodes direction: positive for income, negative for expenses. CategoryName
// is denormalized alongside CategoryID for legacy display compatibility.
type Transaction struct {
	Date         time.Time       `json:"date"`
	CreatedAt    time.Time       `json:"created_at"`
	Merchant     string          `json:"merchant"`
	Note         string          `json:"note"`
	CategoryName string          `json:"category_name"`
	Amount       decimal.Decimal `json:"amount"`
	ID           uuid.UUID       `json:"id"`
	CategoryID   uuid.UUID       `json:"category_id"`
}

// Direction returns the category type implied by the amount sign.
func (t Transaction) Direction() CategoryType {
	if t.Amount.Sign() >= 0 {
		return CategoryTypeIncome
	}
	return CategoryTypeExpense
}

// SignedAmount returns the magnitude of amount with the sign dictated by the
// given type: positive for income, negative for expense.
func SignedAmount(amount decimal.Decimal, t CategoryType) decimal.Decimal {
	if t == CategoryTypeIncome {
		return amount.Abs()
	}
	return amount.Abs().Neg()
}
