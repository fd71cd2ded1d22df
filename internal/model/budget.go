package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budget is a monthly spending limit linked to a category by id. The category
// display name is denormalized and kept consistent by the rename cascade.
type Budget struct {
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	CategoryName string          `json:"category_name"`
	Period       string          `json:"period"`
	Amount       decimal.Decimal `json:"amount"`
	ID           uuid.UUID       `json:"id"`
	CategoryID   uuid.UUID       `json:"category_id"`
}
