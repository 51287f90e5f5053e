package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product represents a catalogue record.
type Product struct {
	ID          string          `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Description string          `json:"description" db:"description"`
	Price       decimal.Decimal `json:"price" db:"price"`
	Category    string          `json:"category" db:"category"`
	Stock       int             `json:"stock" db:"stock"`
	IsAvailable bool            `json:"isAvailable" db:"is_available"`
	SoldCount   int             `json:"soldCount" db:"sold_count"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}
