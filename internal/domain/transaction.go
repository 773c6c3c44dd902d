package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutResult is the backend answer to a successful debit.
type CheckoutResult struct {
	Amount          decimal.Decimal `json:"amount"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	PointOfSale     string          `json:"point_of_sale"`
	CardBlocked     bool            `json:"card_blocked"`
	Message         string          `json:"message,omitempty"`
}

// RechargeResult is the backend answer to a successful credit.
type RechargeResult struct {
	CardNumber      string          `json:"card_number"`
	Amount          decimal.Decimal `json:"amount"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	CardUnblocked   bool            `json:"card_unblocked"`
	Message         string          `json:"message,omitempty"`
}

type TransactionType string

const (
	TransactionRecharge TransactionType = "recarga"
	TransactionPayment  TransactionType = "pago"
)

// HistoryEntry is one movement in a card history.
type HistoryEntry struct {
	ID              int64           `json:"id"`
	Type            TransactionType `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	PointOfSale     string          `json:"point_of_sale,omitempty"`
	Description     string          `json:"description,omitempty"`
	At              *time.Time      `json:"at,omitempty"`
}

type CardHistory struct {
	CardNumber string          `json:"card_number"`
	HolderName string          `json:"holder_name"`
	Balance    decimal.Decimal `json:"balance"`
	Entries    []HistoryEntry  `json:"entries"`
}
