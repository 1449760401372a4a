package model

import (
	"github.com/shopspring/decimal"
)

// Transaction is the flat view of a parsed system-program transfer
type Transaction struct {
	Signature string          `json:"signature"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Amount    decimal.Decimal `json:"amount"`        // SOL
	Received  bool            `json:"receivedOrNot"` // To equals the owning account's address
}
