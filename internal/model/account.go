package model

import (
	"github.com/shopspring/decimal"
)

// AccountType tags the persisted account variant
type AccountType string

const (
	AccountTypeWallet AccountType = "wallet"
	AccountTypeClient AccountType = "client" // watch-only
)

// AccountRecord is the persisted form of an account
type AccountRecord struct {
	Name        string          `json:"name"`
	Address     string          `json:"address"`
	Balance     decimal.Decimal `json:"balance"`
	URL         string          `json:"url"`
	AccountType AccountType     `json:"accountType"`
	Mnemonic    string          `json:"mnemonic,omitempty"` // wallet accounts only
}

// StateFile is the persisted application state
type StateFile struct {
	Accounts map[string]AccountRecord `json:"accounts"`
}
