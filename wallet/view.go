package wallet

import (
	"github.com/AlexZinkM/wallet-state/internal/model"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// AccountView is a detached copy of an account. Changing it never touches
// the account it was taken from.
type AccountView struct {
	Name         string
	Address      string
	PublicKey    solana.PublicKey
	URL          string
	Type         model.AccountType
	Balance      decimal.Decimal
	FiatBalance  decimal.Decimal
	Price        decimal.Decimal
	// Mnemonic is empty for watchers
	Mnemonic     string
	// Transactions keeps the nil entries of undecoded shapes
	Transactions []*model.Transaction
}

// View snapshots acc
func View(acc Account) AccountView {
	rec := acc.Record()

	var txs []*model.Transaction
	if src := acc.Transactions(); src != nil {
		txs = make([]*model.Transaction, len(src))
		for i, tx := range src {
			if tx != nil {
				cp := *tx
				txs[i] = &cp
			}
		}
	}

	return AccountView{
		Name:         acc.Name(),
		Address:      acc.Address(),
		PublicKey:    acc.PublicKey(),
		URL:          acc.URL(),
		Type:         acc.Type(),
		Balance:      acc.Balance(),
		FiatBalance:  acc.FiatBalance(),
		Price:        acc.Price(),
		Mnemonic:     rec.Mnemonic,
		Transactions: txs,
	}
}
