package wallet

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/wallet-state/internal/common"
	"github.com/AlexZinkM/wallet-state/internal/model"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
)

// Node is the remote JSON-RPC node accounts read from
type Node interface {
	// GetBalance returns the balance of owner in lamports
	GetBalance(ctx context.Context, owner solana.PublicKey) (uint64, error)
	// GetTransactions returns up to limit recent transactions of owner,
	// newest first; undecodable entries are nil
	GetTransactions(ctx context.Context, owner solana.PublicKey, limit int) ([]*solana.Transaction, error)
}

// NodeResolver returns the node serving url
type NodeResolver func(url string) Node

// Account is implemented by *WalletAccount and *WatcherAccount only.
type Account interface {
	Name() string
	Address() string
	PublicKey() solana.PublicKey
	URL() string
	Type() model.AccountType

	// Balance is in SOL
	Balance() decimal.Decimal
	// FiatBalance is Balance × Price, always derived
	FiatBalance() decimal.Decimal
	Price() decimal.Decimal
	// Transactions is newest first and may contain nil entries for
	// transaction shapes that are not decoded
	Transactions() []*model.Transaction

	SetBalance(balance decimal.Decimal)
	SetPrice(price decimal.Decimal)

	RefreshBalance(ctx context.Context, node Node) error
	LoadTransactions(ctx context.Context, node Node, limit int) error
	AddressQR(size int) (string, error)

	Record() model.AccountRecord

	setName(name string)
	isAccount()
}

// base holds what both variants share
type base struct {
	name         string
	pubkey       solana.PublicKey
	url          string
	balance      decimal.Decimal
	price        decimal.Decimal
	transactions []*model.Transaction
}

func newBase(name string, pubkey solana.PublicKey, url string) base {
	return base{
		name:    name,
		pubkey:  pubkey,
		url:     url,
		balance: decimal.Zero,
		price:   decimal.Zero,
	}
}

func (b *base) Name() string                 { return b.name }
func (b *base) Address() string              { return b.pubkey.String() }
func (b *base) PublicKey() solana.PublicKey  { return b.pubkey }
func (b *base) URL() string                  { return b.url }
func (b *base) Balance() decimal.Decimal     { return b.balance }
func (b *base) Price() decimal.Decimal       { return b.price }
func (b *base) FiatBalance() decimal.Decimal { return common.FiatValue(b.balance, b.price) }

func (b *base) Transactions() []*model.Transaction {
	return b.transactions
}

func (b *base) SetBalance(balance decimal.Decimal) { b.balance = balance }
func (b *base) SetPrice(price decimal.Decimal)     { b.price = price }

func (b *base) setName(name string) { b.name = name }
func (b *base) isAccount()          {}

func (b *base) record(accountType model.AccountType) model.AccountRecord {
	return model.AccountRecord{
		Name:        b.name,
		Address:     b.Address(),
		Balance:     b.balance,
		URL:         b.url,
		AccountType: accountType,
	}
}

// AccountFromRecord restores an account from its persisted form.
// Wallet keys are not derived here, see WalletAccount.PrivateKey.
func AccountFromRecord(rec model.AccountRecord) (Account, error) {
	pubkey, err := parseAddress(rec.Address)
	if err != nil {
		return nil, err
	}

	b := newBase(rec.Name, pubkey, rec.URL)
	b.balance = rec.Balance

	switch rec.AccountType {
	case model.AccountTypeWallet:
		if rec.Mnemonic == "" {
			return nil, fmt.Errorf("wallet account %q has no mnemonic: %w", rec.Name, model.ErrInvalidMnemonic)
		}
		return &WalletAccount{base: b, mnemonic: rec.Mnemonic}, nil
	case model.AccountTypeClient:
		return &WatcherAccount{base: b}, nil
	default:
		return nil, fmt.Errorf("unknown account type %q", rec.AccountType)
	}
}

func parseAddress(address string) (solana.PublicKey, error) {
	pubkey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %s", model.ErrInvalidAddress, address)
	}
	return pubkey, nil
}
