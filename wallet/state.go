package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/AlexZinkM/wallet-state/internal/model"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const accountNamePrefix = "Account "

// ErrEmptyState is returned when stored state has no accounts object
var ErrEmptyState = errors.New("no accounts in stored state")

// PriceFunc fetches the current SOL price in the reference currency
type PriceFunc func(ctx context.Context) (decimal.Decimal, error)

// AppState is the account directory, keyed by display name, plus the one
// fiat price every account shares
type AppState struct {
	accounts map[string]Account
	price    decimal.Decimal
}

// NewAppState returns an empty state
func NewAppState() *AppState {
	return &AppState{
		accounts: make(map[string]Account),
		price:    decimal.Zero,
	}
}

// AddAccount inserts acc, overwriting any account with the same name, and
// stamps the current price on it
func (s *AppState) AddAccount(acc Account) {
	acc.SetPrice(s.price)
	s.accounts[acc.Name()] = acc
}

// Account returns the account named name
func (s *AppState) Account(name string) (Account, error) {
	acc, ok := s.accounts[name]
	if !ok {
		return nil, &model.AccountNotFoundError{Name: name}
	}
	return acc, nil
}

// RemoveAccount deletes the account named name
func (s *AppState) RemoveAccount(name string) error {
	if _, ok := s.accounts[name]; !ok {
		return &model.AccountNotFoundError{Name: name}
	}
	delete(s.accounts, name)
	return nil
}

// RenameAccount moves an account to a new display name
func (s *AppState) RenameAccount(oldName, newName string) error {
	acc, err := s.Account(oldName)
	if err != nil {
		return err
	}
	if oldName == newName {
		return nil
	}
	if _, exists := s.accounts[newName]; exists {
		return fmt.Errorf("account %q already exists", newName)
	}

	delete(s.accounts, oldName)
	acc.setName(newName)
	s.accounts[newName] = acc
	return nil
}

// Accounts returns all accounts sorted by name
func (s *AppState) Accounts() []Account {
	names := s.Names()
	out := make([]Account, 0, len(names))
	for _, name := range names {
		out = append(out, s.accounts[name])
	}
	return out
}

// Names returns the sorted display names
func (s *AppState) Names() []string {
	names := make([]string, 0, len(s.accounts))
	for name := range s.accounts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of accounts
func (s *AppState) Len() int {
	return len(s.accounts)
}

// Price returns the last fetched SOL price
func (s *AppState) Price() decimal.Decimal {
	return s.price
}

// SetPrice stores price and stamps it on every account
func (s *AppState) SetPrice(price decimal.Decimal) {
	s.price = price
	for _, acc := range s.accounts {
		acc.SetPrice(price)
	}
}

// GenerateAccountName returns the lowest "Account N" not already taken,
// starting at 0
func (s *AppState) GenerateAccountName() string {
	for i := 0; ; i++ {
		name := fmt.Sprintf("%s%d", accountNamePrefix, i)
		if _, taken := s.accounts[name]; !taken {
			return name
		}
	}
}

// LoadSolValue fetches the current price, stores it, then refreshes the
// balance of every account one after the other
func (s *AppState) LoadSolValue(ctx context.Context, prices PriceFunc, nodeFor NodeResolver) error {
	price, err := prices(ctx)
	if err != nil {
		return fmt.Errorf("failed to load SOL price: %w", err)
	}

	s.SetPrice(price)

	for _, acc := range s.Accounts() {
		if err := acc.RefreshBalance(ctx, nodeFor(acc.URL())); err != nil {
			return err
		}
	}
	return nil
}

// ToJSON serializes the directory
func (s *AppState) ToJSON() ([]byte, error) {
	file := model.StateFile{
		Accounts: make(map[string]model.AccountRecord, len(s.accounts)),
	}
	for name, acc := range s.accounts {
		file.Accounts[name] = acc.Record()
	}

	data, err := json.Marshal(file)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state: %w", err)
	}
	return data, nil
}

// FromJSON restores a state serialized by ToJSON. Malformed input of any
// kind yields an empty state instead of an error.
func FromJSON(data []byte) *AppState {
	state, err := decodeState(data)
	if err != nil {
		log.WithError(err).Warn("stored state unreadable, starting empty")
		return NewAppState()
	}
	return state
}

func decodeState(data []byte) (*AppState, error) {
	var file model.StateFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	if file.Accounts == nil {
		return nil, ErrEmptyState
	}

	state := NewAppState()
	for name, rec := range file.Accounts {
		// The directory key is the identity
		rec.Name = name

		acc, err := AccountFromRecord(rec)
		if err != nil {
			return nil, err
		}
		state.AddAccount(acc)
	}
	return state, nil
}
