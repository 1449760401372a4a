package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/AlexZinkM/wallet-state/internal/common"
	"github.com/AlexZinkM/wallet-state/internal/model"
	"github.com/AlexZinkM/wallet-state/internal/storage"
	"github.com/AlexZinkM/wallet-state/wallet"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const defaultTxLimit = 10

// Options tunes a Store
type Options struct {
	// DefaultURL is used for accounts created without a node URL
	DefaultURL string
	// TxLimit caps the transactions loaded per account
	TxLimit int
	// SendCooldown is the minimum time between two sends from one account
	SendCooldown time.Duration
}

// Store owns the AppState. Every operation runs under one lock, performs
// its network steps in order and stops at the first error without undoing
// the steps already applied.
type Store struct {
	mu sync.Mutex

	state     *wallet.AppState
	dial      Dialer
	prices    wallet.PriceFunc
	persister storage.Persister
	opts      Options

	subscribers []func(Event)
	lastSend    map[string]time.Time
	now         func() time.Time
}

// New returns a Store over an empty state, call Load to restore it
func New(persister storage.Persister, dial Dialer, prices wallet.PriceFunc, opts Options) *Store {
	if opts.TxLimit <= 0 {
		opts.TxLimit = defaultTxLimit
	}

	return &Store{
		state:     wallet.NewAppState(),
		dial:      dial,
		prices:    prices,
		persister: persister,
		opts:      opts,
		lastSend:  make(map[string]time.Time),
		now:       time.Now,
	}
}

// Subscribe registers fn to receive every applied event. fn runs with the
// store locked and must not call back into it.
func (s *Store) Subscribe(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscribers = append(s.subscribers, fn)
}

// Load restores the persisted state. Unreadable content yields an empty
// state; a failing backend is an error.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load state: %w", err)
	}

	if len(data) == 0 {
		s.state = wallet.NewAppState()
	} else {
		s.state = wallet.FromJSON(data)
	}

	log.WithField("accounts", s.state.Len()).Info("state loaded")
	return nil
}

// RefreshAccounts reloads transactions and balance of every account, then
// the fiat price
func (s *Store) RefreshAccounts(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acc := range s.state.Accounts() {
		if err := s.refresh(ctx, acc); err != nil {
			return err
		}
	}
	return s.refreshPrice(ctx)
}

// RefreshAccount reloads transactions and balance of one account
func (s *Store) RefreshAccount(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.state.Account(name)
	if err != nil {
		return err
	}
	return s.refresh(ctx, acc)
}

// CreateWallet generates a new mnemonic and adds the derived account
func (s *Store) CreateWallet(ctx context.Context, name, url string) (wallet.AccountView, error) {
	return s.ImportWallet(ctx, name, url, "")
}

// ImportWallet adds the account derived from mnemonic. An empty mnemonic
// generates a new one.
func (s *Store) ImportWallet(ctx context.Context, name, url, mnemonic string) (wallet.AccountView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, url, err := s.resolveNew(name, url)
	if err != nil {
		return wallet.AccountView{}, err
	}

	acc, err := wallet.GenerateWallet(ctx, name, url, mnemonic, s.dial(url))
	if err != nil {
		return wallet.AccountView{}, err
	}

	if err := s.addAccount(ctx, acc); err != nil {
		return wallet.AccountView{}, err
	}
	return wallet.View(acc), nil
}

// CreateWatcher adds a watch-only account for address
func (s *Store) CreateWatcher(ctx context.Context, name, url, address string) (wallet.AccountView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name, url, err := s.resolveNew(name, url)
	if err != nil {
		return wallet.AccountView{}, err
	}

	acc, err := wallet.NewWatcher(name, url, address)
	if err != nil {
		return wallet.AccountView{}, err
	}
	if err := acc.RefreshBalance(ctx, s.dial(url)); err != nil {
		return wallet.AccountView{}, err
	}

	if err := s.addAccount(ctx, acc); err != nil {
		return wallet.AccountView{}, err
	}

	log.WithFields(log.Fields{
		"account": name,
		"address": address,
	}).Info("watcher added")
	return wallet.View(acc), nil
}

// RemoveAccount drops the named account
func (s *Store) RemoveAccount(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.dispatch(ctx, RemoveAccount(name)); err != nil {
		return err
	}
	log.WithField("account", name).Info("account removed")
	return nil
}

// RenameAccount moves an account to a new, unused display name
func (s *Store) RenameAccount(ctx context.Context, oldName, newName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if newName == "" {
		return errors.New("account name cannot be empty")
	}
	if err := s.dispatch(ctx, RenameAccount(oldName, newName)); err != nil {
		return err
	}
	if last, ok := s.lastSend[oldName]; ok {
		delete(s.lastSend, oldName)
		s.lastSend[newName] = last
	}
	return nil
}

// SendSOL transfers amount SOL, given as a decimal string, from the named
// wallet account and refreshes its balance afterwards
func (s *Store) SendSOL(ctx context.Context, name, toAddress, amount string) (string, error) {
	sol, err := common.ParseSOL(amount)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.state.Account(name)
	if err != nil {
		return "", err
	}
	w, ok := acc.(*wallet.WalletAccount)
	if !ok {
		return "", fmt.Errorf("%w: %s", model.ErrKeysNotAvailable, name)
	}

	if last, ok := s.lastSend[name]; ok && s.opts.SendCooldown > 0 {
		if elapsed := s.now().Sub(last); elapsed < s.opts.SendCooldown {
			remaining := s.opts.SendCooldown - elapsed
			return "", fmt.Errorf("cooldown active, please wait %v", remaining.Round(time.Second))
		}
	}

	node := s.dial(w.URL())
	sig, err := w.SendSOL(ctx, node, toAddress, sol)
	if err != nil {
		return "", err
	}
	s.lastSend[name] = s.now()

	if err := w.RefreshBalance(ctx, node); err != nil {
		return sig, err
	}
	return sig, s.dispatch(ctx, SetBalance(w.Name(), w.Balance()))
}

// Account returns a snapshot of the named account
func (s *Store) Account(name string) (wallet.AccountView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acc, err := s.state.Account(name)
	if err != nil {
		return wallet.AccountView{}, err
	}
	return wallet.View(acc), nil
}

// Accounts returns snapshots of all accounts sorted by name
func (s *Store) Accounts() []wallet.AccountView {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts := s.state.Accounts()
	out := make([]wallet.AccountView, 0, len(accounts))
	for _, acc := range accounts {
		out = append(out, wallet.View(acc))
	}
	return out
}

// Price returns the last fetched SOL price
func (s *Store) Price() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.Price()
}

// Close releases the persistence backend
func (s *Store) Close() {
	s.persister.Close()
}

func (s *Store) resolveNew(name, url string) (string, string, error) {
	if name == "" {
		name = s.state.GenerateAccountName()
	} else if _, err := s.state.Account(name); err == nil {
		return "", "", fmt.Errorf("account %q already exists", name)
	}

	if url == "" {
		url = s.opts.DefaultURL
	}
	if url == "" {
		return "", "", fmt.Errorf("no node URL for account %q", name)
	}
	return name, url, nil
}

func (s *Store) refresh(ctx context.Context, acc wallet.Account) error {
	node := s.dial(acc.URL())

	if err := acc.LoadTransactions(ctx, node, s.opts.TxLimit); err != nil {
		return err
	}
	if err := acc.RefreshBalance(ctx, node); err != nil {
		return err
	}
	return s.dispatch(ctx, SetBalance(acc.Name(), acc.Balance()))
}

func (s *Store) addAccount(ctx context.Context, acc wallet.Account) error {
	if err := s.dispatch(ctx, AddAccount(acc)); err != nil {
		return err
	}
	return s.refreshPrice(ctx)
}

func (s *Store) refreshPrice(ctx context.Context) error {
	resolve := func(url string) wallet.Node { return s.dial(url) }
	if err := s.state.LoadSolValue(ctx, s.prices, resolve); err != nil {
		return err
	}
	return s.dispatch(ctx, PriceRefreshed(s.state.Price()))
}

// dispatch reduces ev, persists the result and notifies subscribers
func (s *Store) dispatch(ctx context.Context, ev Event) error {
	if err := Reduce(s.state, ev); err != nil {
		return err
	}

	data, err := s.state.ToJSON()
	if err != nil {
		return err
	}
	if err := s.persister.Save(ctx, data); err != nil {
		return fmt.Errorf("failed to persist state: %w", err)
	}

	log.WithField("event", ev.Kind.String()).Debug("event applied")

	published := ev.detached()
	for _, fn := range s.subscribers {
		fn(published)
	}
	return nil
}
