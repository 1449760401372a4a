package store

import (
	"errors"
	"fmt"

	"github.com/AlexZinkM/wallet-state/wallet"

	"github.com/shopspring/decimal"
)

// EventKind tags a state transition
type EventKind int

const (
	EventSetBalance EventKind = iota
	EventAddAccount
	EventRemoveAccount
	EventRenameAccount
	// EventPriceRefreshed carries no state change
	EventPriceRefreshed
)

func (k EventKind) String() string {
	switch k {
	case EventSetBalance:
		return "SetBalance"
	case EventAddAccount:
		return "AddAccount"
	case EventRemoveAccount:
		return "RemoveAccount"
	case EventRenameAccount:
		return "RenameAccount"
	case EventPriceRefreshed:
		return "PriceRefreshed"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event is a state transition. Which fields are read depends on Kind.
type Event struct {
	Kind EventKind

	Name    string          // SetBalance, RemoveAccount, RenameAccount
	NewName string          // RenameAccount
	Balance decimal.Decimal // SetBalance
	Account wallet.Account  // AddAccount, nil once published
	Price   decimal.Decimal // PriceRefreshed

	// View is set on published AddAccount events in place of Account
	View *wallet.AccountView
}

// detached returns the copy handed to subscribers, holding no live account
func (ev Event) detached() Event {
	if ev.Account != nil {
		view := wallet.View(ev.Account)
		ev.View = &view
		ev.Account = nil
	}
	return ev
}

// SetBalance sets the SOL balance of the named account
func SetBalance(name string, balance decimal.Decimal) Event {
	return Event{Kind: EventSetBalance, Name: name, Balance: balance}
}

// AddAccount inserts acc into the directory
func AddAccount(acc wallet.Account) Event {
	return Event{Kind: EventAddAccount, Account: acc}
}

// RemoveAccount deletes the named account
func RemoveAccount(name string) Event {
	return Event{Kind: EventRemoveAccount, Name: name}
}

// RenameAccount moves an account to a new display name
func RenameAccount(oldName, newName string) Event {
	return Event{Kind: EventRenameAccount, Name: oldName, NewName: newName}
}

// PriceRefreshed announces a new shared price
func PriceRefreshed(price decimal.Decimal) Event {
	return Event{Kind: EventPriceRefreshed, Price: price}
}

// Reduce applies ev to state. Fiat values are derived from balance and
// price, so SetBalance keeps them current.
func Reduce(state *wallet.AppState, ev Event) error {
	switch ev.Kind {
	case EventSetBalance:
		acc, err := state.Account(ev.Name)
		if err != nil {
			return err
		}
		acc.SetBalance(ev.Balance)
	case EventAddAccount:
		if ev.Account == nil {
			return errors.New("add account event without account")
		}
		state.AddAccount(ev.Account)
	case EventRemoveAccount:
		return state.RemoveAccount(ev.Name)
	case EventRenameAccount:
		return state.RenameAccount(ev.Name, ev.NewName)
	case EventPriceRefreshed:
	default:
		return fmt.Errorf("unknown event %s", ev.Kind)
	}
	return nil
}
