package model

import "errors"

var (
	ErrAccountNotFound  = errors.New("account not found")
	ErrInvalidMnemonic  = errors.New("invalid mnemonic")
	ErrInvalidAddress   = errors.New("invalid Solana address")
	ErrKeysNotAvailable = errors.New("account holds no signing keys")
)

// AccountNotFoundError is returned when a display name is not in the directory
type AccountNotFoundError struct {
	Name string
}

func (e *AccountNotFoundError) Error() string {
	return "account not found: " + e.Name
}

func (e *AccountNotFoundError) Is(target error) bool {
	return target == ErrAccountNotFound
}

// IsAccountNotFoundError checks if error is AccountNotFoundError
func IsAccountNotFoundError(err error) bool {
	var target *AccountNotFoundError
	return errors.As(err, &target)
}
