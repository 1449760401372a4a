package common

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	SOLDecimals = 9 // SOL has 9 decimals (lamports)
)

// LamportsToSOL converts lamports to SOL without float precision loss
// Example: LamportsToSOL(2500000000) = 2.5
func LamportsToSOL(lamports uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), -SOLDecimals)
}

// SOLToLamports converts a SOL amount to lamports.
// Fractions below one lamport are truncated.
func SOLToLamports(sol decimal.Decimal) (uint64, error) {
	if sol.IsNegative() {
		return 0, fmt.Errorf("negative amount %s", sol.String())
	}

	lamports := sol.Shift(SOLDecimals).Truncate(0).BigInt()
	if !lamports.IsUint64() {
		return 0, fmt.Errorf("amount %s overflows lamports", sol.String())
	}
	return lamports.Uint64(), nil
}

// ParseSOL parses a decimal string amount of SOL, e.g. "0.024981836"
func ParseSOL(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid SOL amount '%s': %w", s, err)
	}
	return d, nil
}

// FormatSOL renders a SOL amount with all 9 decimals, e.g. "0.024981836"
func FormatSOL(sol decimal.Decimal) string {
	return sol.StringFixed(SOLDecimals)
}

// FiatValue converts a SOL balance to the reference currency
func FiatValue(balance, price decimal.Decimal) decimal.Decimal {
	return balance.Mul(price)
}
