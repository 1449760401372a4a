package wallet

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/wallet-state/internal/common"

	log "github.com/sirupsen/logrus"
)

// RefreshBalance queries the node for the account balance and rewrites it.
// The fiat value follows from the stamped price.
func (b *base) RefreshBalance(ctx context.Context, node Node) error {
	lamports, err := node.GetBalance(ctx, b.pubkey)
	if err != nil {
		return fmt.Errorf("failed to refresh balance of %q: %w", b.name, err)
	}

	b.balance = common.LamportsToSOL(lamports)

	log.WithFields(log.Fields{
		"account": b.name,
		"balance": b.balance.String(),
	}).Debug("balance refreshed")

	return nil
}
