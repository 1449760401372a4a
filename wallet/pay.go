package wallet

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/wallet-state/internal/common"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	solFeeLamports = 5000 // Fee in lamports (0.000005 SOL)
)

// PayNode is a Node that can also submit transactions
type PayNode interface {
	Node
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
}

// SendSOL transfers amount SOL to toAddress and returns the transaction
// signature. Balance is checked against amount + fee before signing.
func (w *WalletAccount) SendSOL(ctx context.Context, node PayNode, toAddress string, amount decimal.Decimal) (string, error) {
	toPubkey, err := parseAddress(toAddress)
	if err != nil {
		return "", err
	}

	lamports, err := common.SOLToLamports(amount)
	if err != nil {
		return "", fmt.Errorf("invalid amount: %w", err)
	}
	if lamports == 0 {
		return "", fmt.Errorf("invalid amount: must be at least 1 lamport")
	}

	key, err := w.PrivateKey(ctx)
	if err != nil {
		return "", err
	}

	// Check balance (lamports)
	balLamports, err := node.GetBalance(ctx, w.pubkey)
	if err != nil {
		return "", fmt.Errorf("failed to check balance: %w", err)
	}

	// Check SOL sufficiency (amount + fee)
	requiredLamports := lamports + solFeeLamports
	if balLamports < requiredLamports {
		// Calculate max amount user can send
		var maxLamports uint64
		if balLamports > solFeeLamports {
			maxLamports = balLamports - solFeeLamports
		}
		return "", fmt.Errorf("insufficient SOL balance. Transaction fee: %s SOL. Max you can send: %s SOL",
			common.LamportsToSOL(solFeeLamports), common.LamportsToSOL(maxLamports))
	}

	blockhash, err := node.LatestBlockhash(ctx)
	if err != nil {
		return "", err
	}

	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(lamports, w.pubkey, toPubkey).Build()},
		blockhash,
		solana.TransactionPayer(w.pubkey),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create transaction: %w", err)
	}

	_, err = tx.Sign(func(pub solana.PublicKey) *solana.PrivateKey {
		if pub.Equals(w.pubkey) {
			return &key
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign transaction: %w", err)
	}

	sig, err := node.SendTransaction(ctx, tx)
	if err != nil {
		return "", err
	}

	log.WithFields(log.Fields{
		"account": w.name,
		"to":      toAddress,
		"amount":  common.FormatSOL(amount),
		"txId":    sig.String(),
	}).Info("SOL transfer sent")

	return sig.String(), nil
}
