package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
)

// SolanaClient is a client for working with Solana RPC
type SolanaClient struct {
	rpcClient *rpc.Client
	rpcURL    string
	limiter   ratelimit.Limiter
}

// NewSolanaClient creates a new Solana client for the given node URL.
// requestsPerSecond <= 0 disables throttling.
func NewSolanaClient(rpcURL string, requestsPerSecond int) *SolanaClient {
	limiter := ratelimit.NewUnlimited()
	if requestsPerSecond > 0 {
		limiter = ratelimit.New(requestsPerSecond)
	}

	return &SolanaClient{
		rpcClient: rpc.New(rpcURL),
		rpcURL:    rpcURL,
		limiter:   limiter,
	}
}

// URL returns the node URL the client talks to
func (c *SolanaClient) URL() string {
	return c.rpcURL
}

// GetBalance gets SOL balance in lamports
func (c *SolanaClient) GetBalance(ctx context.Context, owner solana.PublicKey) (uint64, error) {
	c.limiter.Take()

	balance, err := c.rpcClient.GetBalance(ctx, owner, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to get SOL balance: %w", err)
	}
	return balance.Value, nil
}

// GetTransactions gets up to limit most recent transactions for owner,
// newest first. An entry is nil when the node returned nothing decodable
// for its signature.
func (c *SolanaClient) GetTransactions(ctx context.Context, owner solana.PublicKey, limit int) ([]*solana.Transaction, error) {
	c.limiter.Take()

	sigs, err := c.rpcClient.GetSignaturesForAddressWithOpts(
		ctx,
		owner,
		&rpc.GetSignaturesForAddressOpts{
			Limit:      &limit,
			Commitment: rpc.CommitmentConfirmed,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get signatures: %w", err)
	}

	// maxVersion is hardcoded - new version support requires library update
	// and rebuild anyway
	maxVersion := uint64(0)

	transactions := make([]*solana.Transaction, 0, len(sigs))
	for _, sig := range sigs {
		c.limiter.Take()

		tx, err := c.rpcClient.GetTransaction(
			ctx,
			sig.Signature,
			&rpc.GetTransactionOpts{
				Encoding:                       solana.EncodingBase64,
				Commitment:                     rpc.CommitmentConfirmed,
				MaxSupportedTransactionVersion: &maxVersion,
			},
		)
		if errors.Is(err, rpc.ErrNotFound) {
			// Pruned or not yet visible at this commitment
			transactions = append(transactions, nil)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get transaction %s: %w", sig.Signature, err)
		}

		transactions = append(transactions, decodeTransaction(tx, sig.Signature))
	}

	return transactions, nil
}

// decodeTransaction unwraps the envelope, returning nil when it cannot
func decodeTransaction(tx *rpc.GetTransactionResult, sig solana.Signature) *solana.Transaction {
	if tx == nil || tx.Transaction == nil {
		return nil
	}

	decoded, err := tx.Transaction.GetTransaction()
	if err != nil {
		log.WithError(err).Debugf("undecodable transaction %s", sig)
		return nil
	}
	return decoded
}

// LatestBlockhash gets the latest finalized blockhash
func (c *SolanaClient) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	c.limiter.Take()

	recent, err := c.rpcClient.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, fmt.Errorf("failed to get recent blockhash: %w", err)
	}
	return recent.Value.Blockhash, nil
}

// SendTransaction submits a signed transaction and returns its signature
func (c *SolanaClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	c.limiter.Take()

	sig, err := c.rpcClient.SendTransactionWithOpts(
		ctx,
		tx,
		rpc.TransactionOpts{
			SkipPreflight:       false, // Transaction validation before node
			PreflightCommitment: rpc.CommitmentFinalized,
		},
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig, nil
}
