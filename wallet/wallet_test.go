package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/AlexZinkM/wallet-state/internal/model"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const (
	abandonMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	abandonAddress  = "HAgk14JpMQLgt6rVgv7cBQFJWFto5Dqxi472uT3DKpqk"
	testURL         = "https://node.test"
)

var (
	ctx     = context.Background()
	errNode = errors.New("node unreachable")
)

type fakeNode struct {
	balances map[solana.PublicKey]uint64
	txs      map[solana.PublicKey][]*solana.Transaction
	err      error
	sent     []*solana.Transaction
}

func newFakeNode() *fakeNode {
	return &fakeNode{
		balances: make(map[solana.PublicKey]uint64),
		txs:      make(map[solana.PublicKey][]*solana.Transaction),
	}
}

func (n *fakeNode) GetBalance(_ context.Context, owner solana.PublicKey) (uint64, error) {
	if n.err != nil {
		return 0, n.err
	}
	return n.balances[owner], nil
}

func (n *fakeNode) GetTransactions(_ context.Context, owner solana.PublicKey, limit int) ([]*solana.Transaction, error) {
	if n.err != nil {
		return nil, n.err
	}
	txs := n.txs[owner]
	if len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}

func (n *fakeNode) LatestBlockhash(context.Context) (solana.Hash, error) {
	return solana.Hash{1}, n.err
}

func (n *fakeNode) SendTransaction(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
	if n.err != nil {
		return solana.Signature{}, n.err
	}
	n.sent = append(n.sent, tx)
	return tx.Signatures[0], nil
}

func (n *fakeNode) resolver() NodeResolver {
	return func(string) Node { return n }
}

func newTransferTx(t *testing.T, lamports uint64, from, to solana.PublicKey) *solana.Transaction {
	tx, err := solana.NewTransaction(
		[]solana.Instruction{system.NewTransferInstruction(lamports, from, to).Build()},
		solana.Hash{},
		solana.TransactionPayer(from),
	)
	require.NoError(t, err)
	return tx
}

func TestGenerateWallet(t *testing.T) {
	node := newFakeNode()
	node.balances[solana.MustPublicKeyFromBase58(abandonAddress)] = 2500000000

	acc, err := GenerateWallet(ctx, "Account 0", testURL, abandonMnemonic, node)
	require.NoError(t, err)
	require.Equal(t, abandonAddress, acc.Address())
	require.Equal(t, model.AccountTypeWallet, acc.Type())
	require.Equal(t, abandonMnemonic, acc.Mnemonic())
	require.True(t, acc.Balance().Equal(decimal.RequireFromString("2.5")))

	key, err := acc.PrivateKey(ctx)
	require.NoError(t, err)
	require.Equal(t, abandonAddress, key.PublicKey().String())
}

func TestGenerateWalletFreshMnemonic(t *testing.T) {
	acc, err := GenerateWallet(ctx, "Account 0", testURL, "", newFakeNode())
	require.NoError(t, err)
	require.NotEmpty(t, acc.Mnemonic())
	require.True(t, acc.Balance().IsZero())

	key, err := acc.PrivateKey(ctx)
	require.NoError(t, err)
	require.True(t, key.PublicKey().Equals(acc.PublicKey()))
}

func TestGenerateWalletErrors(t *testing.T) {
	_, err := GenerateWallet(ctx, "Account 0", testURL, "abandon abandon", newFakeNode())
	require.ErrorIs(t, err, model.ErrInvalidMnemonic)

	node := newFakeNode()
	node.err = errNode
	_, err = GenerateWallet(ctx, "Account 0", testURL, abandonMnemonic, node)
	require.ErrorIs(t, err, errNode)
}

func TestDeriveKeysAsync(t *testing.T) {
	res := <-DeriveKeysAsync(abandonMnemonic)
	require.NoError(t, res.Err)
	require.Equal(t, abandonAddress, res.Key.PublicKey().String())

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err := awaitKey(cancelled, make(chan KeyResult))
	require.ErrorIs(t, err, context.Canceled)
}

func TestRestoredWalletDerivesLazily(t *testing.T) {
	acc, err := AccountFromRecord(model.AccountRecord{
		Name:        "Main",
		Address:     abandonAddress,
		Balance:     decimal.RequireFromString("1.25"),
		URL:         testURL,
		AccountType: model.AccountTypeWallet,
		Mnemonic:    abandonMnemonic,
	})
	require.NoError(t, err)

	w, ok := acc.(*WalletAccount)
	require.True(t, ok)
	require.Nil(t, w.key)

	key, err := w.PrivateKey(ctx)
	require.NoError(t, err)
	require.Equal(t, abandonAddress, key.PublicKey().String())
	require.NotNil(t, w.key)
}

func TestRestoredWalletAddressMismatch(t *testing.T) {
	acc, err := AccountFromRecord(model.AccountRecord{
		Name:        "Main",
		Address:     solana.NewWallet().PublicKey().String(),
		AccountType: model.AccountTypeWallet,
		Mnemonic:    abandonMnemonic,
	})
	require.NoError(t, err)

	_, err = acc.(*WalletAccount).PrivateKey(ctx)
	require.Error(t, err)
}

func TestNewWatcher(t *testing.T) {
	address := solana.NewWallet().PublicKey().String()

	acc, err := NewWatcher("Friend", testURL, address)
	require.NoError(t, err)
	require.Equal(t, address, acc.Address())
	require.Equal(t, model.AccountTypeClient, acc.Type())
	require.Empty(t, acc.Record().Mnemonic)

	_, err = NewWatcher("Friend", testURL, "not-an-address")
	require.ErrorIs(t, err, model.ErrInvalidAddress)
}

func TestRefreshBalance(t *testing.T) {
	node := newFakeNode()
	acc, err := NewWatcher("Friend", testURL, solana.NewWallet().PublicKey().String())
	require.NoError(t, err)
	node.balances[acc.PublicKey()] = 2_500_000_000

	acc.SetPrice(decimal.NewFromInt(10))
	require.NoError(t, acc.RefreshBalance(ctx, node))
	require.True(t, acc.Balance().Equal(decimal.RequireFromString("2.5")))
	require.True(t, acc.FiatBalance().Equal(decimal.NewFromInt(25)))

	node.err = errNode
	require.ErrorIs(t, acc.RefreshBalance(ctx, node), errNode)
	require.True(t, acc.Balance().Equal(decimal.RequireFromString("2.5")))
}

func TestParseTransfers(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	other := solana.NewWallet().PublicKey()

	received := newTransferTx(t, 1_500_000_000, other, owner)
	sent := newTransferTx(t, 250_000_000, owner, other)

	// System program, but not a transfer
	allocate, err := solana.NewTransaction(
		[]solana.Instruction{system.NewAllocateInstruction(64, owner).Build()},
		solana.Hash{},
		solana.TransactionPayer(owner),
	)
	require.NoError(t, err)

	// Unknown program
	memo, err := solana.NewTransaction(
		[]solana.Instruction{solana.NewInstruction(
			solana.MemoProgramID,
			solana.AccountMetaSlice{solana.Meta(owner).SIGNER()},
			[]byte("hello"),
		)},
		solana.Hash{},
		solana.TransactionPayer(owner),
	)
	require.NoError(t, err)

	// Two instructions, even though both are transfers
	double, err := solana.NewTransaction(
		[]solana.Instruction{
			system.NewTransferInstruction(1, owner, other).Build(),
			system.NewTransferInstruction(2, owner, other).Build(),
		},
		solana.Hash{},
		solana.TransactionPayer(owner),
	)
	require.NoError(t, err)

	txs := []*solana.Transaction{received, memo, sent, allocate, double, nil}
	parsed := ParseTransfers(owner, txs)
	require.Len(t, parsed, len(txs))

	require.NotNil(t, parsed[0])
	require.Equal(t, other.String(), parsed[0].From)
	require.Equal(t, owner.String(), parsed[0].To)
	require.True(t, parsed[0].Amount.Equal(decimal.RequireFromString("1.5")))
	require.True(t, parsed[0].Received)

	require.Nil(t, parsed[1])

	require.NotNil(t, parsed[2])
	require.Equal(t, owner.String(), parsed[2].From)
	require.Equal(t, other.String(), parsed[2].To)
	require.True(t, parsed[2].Amount.Equal(decimal.RequireFromString("0.25")))
	require.False(t, parsed[2].Received)

	require.Nil(t, parsed[3])
	require.Nil(t, parsed[4])
	require.Nil(t, parsed[5])
}

func TestParseTransfersMalformed(t *testing.T) {
	owner := solana.NewWallet().PublicKey()

	tests := []struct {
		name   string
		mutate func(inst *solana.CompiledInstruction)
	}{
		{"index out of range", func(inst *solana.CompiledInstruction) {
			inst.Accounts = []uint16{0, 42}
		}},
		{"no accounts", func(inst *solana.CompiledInstruction) {
			inst.Accounts = nil
		}},
		{"one account", func(inst *solana.CompiledInstruction) {
			inst.Accounts = []uint16{0}
		}},
		{"no data", func(inst *solana.CompiledInstruction) {
			inst.Data = nil
		}},
		{"truncated lamports", func(inst *solana.CompiledInstruction) {
			inst.Data = []byte{2, 0, 0, 0}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := newTransferTx(t, 1, owner, solana.NewWallet().PublicKey())
			tt.mutate(&tx.Message.Instructions[0])

			var parsed []*model.Transaction
			require.NotPanics(t, func() {
				parsed = ParseTransfers(owner, []*solana.Transaction{tx})
			})
			require.Equal(t, []*model.Transaction{nil}, parsed)
		})
	}
}

func TestLoadTransactions(t *testing.T) {
	node := newFakeNode()
	acc, err := NewWatcher("Friend", testURL, solana.NewWallet().PublicKey().String())
	require.NoError(t, err)

	other := solana.NewWallet().PublicKey()
	node.txs[acc.PublicKey()] = []*solana.Transaction{
		newTransferTx(t, 1_000_000_000, other, acc.PublicKey()),
		nil,
	}

	require.NoError(t, acc.LoadTransactions(ctx, node, 10))
	require.Len(t, acc.Transactions(), 2)
	require.True(t, acc.Transactions()[0].Received)
	require.Nil(t, acc.Transactions()[1])

	require.NoError(t, acc.LoadTransactions(ctx, node, 1))
	require.Len(t, acc.Transactions(), 1)

	node.err = errNode
	require.ErrorIs(t, acc.LoadTransactions(ctx, node, 10), errNode)
}

func TestAddressQR(t *testing.T) {
	acc, err := NewWatcher("Friend", testURL, solana.NewWallet().PublicKey().String())
	require.NoError(t, err)

	qr, err := acc.AddressQR(0)
	require.NoError(t, err)
	require.NotEmpty(t, qr)
}

func TestSendSOL(t *testing.T) {
	node := newFakeNode()
	owner := solana.MustPublicKeyFromBase58(abandonAddress)
	node.balances[owner] = 1_000_000_000

	acc, err := GenerateWallet(ctx, "Main", testURL, abandonMnemonic, node)
	require.NoError(t, err)

	to := solana.NewWallet().PublicKey()
	sig, err := acc.SendSOL(ctx, node, to.String(), decimal.RequireFromString("0.5"))
	require.NoError(t, err)
	require.NotEmpty(t, sig)
	require.Len(t, node.sent, 1)

	parsed := ParseTransfers(to, node.sent)
	require.NotNil(t, parsed[0])
	require.True(t, parsed[0].Received)
	require.Equal(t, abandonAddress, parsed[0].From)
	require.True(t, parsed[0].Amount.Equal(decimal.RequireFromString("0.5")))
	require.NoError(t, node.sent[0].VerifySignatures())

	// amount + fee exceeds balance
	_, err = acc.SendSOL(ctx, node, to.String(), decimal.NewFromInt(1))
	require.Error(t, err)

	_, err = acc.SendSOL(ctx, node, "bogus", decimal.NewFromInt(1))
	require.ErrorIs(t, err, model.ErrInvalidAddress)

	_, err = acc.SendSOL(ctx, node, to.String(), decimal.Zero)
	require.Error(t, err)
	require.Len(t, node.sent, 1)
}

func TestView(t *testing.T) {
	node := newFakeNode()
	acc, err := GenerateWallet(ctx, "Main", testURL, abandonMnemonic, node)
	require.NoError(t, err)

	other := solana.NewWallet().PublicKey()
	node.txs[acc.PublicKey()] = []*solana.Transaction{newTransferTx(t, 1, other, acc.PublicKey()), nil}
	require.NoError(t, acc.LoadTransactions(ctx, node, 10))
	acc.SetPrice(decimal.NewFromInt(20))
	acc.SetBalance(decimal.NewFromInt(2))

	view := View(acc)
	require.Equal(t, "Main", view.Name)
	require.Equal(t, abandonAddress, view.Address)
	require.Equal(t, model.AccountTypeWallet, view.Type)
	require.Equal(t, abandonMnemonic, view.Mnemonic)
	require.True(t, view.FiatBalance.Equal(decimal.NewFromInt(40)))
	require.Len(t, view.Transactions, 2)
	require.Nil(t, view.Transactions[1])

	view.Transactions[0].Amount = decimal.NewFromInt(99)
	require.True(t, acc.Transactions()[0].Amount.Equal(decimal.RequireFromString("0.000000001")))

	watcher, err := NewWatcher("Friend", testURL, other.String())
	require.NoError(t, err)
	require.Empty(t, View(watcher).Mnemonic)
}
