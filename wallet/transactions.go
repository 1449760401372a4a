package wallet

import (
	"context"
	"fmt"

	"github.com/AlexZinkM/wallet-state/internal/common"
	"github.com/AlexZinkM/wallet-state/internal/model"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/system"
)

// LoadTransactions fetches the most recent transactions and replaces the list
func (b *base) LoadTransactions(ctx context.Context, node Node, limit int) error {
	txs, err := node.GetTransactions(ctx, b.pubkey, limit)
	if err != nil {
		return fmt.Errorf("failed to load transactions of %q: %w", b.name, err)
	}

	b.transactions = ParseTransfers(b.pubkey, txs)
	return nil
}

// ParseTransfers maps every transaction to its transfer view. Only messages
// with exactly one system-program Transfer instruction are decoded; every
// other shape becomes a nil entry, so len(result) == len(txs).
func ParseTransfers(owner solana.PublicKey, txs []*solana.Transaction) []*model.Transaction {
	out := make([]*model.Transaction, len(txs))
	for i, tx := range txs {
		out[i] = parseTransfer(owner, tx)
	}
	return out
}

func parseTransfer(owner solana.PublicKey, tx *solana.Transaction) *model.Transaction {
	if tx == nil || len(tx.Message.Instructions) != 1 {
		return nil
	}

	inst := tx.Message.Instructions[0]
	// Transfer needs funding and recipient accounts
	if len(inst.Accounts) < 2 {
		return nil
	}

	programID, err := tx.Message.Program(inst.ProgramIDIndex)
	if err != nil || !programID.Equals(solana.SystemProgramID) {
		return nil
	}

	metas, err := tx.Message.AccountMetaList()
	if err != nil {
		return nil
	}
	accounts := make([]*solana.AccountMeta, len(inst.Accounts))
	for i, index := range inst.Accounts {
		if int(index) >= len(metas) {
			return nil
		}
		accounts[i] = metas[index]
	}

	decoded, err := system.DecodeInstruction(accounts, inst.Data)
	if err != nil {
		return nil
	}

	transfer, ok := decoded.Impl.(*system.Transfer)
	if !ok || transfer.Lamports == nil {
		return nil
	}

	from, to := transfer.GetFundingAccount(), transfer.GetRecipientAccount()
	if from == nil || to == nil {
		return nil
	}

	var signature string
	if len(tx.Signatures) > 0 {
		signature = tx.Signatures[0].String()
	}

	return &model.Transaction{
		Signature: signature,
		From:      from.PublicKey.String(),
		To:        to.PublicKey.String(),
		Amount:    common.LamportsToSOL(*transfer.Lamports),
		Received:  to.PublicKey.Equals(owner),
	}
}
