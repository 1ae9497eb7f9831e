package repository

import (
    "context"
    "database/sql"
    "math/big"

    "github.com/ethereum/go-ethereum/common"

    "github.com/sendtags/checkout/internal/model"
)

// ReceiptRepo reads the `sendtag_revenue_receipts` table, which is written
// by the external indexing pipeline and is read-only to this service. Rows
// lag chain settlement by however far behind the indexer is running, so a
// missing row is not proof a transaction does not exist.
type ReceiptRepo struct {
    db *sql.DB
}

// NewReceiptRepo returns a new ReceiptRepo bound to the given database.
func NewReceiptRepo(db *sql.DB) *ReceiptRepo { return &ReceiptRepo{db: db} }

// ByTxHash returns the indexed revenue transfer for the given transaction
// hash, or ErrNotIndexed when the pipeline has not surfaced it. Sender and
// amount are left nil when the indexer wrote the row without decoding the
// event fields; deciding whether that is acceptable is the caller's concern.
func (r *ReceiptRepo) ByTxHash(ctx context.Context, txHash common.Hash) (*model.RevenueReceipt, error) {
    const q = `SELECT chain_id, ig_name, src_name, block_num, tx_idx, log_idx, sender, v
               FROM sendtag_revenue_receipts
               WHERE tx_hash = $1
               LIMIT 1`
    var (
        receipt model.RevenueReceipt
        sender  []byte
        amount  sql.NullString
    )
    err := r.db.QueryRowContext(ctx, q, txHash.Bytes()).Scan(
        &receipt.ChainID, &receipt.IgName, &receipt.SrcName,
        &receipt.BlockNum, &receipt.TxIdx, &receipt.LogIdx,
        &sender, &amount,
    )
    if err == sql.ErrNoRows {
        return nil, ErrNotIndexed
    }
    if err != nil {
        return nil, err
    }

    receipt.TxHash = txHash
    if len(sender) == common.AddressLength {
        addr := common.BytesToAddress(sender)
        receipt.Sender = &addr
    }
    if amount.Valid {
        if v, ok := new(big.Int).SetString(amount.String, 10); ok {
            receipt.Amount = v
        }
    }
    return &receipt, nil
}
