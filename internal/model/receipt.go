package model

import (
    "fmt"
    "math/big"

    "github.com/ethereum/go-ethereum/common"
)

// RevenueReceipt is a read-only projection of a settled on-chain transfer to
// the revenue address, as written by the external indexing pipeline into the
// `sendtag_revenue_receipts` table. Rows appear asynchronously after chain
// settlement, some time behind the chain head, and are immutable once
// visible. Sender and Amount are pointers because the pipeline may surface a
// row before both event fields are decoded; a receipt missing either is not
// an acceptable payment.
type RevenueReceipt struct {
    ChainID  uint64
    IgName   string // integration name assigned by the indexer
    SrcName  string // source chain name assigned by the indexer
    BlockNum uint64
    TxIdx    uint32
    LogIdx   uint32
    TxHash   common.Hash
    Sender   *common.Address
    Amount   *big.Int // settled value in wei
}

// EventID returns the correlation identifier recorded against confirmed tags.
// It is derived from the indexer's block coordinates, which uniquely identify
// the log that produced this receipt.
func (r *RevenueReceipt) EventID() string {
    return fmt.Sprintf("%s/%s/%d/%d/%d", r.IgName, r.SrcName, r.BlockNum, r.TxIdx, r.LogIdx)
}
