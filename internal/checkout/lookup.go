package checkout

import (
    "context"
    "errors"
    "log"

    "github.com/ethereum/go-ethereum/common"

    "github.com/sendtags/checkout/internal/model"
    "github.com/sendtags/checkout/internal/repository"
)

// ReceiptSource is the read boundary onto the externally indexed transfer
// feed. Implementations return repository.ErrNotIndexed when no row exists
// for the hash yet; that signal, and only that signal, is retried.
type ReceiptSource interface {
    ByTxHash(ctx context.Context, txHash common.Hash) (*model.RevenueReceipt, error)
}

// Lookup resolves a transaction hash to a settled revenue receipt, absorbing
// the indexing lag between chain settlement and the feed becoming readable.
// The retry budget lives entirely here; callers see only the final outcome.
type Lookup struct {
    src    ReceiptSource
    policy RetryPolicy
}

// NewLookup builds a Lookup over src with the given delay/attempt budget.
// The policy's ShouldRetry is fixed to the not-indexed-yet signal: retrying
// arbitrary errors would dress up a genuinely invalid transaction as a slow
// one, and failing fast on ErrNotIndexed would reject payments that are
// about to index.
func NewLookup(src ReceiptSource, policy RetryPolicy) *Lookup {
    policy.ShouldRetry = func(err error) bool {
        return errors.Is(err, repository.ErrNotIndexed)
    }
    return &Lookup{src: src, policy: policy}
}

// Resolve looks up the settled receipt for txHash, retrying while the index
// has not caught up. It fails with KindNotAPayment once the budget is
// exhausted and the row never appeared, and with KindTransient for
// infrastructure-level errors, which the caller may retry independently.
func (l *Lookup) Resolve(ctx context.Context, txHash common.Hash) (*model.RevenueReceipt, error) {
    var receipt *model.RevenueReceipt
    err := l.policy.Do(ctx, func(ctx context.Context) error {
        r, err := l.src.ByTxHash(ctx, txHash)
        if err != nil {
            return err
        }
        receipt = r
        return nil
    })
    if err != nil {
        if errors.Is(err, repository.ErrNotIndexed) {
            log.Printf("checkout: transaction is not a payment for tags tx_hash=%s", txHash.Hex())
            return nil, newError(KindNotAPayment, "transaction is not a payment for tags")
        }
        log.Printf("checkout: receipt lookup failed tx_hash=%s: %v", txHash.Hex(), err)
        return nil, wrapError(KindTransient, "failed to look up transaction", err)
    }
    return receipt, nil
}
