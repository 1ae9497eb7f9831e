package checkout

import (
    "context"
    "errors"
    "log"
    "math/big"
    "regexp"
    "strings"

    "github.com/ethereum/go-ethereum/common"

    "github.com/sendtags/checkout/internal/model"
    "github.com/sendtags/checkout/internal/repository"
)

// txHashPattern matches a 32-byte transaction hash in hex notation.
var txHashPattern = regexp.MustCompile(`^0x[0-9a-f]{64}$`)

// TagStore is the write boundary onto the reservation store. ConfirmAll must
// be all-or-nothing: either every named tag moves from pending to confirmed
// in one transaction, or repository.ErrConflict is returned and nothing
// changes.
type TagStore interface {
    ListPending(ctx context.Context, userID uint64) ([]model.Tag, error)
    ConfirmAll(ctx context.Context, names []string, eventID, referralCode string) error
}

// ReceiptResolver resolves a transaction hash to a settled revenue receipt.
// Retry against indexing lag is the resolver's concern, not the service's.
type ReceiptResolver interface {
    Resolve(ctx context.Context, txHash common.Hash) (*model.RevenueReceipt, error)
}

// PriceFunc prices a pending batch. It must be pure: the service prices the
// batch once and trusts the result to be reproducible.
type PriceFunc func([]model.Tag) *big.Int

// Service orchestrates payment confirmation. Each call runs the steps in a
// fixed order — load pending, price, validate hash, resolve receipt, check
// sender and amount, confirm — and nothing is written until the final step,
// so an aborted call leaves no partial state.
type Service struct {
    store  TagStore
    lookup ReceiptResolver
    price  PriceFunc
}

// NewService wires the orchestrator. price defaults to BatchPriceWei.
func NewService(store TagStore, lookup ReceiptResolver, price PriceFunc) *Service {
    if store == nil || lookup == nil {
        panic("nil dependency passed to checkout.NewService")
    }
    if price == nil {
        price = BatchPriceWei
    }
    return &Service{store: store, lookup: lookup, price: price}
}

// Result reports a successful confirmation.
type Result struct {
    ConfirmedNames []string `json:"confirmed_names"`
    EventID        string   `json:"event_id"`
    AmountWei      string   `json:"amount_wei"`
    TxHash         string   `json:"tx_hash"`
}

// ConfirmPayment verifies that txHash settles the exact price of the
// caller's pending tags and confirms them atomically. Every failure is a
// *Error whose Kind is one of the closed set in errors.go. Calling again
// after a successful confirmation fails with KindNoPendingTags, which makes
// duplicate client submissions harmless.
func (s *Service) ConfirmPayment(ctx context.Context, userID uint64, txHash, referralCode string) (*Result, error) {
    pending, err := s.store.ListPending(ctx, userID)
    if err != nil {
        return nil, wrapError(KindTransient, "failed to load pending tags", err)
    }
    if len(pending) == 0 {
        return nil, newError(KindNoPendingTags, "no tags to confirm")
    }

    required := s.price(pending)

    normalized := strings.ToLower(strings.TrimSpace(txHash))
    if !txHashPattern.MatchString(normalized) {
        return nil, newError(KindInvalidInput, "transaction hash required")
    }
    hash := common.HexToHash(normalized)

    receipt, err := s.lookup.Resolve(ctx, hash)
    if err != nil {
        return nil, err
    }

    if receipt.Sender == nil || receipt.Amount == nil {
        log.Printf("checkout: no sender or settled amount found tx_hash=%s", hash.Hex())
        return nil, newError(KindInvalidPayment, "no sender or settled amount found, please try again")
    }
    if receipt.Amount.Cmp(required) != 0 {
        log.Printf("checkout: incorrect amount tx_hash=%s got=%s want=%s",
            hash.Hex(), receipt.Amount, required)
        return nil, newError(KindAmountMismatch, "transaction is not a payment for tags or incorrect amount")
    }

    names := make([]string, len(pending))
    for i, t := range pending {
        names[i] = t.Name
    }

    if err := s.store.ConfirmAll(ctx, names, receipt.EventID(), referralCode); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return nil, wrapError(KindConflict, "tags were already confirmed", err)
        }
        return nil, wrapError(KindTransient, "failed to confirm tags", err)
    }

    log.Printf("checkout: confirmed tags user_id=%d names=%v event_id=%s", userID, names, receipt.EventID())
    return &Result{
        ConfirmedNames: names,
        EventID:        receipt.EventID(),
        AmountWei:      required.String(),
        TxHash:         hash.Hex(),
    }, nil
}
