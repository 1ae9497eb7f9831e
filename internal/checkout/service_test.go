package checkout

import (
    "context"
    "errors"
    "math/big"
    "testing"
    "time"

    "github.com/ethereum/go-ethereum/common"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/sendtags/checkout/internal/model"
    "github.com/sendtags/checkout/internal/repository"
)

const (
    goodHash = "0x" + "ab" + "cd" + "00112233445566778899aabbccddeeff00112233445566778899aabbccdd"
)

type fakeStore struct {
    pending      []model.Tag
    listErr      error
    confirmErr   error
    confirmCalls int
    gotNames     []string
    gotEventID   string
    gotReferral  string
}

func (f *fakeStore) ListPending(ctx context.Context, userID uint64) ([]model.Tag, error) {
    return f.pending, f.listErr
}

func (f *fakeStore) ConfirmAll(ctx context.Context, names []string, eventID, referralCode string) error {
    f.confirmCalls++
    f.gotNames = names
    f.gotEventID = eventID
    f.gotReferral = referralCode
    return f.confirmErr
}

type fakeResolver struct {
    receipt *model.RevenueReceipt
    err     error
    calls   int
}

func (f *fakeResolver) Resolve(ctx context.Context, txHash common.Hash) (*model.RevenueReceipt, error) {
    f.calls++
    if f.err != nil {
        return nil, f.err
    }
    return f.receipt, nil
}

func testReceipt(amount *big.Int) *model.RevenueReceipt {
    sender := common.HexToAddress("0x000000000000000000000000000000000000beef")
    return &model.RevenueReceipt{
        IgName:   "send_account_transfers",
        SrcName:  "base_logs",
        BlockNum: 12345,
        TxIdx:    7,
        LogIdx:   2,
        TxHash:   common.HexToHash(goodHash),
        Sender:   &sender,
        Amount:   amount,
    }
}

func pendingTags(names ...string) []model.Tag {
    tags := make([]model.Tag, len(names))
    for i, n := range names {
        tags[i] = model.Tag{Name: n, Status: model.TagStatusPending}
    }
    return tags
}

func kindOf(t *testing.T, err error) Kind {
    t.Helper()
    var ce *Error
    require.ErrorAs(t, err, &ce)
    return ce.Kind
}

func TestConfirmPaymentSuccess(t *testing.T) {
    store := &fakeStore{pending: pendingTags("alice", "bob")}
    price := BatchPriceWei(store.pending)
    resolver := &fakeResolver{receipt: testReceipt(price)}
    svc := NewService(store, resolver, nil)

    res, err := svc.ConfirmPayment(context.Background(), 1, goodHash, "ref123")
    require.NoError(t, err)
    assert.Equal(t, []string{"alice", "bob"}, res.ConfirmedNames)
    assert.Equal(t, "send_account_transfers/base_logs/12345/7/2", res.EventID)
    assert.Equal(t, price.String(), res.AmountWei)
    assert.Equal(t, 1, store.confirmCalls)
    assert.Equal(t, "send_account_transfers/base_logs/12345/7/2", store.gotEventID)
    assert.Equal(t, "ref123", store.gotReferral)
}

func TestConfirmPaymentUppercaseHashAccepted(t *testing.T) {
    store := &fakeStore{pending: pendingTags("alice")}
    resolver := &fakeResolver{receipt: testReceipt(BatchPriceWei(store.pending))}
    svc := NewService(store, resolver, nil)

    upper := "0x" + "ABCD00112233445566778899AABBCCDDEEFF00112233445566778899AABBCCDD"
    _, err := svc.ConfirmPayment(context.Background(), 1, upper, "")
    require.NoError(t, err)
}

func TestConfirmPaymentNoPendingTags(t *testing.T) {
    svc := NewService(&fakeStore{}, &fakeResolver{}, nil)
    _, err := svc.ConfirmPayment(context.Background(), 1, goodHash, "")
    assert.Equal(t, KindNoPendingTags, kindOf(t, err))
}

func TestConfirmPaymentListError(t *testing.T) {
    store := &fakeStore{listErr: errors.New("db down")}
    svc := NewService(store, &fakeResolver{}, nil)
    _, err := svc.ConfirmPayment(context.Background(), 1, goodHash, "")
    assert.Equal(t, KindTransient, kindOf(t, err))
}

func TestConfirmPaymentInvalidHash(t *testing.T) {
    store := &fakeStore{pending: pendingTags("alice")}
    resolver := &fakeResolver{}
    svc := NewService(store, resolver, nil)

    for _, bad := range []string{"", "0x123", "abcdef", "0x" + "zz" + "cd00112233445566778899aabbccddeeff00112233445566778899aabbcc"} {
        _, err := svc.ConfirmPayment(context.Background(), 1, bad, "")
        assert.Equal(t, KindInvalidInput, kindOf(t, err), "hash %q", bad)
    }
    // The resolver must never be reached for malformed input.
    assert.Zero(t, resolver.calls)
}

func TestConfirmPaymentResolverFailurePassesThrough(t *testing.T) {
    store := &fakeStore{pending: pendingTags("alice")}
    resolver := &fakeResolver{err: newError(KindNotAPayment, "transaction is not a payment for tags")}
    svc := NewService(store, resolver, nil)

    _, err := svc.ConfirmPayment(context.Background(), 1, goodHash, "")
    assert.Equal(t, KindNotAPayment, kindOf(t, err))
    assert.Zero(t, store.confirmCalls)
}

func TestConfirmPaymentMissingSender(t *testing.T) {
    store := &fakeStore{pending: pendingTags("alice")}
    receipt := testReceipt(BatchPriceWei(store.pending))
    receipt.Sender = nil
    svc := NewService(store, &fakeResolver{receipt: receipt}, nil)

    _, err := svc.ConfirmPayment(context.Background(), 1, goodHash, "")
    assert.Equal(t, KindInvalidPayment, kindOf(t, err))
}

func TestConfirmPaymentMissingAmount(t *testing.T) {
    store := &fakeStore{pending: pendingTags("alice")}
    receipt := testReceipt(nil)
    svc := NewService(store, &fakeResolver{receipt: receipt}, nil)

    _, err := svc.ConfirmPayment(context.Background(), 1, goodHash, "")
    assert.Equal(t, KindInvalidPayment, kindOf(t, err))
}

func TestConfirmPaymentAmountMismatch(t *testing.T) {
    store := &fakeStore{pending: pendingTags("alice", "bob")}
    price := BatchPriceWei(store.pending)

    for _, delta := range []int64{-1, 1} {
        off := new(big.Int).Add(price, big.NewInt(delta))
        svc := NewService(store, &fakeResolver{receipt: testReceipt(off)}, nil)
        _, err := svc.ConfirmPayment(context.Background(), 1, goodHash, "")
        assert.Equal(t, KindAmountMismatch, kindOf(t, err), "delta %d", delta)
        assert.Zero(t, store.confirmCalls)
    }
}

func TestConfirmPaymentStoreConflict(t *testing.T) {
    store := &fakeStore{
        pending:    pendingTags("alice"),
        confirmErr: repository.ErrConflict,
    }
    svc := NewService(store, &fakeResolver{receipt: testReceipt(BatchPriceWei(store.pending))}, nil)

    _, err := svc.ConfirmPayment(context.Background(), 1, goodHash, "")
    assert.Equal(t, KindConflict, kindOf(t, err))
}

func TestConfirmPaymentStoreFailureIsTransient(t *testing.T) {
    store := &fakeStore{
        pending:    pendingTags("alice"),
        confirmErr: errors.New("db down"),
    }
    svc := NewService(store, &fakeResolver{receipt: testReceipt(BatchPriceWei(store.pending))}, nil)

    _, err := svc.ConfirmPayment(context.Background(), 1, goodHash, "")
    assert.Equal(t, KindTransient, kindOf(t, err))
}

// Full path through the real lookup: the indexer surfaces the row on the
// third attempt, inside the retry budget, and the batch confirms.
func TestConfirmPaymentIndexerCatchesUp(t *testing.T) {
    store := &fakeStore{pending: pendingTags("alice", "bob")}
    price := BatchPriceWei(store.pending)
    src := &scriptedSource{
        errs:    []error{repository.ErrNotIndexed, repository.ErrNotIndexed, nil},
        receipt: testReceipt(price),
    }
    lookup := NewLookup(src, RetryPolicy{Delay: time.Millisecond, MaxAttempts: 10})
    svc := NewService(store, lookup, nil)

    res, err := svc.ConfirmPayment(context.Background(), 1, goodHash, "")
    require.NoError(t, err)
    assert.Equal(t, []string{"alice", "bob"}, res.ConfirmedNames)
    assert.Equal(t, 3, src.calls)
    assert.Equal(t, 1, store.confirmCalls)
}

// A second submission after a successful confirmation finds no pending tags
// and fails cleanly, so duplicate client submissions are harmless.
func TestConfirmPaymentIdempotentAfterSuccess(t *testing.T) {
    store := &fakeStore{pending: pendingTags("alice")}
    resolver := &fakeResolver{receipt: testReceipt(BatchPriceWei(store.pending))}
    svc := NewService(store, resolver, nil)

    _, err := svc.ConfirmPayment(context.Background(), 1, goodHash, "")
    require.NoError(t, err)

    store.pending = nil
    _, err = svc.ConfirmPayment(context.Background(), 1, goodHash, "")
    assert.Equal(t, KindNoPendingTags, kindOf(t, err))
    assert.Equal(t, 1, store.confirmCalls)
}
