// Package checkout implements confirmation of tag payments: it reconciles a
// user-submitted transaction hash against the indexed revenue feed, verifies
// the settled amount against the user's priced pending tags, and confirms
// the batch atomically.
package checkout

import "fmt"

// Kind is the closed set of ways a confirmation can fail. Handlers switch on
// the kind to pick an HTTP status; no other failure classification exists.
type Kind string

const (
    // KindInvalidInput means the submitted transaction hash is missing or
    // not syntactically a transaction hash. User-correctable, no retry.
    KindInvalidInput Kind = "invalid_input"
    // KindNoPendingTags means the caller has nothing to confirm. This is
    // also the outcome of re-submitting an already confirmed batch.
    KindNoPendingTags Kind = "no_pending_tags"
    // KindNotAPayment means the hash never resolved to an indexed revenue
    // transfer within the retry budget. Terminal.
    KindNotAPayment Kind = "not_a_payment"
    // KindInvalidPayment means the resolved transfer is missing its sender
    // or settled amount. Terminal.
    KindInvalidPayment Kind = "invalid_payment"
    // KindAmountMismatch means the settled amount does not equal the priced
    // batch exactly. Terminal.
    KindAmountMismatch Kind = "amount_mismatch"
    // KindConflict means the store rejected the confirmation because some
    // tag in the batch was no longer pending: a race or a duplicate
    // submission lost. Terminal.
    KindConflict Kind = "conflict"
    // KindTransient means an infrastructure failure (database, index
    // unavailable). The caller may retry the whole confirmation.
    KindTransient Kind = "transient"
)

// Error carries a stable failure kind together with a human-readable
// message. The wrapped cause, when present, is preserved for logs only and
// never shown to the user.
type Error struct {
    Kind    Kind
    Message string
    cause   error
}

func (e *Error) Error() string {
    if e.cause != nil {
        return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
    }
    return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind Kind, message string) *Error {
    return &Error{Kind: kind, Message: message}
}

func wrapError(kind Kind, message string, cause error) *Error {
    return &Error{Kind: kind, Message: message, cause: cause}
}
