// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers and the checkout service to distinguish between different
// failure scenarios without depending on database error codes.
package repository

import "errors"

// ErrConflict is returned when a state transition cannot be performed
// because some row is no longer in the expected state, such as confirming
// a tag that is already confirmed. The checkout service translates
// this into its conflict failure kind and handlers into HTTP 409.
var ErrConflict = errors.New("conflict")

// ErrNotIndexed is returned by the receipt repository when no indexed row
// exists for a transaction hash. Because the feed is written by an
// eventually consistent pipeline, this may mean "not yet" rather than
// "never"; it is the only error the checkout lookup retries.
var ErrNotIndexed = errors.New("transaction not indexed")

// ErrNameTaken is returned when a tag name is already claimed, whether
// pending or confirmed. Handlers should translate this into HTTP 409.
var ErrNameTaken = errors.New("tag name already taken")

// ErrTagLimit is returned when a user attempts to hold more pending tags
// than allowed at once.
var ErrTagLimit = errors.New("pending tag limit reached")
