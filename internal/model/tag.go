package model

import "time"

// TagStatus enumerates the lifecycle states of a tag claim. A tag is
// created as pending and moves to confirmed exactly once, when the
// checkout service verifies the on-chain payment. There is no reverse
// transition and confirmed rows are never deleted.
type TagStatus string

const (
    TagStatusPending   TagStatus = "pending"
    TagStatusConfirmed TagStatus = "confirmed"
)

// Tag records a user's claim on a unique name, pending payment.
// It mirrors the `tags` table.
//
// Fields:
//  Name      – the claimed name, unique across all users (case-insensitive).
//  UserID    – user who requested the name.
//  Status    – pending or confirmed.
//  CreatedAt – when the claim was made; pending sets are priced and
//              confirmed in this order.
type Tag struct {
    Name      string    // tags.name
    UserID    uint64    // tags.user_id
    Status    TagStatus // tags.status
    CreatedAt time.Time // tags.created_at
}
