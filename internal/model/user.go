package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are primarily used internally by the repository layer; handlers
// may define separate response types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password.
//  ReferralCode – short code other users may present at checkout to
//                 credit this user as their referrer.
//  IsActive     – whether the account is active.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           uint64    // users.id
    Email        string    // users.email
    PasswordHash string    // users.password_hash
    ReferralCode string    // users.referral_code
    IsActive     bool      // users.is_active
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// Referral links a referrer to the user they referred, keyed by the tag
// whose confirmation produced the credit. Written as part of the same
// transaction that confirms the tag.
//
// Fields:
//  ID         – primary key identifier.
//  ReferrerID – user who owns the presented referral code.
//  ReferredID – user whose tags were confirmed.
//  Tag        – first tag name confirmed in the batch.
type Referral struct {
    ID         uint64 // referrals.id
    ReferrerID uint64 // referrals.referrer_id
    ReferredID uint64 // referrals.referred_id
    Tag        string // referrals.tag
}
