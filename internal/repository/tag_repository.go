package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/jackc/pgx/v5/pgconn"

    "github.com/sendtags/checkout/internal/model"
)

// MaxPendingTags caps how many unconfirmed names a single user may hold at
// once. The cap bounds the priced batch and keeps name squatting cheap to
// walk away from.
const MaxPendingTags = 5

// TagRepo provides persistence for tag claims. Tag names are unique across
// all users (enforced by the database, not by application locking), status
// moves only from pending to confirmed, and confirmed rows are permanent
// history. All timestamp fields are stored in UTC.
type TagRepo struct {
    db *sql.DB
}

// NewTagRepo returns a new TagRepo bound to the given database.
func NewTagRepo(db *sql.DB) *TagRepo { return &TagRepo{db: db} }

// DB exposes the underlying handle for callers that need to open their own
// transactions.
func (r *TagRepo) DB() *sql.DB { return r.db }

// Create claims a pending tag for the user. It returns ErrNameTaken when the
// name is already claimed by anyone (pending claims hold the name) and
// ErrTagLimit when the user already holds MaxPendingTags pending names. The
// count check and the insert run in one transaction so concurrent creates
// cannot exceed the cap.
func (r *TagRepo) Create(ctx context.Context, userID uint64, name string) (model.Tag, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return model.Tag{}, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    var pendingCount int
    const countQ = `SELECT COUNT(*) FROM (
                        SELECT 1 FROM tags WHERE user_id = $1 AND status = 'pending' FOR UPDATE
                    ) AS held`
    if err := tx.QueryRowContext(ctx, countQ, userID).Scan(&pendingCount); err != nil {
        return model.Tag{}, err
    }
    if pendingCount >= MaxPendingTags {
        return model.Tag{}, ErrTagLimit
    }

    const insertQ = `INSERT INTO tags (name, user_id, status)
                     VALUES ($1, $2, 'pending')
                     RETURNING name, user_id, status, created_at`
    var t model.Tag
    err = tx.QueryRowContext(ctx, insertQ, name, userID).Scan(&t.Name, &t.UserID, &t.Status, &t.CreatedAt)
    if err != nil {
        var pgErr *pgconn.PgError
        if errors.As(err, &pgErr) && pgErr.Code == "23505" {
            return model.Tag{}, ErrNameTaken
        }
        return model.Tag{}, err
    }

    if err := tx.Commit(); err != nil {
        return model.Tag{}, err
    }
    committed = true
    return t, nil
}

// ListPending returns the user's pending tags in creation order. An empty
// slice is a valid, non-error outcome; it is what the checkout service sees
// after a batch has been confirmed.
func (r *TagRepo) ListPending(ctx context.Context, userID uint64) ([]model.Tag, error) {
    const q = `SELECT name, user_id, status, created_at
               FROM tags
               WHERE user_id = $1 AND status = 'pending'
               ORDER BY created_at`
    return r.list(ctx, q, userID)
}

// ListByUser returns all of the user's tags, pending and confirmed, in
// creation order.
func (r *TagRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Tag, error) {
    const q = `SELECT name, user_id, status, created_at
               FROM tags
               WHERE user_id = $1
               ORDER BY created_at`
    return r.list(ctx, q, userID)
}

func (r *TagRepo) list(ctx context.Context, query string, userID uint64) ([]model.Tag, error) {
    rows, err := r.db.QueryContext(ctx, query, userID)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    tags := make([]model.Tag, 0)
    for rows.Next() {
        var t model.Tag
        if err := rows.Scan(&t.Name, &t.UserID, &t.Status, &t.CreatedAt); err != nil {
            return nil, err
        }
        tags = append(tags, t)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return tags, nil
}

// IsAvailable reports whether a name is still claimable. Any existing claim,
// pending or confirmed, makes the name unavailable.
func (r *TagRepo) IsAvailable(ctx context.Context, name string) (bool, error) {
    const q = `SELECT 1 FROM tags WHERE name = $1 LIMIT 1`
    var one int
    err := r.db.QueryRowContext(ctx, q, name).Scan(&one)
    if err == sql.ErrNoRows {
        return true, nil
    }
    if err != nil {
        return false, err
    }
    return false, nil
}

// ConfirmAll transitions every named tag from pending to confirmed, records
// the correlation event id against each, and applies referral bookkeeping,
// as one atomic unit. If any name is not currently pending — already
// confirmed, or never created — the whole transaction rolls back with
// ErrConflict; no partial confirmation is ever visible. Confirmations for
// different users touch disjoint rows and do not serialize against each
// other; double confirmation of the same batch is rejected by the status
// guard on the UPDATE, not by application locking.
func (r *TagRepo) ConfirmAll(ctx context.Context, names []string, eventID, referralCode string) error {
    if len(names) == 0 {
        return ErrConflict
    }
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    const updateQ = `UPDATE tags
                     SET status = 'confirmed', updated_at = NOW()
                     WHERE name = ANY($1) AND status = 'pending'`
    res, err := tx.ExecContext(ctx, updateQ, names)
    if err != nil {
        return err
    }
    affected, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if affected != int64(len(names)) {
        return ErrConflict
    }

    const receiptQ = `INSERT INTO tag_receipts (tag_name, event_id)
                      SELECT unnest($1::text[]), $2`
    if _, err := tx.ExecContext(ctx, receiptQ, names, eventID); err != nil {
        return err
    }

    if referralCode != "" {
        if err := r.recordReferralTx(ctx, tx, names[0], referralCode); err != nil {
            return err
        }
    }

    if err := tx.Commit(); err != nil {
        return err
    }
    committed = true
    return nil
}

// recordReferralTx credits the owner of referralCode with the referral of
// the confirmed batch's owner, keyed by the first confirmed name. An unknown
// code and self-referral are silently ignored, matching the store-side
// behavior the checkout flow relies on; a duplicate referral for the same
// pair is ignored via the unique constraint.
func (r *TagRepo) recordReferralTx(ctx context.Context, tx *sql.Tx, firstName, referralCode string) error {
    var referrerID uint64
    const referrerQ = `SELECT id FROM users WHERE referral_code = $1 LIMIT 1`
    err := tx.QueryRowContext(ctx, referrerQ, referralCode).Scan(&referrerID)
    if err == sql.ErrNoRows {
        return nil
    }
    if err != nil {
        return err
    }

    var referredID uint64
    const ownerQ = `SELECT user_id FROM tags WHERE name = $1 LIMIT 1`
    if err := tx.QueryRowContext(ctx, ownerQ, firstName).Scan(&referredID); err != nil {
        return err
    }
    if referrerID == referredID {
        return nil
    }

    const insertQ = `INSERT INTO referrals (referrer_id, referred_id, tag)
                     VALUES ($1, $2, $3)
                     ON CONFLICT DO NOTHING`
    _, err = tx.ExecContext(ctx, insertQ, referrerID, referredID, firstName)
    return err
}
