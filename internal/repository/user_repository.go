package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sendtags/checkout/internal/model"
	"github.com/sendtags/checkout/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

var ErrEmailExists = errors.New("email already exists")

// Create inserts a user and returns its ID. Every user gets a referral code
// at creation so it can be shared before any tag is confirmed.
func (r *UserRepo) Create(ctx context.Context, email, password string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	code, err := utils.NewReferralCode()
	if err != nil {
		return 0, err
	}
	var id uint64
	err = r.DB.QueryRowContext(ctx,
		"INSERT INTO users (email, password_hash, referral_code) VALUES ($1,$2,$3) RETURNING id",
		email, hash, code).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	return id, nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,referral_code,is_active,created_at,updated_at FROM users WHERE email=$1 LIMIT 1",
		email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.ReferralCode, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,password_hash,referral_code,is_active,created_at,updated_at FROM users WHERE id=$1 LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.ReferralCode, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}
