package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/solarvest/auth-service/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, req *domain.SignupRequest, passwordHash string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByPhone(ctx context.Context, phone string) (*domain.User, error)

	// SetEmailOTP replaces the pending email OTP; nil arguments clear it.
	SetEmailOTP(ctx context.Context, userID int64, otp *string, expiresAt *time.Time) error
	// SetPhoneOTP replaces the pending phone OTP and the delegated
	// verification-session id; nil arguments clear them.
	SetPhoneOTP(ctx context.Context, userID int64, otp *string, expiresAt *time.Time, verificationID *string) error
	MarkEmailVerified(ctx context.Context, userID int64) error
	MarkPhoneVerified(ctx context.Context, userID int64) error

	SetResetToken(ctx context.Context, userID int64, tokenHash *string, expiresAt *time.Time) error
	// FindByResetTokenHash matches only unexpired reset tokens.
	FindByResetTokenHash(ctx context.Context, tokenHash string) (*domain.User, error)
	// UpdatePassword sets a new password hash and clears any pending reset
	// material.
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

type userRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

const userCols = `id, email, phone, password_hash, first_name, last_name, role, is_active,
	is_email_verified, is_phone_verified,
	email_otp, email_otp_expires_at,
	phone_otp, phone_otp_expires_at, phone_verification_id,
	reset_token_hash, reset_token_expires_at,
	created_at, updated_at`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Phone, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Role, &u.IsActive,
		&u.IsEmailVerified, &u.IsPhoneVerified,
		&u.EmailOTP, &u.EmailOTPExpiresAt,
		&u.PhoneOTP, &u.PhoneOTPExpiresAt, &u.PhoneVerificationID,
		&u.ResetTokenHash, &u.ResetTokenExpiresAt,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Create(ctx context.Context, req *domain.SignupRequest, passwordHash string) (*domain.User, error) {
	const q = `
		INSERT INTO users (email, phone, password_hash, first_name, last_name, role)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)
		RETURNING ` + userCols

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, q, req.Email, req.Phone, passwordHash, req.FirstName, req.LastName, domain.RoleUser))
	if err != nil {
		// Concurrent signups can slip past the pre-check; surface the
		// unique violation as a conflict.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, domain.E(domain.KindConflict, "email or phone already registered")
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE id = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, q, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE lower(email) = lower($1)`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, q, email))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) FindByPhone(ctx context.Context, phone string) (*domain.User, error) {
	const q = `SELECT ` + userCols + ` FROM users WHERE phone = $1`
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, q, phone))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) SetEmailOTP(ctx context.Context, userID int64, otp *string, expiresAt *time.Time) error {
	const q = `
		UPDATE users
		SET email_otp = $2, email_otp_expires_at = $3, updated_at = now()
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, userID, otp, expiresAt)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) SetPhoneOTP(ctx context.Context, userID int64, otp *string, expiresAt *time.Time, verificationID *string) error {
	const q = `
		UPDATE users
		SET phone_otp = $2, phone_otp_expires_at = $3, phone_verification_id = $4, updated_at = now()
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, userID, otp, expiresAt, verificationID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) MarkEmailVerified(ctx context.Context, userID int64) error {
	const q = `
		UPDATE users
		SET is_email_verified = true, email_otp = NULL, email_otp_expires_at = NULL, updated_at = now()
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) MarkPhoneVerified(ctx context.Context, userID int64) error {
	const q = `
		UPDATE users
		SET is_phone_verified = true, phone_otp = NULL, phone_otp_expires_at = NULL,
			phone_verification_id = NULL, updated_at = now()
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, userID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) SetResetToken(ctx context.Context, userID int64, tokenHash *string, expiresAt *time.Time) error {
	const q = `
		UPDATE users
		SET reset_token_hash = $2, reset_token_expires_at = $3, updated_at = now()
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, userID, tokenHash, expiresAt)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) FindByResetTokenHash(ctx context.Context, tokenHash string) (*domain.User, error) {
	const q = `
		SELECT ` + userCols + `
		FROM users
		WHERE reset_token_hash = $1 AND reset_token_expires_at > now()`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := scanUser(r.pool.QueryRow(ctx, q, tokenHash))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	return u, err
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	const q = `
		UPDATE users
		SET password_hash = $2, reset_token_hash = NULL, reset_token_expires_at = NULL, updated_at = now()
		WHERE id = $1`

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	result, err := r.pool.Exec(ctx, q, userID, passwordHash)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
