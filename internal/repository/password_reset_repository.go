package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PasswordResetToken is a single-use token bound to a user or staff account.
type PasswordResetToken struct {
	ID          string
	SubjectType string
	SubjectID   string
	Token       string
	ExpiresAt   time.Time
	UsedAt      *time.Time
}

// PasswordResetRepository stores password reset tokens.
type PasswordResetRepository interface {
	Create(ctx context.Context, reset *PasswordResetToken) error
	GetByToken(ctx context.Context, token string) (*PasswordResetToken, error)
	MarkUsed(ctx context.Context, id string) error
}

type passwordResetRepository struct {
	pool *pgxpool.Pool
}

// NewPasswordResetRepository builds the repository.
func NewPasswordResetRepository(pool *pgxpool.Pool) PasswordResetRepository {
	return &passwordResetRepository{pool: pool}
}

func (r *passwordResetRepository) Create(ctx context.Context, reset *PasswordResetToken) error {
	const query = `
        INSERT INTO password_resets (subject_type, subject_id, token, expires_at)
        VALUES ($1,$2,$3,$4)
        RETURNING id`
	return r.pool.QueryRow(ctx, query,
		reset.SubjectType,
		reset.SubjectID,
		reset.Token,
		reset.ExpiresAt,
	).Scan(&reset.ID)
}

func (r *passwordResetRepository) GetByToken(ctx context.Context, token string) (*PasswordResetToken, error) {
	const query = `
        SELECT id, subject_type, subject_id, token, expires_at, used_at
        FROM password_resets WHERE token=$1`
	var reset PasswordResetToken
	if err := r.pool.QueryRow(ctx, query, token).Scan(
		&reset.ID,
		&reset.SubjectType,
		&reset.SubjectID,
		&reset.Token,
		&reset.ExpiresAt,
		&reset.UsedAt,
	); err != nil {
		return nil, err
	}
	return &reset, nil
}

func (r *passwordResetRepository) MarkUsed(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE password_resets SET used_at=NOW() WHERE id=$1`, id)
	return err
}
