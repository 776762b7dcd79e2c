package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"twin-llm/internal/domain"
)

type ContributionCodeRepository interface {
	Create(ctx context.Context, code domain.ContributionCode) error
	GetByCode(ctx context.Context, code string) (domain.ContributionCode, error)
}

type PgContributionCodeRepository struct {
	pool *pgxpool.Pool
}

func NewPgContributionCodeRepository(pool *pgxpool.Pool) *PgContributionCodeRepository {
	return &PgContributionCodeRepository{pool: pool}
}

func (r *PgContributionCodeRepository) Create(ctx context.Context, code domain.ContributionCode) error {
	const query = `
		INSERT INTO contribution_codes (code, avatar_id, created_by, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query,
		code.Code,
		code.AvatarID,
		code.CreatedBy,
		code.CreatedAt,
	)
	return err
}

func (r *PgContributionCodeRepository) GetByCode(ctx context.Context, code string) (domain.ContributionCode, error) {
	const query = `
		SELECT code, avatar_id, created_by, created_at
		FROM contribution_codes
		WHERE code = $1
	`
	var c domain.ContributionCode
	err := r.pool.QueryRow(ctx, query, code).Scan(
		&c.Code,
		&c.AvatarID,
		&c.CreatedBy,
		&c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ContributionCode{}, err
	}
	return c, err
}
