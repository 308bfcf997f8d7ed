package pgsql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
)

type PgxAPITokenRepository struct {
	BaseRepository
}

// newPgxAPITokenRepository creates a new instance of PgxAPITokenRepository
func newPgxAPITokenRepository(db *pgxpool.Pool) *PgxAPITokenRepository {
	return &PgxAPITokenRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.APITokenRepository = (*PgxAPITokenRepository)(nil)

const (
	apiTokensTable = "api_tokens"

	selectAPITokenFields = `
		id, user_id, name, token_hash,
		last_used_at, expires_at, created_at, updated_at
	`

	insertAPITokenQuery = `
		INSERT INTO ` + apiTokensTable + ` (
			id, user_id, name, token_hash, expires_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	findAPITokenByIDQuery = `
		SELECT ` + selectAPITokenFields + `
		FROM ` + apiTokensTable + `
		WHERE id = $1 AND deleted_at IS NULL
	`

	findAPITokenByUserIDQuery = `
		SELECT ` + selectAPITokenFields + `
		FROM ` + apiTokensTable + `
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC
	`

	touchAPITokenQuery = `
		UPDATE ` + apiTokensTable + `
		SET last_used_at = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`

	deleteAPITokenQuery = `
		UPDATE ` + apiTokensTable + `
		SET deleted_at = $2, updated_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`

	deleteAPITokensByUserIDQuery = `
		UPDATE ` + apiTokensTable + `
		SET deleted_at = $2, updated_at = $2
		WHERE user_id = $1 AND deleted_at IS NULL
	`
)

func scanAPIToken(row pgx.Row) (*domain.APIToken, error) {
	var t domain.APIToken
	if err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Name,
		&t.TokenHash,
		&t.LastUsedAt,
		&t.ExpiresAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create persists a new API token
func (r *PgxAPITokenRepository) Create(ctx context.Context, token domain.APIToken) error {
	_, err := r.db(ctx).Exec(ctx, insertAPITokenQuery,
		token.ID,
		token.UserID,
		token.Name,
		token.TokenHash,
		token.ExpiresAt,
		token.CreatedAt,
		token.UpdatedAt,
	)
	return mapError(err, "failed to create API token")
}

// FindByID retrieves a live API token by its ID
func (r *PgxAPITokenRepository) FindByID(ctx context.Context, id string) (*domain.APIToken, error) {
	token, err := scanAPIToken(r.db(ctx).QueryRow(ctx, findAPITokenByIDQuery, id))
	if err != nil {
		return nil, mapError(err, "failed to find API token")
	}
	return token, nil
}

// FindByUserID retrieves all live API tokens for a user
func (r *PgxAPITokenRepository) FindByUserID(ctx context.Context, userID string) ([]domain.APIToken, error) {
	rows, err := r.db(ctx).Query(ctx, findAPITokenByUserIDQuery, userID)
	if err != nil {
		return nil, mapError(err, "failed to query API tokens")
	}
	defer rows.Close()

	tokens := []domain.APIToken{}
	for rows.Next() {
		token, err := scanAPIToken(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan API token")
		}
		tokens = append(tokens, *token)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating API tokens")
	}
	return tokens, nil
}

func (r *PgxAPITokenRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	tag, err := r.db(ctx).Exec(ctx, touchAPITokenQuery, id, at)
	return expectOne(tag, err, "failed to update API token last use")
}

func (r *PgxAPITokenRepository) Delete(ctx context.Context, id string, at time.Time) error {
	tag, err := r.db(ctx).Exec(ctx, deleteAPITokenQuery, id, at)
	return expectOne(tag, err, "failed to delete API token")
}

// DeleteByUserID soft deletes every live token of a user. Having none is not an error.
func (r *PgxAPITokenRepository) DeleteByUserID(ctx context.Context, userID string, at time.Time) error {
	_, err := r.db(ctx).Exec(ctx, deleteAPITokensByUserIDQuery, userID, at)
	return mapError(err, "failed to delete API tokens of user")
}
