package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/amolmagar-dev/jobsuitex/internal/domain"
	"github.com/amolmagar-dev/jobsuitex/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CredentialRepository reads portal credentials. The dashboard owns the
// rows and decrypts them on write to this view; the engine only reads.
type CredentialRepository struct {
	pool *pgxpool.Pool
}

func NewCredentialRepository(pool *pgxpool.Pool) *CredentialRepository {
	return &CredentialRepository{pool: pool}
}

func (r *CredentialRepository) Get(ctx context.Context, ownerID, portal string) (*domain.Credentials, error) {
	var creds domain.Credentials
	err := r.pool.QueryRow(ctx, `
		SELECT username, password
		FROM portal_credentials
		WHERE owner_id = $1 AND portal = $2`,
		ownerID, portal,
	).Scan(&creds.Username, &creds.Password)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrCredentialsNotFound
		}
		return nil, fmt.Errorf("get credentials: %w", err)
	}
	return &creds, nil
}
