package repository

import (
	"context"
	"errors"

	"github.com/amolmagar-dev/jobsuitex/internal/domain"
)

var ErrCredentialsNotFound = errors.New("portal credentials not found")

// CredentialStore hands out portal login credentials, already decrypted
// by the upstream store. The engine never touches raw encryption.
type CredentialStore interface {
	Get(ctx context.Context, ownerID, portal string) (*domain.Credentials, error)
}
