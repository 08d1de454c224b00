package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/arborhq/arbor/internal/dbpool"
)

// TenantStore resolves API keys to tenant IDs. Keys are stored hashed, so
// the lookup hashes before querying.
type TenantStore struct {
	Pool *dbpool.Pool
}

// NewTenantStore creates a TenantStore on the shared pool.
func NewTenantStore(pool *dbpool.Pool) *TenantStore {
	return &TenantStore{Pool: pool}
}

// GetTenantByAPIKey returns the tenant ID owning apiKey, or an error if no
// tenant matches.
func (s *TenantStore) GetTenantByAPIKey(ctx context.Context, apiKey string) (string, error) {
	ctx, cancel := withTimeout(ctx)
	defer cancel()

	sum := sha256.Sum256([]byte(apiKey))
	keyHash := hex.EncodeToString(sum[:])

	var tenantID string
	if err := s.Pool.QueryRow(ctx, "SELECT id FROM tenants WHERE api_key_hash = $1", keyHash).Scan(&tenantID); err != nil {
		return "", fmt.Errorf("looking up tenant by API key: %w", err)
	}

	return tenantID, nil
}
