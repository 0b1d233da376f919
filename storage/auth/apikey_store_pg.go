package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// PGAPIKeyStore persists API keys in Postgres. Only a SHA-256 digest of the
// key is stored; the plaintext key exists solely in the issuance response.
type PGAPIKeyStore struct {
	pool *pgxpool.Pool
}

// NewPGAPIKeyStore connects and initializes schema.
func NewPGAPIKeyStore(ctx context.Context, dsn string) (*PGAPIKeyStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := &PGAPIKeyStore{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PGAPIKeyStore) initSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS api_keys (
  key_hash   TEXT PRIMARY KEY,
  email      TEXT,
  account_id TEXT,
  source     TEXT,
  created_at TIMESTAMPTZ DEFAULT now()
);
`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Validate implements APIKeyValidator.
func (s *PGAPIKeyStore) Validate(key string) bool {
	if key == "" {
		return false
	}
	var exists bool
	err := s.pool.QueryRow(context.Background(),
		"SELECT true FROM api_keys WHERE key_hash=$1",
		hashKey(key)).Scan(&exists)
	return err == nil && exists
}

// Get returns the API key record for the provided key.
func (s *PGAPIKeyStore) Get(key string) (APIKey, bool) {
	if key == "" {
		return APIKey{}, false
	}
	var rec APIKey
	err := s.pool.QueryRow(context.Background(),
		"SELECT COALESCE(email, ''), COALESCE(account_id, ''), COALESCE(source, ''), created_at FROM api_keys WHERE key_hash=$1",
		hashKey(key),
	).Scan(&rec.Email, &rec.AccountID, &rec.Source, &rec.CreatedAt)
	if err != nil {
		return APIKey{}, false
	}
	rec.Key = key
	return rec, true
}

// Issue implements APIKeyIssuer.
func (s *PGAPIKeyStore) Issue(email, accountID, source string) (APIKey, error) {
	key, err := generateKey()
	if err != nil {
		return APIKey{}, err
	}

	rec := APIKey{
		Key:       key,
		Email:     email,
		AccountID: accountID,
		Source:    source,
		CreatedAt: time.Now(),
	}
	_, err = s.pool.Exec(context.Background(),
		"INSERT INTO api_keys (key_hash, email, account_id, source, created_at) VALUES ($1,$2,$3,$4,$5)",
		hashKey(key), rec.Email, rec.AccountID, rec.Source, rec.CreatedAt)
	if err != nil {
		return APIKey{}, err
	}
	return rec, nil
}

// UpdateAccount binds a ledger account id to an existing API key.
func (s *PGAPIKeyStore) UpdateAccount(key, accountID string) (APIKey, error) {
	normalizedKey := strings.TrimSpace(key)
	normalizedAccount := strings.TrimSpace(accountID)
	if normalizedKey == "" {
		return APIKey{}, fmt.Errorf("api key required")
	}
	if normalizedAccount == "" {
		return APIKey{}, fmt.Errorf("account_id required")
	}
	var rec APIKey
	err := s.pool.QueryRow(context.Background(), `
UPDATE api_keys
SET account_id=$2
WHERE key_hash=$1
RETURNING COALESCE(email, ''), account_id, COALESCE(source, ''), created_at
`, hashKey(normalizedKey), normalizedAccount).Scan(&rec.Email, &rec.AccountID, &rec.Source, &rec.CreatedAt)
	if err != nil {
		return APIKey{}, err
	}
	rec.Key = normalizedKey
	return rec, nil
}

// Seed inserts a provided key if not empty.
func (s *PGAPIKeyStore) Seed(key, email, source string) {
	if key == "" {
		return
	}
	_, _ = s.pool.Exec(context.Background(),
		"INSERT INTO api_keys (key_hash, email, source, created_at) VALUES ($1,$2,$3,$4) ON CONFLICT DO NOTHING",
		hashKey(key), email, source, time.Now())
}

// Close releases the pool.
func (s *PGAPIKeyStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}
