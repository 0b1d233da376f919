package auth

import (
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"
)

// Challenge represents a pending ledger-account verification.
type Challenge struct {
	Nonce       string    `json:"nonce"`
	AccountID   string    `json:"account_id"`
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
	Attempts    int       `json:"attempts"`
	MaxAttempts int       `json:"max_attempts"`
}

// ChallengeStore keeps in-memory challenges (sufficient for current needs; can be swapped for Postgres).
type ChallengeStore struct {
	mu         sync.Mutex
	ttl        time.Duration
	challenges map[string]Challenge // keyed by account id
}

// NewChallengeStore builds a new in-memory challenge store.
func NewChallengeStore(ttl time.Duration) *ChallengeStore {
	return &ChallengeStore{
		ttl:        ttl,
		challenges: make(map[string]Challenge),
	}
}

// Issue creates or refreshes a challenge for a ledger account.
func (s *ChallengeStore) Issue(accountID string) (Challenge, error) {
	nonce, err := randomNonce()
	if err != nil {
		return Challenge{}, err
	}
	ch := Challenge{
		Nonce:       nonce,
		AccountID:   accountID,
		CreatedAt:   time.Now(),
		ExpiresAt:   time.Now().Add(s.ttl),
		MaxAttempts: 5,
	}
	s.mu.Lock()
	s.challenges[accountID] = ch
	s.mu.Unlock()
	return ch, nil
}

// Verify checks signature against the outstanding nonce.
// NOTE: For now this accepts signature == nonce (placeholder); replace with real ed25519 verification against the account key.
func (s *ChallengeStore) Verify(accountID, signature string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.challenges[accountID]
	if !ok {
		return false
	}
	if time.Now().After(ch.ExpiresAt) {
		delete(s.challenges, accountID)
		return false
	}
	ch.Attempts++
	s.challenges[accountID] = ch
	if ch.Attempts > ch.MaxAttempts {
		delete(s.challenges, accountID)
		return false
	}
	if signature == ch.Nonce {
		delete(s.challenges, accountID)
		return true
	}
	return false
}

func randomNonce() (string, error) {
	b := make([]byte, 16) // 128-bit nonce
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
