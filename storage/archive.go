package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ReceiptRecord archives one append receipt. The topic feed stays the
// source of truth; this archive only serves the data API.
type ReceiptRecord struct {
	TopicID        string          `json:"topic_id"`
	TransactionID  string          `json:"transaction_id"`
	SequenceNumber int64           `json:"sequence_number"`
	RecordType     string          `json:"record_type"`
	Payload        json.RawMessage `json:"payload"`
	RecordedAt     time.Time       `json:"recorded_at"`
}

// LicenseRecord archives one minted license NFT.
type LicenseRecord struct {
	TokenID       string    `json:"token_id"`
	SerialNumber  int64     `json:"serial_number"`
	AccountID     string    `json:"account_id"`
	ProjectID     string    `json:"project_id"`
	TransactionID string    `json:"transaction_id"`
	MintedAt      time.Time `json:"minted_at"`
}

// Archive persists append receipts and minted licenses for the data API.
type Archive interface {
	SaveReceipt(ctx context.Context, rec ReceiptRecord) error
	ListReceipts(ctx context.Context, topicID string, limit int) ([]ReceiptRecord, error)
	SaveLicense(ctx context.Context, lic LicenseRecord) error
	GetLicense(ctx context.Context, tokenID string) (*LicenseRecord, error)
	ListLicenses(ctx context.Context, accountID string) ([]LicenseRecord, error)
	Close()
}

// MemoryArchive is the in-process Archive used by default and in tests.
type MemoryArchive struct {
	mu       sync.RWMutex
	receipts []ReceiptRecord
	licenses map[string]LicenseRecord
}

// NewMemoryArchive constructs an empty archive.
func NewMemoryArchive() *MemoryArchive {
	return &MemoryArchive{
		licenses: make(map[string]LicenseRecord),
	}
}

// SaveReceipt appends a receipt record.
func (a *MemoryArchive) SaveReceipt(_ context.Context, rec ReceiptRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.receipts = append(a.receipts, rec)
	return nil
}

// ListReceipts returns archived receipts, newest first, optionally filtered
// by topic.
func (a *MemoryArchive) ListReceipts(_ context.Context, topicID string, limit int) ([]ReceiptRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var out []ReceiptRecord
	for _, rec := range a.receipts {
		if topicID != "" && rec.TopicID != topicID {
			continue
		}
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].RecordedAt.After(out[j].RecordedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// SaveLicense stores a minted license keyed by token id.
func (a *MemoryArchive) SaveLicense(_ context.Context, lic LicenseRecord) error {
	if lic.TokenID == "" {
		return fmt.Errorf("token id required")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.licenses[lic.TokenID] = lic
	return nil
}

// GetLicense returns a license by token id.
func (a *MemoryArchive) GetLicense(_ context.Context, tokenID string) (*LicenseRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	lic, ok := a.licenses[tokenID]
	if !ok {
		return nil, fmt.Errorf("license not found: %s", tokenID)
	}
	return &lic, nil
}

// ListLicenses returns licenses, optionally filtered by account.
func (a *MemoryArchive) ListLicenses(_ context.Context, accountID string) ([]LicenseRecord, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	out := make([]LicenseRecord, 0, len(a.licenses))
	for _, lic := range a.licenses {
		if accountID != "" && lic.AccountID != accountID {
			continue
		}
		out = append(out, lic)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].MintedAt.After(out[j].MintedAt)
	})
	return out, nil
}

// Close is a no-op for the memory archive.
func (a *MemoryArchive) Close() {}
