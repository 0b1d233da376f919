package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"log"
	"strings"
	"time"

	"github.com/skip2/go-qrcode"

	"ledgergate-backend/ledger"
	"ledgergate-backend/mirror"
	"ledgergate-backend/models"
	"ledgergate-backend/storage"
	"ledgergate-backend/topic"
)

// Feed is the read side of a topic: the full raw entry history plus the
// newest entry on its own.
type Feed interface {
	GetTopicMessages(ctx context.Context, topicID string) ([]mirror.Entry, error)
	GetLatestMessage(ctx context.Context, topicID string) (*mirror.Entry, error)
}

// TopicService runs the fetch-reassemble-classify-reduce pipeline and
// appends non-chat records to feeds.
type TopicService struct {
	feed      Feed
	submitter ledger.Submitter
	creator   ledger.TopicCreator
	archive   storage.Archive
}

// NewTopicService creates a new topic service.
func NewTopicService(feed Feed, submitter ledger.Submitter, creator ledger.TopicCreator, archive storage.Archive) *TopicService {
	return &TopicService{
		feed:      feed,
		submitter: submitter,
		creator:   creator,
		archive:   archive,
	}
}

// loadRecords replays a topic into classified records. The raw entry count
// is returned alongside so callers can detect a completely empty topic.
func (s *TopicService) loadRecords(ctx context.Context, topicID string) ([]*topic.Record, int, error) {
	entries, err := s.feed.GetTopicMessages(ctx, topicID)
	if err != nil {
		return nil, 0, err
	}
	records := topic.DecodeRecords(topic.Reassemble(entries))
	return records, len(entries), nil
}

// GetMessages returns the classified chat history of a topic.
func (s *TopicService) GetMessages(ctx context.Context, topicID string) (*models.TopicMessagesResponse, error) {
	records, _, err := s.loadRecords(ctx, topicID)
	if err != nil {
		return nil, err
	}

	messages := make([]models.ChatMessage, 0, len(records))
	for _, rec := range records {
		if rec.Type != topic.TypeChat {
			continue
		}
		messages = append(messages, models.ChatMessage{
			ID:         rec.ID,
			Question:   rec.Question,
			Answer:     rec.Answer,
			Timestamp:  rec.Timestamp,
			UsageQuota: rec.UsageQuota,
		})
	}

	return &models.TopicMessagesResponse{
		TopicID:  topicID,
		Messages: messages,
		Total:    len(messages),
	}, nil
}

// GetLatestEntry returns the newest raw entry on a topic, or nil when the
// topic is empty. Useful as a cheap liveness probe before replaying the
// whole feed.
func (s *TopicService) GetLatestEntry(ctx context.Context, topicID string) (*mirror.Entry, error) {
	return s.feed.GetLatestMessage(ctx, topicID)
}

// GetQuota replays the topic and reduces it to the current quota.
func (s *TopicService) GetQuota(ctx context.Context, topicID string) (topic.QuotaState, error) {
	records, _, err := s.loadRecords(ctx, topicID)
	if err != nil {
		return topic.QuotaState{}, err
	}
	return topic.ComputeQuota(records)
}

// UpdateQuota appends an explicit quota-update record to the feed.
func (s *TopicService) UpdateQuota(ctx context.Context, topicID string, req models.QuotaUpdateRequest) (*ledger.Receipt, error) {
	if req.TotalAllowance == nil && req.MessagesUsed == nil && req.RemainingMessages == nil {
		return nil, fmt.Errorf("at least one quota field required")
	}

	record := map[string]interface{}{
		"type":      topic.TypeAllowanceUpdate,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}
	if req.TotalAllowance != nil {
		record["totalAllowance"] = *req.TotalAllowance
	}
	if req.MessagesUsed != nil {
		record["messagesUsed"] = *req.MessagesUsed
	}
	if req.RemainingMessages != nil {
		record["remainingMessages"] = *req.RemainingMessages
	}

	return s.appendRecord(ctx, topicID, record)
}

// CreateTopic creates a new topic feed via the gateway.
func (s *TopicService) CreateTopic(ctx context.Context, memo string) (*ledger.TopicReceipt, error) {
	return s.creator.CreateTopic(ctx, memo)
}

// RecordProject appends the project creation record that seeds a topic's
// chat allowance.
func (s *TopicService) RecordProject(ctx context.Context, req models.CreateProjectRequest) (*ledger.Receipt, error) {
	if strings.TrimSpace(req.TopicID) == "" {
		return nil, fmt.Errorf("topicId required")
	}
	if strings.TrimSpace(req.Name) == "" {
		return nil, fmt.Errorf("name required")
	}

	chatCount := topic.DefaultChatAllowance
	if req.ChatCount != nil {
		chatCount = *req.ChatCount
	}

	record := map[string]interface{}{
		"type":      topic.TypeProjectCreation,
		"name":      req.Name,
		"chatCount": chatCount,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}

	return s.appendRecord(ctx, req.TopicID, record)
}

// RecordSubscription appends a subscription-created record.
func (s *TopicService) RecordSubscription(ctx context.Context, req models.CreateSubscriptionRequest) (*ledger.Receipt, error) {
	if strings.TrimSpace(req.TopicID) == "" {
		return nil, fmt.Errorf("topicId required")
	}
	if strings.TrimSpace(req.AccountID) == "" {
		return nil, fmt.Errorf("accountId required")
	}

	record := map[string]interface{}{
		"type":      topic.TypeSubscriptionCreated,
		"accountId": req.AccountID,
		"plan":      req.Plan,
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	}

	return s.appendRecord(ctx, req.TopicID, record)
}

func (s *TopicService) appendRecord(ctx context.Context, topicID string, record map[string]interface{}) (*ledger.Receipt, error) {
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record: %w", err)
	}

	receipt, err := s.submitter.SubmitMessage(ctx, topicID, payload)
	if err != nil {
		return nil, err
	}

	archiveReceipt(ctx, s.archive, receipt, record, payload)
	return receipt, nil
}

// archiveReceipt saves an append receipt best-effort; archive failures are
// logged and never surfaced because the feed is the source of truth.
func archiveReceipt(ctx context.Context, archive storage.Archive, receipt *ledger.Receipt, record map[string]interface{}, payload []byte) {
	if archive == nil || receipt == nil {
		return
	}
	recType, _ := record["type"].(string)
	err := archive.SaveReceipt(ctx, storage.ReceiptRecord{
		TopicID:        receipt.TopicID,
		TransactionID:  receipt.TransactionID,
		SequenceNumber: receipt.SequenceNumber,
		RecordType:     recType,
		Payload:        json.RawMessage(payload),
		RecordedAt:     time.Now(),
	})
	if err != nil {
		log.Printf("Failed to archive receipt for %s: %v", receipt.TopicID, err)
	}
}

// MetadataPublisher pins a JSON document and returns its content address.
type MetadataPublisher interface {
	AddJSON(ctx context.Context, name string, v interface{}) (string, error)
}

// LicenseService mints license NFTs and records them on topic feeds.
type LicenseService struct {
	minter    ledger.Minter
	submitter ledger.Submitter
	archive   storage.Archive
	metadata  MetadataPublisher
}

// NewLicenseService creates a new license service.
func NewLicenseService(minter ledger.Minter, submitter ledger.Submitter, archive storage.Archive) *LicenseService {
	return &LicenseService{
		minter:    minter,
		submitter: submitter,
		archive:   archive,
	}
}

// SetMetadataPublisher enables content-addressed metadata for minted tokens.
func (s *LicenseService) SetMetadataPublisher(p MetadataPublisher) {
	s.metadata = p
}

// MintLicense mints a license NFT via the gateway, archives it, and appends
// a license-creation record to the project topic. The mint is the operation
// of record: a failed feed append is logged, not surfaced.
func (s *LicenseService) MintLicense(ctx context.Context, req models.MintLicenseRequest) (*models.LicenseResponse, error) {
	if strings.TrimSpace(req.AccountID) == "" {
		return nil, fmt.Errorf("accountId required")
	}
	if strings.TrimSpace(req.ProjectID) == "" {
		return nil, fmt.Errorf("projectId required")
	}

	metadataURI := req.MetadataURI
	if metadataURI == "" && s.metadata != nil {
		doc := map[string]interface{}{
			"projectId": req.ProjectID,
			"accountId": req.AccountID,
			"topicId":   req.TopicID,
			"issuedAt":  time.Now().UTC().Format(time.RFC3339),
		}
		cid, err := s.metadata.AddJSON(ctx, "license-"+req.ProjectID+".json", doc)
		if err != nil {
			log.Printf("Failed to publish license metadata for %s: %v", req.ProjectID, err)
		} else {
			metadataURI = "ipfs://" + cid
		}
	}

	receipt, err := s.minter.MintLicense(ctx, ledger.MintRequest{
		AccountID:   req.AccountID,
		ProjectID:   req.ProjectID,
		MetadataURI: metadataURI,
	})
	if err != nil {
		return nil, err
	}

	mintedAt := time.Now()
	if s.archive != nil {
		if err := s.archive.SaveLicense(ctx, storage.LicenseRecord{
			TokenID:       receipt.TokenID,
			SerialNumber:  receipt.SerialNumber,
			AccountID:     req.AccountID,
			ProjectID:     req.ProjectID,
			TransactionID: receipt.TransactionID,
			MintedAt:      mintedAt,
		}); err != nil {
			log.Printf("Failed to archive license %s: %v", receipt.TokenID, err)
		}
	}

	if req.TopicID != "" {
		record := map[string]interface{}{
			"type":         topic.TypeLicenseCreation,
			"tokenId":      receipt.TokenID,
			"serialNumber": receipt.SerialNumber,
			"accountId":    req.AccountID,
			"projectId":    req.ProjectID,
			"timestamp":    mintedAt.UTC().Format(time.RFC3339Nano),
		}
		payload, _ := json.Marshal(record)
		if _, err := s.submitter.SubmitMessage(ctx, req.TopicID, payload); err != nil {
			log.Printf("Failed to record license %s on topic %s: %v", receipt.TokenID, req.TopicID, err)
		}
	}

	return &models.LicenseResponse{
		TokenID:       receipt.TokenID,
		SerialNumber:  receipt.SerialNumber,
		AccountID:     req.AccountID,
		ProjectID:     req.ProjectID,
		TransactionID: receipt.TransactionID,
		MintedAt:      mintedAt.Unix(),
	}, nil
}

// GetLicense returns an archived license by token id.
func (s *LicenseService) GetLicense(ctx context.Context, tokenID string) (*storage.LicenseRecord, error) {
	if s.archive == nil {
		return nil, fmt.Errorf("license archive not configured")
	}
	return s.archive.GetLicense(ctx, tokenID)
}

// ListLicenses returns archived licenses, optionally filtered by account.
func (s *LicenseService) ListLicenses(ctx context.Context, accountID string) ([]storage.LicenseRecord, error) {
	if s.archive == nil {
		return nil, fmt.Errorf("license archive not configured")
	}
	return s.archive.ListLicenses(ctx, accountID)
}

// QRCodeService renders license verification QR codes.
type QRCodeService struct {
	verifyBaseURL string
}

// NewQRCodeService creates a new QR code service.
func NewQRCodeService(verifyBaseURL string) *QRCodeService {
	return &QRCodeService{verifyBaseURL: strings.TrimRight(verifyBaseURL, "/")}
}

// GenerateLicenseQR generates a QR code PNG pointing at the public
// verification page for a license token.
func (s *QRCodeService) GenerateLicenseQR(tokenID string, serial int64) ([]byte, error) {
	if strings.TrimSpace(tokenID) == "" {
		return nil, fmt.Errorf("token id required")
	}

	content := fmt.Sprintf("%s/licenses/%s?serial=%d", s.verifyBaseURL, tokenID, serial)
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("failed to generate QR code: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, qr.Image(256)); err != nil {
		return nil, fmt.Errorf("failed to encode QR code to PNG: %w", err)
	}

	return buf.Bytes(), nil
}

// HealthService handles health check business logic
type HealthService struct{}

// NewHealthService creates a new health service
func NewHealthService() *HealthService {
	return &HealthService{}
}

// GetHealthStatus returns current health status
func (s *HealthService) GetHealthStatus() *models.HealthResponse {
	return &models.HealthResponse{
		Status:    "healthy",
		Message:   "Backend is running",
		Timestamp: time.Now().Unix(),
	}
}
