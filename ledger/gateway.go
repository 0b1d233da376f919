package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Submitter is the append boundary consumed by services. The payload is the
// UTF-8 JSON encoding of a record; framing beyond that is the gateway's
// concern.
type Submitter interface {
	SubmitMessage(ctx context.Context, topicID string, payload []byte) (*Receipt, error)
}

// TopicCreator creates new topic feeds.
type TopicCreator interface {
	CreateTopic(ctx context.Context, memo string) (*TopicReceipt, error)
}

// Minter mints license NFTs.
type Minter interface {
	MintLicense(ctx context.Context, req MintRequest) (*MintReceipt, error)
}

// Receipt is the result of a message submission.
type Receipt struct {
	Status         string `json:"status"`
	TopicID        string `json:"topic_id"`
	SequenceNumber int64  `json:"sequence_number"`
	TransactionID  string `json:"transaction_id"`
}

// TopicReceipt is the result of a topic creation.
type TopicReceipt struct {
	Status        string `json:"status"`
	TopicID       string `json:"topic_id"`
	TransactionID string `json:"transaction_id"`
}

// MintRequest describes a license NFT to mint.
type MintRequest struct {
	TokenID     string `json:"token_id,omitempty"`
	AccountID   string `json:"account_id"`
	ProjectID   string `json:"project_id"`
	MetadataURI string `json:"metadata_uri,omitempty"`
}

// MintReceipt is the result of a license mint.
type MintReceipt struct {
	Status        string `json:"status"`
	TokenID       string `json:"token_id"`
	SerialNumber  int64  `json:"serial_number"`
	AccountID     string `json:"account_id"`
	TransactionID string `json:"transaction_id"`
}

// Gateway talks to the ledger gateway service that holds the operator key
// and performs transaction signing and consensus submission. This backend
// never signs anything itself.
type Gateway struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewGateway creates a ledger gateway client.
func NewGateway(baseURL, apiKey string) *Gateway {
	return &Gateway{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// SubmitMessage appends payload to a topic feed.
func (g *Gateway) SubmitMessage(ctx context.Context, topicID string, payload []byte) (*Receipt, error) {
	if strings.TrimSpace(topicID) == "" {
		return nil, fmt.Errorf("topic id required")
	}

	body := map[string]interface{}{
		"topic_id": topicID,
		"message":  string(payload),
	}

	var receipt Receipt
	if err := g.post(ctx, "/v1/topics/"+topicID+"/messages", body, &receipt); err != nil {
		return nil, fmt.Errorf("failed to submit message to %s: %w", topicID, err)
	}
	return &receipt, nil
}

// CreateTopic creates a new topic feed with the given memo.
func (g *Gateway) CreateTopic(ctx context.Context, memo string) (*TopicReceipt, error) {
	body := map[string]interface{}{
		"memo": memo,
	}

	var receipt TopicReceipt
	if err := g.post(ctx, "/v1/topics", body, &receipt); err != nil {
		return nil, fmt.Errorf("failed to create topic: %w", err)
	}
	return &receipt, nil
}

// MintLicense mints a license NFT to the requested account.
func (g *Gateway) MintLicense(ctx context.Context, req MintRequest) (*MintReceipt, error) {
	if strings.TrimSpace(req.AccountID) == "" {
		return nil, fmt.Errorf("account id required")
	}

	var receipt MintReceipt
	if err := g.post(ctx, "/v1/licenses/mint", req, &receipt); err != nil {
		return nil, fmt.Errorf("failed to mint license: %w", err)
	}
	return &receipt, nil
}

func (g *Gateway) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("X-API-Key", g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var gwErr struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&gwErr); decodeErr == nil && gwErr.Error != "" {
			return fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, gwErr.Error)
		}
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode gateway response: %w", err)
	}
	return nil
}
