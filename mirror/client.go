package mirror

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"
)

// RateLimiter manages mirror node request rate limiting
type RateLimiter struct {
	requests    int
	maxRequests int
	windowStart time.Time
	windowSize  time.Duration
	minInterval time.Duration
	lastRequest time.Time
	mu          sync.Mutex
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(maxRequests int, windowSize time.Duration, minInterval time.Duration) *RateLimiter {
	return &RateLimiter{
		maxRequests: maxRequests,
		windowSize:  windowSize,
		windowStart: time.Now(),
		minInterval: minInterval,
		lastRequest: time.Time{},
	}
}

// AllowRequest checks if a request is allowed
func (rl *RateLimiter) AllowRequest() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()

	// Check minimum interval between requests
	if !rl.lastRequest.IsZero() && now.Sub(rl.lastRequest) < rl.minInterval {
		return false
	}

	rl.requests++

	// Reset window if needed
	if now.Sub(rl.windowStart) >= rl.windowSize {
		rl.requests = 1
		rl.windowStart = now
	}

	if rl.requests <= rl.maxRequests {
		rl.lastRequest = now
		return true
	}

	return false
}

// TransactionID identifies the submission that originated a chunked message.
type TransactionID struct {
	AccountID             string `json:"account_id"`
	TransactionValidStart string `json:"transaction_valid_start"`
	Nonce                 int    `json:"nonce,omitempty"`
	Scheduled             bool   `json:"scheduled,omitempty"`
}

// ChunkInfo carries chunk placement metadata for a split message.
type ChunkInfo struct {
	InitialTransactionID *TransactionID `json:"initial_transaction_id,omitempty"`
	Number               int            `json:"number"`
	Total                int            `json:"total"`
}

// Entry is a single raw message from a topic feed. Payload bytes arrive
// base64-encoded in Message; sequence numbers are strictly increasing
// per topic.
type Entry struct {
	SequenceNumber     int64      `json:"sequence_number"`
	ConsensusTimestamp string     `json:"consensus_timestamp"`
	TopicID            string     `json:"topic_id,omitempty"`
	Message            string     `json:"message"`
	ChunkInfo          *ChunkInfo `json:"chunk_info,omitempty"`
}

// messagesPage is one page of the mirror node topic messages response.
type messagesPage struct {
	Messages []Entry `json:"messages"`
	Links    struct {
		Next string `json:"next"`
	} `json:"links"`
}

// Client interfaces with the read-only mirror node REST API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *RateLimiter
	pageLimit   int
}

// NewClient creates a new mirror node client.
// Expects baseURL like: https://testnet.mirrornode.hedera.com
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:     strings.TrimRight(baseURL, "/"),
		rateLimiter: NewRateLimiter(100, time.Minute, 100*time.Millisecond),
		pageLimit:   100,
	}
}

// GetTopicMessages retrieves the complete message history for a topic,
// following pagination links to exhaustion. Entries are returned in
// ascending sequence-number order.
func (c *Client) GetTopicMessages(ctx context.Context, topicID string) ([]Entry, error) {
	if strings.TrimSpace(topicID) == "" {
		return nil, fmt.Errorf("topic id required")
	}

	path := fmt.Sprintf("/api/v1/topics/%s/messages?limit=%d&order=asc", topicID, c.pageLimit)

	var entries []Entry
	for path != "" {
		page, err := c.fetchPage(ctx, path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, page.Messages...)
		path = page.Links.Next
	}

	// Pagination already yields ascending order; sort defensively so
	// downstream reassembly never depends on mirror behavior.
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].SequenceNumber < entries[j].SequenceNumber
	})

	return entries, nil
}

// GetLatestMessage returns the entry with the highest sequence number, or
// nil for an empty topic.
func (c *Client) GetLatestMessage(ctx context.Context, topicID string) (*Entry, error) {
	entries, err := c.GetTopicMessages(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	last := entries[len(entries)-1]
	return &last, nil
}

func (c *Client) fetchPage(ctx context.Context, path string) (*messagesPage, error) {
	// A denied permit means the min interval or the window cap is in the
	// way; wait and re-check rather than proceeding unthrottled.
	wait := c.rateLimiter.minInterval
	if wait <= 0 {
		wait = 25 * time.Millisecond
	}
	for !c.rateLimiter.AllowRequest() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build mirror request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch topic messages: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		// A topic with no messages yet returns 404 from some mirrors;
		// treat it as an empty feed rather than an error.
		return &messagesPage{}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mirror node returned status %d for %s", resp.StatusCode, path)
	}

	var page messagesPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode mirror response: %w", err)
	}

	return &page, nil
}
