package models

import "time"

// ChatMessage is a classified chat turn returned to the frontend.
type ChatMessage struct {
	ID         string `json:"id"`
	Question   string `json:"question"`
	Answer     string `json:"answer"`
	Timestamp  string `json:"timestamp"`
	UsageQuota *int   `json:"usageQuota,omitempty"`
}

// TopicMessagesResponse wraps the classified history of one topic.
type TopicMessagesResponse struct {
	TopicID  string        `json:"topicId"`
	Messages []ChatMessage `json:"messages"`
	Total    int           `json:"total"`
}

// CreateTopicRequest asks the gateway for a new topic feed.
type CreateTopicRequest struct {
	Memo string `json:"memo,omitempty"`
}

// CreateTopicResponse carries the new topic id back to the frontend.
type CreateTopicResponse struct {
	TopicID       string `json:"topicId"`
	TransactionID string `json:"transactionId,omitempty"`
}

// ChatRequest is an incoming chat turn.
type ChatRequest struct {
	Question string `json:"question"`
	UserID   string `json:"userId,omitempty"`
}

// ChatResponse is the answer plus the quota after the turn was recorded.
type ChatResponse struct {
	ID                string `json:"id"`
	Question          string `json:"question"`
	Answer            string `json:"answer"`
	RemainingMessages int    `json:"remainingMessages"`
	Fallback          bool   `json:"fallback,omitempty"`
}

// QuotaUpdateRequest appends an explicit quota update to the feed.
type QuotaUpdateRequest struct {
	TotalAllowance    *int `json:"totalAllowance,omitempty"`
	MessagesUsed      *int `json:"messagesUsed,omitempty"`
	RemainingMessages *int `json:"remainingMessages,omitempty"`
}

// CreateProjectRequest appends a project creation record.
type CreateProjectRequest struct {
	TopicID   string `json:"topicId"`
	Name      string `json:"name"`
	ChatCount *int   `json:"chatCount,omitempty"`
}

// CreateSubscriptionRequest appends a subscription-created record.
type CreateSubscriptionRequest struct {
	TopicID   string `json:"topicId"`
	AccountID string `json:"accountId"`
	Plan      string `json:"plan"`
}

// MintLicenseRequest mints a license NFT and records it on the feed.
type MintLicenseRequest struct {
	TopicID     string `json:"topicId"`
	AccountID   string `json:"accountId"`
	ProjectID   string `json:"projectId"`
	MetadataURI string `json:"metadataUri,omitempty"`
}

// LicenseResponse describes a minted license.
type LicenseResponse struct {
	TokenID       string `json:"tokenId"`
	SerialNumber  int64  `json:"serialNumber"`
	AccountID     string `json:"accountId"`
	ProjectID     string `json:"projectId"`
	TransactionID string `json:"transactionId,omitempty"`
	MintedAt      int64  `json:"mintedAt"`
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// ErrorResponse represents API error response
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message,omitempty"`
	Code      int    `json:"code,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// SuccessResponse represents API success response
type SuccessResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
}

// NewErrorResponse creates an error response with a timestamp.
func NewErrorResponse(message string, code int) *ErrorResponse {
	return &ErrorResponse{
		Error:     message,
		Code:      code,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// NewSuccessResponse wraps data in the success envelope.
func NewSuccessResponse(data interface{}) *SuccessResponse {
	return &SuccessResponse{
		Status: "success",
		Data:   data,
	}
}
