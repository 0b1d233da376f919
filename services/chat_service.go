package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ledgergate-backend/ai"
	"ledgergate-backend/ledger"
	"ledgergate-backend/storage"
	"ledgergate-backend/topic"
)

// ErrQuotaExhausted is returned when a topic has no remaining chat messages.
var ErrQuotaExhausted = errors.New("quota exhausted: no remaining messages for topic")

var (
	chatTurnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledgergate_chat_turns_total",
		Help: "Chat turns processed, by outcome.",
	}, []string{"outcome"})

	quotaRefusalsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledgergate_quota_refusals_total",
		Help: "Chat turns refused because the topic quota was exhausted.",
	})
)

// Assistant answers a single chat question.
type Assistant interface {
	Answer(ctx context.Context, question string) (string, error)
}

// ChatService runs quota-gated chat turns: replay the feed, reduce the
// quota, call the assistant, append the turn.
type ChatService struct {
	feed      Feed
	submitter ledger.Submitter
	assistant Assistant
	archive   storage.Archive

	// Per-topic locks close the check-then-append race: two concurrent
	// turns against one topic serialize here instead of both observing
	// the same remaining-quota snapshot.
	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewChatService creates a new chat service.
func NewChatService(feed Feed, submitter ledger.Submitter, assistant Assistant, archive storage.Archive) *ChatService {
	return &ChatService{
		feed:      feed,
		submitter: submitter,
		assistant: assistant,
		archive:   archive,
		locks:     make(map[string]*sync.Mutex),
	}
}

func (s *ChatService) topicLock(topicID string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	lock, ok := s.locks[topicID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[topicID] = lock
	}
	return lock
}

// SendMessage processes one chat turn for a topic.
//
// The quota is recomputed from the full feed before every append. A topic
// with no entries at all is the bootstrap case: the initial allowance is
// assumed and the turn proceeds. When the assistant is unavailable the
// canned fallback answer is returned and recorded best-effort with quota 0.
func (s *ChatService) SendMessage(ctx context.Context, topicID, question, userID string) (*ChatTurn, error) {
	if strings.TrimSpace(topicID) == "" {
		return nil, fmt.Errorf("topic id required")
	}
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("question required")
	}

	lock := s.topicLock(topicID)
	lock.Lock()
	defer lock.Unlock()

	entries, err := s.feed.GetTopicMessages(ctx, topicID)
	if err != nil {
		return nil, err
	}

	var quota topic.QuotaState
	if len(entries) == 0 {
		quota = topic.QuotaState{
			TotalAllowance:    topic.BootstrapAllowance,
			MessagesUsed:      0,
			RemainingMessages: topic.BootstrapAllowance,
		}
	} else {
		records := topic.DecodeRecords(topic.Reassemble(entries))
		quota, err = topic.ComputeQuota(records)
		if err != nil {
			return nil, err
		}
	}

	if quota.RemainingMessages <= 0 {
		quotaRefusalsTotal.Inc()
		chatTurnsTotal.WithLabelValues("refused").Inc()
		return nil, ErrQuotaExhausted
	}

	remaining := quota.RemainingMessages - 1

	answer, answerErr := s.assistant.Answer(ctx, question)
	fallback := false
	recordedQuota := remaining
	if answerErr != nil {
		log.Printf("Assistant unavailable for topic %s: %v", topicID, answerErr)
		answer = ai.FallbackAnswer
		fallback = true
		recordedQuota = 0
	}

	turn := &ChatTurn{
		ID:                fmt.Sprintf("chat-%d", time.Now().UnixNano()),
		TopicID:           topicID,
		Question:          question,
		Answer:            answer,
		RemainingMessages: remaining,
		Fallback:          fallback,
	}

	record := map[string]interface{}{
		"type":       topic.TypeChat,
		"id":         turn.ID,
		"question":   question,
		"answer":     answer,
		"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		"usageQuota": recordedQuota,
	}
	if userID != "" {
		record["userId"] = userID
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to encode chat record: %w", err)
	}

	receipt, submitErr := s.submitter.SubmitMessage(ctx, topicID, payload)
	if submitErr != nil {
		if fallback {
			// The fallback answer is best-effort; losing its feed record
			// is acceptable.
			log.Printf("Failed to record fallback answer on topic %s: %v", topicID, submitErr)
			chatTurnsTotal.WithLabelValues("fallback").Inc()
			return turn, nil
		}
		return nil, submitErr
	}

	archiveReceipt(ctx, s.archive, receipt, record, payload)

	if fallback {
		chatTurnsTotal.WithLabelValues("fallback").Inc()
	} else {
		chatTurnsTotal.WithLabelValues("answered").Inc()
	}
	return turn, nil
}

// ChatTurn is the outcome of one processed chat message.
type ChatTurn struct {
	ID                string
	TopicID           string
	Question          string
	Answer            string
	RemainingMessages int
	Fallback          bool
}
