package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ledgergate-backend/ledger"
	"ledgergate-backend/mirror"
	"ledgergate-backend/services"
	"ledgergate-backend/storage"
)

type stubFeed struct {
	entries []mirror.Entry
	nextSeq int64
}

func (f *stubFeed) GetTopicMessages(ctx context.Context, topicID string) ([]mirror.Entry, error) {
	return f.entries, nil
}

func (f *stubFeed) GetLatestMessage(ctx context.Context, topicID string) (*mirror.Entry, error) {
	if len(f.entries) == 0 {
		return nil, nil
	}
	last := f.entries[len(f.entries)-1]
	return &last, nil
}

func (f *stubFeed) seed(record map[string]interface{}) {
	payload, _ := json.Marshal(record)
	f.nextSeq++
	f.entries = append(f.entries, mirror.Entry{
		SequenceNumber:     f.nextSeq,
		ConsensusTimestamp: fmt.Sprintf("%d.0", 1700000000+f.nextSeq),
		Message:            base64.StdEncoding.EncodeToString(payload),
	})
}

type stubSubmitter struct {
	feed *stubFeed
}

func (s *stubSubmitter) SubmitMessage(ctx context.Context, topicID string, payload []byte) (*ledger.Receipt, error) {
	if s.feed != nil {
		s.feed.nextSeq++
		s.feed.entries = append(s.feed.entries, mirror.Entry{
			SequenceNumber:     s.feed.nextSeq,
			ConsensusTimestamp: fmt.Sprintf("%d.0", 1700000000+s.feed.nextSeq),
			Message:            base64.StdEncoding.EncodeToString(payload),
		})
	}
	return &ledger.Receipt{Status: "SUCCESS", TopicID: topicID, SequenceNumber: 1, TransactionID: "tx-1"}, nil
}

type stubCreator struct{}

func (c *stubCreator) CreateTopic(ctx context.Context, memo string) (*ledger.TopicReceipt, error) {
	return &ledger.TopicReceipt{Status: "SUCCESS", TopicID: "0.0.5555", TransactionID: "tx-1"}, nil
}

type stubAssistant struct{ answer string }

func (a *stubAssistant) Answer(ctx context.Context, question string) (string, error) {
	return a.answer, nil
}

func newTopicTestHandler(feed *stubFeed) *TopicHandler {
	svc := services.NewTopicService(feed, &stubSubmitter{feed: feed}, &stubCreator{}, storage.NewMemoryArchive())
	return NewTopicHandler(svc)
}

func decodeEnvelope(t *testing.T, body *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var envelope map[string]interface{}
	if err := json.Unmarshal(body.Bytes(), &envelope); err != nil {
		t.Fatalf("Response is not JSON: %v", err)
	}
	return envelope
}

func TestHandleQuotaGet(t *testing.T) {
	feed := &stubFeed{}
	feed.seed(map[string]interface{}{"type": "PROJECT_CREATION", "name": "demo", "chatCount": 5})
	feed.seed(map[string]interface{}{"type": "CHAT_TOPIC", "question": "q", "answer": "a"})
	handler := newTopicTestHandler(feed)

	req := httptest.NewRequest(http.MethodGet, "/api/topics/0.0.1234/quota", nil)
	rr := httptest.NewRecorder()
	handler.HandleTopic(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	envelope := decodeEnvelope(t, rr.Body)
	data, _ := envelope["data"].(map[string]interface{})
	if data["totalAllowance"] != float64(5) || data["messagesUsed"] != float64(1) {
		t.Errorf("Unexpected quota payload: %+v", data)
	}
}

func TestHandleQuotaNotFound(t *testing.T) {
	handler := newTopicTestHandler(&stubFeed{})

	req := httptest.NewRequest(http.MethodGet, "/api/topics/0.0.1234/quota", nil)
	rr := httptest.NewRecorder()
	handler.HandleTopic(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for topic without project, got %d", rr.Code)
	}
}

func TestHandleQuotaUpdate(t *testing.T) {
	feed := &stubFeed{}
	feed.seed(map[string]interface{}{"type": "PROJECT_CREATION", "name": "demo", "chatCount": 3})
	handler := newTopicTestHandler(feed)

	body := bytes.NewBufferString(`{"totalAllowance":30,"messagesUsed":2}`)
	req := httptest.NewRequest(http.MethodPost, "/api/topics/0.0.1234/quota", body)
	rr := httptest.NewRecorder()
	handler.HandleTopic(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	// Update must be visible on the next read.
	req = httptest.NewRequest(http.MethodGet, "/api/topics/0.0.1234/quota", nil)
	rr = httptest.NewRecorder()
	handler.HandleTopic(rr, req)

	envelope := decodeEnvelope(t, rr.Body)
	data, _ := envelope["data"].(map[string]interface{})
	if data["totalAllowance"] != float64(30) {
		t.Errorf("Expected updated allowance, got %+v", data)
	}
}

func TestHandleTopicInvalidID(t *testing.T) {
	handler := newTopicTestHandler(&stubFeed{})

	req := httptest.NewRequest(http.MethodGet, "/api/topics/not-an-id/quota", nil)
	rr := httptest.NewRecorder()
	handler.HandleTopic(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for malformed topic id, got %d", rr.Code)
	}
}

func TestHandleTopicUnknownResource(t *testing.T) {
	handler := newTopicTestHandler(&stubFeed{})

	req := httptest.NewRequest(http.MethodGet, "/api/topics/0.0.1234/other", nil)
	rr := httptest.NewRecorder()
	handler.HandleTopic(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 for unknown subresource, got %d", rr.Code)
	}
}

func TestHandleMessages(t *testing.T) {
	feed := &stubFeed{}
	feed.seed(map[string]interface{}{"type": "PROJECT_CREATION", "name": "demo"})
	feed.seed(map[string]interface{}{"type": "CHAT_TOPIC", "id": "chat-1", "question": "q1", "answer": "a1"})
	handler := newTopicTestHandler(feed)

	req := httptest.NewRequest(http.MethodGet, "/api/topics/0.0.1234/messages", nil)
	rr := httptest.NewRecorder()
	handler.HandleTopic(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	envelope := decodeEnvelope(t, rr.Body)
	data, _ := envelope["data"].(map[string]interface{})
	if data["total"] != float64(1) {
		t.Errorf("Expected 1 chat message, got %+v", data)
	}
}

func TestHandleCreateProject(t *testing.T) {
	feed := &stubFeed{}
	handler := newTopicTestHandler(feed)

	body := bytes.NewBufferString(`{"topicId":"0.0.1234","name":"demo","chatCount":7}`)
	req := httptest.NewRequest(http.MethodPost, "/api/projects", body)
	rr := httptest.NewRecorder()
	handler.HandleCreateProject(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(feed.entries) != 1 {
		t.Errorf("Expected project record appended to feed, got %d entries", len(feed.entries))
	}
}

func TestHandleCreateProjectValidation(t *testing.T) {
	handler := newTopicTestHandler(&stubFeed{})

	body := bytes.NewBufferString(`{"name":"demo"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/projects", body)
	rr := httptest.NewRecorder()
	handler.HandleCreateProject(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for missing topicId, got %d", rr.Code)
	}
}

func TestHandleCreateTopic(t *testing.T) {
	handler := newTopicTestHandler(&stubFeed{})

	body := bytes.NewBufferString(`{"memo":"demo topic"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/topics", body)
	rr := httptest.NewRecorder()
	handler.HandleCreateTopic(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	envelope := decodeEnvelope(t, rr.Body)
	data, _ := envelope["data"].(map[string]interface{})
	if data["topicId"] != "0.0.5555" {
		t.Errorf("Unexpected topic id: %+v", data)
	}
}
