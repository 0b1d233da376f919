package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"ledgergate-backend/services"
	"ledgergate-backend/storage"
)

func newChatTestHandler(feed *stubFeed, assistant *stubAssistant) *ChatHandler {
	svc := services.NewChatService(feed, &stubSubmitter{feed: feed}, assistant, storage.NewMemoryArchive())
	return NewChatHandler(svc)
}

func postChat(handler *ChatHandler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	handler.HandleChatMessage(rr, req)
	return rr
}

func TestHandleChatMessage(t *testing.T) {
	feed := &stubFeed{}
	feed.seed(map[string]interface{}{"type": "PROJECT_CREATION", "name": "demo", "chatCount": 3})
	handler := newChatTestHandler(feed, &stubAssistant{answer: "hello there"})

	rr := postChat(handler, "/api/chat/0.0.1234/message", `{"question":"hi"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	envelope := decodeEnvelope(t, rr.Body)
	data, _ := envelope["data"].(map[string]interface{})
	if data["answer"] != "hello there" {
		t.Errorf("Unexpected answer: %+v", data)
	}
	if data["remainingMessages"] != float64(2) {
		t.Errorf("Expected 2 remaining, got %v", data["remainingMessages"])
	}
}

func TestHandleChatMessageQuotaExhausted(t *testing.T) {
	feed := &stubFeed{}
	feed.seed(map[string]interface{}{"type": "PROJECT_CREATION", "name": "demo", "chatCount": 1})
	feed.seed(map[string]interface{}{"type": "CHAT_TOPIC", "question": "spent", "answer": "a"})
	handler := newChatTestHandler(feed, &stubAssistant{answer: "ok"})

	rr := postChat(handler, "/api/chat/0.0.1234/message", `{"question":"one more"}`)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected 429, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleChatMessageNoProject(t *testing.T) {
	feed := &stubFeed{}
	feed.seed(map[string]interface{}{"type": "CHAT_TOPIC", "question": "orphan", "answer": "a"})
	handler := newChatTestHandler(feed, &stubAssistant{answer: "ok"})

	rr := postChat(handler, "/api/chat/0.0.1234/message", `{"question":"hi"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestHandleChatMessageMissingQuestion(t *testing.T) {
	handler := newChatTestHandler(&stubFeed{}, &stubAssistant{answer: "ok"})

	rr := postChat(handler, "/api/chat/0.0.1234/message", `{}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for missing question, got %d", rr.Code)
	}
}

func TestHandleChatMessageBadPath(t *testing.T) {
	handler := newChatTestHandler(&stubFeed{}, &stubAssistant{answer: "ok"})

	rr := postChat(handler, "/api/chat/0.0.1234", `{"question":"hi"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400 for malformed path, got %d", rr.Code)
	}
}

func TestHandleChatMessageMethodNotAllowed(t *testing.T) {
	handler := newChatTestHandler(&stubFeed{}, &stubAssistant{answer: "ok"})

	req := httptest.NewRequest(http.MethodGet, "/api/chat/0.0.1234/message", nil)
	rr := httptest.NewRecorder()
	handler.HandleChatMessage(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("Expected 405, got %d", rr.Code)
	}
}
