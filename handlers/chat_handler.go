package handlers

import (
	"errors"
	"net/http"

	"ledgergate-backend/models"
	"ledgergate-backend/services"
	"ledgergate-backend/topic"
)

// ChatHandler serves the quota-gated chat surface.
type ChatHandler struct {
	*BaseHandler
	chatService *services.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{
		BaseHandler: NewBaseHandler(),
		chatService: chatService,
	}
}

// HandleChatMessage processes one chat turn for a topic.
// @Summary Send chat message
// @Description Process a quota-gated chat turn and record it on the topic feed
// @Tags Chat
// @Accept json
// @Produce json
// @Param id path string true "Topic id"
// @Param request body models.ChatRequest true "Chat question"
// @Success 200 {object} models.ChatResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 429 {object} models.ErrorResponse
// @Router /api/chat/{id}/message [post]
func (h *ChatHandler) HandleChatMessage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	segments := pathSegments(r, "/api/chat/")
	if len(segments) != 2 || segments[1] != "message" {
		h.sendError(w, http.StatusBadRequest, "Invalid path, expected /api/chat/{id}/message")
		return
	}
	topicID := segments[0]

	var req models.ChatRequest
	if err := h.parseJSON(r, &req); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Question == "" {
		h.sendError(w, http.StatusBadRequest, "question is required")
		return
	}

	turn, err := h.chatService.SendMessage(r.Context(), topicID, req.Question, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrQuotaExhausted):
			h.sendError(w, http.StatusTooManyRequests, "Message quota exhausted for topic "+topicID)
		case errors.Is(err, topic.ErrProjectNotFound):
			h.sendError(w, http.StatusNotFound, "Project not found for topic "+topicID)
		default:
			h.sendError(w, http.StatusBadGateway, "Failed to process chat message: "+err.Error())
		}
		return
	}

	h.sendSuccess(w, models.ChatResponse{
		ID:                turn.ID,
		Question:          turn.Question,
		Answer:            turn.Answer,
		RemainingMessages: turn.RemainingMessages,
		Fallback:          turn.Fallback,
	})
}
