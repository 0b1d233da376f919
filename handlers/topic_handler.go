package handlers

import (
	"errors"
	"net/http"

	"ledgergate-backend/models"
	"ledgergate-backend/security"
	"ledgergate-backend/services"
	"ledgergate-backend/topic"
)

// TopicHandler serves topic feeds: classified history, quota queries and
// non-chat record appends.
type TopicHandler struct {
	*BaseHandler
	topicService *services.TopicService
}

// NewTopicHandler creates a new topic handler
func NewTopicHandler(topicService *services.TopicService) *TopicHandler {
	return &TopicHandler{
		BaseHandler:  NewBaseHandler(),
		topicService: topicService,
	}
}

// HandleCreateTopic creates a new topic feed.
// @Summary Create topic
// @Description Create a new topic feed via the ledger gateway
// @Tags Topics
// @Accept json
// @Produce json
// @Param request body models.CreateTopicRequest true "Topic parameters"
// @Success 200 {object} models.CreateTopicResponse
// @Router /api/topics [post]
func (h *TopicHandler) HandleCreateTopic(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.CreateTopicRequest
	if err := h.parseJSON(r, &req); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	receipt, err := h.topicService.CreateTopic(r.Context(), security.SanitizeMemo(req.Memo))
	if err != nil {
		h.sendError(w, http.StatusBadGateway, "Failed to create topic: "+err.Error())
		return
	}

	h.sendSuccess(w, models.CreateTopicResponse{
		TopicID:       receipt.TopicID,
		TransactionID: receipt.TransactionID,
	})
}

// HandleTopic routes /api/topics/{id}/... subresources.
func (h *TopicHandler) HandleTopic(w http.ResponseWriter, r *http.Request) {
	segments := pathSegments(r, "/api/topics/")
	if len(segments) != 2 {
		h.sendError(w, http.StatusBadRequest, "Invalid path, expected /api/topics/{id}/{messages|quota}")
		return
	}
	topicID := segments[0]
	if !security.ValidEntityID(topicID) {
		h.sendError(w, http.StatusBadRequest, "Invalid topic id: "+topicID)
		return
	}

	switch segments[1] {
	case "messages":
		h.handleMessages(w, r, topicID)
	case "quota":
		h.handleQuota(w, r, topicID)
	default:
		h.sendError(w, http.StatusNotFound, "Unknown topic resource: "+segments[1])
	}
}

// handleMessages returns the classified chat history for a topic.
// @Summary Topic messages
// @Description Fetch, reassemble and classify the full message history of a topic
// @Tags Topics
// @Produce json
// @Param id path string true "Topic id"
// @Success 200 {object} models.TopicMessagesResponse
// @Router /api/topics/{id}/messages [get]
func (h *TopicHandler) handleMessages(w http.ResponseWriter, r *http.Request, topicID string) {
	if r.Method != http.MethodGet {
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	resp, err := h.topicService.GetMessages(r.Context(), topicID)
	if err != nil {
		h.sendError(w, http.StatusBadGateway, "Failed to fetch topic messages: "+err.Error())
		return
	}

	h.sendSuccess(w, resp)
}

// handleQuota reads or updates the quota of a topic.
// @Summary Topic quota
// @Description Derive the current usage quota by replaying the topic feed
// @Tags Topics
// @Produce json
// @Param id path string true "Topic id"
// @Success 200 {object} topic.QuotaState
// @Failure 404 {object} models.ErrorResponse
// @Router /api/topics/{id}/quota [get]
// @Router /api/topics/{id}/quota [post]
func (h *TopicHandler) handleQuota(w http.ResponseWriter, r *http.Request, topicID string) {
	switch r.Method {
	case http.MethodGet:
		state, err := h.topicService.GetQuota(r.Context(), topicID)
		if err != nil {
			if errors.Is(err, topic.ErrProjectNotFound) {
				h.sendError(w, http.StatusNotFound, "Project not found for topic "+topicID)
				return
			}
			h.sendError(w, http.StatusBadGateway, "Failed to compute quota: "+err.Error())
			return
		}
		h.sendSuccess(w, state)

	case http.MethodPost, http.MethodPatch:
		var req models.QuotaUpdateRequest
		if err := h.parseJSON(r, &req); err != nil {
			h.sendError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		receipt, err := h.topicService.UpdateQuota(r.Context(), topicID, req)
		if err != nil {
			h.sendError(w, http.StatusBadRequest, "Failed to update quota: "+err.Error())
			return
		}
		h.sendSuccess(w, receipt)

	default:
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleCreateProject appends a project creation record.
// @Summary Create project
// @Description Append the project creation record that seeds a topic's chat allowance
// @Tags Projects
// @Accept json
// @Produce json
// @Param request body models.CreateProjectRequest true "Project parameters"
// @Success 200 {object} models.SuccessResponse
// @Router /api/projects [post]
func (h *TopicHandler) HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.CreateProjectRequest
	if err := h.parseJSON(r, &req); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	receipt, err := h.topicService.RecordProject(r.Context(), req)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "Failed to record project: "+err.Error())
		return
	}

	h.sendSuccess(w, receipt)
}

// HandleCreateSubscription appends a subscription-created record.
// @Summary Create subscription
// @Description Append a subscription-created record to a topic
// @Tags Subscriptions
// @Accept json
// @Produce json
// @Param request body models.CreateSubscriptionRequest true "Subscription parameters"
// @Success 200 {object} models.SuccessResponse
// @Router /api/subscriptions [post]
func (h *TopicHandler) HandleCreateSubscription(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req models.CreateSubscriptionRequest
	if err := h.parseJSON(r, &req); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	receipt, err := h.topicService.RecordSubscription(r.Context(), req)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "Failed to record subscription: "+err.Error())
		return
	}

	h.sendSuccess(w, receipt)
}
