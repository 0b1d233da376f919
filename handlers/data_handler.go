package handlers

import (
	"net/http"
	"strconv"

	"ledgergate-backend/storage"
)

// DataHandler serves the advisory archive of append receipts and minted
// licenses. The topic feed stays the source of truth; this surface exists
// for dashboards.
type DataHandler struct {
	*BaseHandler
	archive storage.Archive
}

// NewDataHandler creates a new data handler
func NewDataHandler(archive storage.Archive) *DataHandler {
	return &DataHandler{
		BaseHandler: NewBaseHandler(),
		archive:     archive,
	}
}

// HandleReceipts lists archived append receipts.
// @Summary List receipts
// @Description List archived append receipts, newest first
// @Tags Data
// @Produce json
// @Param topic query string false "Filter by topic id"
// @Param limit query int false "Maximum results (default 100)"
// @Success 200 {object} models.SuccessResponse
// @Router /api/data/receipts [get]
func (h *DataHandler) HandleReceipts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}

	receipts, err := h.archive.ListReceipts(r.Context(), r.URL.Query().Get("topic"), limit)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "Failed to list receipts: "+err.Error())
		return
	}

	h.sendSuccess(w, receipts)
}

// HandleLicenses lists archived license mints.
// @Summary List archived licenses
// @Description List minted licenses from the archive, newest first
// @Tags Data
// @Produce json
// @Param account query string false "Filter by account id"
// @Success 200 {object} models.SuccessResponse
// @Router /api/data/licenses [get]
func (h *DataHandler) HandleLicenses(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	licenses, err := h.archive.ListLicenses(r.Context(), r.URL.Query().Get("account"))
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "Failed to list licenses: "+err.Error())
		return
	}

	h.sendSuccess(w, licenses)
}
