package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"ledgergate-backend/models"
	"ledgergate-backend/services"
)

// BaseHandler provides common functionality for all handlers
type BaseHandler struct{}

// NewBaseHandler creates a new base handler
func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

// sendJSON sends a JSON response
func (h *BaseHandler) sendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// sendError sends an error response
func (h *BaseHandler) sendError(w http.ResponseWriter, statusCode int, message string) {
	errorResp := models.NewErrorResponse(message, statusCode)
	h.sendJSON(w, statusCode, errorResp)
}

// sendSuccess sends a success response
func (h *BaseHandler) sendSuccess(w http.ResponseWriter, data interface{}) {
	successResp := models.NewSuccessResponse(data)
	h.sendJSON(w, http.StatusOK, successResp)
}

// parseJSON parses JSON from request
func (h *BaseHandler) parseJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// pathSegments splits the path remainder after a route prefix.
func pathSegments(r *http.Request, prefix string) []string {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, prefix), "/")
	if rest == "" {
		return nil
	}
	return strings.Split(rest, "/")
}

// HealthHandler handles health check requests
type HealthHandler struct {
	*BaseHandler
	healthService *services.HealthService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(healthService *services.HealthService) *HealthHandler {
	return &HealthHandler{
		BaseHandler:   NewBaseHandler(),
		healthService: healthService,
	}
}

// HandleHealth handles health check requests
// @Summary Health check
// @Description Report backend health
// @Tags Health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /api/health [get]
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	health := h.healthService.GetHealthStatus()
	h.sendSuccess(w, health)
}

// QRCodeHandler serves license verification QR codes.
type QRCodeHandler struct {
	*BaseHandler
	qrService      *services.QRCodeService
	licenseService *services.LicenseService
}

// NewQRCodeHandler creates a new QR code handler
func NewQRCodeHandler(qrService *services.QRCodeService, licenseService *services.LicenseService) *QRCodeHandler {
	return &QRCodeHandler{
		BaseHandler:    NewBaseHandler(),
		qrService:      qrService,
		licenseService: licenseService,
	}
}

// HandleLicenseQR renders a QR code PNG for a minted license.
// @Summary License QR code
// @Description Render a verification QR code for a license token
// @Tags Licenses
// @Produce png
// @Param tokenId path string true "License token id"
// @Success 200 {file} binary
// @Router /api/licenses/{tokenId}/qrcode [get]
func (h *QRCodeHandler) HandleLicenseQR(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	segments := pathSegments(r, "/api/licenses/")
	if len(segments) != 2 || segments[1] != "qrcode" {
		h.sendError(w, http.StatusBadRequest, "Invalid path, expected /api/licenses/{tokenId}/qrcode")
		return
	}
	tokenID := segments[0]

	serial := int64(0)
	if raw := r.URL.Query().Get("serial"); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
			serial = v
		}
	}
	if serial == 0 {
		if lic, err := h.licenseService.GetLicense(r.Context(), tokenID); err == nil {
			serial = lic.SerialNumber
		}
	}

	data, err := h.qrService.GenerateLicenseQR(tokenID, serial)
	if err != nil {
		h.sendError(w, http.StatusInternalServerError, "Failed to generate QR code")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
