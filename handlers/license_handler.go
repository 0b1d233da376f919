package handlers

import (
	"net/http"

	"ledgergate-backend/models"
	"ledgergate-backend/services"
)

// LicenseHandler serves license NFT minting and lookups.
type LicenseHandler struct {
	*BaseHandler
	licenseService *services.LicenseService
	qrHandler      *QRCodeHandler
}

// NewLicenseHandler creates a new license handler
func NewLicenseHandler(licenseService *services.LicenseService, qrHandler *QRCodeHandler) *LicenseHandler {
	return &LicenseHandler{
		BaseHandler:    NewBaseHandler(),
		licenseService: licenseService,
		qrHandler:      qrHandler,
	}
}

// HandleLicenses handles POST /api/licenses (mint) and GET /api/licenses
// (list by account).
// @Summary Mint or list licenses
// @Description Mint a license NFT via the ledger gateway, or list archived licenses
// @Tags Licenses
// @Accept json
// @Produce json
// @Param request body models.MintLicenseRequest true "Mint parameters (POST)"
// @Param account query string false "Filter by account id (GET)"
// @Success 200 {object} models.LicenseResponse
// @Router /api/licenses [post]
// @Router /api/licenses [get]
func (h *LicenseHandler) HandleLicenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		var req models.MintLicenseRequest
		if err := h.parseJSON(r, &req); err != nil {
			h.sendError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}

		license, err := h.licenseService.MintLicense(r.Context(), req)
		if err != nil {
			h.sendError(w, http.StatusBadGateway, "Failed to mint license: "+err.Error())
			return
		}
		h.sendSuccess(w, license)

	case http.MethodGet:
		account := r.URL.Query().Get("account")
		licenses, err := h.licenseService.ListLicenses(r.Context(), account)
		if err != nil {
			h.sendError(w, http.StatusInternalServerError, "Failed to list licenses: "+err.Error())
			return
		}
		h.sendSuccess(w, licenses)

	default:
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// HandleLicense routes /api/licenses/{tokenId} and its qrcode subresource.
// @Summary Get license
// @Description Get an archived license by token id
// @Tags Licenses
// @Produce json
// @Param tokenId path string true "License token id"
// @Success 200 {object} storage.LicenseRecord
// @Failure 404 {object} models.ErrorResponse
// @Router /api/licenses/{tokenId} [get]
func (h *LicenseHandler) HandleLicense(w http.ResponseWriter, r *http.Request) {
	segments := pathSegments(r, "/api/licenses/")

	if len(segments) == 2 && segments[1] == "qrcode" {
		h.qrHandler.HandleLicenseQR(w, r)
		return
	}

	if r.Method != http.MethodGet {
		h.sendError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if len(segments) != 1 {
		h.sendError(w, http.StatusBadRequest, "Invalid path, expected /api/licenses/{tokenId}")
		return
	}

	license, err := h.licenseService.GetLicense(r.Context(), segments[0])
	if err != nil {
		h.sendError(w, http.StatusNotFound, "License not found: "+segments[0])
		return
	}

	h.sendSuccess(w, license)
}
