package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"oasis/internal/agents"
	"oasis/internal/domain/event"
	"oasis/internal/domain/proposal"
	"oasis/internal/services/pricing"
	"oasis/pkg/errors"
	"oasis/pkg/logger"
)

// ProposalsHandler serves the proposal generation and lifecycle endpoints
type ProposalsHandler struct {
	coordinator *agents.Coordinator
	pricing     *pricing.Service
	log         *logger.Logger
}

// NewProposalsHandler creates the proposals handler
func NewProposalsHandler(coordinator *agents.Coordinator, pricingSvc *pricing.Service) *ProposalsHandler {
	return &ProposalsHandler{
		coordinator: coordinator,
		pricing:     pricingSvc,
		log:         logger.Get().With("component", "proposals_handler"),
	}
}

type generateRequest struct {
	ListingID string `json:"listing_id"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`
}

// HandleGenerate serves POST /api/proposals/generate
func (h *ProposalsHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, errors.NewValidationError("body", "malformed JSON", nil))
		return
	}

	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		writeError(w, h.log, errors.NewValidationError("listing_id", "must be a UUID", req.ListingID))
		return
	}
	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	result, err := h.coordinator.ProposalCompose(r.Context(), pricing.GenerateRequest{
		ListingID: listingID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// HandleList serves GET /api/proposals?listing_id=&status=
func (h *ProposalsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	listingID, err := uuid.Parse(r.URL.Query().Get("listing_id"))
	if err != nil {
		writeError(w, h.log, errors.NewValidationError("listing_id", "must be a UUID", r.URL.Query().Get("listing_id")))
		return
	}
	status := proposal.Status(r.URL.Query().Get("status"))

	proposals, err := h.pricing.ListProposals(r.Context(), listingID, status)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"proposals": proposals,
		"count":     len(proposals),
	})
}

type statusRequest struct {
	Status string `json:"status"`
}

// HandleStatus serves POST /api/proposals/{id}/status
func (h *ProposalsHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, h.log, errors.NewValidationError("id", "must be a UUID", r.PathValue("id")))
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.log, errors.NewValidationError("body", "malformed JSON", nil))
		return
	}

	updated, err := h.pricing.UpdateStatus(r.Context(), id, proposal.Status(req.Status))
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

// parseDateRange parses the wire date pair shared by several endpoints
func parseDateRange(startStr, endStr string) (time.Time, time.Time, error) {
	start, err := time.Parse(event.DateLayout, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewValidationError("start_date", "must be YYYY-MM-DD", startStr)
	}
	end, err := time.Parse(event.DateLayout, endStr)
	if err != nil {
		return time.Time{}, time.Time{}, errors.NewValidationError("end_date", "must be YYYY-MM-DD", endStr)
	}
	return start, end, nil
}
