package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"oasis/internal/agents"
	"oasis/pkg/errors"
	"oasis/pkg/logger"
)

// SyncHandler serves the channel-manager staleness endpoint
type SyncHandler struct {
	coordinator *agents.Coordinator
	log         *logger.Logger
}

// NewSyncHandler creates the sync handler
func NewSyncHandler(coordinator *agents.Coordinator) *SyncHandler {
	return &SyncHandler{
		coordinator: coordinator,
		log:         logger.Get().With("component", "sync_handler"),
	}
}

// HandleStatus serves GET /api/sync/status?listing_id=
func (h *SyncHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	listingID, err := uuid.Parse(r.URL.Query().Get("listing_id"))
	if err != nil {
		writeError(w, h.log, errors.NewValidationError("listing_id", "must be a UUID", r.URL.Query().Get("listing_id")))
		return
	}

	report, err := h.coordinator.SyncCheck(r.Context(), listingID)
	if err != nil {
		writeError(w, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}
