package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"oasis/internal/services/marketsetup"
	"oasis/pkg/errors"
	"oasis/pkg/logger"
)

// MarketSetupHandler streams market setup progress as NDJSON
type MarketSetupHandler struct {
	pipeline *marketsetup.Pipeline
	log      *logger.Logger
}

// NewMarketSetupHandler creates the market setup handler
func NewMarketSetupHandler(pipeline *marketsetup.Pipeline) *MarketSetupHandler {
	return &MarketSetupHandler{
		pipeline: pipeline,
		log:      logger.Get().With("component", "market_setup_handler"),
	}
}

type setupRequest struct {
	ListingID string `json:"listing_id"`
	StartDate string `json:"start_date"` // YYYY-MM-DD
	EndDate   string `json:"end_date"`
}

// HandleSetup serves POST /api/market/setup. The response is
// application/x-ndjson: one progress object per line, flushed as soon as the
// pipeline emits it. The stream always ends with a complete or error line.
func (h *MarketSetupHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req setupRequest
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

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, h.log, errors.Wrap(errors.ErrInternal, "streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(w)
	for ev := range h.pipeline.Run(r.Context(), marketsetup.Request{
		ListingID: listingID,
		StartDate: start,
		EndDate:   end,
	}) {
		if err := enc.Encode(ev); err != nil {
			// client went away; pipeline keeps its committed state
			h.log.Debugf("Aborting progress stream: %v", err)
			return
		}
		flusher.Flush()
	}
}
