package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gamertech/tradein-backend/internal/infra/http/middleware"
	"github.com/gamertech/tradein-backend/internal/infra/pricing"
	"github.com/gamertech/tradein-backend/internal/usecase"
)

type QuoteHandler struct {
	Prices *pricing.Store
}

func NewQuoteHandler(prices *pricing.Store) *QuoteHandler {
	return &QuoteHandler{Prices: prices}
}

// Handle computes an instant quote against the current catalog snapshot.
// Rejections (unknown part, incomplete PC build) are 200 responses with
// ok:false — the storefront shows them inline, they are not server errors.
func (h *QuoteHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.QuoteInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(usecase.QuoteResult{OK: false, Error: "Invalid JSON"})
		return
	}

	result := usecase.ComputeQuote(h.Prices.Snapshot(), input)

	outcome := "ok"
	if !result.OK {
		outcome = result.Code
	}
	middleware.RecordQuote(input.Mode, outcome)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
