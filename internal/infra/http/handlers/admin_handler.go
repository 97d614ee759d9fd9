package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gamertech/tradein-backend/internal/infra/http/middleware"
	"github.com/gamertech/tradein-backend/internal/infra/pricing"
)

// AdminHandler lets operators swap the price catalog without a restart.
type AdminHandler struct {
	Prices   *pricing.Store
	Source   func() (string, error)
	AdminKey string
}

func NewAdminHandler(prices *pricing.Store, source func() (string, error), adminKey string) *AdminHandler {
	return &AdminHandler{
		Prices:   prices,
		Source:   source,
		AdminKey: adminKey,
	}
}

func (h *AdminHandler) HandleReloadPrices(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if h.AdminKey == "" || subtle.ConstantTimeCompare([]byte(r.Header.Get("X-Admin-Key")), []byte(h.AdminKey)) != 1 {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": "unauthorized"})
		return
	}

	text, err := h.Source()
	if err != nil {
		middleware.RecordCatalogReload("source_error")
		log.Printf("❌ Price reload: cannot read source: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": err.Error()})
		return
	}

	catalog, err := pricing.Load(text)
	if err != nil {
		middleware.RecordCatalogReload("parse_error")
		log.Printf("❌ Price reload: %v", err)
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": err.Error()})
		return
	}

	// One atomic swap; in-flight quotes keep their old snapshot.
	h.Prices.Swap(catalog)
	middleware.RecordCatalogReload("ok")
	log.Printf("✅ Price catalog reloaded: %d rows", len(catalog))

	json.NewEncoder(w).Encode(map[string]any{"ok": true, "rows": len(catalog)})
}
