package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gamertech/tradein-backend/internal/entity"
	"github.com/gamertech/tradein-backend/internal/infra/http/middleware"
	"github.com/gamertech/tradein-backend/internal/usecase"
)

type LeadHandler struct {
	recordLead  *usecase.RecordLeadUseCase
	rateLimiter *RateLimiter
}

func NewLeadHandler(recordLead *usecase.RecordLeadUseCase) *LeadHandler {
	return &LeadHandler{
		recordLead:  recordLead,
		rateLimiter: NewRateLimiter(10, time.Minute), // 10 req/min per IP
	}
}

type leadAck struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// HandleBrowsing records a step-1 lead: the visitor saw a quote but has
// not locked in yet.
func (h *LeadHandler) HandleBrowsing(w http.ResponseWriter, r *http.Request) {
	h.capture(w, r, entity.StageBrowsing)
}

// HandleLockIn records a step-2 lead: the visitor committed to the
// trade-in, which cancels any pending follow-up.
func (h *LeadHandler) HandleLockIn(w http.ResponseWriter, r *http.Request) {
	h.capture(w, r, entity.StageCompleted)
}

// capture always acknowledges ok:true once the payload parses. The actual
// write happens behind the queue; a broker or database problem is an
// operator problem, never a storefront error — quoting must not break
// because lead capture is down.
func (h *LeadHandler) capture(w http.ResponseWriter, r *http.Request, stage string) {
	w.Header().Set("Content-Type", "application/json")

	clientIP := getClientIP(r)
	if !h.rateLimiter.Allow(clientIP) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(leadAck{OK: false, Error: "Too many requests. Please try again later."})
		return
	}

	var sub usecase.LeadSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(leadAck{OK: false, Error: "Invalid JSON"})
		return
	}

	if err := h.recordLead.Execute(r.Context(), sub, stage); err != nil {
		log.Printf("❌ Lead capture (%s) failed: %v", stage, err)
	} else {
		middleware.RecordLeadEnqueued(stage)
	}

	json.NewEncoder(w).Encode(leadAck{OK: true})
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
}

type visitor struct {
	count     int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
	}

	go rl.cleanup()
	return rl
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	now := time.Now()

	if !exists {
		rl.visitors[ip] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

func (rl *RateLimiter) cleanup() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for ip, v := range rl.visitors {
			if now.Sub(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}
