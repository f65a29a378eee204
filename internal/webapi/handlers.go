// Package webapi serves the JSON side of the hotline: health, browser-client
// access tokens and a read-only view of stored interviews.
package webapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/roboyoz/hotline/internal/interview"
	"github.com/roboyoz/hotline/internal/twilio"
)

// Version is set at build time or defaults to dev.
var Version = "dev"

// Handlers holds the HTTP handler methods for the web API.
type Handlers struct {
	store  interview.Store
	tokens twilio.TokenConfig
	now    func() time.Time
}

// NewHandlers creates a new Handlers backed by store. tokens signs the
// access tokens handed to browser clients.
func NewHandlers(store interview.Store, tokens twilio.TokenConfig) *Handlers {
	return &Handlers{store: store, tokens: tokens, now: time.Now}
}

// HandleHealth returns a simple health check response.
func (h *Handlers) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// HandleToken mints a voice access token for the identity (or name) query
// parameter.
func (h *Handlers) HandleToken(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	identity := strings.TrimSpace(q.Get("identity"))
	if identity == "" {
		identity = strings.TrimSpace(q.Get("name"))
	}
	if identity == "" {
		writeError(w, http.StatusBadRequest, "identity is required")
		return
	}

	token, err := twilio.NewAccessToken(h.tokens, identity, h.now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Identity: identity, Token: token})
}

// HandleInterviews lists every stored interview.
func (h *Handlers) HandleInterviews(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	numbers, err := h.store.ListPhoneNumbers(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]InterviewSummary, 0, len(numbers))
	for _, n := range numbers {
		iv, err := h.store.LoadInterview(ctx, n)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out = append(out, summarize(iv))
	}
	writeJSON(w, http.StatusOK, out)
}

// HandleInterviewDetail returns the full record for one caller.
func (h *Handlers) HandleInterviewDetail(w http.ResponseWriter, r *http.Request) {
	phone := r.PathValue("phone")
	if phone == "" {
		writeError(w, http.StatusBadRequest, "phone number is required")
		return
	}

	iv, err := h.store.LoadInterview(r.Context(), phone)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// Stores hand back an empty record for unknown numbers.
	if len(iv.Calls) == 0 {
		writeError(w, http.StatusNotFound, "interview not found")
		return
	}
	writeJSON(w, http.StatusOK, iv)
}

// RegisterRoutes registers all web API routes on the given mux. Token
// requests come from browsers and get CORS headers for allowedOrigins.
func RegisterRoutes(mux *http.ServeMux, store interview.Store, tokens twilio.TokenConfig, allowedOrigins ...string) {
	h := NewHandlers(store, tokens)
	mux.HandleFunc("GET /api/health", h.HandleHealth)
	mux.HandleFunc("GET /api/interviews", h.HandleInterviews)
	mux.HandleFunc("GET /api/interviews/{phone}", h.HandleInterviewDetail)
	mux.Handle("/token", CORSMiddleware(http.HandlerFunc(h.HandleToken), allowedOrigins...))
}

// CORSMiddleware wraps a handler with CORS headers.
// If allowedOrigins is empty, no CORS header is set (same-origin only).
// Otherwise, the request Origin is checked against the allowed list.
func CORSMiddleware(next http.Handler, allowedOrigins ...string) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if len(allowedOrigins) > 0 && origin != "" && allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, ErrorResponse{Error: msg, Code: code})
}
