package rest

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/connect360/tagdrop/models"
	"github.com/connect360/tagdrop/service"
)

type Handler struct {
	Service *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{Service: svc}
}

type dropTokenResponse struct {
	Token string `json:"token"`
}

func (h *Handler) HandleDropToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	token, err := h.Service.GenerateDropToken()
	if err != nil {
		log.Printf("Generate drop token failed: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.sendResponse(w, http.StatusOK, dropTokenResponse{Token: token})
}

func (h *Handler) HandleDrop(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleFetchDrop(w, r)

	case http.MethodPost:
		h.handleSubmitDrop(w, r)

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type dropFetchResponse struct {
	Ok         bool                 `json:"ok"`
	Messages   []models.DropMessage `json:"messages"`
	TTLDays    int                  `json:"ttlDays"`
	ServerTime string               `json:"serverTime"`
}

// genericFetchEnvelope is the single response shape for every JSON read
// outcome: populated inbox, empty inbox, malformed token, rate limited.
// One shape means no structural oracle.
func genericFetchEnvelope(messages []models.DropMessage) dropFetchResponse {
	if messages == nil {
		messages = []models.DropMessage{}
	}
	return dropFetchResponse{
		Ok:         true,
		Messages:   messages,
		TTLDays:    service.MessageTTLDays,
		ServerTime: time.Now().UTC().Format(time.RFC3339),
	}
}

func (h *Handler) handleFetchDrop(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	if !wantsJSON(r) {
		// The HTML shell carries no data; it fetches the JSON itself.
		setNoStoreHeaders(w)
		h.renderDropPage(w, token)
		return
	}

	messages, err := h.Service.FetchDropMessages(r.Context(), token, requesterIP(r))

	time.Sleep(h.Service.ResponseJitter())
	setNoStoreHeaders(w)

	switch {
	case errors.Is(err, service.ErrRateLimited):
		h.sendResponse(w, http.StatusTooManyRequests, genericFetchEnvelope(nil))

	case err != nil:
		log.Printf("Fetch drop messages failed: %v", err)
		h.sendResponse(w, http.StatusInternalServerError, errorResponse{Ok: false, Error: "internal error"})

	default:
		h.sendResponse(w, http.StatusOK, genericFetchEnvelope(messages))
	}
}

type submitDropRequest struct {
	Content string `json:"content"`
}

type submitDropResponse struct {
	Ok       bool `json:"ok"`
	Accepted bool `json:"accepted"`
}

type errorResponse struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error"`
}

func (h *Handler) handleSubmitDrop(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	// A malformed body degrades to empty content and fails the length
	// check; no separate response shape for it.
	var req submitDropRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	accepted, err := h.Service.SubmitDropMessage(r.Context(), token, req.Content, requesterIP(r))

	time.Sleep(h.Service.ResponseJitter())
	setNoStoreHeaders(w)

	switch {
	case errors.Is(err, service.ErrRateLimited):
		h.sendResponse(w, http.StatusTooManyRequests, submitDropResponse{Ok: true, Accepted: false})

	case errors.Is(err, service.ErrContentLength):
		h.sendResponse(w, http.StatusBadRequest, errorResponse{Ok: false, Error: service.ErrContentLength.Error()})

	case err != nil:
		log.Printf("Submit drop message failed: %v", err)
		h.sendResponse(w, http.StatusInternalServerError, errorResponse{Ok: false, Error: "internal error"})

	default:
		h.sendResponse(w, http.StatusAccepted, submitDropResponse{Ok: true, Accepted: accepted})
	}
}

type scanErrorDetail struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Actionable bool   `json:"actionable"`
}

type scanResponse struct {
	Success bool               `json:"success"`
	Locked  bool               `json:"locked"`
	Data    *models.ScanResult `json:"data,omitempty"`
	Error   *scanErrorDetail   `json:"error,omitempty"`
}

func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result, err := h.Service.ResolveScan(r.Context(), r.PathValue("tagCode"))

	switch {
	case errors.Is(err, service.ErrScanThrottled):
		h.sendResponse(w, http.StatusTooManyRequests, scanResponse{
			Error: &scanErrorDetail{Code: "THROTTLED", Message: "Too many scans right now. Try again shortly.", Actionable: true},
		})

	case errors.Is(err, service.ErrTagNotFound):
		h.sendResponse(w, http.StatusNotFound, scanResponse{
			Error: &scanErrorDetail{Code: "NOT_FOUND", Message: "This tag is not registered or does not exist.", Actionable: false},
		})

	case err != nil:
		log.Printf("Scan resolution failed: %v", err)
		h.sendResponse(w, http.StatusInternalServerError, scanResponse{
			Error: &scanErrorDetail{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred during scan resolution.", Actionable: false},
		})

	case result.Metadata.Status != models.TagActive:
		h.sendResponse(w, http.StatusForbidden, scanResponse{
			Locked: true,
			Data:   &result,
			Error:  &scanErrorDetail{Code: "LOCKED", Message: "This tag has not been activated yet or is suspended.", Actionable: false},
		})

	default:
		h.sendResponse(w, http.StatusOK, scanResponse{Success: true, Data: &result})
	}
}

func (h *Handler) sendResponse(w http.ResponseWriter, status int, resp any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func setNoStoreHeaders(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store, private, max-age=0")
	w.Header().Set("Pragma", "no-cache")
	w.Header().Set("Expires", "0")
}

func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// requesterIP prefers the first X-Forwarded-For hop set by the fronting
// proxy, falling back to the socket address.
func requesterIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "0.0.0.0"
}
