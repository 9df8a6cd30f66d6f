package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/geniusbot/core/internal/domain"
)

func (h *Handler) adminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.AdminStats(r.Context())
	if err != nil {
		writeMappedError(r.Context(), w, "admin_stats", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"accounts":          stats.Accounts,
		"total_credits":     stats.TotalCredits,
		"pending_purchases": stats.PendingPurchases,
	})
}

// resolveLatestPurchase is the account-keyed approval path: the admin
// names an account (optionally narrowed to a pack size) and the decision
// lands on that account's most recent pending request.
func (h *Handler) resolveLatestPurchase(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "account_id")
	var req struct {
		Resolution string `json:"resolution"`
		Pack       string `json:"pack"`
		Note       string `json:"note"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "resolve_latest_purchase", err)
		return
	}
	status, err := domain.ParsePurchaseResolution(req.Resolution)
	if err != nil {
		writeMappedError(r.Context(), w, "resolve_latest_purchase", err)
		return
	}
	var pack *domain.PackSize
	if req.Pack != "" {
		parsed, err := domain.ParsePackSize(req.Pack)
		if err != nil {
			writeMappedError(r.Context(), w, "resolve_latest_purchase", err)
			return
		}
		pack = &parsed
	}
	request, err := h.service.ResolveLatestFor(r.Context(), accountID, pack, status, req.Note)
	if err != nil {
		writeMappedError(r.Context(), w, "resolve_latest_purchase", err)
		return
	}
	writeSuccess(w, http.StatusOK, purchasePayload(request))
}

func (h *Handler) grantCredits(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID string `json:"account_id"`
		Amount    int    `json:"amount"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "grant_credits", err)
		return
	}
	if err := h.service.AddCredits(r.Context(), req.AccountID, req.Amount); err != nil {
		writeMappedError(r.Context(), w, "grant_credits", err)
		return
	}
	writeMessage(w, http.StatusOK, "credits granted")
}

func (h *Handler) broadcast(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message string `json:"message"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "broadcast", err)
		return
	}
	count, err := h.service.Broadcast(r.Context(), req.Message)
	if err != nil {
		writeMappedError(r.Context(), w, "broadcast", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"recipients": count})
}
