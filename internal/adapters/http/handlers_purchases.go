package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/geniusbot/core/internal/domain"
)

func (h *Handler) createPurchase(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeMissingBearerError(r.Context(), w, "create_purchase")
		return
	}
	var req struct {
		Pack string `json:"pack"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "create_purchase", err)
		return
	}
	request, err := h.service.CreatePurchase(r.Context(), claims.AccountID, req.Pack, domain.ChannelWeb)
	if err != nil {
		writeMappedError(r.Context(), w, "create_purchase", err)
		return
	}
	writeSuccess(w, http.StatusCreated, purchasePayload(request))
}

func (h *Handler) unseenPurchases(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeMissingBearerError(r.Context(), w, "unseen_purchases")
		return
	}
	requests, err := h.service.UnseenPurchases(r.Context(), claims.AccountID)
	if err != nil {
		writeMappedError(r.Context(), w, "unseen_purchases", err)
		return
	}
	items := make([]map[string]any, 0, len(requests))
	for _, request := range requests {
		items = append(items, purchasePayload(request))
	}
	writeSuccess(w, http.StatusOK, map[string]any{"purchases": items})
}

func (h *Handler) acknowledgePurchases(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeMissingBearerError(r.Context(), w, "ack_purchases")
		return
	}
	var req struct {
		RequestIDs []string `json:"request_ids"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "ack_purchases", err)
		return
	}
	acknowledged, err := h.service.AcknowledgePurchases(r.Context(), claims.AccountID, req.RequestIDs)
	if err != nil {
		writeMappedError(r.Context(), w, "ack_purchases", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"acknowledged": acknowledged})
}

// resolvePurchase is the web counterpart of the admin bot's approval
// buttons; both funnel into the same single-transition resolution.
func (h *Handler) resolvePurchase(w http.ResponseWriter, r *http.Request) {
	requestID := chi.URLParam(r, "request_id")
	var req struct {
		Resolution string `json:"resolution"`
		Note       string `json:"note"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "resolve_purchase", err)
		return
	}
	status, err := domain.ParsePurchaseResolution(req.Resolution)
	if err != nil {
		writeMappedError(r.Context(), w, "resolve_purchase", err)
		return
	}
	request, err := h.service.ResolvePurchase(r.Context(), requestID, status, req.Note)
	if err != nil {
		writeMappedError(r.Context(), w, "resolve_purchase", err)
		return
	}
	writeSuccess(w, http.StatusOK, purchasePayload(request))
}

func (h *Handler) closeShop(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Note string `json:"note"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "close_shop", err)
		return
	}
	count, err := h.service.CloseShop(r.Context(), req.Note)
	if err != nil {
		writeMappedError(r.Context(), w, "close_shop", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"resolved": count})
}

func purchasePayload(request domain.PurchaseRequest) map[string]any {
	payload := map[string]any{
		"request_id":     request.ID,
		"account_id":     request.AccountID,
		"pack":           request.Pack.Credits(),
		"status":         string(request.Status),
		"origin_channel": request.OriginChannel,
		"created_at":     request.CreatedAt,
	}
	if request.ProcessedAt != nil {
		payload["processed_at"] = request.ProcessedAt
	}
	if request.ResponseNote != "" {
		payload["note"] = request.ResponseNote
	}
	return payload
}
