package http

import (
	"net/http"
)

func (h *Handler) credits(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeMissingBearerError(r.Context(), w, "credits")
		return
	}
	balance, err := h.service.Balance(r.Context(), claims.AccountID)
	if err != nil {
		writeMappedError(r.Context(), w, "credits", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"credits": balance.Credits})
}

func (h *Handler) creditHistory(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeMissingBearerError(r.Context(), w, "credit_history")
		return
	}
	entries, err := h.service.LedgerHistory(r.Context(), claims.AccountID)
	if err != nil {
		writeMappedError(r.Context(), w, "credit_history", err)
		return
	}
	items := make([]map[string]any, 0, len(entries))
	for _, entry := range entries {
		items = append(items, map[string]any{
			"delta":      entry.Delta,
			"reason":     entry.Reason,
			"created_at": entry.CreatedAt,
		})
	}
	writeSuccess(w, http.StatusOK, map[string]any{"entries": items})
}

func (h *Handler) startDownload(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeMissingBearerError(r.Context(), w, "download")
		return
	}
	var req struct {
		URL  string `json:"url"`
		Mode string `json:"mode"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "download", err)
		return
	}
	result, err := h.service.StartDownload(r.Context(), claims.AccountID, req.URL, req.Mode)
	if err != nil {
		writeMappedError(r.Context(), w, "download", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"title": result.Title,
		"path":  result.Path,
	})
}
