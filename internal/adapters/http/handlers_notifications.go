package http

import "net/http"

func (h *Handler) listNotifications(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeMissingBearerError(r.Context(), w, "notifications")
		return
	}
	items, err := h.service.Notifications(r.Context(), claims.AccountID)
	if err != nil {
		writeMappedError(r.Context(), w, "notifications", err)
		return
	}
	unread, err := h.service.UnreadNotificationCount(r.Context(), claims.AccountID)
	if err != nil {
		writeMappedError(r.Context(), w, "notifications", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"notifications": items,
		"unread":        unread,
	})
}

func (h *Handler) markNotificationsRead(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeMissingBearerError(r.Context(), w, "notifications_read")
		return
	}
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "notifications_read", err)
		return
	}
	marked, err := h.service.MarkNotificationsRead(r.Context(), claims.AccountID, req.IDs)
	if err != nil {
		writeMappedError(r.Context(), w, "notifications_read", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{"marked": marked})
}
