package http

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/geniusbot/core/internal/application"
	"github.com/geniusbot/core/internal/domain"
	"github.com/geniusbot/core/internal/ports"
)

// Web accounts are keyed on the client address, mirroring the chat front
// end's chat-ID origins: one account per requester, so a browser cannot
// mint fresh accounts (and their initial credit grants) at will.
func webOrigin(r *http.Request) string {
	return "web:" + clientIP(r)
}

// clientIP extracts the originating address, preferring the first
// X-Forwarded-For hop set by the reverse proxy over the socket peer.
func clientIP(r *http.Request) string {
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || host == "" {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req application.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "register", err)
		return
	}
	req.Origin = webOrigin(r)

	account, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeMappedError(r.Context(), w, "register", err)
		return
	}

	writeSuccess(w, http.StatusCreated, map[string]any{
		"account_id": account.ID,
		"username":   account.Username,
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "login", err)
		return
	}
	req.Origin = webOrigin(r)

	account, sessionToken, err := h.service.AuthenticateByUsername(r.Context(), req.Username, req.Password, req.Origin)
	if err != nil {
		writeMappedError(r.Context(), w, "login", err)
		return
	}

	h.writeSessionEnvelope(w, r, "login", account, sessionToken)
}

// recoverAccount re-binds an account to the requester. With a channel
// handle it targets the linked account; without one it falls back to the
// account historically bound to the requester's own address.
func (h *Handler) recoverAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChannelHandle string `json:"channel_handle"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeValidationError(r.Context(), w, "recover", err)
		return
	}

	var (
		account      domain.Account
		sessionToken string
		err          error
	)
	if handle := strings.TrimSpace(req.ChannelHandle); handle != "" {
		account, sessionToken, err = h.service.RecoverByChannel(r.Context(), handle, webOrigin(r))
	} else {
		account, sessionToken, err = h.service.RecoverByOrigin(r.Context(), webOrigin(r))
	}
	if err != nil {
		writeMappedError(r.Context(), w, "recover", err)
		return
	}

	h.writeSessionEnvelope(w, r, "recover", account, sessionToken)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeMissingBearerError(r.Context(), w, "logout")
		return
	}
	if err := h.service.Invalidate(r.Context(), claims.AccountID); err != nil {
		writeMappedError(r.Context(), w, "logout", err)
		return
	}
	writeMessage(w, http.StatusOK, "logged out")
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFromContext(r.Context())
	if !ok {
		writeMissingBearerError(r.Context(), w, "me")
		return
	}
	account, err := h.service.AccountByID(r.Context(), claims.AccountID)
	if err != nil {
		writeMappedError(r.Context(), w, "me", err)
		return
	}
	balance, err := h.service.Balance(r.Context(), account.ID)
	if err != nil {
		writeMappedError(r.Context(), w, "me", err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"account_id":     account.ID,
		"username":       account.Username,
		"channel_handle": account.LinkedChannelID,
		"credits":        balance.Credits,
		"created_at":     account.CreatedAt,
	})
}

func (h *Handler) writeSessionEnvelope(w http.ResponseWriter, r *http.Request, operation string, account domain.Account, sessionToken string) {
	now := time.Now().UTC()
	envelope, err := h.signer.Sign(ports.WebClaims{
		AccountID:    account.ID,
		SessionToken: sessionToken,
		IssuedAt:     now,
	})
	if err != nil {
		writeMappedError(r.Context(), w, operation, err)
		return
	}
	writeSuccess(w, http.StatusOK, map[string]any{
		"account_id": account.ID,
		"token":      envelope,
	})
}
