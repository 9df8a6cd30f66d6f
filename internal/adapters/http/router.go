package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/geniusbot/core/internal/application"
	"github.com/geniusbot/core/internal/ports"
)

// Handler is the HTTP adapter entrypoint for the web front end.
// Keeping only application-level dependencies here preserves clean adapter
// boundaries.
type Handler struct {
	service     *application.Service
	signer      ports.TokenSigner
	adminAPIKey string
}

// NewHandler constructs an HTTP handler bound to the application service.
func NewHandler(service *application.Service, signer ports.TokenSigner, adminAPIKey string) *Handler {
	return &Handler{service: service, signer: signer, adminAPIKey: adminAPIKey}
}

// NewRouter registers the web routes and the middleware stack.
// Centralizing routes here keeps auth and error behavior consistent across
// endpoints.
func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/register", handler.register)
		r.Post("/login", handler.login)
		r.Post("/recover", handler.recoverAccount)

		r.Group(func(r chi.Router) {
			r.Use(handler.authMiddleware)
			r.Post("/logout", handler.logout)
			r.Get("/me", handler.me)
			r.Get("/credits", handler.credits)
			r.Get("/credits/history", handler.creditHistory)
			r.Post("/downloads", handler.startDownload)
			r.Post("/purchases", handler.createPurchase)
			r.Get("/purchases/unseen", handler.unseenPurchases)
			r.Post("/purchases/ack", handler.acknowledgePurchases)
			r.Get("/notifications", handler.listNotifications)
			r.Post("/notifications/read", handler.markNotificationsRead)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(handler.adminMiddleware)
			r.Get("/stats", handler.adminStats)
			r.Post("/purchases/{request_id}/resolve", handler.resolvePurchase)
			r.Post("/accounts/{account_id}/purchases/resolve", handler.resolveLatestPurchase)
			r.Post("/shop/close", handler.closeShop)
			r.Post("/credits/grant", handler.grantCredits)
			r.Post("/broadcast", handler.broadcast)
		})
	})

	return r
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeMessage(w, http.StatusOK, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.AdminStats(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "NOT_READY", "store unavailable")
		return
	}
	writeMessage(w, http.StatusOK, "ready")
}
