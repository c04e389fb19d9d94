package router

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-media-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-media-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-media-go/internal/invoice"
	"github.com/ovaphlow/pitchfork/service-media-go/internal/media"
	"github.com/ovaphlow/pitchfork/service-media-go/internal/payment"
	"github.com/ovaphlow/pitchfork/service-media-go/internal/ratelimit"
	"github.com/ovaphlow/pitchfork/service-media-go/internal/user"
)

// Deps are the handlers and collaborators the router mounts.
// Payments, Invoices and AuthLimiter are optional.
type Deps struct {
	Config   *config.Config
	Logger   *zap.SugaredLogger
	Verifier auth.Verifier
	Users    *user.Handler
	Media    *media.Handler
	Payments *payment.Handler
	Invoices *invoice.Handler

	AuthLimiter *ratelimit.FixedWindowLimiter
	// Ping checks the database for /health; nil skips the check.
	Ping func(ctx context.Context) error
}

// RegisterRoutes mounts HTTP handlers on the standard library's http.ServeMux.
func RegisterRoutes(d Deps) http.Handler {
	mux := http.NewServeMux()
	logger := d.Logger

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Media gateway is running!"))
	})
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if d.Ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := d.Ping(ctx); err != nil {
				logger.Warnw("health check failed", "err", err)
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		_, _ = w.Write([]byte("ok"))
	})

	// credentials
	signup, signin := http.Handler(http.HandlerFunc(d.Users.Signup)), http.Handler(http.HandlerFunc(d.Users.Signin))
	if d.AuthLimiter != nil {
		limit := ratelimit.Middleware(d.AuthLimiter, "auth", logger)
		signup, signin = limit(signup), limit(signin)
	}
	mux.Handle("POST /signup", signup)
	mux.Handle("POST /signin", signin)

	// media
	anyRole := []string{auth.RoleAdmin, auth.RoleClient}
	mux.Handle("POST /api/upload", auth.Protect(http.HandlerFunc(d.Media.Upload), d.Verifier, logger, anyRole...))
	mux.Handle("GET /api/media", auth.Protect(http.HandlerFunc(d.Media.List), d.Verifier, logger, anyRole...))
	mux.Handle("DELETE /api/delete", auth.Protect(http.HandlerFunc(d.Media.Delete), d.Verifier, logger, auth.RoleAdmin))

	// payments
	if d.Payments != nil {
		mux.HandleFunc("POST /api/stripe/create-checkout-session", d.Payments.CreateCheckoutSession)
		mux.HandleFunc("GET /api/stripe/session/{id}", d.Payments.GetSession)
		mux.HandleFunc("POST /api/stripe/webhook", d.Payments.Webhook)
	}
	if d.Invoices != nil {
		mux.HandleFunc("POST /api/generate-invoice", d.Invoices.Generate)
		mux.Handle("GET "+invoice.URLPrefix, d.Invoices.Files())
	}

	return Chain(mux,
		RecoverMiddleware(logger),
		RequestIDMiddleware(),
		LoggingMiddleware(logger),
		SecurityHeadersMiddleware(),
		CORSMiddleware(d.Config.AllowedOrigin),
	)
}
