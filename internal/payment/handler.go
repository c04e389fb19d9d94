package payment

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-media-go/internal/apperr"
)

// maxWebhookBytes caps webhook payloads.
const maxWebhookBytes = 65536

// Handler exposes checkout endpoints and the provider webhook.
type Handler struct {
	gw            Gateway
	webhookSecret string
	logger        *zap.SugaredLogger
}

func NewHandler(gw Gateway, webhookSecret string, logger *zap.SugaredLogger) *Handler {
	return &Handler{gw: gw, webhookSecret: webhookSecret, logger: logger}
}

// CheckoutRequest is the body of the create-checkout-session endpoint.
type CheckoutRequest struct {
	Cart []CartItem `json:"cart"`
}

func (h *Handler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperr.Write(w, h.logger, apperr.Validation("Invalid request body."))
		return
	}
	if err := ValidateCart(req.Cart); err != nil {
		msg := "Invalid cart item."
		if errors.Is(err, ErrEmptyCart) {
			msg = "Cart is empty."
		}
		apperr.Write(w, h.logger, apperr.Validation(msg))
		return
	}
	url, err := h.gw.CreateCheckoutSession(r.Context(), req.Cart)
	if err != nil {
		apperr.Write(w, h.logger, apperr.Upstream("Error creating Checkout Session.", err))
		return
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]string{"url": url})
}

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		apperr.Write(w, h.logger, apperr.Validation("Missing session id."))
		return
	}
	s, err := h.gw.GetSession(r.Context(), id)
	if err != nil {
		apperr.Write(w, h.logger, apperr.Upstream("Error fetching session details.", err))
		return
	}
	apperr.WriteJSON(w, http.StatusOK, s)
}

// Webhook verifies the Stripe-Signature header against the raw body.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		apperr.Write(w, h.logger, apperr.Validation("Webhook Error: "+err.Error()))
		return
	}
	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		h.logger.Warnw("webhook signature verification failed", "err", err)
		apperr.Write(w, h.logger, apperr.Validation("Webhook Error: "+err.Error()))
		return
	}

	switch string(event.Type) {
	case "checkout.session.completed":
		var id any
		if event.Data != nil {
			id = event.Data.Object["id"]
		}
		h.logger.Infow("payment completed", "session", id)
	case "payment_intent.succeeded":
		h.logger.Infow("payment intent succeeded", "event", event.ID)
	default:
		h.logger.Debugw("unhandled webhook event", "type", event.Type)
	}
	apperr.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
}
