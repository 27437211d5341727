package payments

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/attnlabs/viral-middleware/pkg/app/errors"
	apphttp "github.com/attnlabs/viral-middleware/pkg/app/http"
	"github.com/attnlabs/viral-middleware/pkg/auth"
)

// maxWebhookBody caps webhook payload reads.
const maxWebhookBody = 1 << 16

type HTTP struct {
	service *Service
	logger  *zap.Logger
}

// RegisterRoutes registers authenticated payment endpoints.
func RegisterRoutes(r chi.Router, service *Service, logger *zap.Logger) {
	h := &HTTP{service: service, logger: logger}

	r.Post("/api/payments/create-intent", apphttp.HandleError(h.createIntent))
	r.Post("/api/payments/confirm-stripe", apphttp.HandleError(h.confirmStripe))
	r.Post("/api/payments/use-wallet", apphttp.HandleError(h.useWallet))
	r.Get("/api/payments/wallet-balance", apphttp.HandleError(h.walletBalance))
}

// RegisterWebhook registers the unauthenticated provider callback.
// Requests are authenticated by signature, not bearer token.
func RegisterWebhook(r chi.Router, service *Service, webhookSecret string, logger *zap.Logger) {
	h := &HTTP{service: service, logger: logger}

	r.Post("/api/payments/webhook", apphttp.HandleError(func(w http.ResponseWriter, req *http.Request) error {
		return h.webhook(w, req, webhookSecret)
	}))
}

func (h *HTTP) createIntent(w http.ResponseWriter, r *http.Request) error {
	identity := auth.IdentityFromContext(r.Context())

	result, err := h.service.CreateStripeIntent(r.Context(), identity.UserID, identity.WalletAddress)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, result)
	return nil
}

type confirmRequest struct {
	PaymentID string `json:"payment_id"`
}

type paymentResponse struct {
	PaymentID   string `json:"payment_id"`
	Provider    string `json:"provider"`
	Status      string `json:"status"`
	AmountCents int64  `json:"amount_cents"`
}

func (h *HTTP) confirmStripe(w http.ResponseWriter, r *http.Request) error {
	identity := auth.IdentityFromContext(r.Context())

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperrors.BadRequestError(err, "invalid request body")
	}
	if req.PaymentID == "" {
		return apperrors.BadRequestError(errors.New("payment_id is required"), "payment_id is required")
	}

	payment, err := h.service.ConfirmStripe(r.Context(), identity.UserID, req.PaymentID)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, toPaymentResponse(payment))
	return nil
}

func (h *HTTP) useWallet(w http.ResponseWriter, r *http.Request) error {
	identity := auth.IdentityFromContext(r.Context())

	payment, err := h.service.UseWallet(r.Context(), identity.UserID, identity.WalletAddress)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, toPaymentResponse(payment))
	return nil
}

type balanceResponse struct {
	BalanceCents int64 `json:"balance_cents"`
}

func (h *HTTP) walletBalance(w http.ResponseWriter, r *http.Request) error {
	identity := auth.IdentityFromContext(r.Context())

	balance, err := h.service.WalletBalance(r.Context(), identity.UserID)
	if err != nil {
		return err
	}

	apphttp.WriteJSON(w, http.StatusOK, &balanceResponse{BalanceCents: balance})
	return nil
}

type webhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID string `json:"id"`
		} `json:"object"`
	} `json:"data"`
}

func (h *HTTP) webhook(w http.ResponseWriter, r *http.Request, secret string) error {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		return apperrors.BadRequestError(err, "failed to read webhook body")
	}

	signature := r.Header.Get("Stripe-Signature")
	if err := VerifyWebhookSignature(payload, signature, secret, time.Now()); err != nil {
		h.logger.Warn("rejected webhook", zap.Error(err))
		return apperrors.UnAuthorizedError(err, "invalid webhook signature")
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return apperrors.BadRequestError(err, "invalid webhook payload")
	}

	switch event.Type {
	case "payment_intent.succeeded":
		if err := h.service.HandleIntentSucceeded(r.Context(), event.Data.Object.ID); err != nil {
			return err
		}
	default:
		h.logger.Debug("ignoring webhook event", zap.String("type", event.Type))
	}

	apphttp.WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
	return nil
}

func toPaymentResponse(p *Payment) *paymentResponse {
	return &paymentResponse{
		PaymentID:   p.ID,
		Provider:    string(p.Provider),
		Status:      string(p.Status),
		AmountCents: p.AmountCents,
	}
}
