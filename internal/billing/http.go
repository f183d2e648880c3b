// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package billing

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bookshelfie/shelfie/internal/platform/apperr"
	"github.com/bookshelfie/shelfie/internal/platform/middleware"
	requestutil "github.com/bookshelfie/shelfie/internal/platform/request"
	"github.com/bookshelfie/shelfie/internal/platform/respond"
)

// # Definitions & Constructors

// webhookBodyLimit bounds webhook payload reads. Stripe events are small;
// anything larger is not Stripe.
const webhookBodyLimit = 1 << 16

// FieldCheckoutURL names the checkout URL field in responses.
const FieldCheckoutURL = "checkout_url"

// Handler implements billing HTTP endpoints.
type Handler struct {
	billingService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{billingService: service}
}

// Routes returns a [chi.Router] configured with billing routes.
//
// # Endpoints
//   - POST /checkout     : Open a premium checkout session (authenticated).
//   - GET  /subscription : Current subscription state (authenticated).
//   - POST /webhook      : Stripe event sink (signature-verified, no session).
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Post("/checkout", handler.checkout)
		protected.Get("/subscription", handler.subscription)
	})

	router.Post("/webhook", handler.Webhook)

	return router
}

// # Pre-Envelope Endpoints

type legacyCheckoutRequest struct {
	PriceID string `json:"priceId"`
	UserID  string `json:"userId"`
}

/*
LegacyCheckout opens a Stripe checkout session at the pre-versioning path.

POST /api/create-checkout

Description: Deployed mobile clients send {priceId, userId} and expect a raw
{url} object with no envelope. The price comes from server configuration and
the member identity from the session claims; the body fields are accepted but
not trusted.

Response:
  - 200: {url}: Stripe-hosted page to redirect to
  - 401: ErrUnauthorized: No session
  - 409: ErrConflict: Already subscribed
  - 502: UPSTREAM_UNAVAILABLE: Stripe failure
*/
func (handler *Handler) LegacyCheckout(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input legacyCheckoutRequest
	_ = requestutil.DecodeJSON(request, &input)

	checkoutURL, err := handler.billingService.StartCheckout(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.JSON(writer, http.StatusOK, map[string]string{"url": checkoutURL})
}

/*
Checkout opens a Stripe checkout session.

POST /api/v1/billing/checkout

Response:
  - 201: {checkout_url}: Stripe-hosted page to redirect to
  - 401: ErrUnauthorized: No session
  - 409: ErrConflict: Already subscribed
  - 502: UPSTREAM_UNAVAILABLE: Stripe failure
*/
func (handler *Handler) checkout(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	checkoutURL, err := handler.billingService.StartCheckout(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]string{FieldCheckoutURL: checkoutURL})
}

/*
Subscription returns the member's subscription mirror state.

GET /api/v1/billing/subscription

Response:
  - 200: Subscription
  - 404: ErrNotFound: Member has never subscribed
*/
func (handler *Handler) subscription(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	subscription, err := handler.billingService.GetSubscription(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, subscription)
}

/*
Webhook ingests Stripe events.

POST /api/v1/billing/webhook (also mounted at POST /api/billing/webhook)

Description: Authenticated by the Stripe-Signature header, not a member
session. Stripe retries non-2xx responses, so only genuine processing
failures return errors.

Response:
  - 200: {received: true}
  - 401: ErrUnauthorized: Signature verification failed
*/
func (handler *Handler) Webhook(writer http.ResponseWriter, request *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(request.Body, webhookBodyLimit))
	if err != nil {
		respond.Error(writer, request, apperr.Internal(err))
		return
	}

	signature := request.Header.Get("Stripe-Signature")

	if err := handler.billingService.ProcessWebhook(request.Context(), payload, signature); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]bool{"received": true})
}
