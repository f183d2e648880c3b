// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package billing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookshelfie/shelfie/internal/platform/apperr"
	"github.com/bookshelfie/shelfie/pkg/uuid"
)

// # Service Layer

// provisionalEntitlement is how long a checkout-completed event entitles a
// member before the first customer.subscription webhook confirms the real
// period end. Stripe sends that webhook within seconds; the window only has
// to outlive webhook delivery jitter.
const provisionalEntitlement = 24 * time.Hour

// CheckoutGateway abstracts the payment provider.
type CheckoutGateway interface {
	CreateCheckoutSession(userID string) (string, error)
	ParseEvent(payload []byte, signature string) (SubscriptionEvent, error)
}

// Service orchestrates checkout, webhook processing, and entitlement checks.
type Service struct {
	subscriptionRepository SubscriptionRepository
	gateway                CheckoutGateway
	logger                 *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(
	subscriptionRepo SubscriptionRepository,
	gateway CheckoutGateway,
	logger *slog.Logger,
) *Service {
	return &Service{
		subscriptionRepository: subscriptionRepo,
		gateway:                gateway,
		logger:                 logger,
	}
}

/*
HasActiveSubscription reports whether a member is entitled to premium.

Description: This is the single entitlement check behind token claims and the
free-tier book cap. A missing mirror row means free tier, not an error.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - bool: True when an active or trialing, unexpired subscription exists
  - error: Storage failures (never for absent subscriptions)
*/
func (service *Service) HasActiveSubscription(context context.Context, userID string) (bool, error) {
	subscription, err := service.subscriptionRepository.FindByUserID(context, userID)
	if err != nil {
		if apperr.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("billing_service_entitlement_failed: %w", err)
	}

	return subscription.IsEntitling(time.Now()), nil
}

/*
GetSubscription returns a member's subscription mirror state.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Subscription: Mirror row
  - error: NotFound for members who never subscribed, or storage failures
*/
func (service *Service) GetSubscription(context context.Context, userID string) (*Subscription, error) {
	subscription, err := service.subscriptionRepository.FindByUserID(context, userID)
	if err != nil {
		return nil, fmt.Errorf("billing_service_get_subscription_failed: %w", err)
	}
	return subscription, nil
}

/*
StartCheckout opens a Stripe checkout session for a member.

Description: A member who already holds an entitling subscription is not sent
back through checkout; double-billing a confused tap is worse than an error.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - string: Checkout URL to redirect the member to
  - error: Conflict for already-subscribed members, gateway failures otherwise
*/
func (service *Service) StartCheckout(context context.Context, userID string) (string, error) {

	entitled, err := service.HasActiveSubscription(context, userID)
	if err != nil {
		return "", err
	}
	if entitled {
		return "", apperr.Conflict("You already have an active subscription")
	}

	checkoutURL, err := service.gateway.CreateCheckoutSession(userID)
	if err != nil {
		return "", fmt.Errorf("billing_service_checkout_failed: %w", err)
	}

	service.logger.Info("checkout_session_created", slog.String("user_id", userID))

	return checkoutURL, nil
}

/*
ProcessWebhook verifies and applies a Stripe webhook to the mirror.

Description: Processing is idempotent: every tracked event upserts the
member's single mirror row, so replays and out-of-order delivery converge on
the latest Stripe state that was processed.

Parameters:
  - context: context.Context
  - payload: []byte (Raw request body)
  - signature: string (Stripe-Signature header)

Returns:
  - error: Unauthorized on bad signatures, storage failures otherwise
*/
func (service *Service) ProcessWebhook(context context.Context, payload []byte, signature string) error {

	event, err := service.gateway.ParseEvent(payload, signature)
	if err != nil {
		return err
	}

	switch event.Kind {

	case EventCheckoutCompleted:
		if event.UserID == "" {
			service.logger.Warn("webhook_checkout_missing_user")
			return nil
		}
		// Entitle immediately; the confirming subscription webhook replaces
		// the provisional period end with Stripe's real one.
		return service.upsertFromEvent(context, event, time.Now().Add(provisionalEntitlement))

	case EventSubscriptionChanged, EventSubscriptionEnded:
		if event.UserID == "" {
			// Metadata got lost somewhere; attribute via the mirror.
			existing, err := service.subscriptionRepository.FindByStripeSubID(context, event.StripeSubID)
			if err != nil {
				service.logger.Warn("webhook_subscription_unattributed",
					slog.String("stripe_sub_id", event.StripeSubID),
				)
				return nil
			}
			event.UserID = existing.UserID
		}
		return service.upsertFromEvent(context, event, event.CurrentPeriodEnd)
	}

	// Untracked event types are acknowledged so Stripe stops retrying them.
	return nil
}

// upsertFromEvent writes one event's state into the mirror.
func (service *Service) upsertFromEvent(context context.Context, event SubscriptionEvent, periodEnd time.Time) error {
	subscription := &Subscription{
		ID:               uuid.New(),
		UserID:           event.UserID,
		StripeCustomerID: event.StripeCustomerID,
		StripeSubID:      event.StripeSubID,
		Status:           event.Status,
		CurrentPeriodEnd: periodEnd,
	}

	if err := service.subscriptionRepository.Upsert(context, subscription); err != nil {
		return fmt.Errorf("billing_service_webhook_upsert_failed: %w", err)
	}

	service.logger.Info("subscription_mirror_updated",
		slog.String("user_id", event.UserID),
		slog.String("status", string(event.Status)),
	)

	return nil
}
