// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package billing

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/bookshelfie/shelfie/internal/platform/apperr"
)

// # Stripe Gateway

// metadataUserKey carries the Shelfie member ID through Stripe objects so
// webhooks can be attributed without a reverse lookup.
const metadataUserKey = "user_id"

// EventKind classifies a parsed webhook into the transitions the mirror
// cares about.
type EventKind string

const (
	EventCheckoutCompleted   EventKind = "checkout_completed"
	EventSubscriptionChanged EventKind = "subscription_changed"
	EventSubscriptionEnded   EventKind = "subscription_ended"
	// EventIgnored marks event types the mirror does not track.
	EventIgnored EventKind = "ignored"
)

// SubscriptionEvent is the domain-level projection of a Stripe webhook.
type SubscriptionEvent struct {
	Kind             EventKind
	UserID           string
	StripeCustomerID string
	StripeSubID      string
	Status           SubscriptionStatus
	CurrentPeriodEnd time.Time
}

// StripeGateway talks to Stripe for checkout and webhook verification.
type StripeGateway struct {
	webhookSecret string
	priceID       string
	successURL    string
	cancelURL     string
}

/*
NewStripeGateway configures the Stripe SDK and returns a gateway.

Parameters:
  - secretKey: string (Stripe API secret key; set process-wide)
  - webhookSecret: string (Signing secret for webhook verification)
  - priceID: string (Price of the premium subscription)
  - baseURL: string (Web app origin for checkout redirect URLs)

Returns:
  - *StripeGateway: Ready-to-use gateway
*/
func NewStripeGateway(secretKey, webhookSecret, priceID, baseURL string) *StripeGateway {
	stripe.Key = secretKey

	return &StripeGateway{
		webhookSecret: webhookSecret,
		priceID:       priceID,
		successURL:    baseURL + "/premium/success?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:     baseURL + "/premium/cancelled",
	}
}

/*
CreateCheckoutSession opens a Stripe-hosted checkout for a member.

Description: The member ID rides along as both the client reference and
subscription metadata, so every later webhook about this subscription can be
attributed without a lookup.

Parameters:
  - userID: string

Returns:
  - string: Stripe-hosted checkout URL to redirect the member to
  - error: apperr.UpstreamUnavailable on Stripe failures
*/
func (gateway *StripeGateway) CreateCheckoutSession(userID string) (string, error) {
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(gateway.priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL:        stripe.String(gateway.successURL),
		CancelURL:         stripe.String(gateway.cancelURL),
		ClientReferenceID: stripe.String(userID),
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{metadataUserKey: userID},
		},
	}
	params.AddMetadata(metadataUserKey, userID)

	checkoutSession, err := session.New(params)
	if err != nil {
		return "", apperr.UpstreamUnavailable("Stripe", err)
	}

	return checkoutSession.URL, nil
}

/*
ParseEvent verifies a webhook signature and projects the event.

Parameters:
  - payload: []byte (Raw request body, pre-parse)
  - signature: string (Stripe-Signature header)

Returns:
  - SubscriptionEvent: Domain projection; Kind is EventIgnored for untracked types
  - error: apperr.Unauthorized on signature failure, decode failures otherwise
*/
func (gateway *StripeGateway) ParseEvent(payload []byte, signature string) (SubscriptionEvent, error) {
	event, err := webhook.ConstructEvent(payload, signature, gateway.webhookSecret)
	if err != nil {
		return SubscriptionEvent{}, apperr.Unauthorized("Invalid webhook signature")
	}

	switch event.Type {

	case stripe.EventTypeCheckoutSessionCompleted:
		var checkoutSession stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &checkoutSession); err != nil {
			return SubscriptionEvent{}, fmt.Errorf("stripe_gateway_session_decode_failed: %w", err)
		}
		return SubscriptionEvent{
			Kind:             EventCheckoutCompleted,
			UserID:           checkoutSession.ClientReferenceID,
			StripeCustomerID: objectID(checkoutSession.Customer),
			StripeSubID:      subscriptionID(checkoutSession.Subscription),
			Status:           StatusActive,
		}, nil

	case stripe.EventTypeCustomerSubscriptionUpdated, stripe.EventTypeCustomerSubscriptionDeleted:
		var subscription stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
			return SubscriptionEvent{}, fmt.Errorf("stripe_gateway_subscription_decode_failed: %w", err)
		}

		kind := EventSubscriptionChanged
		if event.Type == stripe.EventTypeCustomerSubscriptionDeleted {
			kind = EventSubscriptionEnded
		}

		return SubscriptionEvent{
			Kind:             kind,
			UserID:           subscription.Metadata[metadataUserKey],
			StripeCustomerID: objectID(subscription.Customer),
			StripeSubID:      subscription.ID,
			Status:           mapStripeStatus(subscription.Status),
			CurrentPeriodEnd: periodEnd(&subscription),
		}, nil
	}

	return SubscriptionEvent{Kind: EventIgnored}, nil
}

// mapStripeStatus folds Stripe's status set into the mirror's.
func mapStripeStatus(status stripe.SubscriptionStatus) SubscriptionStatus {
	switch status {
	case stripe.SubscriptionStatusActive:
		return StatusActive
	case stripe.SubscriptionStatusTrialing:
		return StatusTrialing
	case stripe.SubscriptionStatusPastDue:
		return StatusPastDue
	default:
		// incomplete, unpaid, canceled and friends all mean no entitlement.
		return StatusCanceled
	}
}

// periodEnd extracts the paid-through timestamp, which Stripe reports per
// subscription item.
func periodEnd(subscription *stripe.Subscription) time.Time {
	if subscription.Items == nil || len(subscription.Items.Data) == 0 {
		return time.Time{}
	}
	return time.Unix(subscription.Items.Data[0].CurrentPeriodEnd, 0)
}

// objectID returns a customer's ID, tolerating unexpanded references.
func objectID(customer *stripe.Customer) string {
	if customer == nil {
		return ""
	}
	return customer.ID
}

// subscriptionID returns a subscription's ID, tolerating unexpanded references.
func subscriptionID(subscription *stripe.Subscription) string {
	if subscription == nil {
		return ""
	}
	return subscription.ID
}
