// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

/*
Package billing manages premium subscriptions.

Stripe owns the money: checkout happens on Stripe-hosted pages and state
changes arrive as signed webhooks. This package keeps a local mirror of each
member's subscription so that entitlement checks (premium widgets, the
free-tier book cap) never call out to Stripe on the request path.

# Architecture

  - Checkout: The API creates a Stripe Checkout session and hands the member
    its URL; card data never touches Shelfie.
  - Mirror: Webhooks upsert billing.subscription rows; the mirror is the only
    thing entitlement checks read.
  - Entitlement: Active or trialing, with an unexpired period end.
*/
package billing

import (
	"context"
	"time"
)

// # Domain Entities

// SubscriptionStatus mirrors the Stripe subscription lifecycle states the
// entitlement check cares about.
type SubscriptionStatus string

const (
	StatusActive   SubscriptionStatus = "active"
	StatusTrialing SubscriptionStatus = "trialing"
	StatusPastDue  SubscriptionStatus = "past_due"
	StatusCanceled SubscriptionStatus = "canceled"
)

// Subscription is the local mirror of one member's Stripe subscription.
type Subscription struct {
	ID               string             `json:"id"`
	UserID           string             `json:"user_id"`
	StripeCustomerID string             `json:"-"`
	StripeSubID      string             `json:"-"`
	Status           SubscriptionStatus `json:"status"`
	CurrentPeriodEnd time.Time          `json:"current_period_end"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// IsEntitling reports whether this subscription grants premium access now.
//
// Past-due and canceled states never entitle, and even an active record stops
// entitling once its paid period lapses. That guards against a missed
// cancellation webhook extending premium forever.
func (subscription *Subscription) IsEntitling(now time.Time) bool {
	if subscription.Status != StatusActive && subscription.Status != StatusTrialing {
		return false
	}
	return subscription.CurrentPeriodEnd.After(now)
}

// # Repository Contracts

// SubscriptionRepository defines the persistence contract for the local
// subscription mirror.
type SubscriptionRepository interface {

	/*
		Upsert creates or replaces the mirror row for a member.

		Parameters:
		  - context: context.Context
		  - subscription: *Subscription

		Returns:
		  - error: Persistence failures
	*/
	Upsert(context context.Context, subscription *Subscription) error

	/*
		FindByUserID retrieves a member's subscription mirror.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - *Subscription: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByUserID(context context.Context, userID string) (*Subscription, error)

	/*
		FindByStripeSubID retrieves a mirror row by its Stripe subscription ID.

		Parameters:
		  - context: context.Context
		  - stripeSubID: string

		Returns:
		  - *Subscription: Hydrated entity
		  - error: apperr.NotFound or storage failures
	*/
	FindByStripeSubID(context context.Context, stripeSubID string) (*Subscription, error)
}
