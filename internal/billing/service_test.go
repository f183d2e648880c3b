// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

package billing_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfie/shelfie/internal/billing"
	"github.com/bookshelfie/shelfie/internal/platform/apperr"
)

// # Test Doubles

type mockSubscriptionRepo struct {
	byUser   map[string]*billing.Subscription
	byStripe map[string]*billing.Subscription
	upserted *billing.Subscription
}

func newMockSubscriptionRepo() *mockSubscriptionRepo {
	return &mockSubscriptionRepo{
		byUser:   map[string]*billing.Subscription{},
		byStripe: map[string]*billing.Subscription{},
	}
}

func (m *mockSubscriptionRepo) Upsert(ctx context.Context, subscription *billing.Subscription) error {
	m.upserted = subscription
	m.byUser[subscription.UserID] = subscription
	m.byStripe[subscription.StripeSubID] = subscription
	return nil
}

func (m *mockSubscriptionRepo) FindByUserID(ctx context.Context, userID string) (*billing.Subscription, error) {
	subscription, ok := m.byUser[userID]
	if !ok {
		return nil, apperr.NotFound("Subscription")
	}
	return subscription, nil
}

func (m *mockSubscriptionRepo) FindByStripeSubID(ctx context.Context, stripeSubID string) (*billing.Subscription, error) {
	subscription, ok := m.byStripe[stripeSubID]
	if !ok {
		return nil, apperr.NotFound("Subscription")
	}
	return subscription, nil
}

type stubGateway struct {
	checkoutURL string
	checkoutErr error
	event       billing.SubscriptionEvent
	eventErr    error
}

func (s *stubGateway) CreateCheckoutSession(userID string) (string, error) {
	return s.checkoutURL, s.checkoutErr
}

func (s *stubGateway) ParseEvent(payload []byte, signature string) (billing.SubscriptionEvent, error) {
	return s.event, s.eventErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// # Entitlement

/*
TestSubscription_IsEntitling exercises the entitlement rules on the entity.
*/
func TestSubscription_IsEntitling(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name      string
		status    billing.SubscriptionStatus
		periodEnd time.Time
		entitled  bool
	}{
		{"active_unexpired", billing.StatusActive, now.Add(time.Hour), true},
		{"trialing_unexpired", billing.StatusTrialing, now.Add(time.Hour), true},
		{"active_expired", billing.StatusActive, now.Add(-time.Hour), false},
		{"past_due", billing.StatusPastDue, now.Add(time.Hour), false},
		{"canceled", billing.StatusCanceled, now.Add(time.Hour), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subscription := &billing.Subscription{Status: tt.status, CurrentPeriodEnd: tt.periodEnd}
			assert.Equal(t, tt.entitled, subscription.IsEntitling(now))
		})
	}
}

/*
TestHasActiveSubscription_NeverSubscribed verifies a missing mirror row means
free tier, not an error.
*/
func TestHasActiveSubscription_NeverSubscribed(t *testing.T) {
	service := billing.NewService(newMockSubscriptionRepo(), &stubGateway{}, discardLogger())

	entitled, err := service.HasActiveSubscription(context.Background(), "user-1")
	require.NoError(t, err)
	assert.False(t, entitled)
}

// # Checkout

/*
TestStartCheckout_AlreadySubscribed verifies an entitled member is not sent
back through checkout.
*/
func TestStartCheckout_AlreadySubscribed(t *testing.T) {
	repo := newMockSubscriptionRepo()
	repo.byUser["user-1"] = &billing.Subscription{
		UserID:           "user-1",
		Status:           billing.StatusActive,
		CurrentPeriodEnd: time.Now().Add(24 * time.Hour),
	}

	service := billing.NewService(repo, &stubGateway{checkoutURL: "https://checkout.stripe.com/x"}, discardLogger())

	_, err := service.StartCheckout(context.Background(), "user-1")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperr.As(err).Code)
}

/*
TestStartCheckout_ReturnsURL verifies the happy path hands back the
Stripe-hosted URL.
*/
func TestStartCheckout_ReturnsURL(t *testing.T) {
	service := billing.NewService(newMockSubscriptionRepo(),
		&stubGateway{checkoutURL: "https://checkout.stripe.com/x"}, discardLogger())

	url, err := service.StartCheckout(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.stripe.com/x", url)
}

// # Webhooks

/*
TestProcessWebhook_CheckoutCompleted verifies completed checkouts entitle the
member immediately.
*/
func TestProcessWebhook_CheckoutCompleted(t *testing.T) {
	repo := newMockSubscriptionRepo()
	gateway := &stubGateway{event: billing.SubscriptionEvent{
		Kind:             billing.EventCheckoutCompleted,
		UserID:           "user-1",
		StripeCustomerID: "cus_123",
		StripeSubID:      "sub_123",
		Status:           billing.StatusActive,
	}}

	service := billing.NewService(repo, gateway, discardLogger())

	require.NoError(t, service.ProcessWebhook(context.Background(), []byte("{}"), "sig"))
	require.NotNil(t, repo.upserted)

	assert.Equal(t, "user-1", repo.upserted.UserID)
	assert.Equal(t, billing.StatusActive, repo.upserted.Status)
	assert.True(t, repo.upserted.IsEntitling(time.Now()), "checkout grants provisional entitlement")
}

/*
TestProcessWebhook_SubscriptionEnded verifies cancellation revokes
entitlement.
*/
func TestProcessWebhook_SubscriptionEnded(t *testing.T) {
	repo := newMockSubscriptionRepo()
	repo.byStripe["sub_123"] = &billing.Subscription{UserID: "user-1", StripeSubID: "sub_123"}

	gateway := &stubGateway{event: billing.SubscriptionEvent{
		Kind:        billing.EventSubscriptionEnded,
		StripeSubID: "sub_123", // metadata lost; attribution via mirror
		Status:      billing.StatusCanceled,
	}}

	service := billing.NewService(repo, gateway, discardLogger())

	require.NoError(t, service.ProcessWebhook(context.Background(), []byte("{}"), "sig"))
	require.NotNil(t, repo.upserted)

	assert.Equal(t, "user-1", repo.upserted.UserID)
	assert.False(t, repo.upserted.IsEntitling(time.Now()))
}

/*
TestProcessWebhook_BadSignature verifies signature failures surface as
unauthorized so Stripe sees a rejection.
*/
func TestProcessWebhook_BadSignature(t *testing.T) {
	gateway := &stubGateway{eventErr: apperr.Unauthorized("Invalid webhook signature")}
	service := billing.NewService(newMockSubscriptionRepo(), gateway, discardLogger())

	err := service.ProcessWebhook(context.Background(), []byte("{}"), "bad")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

/*
TestProcessWebhook_IgnoredEvent verifies untracked event types are
acknowledged without a write.
*/
func TestProcessWebhook_IgnoredEvent(t *testing.T) {
	repo := newMockSubscriptionRepo()
	gateway := &stubGateway{event: billing.SubscriptionEvent{Kind: billing.EventIgnored}}

	service := billing.NewService(repo, gateway, discardLogger())

	require.NoError(t, service.ProcessWebhook(context.Background(), []byte("{}"), "sig"))
	assert.Nil(t, repo.upserted)
}
