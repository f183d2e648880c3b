// Copyright (c) 2026 Shelfie. All rights reserved.
// Author: dev@bookshelfie.app

/*
Package billing (Postgres) implements the storage layer for the subscription
mirror.

# Schema Table Mapping
  - billing.subscription: At most one row per member.
*/
package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookshelfie/shelfie/internal/platform/apperr"
	"github.com/bookshelfie/shelfie/internal/platform/database/schema"
)

// PostgresSubscriptionRepository implements [SubscriptionRepository] using pgx.
type PostgresSubscriptionRepository struct {
	pool *pgxpool.Pool
}

// NewSubscriptionRepository creates a new Postgres implementation for the
// subscription mirror.
func NewSubscriptionRepository(pool *pgxpool.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// subscriptionSelectColumns builds the canonical column list for read queries.
func subscriptionSelectColumns() string {
	return fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s",
		schema.BillingSubscription.ID, schema.BillingSubscription.UserID,
		schema.BillingSubscription.StripeCustomerID, schema.BillingSubscription.StripeSubID,
		schema.BillingSubscription.Status, schema.BillingSubscription.CurrentPeriodEnd,
		schema.BillingSubscription.CreatedAt, schema.BillingSubscription.UpdatedAt,
	)
}

// scanSubscription hydrates a [Subscription] from a single-row result.
func scanSubscription(row pgx.Row) (*Subscription, error) {
	subscription := &Subscription{}
	err := row.Scan(
		&subscription.ID,
		&subscription.UserID,
		&subscription.StripeCustomerID,
		&subscription.StripeSubID,
		&subscription.Status,
		&subscription.CurrentPeriodEnd,
		&subscription.CreatedAt,
		&subscription.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("Subscription")
		}
		return nil, fmt.Errorf("postgres_subscription_repo_scan_failed: %w", err)
	}
	return subscription, nil
}

// # SubscriptionRepository Methods

/*
Upsert creates or replaces the mirror row for a member.

Description: Webhooks can arrive out of order and more than once, so the write
is keyed on the member and overwrites whatever state is there. The Stripe
state carried by the latest processed event wins.

Parameters:
  - context: context.Context
  - subscription: *Subscription

Returns:
  - error: Execution failures
*/
func (repository *PostgresSubscriptionRepository) Upsert(context context.Context, subscription *Subscription) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (%s) DO UPDATE SET
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = EXCLUDED.%s,
			%s = $7
		RETURNING %s, %s, %s`,
		schema.BillingSubscription.Table,
		schema.BillingSubscription.ID, schema.BillingSubscription.UserID,
		schema.BillingSubscription.StripeCustomerID, schema.BillingSubscription.StripeSubID,
		schema.BillingSubscription.Status, schema.BillingSubscription.CurrentPeriodEnd,
		schema.BillingSubscription.UserID,
		schema.BillingSubscription.StripeCustomerID, schema.BillingSubscription.StripeCustomerID,
		schema.BillingSubscription.StripeSubID, schema.BillingSubscription.StripeSubID,
		schema.BillingSubscription.Status, schema.BillingSubscription.Status,
		schema.BillingSubscription.CurrentPeriodEnd, schema.BillingSubscription.CurrentPeriodEnd,
		schema.BillingSubscription.UpdatedAt,
		schema.BillingSubscription.ID, schema.BillingSubscription.CreatedAt, schema.BillingSubscription.UpdatedAt,
	)

	err := repository.pool.QueryRow(context, query,
		subscription.ID,
		subscription.UserID,
		subscription.StripeCustomerID,
		subscription.StripeSubID,
		subscription.Status,
		subscription.CurrentPeriodEnd,
		time.Now(),
	).Scan(&subscription.ID, &subscription.CreatedAt, &subscription.UpdatedAt)

	if err != nil {
		return fmt.Errorf("postgres_subscription_repo_upsert_failed: %w", err)
	}

	return nil
}

/*
FindByUserID retrieves a member's subscription mirror.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *Subscription: Hydrated entity
  - error: apperr.NotFound or execution failures
*/
func (repository *PostgresSubscriptionRepository) FindByUserID(context context.Context, userID string) (*Subscription, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		subscriptionSelectColumns(), schema.BillingSubscription.Table,
		schema.BillingSubscription.UserID,
	)

	return scanSubscription(repository.pool.QueryRow(context, query, userID))
}

/*
FindByStripeSubID retrieves a mirror row by its Stripe subscription ID.

Parameters:
  - context: context.Context
  - stripeSubID: string

Returns:
  - *Subscription: Hydrated entity
  - error: apperr.NotFound or execution failures
*/
func (repository *PostgresSubscriptionRepository) FindByStripeSubID(context context.Context, stripeSubID string) (*Subscription, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		subscriptionSelectColumns(), schema.BillingSubscription.Table,
		schema.BillingSubscription.StripeSubID,
	)

	return scanSubscription(repository.pool.QueryRow(context, query, stripeSubID))
}
