package schema

// BillingSubscriptionTable represents the 'billing.subscription' table
type BillingSubscriptionTable struct {
	Table            string
	ID               string
	UserID           string
	StripeCustomerID string
	StripeSubID      string
	Status           string
	CurrentPeriodEnd string
	CreatedAt        string
	UpdatedAt        string
}

// BillingSubscription is the schema definition for billing.subscription
var BillingSubscription = BillingSubscriptionTable{
	Table:            "billing.subscription",
	ID:               "id",
	UserID:           "userid",
	StripeCustomerID: "stripecustomerid",
	StripeSubID:      "stripesubid",
	Status:           "status",
	CurrentPeriodEnd: "currentperiodend",
	CreatedAt:        "createdat",
	UpdatedAt:        "updatedat",
}

// Columns returns all standard column names
func (t BillingSubscriptionTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.StripeCustomerID, t.StripeSubID, t.Status,
		t.CurrentPeriodEnd, t.CreatedAt, t.UpdatedAt,
	}
}
