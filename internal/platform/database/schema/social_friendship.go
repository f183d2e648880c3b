package schema

// SocialFriendshipTable represents the 'social.friendship' table
type SocialFriendshipTable struct {
	Table       string
	ID          string
	RequesterID string
	AddresseeID string
	Status      string
	CreatedAt   string
	UpdatedAt   string
}

// SocialFriendship is the schema definition for social.friendship
var SocialFriendship = SocialFriendshipTable{
	Table:       "social.friendship",
	ID:          "id",
	RequesterID: "requesterid",
	AddresseeID: "addresseeid",
	Status:      "status",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

// Columns returns all standard column names
func (t SocialFriendshipTable) Columns() []string {
	return []string{
		t.ID, t.RequesterID, t.AddresseeID, t.Status, t.CreatedAt, t.UpdatedAt,
	}
}
