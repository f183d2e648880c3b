package schema

// UserAccountTable represents the 'users.account' table
type UserAccountTable struct {
	Table        string
	ID           string
	Phone        string
	Email        string
	Password     string
	DisplayName  string
	AvatarConfig string
	IsActive     string
	LastLoginAt  string
	CreatedAt    string
	UpdatedAt    string
	DeletedAt    string
}

// UserAccount is the schema definition for users.account
var UserAccount = UserAccountTable{
	Table:        "users.account",
	ID:           "id",
	Phone:        "phone",
	Email:        "email",
	Password:     "passwordhash",
	DisplayName:  "displayname",
	AvatarConfig: "avatarconfig",
	IsActive:     "isactive",
	LastLoginAt:  "lastloginat",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
	DeletedAt:    "deletedat",
}

// Columns returns all standard column names
func (t UserAccountTable) Columns() []string {
	return []string{
		t.ID, t.Phone, t.Email, t.Password, t.DisplayName, t.AvatarConfig,
		t.IsActive, t.LastLoginAt, t.CreatedAt, t.UpdatedAt, t.DeletedAt,
	}
}
