package schema

// ShelfBookTable represents the 'shelf.book' table
type ShelfBookTable struct {
	Table       string
	ID          string
	UserID      string
	Title       string
	Author      string
	CoverURL    string
	OpenLibID   string
	TotalPages  string
	CurrentPage string
	Percentage  string
	Status      string
	StartedAt   string
	FinishedAt  string
	CreatedAt   string
	UpdatedAt   string
}

// ShelfBook is the schema definition for shelf.book
var ShelfBook = ShelfBookTable{
	Table:       "shelf.book",
	ID:          "id",
	UserID:      "userid",
	Title:       "title",
	Author:      "author",
	CoverURL:    "coverurl",
	OpenLibID:   "openlibid",
	TotalPages:  "totalpages",
	CurrentPage: "currentpage",
	Percentage:  "percentage",
	Status:      "status",
	StartedAt:   "startedat",
	FinishedAt:  "finishedat",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

// Columns returns all standard column names
func (t ShelfBookTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.Title, t.Author, t.CoverURL, t.OpenLibID,
		t.TotalPages, t.CurrentPage, t.Percentage, t.Status,
		t.StartedAt, t.FinishedAt, t.CreatedAt, t.UpdatedAt,
	}
}
