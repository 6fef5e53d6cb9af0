package entities

// Store and Product are read-only projections of the catalog used for display names.
type Store struct {
	ID   string `gorm:"primaryKey;size:64" json:"id"`
	Name string `json:"name"`
}

type Product struct {
	ID    string `gorm:"primaryKey;size:64" json:"id"`
	Title string `json:"title"`
}
