package domain

import "time"

// Product is a catalog entry. The id is assigned when the catalog is seeded.
type Product struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Category    string     `json:"category"`
	Price       float64    `json:"price"`
	ImageURL    string     `json:"imageUrl"`
	Description string     `json:"description,omitempty"`
	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
}

// CategoryOption is a selectable category entry for the listing filters.
type CategoryOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
