package domain

import "time"

type Category struct {
	ID   string `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type Item struct {
	ID         string    `json:"id" db:"id"`
	CategoryID string    `json:"categoryId" db:"category_id"`
	Name       string    `json:"name" db:"name"`
	SKU        string    `json:"sku" db:"sku"`
	Quantity   int       `json:"quantity" db:"quantity"` // sum of the item's ledger deltas
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`
}

// ItemListing is the flat shape served by the legacy /items endpoint.
type ItemListing struct {
	ID           string `json:"id" db:"id"`
	Name         string `json:"name" db:"name"`
	SKU          string `json:"sku" db:"sku"`
	Quantity     int    `json:"quantity" db:"quantity"`
	CategoryID   string `json:"categoryId" db:"category_id"`
	CategoryName string `json:"categoryName" db:"category_name"`
}
