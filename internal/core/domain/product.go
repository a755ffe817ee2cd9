package domain

import "time"

type Product struct {
	ID             string    `json:"id" db:"id"`
	Name           string    `json:"name" db:"name"`
	PriceCents     int64     `json:"priceCents" db:"price_cents"`
	PriceFormatted string    `json:"priceFormatted" db:"-"`
	Tags           []string  `json:"tags" db:"-"`
	CreatedAt      time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" db:"updated_at"`
}

type ProductPatch struct {
	Name       *string   `json:"name"`
	PriceCents *int64    `json:"priceCents"`
	Tags       *[]string `json:"tags"`
}
