package domain

import "time"

// Transaction is one append-only stock movement. Rows are never updated or
// deleted; the item's quantity always equals the sum of its deltas.
type Transaction struct {
	ID        string    `json:"id" db:"id"`
	Seq       int64     `json:"-" db:"seq"`
	ItemID    string    `json:"itemId" db:"item_id"`
	Delta     int       `json:"delta" db:"delta"`
	Note      string    `json:"note" db:"note"`
	CreatedBy string    `json:"createdBy" db:"created_by"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
