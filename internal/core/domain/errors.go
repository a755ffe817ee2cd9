package domain

import "github.com/pkg/errors"

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrProductNotFound   = errors.New("product not found")
	ErrItemNotFound      = errors.New("item not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNotConnected      = errors.New("payment provider account not connected")
	ErrSessionNotFound   = errors.New("session not found")
)
