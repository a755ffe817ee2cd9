package port

import (
	"context"

	"github.com/rl1809/shop-backoffice/internal/core/domain"
)

type PaymentProvider interface {
	// AuthorizationURL builds the URL a seller follows to grant access
	AuthorizationURL(state string) string

	// ExchangeCode trades an OAuth authorization code for credentials
	ExchangeCode(ctx context.Context, code string) (*domain.ProviderCredentials, error)

	// GetPayment fetches the current state of a payment
	GetPayment(ctx context.Context, accessToken, paymentID string) (*domain.Payment, error)
}
