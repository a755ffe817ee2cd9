package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/rl1809/shop-backoffice/internal/core/domain"
)

const maxErrorBody = 4 << 10

type MercadoPagoConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	APIBaseURL   string
	Timeout      time.Duration
}

// MercadoPagoClient talks to the MercadoPago OAuth and payments APIs.
type MercadoPagoClient struct {
	cfg        MercadoPagoConfig
	httpClient *http.Client
	now        func() time.Time
}

func NewMercadoPagoClient(cfg MercadoPagoConfig) *MercadoPagoClient {
	return &MercadoPagoClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		now:        time.Now,
	}
}

func (c *MercadoPagoClient) AuthorizationURL(state string) string {
	q := url.Values{}
	q.Set("client_id", c.cfg.ClientID)
	q.Set("response_type", "code")
	q.Set("platform_id", "mp")
	q.Set("state", state)
	q.Set("redirect_uri", c.cfg.RedirectURL)
	return c.cfg.AuthURL + "?" + q.Encode()
}

type tokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
	Code         string `json:"code"`
	RedirectURI  string `json:"redirect_uri"`
}

type tokenResponse struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	PublicKey    string      `json:"public_key"`
	Scope        string      `json:"scope"`
	UserID       json.Number `json:"user_id"`
	LiveMode     bool        `json:"live_mode"`
	ExpiresIn    int64       `json:"expires_in"`
}

func (c *MercadoPagoClient) ExchangeCode(ctx context.Context, code string) (*domain.ProviderCredentials, error) {
	payload, err := json.Marshal(tokenRequest{
		ClientID:     c.cfg.ClientID,
		ClientSecret: c.cfg.ClientSecret,
		GrantType:    "authorization_code",
		Code:         code,
		RedirectURI:  c.cfg.RedirectURL,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encode token request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIBaseURL+"/oauth/token", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.Wrap(err, "build token request")
	}
	req.Header.Set("Content-Type", "application/json")

	var token tokenResponse
	if err := c.do(req, &token); err != nil {
		return nil, errors.Wrap(err, "exchange code")
	}
	if token.AccessToken == "" {
		return nil, errors.New("token response carries no access token")
	}

	now := c.now().UTC()
	return &domain.ProviderCredentials{
		ProviderUserID: token.UserID.String(),
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		PublicKey:      token.PublicKey,
		Scope:          token.Scope,
		LiveMode:       token.LiveMode,
		ExpiresAt:      now.Add(time.Duration(token.ExpiresIn) * time.Second),
		UpdatedAt:      now,
	}, nil
}

type paymentResponse struct {
	ID                json.Number     `json:"id"`
	Status            string          `json:"status"`
	StatusDetail      string          `json:"status_detail"`
	ExternalReference string          `json:"external_reference"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	CurrencyID        string          `json:"currency_id"`
	DateApproved      *time.Time      `json:"date_approved"`
	DateLastUpdated   *time.Time      `json:"date_last_updated"`
}

func (c *MercadoPagoClient) GetPayment(ctx context.Context, accessToken, paymentID string) (*domain.Payment, error) {
	endpoint := c.cfg.APIBaseURL + "/v1/payments/" + url.PathEscape(paymentID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build payment request")
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	var p paymentResponse
	if err := c.do(req, &p); err != nil {
		return nil, errors.Wrapf(err, "get payment %s", paymentID)
	}

	providerID := p.ID.String()
	if providerID == "" {
		providerID = paymentID
	}
	updatedAt := c.now()
	if p.DateLastUpdated != nil {
		updatedAt = *p.DateLastUpdated
	}
	return &domain.Payment{
		ProviderID:   providerID,
		OrderID:      p.ExternalReference,
		Status:       domain.PaymentStatus(p.Status),
		StatusDetail: p.StatusDetail,
		AmountCents:  p.TransactionAmount.Shift(2).Round(0).IntPart(),
		Currency:     p.CurrencyID,
		ApprovedAt:   p.DateApproved,
		UpdatedAt:    updatedAt.UTC(),
	}, nil
}

func (c *MercadoPagoClient) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(err, "send request")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
