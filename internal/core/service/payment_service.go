package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/rl1809/shop-backoffice/internal/core/domain"
	"github.com/rl1809/shop-backoffice/internal/port"
)

var (
	ErrInvalidCallback = errors.New("callback carries neither an authorization code nor a notification")
	ErrInvalidState    = errors.New("oauth state is missing, unknown or expired")
	ErrProviderFailure = errors.New("payment provider request failed")
)

const codeClaimPrefix = "oauth:code:"

// providerError keeps the wrapped cause in the chain and also matches
// ErrProviderFailure.
type providerError struct {
	cause error
}

func providerFailure(err error, format string, args ...interface{}) error {
	return &providerError{cause: errors.Wrapf(err, format, args...)}
}

func (e *providerError) Error() string {
	return ErrProviderFailure.Error() + ": " + e.cause.Error()
}

func (e *providerError) Unwrap() error { return e.cause }

func (e *providerError) Is(target error) bool { return target == ErrProviderFailure }

type PaymentConfig struct {
	StateTTL     time.Duration
	CodeClaimTTL time.Duration
}

type PaymentService struct {
	payments port.PaymentRepository
	orders   port.OrderRepository
	provider port.PaymentProvider
	claims   port.IdempotencyStore
	states   port.OAuthStateStore
	cfg      PaymentConfig
	logger   logrus.FieldLogger
}

func NewPaymentService(
	payments port.PaymentRepository,
	orders port.OrderRepository,
	provider port.PaymentProvider,
	claims port.IdempotencyStore,
	states port.OAuthStateStore,
	cfg PaymentConfig,
	logger logrus.FieldLogger,
) *PaymentService {
	return &PaymentService{
		payments: payments,
		orders:   orders,
		provider: provider,
		claims:   claims,
		states:   states,
		cfg:      cfg,
		logger:   logger,
	}
}

// BeginAuthorization issues a single-use state nonce and returns the URL the
// seller must visit to link their account.
func (s *PaymentService) BeginAuthorization(ctx context.Context) (string, error) {
	state := uuid.NewString()
	if err := s.states.SaveState(ctx, state, s.cfg.StateTTL); err != nil {
		return "", errors.Wrap(err, "save oauth state")
	}
	return s.provider.AuthorizationURL(state), nil
}

// HandleCallback processes anything the provider sends to the callback URLs.
// Every effect is an upsert or a guarded update, so a repeated delivery ends
// in the same state as a single one.
func (s *PaymentService) HandleCallback(ctx context.Context, cb domain.ProviderCallback) error {
	switch {
	case cb.Code != "":
		return s.completeAuthorization(ctx, cb.Code, cb.State)
	case cb.Notification != nil:
		return s.applyNotification(ctx, *cb.Notification)
	default:
		return ErrInvalidCallback
	}
}

func (s *PaymentService) completeAuthorization(ctx context.Context, code, state string) (err error) {
	key := codeClaimPrefix + code

	claimed, err := s.claims.SetIdempotency(ctx, key, s.cfg.CodeClaimTTL)
	if err != nil {
		return errors.Wrap(err, "claim authorization code")
	}
	if !claimed {
		s.logger.Info("authorization code already handled, skipping")
		return nil
	}
	defer func() {
		if err == nil {
			return
		}
		if relErr := s.claims.ReleaseIdempotency(context.WithoutCancel(ctx), key); relErr != nil {
			s.logger.WithError(relErr).Error("failed to release authorization code claim")
		}
	}()

	if state == "" {
		return ErrInvalidState
	}
	valid, err := s.states.ConsumeState(ctx, state)
	if err != nil {
		return errors.Wrap(err, "consume oauth state")
	}
	if !valid {
		return ErrInvalidState
	}

	creds, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return providerFailure(err, "exchange authorization code")
	}
	if err := s.payments.SaveCredentials(ctx, *creds); err != nil {
		return errors.Wrap(err, "save provider credentials")
	}

	s.logger.WithFields(logrus.Fields{
		"provider_user_id": creds.ProviderUserID,
		"live_mode":        creds.LiveMode,
	}).Info("payment provider account connected")
	return nil
}

func (s *PaymentService) applyNotification(ctx context.Context, n domain.Notification) error {
	if n.ResourceID == "" {
		return ErrInvalidCallback
	}
	log := s.logger.WithFields(logrus.Fields{
		"topic":       n.Topic,
		"action":      n.Action,
		"resource_id": n.ResourceID,
	})

	first, err := s.payments.RecordWebhookEvent(ctx, n)
	if err != nil {
		return errors.Wrap(err, "record webhook event")
	}
	if !first {
		log.Debug("repeat webhook delivery")
	}

	if n.Topic != domain.TopicPayment {
		log.Info("webhook topic acknowledged without effect")
		return nil
	}

	creds, err := s.payments.LatestCredentials(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotConnected) {
			return err
		}
		return errors.Wrap(err, "load provider credentials")
	}

	payment, err := s.provider.GetPayment(ctx, creds.AccessToken, n.ResourceID)
	if err != nil {
		return providerFailure(err, "fetch payment %s", n.ResourceID)
	}
	if err := s.payments.UpsertPayment(ctx, *payment); err != nil {
		return errors.Wrapf(err, "upsert payment %s", payment.ProviderID)
	}

	log = log.WithField("payment_status", payment.Status)
	if payment.OrderID == "" {
		log.Warn("payment carries no order reference")
		return nil
	}
	status, ok := payment.Status.OrderStatus()
	if !ok {
		log.Debug("payment status does not move the order")
		return nil
	}

	changed, err := s.orders.TransitionOrderStatus(ctx, payment.OrderID, status, status.Predecessors())
	if err != nil {
		return errors.Wrapf(err, "transition order %s to %s", payment.OrderID, status)
	}
	log.WithFields(logrus.Fields{
		"order_id":     payment.OrderID,
		"order_status": status,
		"changed":      changed,
	}).Info("payment applied")
	return nil
}
