package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/rl1809/shop-backoffice/internal/core/domain"
	"github.com/rl1809/shop-backoffice/internal/port"
)

type SessionService struct {
	store port.SessionStore
}

func NewSessionService(store port.SessionStore) *SessionService {
	return &SessionService{store: store}
}

// Resolve returns domain.ErrSessionNotFound for an empty or unknown id.
func (s *SessionService) Resolve(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		return nil, domain.ErrSessionNotFound
	}
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, err
		}
		return nil, errors.Wrap(err, "get session")
	}
	return session, nil
}

// Logout drops the session. An empty id is already logged out.
func (s *SessionService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return errors.Wrap(err, "delete session")
	}
	return nil
}
