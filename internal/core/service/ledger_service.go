package service

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/rl1809/shop-backoffice/internal/core/domain"
	"github.com/rl1809/shop-backoffice/internal/port"
)

const maxNoteLength = 255

var (
	ErrMissingItemID = errors.New("missing item id")
	ErrInvalidDelta  = errors.New("delta must be non-zero")
	ErrNoteTooLong   = errors.New("note is too long")
)

type LedgerService struct {
	repo port.LedgerRepository
	now  func() time.Time
}

func NewLedgerService(repo port.LedgerRepository) *LedgerService {
	return &LedgerService{repo: repo, now: time.Now}
}

// ListTransactions rejects an empty itemID before touching the repository. An
// item without movements yields an empty slice.
func (s *LedgerService) ListTransactions(ctx context.Context, itemID string) ([]domain.Transaction, error) {
	if itemID == "" {
		return nil, ErrMissingItemID
	}

	txs, err := s.repo.ListTransactions(ctx, itemID)
	if err != nil {
		return nil, errors.Wrapf(err, "list transactions for item %s", itemID)
	}
	if txs == nil {
		txs = []domain.Transaction{}
	}
	return txs, nil
}

func (s *LedgerService) RecordTransaction(ctx context.Context, itemID string, delta int, note, actor string) (*domain.Transaction, error) {
	if itemID == "" {
		return nil, ErrMissingItemID
	}
	if delta == 0 {
		return nil, ErrInvalidDelta
	}
	if utf8.RuneCountInString(note) > maxNoteLength {
		return nil, ErrNoteTooLong
	}

	tx := domain.Transaction{
		ID:        uuid.NewString(),
		ItemID:    itemID,
		Delta:     delta,
		Note:      note,
		CreatedBy: actor,
		CreatedAt: s.now().UTC(),
	}

	if err := s.repo.AppendTransaction(ctx, tx); err != nil {
		return nil, errors.Wrapf(err, "append transaction for item %s", itemID)
	}
	return &tx, nil
}
