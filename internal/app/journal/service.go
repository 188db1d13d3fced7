package journal

import (
	"context"
	"fmt"

	"github.com/YelzhanWeb/storefront/internal/adapter/logger"
	"github.com/YelzhanWeb/storefront/internal/domain"
	"github.com/YelzhanWeb/storefront/internal/interfaces"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

type Service struct {
	repo   interfaces.DispatchRepository
	logger logger.Logger
}

func NewService(repo interfaces.DispatchRepository, logger logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) GetDispatch(ctx context.Context, reference string) (*interfaces.JournalEntryResponse, error) {
	dispatch, err := s.repo.FindByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	return toResponse(dispatch), nil
}

func (s *Service) ListDispatches(ctx context.Context, limit int) ([]*interfaces.JournalEntryResponse, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	dispatches, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list dispatches: %w", err)
	}

	resp := make([]*interfaces.JournalEntryResponse, 0, len(dispatches))
	for _, d := range dispatches {
		resp = append(resp, toResponse(d))
	}

	s.logger.Debug("journal_listed", "Dispatch journal listed", "", map[string]interface{}{
		"limit": limit,
		"count": len(resp),
	})
	return resp, nil
}

func toResponse(d *domain.Dispatch) *interfaces.JournalEntryResponse {
	count := 0
	for _, l := range d.Lines {
		count += l.Quantity
	}

	return &interfaces.JournalEntryResponse{
		Reference:    d.Reference,
		CustomerName: d.CustomerName,
		PickupTime:   d.PickupTime,
		ItemCount:    count,
		Totals:       d.Totals.Formatted(),
		Outcome:      d.Outcome,
		HTTPStatus:   d.HTTPStatus,
		Error:        d.Error,
		Confirmed:    d.Confirmed(),
		CreatedAt:    d.CreatedAt,
	}
}
