package interfaces

import (
	"context"

	"github.com/YelzhanWeb/storefront/internal/domain"
)

// DispatchRepository stores the operator journal of submission attempts
type DispatchRepository interface {
	Create(ctx context.Context, dispatch *domain.Dispatch) error
	FindByReference(ctx context.Context, reference string) (*domain.Dispatch, error)
	ListRecent(ctx context.Context, limit int) ([]*domain.Dispatch, error)
}
