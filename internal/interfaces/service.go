package interfaces

import (
	"context"
	"time"

	"github.com/YelzhanWeb/storefront/internal/domain"
)

// Outbound gateways to the remote menu and order endpoints
type MenuSource interface {
	FetchMenu(ctx context.Context) ([]domain.MenuCategory, error)
}

type OrderSubmitter interface {
	Submit(ctx context.Context, order *domain.PreOrder) (domain.Receipt, error)
}

type MenuService interface {
	Load(ctx context.Context) ([]domain.MenuCategory, error)
	State() MenuState
}

// MenuState is the loader's observable state.
type MenuState struct {
	Loading    bool
	Err        string
	Categories []domain.MenuCategory
}

type JournalService interface {
	GetDispatch(ctx context.Context, reference string) (*JournalEntryResponse, error)
	ListDispatches(ctx context.Context, limit int) ([]*JournalEntryResponse, error)
}

// JournalEntryResponse is what operators see for one dispatch
type JournalEntryResponse struct {
	Reference    string
	CustomerName string
	PickupTime   time.Time
	ItemCount    int
	Totals       domain.FormattedTotals
	Outcome      domain.DispatchOutcome
	HTTPStatus   *int
	Error        *string
	Confirmed    bool
	CreatedAt    time.Time
}
