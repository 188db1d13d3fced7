package checkout

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/YelzhanWeb/storefront/internal/adapter/logger"
	"github.com/YelzhanWeb/storefront/internal/domain"
	"github.com/YelzhanWeb/storefront/internal/interfaces"
)

// CartStore is the part of the cart the workflow reads and clears.
type CartStore interface {
	Items() []domain.CartItem
	IsEmpty() bool
	Totals() domain.OrderTotals
	Clear()
}

// Form is what the details step renders.
type Form struct {
	MinPickupTime time.Time
	Totals        domain.OrderTotals
}

// Snapshot is a read-only view of the workflow for the shell.
type Snapshot struct {
	Phase         domain.Phase
	PanelOpen     bool
	Submitting    bool
	Draft         *domain.CheckoutDetails
	Form          *Form
	LastReference string
}

// Service drives the cart panel through
// browsing -> collecting_details -> submitting -> succeeded | failed.
type Service struct {
	cart      CartStore
	submitter interfaces.OrderSubmitter
	journal   interfaces.DispatchRepository
	publisher interfaces.EventPublisher
	logger    logger.Logger
	now       func() time.Time

	mu            sync.Mutex
	phase         domain.Phase
	draft         *domain.CheckoutDetails
	panelOpen     bool
	generation    uint64
	inFlight      bool
	closed        bool
	lastReference string
}

// NewService wires the workflow. journal and publisher may be nil.
func NewService(
	cart CartStore,
	submitter interfaces.OrderSubmitter,
	journal interfaces.DispatchRepository,
	publisher interfaces.EventPublisher,
	logger logger.Logger,
) *Service {
	return &Service{
		cart:      cart,
		submitter: submitter,
		journal:   journal,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		phase:     domain.PhaseBrowsing,
	}
}

// SetClock replaces the wall clock used for pickup time checks.
func (s *Service) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// OpenPanel resets the workflow to browsing when the panel was closed.
// Opening an already open panel changes nothing.
func (s *Service) OpenPanel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.panelOpen {
		return
	}
	s.openLocked()
}

func (s *Service) openLocked() {
	s.panelOpen = true
	s.phase = domain.PhaseBrowsing
	s.draft = nil
	// Invalidates the phase update of any submission still in flight.
	s.generation++
}

func (s *Service) ClosePanel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.panelOpen = false
	s.draft = nil
}

// BeginCheckout enters the details step. An empty cart is rejected.
func (s *Service) BeginCheckout() (Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Form{}, domain.ErrWorkflowClosed
	}
	if !s.panelOpen {
		s.openLocked()
	}
	if !s.phase.CanTransitionTo(domain.PhaseCollectingDetails) {
		return Form{}, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidPhaseTransition, s.phase, domain.PhaseCollectingDetails)
	}
	if s.cart.IsEmpty() {
		return Form{}, domain.ErrEmptyCart
	}

	s.phase = domain.PhaseCollectingDetails
	s.draft = &domain.CheckoutDetails{}

	return s.formLocked(), nil
}

// Form recomputes the minimum pickup time from the wall clock.
func (s *Service) Form() (Form, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase != domain.PhaseCollectingDetails {
		return Form{}, fmt.Errorf("%w: no details step in phase %s", domain.ErrInvalidPhaseTransition, s.phase)
	}
	return s.formLocked(), nil
}

func (s *Service) formLocked() Form {
	return Form{
		MinPickupTime: domain.MinPickupTime(s.now()),
		Totals:        s.cart.Totals(),
	}
}

// Cancel leaves the details step without submitting.
func (s *Service) Cancel() error {
	if err := s.transition(domain.PhaseCollectingDetails, domain.PhaseBrowsing); err != nil {
		return err
	}
	s.mu.Lock()
	s.draft = nil
	s.mu.Unlock()
	return nil
}

// Retry returns from a failed submission to the details step, keeping the
// previously entered details as the draft.
func (s *Service) Retry() error {
	return s.transition(domain.PhaseFailed, domain.PhaseCollectingDetails)
}

// Dismiss acknowledges a successful submission.
func (s *Service) Dismiss() error {
	return s.transition(domain.PhaseSucceeded, domain.PhaseBrowsing)
}

func (s *Service) transition(from, to domain.Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.ErrWorkflowClosed
	}
	if s.phase != from || !from.CanTransitionTo(to) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidPhaseTransition, s.phase, to)
	}
	s.phase = to
	return nil
}

// Submit validates details and dispatches the pre-order. Validation failures
// keep the workflow in collecting_details. A dispatch without transport error
// counts as success: the endpoint gives no readable confirmation.
func (s *Service) Submit(ctx context.Context, details domain.CheckoutDetails) (*domain.PreOrder, error) {
	order, gen, err := s.beginSubmit(details)
	if err != nil {
		return nil, err
	}

	s.logger.Info("order_dispatch_started", "Dispatching pre-order", order.Reference, map[string]interface{}{
		"items": order.ItemCount(),
		"total": domain.FormatMoney(order.Totals.Total),
	})

	receipt, dispatchErr := s.submitter.Submit(ctx, order)
	if dispatchErr == nil {
		// The order left; clear the cart even if the panel was torn down.
		s.cart.Clear()
	}

	s.finishSubmit(order, gen, dispatchErr)
	s.record(ctx, order, receipt, dispatchErr)

	if dispatchErr != nil {
		s.logger.Error("order_dispatch_failed", "Pre-order dispatch failed", order.Reference, nil, dispatchErr)
		return order, fmt.Errorf("%w: %v", domain.ErrDispatchFailed, dispatchErr)
	}

	s.logger.Info("order_dispatched", "Pre-order dispatched, awaiting manual confirmation", order.Reference, map[string]interface{}{
		"http_status": receipt.StatusCode,
	})
	return order, nil
}

func (s *Service) beginSubmit(details domain.CheckoutDetails) (*domain.PreOrder, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, 0, domain.ErrWorkflowClosed
	}
	if s.inFlight {
		return nil, 0, domain.ErrSubmissionInFlight
	}
	if s.phase != domain.PhaseCollectingDetails {
		return nil, 0, fmt.Errorf("%w: %s -> %s", domain.ErrInvalidPhaseTransition, s.phase, domain.PhaseSubmitting)
	}

	details = details.Normalize()
	s.draft = &details

	if err := details.Validate(domain.MinPickupTime(s.now())); err != nil {
		s.logger.Debug("checkout_validation_failed", "Checkout details rejected", "", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, 0, err
	}

	order, err := domain.NewPreOrder(s.cart.Items(), details)
	if err != nil {
		return nil, 0, err
	}

	s.phase = domain.PhaseSubmitting
	s.inFlight = true
	return order, s.generation, nil
}

func (s *Service) finishSubmit(order *domain.PreOrder, gen uint64, dispatchErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.inFlight = false
	if s.closed || gen != s.generation {
		s.logger.Debug("checkout_completion_dropped", "Submission finished after the panel was reset", order.Reference, nil)
		return
	}

	s.lastReference = order.Reference
	if dispatchErr != nil {
		s.phase = domain.PhaseFailed
		return
	}
	s.phase = domain.PhaseSucceeded
	s.draft = nil
}

// record writes the journal entry and the staff notification. Neither can
// change the outcome of the submission.
func (s *Service) record(ctx context.Context, order *domain.PreOrder, receipt domain.Receipt, dispatchErr error) {
	dispatch := domain.NewDispatch(order, receipt, dispatchErr)

	if s.journal != nil {
		if err := s.journal.Create(ctx, dispatch); err != nil {
			s.logger.Error("journal_write_failed", "Failed to record dispatch", order.Reference, nil, err)
		}
	}

	if s.publisher != nil {
		msg := interfaces.CheckoutEventMessage{
			Reference:    order.Reference,
			CustomerName: order.CustomerName,
			PickupTime:   order.PickupTime.Format(domain.PickupLayout),
			ItemCount:    order.ItemCount(),
			Total:        domain.FormatMoney(order.Totals.Total),
			Outcome:      dispatch.Outcome,
			Timestamp:    time.Now().UTC(),
		}
		if err := s.publisher.PublishCheckoutEvent(ctx, msg); err != nil {
			s.logger.Error("rabbitmq_publish_failed", "Failed to publish checkout event", order.Reference, nil, err)
		}
	}
}

func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Phase:         s.phase,
		PanelOpen:     s.panelOpen,
		Submitting:    s.inFlight,
		LastReference: s.lastReference,
	}
	if s.draft != nil {
		draft := *s.draft
		snap.Draft = &draft
	}
	if s.phase == domain.PhaseCollectingDetails {
		form := s.formLocked()
		snap.Form = &form
	}
	return snap
}

func (s *Service) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Close tears the workflow down. In-flight completions become no-ops.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.panelOpen = false
	s.draft = nil
	s.generation++
}
