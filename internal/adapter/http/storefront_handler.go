package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/YelzhanWeb/storefront/internal/adapter/logger"
	"github.com/YelzhanWeb/storefront/internal/app/checkout"
	"github.com/YelzhanWeb/storefront/internal/app/storefront"
	"github.com/YelzhanWeb/storefront/internal/domain"
	"github.com/YelzhanWeb/storefront/internal/interfaces"
)

const sessionCookie = "storefront_session"

const (
	successNotice = "Thank you! We have received your pre-order and will contact you shortly to confirm."
	failureNotice = "We couldn't submit your pre-order. Please try again or call us directly."
)

// MenuCatalog is the loaded menu plus item lookup.
type MenuCatalog interface {
	interfaces.MenuService
	Item(id string) (domain.MenuItem, bool)
}

type StorefrontHandler struct {
	menu     MenuCatalog
	sessions *storefront.Registry
	logger   logger.Logger
	location *time.Location
}

func NewStorefrontHandler(menu MenuCatalog, sessions *storefront.Registry, logger logger.Logger) *StorefrontHandler {
	return &StorefrontHandler{
		menu:     menu,
		sessions: sessions,
		logger:   logger,
		location: time.Local,
	}
}

func (h *StorefrontHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /menu", h.GetMenu)
	mux.HandleFunc("POST /menu/reload", h.ReloadMenu)

	mux.HandleFunc("GET /cart", h.GetCart)
	mux.HandleFunc("POST /cart/items", h.AddItem)
	mux.HandleFunc("PUT /cart/items/{id}", h.UpdateItem)
	mux.HandleFunc("DELETE /cart/items/{id}", h.RemoveItem)
	mux.HandleFunc("DELETE /cart", h.ClearCart)
	mux.HandleFunc("POST /cart/open", h.OpenPanel)
	mux.HandleFunc("POST /cart/close", h.ClosePanel)

	mux.HandleFunc("GET /checkout", h.GetCheckout)
	mux.HandleFunc("POST /checkout", h.BeginCheckout)
	mux.HandleFunc("POST /checkout/cancel", h.CancelCheckout)
	mux.HandleFunc("POST /checkout/submit", h.SubmitOrder)
	mux.HandleFunc("POST /checkout/retry", h.RetryCheckout)
	mux.HandleFunc("POST /checkout/dismiss", h.DismissCheckout)
}

type MenuItemResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	PriceValue  string `json:"priceValue"`
	Image       string `json:"image"`
}

type MenuCategoryResponse struct {
	Title string             `json:"title"`
	Items []MenuItemResponse `json:"items"`
}

type MenuResponse struct {
	Loading    bool                   `json:"loading"`
	Error      string                 `json:"error,omitempty"`
	Categories []MenuCategoryResponse `json:"categories"`
}

type CartItemResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Image      string `json:"image"`
	PriceValue string `json:"priceValue"`
	Quantity   int    `json:"quantity"`
	LineTotal  string `json:"lineTotal"`
}

type CartResponse struct {
	Items    []CartItemResponse     `json:"items"`
	Count    int                    `json:"count"`
	Totals   domain.FormattedTotals `json:"totals"`
	Checkout CheckoutResponse       `json:"checkout"`
}

type CheckoutDetailsRequest struct {
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
	PickupTime    string `json:"pickupTime"`
}

type CheckoutResponse struct {
	Phase         domain.Phase            `json:"phase"`
	PanelOpen     bool                    `json:"panelOpen"`
	Submitting    bool                    `json:"submitting"`
	MinPickupTime string                  `json:"minPickupTime,omitempty"`
	Totals        *domain.FormattedTotals `json:"totals,omitempty"`
	Draft         *CheckoutDetailsRequest `json:"draft,omitempty"`
	LastReference string                  `json:"lastReference,omitempty"`
	Notice        string                  `json:"notice,omitempty"`
}

type AddItemRequest struct {
	ID string `json:"id"`
}

type UpdateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *StorefrontHandler) GetMenu(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, toMenuResponse(h.menu.State()))
}

func (h *StorefrontHandler) ReloadMenu(w http.ResponseWriter, r *http.Request) {
	// Overlapping reloads share one fetch; a disconnecting caller must not
	// cancel it for the others.
	if _, err := h.menu.Load(context.WithoutCancel(r.Context())); err != nil {
		respondJSON(w, http.StatusBadGateway, toMenuResponse(h.menu.State()))
		return
	}
	respondJSON(w, http.StatusOK, toMenuResponse(h.menu.State()))
}

func (h *StorefrontHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	respondJSON(w, http.StatusOK, toCartResponse(s))
}

func (h *StorefrontHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	item, ok := h.menu.Item(req.ID)
	if !ok {
		respondError(w, "Menu item not found", http.StatusNotFound, nil)
		return
	}

	s.Cart.Add(item)
	respondJSON(w, http.StatusOK, toCartResponse(s))
}

func (h *StorefrontHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	var req UpdateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	s.Cart.UpdateQuantity(r.PathValue("id"), req.Quantity)
	respondJSON(w, http.StatusOK, toCartResponse(s))
}

func (h *StorefrontHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	s.Cart.Remove(r.PathValue("id"))
	respondJSON(w, http.StatusOK, toCartResponse(s))
}

func (h *StorefrontHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	s.Cart.Clear()
	respondJSON(w, http.StatusOK, toCartResponse(s))
}

func (h *StorefrontHandler) OpenPanel(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	s.Checkout.OpenPanel()
	respondJSON(w, http.StatusOK, toCartResponse(s))
}

func (h *StorefrontHandler) ClosePanel(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	s.Checkout.ClosePanel()
	respondJSON(w, http.StatusOK, toCartResponse(s))
}

func (h *StorefrontHandler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	respondJSON(w, http.StatusOK, toCheckoutResponse(s.Checkout.Snapshot()))
}

func (h *StorefrontHandler) BeginCheckout(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if _, err := s.Checkout.BeginCheckout(); err != nil {
		h.respondWorkflowError(w, r, s, err)
		return
	}
	respondJSON(w, http.StatusOK, toCheckoutResponse(s.Checkout.Snapshot()))
}

func (h *StorefrontHandler) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, (*checkout.Service).Cancel)
}

func (h *StorefrontHandler) RetryCheckout(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, (*checkout.Service).Retry)
}

func (h *StorefrontHandler) DismissCheckout(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, (*checkout.Service).Dismiss)
}

func (h *StorefrontHandler) transition(w http.ResponseWriter, r *http.Request, step func(*checkout.Service) error) {
	s := h.session(w, r)
	if err := step(s.Checkout); err != nil {
		h.respondWorkflowError(w, r, s, err)
		return
	}
	respondJSON(w, http.StatusOK, toCheckoutResponse(s.Checkout.Snapshot()))
}

func (h *StorefrontHandler) SubmitOrder(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	var req CheckoutDetailsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest, nil)
		return
	}

	pickup, err := domain.ParsePickupTime(req.PickupTime, h.location)
	if err != nil {
		respondError(w, "Validation failed", http.StatusBadRequest, []domain.ValidationError{
			{Field: "pickupTime", Message: err.Error()},
		})
		return
	}

	details := domain.CheckoutDetails{
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
		PickupTime:    pickup,
	}

	// Submissions cannot be cancelled once started.
	if _, err := s.Checkout.Submit(context.WithoutCancel(r.Context()), details); err != nil {
		h.respondWorkflowError(w, r, s, err)
		return
	}

	respondJSON(w, http.StatusOK, toCheckoutResponse(s.Checkout.Snapshot()))
}

func (h *StorefrontHandler) respondWorkflowError(w http.ResponseWriter, r *http.Request, s *storefront.Session, err error) {
	var validationErrs domain.ValidationErrors

	switch {
	case errors.As(err, &validationErrs):
		respondError(w, "Validation failed", http.StatusBadRequest, validationErrs)
	case errors.Is(err, domain.ErrEmptyCart):
		respondError(w, "Your cart is empty", http.StatusConflict, nil)
	case errors.Is(err, domain.ErrSubmissionInFlight):
		respondError(w, "A submission is already in progress", http.StatusConflict, nil)
	case errors.Is(err, domain.ErrInvalidPhaseTransition):
		respondError(w, err.Error(), http.StatusConflict, nil)
	case errors.Is(err, domain.ErrWorkflowClosed):
		respondError(w, "Session has expired", http.StatusGone, nil)
	case errors.Is(err, domain.ErrDispatchFailed):
		view := toCheckoutResponse(s.Checkout.Snapshot())
		respondJSON(w, http.StatusBadGateway, ErrorResponse{Error: failureNotice, Checkout: &view})
	default:
		h.logger.Error("storefront_request_failed", "Unexpected checkout error", requestIDFrom(r), map[string]interface{}{
			"path": r.URL.Path,
		}, err)
		respondError(w, "Internal server error", http.StatusInternalServerError, nil)
	}
}

func (h *StorefrontHandler) session(w http.ResponseWriter, r *http.Request) *storefront.Session {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}

	s, created := h.sessions.GetOrCreate(id)
	if created {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    s.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s
}

func toMenuResponse(state interfaces.MenuState) MenuResponse {
	resp := MenuResponse{
		Loading:    state.Loading,
		Error:      state.Err,
		Categories: make([]MenuCategoryResponse, 0, len(state.Categories)),
	}
	for _, c := range state.Categories {
		cat := MenuCategoryResponse{Title: c.Title, Items: make([]MenuItemResponse, len(c.Items))}
		for i, item := range c.Items {
			cat.Items[i] = MenuItemResponse{
				ID:          item.ID,
				Name:        item.Name,
				Description: item.Description,
				Price:       item.Price,
				PriceValue:  domain.FormatMoney(item.PriceValue),
				Image:       item.Image,
			}
		}
		resp.Categories = append(resp.Categories, cat)
	}
	return resp
}

func toCartResponse(s *storefront.Session) CartResponse {
	items := s.Cart.Items()
	resp := CartResponse{
		Items:    make([]CartItemResponse, len(items)),
		Count:    s.Cart.Count(),
		Totals:   domain.ComputeTotals(items).Formatted(),
		Checkout: toCheckoutResponse(s.Checkout.Snapshot()),
	}
	for i, item := range items {
		resp.Items[i] = CartItemResponse{
			ID:         item.ID,
			Name:       item.Name,
			Image:      item.Image,
			PriceValue: domain.FormatMoney(item.PriceValue),
			Quantity:   item.Quantity,
			LineTotal:  domain.FormatMoney(domain.ComputeTotals([]domain.CartItem{item}).Subtotal),
		}
	}
	return resp
}

func toCheckoutResponse(snap checkout.Snapshot) CheckoutResponse {
	resp := CheckoutResponse{
		Phase:         snap.Phase,
		PanelOpen:     snap.PanelOpen,
		Submitting:    snap.Submitting,
		LastReference: snap.LastReference,
	}

	if snap.Form != nil {
		totals := snap.Form.Totals.Formatted()
		resp.MinPickupTime = snap.Form.MinPickupTime.Format(domain.PickupLayout)
		resp.Totals = &totals
	}

	if snap.Draft != nil {
		draft := CheckoutDetailsRequest{
			CustomerName:  snap.Draft.CustomerName,
			CustomerEmail: snap.Draft.CustomerEmail,
			CustomerPhone: snap.Draft.CustomerPhone,
		}
		if !snap.Draft.PickupTime.IsZero() {
			draft.PickupTime = snap.Draft.PickupTime.Format(domain.PickupLayout)
		}
		resp.Draft = &draft
	}

	switch snap.Phase {
	case domain.PhaseSucceeded:
		resp.Notice = successNotice
	case domain.PhaseFailed:
		resp.Notice = failureNotice
	}
	return resp
}
