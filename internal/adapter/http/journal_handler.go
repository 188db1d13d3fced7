package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/YelzhanWeb/storefront/internal/adapter/logger"
	"github.com/YelzhanWeb/storefront/internal/domain"
	"github.com/YelzhanWeb/storefront/internal/interfaces"
)

const unconfirmedNotice = "Dispatched without a readable acceptance signal; confirm with the customer manually."

type JournalHandler struct {
	service interfaces.JournalService
	logger  logger.Logger
}

func NewJournalHandler(service interfaces.JournalService, logger logger.Logger) *JournalHandler {
	return &JournalHandler{
		service: service,
		logger:  logger,
	}
}

func (h *JournalHandler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /dispatches", h.ListDispatches)
	mux.HandleFunc("GET /dispatches/{reference}", h.GetDispatch)
}

type JournalEntry struct {
	Reference    string                 `json:"reference"`
	CustomerName string                 `json:"customer_name"`
	PickupTime   string                 `json:"pickup_time"`
	ItemCount    int                    `json:"item_count"`
	Totals       domain.FormattedTotals `json:"totals"`
	Outcome      domain.DispatchOutcome `json:"outcome"`
	HTTPStatus   *int                   `json:"http_status,omitempty"`
	Error        *string                `json:"error,omitempty"`
	Confirmed    bool                   `json:"confirmed"`
	Notice       string                 `json:"notice,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

func (h *JournalHandler) ListDispatches(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			respondError(w, "limit must be a positive integer", http.StatusBadRequest, nil)
			return
		}
		limit = n
	}

	entries, err := h.service.ListDispatches(r.Context(), limit)
	if err != nil {
		h.logger.Error("journal_list_failed", "Failed to list dispatches", requestIDFrom(r), nil, err)
		respondError(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}

	resp := make([]JournalEntry, len(entries))
	for i, e := range entries {
		resp[i] = toJournalEntry(e)
	}
	respondJSON(w, http.StatusOK, resp)
}

func (h *JournalHandler) GetDispatch(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.GetDispatch(r.Context(), r.PathValue("reference"))
	if errors.Is(err, domain.ErrDispatchNotFound) {
		respondError(w, "Dispatch not found", http.StatusNotFound, nil)
		return
	}
	if err != nil {
		h.logger.Error("journal_get_failed", "Failed to load dispatch", requestIDFrom(r), nil, err)
		respondError(w, "Internal server error", http.StatusInternalServerError, nil)
		return
	}

	respondJSON(w, http.StatusOK, toJournalEntry(entry))
}

func toJournalEntry(e *interfaces.JournalEntryResponse) JournalEntry {
	entry := JournalEntry{
		Reference:    e.Reference,
		CustomerName: e.CustomerName,
		PickupTime:   e.PickupTime.Format(domain.PickupLayout),
		ItemCount:    e.ItemCount,
		Totals:       e.Totals,
		Outcome:      e.Outcome,
		HTTPStatus:   e.HTTPStatus,
		Error:        e.Error,
		Confirmed:    e.Confirmed,
		CreatedAt:    e.CreatedAt,
	}
	if !e.Confirmed && e.Outcome == domain.OutcomeDispatched {
		entry.Notice = unconfirmedNotice
	}
	return entry
}
