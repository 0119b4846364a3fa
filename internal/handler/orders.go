package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/brioche-cafe/api/internal/database"
	"github.com/brioche-cafe/api/internal/enum"
	"github.com/brioche-cafe/api/internal/lineitem"
	"github.com/brioche-cafe/api/internal/ws"
)

// OrderStore defines the database methods needed by order handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type OrderStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	GetOrderRecord(ctx context.Context, id uuid.UUID) (database.OrderRecordRow, error)
	ListActiveOrderRecords(ctx context.Context) ([]database.OrderRecordRow, error)
	ListOrderRecords(ctx context.Context, arg database.ListOrderRecordsParams) ([]database.OrderRecordRow, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
}

// OrderNotifier pushes order events to connected WebSocket clients.
// Satisfied by *ws.Hub.
type OrderNotifier interface {
	BroadcastOrderEvent(orderID uuid.UUID, event ws.Event)
}

// OrderHandler serves the kitchen order board and the customer waiting
// view. Both read the denormalized order record and rebuild display lines
// from it on every request; nothing here mutates line data.
type OrderHandler struct {
	store        OrderStore
	notifier     OrderNotifier
	imageBaseURL string
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(store OrderStore, notifier OrderNotifier, imageBaseURL string) *OrderHandler {
	return &OrderHandler{store: store, notifier: notifier, imageBaseURL: imageBaseURL}
}

// RegisterRoutes registers all order endpoints on the given Chi router
// without access control. Production routing mounts the two halves
// separately so the board stays behind staff authentication.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	h.RegisterCustomerRoutes(r)
	h.RegisterStaffRoutes(r)
}

// RegisterCustomerRoutes registers the public order lookup endpoint.
func (h *OrderHandler) RegisterCustomerRoutes(r chi.Router) {
	r.Get("/{id}", h.Get)
}

// RegisterStaffRoutes registers the order board endpoints.
func (h *OrderHandler) RegisterStaffRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Patch("/{id}/status", h.UpdateStatus)
}

// --- Request / Response types ---

type selectionResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

type orderLineResponse struct {
	Key        string              `json:"key"`
	Kind       string              `json:"kind"`
	ItemID     int64               `json:"item_id"`
	Name       string              `json:"name"`
	Quantity   int64               `json:"quantity"`
	UnitPrice  string              `json:"unit_price"`
	BasePrice  string              `json:"base_price"`
	LineTotal  string              `json:"line_total"`
	Supplement *selectionResponse  `json:"supplement,omitempty"`
	Options    []selectionResponse `json:"options,omitempty"`
	ImageURL   string              `json:"image_url"`
}

type orderResponse struct {
	ID           uuid.UUID           `json:"id"`
	OrderNumber  string              `json:"order_number"`
	Status       string              `json:"status"`
	OrderType    string              `json:"order_type"`
	TableNumber  string              `json:"table_number,omitempty"`
	CustomerName string              `json:"customer_name,omitempty"`
	Notes        string              `json:"notes,omitempty"`
	TotalAmount  string              `json:"total_amount"`
	Lines        []orderLineResponse `json:"lines"`
	LinesTotal   string              `json:"lines_total"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

type orderStatusEvent struct {
	ID          uuid.UUID `json:"id"`
	OrderNumber string    `json:"order_number"`
	Status      string    `json:"status"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// --- Handlers ---

// List returns orders for the kitchen board. By default only orders still
// in flight are returned; all=true pages through the full history.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		records []database.OrderRecordRow
		err     error
	)

	if r.URL.Query().Get("all") == "true" {
		limit := 20
		if s := r.URL.Query().Get("limit"); s != "" {
			if v, err := strconv.Atoi(s); err == nil && v > 0 {
				limit = v
			}
		}
		if limit > 100 {
			limit = 100
		}
		offset := 0
		if s := r.URL.Query().Get("offset"); s != "" {
			if v, err := strconv.Atoi(s); err == nil && v >= 0 {
				offset = v
			}
		}
		records, err = h.store.ListOrderRecords(r.Context(), database.ListOrderRecordsParams{
			Limit:  int32(limit),
			Offset: int32(offset),
		})
	} else {
		records, err = h.store.ListActiveOrderRecords(r.Context())
	}
	if err != nil {
		log.Printf("ERROR: list orders: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]orderResponse, len(records))
	for i, rec := range records {
		resp[i] = h.toOrderResponse(rec)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns one order with its rebuilt display lines. It backs both the
// kitchen detail view and the customer waiting screen.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	record, err := h.store.GetOrderRecord(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, h.toOrderResponse(record))
}

// UpdateStatus moves an order through its lifecycle and notifies the
// order's watchers plus the staff feed.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if !isValidOrderStatus(req.Status) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid status"})
		return
	}

	current, err := h.store.GetOrder(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
			return
		}
		log.Printf("ERROR: get order for status update: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if err := validateStatusTransition(current.Status, req.Status); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}

	updated, err := h.store.UpdateOrderStatus(r.Context(), database.UpdateOrderStatusParams{
		ID:     orderID,
		Status: req.Status,
	})
	if err != nil {
		log.Printf("ERROR: update order status: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.notifyStatusChange(updated)

	writeJSON(w, http.StatusOK, map[string]any{
		"id":           updated.ID,
		"order_number": updated.OrderNumber,
		"status":       updated.Status,
		"updated_at":   updated.UpdatedAt,
	})
}

// --- Helpers ---

func (h *OrderHandler) notifyStatusChange(o database.Order) {
	if h.notifier == nil {
		return
	}
	payload, err := json.Marshal(orderStatusEvent{
		ID:          o.ID,
		OrderNumber: o.OrderNumber,
		Status:      o.Status,
		UpdatedAt:   o.UpdatedAt,
	})
	if err != nil {
		log.Printf("ERROR: marshal status event: %v", err)
		return
	}
	h.notifier.BroadcastOrderEvent(o.ID, ws.Event{Type: "order.status", Payload: payload})
}

// toOrderResponse rebuilds an order's display lines from the denormalized
// record. Lines are sorted by key so the response is stable across calls.
func (h *OrderHandler) toOrderResponse(rec database.OrderRecordRow) orderResponse {
	rows := lineitem.ParseOrderRecord(rawRecordFromRow(rec))
	items := lineitem.AggregateLineItems(rows)
	totals := lineitem.ComputeTotals(items)

	keys := make([]string, 0, len(items))
	for key := range items {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	lines := make([]orderLineResponse, len(keys))
	for i, key := range keys {
		li := items[key]
		line := orderLineResponse{
			Key:       li.Key,
			Kind:      li.Kind,
			ItemID:    li.ItemID,
			Name:      li.Name,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice.StringFixed(2),
			BasePrice: li.BasePrice.StringFixed(2),
			LineTotal: totals.PerLine[key].StringFixed(2),
			ImageURL:  lineitem.NormalizeImageURL(h.imageBaseURL, li.ImageURL),
		}
		if li.Supplement != nil {
			line.Supplement = &selectionResponse{
				ID:    li.Supplement.ID,
				Name:  li.Supplement.Name,
				Price: li.Supplement.Price.StringFixed(2),
			}
		}
		for _, opt := range li.Options {
			line.Options = append(line.Options, selectionResponse{
				ID:    opt.ID,
				Name:  opt.Name,
				Price: opt.Price.StringFixed(2),
			})
		}
		lines[i] = line
	}

	resp := orderResponse{
		ID:          rec.ID,
		OrderNumber: rec.OrderNumber,
		Status:      rec.Status,
		OrderType:   rec.OrderType,
		TotalAmount: numericString(rec.TotalAmount),
		Lines:       lines,
		LinesTotal:  totals.OrderTotal.StringFixed(2),
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	if rec.TableNumber.Valid {
		resp.TableNumber = rec.TableNumber.String
	}
	if rec.CustomerName.Valid {
		resp.CustomerName = rec.CustomerName.String
	}
	if rec.Notes.Valid {
		resp.Notes = rec.Notes.String
	}
	return resp
}

func rawRecordFromRow(rec database.OrderRecordRow) lineitem.RawOrderRecord {
	return lineitem.RawOrderRecord{
		ItemIDs:          rec.ItemIds,
		ItemNames:        rec.ItemNames,
		UnitPrices:       rec.UnitPrices,
		MenuQuantities:   rec.MenuQuantities,
		SupplementIDs:    rec.SupplementIds,
		SupplementNames:  rec.SupplementNames,
		SupplementPrices: rec.SupplementPrices,
		ItemImages:       rec.ItemImages,

		BreakfastIDs:          rec.BreakfastIds,
		BreakfastNames:        rec.BreakfastNames,
		BreakfastPrices:       rec.BreakfastPrices,
		BreakfastQuantities:   rec.BreakfastQuantities,
		BreakfastOptionIDs:    rec.BreakfastOptionIds,
		BreakfastOptionNames:  rec.BreakfastOptionNames,
		BreakfastOptionPrices: rec.BreakfastOptionPrices,
		BreakfastImages:       rec.BreakfastImages,
	}
}

func isValidOrderStatus(s string) bool {
	switch s {
	case enum.OrderStatusNew,
		enum.OrderStatusPreparing,
		enum.OrderStatusReady,
		enum.OrderStatusDelivered,
		enum.OrderStatusCancelled:
		return true
	}
	return false
}

// allowedTransitions defines valid status transitions.
// Key is current status, value is the set of statuses it can transition to.
var allowedTransitions = map[string][]string{
	enum.OrderStatusNew:       {enum.OrderStatusPreparing, enum.OrderStatusCancelled},
	enum.OrderStatusPreparing: {enum.OrderStatusReady, enum.OrderStatusCancelled},
	enum.OrderStatusReady:     {enum.OrderStatusDelivered, enum.OrderStatusCancelled},
}

// validateStatusTransition checks if the transition from current to next is allowed.
func validateStatusTransition(current, next string) error {
	allowed, ok := allowedTransitions[current]
	if !ok {
		return fmt.Errorf("cannot transition from %s", current)
	}
	for _, s := range allowed {
		if s == next {
			return nil
		}
	}
	return fmt.Errorf("cannot transition from %s to %s", current, next)
}
