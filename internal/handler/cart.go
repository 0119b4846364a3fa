package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/brioche-cafe/api/internal/cart"
	"github.com/brioche-cafe/api/internal/database"
	"github.com/brioche-cafe/api/internal/enum"
	"github.com/brioche-cafe/api/internal/lineitem"
	"github.com/brioche-cafe/api/internal/middleware"
	"github.com/brioche-cafe/api/internal/service"
)

// CartCatalogStore defines the catalog lookups needed to admit an item
// into the cart. Satisfied by *database.Queries; narrow interface for
// testability.
type CartCatalogStore interface {
	GetMenuItemForCart(ctx context.Context, id int64) (database.GetMenuItemForCartRow, error)
	GetSupplement(ctx context.Context, id int64) (database.Supplement, error)
	GetBreakfast(ctx context.Context, id int64) (database.Breakfast, error)
	GetBreakfastOption(ctx context.Context, id int64) (database.BreakfastOption, error)
}

// CartHandler serves the session cart. Prices and names are resolved from
// the catalog when an item is added, never taken from the client; the
// checkout service reprices everything again anyway.
type CartHandler struct {
	carts        *cart.Store
	catalog      CartCatalogStore
	placer       cart.OrderPlacer
	imageBaseURL string
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(carts *cart.Store, catalog CartCatalogStore, placer cart.OrderPlacer, imageBaseURL string) *CartHandler {
	return &CartHandler{carts: carts, catalog: catalog, placer: placer, imageBaseURL: imageBaseURL}
}

// RegisterRoutes registers cart endpoints on the given Chi router.
// Expected to be mounted behind the session middleware.
func (h *CartHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.View)
	r.Delete("/", h.Clear)
	r.Post("/items", h.AddItem)
	r.Patch("/items/{itemID}", h.SetQuantity)
	r.Delete("/items/{itemID}", h.RemoveItem)
	r.Put("/items/{itemID}/supplement", h.SetSupplement)
	r.Post("/submit", h.Submit)
}

// --- Request / Response types ---

type addCartItemRequest struct {
	Kind         string  `json:"kind"`
	ItemID       int64   `json:"item_id"`
	Quantity     int64   `json:"quantity"`
	SupplementID int64   `json:"supplement_id,omitempty"`
	OptionIDs    []int64 `json:"option_ids,omitempty"`
}

type setQuantityRequest struct {
	Quantity int64 `json:"quantity"`
}

type setSupplementRequest struct {
	SupplementID int64 `json:"supplement_id"` // 0 clears the selection
}

type submitCartRequest struct {
	OrderType    string `json:"order_type"`
	TableNumber  string `json:"table_number"`
	CustomerName string `json:"customer_name"`
	Notes        string `json:"notes"`
}

type cartEntryResponse struct {
	CartItemID uuid.UUID           `json:"cart_item_id"`
	Kind       string              `json:"kind"`
	ItemID     int64               `json:"item_id"`
	Name       string              `json:"name"`
	Quantity   int64               `json:"quantity"`
	UnitPrice  string              `json:"unit_price"`
	Supplement *selectionResponse  `json:"supplement,omitempty"`
	Options    []selectionResponse `json:"options,omitempty"`
	ImageURL   string              `json:"image_url"`
}

type cartResponse struct {
	State     string              `json:"state"`
	Entries   []cartEntryResponse `json:"entries"`
	Lines     []orderLineResponse `json:"lines"`
	Total     string              `json:"total"`
	LastOrder *orderRefResponse   `json:"last_order,omitempty"`
}

type orderRefResponse struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Total       string    `json:"total"`
}

// --- Handlers ---

// View returns the cart's state, its raw entries for mutation, and the
// merged display lines with totals.
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	draft, _, ok := h.sessionDraft(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.toCartResponse(draft))
}

// Clear discards the session's cart entirely.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	session := middleware.SessionFromContext(r.Context())
	if session == "" {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	h.carts.Drop(session)
	w.WriteHeader(http.StatusNoContent)
}

// AddItem resolves the requested catalog item and appends it to the cart.
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	draft, _, ok := h.sessionDraft(w, r)
	if !ok {
		return
	}

	var req addCartItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.ItemID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "item_id is required"})
		return
	}
	if req.Quantity < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity must be >= 0"})
		return
	}

	var (
		entry cart.Entry
		err   error
	)
	switch req.Kind {
	case enum.ItemKindMenu:
		entry, err = h.buildMenuEntry(r.Context(), req)
	case enum.ItemKindBreakfast:
		entry, err = h.buildBreakfastEntry(r.Context(), req)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "kind must be menu or breakfast"})
		return
	}
	if err != nil {
		h.writeCatalogError(w, err)
		return
	}

	cartItemID := draft.AddItem(entry)

	resp := struct {
		CartItemID uuid.UUID `json:"cart_item_id"`
		cartResponse
	}{CartItemID: cartItemID, cartResponse: h.toCartResponse(draft)}

	writeJSON(w, http.StatusCreated, resp)
}

// SetQuantity updates one entry's quantity; zero removes the entry.
func (h *CartHandler) SetQuantity(w http.ResponseWriter, r *http.Request) {
	draft, _, ok := h.sessionDraft(w, r)
	if !ok {
		return
	}

	cartItemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cart item ID"})
		return
	}

	var req setQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := draft.SetQuantity(cartItemID, req.Quantity); err != nil {
		switch {
		case errors.Is(err, cart.ErrInvalidQuantity):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "quantity must be >= 0"})
		case errors.Is(err, cart.ErrEntryNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "cart entry not found"})
		default:
			log.Printf("ERROR: set cart quantity: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, h.toCartResponse(draft))
}

// RemoveItem drops one entry from the cart.
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	draft, _, ok := h.sessionDraft(w, r)
	if !ok {
		return
	}

	cartItemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cart item ID"})
		return
	}

	if err := draft.Remove(cartItemID); err != nil {
		if errors.Is(err, cart.ErrEntryNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "cart entry not found"})
			return
		}
		log.Printf("ERROR: remove cart entry: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, h.toCartResponse(draft))
}

// SetSupplement replaces one menu entry's supplement selection. A zero
// supplement_id clears it.
func (h *CartHandler) SetSupplement(w http.ResponseWriter, r *http.Request) {
	draft, _, ok := h.sessionDraft(w, r)
	if !ok {
		return
	}

	cartItemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid cart item ID"})
		return
	}

	var req setSupplementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var sel *lineitem.Selection
	if req.SupplementID > 0 {
		target, ok := findEntry(draft, cartItemID)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "cart entry not found"})
			return
		}
		if target.Kind != enum.ItemKindMenu {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "supplement applies to menu items only"})
			return
		}

		supp, err := h.catalog.GetSupplement(r.Context(), req.SupplementID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "supplement not found"})
				return
			}
			log.Printf("ERROR: get supplement: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}

		item, err := h.catalog.GetMenuItemForCart(r.Context(), target.ItemID)
		if err != nil {
			log.Printf("ERROR: get menu item for supplement check: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			return
		}
		if supp.CategoryID != item.CategoryID {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "supplement does not belong to the item's category"})
			return
		}

		sel = &lineitem.Selection{ID: supp.ID, Name: supp.Name, Price: numericToDecimal(supp.Price)}
	}

	if err := draft.SetSupplement(cartItemID, sel); err != nil {
		switch {
		case errors.Is(err, cart.ErrEntryNotFound):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "cart entry not found"})
		case errors.Is(err, cart.ErrWrongKind):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "supplement applies to menu items only"})
		default:
			log.Printf("ERROR: set cart supplement: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, h.toCartResponse(draft))
}

// Submit places the order built from the cart. A concurrent submission of
// the same cart is rejected with 409 rather than producing a second order.
func (h *CartHandler) Submit(w http.ResponseWriter, r *http.Request) {
	draft, session, ok := h.sessionDraft(w, r)
	if !ok {
		return
	}

	var req submitCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	ref, err := draft.Submit(r.Context(), h.placer, cart.OrderMeta{
		SessionID:    session,
		OrderType:    req.OrderType,
		TableNumber:  req.TableNumber,
		CustomerName: req.CustomerName,
		Notes:        req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrSubmitInProgress):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "submission already in progress"})
		case errors.Is(err, cart.ErrEmptyCart):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "cart is empty"})
		case errors.Is(err, cart.ErrInvalidPrice):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		case isOrderValidationError(err):
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
		default:
			log.Printf("ERROR: submit cart: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, orderRefResponse{
		OrderID:     ref.OrderID,
		OrderNumber: ref.OrderNumber,
		Total:       ref.Total.StringFixed(2),
	})
}

// --- Helpers ---

func (h *CartHandler) sessionDraft(w http.ResponseWriter, r *http.Request) (*cart.Draft, string, bool) {
	session := middleware.SessionFromContext(r.Context())
	if session == "" {
		log.Printf("ERROR: cart request without session")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return nil, "", false
	}
	return h.carts.Get(session), session, true
}

func (h *CartHandler) buildMenuEntry(ctx context.Context, req addCartItemRequest) (cart.Entry, error) {
	item, err := h.catalog.GetMenuItemForCart(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cart.Entry{}, errMenuItemNotFound
		}
		return cart.Entry{}, err
	}
	if !item.InStock {
		return cart.Entry{}, errItemOutOfStock
	}

	basePrice := numericToDecimal(item.Price)
	if item.PromoPrice.Valid {
		basePrice = numericToDecimal(item.PromoPrice)
	}

	entry := cart.Entry{
		Kind:      enum.ItemKindMenu,
		ItemID:    item.ID,
		Name:      item.Name,
		BasePrice: basePrice,
		Quantity:  req.Quantity,
	}
	if item.ImageUrl.Valid {
		entry.ImageURL = item.ImageUrl.String
	}

	if req.SupplementID > 0 {
		supp, err := h.catalog.GetSupplement(ctx, req.SupplementID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return cart.Entry{}, errSupplementNotFound
			}
			return cart.Entry{}, err
		}
		if supp.CategoryID != item.CategoryID {
			return cart.Entry{}, errSupplementMismatch
		}
		entry.Supplement = &lineitem.Selection{ID: supp.ID, Name: supp.Name, Price: numericToDecimal(supp.Price)}
	}

	return entry, nil
}

func (h *CartHandler) buildBreakfastEntry(ctx context.Context, req addCartItemRequest) (cart.Entry, error) {
	breakfast, err := h.catalog.GetBreakfast(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return cart.Entry{}, errBreakfastNotFound
		}
		return cart.Entry{}, err
	}
	if !breakfast.InStock {
		return cart.Entry{}, errItemOutOfStock
	}

	entry := cart.Entry{
		Kind:      enum.ItemKindBreakfast,
		ItemID:    breakfast.ID,
		Name:      breakfast.Name,
		BasePrice: numericToDecimal(breakfast.Price),
		Quantity:  req.Quantity,
	}
	if breakfast.ImageUrl.Valid {
		entry.ImageURL = breakfast.ImageUrl.String
	}

	for _, optID := range req.OptionIDs {
		opt, err := h.catalog.GetBreakfastOption(ctx, optID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return cart.Entry{}, errOptionNotFound
			}
			return cart.Entry{}, err
		}
		if opt.BreakfastID != breakfast.ID {
			return cart.Entry{}, errOptionMismatch
		}
		entry.Options = append(entry.Options, lineitem.Selection{ID: opt.ID, Name: opt.Name, Price: numericToDecimal(opt.Price)})
	}

	return entry, nil
}

// Sentinel errors for catalog resolution, kept handler-local so the add
// path can map each to a status without leaking SQL errors.
var (
	errMenuItemNotFound   = errors.New("menu item not found")
	errBreakfastNotFound  = errors.New("breakfast not found")
	errSupplementNotFound = errors.New("supplement not found")
	errOptionNotFound     = errors.New("breakfast option not found")
	errItemOutOfStock     = errors.New("item is out of stock")
	errSupplementMismatch = errors.New("supplement does not belong to the item's category")
	errOptionMismatch     = errors.New("option does not belong to the breakfast")
)

func (h *CartHandler) writeCatalogError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errMenuItemNotFound),
		errors.Is(err, errBreakfastNotFound),
		errors.Is(err, errSupplementNotFound),
		errors.Is(err, errOptionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, errItemOutOfStock):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, errSupplementMismatch), errors.Is(err, errOptionMismatch):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		log.Printf("ERROR: resolve cart item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func findEntry(draft *cart.Draft, cartItemID uuid.UUID) (cart.Entry, bool) {
	for _, e := range draft.Entries() {
		if e.CartItemID == cartItemID {
			return e, true
		}
	}
	return cart.Entry{}, false
}

func (h *CartHandler) toCartResponse(draft *cart.Draft) cartResponse {
	entries := draft.Entries()
	items, totals := draft.Lines()

	resp := cartResponse{
		State:   draft.State(),
		Entries: make([]cartEntryResponse, len(entries)),
		Total:   totals.OrderTotal.StringFixed(2),
	}

	for i, e := range entries {
		er := cartEntryResponse{
			CartItemID: e.CartItemID,
			Kind:       e.Kind,
			ItemID:     e.ItemID,
			Name:       e.Name,
			Quantity:   e.Quantity,
			UnitPrice:  e.UnitPrice().StringFixed(2),
			ImageURL:   lineitem.NormalizeImageURL(h.imageBaseURL, e.ImageURL),
		}
		if e.Supplement != nil {
			er.Supplement = &selectionResponse{
				ID:    e.Supplement.ID,
				Name:  e.Supplement.Name,
				Price: e.Supplement.Price.StringFixed(2),
			}
		}
		for _, opt := range e.Options {
			er.Options = append(er.Options, selectionResponse{ID: opt.ID, Name: opt.Name, Price: opt.Price.StringFixed(2)})
		}
		resp.Entries[i] = er
	}

	keys := make([]string, 0, len(items))
	for key := range items {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	resp.Lines = make([]orderLineResponse, len(keys))
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
			line.Options = append(line.Options, selectionResponse{ID: opt.ID, Name: opt.Name, Price: opt.Price.StringFixed(2)})
		}
		resp.Lines[i] = line
	}

	if ref, ok := draft.LastOrder(); ok {
		resp.LastOrder = &orderRefResponse{
			OrderID:     ref.OrderID,
			OrderNumber: ref.OrderNumber,
			Total:       ref.Total.StringFixed(2),
		}
	}

	return resp
}

// isOrderValidationError reports whether the error is a known checkout
// validation failure that should surface as a client error.
func isOrderValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrInvalidOrderType) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrMenuItemNotFound) ||
		errors.Is(err, service.ErrItemUnavailable) ||
		errors.Is(err, service.ErrSupplementNotFound) ||
		errors.Is(err, service.ErrSupplementMismatch) ||
		errors.Is(err, service.ErrBreakfastNotFound) ||
		errors.Is(err, service.ErrOptionNotFound) ||
		errors.Is(err, service.ErrOptionMismatch)
}
