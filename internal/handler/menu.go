package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/brioche-cafe/api/internal/database"
	"github.com/brioche-cafe/api/internal/lineitem"
)

// MenuStore defines the database methods needed by menu item handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type MenuStore interface {
	ListMenuItemsByCategory(ctx context.Context, categoryID int64) ([]database.ListMenuItemsByCategoryRow, error)
	GetMenuItem(ctx context.Context, id int64) (database.MenuItem, error)
	CreateMenuItem(ctx context.Context, arg database.CreateMenuItemParams) (database.MenuItem, error)
	UpdateMenuItem(ctx context.Context, arg database.UpdateMenuItemParams) (database.MenuItem, error)
	SoftDeleteMenuItem(ctx context.Context, id int64) (int64, error)
}

// MenuHandler handles menu item endpoints.
type MenuHandler struct {
	store        MenuStore
	imageBaseURL string
}

// NewMenuHandler creates a new MenuHandler.
func NewMenuHandler(store MenuStore, imageBaseURL string) *MenuHandler {
	return &MenuHandler{store: store, imageBaseURL: imageBaseURL}
}

// RegisterRoutes registers menu item CRUD endpoints on the given Chi router.
func (h *MenuHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{id}", h.Get)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type createMenuItemRequest struct {
	CategoryID  int64  `json:"category_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	ImageURL    string `json:"image_url"`
}

type menuItemResponse struct {
	ID          int64     `json:"id"`
	CategoryID  int64     `json:"category_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       string    `json:"price"`
	PromoPrice  *string   `json:"promo_price,omitempty"`
	ImageURL    string    `json:"image_url"`
	InStock     bool      `json:"in_stock"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (h *MenuHandler) toMenuItemResponse(m database.MenuItem) menuItemResponse {
	resp := menuItemResponse{
		ID:         m.ID,
		CategoryID: m.CategoryID,
		Name:       m.Name,
		Price:      numericString(m.Price),
		InStock:    m.InStock,
		IsActive:   m.IsActive,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.Description.Valid {
		resp.Description = &m.Description.String
	}
	if m.ImageUrl.Valid {
		resp.ImageURL = lineitem.NormalizeImageURL(h.imageBaseURL, m.ImageUrl.String)
	}
	return resp
}

func (h *MenuHandler) toListedResponse(m database.ListMenuItemsByCategoryRow) menuItemResponse {
	resp := menuItemResponse{
		ID:         m.ID,
		CategoryID: m.CategoryID,
		Name:       m.Name,
		Price:      numericString(m.Price),
		InStock:    m.InStock,
		IsActive:   m.IsActive,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
	if m.Description.Valid {
		resp.Description = &m.Description.String
	}
	if m.ImageUrl.Valid {
		resp.ImageURL = lineitem.NormalizeImageURL(h.imageBaseURL, m.ImageUrl.String)
	}
	if m.PromoPrice.Valid {
		s := numericString(m.PromoPrice)
		resp.PromoPrice = &s
	}
	return resp
}

// --- Handlers ---

// ListByCategory returns the active menu items of one category, with any
// running promotion's price attached. Mounted under /categories/{id}/items.
func (h *MenuHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category ID"})
		return
	}

	items, err := h.store.ListMenuItemsByCategory(r.Context(), categoryID)
	if err != nil {
		log.Printf("ERROR: list menu items: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]menuItemResponse, len(items))
	for i, m := range items {
		resp[i] = h.toListedResponse(m)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns a single menu item.
func (h *MenuHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	item, err := h.store.GetMenuItem(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: get menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, h.toMenuItemResponse(item))
}

// Create adds a new menu item.
func (h *MenuHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, ok := h.validateItemRequest(w, req)
	if !ok {
		return
	}

	item, err := h.store.CreateMenuItem(r.Context(), database.CreateMenuItemParams{
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: textOrNull(req.Description),
		Price:       decimalToNumeric(price),
		ImageUrl:    textOrNull(req.ImageURL),
	})
	if err != nil {
		log.Printf("ERROR: create menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, h.toMenuItemResponse(item))
}

// Update modifies an existing menu item.
func (h *MenuHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	var req createMenuItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, ok := h.validateItemRequest(w, req)
	if !ok {
		return
	}

	item, err := h.store.UpdateMenuItem(r.Context(), database.UpdateMenuItemParams{
		ID:          id,
		CategoryID:  req.CategoryID,
		Name:        req.Name,
		Description: textOrNull(req.Description),
		Price:       decimalToNumeric(price),
		ImageUrl:    textOrNull(req.ImageURL),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: update menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, h.toMenuItemResponse(item))
}

// Delete soft-deletes a menu item.
func (h *MenuHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	if _, err := h.store.SoftDeleteMenuItem(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: delete menu item: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// validateItemRequest checks the common create/update fields and parses
// the price. A price of zero or less is rejected here so it can never
// reach the catalog; downstream pricing treats nonpositive prices as
// invalid data.
func (h *MenuHandler) validateItemRequest(w http.ResponseWriter, req createMenuItemRequest) (decimal.Decimal, bool) {
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return decimal.Zero, false
	}
	if req.CategoryID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category_id is required"})
		return decimal.Zero, false
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.LessThanOrEqual(decimal.Zero) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be a positive decimal"})
		return decimal.Zero, false
	}
	return price, true
}

// --- Shared numeric helpers ---

// numericString formats a pgtype.Numeric as a money string with two
// decimal places; invalid values render as "0.00".
func numericString(n pgtype.Numeric) string {
	return numericToDecimal(n).StringFixed(2)
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
