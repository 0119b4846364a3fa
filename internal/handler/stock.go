package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/brioche-cafe/api/internal/database"
)

// StockStore defines the database methods needed by stock handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type StockStore interface {
	ListMenuItemStock(ctx context.Context) ([]database.ListMenuItemStockRow, error)
	ListBreakfasts(ctx context.Context) ([]database.Breakfast, error)
	SetMenuItemStock(ctx context.Context, arg database.SetMenuItemStockParams) (database.MenuItem, error)
	SetBreakfastStock(ctx context.Context, arg database.SetBreakfastStockParams) (database.Breakfast, error)
}

// StockHandler lets staff flip items in and out of stock without touching
// the rest of the catalog record. Out-of-stock items stay visible on the
// menu but cannot be ordered.
type StockHandler struct {
	store StockStore
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(store StockStore) *StockHandler {
	return &StockHandler{store: store}
}

// RegisterRoutes registers stock endpoints on the given Chi router.
func (h *StockHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Patch("/menu-items/{id}", h.SetMenuItemStock)
	r.Patch("/breakfasts/{id}", h.SetBreakfastStock)
}

type stockRequest struct {
	InStock bool `json:"in_stock"`
}

type stockResponse struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	InStock bool   `json:"in_stock"`
}

type menuItemStockResponse struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	InStock  bool   `json:"in_stock"`
}

type stockListResponse struct {
	MenuItems  []menuItemStockResponse `json:"menu_items"`
	Breakfasts []stockResponse         `json:"breakfasts"`
}

// List returns the availability flags for the whole active catalog, the
// staff stock screen's single fetch.
func (h *StockHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListMenuItemStock(r.Context())
	if err != nil {
		log.Printf("ERROR: list menu item stock: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	breakfasts, err := h.store.ListBreakfasts(r.Context())
	if err != nil {
		log.Printf("ERROR: list breakfasts for stock: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := stockListResponse{
		MenuItems:  make([]menuItemStockResponse, len(items)),
		Breakfasts: make([]stockResponse, len(breakfasts)),
	}
	for i, it := range items {
		resp.MenuItems[i] = menuItemStockResponse{ID: it.ID, Name: it.Name, Category: it.CategoryName, InStock: it.InStock}
	}
	for i, b := range breakfasts {
		resp.Breakfasts[i] = stockResponse{ID: b.ID, Name: b.Name, InStock: b.InStock}
	}

	writeJSON(w, http.StatusOK, resp)
}

// SetMenuItemStock flips a menu item's availability.
func (h *StockHandler) SetMenuItemStock(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	var req stockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	item, err := h.store.SetMenuItemStock(r.Context(), database.SetMenuItemStockParams{
		ID:      id,
		InStock: req.InStock,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
			return
		}
		log.Printf("ERROR: set menu item stock: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, stockResponse{ID: item.ID, Name: item.Name, InStock: item.InStock})
}

// SetBreakfastStock flips a breakfast's availability.
func (h *StockHandler) SetBreakfastStock(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid breakfast ID"})
		return
	}

	var req stockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	breakfast, err := h.store.SetBreakfastStock(r.Context(), database.SetBreakfastStockParams{
		ID:      id,
		InStock: req.InStock,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "breakfast not found"})
			return
		}
		log.Printf("ERROR: set breakfast stock: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, stockResponse{ID: breakfast.ID, Name: breakfast.Name, InStock: breakfast.InStock})
}
