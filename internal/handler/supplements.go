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
	"github.com/shopspring/decimal"

	"github.com/brioche-cafe/api/internal/database"
)

// SupplementStore defines the database methods needed by supplement handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type SupplementStore interface {
	ListSupplementsByCategory(ctx context.Context, categoryID int64) ([]database.Supplement, error)
	CreateSupplement(ctx context.Context, arg database.CreateSupplementParams) (database.Supplement, error)
	UpdateSupplement(ctx context.Context, arg database.UpdateSupplementParams) (database.Supplement, error)
	SoftDeleteSupplement(ctx context.Context, id int64) (int64, error)
}

// SupplementHandler handles per-category supplement endpoints. A supplement
// is a paid extra a customer can attach to one menu line (extra cheese on a
// sandwich); it applies per category, not per item.
type SupplementHandler struct {
	store SupplementStore
}

// NewSupplementHandler creates a new SupplementHandler.
func NewSupplementHandler(store SupplementStore) *SupplementHandler {
	return &SupplementHandler{store: store}
}

// RegisterRoutes registers supplement CRUD endpoints on the given Chi router.
func (h *SupplementHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type supplementRequest struct {
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	Price      string `json:"price"`
}

type supplementResponse struct {
	ID         int64     `json:"id"`
	CategoryID int64     `json:"category_id"`
	Name       string    `json:"name"`
	Price      string    `json:"price"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func toSupplementResponse(s database.Supplement) supplementResponse {
	return supplementResponse{
		ID:         s.ID,
		CategoryID: s.CategoryID,
		Name:       s.Name,
		Price:      numericString(s.Price),
		IsActive:   s.IsActive,
		CreatedAt:  s.CreatedAt,
	}
}

// --- Handlers ---

// ListByCategory returns the supplements offered for one category.
// Mounted under /categories/{id}/supplements.
func (h *SupplementHandler) ListByCategory(w http.ResponseWriter, r *http.Request) {
	categoryID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid category ID"})
		return
	}

	supplements, err := h.store.ListSupplementsByCategory(r.Context(), categoryID)
	if err != nil {
		log.Printf("ERROR: list supplements: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]supplementResponse, len(supplements))
	for i, s := range supplements {
		resp[i] = toSupplementResponse(s)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create adds a new supplement.
func (h *SupplementHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req supplementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, ok := validateSupplementRequest(w, req)
	if !ok {
		return
	}

	supplement, err := h.store.CreateSupplement(r.Context(), database.CreateSupplementParams{
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Price:      decimalToNumeric(price),
	})
	if err != nil {
		log.Printf("ERROR: create supplement: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toSupplementResponse(supplement))
}

// Update modifies an existing supplement.
func (h *SupplementHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid supplement ID"})
		return
	}

	var req supplementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, ok := validateSupplementRequest(w, req)
	if !ok {
		return
	}

	supplement, err := h.store.UpdateSupplement(r.Context(), database.UpdateSupplementParams{
		ID:         id,
		CategoryID: req.CategoryID,
		Name:       req.Name,
		Price:      decimalToNumeric(price),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "supplement not found"})
			return
		}
		log.Printf("ERROR: update supplement: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toSupplementResponse(supplement))
}

// Delete soft-deletes a supplement.
func (h *SupplementHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid supplement ID"})
		return
	}

	if _, err := h.store.SoftDeleteSupplement(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "supplement not found"})
			return
		}
		log.Printf("ERROR: delete supplement: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func validateSupplementRequest(w http.ResponseWriter, req supplementRequest) (decimal.Decimal, bool) {
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return decimal.Zero, false
	}
	if req.CategoryID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "category_id is required"})
		return decimal.Zero, false
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be a non-negative decimal"})
		return decimal.Zero, false
	}
	return price, true
}
