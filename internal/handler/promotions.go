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

// PromotionStore defines the database methods needed by promotion handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type PromotionStore interface {
	ListPromotions(ctx context.Context) ([]database.ListPromotionsRow, error)
	CreatePromotion(ctx context.Context, arg database.CreatePromotionParams) (database.Promotion, error)
	UpdatePromotion(ctx context.Context, arg database.UpdatePromotionParams) (database.Promotion, error)
	SoftDeletePromotion(ctx context.Context, id int64) (int64, error)
}

// PromotionHandler handles discounted-price promotion endpoints. A
// promotion pins a replacement price on one menu item for a time window;
// the catalog and order services pick it up automatically.
type PromotionHandler struct {
	store PromotionStore
}

// NewPromotionHandler creates a new PromotionHandler.
func NewPromotionHandler(store PromotionStore) *PromotionHandler {
	return &PromotionHandler{store: store}
}

// RegisterRoutes registers promotion CRUD endpoints on the given Chi router.
func (h *PromotionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type promotionRequest struct {
	MenuItemID int64  `json:"menu_item_id"`
	Name       string `json:"name"`
	PromoPrice string `json:"promo_price"`
	StartsAt   string `json:"starts_at"` // RFC3339, optional
	EndsAt     string `json:"ends_at"`   // RFC3339, optional
}

type promotionResponse struct {
	ID            int64      `json:"id"`
	MenuItemID    int64      `json:"menu_item_id"`
	MenuItemName  string     `json:"menu_item_name,omitempty"`
	MenuItemPrice string     `json:"menu_item_price,omitempty"`
	Name          string     `json:"name"`
	PromoPrice    string     `json:"promo_price"`
	StartsAt      *time.Time `json:"starts_at"`
	EndsAt        *time.Time `json:"ends_at"`
	IsActive      bool       `json:"is_active"`
	CreatedAt     time.Time  `json:"created_at"`
}

func toPromotionResponse(p database.Promotion) promotionResponse {
	resp := promotionResponse{
		ID:         p.ID,
		MenuItemID: p.MenuItemID,
		Name:       p.Name,
		PromoPrice: numericString(p.PromoPrice),
		IsActive:   p.IsActive,
		CreatedAt:  p.CreatedAt,
	}
	if p.StartsAt.Valid {
		resp.StartsAt = &p.StartsAt.Time
	}
	if p.EndsAt.Valid {
		resp.EndsAt = &p.EndsAt.Time
	}
	return resp
}

// --- Handlers ---

// List returns all active promotions with their target item attached.
func (h *PromotionHandler) List(w http.ResponseWriter, r *http.Request) {
	promotions, err := h.store.ListPromotions(r.Context())
	if err != nil {
		log.Printf("ERROR: list promotions: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]promotionResponse, len(promotions))
	for i, p := range promotions {
		pr := promotionResponse{
			ID:            p.ID,
			MenuItemID:    p.MenuItemID,
			MenuItemName:  p.MenuItemName,
			MenuItemPrice: numericString(p.MenuItemPrice),
			Name:          p.Name,
			PromoPrice:    numericString(p.PromoPrice),
			IsActive:      p.IsActive,
			CreatedAt:     p.CreatedAt,
		}
		if p.StartsAt.Valid {
			pr.StartsAt = &p.StartsAt.Time
		}
		if p.EndsAt.Valid {
			pr.EndsAt = &p.EndsAt.Time
		}
		resp[i] = pr
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create adds a new promotion.
func (h *PromotionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req promotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, ok := validatePromotionRequest(w, req)
	if !ok {
		return
	}

	startsAt, endsAt, ok := parseWindow(w, req.StartsAt, req.EndsAt)
	if !ok {
		return
	}

	promotion, err := h.store.CreatePromotion(r.Context(), database.CreatePromotionParams{
		MenuItemID: req.MenuItemID,
		Name:       req.Name,
		PromoPrice: decimalToNumeric(price),
		StartsAt:   startsAt,
		EndsAt:     endsAt,
	})
	if err != nil {
		log.Printf("ERROR: create promotion: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toPromotionResponse(promotion))
}

// Update modifies an existing promotion.
func (h *PromotionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid promotion ID"})
		return
	}

	var req promotionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, ok := validatePromotionRequest(w, req)
	if !ok {
		return
	}

	startsAt, endsAt, ok := parseWindow(w, req.StartsAt, req.EndsAt)
	if !ok {
		return
	}

	promotion, err := h.store.UpdatePromotion(r.Context(), database.UpdatePromotionParams{
		ID:         id,
		MenuItemID: req.MenuItemID,
		Name:       req.Name,
		PromoPrice: decimalToNumeric(price),
		StartsAt:   startsAt,
		EndsAt:     endsAt,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "promotion not found"})
			return
		}
		log.Printf("ERROR: update promotion: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toPromotionResponse(promotion))
}

// Delete soft-deletes a promotion.
func (h *PromotionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid promotion ID"})
		return
	}

	if _, err := h.store.SoftDeletePromotion(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "promotion not found"})
			return
		}
		log.Printf("ERROR: delete promotion: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func validatePromotionRequest(w http.ResponseWriter, req promotionRequest) (decimal.Decimal, bool) {
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return decimal.Zero, false
	}
	if req.MenuItemID <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "menu_item_id is required"})
		return decimal.Zero, false
	}
	price, err := decimal.NewFromString(req.PromoPrice)
	if err != nil || price.LessThanOrEqual(decimal.Zero) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "promo_price must be a positive decimal"})
		return decimal.Zero, false
	}
	return price, true
}
