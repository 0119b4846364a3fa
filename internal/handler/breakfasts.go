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
	"github.com/brioche-cafe/api/internal/lineitem"
)

// BreakfastStore defines the database methods needed by breakfast handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type BreakfastStore interface {
	ListBreakfasts(ctx context.Context) ([]database.Breakfast, error)
	GetBreakfast(ctx context.Context, id int64) (database.Breakfast, error)
	CreateBreakfast(ctx context.Context, arg database.CreateBreakfastParams) (database.Breakfast, error)
	UpdateBreakfast(ctx context.Context, arg database.UpdateBreakfastParams) (database.Breakfast, error)
	SoftDeleteBreakfast(ctx context.Context, id int64) (int64, error)
	ListBreakfastOptions(ctx context.Context, breakfastID int64) ([]database.BreakfastOption, error)
	CreateBreakfastOption(ctx context.Context, arg database.CreateBreakfastOptionParams) (database.BreakfastOption, error)
	UpdateBreakfastOption(ctx context.Context, arg database.UpdateBreakfastOptionParams) (database.BreakfastOption, error)
	SoftDeleteBreakfastOption(ctx context.Context, id int64) (int64, error)
}

// BreakfastHandler handles breakfast formula endpoints. A breakfast is a
// fixed-price formula with selectable options (drink, side, pastry) that
// may carry surcharges.
type BreakfastHandler struct {
	store        BreakfastStore
	imageBaseURL string
}

// NewBreakfastHandler creates a new BreakfastHandler.
func NewBreakfastHandler(store BreakfastStore, imageBaseURL string) *BreakfastHandler {
	return &BreakfastHandler{store: store, imageBaseURL: imageBaseURL}
}

// RegisterRoutes registers breakfast CRUD endpoints on the given Chi router.
func (h *BreakfastHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/options", h.CreateOption)
	r.Put("/options/{optID}", h.UpdateOption)
	r.Delete("/options/{optID}", h.DeleteOption)
}

// --- Request / Response types ---

type breakfastRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	ImageURL    string `json:"image_url"`
}

type breakfastOptionRequest struct {
	GroupName string `json:"group_name"`
	Name      string `json:"name"`
	Price     string `json:"price"`
}

type breakfastOptionResponse struct {
	ID          int64  `json:"id"`
	BreakfastID int64  `json:"breakfast_id"`
	GroupName   string `json:"group_name"`
	Name        string `json:"name"`
	Price       string `json:"price"`
}

type breakfastResponse struct {
	ID          int64                     `json:"id"`
	Name        string                    `json:"name"`
	Description *string                   `json:"description"`
	Price       string                    `json:"price"`
	ImageURL    string                    `json:"image_url"`
	InStock     bool                      `json:"in_stock"`
	IsActive    bool                      `json:"is_active"`
	Options     []breakfastOptionResponse `json:"options,omitempty"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

func toBreakfastOptionResponse(o database.BreakfastOption) breakfastOptionResponse {
	resp := breakfastOptionResponse{
		ID:          o.ID,
		BreakfastID: o.BreakfastID,
		Name:        o.Name,
		Price:       numericString(o.Price),
	}
	if o.GroupName.Valid {
		resp.GroupName = o.GroupName.String
	}
	return resp
}

func (h *BreakfastHandler) toBreakfastResponse(b database.Breakfast, options []database.BreakfastOption) breakfastResponse {
	resp := breakfastResponse{
		ID:        b.ID,
		Name:      b.Name,
		Price:     numericString(b.Price),
		InStock:   b.InStock,
		IsActive:  b.IsActive,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if b.Description.Valid {
		resp.Description = &b.Description.String
	}
	if b.ImageUrl.Valid {
		resp.ImageURL = lineitem.NormalizeImageURL(h.imageBaseURL, b.ImageUrl.String)
	}
	for _, o := range options {
		resp.Options = append(resp.Options, toBreakfastOptionResponse(o))
	}
	return resp
}

// --- Handlers ---

// List returns all active breakfasts without their options.
func (h *BreakfastHandler) List(w http.ResponseWriter, r *http.Request) {
	breakfasts, err := h.store.ListBreakfasts(r.Context())
	if err != nil {
		log.Printf("ERROR: list breakfasts: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]breakfastResponse, len(breakfasts))
	for i, b := range breakfasts {
		resp[i] = h.toBreakfastResponse(b, nil)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Get returns one breakfast with its selectable options.
func (h *BreakfastHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid breakfast ID"})
		return
	}

	breakfast, err := h.store.GetBreakfast(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "breakfast not found"})
			return
		}
		log.Printf("ERROR: get breakfast: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	options, err := h.store.ListBreakfastOptions(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: list breakfast options: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, h.toBreakfastResponse(breakfast, options))
}

// Create adds a new breakfast formula.
func (h *BreakfastHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req breakfastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, ok := validateBreakfastRequest(w, req)
	if !ok {
		return
	}

	breakfast, err := h.store.CreateBreakfast(r.Context(), database.CreateBreakfastParams{
		Name:        req.Name,
		Description: textOrNull(req.Description),
		Price:       decimalToNumeric(price),
		ImageUrl:    textOrNull(req.ImageURL),
	})
	if err != nil {
		log.Printf("ERROR: create breakfast: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, h.toBreakfastResponse(breakfast, nil))
}

// Update modifies an existing breakfast.
func (h *BreakfastHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid breakfast ID"})
		return
	}

	var req breakfastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, ok := validateBreakfastRequest(w, req)
	if !ok {
		return
	}

	breakfast, err := h.store.UpdateBreakfast(r.Context(), database.UpdateBreakfastParams{
		ID:          id,
		Name:        req.Name,
		Description: textOrNull(req.Description),
		Price:       decimalToNumeric(price),
		ImageUrl:    textOrNull(req.ImageURL),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "breakfast not found"})
			return
		}
		log.Printf("ERROR: update breakfast: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, h.toBreakfastResponse(breakfast, nil))
}

// Delete soft-deletes a breakfast.
func (h *BreakfastHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid breakfast ID"})
		return
	}

	if _, err := h.store.SoftDeleteBreakfast(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "breakfast not found"})
			return
		}
		log.Printf("ERROR: delete breakfast: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateOption adds a selectable option to a breakfast.
func (h *BreakfastHandler) CreateOption(w http.ResponseWriter, r *http.Request) {
	breakfastID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid breakfast ID"})
		return
	}

	var req breakfastOptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, ok := validateOptionRequest(w, req)
	if !ok {
		return
	}

	option, err := h.store.CreateBreakfastOption(r.Context(), database.CreateBreakfastOptionParams{
		BreakfastID: breakfastID,
		GroupName:   textOrNull(req.GroupName),
		Name:        req.Name,
		Price:       decimalToNumeric(price),
	})
	if err != nil {
		log.Printf("ERROR: create breakfast option: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, toBreakfastOptionResponse(option))
}

// UpdateOption modifies a breakfast option.
func (h *BreakfastHandler) UpdateOption(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "optID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid option ID"})
		return
	}

	var req breakfastOptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	price, ok := validateOptionRequest(w, req)
	if !ok {
		return
	}

	option, err := h.store.UpdateBreakfastOption(r.Context(), database.UpdateBreakfastOptionParams{
		ID:        id,
		GroupName: textOrNull(req.GroupName),
		Name:      req.Name,
		Price:     decimalToNumeric(price),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "option not found"})
			return
		}
		log.Printf("ERROR: update breakfast option: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, toBreakfastOptionResponse(option))
}

// DeleteOption soft-deletes a breakfast option.
func (h *BreakfastHandler) DeleteOption(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "optID"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid option ID"})
		return
	}

	if _, err := h.store.SoftDeleteBreakfastOption(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "option not found"})
			return
		}
		log.Printf("ERROR: delete breakfast option: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func validateBreakfastRequest(w http.ResponseWriter, req breakfastRequest) (decimal.Decimal, bool) {
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return decimal.Zero, false
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.LessThanOrEqual(decimal.Zero) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be a positive decimal"})
		return decimal.Zero, false
	}
	return price, true
}

func validateOptionRequest(w http.ResponseWriter, req breakfastOptionRequest) (decimal.Decimal, bool) {
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return decimal.Zero, false
	}
	price, err := decimal.NewFromString(req.Price)
	if err != nil || price.IsNegative() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price must be a non-negative decimal"})
		return decimal.Zero, false
	}
	return price, true
}
