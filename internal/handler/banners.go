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

	"github.com/brioche-cafe/api/internal/database"
	"github.com/brioche-cafe/api/internal/lineitem"
)

// BannerStore defines the database methods needed by banner handlers.
// Satisfied by *database.Queries; narrow interface for testability.
type BannerStore interface {
	ListActiveBanners(ctx context.Context) ([]database.Banner, error)
	ListBanners(ctx context.Context) ([]database.Banner, error)
	CreateBanner(ctx context.Context, arg database.CreateBannerParams) (database.Banner, error)
	UpdateBanner(ctx context.Context, arg database.UpdateBannerParams) (database.Banner, error)
	SoftDeleteBanner(ctx context.Context, id int64) (int64, error)
}

// BannerHandler handles home-screen banner endpoints.
type BannerHandler struct {
	store        BannerStore
	imageBaseURL string
}

// NewBannerHandler creates a new BannerHandler.
func NewBannerHandler(store BannerStore, imageBaseURL string) *BannerHandler {
	return &BannerHandler{store: store, imageBaseURL: imageBaseURL}
}

// RegisterRoutes registers banner CRUD endpoints on the given Chi router.
func (h *BannerHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.ListAll)
	r.Post("/", h.Create)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

// --- Request / Response types ---

type bannerRequest struct {
	Title     string `json:"title"`
	ImageURL  string `json:"image_url"`
	LinkURL   string `json:"link_url"`
	SortOrder int32  `json:"sort_order"`
	StartsAt  string `json:"starts_at"` // RFC3339, optional
	EndsAt    string `json:"ends_at"`   // RFC3339, optional
}

type bannerResponse struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	ImageURL  string     `json:"image_url"`
	LinkURL   string     `json:"link_url"`
	SortOrder int32      `json:"sort_order"`
	StartsAt  *time.Time `json:"starts_at"`
	EndsAt    *time.Time `json:"ends_at"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
}

func (h *BannerHandler) toBannerResponse(b database.Banner) bannerResponse {
	resp := bannerResponse{
		ID:        b.ID,
		ImageURL:  lineitem.NormalizeImageURL(h.imageBaseURL, b.ImageUrl),
		SortOrder: b.SortOrder,
		IsActive:  b.IsActive,
		CreatedAt: b.CreatedAt,
	}
	if b.Title.Valid {
		resp.Title = b.Title.String
	}
	if b.LinkUrl.Valid {
		resp.LinkURL = b.LinkUrl.String
	}
	if b.StartsAt.Valid {
		resp.StartsAt = &b.StartsAt.Time
	}
	if b.EndsAt.Valid {
		resp.EndsAt = &b.EndsAt.Time
	}
	return resp
}

// --- Handlers ---

// ListActive returns the banners currently within their display window.
// This is the public home-screen feed.
func (h *BannerHandler) ListActive(w http.ResponseWriter, r *http.Request) {
	banners, err := h.store.ListActiveBanners(r.Context())
	if err != nil {
		log.Printf("ERROR: list active banners: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]bannerResponse, len(banners))
	for i, b := range banners {
		resp[i] = h.toBannerResponse(b)
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListAll returns every banner regardless of window, for the back office.
func (h *BannerHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	banners, err := h.store.ListBanners(r.Context())
	if err != nil {
		log.Printf("ERROR: list banners: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	resp := make([]bannerResponse, len(banners))
	for i, b := range banners {
		resp[i] = h.toBannerResponse(b)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Create adds a new banner.
func (h *BannerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bannerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.ImageURL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "image_url is required"})
		return
	}

	startsAt, endsAt, ok := parseWindow(w, req.StartsAt, req.EndsAt)
	if !ok {
		return
	}

	banner, err := h.store.CreateBanner(r.Context(), database.CreateBannerParams{
		Title:     textOrNull(req.Title),
		ImageUrl:  req.ImageURL,
		LinkUrl:   textOrNull(req.LinkURL),
		SortOrder: req.SortOrder,
		StartsAt:  startsAt,
		EndsAt:    endsAt,
	})
	if err != nil {
		log.Printf("ERROR: create banner: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusCreated, h.toBannerResponse(banner))
}

// Update modifies an existing banner.
func (h *BannerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid banner ID"})
		return
	}

	var req bannerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.ImageURL == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "image_url is required"})
		return
	}

	startsAt, endsAt, ok := parseWindow(w, req.StartsAt, req.EndsAt)
	if !ok {
		return
	}

	banner, err := h.store.UpdateBanner(r.Context(), database.UpdateBannerParams{
		ID:        id,
		Title:     textOrNull(req.Title),
		ImageUrl:  req.ImageURL,
		LinkUrl:   textOrNull(req.LinkURL),
		SortOrder: req.SortOrder,
		StartsAt:  startsAt,
		EndsAt:    endsAt,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "banner not found"})
			return
		}
		log.Printf("ERROR: update banner: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, h.toBannerResponse(banner))
}

// Delete soft-deletes a banner.
func (h *BannerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid banner ID"})
		return
	}

	if _, err := h.store.SoftDeleteBanner(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "banner not found"})
			return
		}
		log.Printf("ERROR: delete banner: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseWindow parses the optional starts_at / ends_at pair.
func parseWindow(w http.ResponseWriter, starts, ends string) (pgtype.Timestamptz, pgtype.Timestamptz, bool) {
	var startsAt, endsAt pgtype.Timestamptz
	if starts != "" {
		t, err := time.Parse(time.RFC3339, starts)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid starts_at"})
			return startsAt, endsAt, false
		}
		startsAt = pgtype.Timestamptz{Time: t, Valid: true}
	}
	if ends != "" {
		t, err := time.Parse(time.RFC3339, ends)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid ends_at"})
			return startsAt, endsAt, false
		}
		endsAt = pgtype.Timestamptz{Time: t, Valid: true}
	}
	if startsAt.Valid && endsAt.Valid && endsAt.Time.Before(startsAt.Time) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "ends_at must be after starts_at"})
		return startsAt, endsAt, false
	}
	return startsAt, endsAt, true
}
