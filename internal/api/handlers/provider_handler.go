package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/repositories"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/query"
)

// ProviderDirectory is the service surface the provider handler needs.
type ProviderDirectory interface {
	Discover(ctx context.Context, in query.Input) (*repositories.DiscoveryResult, error)
	Suggest(ctx context.Context, q string, limit int) ([]entities.Suggestion, error)
	GetByID(ctx context.Context, id string) (*entities.Provider, error)
	Create(ctx context.Context, provider *entities.Provider) error
	Update(ctx context.Context, provider *entities.Provider) error
	SetVerified(ctx context.Context, id string, verified bool) error
	Delete(ctx context.Context, id string) error
}

// ProviderHandler handles provider-related HTTP requests
type ProviderHandler struct {
	directory   ProviderDirectory
	maxPageSize int
}

// NewProviderHandler creates a new provider handler
func NewProviderHandler(directory ProviderDirectory, maxPageSize int) *ProviderHandler {
	return &ProviderHandler{
		directory:   directory,
		maxPageSize: maxPageSize,
	}
}

// DiscoverProviders handles GET /api/providers
func (h *ProviderHandler) DiscoverProviders(w http.ResponseWriter, r *http.Request) {
	in := parseDiscoveryInput(r, h.maxPageSize)

	result, err := h.directory.Discover(r.Context(), in)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	buckets := query.Bucket(result.Providers, in.PageSize)
	totalPages := (result.Total + in.PageSize - 1) / in.PageSize

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"providers": map[string]interface{}{
			"recommended": buckets.Recommended,
			"other":       buckets.Other,
		},
		"total":       result.Total,
		"page":        in.Page,
		"page_size":   in.PageSize,
		"total_pages": totalPages,
	})
}

// SuggestProviders handles GET /api/providers/suggest
func (h *ProviderHandler) SuggestProviders(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	suggestions, err := h.directory.Suggest(r.Context(), q, limit)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
	})
}

// GetProvider handles GET /api/providers/{id}
func (h *ProviderHandler) GetProvider(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "provider ID is required")
		return
	}

	provider, err := h.directory.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, provider)
}

// CreateProvider handles POST /api/admin/providers
func (h *ProviderHandler) CreateProvider(w http.ResponseWriter, r *http.Request) {
	var provider entities.Provider
	if err := json.NewDecoder(r.Body).Decode(&provider); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.directory.Create(r.Context(), &provider); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, provider)
}

// UpdateProvider handles PUT /api/admin/providers/{id}
func (h *ProviderHandler) UpdateProvider(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "provider ID is required")
		return
	}

	var provider entities.Provider
	if err := json.NewDecoder(r.Body).Decode(&provider); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	provider.ID = id

	if err := h.directory.Update(r.Context(), &provider); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, provider)
}

// VerifyProvider handles POST /api/admin/providers/{id}/verify
func (h *ProviderHandler) VerifyProvider(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "provider ID is required")
		return
	}

	var body struct {
		Verified *bool `json:"verified"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	verified := true
	if body.Verified != nil {
		verified = *body.Verified
	}

	if err := h.directory.SetVerified(r.Context(), id, verified); err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"id":       id,
		"verified": verified,
	})
}

// DeleteProvider handles DELETE /api/admin/providers/{id}
func (h *ProviderHandler) DeleteProvider(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "provider ID is required")
		return
	}

	if err := h.directory.Delete(r.Context(), id); err != nil {
		respondWithAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// parseDiscoveryInput maps query string parameters onto a filter input.
// Unparseable numeric values fall back to their defaults rather than
// failing the request; validation proper happens in the compiler.
func parseDiscoveryInput(r *http.Request, maxPageSize int) query.Input {
	q := r.URL.Query()

	in := query.Input{
		Category:       q.Get("category"),
		City:           q.Get("city"),
		Services:       splitCSV(q.Get("services")),
		PaymentMethods: splitCSV(q.Get("payment_methods")),
		VerifiedOnly:   q.Get("verified") == "true",
		ExpertOnly:     q.Get("expert") == "true",
		InsuredOnly:    q.Get("insured") == "true",
		Sort:           query.SortKey(q.Get("sort")),
		Page:           1,
		PageSize:       query.DefaultPageSize,
		MaxPageSize:    maxPageSize,
	}

	if v := q.Get("min_rating"); v != "" {
		if rating, err := strconv.ParseFloat(v, 64); err == nil {
			in.MinRating = rating
		}
	}
	if v := q.Get("max_distance"); v != "" {
		if km, err := strconv.ParseFloat(v, 64); err == nil {
			in.MaxDistanceKm = km
		}
	}
	if v := q.Get("page"); v != "" {
		if page, err := strconv.Atoi(v); err == nil {
			in.Page = page
		}
	}
	if v := q.Get("page_size"); v != "" {
		if size, err := strconv.Atoi(v); err == nil {
			in.PageSize = size
		}
	}

	return in
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
