package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/repositories"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/query"
	apperrors "github.com/TADASHII77/Hsb-projectt-sub000/pkg/errors"
)

type stubDirectory struct {
	lastInput query.Input
	result    *repositories.DiscoveryResult
	provider  *entities.Provider
	err       error
}

func (d *stubDirectory) Discover(ctx context.Context, in query.Input) (*repositories.DiscoveryResult, error) {
	d.lastInput = in
	if d.err != nil {
		return nil, d.err
	}
	return d.result, nil
}

func (d *stubDirectory) Suggest(ctx context.Context, q string, limit int) ([]entities.Suggestion, error) {
	return []entities.Suggestion{{ID: "p1", Name: "Volt Electric"}}, nil
}

func (d *stubDirectory) GetByID(ctx context.Context, id string) (*entities.Provider, error) {
	if d.provider == nil {
		return nil, apperrors.NewNotFoundError("provider with id " + id + " not found")
	}
	return d.provider, nil
}

func (d *stubDirectory) Create(ctx context.Context, p *entities.Provider) error { return d.err }
func (d *stubDirectory) Update(ctx context.Context, p *entities.Provider) error { return d.err }
func (d *stubDirectory) SetVerified(ctx context.Context, id string, v bool) error {
	return d.err
}
func (d *stubDirectory) Delete(ctx context.Context, id string) error { return d.err }

func ratedProvider(id string, rating float64) *entities.Provider {
	return &entities.Provider{ID: id, Rating: rating, Status: entities.StatusApproved}
}

func TestDiscoverProvidersBucketsResponse(t *testing.T) {
	directory := &stubDirectory{
		result: &repositories.DiscoveryResult{
			Providers: []*entities.Provider{
				ratedProvider("p1", 4.8),
				ratedProvider("p2", 3.2),
				ratedProvider("p3", 4.1),
				ratedProvider("p4", 2.9),
			},
			Total: 4,
		},
	}
	handler := NewProviderHandler(directory, 50)

	req := httptest.NewRequest(http.MethodGet, "/api/providers?page_size=4", nil)
	rec := httptest.NewRecorder()
	handler.DiscoverProviders(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Providers struct {
			Recommended []entities.Provider `json:"recommended"`
			Other       []entities.Provider `json:"other"`
		} `json:"providers"`
		Total      int `json:"total"`
		Page       int `json:"page"`
		TotalPages int `json:"total_pages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Len(t, body.Providers.Recommended, 2)
	assert.Len(t, body.Providers.Other, 2)
	assert.Equal(t, 4, body.Total)
	assert.Equal(t, 1, body.Page)
	assert.Equal(t, 1, body.TotalPages)
}

func TestDiscoverProvidersParsesFilters(t *testing.T) {
	directory := &stubDirectory{result: &repositories.DiscoveryResult{}}
	handler := NewProviderHandler(directory, 50)

	url := "/api/providers?category=plumbing&city=Toronto&verified=true&insured=true" +
		"&min_rating=3.5&max_distance=25&sort=distance&services=pipe%20repair,drains&page=2&page_size=10"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	handler.DiscoverProviders(rec, req)

	in := directory.lastInput
	assert.Equal(t, "plumbing", in.Category)
	assert.Equal(t, "Toronto", in.City)
	assert.True(t, in.VerifiedOnly)
	assert.True(t, in.InsuredOnly)
	assert.False(t, in.ExpertOnly)
	assert.Equal(t, 3.5, in.MinRating)
	assert.Equal(t, 25.0, in.MaxDistanceKm)
	assert.Equal(t, query.SortDistance, in.Sort)
	assert.Equal(t, []string{"pipe repair", "drains"}, in.Services)
	assert.Equal(t, 2, in.Page)
	assert.Equal(t, 10, in.PageSize)
}

func TestDiscoverProvidersRejectsInvalidPage(t *testing.T) {
	directory := &stubDirectory{err: apperrors.NewValidationError("page must be >= 1")}
	handler := NewProviderHandler(directory, 50)

	req := httptest.NewRequest(http.MethodGet, "/api/providers?page=0", nil)
	rec := httptest.NewRecorder()
	handler.DiscoverProviders(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetProviderNotFound(t *testing.T) {
	handler := NewProviderHandler(&stubDirectory{}, 50)

	req := httptest.NewRequest(http.MethodGet, "/api/providers/missing", nil)
	req.SetPathValue("id", "missing")
	rec := httptest.NewRecorder()
	handler.GetProvider(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProviderFound(t *testing.T) {
	handler := NewProviderHandler(&stubDirectory{provider: ratedProvider("p1", 4.5)}, 50)

	req := httptest.NewRequest(http.MethodGet, "/api/providers/p1", nil)
	req.SetPathValue("id", "p1")
	rec := httptest.NewRecorder()
	handler.GetProvider(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var provider entities.Provider
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &provider))
	assert.Equal(t, "p1", provider.ID)
}

func TestSuggestProviders(t *testing.T) {
	handler := NewProviderHandler(&stubDirectory{}, 50)

	req := httptest.NewRequest(http.MethodGet, "/api/providers/suggest?q=volt", nil)
	rec := httptest.NewRecorder()
	handler.SuggestProviders(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Suggestions []entities.Suggestion `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Suggestions, 1)
	assert.Equal(t, "Volt Electric", body.Suggestions[0].Name)
}

func TestStoreOutageMapsToServiceUnavailable(t *testing.T) {
	directory := &stubDirectory{err: apperrors.NewUnavailableError("provider store unavailable", nil)}
	handler := NewProviderHandler(directory, 50)

	req := httptest.NewRequest(http.MethodGet, "/api/providers", nil)
	rec := httptest.NewRecorder()
	handler.DiscoverProviders(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
