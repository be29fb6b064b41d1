package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/application/services"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/repositories"
	apperrors "github.com/TADASHII77/Hsb-projectt-sub000/pkg/errors"
)

// EnquiryOrchestrator is the service surface the enquiry handler needs.
type EnquiryOrchestrator interface {
	Request(ctx context.Context, req services.QuoteRequest) (*services.QuoteResult, error)
	RequestBatch(ctx context.Context, providerIDs []string, req services.QuoteRequest) (*services.BatchResult, error)
	GetByID(ctx context.Context, id string) (*entities.Enquiry, error)
	List(ctx context.Context, filter repositories.EnquiryFilter) ([]*entities.Enquiry, int, error)
	UpdateStatus(ctx context.Context, id string, status entities.EnquiryStatus) (*entities.Enquiry, error)
}

// EnquiryHandler handles enquiry-related HTTP requests
type EnquiryHandler struct {
	orchestrator EnquiryOrchestrator
}

// NewEnquiryHandler creates a new enquiry handler
func NewEnquiryHandler(orchestrator EnquiryOrchestrator) *EnquiryHandler {
	return &EnquiryHandler{orchestrator: orchestrator}
}

type enquiryRequestBody struct {
	ProviderID  string   `json:"provider_id"`
	ProviderIDs []string `json:"provider_ids"`

	RequesterEmail string `json:"requester_email"`
	RequesterName  string `json:"requester_name"`
	RequesterPhone string `json:"requester_phone"`

	Services      []string   `json:"services"`
	Category      string     `json:"category"`
	Location      string     `json:"location"`
	Budget        string     `json:"budget"`
	Description   string     `json:"description"`
	PreferredDate *time.Time `json:"preferred_date"`
}

func (b enquiryRequestBody) toQuoteRequest() services.QuoteRequest {
	return services.QuoteRequest{
		ProviderID:     b.ProviderID,
		RequesterEmail: b.RequesterEmail,
		RequesterName:  b.RequesterName,
		RequesterPhone: b.RequesterPhone,
		Services:       b.Services,
		Category:       b.Category,
		Location:       b.Location,
		Budget:         b.Budget,
		Description:    b.Description,
		PreferredDate:  b.PreferredDate,
	}
}

// CreateEnquiry handles POST /api/enquiries
func (h *EnquiryHandler) CreateEnquiry(w http.ResponseWriter, r *http.Request) {
	var body enquiryRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.orchestrator.Request(r.Context(), body.toQuoteRequest())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, result)
}

// CreateEnquiryBatch handles POST /api/enquiries/bulk
func (h *EnquiryHandler) CreateEnquiryBatch(w http.ResponseWriter, r *http.Request) {
	var body enquiryRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	batch, err := h.orchestrator.RequestBatch(r.Context(), body.ProviderIDs, body.toQuoteRequest())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	// Per-target outcomes are always reported, full failure included.
	status := http.StatusCreated
	summary := "all_succeeded"
	switch {
	case batch.Succeeded == 0:
		status = batchFailureStatus(batch.Items)
		summary = "all_failed"
	case batch.Failed > 0:
		status = http.StatusMultiStatus
		summary = "partial_success"
	}

	respondWithJSON(w, status, batchResponse(batch, summary))
}

// batchFailureStatus picks the status for an all-failed batch: the items'
// common status when they agree, 207 when they do not.
func batchFailureStatus(items []services.BatchItem) int {
	status := statusForError(items[0].Err)
	for _, item := range items[1:] {
		if statusForError(item.Err) != status {
			return http.StatusMultiStatus
		}
	}
	return status
}

func batchResponse(batch *services.BatchResult, summary string) map[string]interface{} {
	items := make([]map[string]interface{}, len(batch.Items))
	for i, item := range batch.Items {
		entry := map[string]interface{}{
			"provider_id": item.ProviderID,
		}
		if item.Err != nil {
			entry["error"] = item.Err.Error()
			if appErr, ok := item.Err.(*apperrors.AppError); ok {
				entry["error_type"] = string(appErr.Type)
			}
		} else {
			entry["result"] = item.Result
		}
		items[i] = entry
	}

	return map[string]interface{}{
		"items":     items,
		"succeeded": batch.Succeeded,
		"failed":    batch.Failed,
		"summary":   summary,
	}
}

// GetEnquiry handles GET /api/admin/enquiries/{id}
func (h *EnquiryHandler) GetEnquiry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "enquiry ID is required")
		return
	}

	enquiry, err := h.orchestrator.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, enquiry)
}

// ListEnquiries handles GET /api/admin/enquiries
func (h *EnquiryHandler) ListEnquiries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := repositories.EnquiryFilter{
		ProviderID:  q.Get("provider_id"),
		RequesterID: q.Get("requester_id"),
		Status:      entities.EnquiryStatus(q.Get("status")),
		Limit:       50,
	}
	if v := q.Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if v := q.Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}

	enquiries, total, err := h.orchestrator.List(r.Context(), filter)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"enquiries": enquiries,
		"total":     total,
	})
}

// UpdateEnquiryStatus handles PATCH /api/admin/enquiries/{id}/status
func (h *EnquiryHandler) UpdateEnquiryStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "enquiry ID is required")
		return
	}

	var body struct {
		Status entities.EnquiryStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Status == "" {
		respondWithError(w, http.StatusBadRequest, "a target status is required")
		return
	}

	enquiry, err := h.orchestrator.UpdateStatus(r.Context(), id, body.Status)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, enquiry)
}
