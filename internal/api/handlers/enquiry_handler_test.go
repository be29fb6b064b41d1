package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/application/services"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/entities"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/domain/repositories"
	apperrors "github.com/TADASHII77/Hsb-projectt-sub000/pkg/errors"
)

type stubOrchestrator struct {
	result  *services.QuoteResult
	batch   *services.BatchResult
	enquiry *entities.Enquiry
	err     error
}

func (o *stubOrchestrator) Request(ctx context.Context, req services.QuoteRequest) (*services.QuoteResult, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.result, nil
}

func (o *stubOrchestrator) RequestBatch(ctx context.Context, ids []string, req services.QuoteRequest) (*services.BatchResult, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.batch, nil
}

func (o *stubOrchestrator) GetByID(ctx context.Context, id string) (*entities.Enquiry, error) {
	if o.err != nil {
		return nil, o.err
	}
	return o.enquiry, nil
}

func (o *stubOrchestrator) List(ctx context.Context, filter repositories.EnquiryFilter) ([]*entities.Enquiry, int, error) {
	if o.err != nil {
		return nil, 0, o.err
	}
	return []*entities.Enquiry{o.enquiry}, 1, nil
}

func (o *stubOrchestrator) UpdateStatus(ctx context.Context, id string, status entities.EnquiryStatus) (*entities.Enquiry, error) {
	if o.err != nil {
		return nil, o.err
	}
	o.enquiry.Status = status
	return o.enquiry, nil
}

const enquiryBody = `{
	"provider_id": "p1",
	"requester_email": "casey@example.com",
	"requester_name": "Casey",
	"description": "burst pipe in the basement"
}`

func TestCreateEnquirySucceeds(t *testing.T) {
	orchestrator := &stubOrchestrator{
		result: &services.QuoteResult{
			Enquiry:        &entities.Enquiry{ID: "e1", ProviderID: "p1", Status: entities.EnquiryPending},
			RemainingQuota: 2,
		},
	}
	handler := NewEnquiryHandler(orchestrator)

	req := httptest.NewRequest(http.MethodPost, "/api/enquiries", strings.NewReader(enquiryBody))
	rec := httptest.NewRecorder()
	handler.CreateEnquiry(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var result services.QuoteResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "e1", result.Enquiry.ID)
	assert.Equal(t, 2, result.RemainingQuota)
}

func TestCreateEnquiryErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "quota exhausted", err: apperrors.NewQuotaExhaustedError("enquiry allowance exhausted"), want: http.StatusTooManyRequests},
		{name: "duplicate", err: apperrors.NewConflictError("already exists"), want: http.StatusConflict},
		{name: "unknown provider", err: apperrors.NewNotFoundError("not found"), want: http.StatusNotFound},
		{name: "validation", err: apperrors.NewValidationError("bad email"), want: http.StatusBadRequest},
		{name: "store outage", err: apperrors.NewUnavailableError("down", nil), want: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewEnquiryHandler(&stubOrchestrator{err: tt.err})

			req := httptest.NewRequest(http.MethodPost, "/api/enquiries", strings.NewReader(enquiryBody))
			rec := httptest.NewRecorder()
			handler.CreateEnquiry(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestCreateEnquiryMalformedBody(t *testing.T) {
	handler := NewEnquiryHandler(&stubOrchestrator{})

	req := httptest.NewRequest(http.MethodPost, "/api/enquiries", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.CreateEnquiry(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

const batchBody = `{
	"provider_ids": ["p1", "p2", "p3"],
	"requester_email": "casey@example.com",
	"requester_name": "Casey",
	"description": "burst pipe in the basement"
}`

func TestCreateEnquiryBatchPartialSuccessIsMultiStatus(t *testing.T) {
	orchestrator := &stubOrchestrator{
		batch: &services.BatchResult{
			Items: []services.BatchItem{
				{ProviderID: "p1", Result: &services.QuoteResult{Enquiry: &entities.Enquiry{ID: "e1"}}},
				{ProviderID: "p2", Err: apperrors.NewConflictError("already exists")},
				{ProviderID: "p3", Result: &services.QuoteResult{Enquiry: &entities.Enquiry{ID: "e3"}}},
			},
			Succeeded: 2,
			Failed:    1,
		},
	}
	handler := NewEnquiryHandler(orchestrator)

	req := httptest.NewRequest(http.MethodPost, "/api/enquiries/bulk", strings.NewReader(batchBody))
	rec := httptest.NewRecorder()
	handler.CreateEnquiryBatch(rec, req)

	require.Equal(t, http.StatusMultiStatus, rec.Code)

	var body batchResponseBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Succeeded)
	assert.Equal(t, 1, body.Failed)
	assert.Equal(t, "partial_success", body.Summary)
	require.Len(t, body.Items, 3)
	assert.Equal(t, "CONFLICT", body.Items[1].ErrorType)
}

type batchResponseBody struct {
	Items []struct {
		ProviderID string `json:"provider_id"`
		Error      string `json:"error"`
		ErrorType  string `json:"error_type"`
	} `json:"items"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Summary   string `json:"summary"`
}

func TestCreateEnquiryBatchAllFailedKeepsPerTargetOutcomes(t *testing.T) {
	orchestrator := &stubOrchestrator{
		batch: &services.BatchResult{
			Items: []services.BatchItem{
				{ProviderID: "p1", Err: apperrors.NewQuotaExhaustedError("enquiry allowance exhausted")},
				{ProviderID: "p2", Err: apperrors.NewQuotaExhaustedError("enquiry allowance exhausted")},
			},
			Failed: 2,
		},
	}
	handler := NewEnquiryHandler(orchestrator)

	req := httptest.NewRequest(http.MethodPost, "/api/enquiries/bulk", strings.NewReader(batchBody))
	rec := httptest.NewRecorder()
	handler.CreateEnquiryBatch(rec, req)

	// Items agree on quota exhaustion, so the batch carries its status.
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body batchResponseBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "all_failed", body.Summary)
	assert.Equal(t, 2, body.Failed)
	require.Len(t, body.Items, 2)
	for _, item := range body.Items {
		assert.Equal(t, "QUOTA_EXHAUSTED", item.ErrorType)
		assert.NotEmpty(t, item.Error)
	}
}

func TestCreateEnquiryBatchAllFailedMixedKindsIsMultiStatus(t *testing.T) {
	orchestrator := &stubOrchestrator{
		batch: &services.BatchResult{
			Items: []services.BatchItem{
				{ProviderID: "p1", Err: apperrors.NewQuotaExhaustedError("enquiry allowance exhausted")},
				{ProviderID: "p2", Err: apperrors.NewNotFoundError("provider with id p2 not found")},
			},
			Failed: 2,
		},
	}
	handler := NewEnquiryHandler(orchestrator)

	req := httptest.NewRequest(http.MethodPost, "/api/enquiries/bulk", strings.NewReader(batchBody))
	rec := httptest.NewRecorder()
	handler.CreateEnquiryBatch(rec, req)

	require.Equal(t, http.StatusMultiStatus, rec.Code)

	var body batchResponseBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "all_failed", body.Summary)
	assert.Equal(t, "QUOTA_EXHAUSTED", body.Items[0].ErrorType)
	assert.Equal(t, "NOT_FOUND", body.Items[1].ErrorType)
}

func TestCreateEnquiryBatchFullSuccess(t *testing.T) {
	orchestrator := &stubOrchestrator{
		batch: &services.BatchResult{
			Items: []services.BatchItem{
				{ProviderID: "p1", Result: &services.QuoteResult{Enquiry: &entities.Enquiry{ID: "e1"}}},
			},
			Succeeded: 1,
		},
	}
	handler := NewEnquiryHandler(orchestrator)

	req := httptest.NewRequest(http.MethodPost, "/api/enquiries/bulk", strings.NewReader(batchBody))
	rec := httptest.NewRecorder()
	handler.CreateEnquiryBatch(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestUpdateEnquiryStatus(t *testing.T) {
	orchestrator := &stubOrchestrator{
		enquiry: &entities.Enquiry{ID: "e1", Status: entities.EnquiryPending},
	}
	handler := NewEnquiryHandler(orchestrator)

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/enquiries/e1/status",
		strings.NewReader(`{"status": "in_progress"}`))
	req.SetPathValue("id", "e1")
	rec := httptest.NewRecorder()
	handler.UpdateEnquiryStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var enquiry entities.Enquiry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &enquiry))
	assert.Equal(t, entities.EnquiryInProgress, enquiry.Status)
}

func TestUpdateEnquiryStatusRequiresTarget(t *testing.T) {
	handler := NewEnquiryHandler(&stubOrchestrator{})

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/enquiries/e1/status", strings.NewReader(`{}`))
	req.SetPathValue("id", "e1")
	rec := httptest.NewRecorder()
	handler.UpdateEnquiryStatus(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
