package routes

import (
	"net/http"

	"github.com/TADASHII77/Hsb-projectt-sub000/internal/api/handlers"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/api/middleware"
	"github.com/TADASHII77/Hsb-projectt-sub000/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	providerHandler *handlers.ProviderHandler
	enquiryHandler  *handlers.EnquiryHandler

	cacheMiddleware *middleware.CacheMiddleware
	metrics         *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	providerHandler *handlers.ProviderHandler,
	enquiryHandler *handlers.EnquiryHandler,
	cacheMiddleware *middleware.CacheMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:             http.NewServeMux(),
		providerHandler: providerHandler,
		enquiryHandler:  enquiryHandler,
		cacheMiddleware: cacheMiddleware,
		metrics:         metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Provider discovery endpoints
	r.mux.HandleFunc("GET /api/providers", r.providerHandler.DiscoverProviders)
	r.mux.HandleFunc("GET /api/providers/suggest", r.providerHandler.SuggestProviders)
	r.mux.HandleFunc("GET /api/providers/{id}", r.providerHandler.GetProvider)

	// Enquiry endpoints
	r.mux.HandleFunc("POST /api/enquiries", r.enquiryHandler.CreateEnquiry)
	r.mux.HandleFunc("POST /api/enquiries/bulk", r.enquiryHandler.CreateEnquiryBatch)

	// Administrative provider endpoints
	r.mux.HandleFunc("POST /api/admin/providers", r.providerHandler.CreateProvider)
	r.mux.HandleFunc("PUT /api/admin/providers/{id}", r.providerHandler.UpdateProvider)
	r.mux.HandleFunc("POST /api/admin/providers/{id}/verify", r.providerHandler.VerifyProvider)
	r.mux.HandleFunc("DELETE /api/admin/providers/{id}", r.providerHandler.DeleteProvider)

	// Administrative enquiry endpoints
	r.mux.HandleFunc("GET /api/admin/enquiries", r.enquiryHandler.ListEnquiries)
	r.mux.HandleFunc("GET /api/admin/enquiries/{id}", r.enquiryHandler.GetEnquiry)
	r.mux.HandleFunc("PATCH /api/admin/enquiries/{id}/status", r.enquiryHandler.UpdateEnquiryStatus)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	if r.cacheMiddleware != nil {
		handler = r.cacheMiddleware.Middleware(handler)
	}

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// CORS wraps everything so headers are set even on cache HITs
	handler = middleware.CORSMiddleware(handler)

	return handler
}
