package routes

import (
	"net/http"

	"github.com/waitwell/edflow/backend/internal/api/handlers"
	"github.com/waitwell/edflow/backend/internal/api/middleware"
	"github.com/waitwell/edflow/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	sessionHandler *handlers.SessionHandler
	journeyHandler *handlers.JourneyHandler
	chatHandler    *handlers.ChatHandler
	shareHandler   *handlers.ShareHandler
	sseHandler     *handlers.SSEHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	sessionHandler *handlers.SessionHandler,
	journeyHandler *handlers.JourneyHandler,
	chatHandler *handlers.ChatHandler,
	shareHandler *handlers.ShareHandler,
	sseHandler *handlers.SSEHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		sessionHandler: sessionHandler,
		journeyHandler: journeyHandler,
		chatHandler:    chatHandler,
		shareHandler:   shareHandler,
		sseHandler:     sseHandler,

		metrics: metrics,
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

	// Session endpoints
	r.mux.HandleFunc("POST /api/sessions", r.sessionHandler.CreateSession)
	r.mux.HandleFunc("DELETE /api/sessions/{id}", r.sessionHandler.DeleteSession)

	// Journey endpoints
	r.mux.HandleFunc("GET /api/journey/{id}", r.journeyHandler.GetJourney)
	r.mux.HandleFunc("GET /api/journey/{id}/history", r.journeyHandler.GetHistory)

	// Assistant endpoint
	if r.chatHandler != nil {
		r.mux.HandleFunc("POST /api/chat", r.chatHandler.Chat)
	}

	// Status sharing endpoint
	if r.shareHandler != nil {
		r.mux.HandleFunc("POST /api/patient/{id}/share", r.shareHandler.ShareStatus)
	}

	// Real-time journey stream
	r.mux.HandleFunc("GET /api/stream/journey/{id}", r.sseHandler.StreamJourneyUpdates)

	// Apply middleware in reverse order (last middleware wraps first)

	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)

	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so SSE preflights get headers too
	handler = middleware.CORSMiddleware(handler)

	return handler
}
