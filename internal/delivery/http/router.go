package http

import (
	"net/http"

	"pacs-study-browser/internal/delivery/http/handler"
	"pacs-study-browser/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router           *mux.Router
	studyHandler     *handler.StudyHandler
	directoryHandler *handler.DirectoryHandler
	auditLogHandler  *handler.AuditLogHandler
	metricsHandler   http.Handler
	authMiddleware   *middleware.AuthMiddleware
	corsMiddleware   *middleware.CORSMiddleware
}

// NewRouter wires the API. auditLogHandler and metricsHandler may be nil, their
// routes are then not registered.
func NewRouter(
	studyHandler *handler.StudyHandler,
	directoryHandler *handler.DirectoryHandler,
	auditLogHandler *handler.AuditLogHandler,
	metricsHandler http.Handler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:           mux.NewRouter(),
		studyHandler:     studyHandler,
		directoryHandler: directoryHandler,
		auditLogHandler:  auditLogHandler,
		metricsHandler:   metricsHandler,
		authMiddleware:   authMiddleware,
		corsMiddleware:   corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	if r.metricsHandler != nil {
		r.router.Handle("/metrics", r.metricsHandler).Methods(http.MethodGet)
	}

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Study page (protected)
	study := api.PathPrefix("/study").Subrouter()
	study.Use(r.authMiddleware.Authenticate)
	study.HandleFunc("", r.studyHandler.GetPage).Methods(http.MethodGet)
	study.HandleFunc("/access-location", r.studyHandler.ChangeAccessLocation).Methods(http.MethodPut)
	study.HandleFunc("/filter", r.studyHandler.UpdateFilter).Methods(http.MethodPut)
	study.HandleFunc("/search", r.studyHandler.Search).Methods(http.MethodPost)
	study.HandleFunc("/next", r.studyHandler.NextPage).Methods(http.MethodPost)
	study.HandleFunc("/results", r.studyHandler.ClearResults).Methods(http.MethodDelete)
	study.HandleFunc("/expand", r.studyHandler.ToggleExpand).Methods(http.MethodPost)
	study.HandleFunc("/scroll", r.studyHandler.Scroll).Methods(http.MethodPost)
	study.HandleFunc("/count", r.studyHandler.Count).Methods(http.MethodGet)
	study.HandleFunc("/size", r.studyHandler.Size).Methods(http.MethodGet)
	study.HandleFunc("/{tab}", r.studyHandler.Navigate).Methods(http.MethodGet)

	// AE directory (protected)
	aets := api.PathPrefix("/aets").Subrouter()
	aets.Use(r.authMiddleware.Authenticate)
	aets.HandleFunc("", r.directoryHandler.GetApplicationEntities).Methods(http.MethodGet)

	// Admin routes (protected - admin only)
	if r.auditLogHandler != nil {
		admin := api.PathPrefix("/admin").Subrouter()
		admin.Use(r.authMiddleware.Authenticate)
		admin.Use(middleware.RequireAdmin)
		admin.HandleFunc("/audit/queries", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
		admin.HandleFunc("/audit/queries/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)
	}

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
