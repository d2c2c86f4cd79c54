package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/louisbranch/splittab/internal/feed"
	"github.com/louisbranch/splittab/internal/split/service"
)

// API routes HTTP requests to the split service.
type API struct {
	router    *mux.Router
	svc       *service.Service
	hub       *feed.Hub
	jwtSecret []byte
}

// New wires routes over the service and feed hub.
func New(svc *service.Service, hub *feed.Hub, jwtSecret []byte) *API {
	a := &API{
		router:    mux.NewRouter(),
		svc:       svc,
		hub:       hub,
		jwtSecret: jwtSecret,
	}
	a.setupRoutes()
	return a
}

func (a *API) setupRoutes() {
	// Public endpoints
	a.router.HandleFunc("/api/sessions", a.handleCreateSession).Methods("POST")
	a.router.HandleFunc("/api/sessions/{code}/join", a.handleJoin).Methods("POST")

	// Protected endpoints
	protected := a.router.PathPrefix("/api").Subrouter()
	protected.Use(a.authMiddleware)

	protected.HandleFunc("/sessions/{session_id}/items", a.handleListItems).Methods("GET")
	protected.HandleFunc("/sessions/{session_id}/items", a.handleAddItem).Methods("POST")
	protected.HandleFunc("/items/{item_id}", a.handleUpdateItem).Methods("PUT")
	protected.HandleFunc("/items/{item_id}", a.handleDeleteItem).Methods("DELETE")
	protected.HandleFunc("/items/{item_id}/claim", a.handleUpsertClaim).Methods("PUT")
	protected.HandleFunc("/sessions/{session_id}/even-split", a.handleEvenSplit).Methods("POST")
	protected.HandleFunc("/submit", a.handleSubmit).Methods("POST")
	protected.HandleFunc("/summary", a.handleSummary).Methods("GET")
	protected.HandleFunc("/sessions/{session_id}/summary", a.handleGroupSummary).Methods("GET")
	protected.HandleFunc("/sessions/{session_id}/events", a.handleEvents).Methods("GET")
}

// Handler returns the fully wrapped HTTP handler: CORS on the outside,
// request tracing inside it, routes at the core.
func (a *API) Handler() http.Handler {
	corsOptions := cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}
	return cors.New(corsOptions).Handler(otelhttp.NewHandler(a.router, "splittab.api"))
}
