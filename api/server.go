// Package api exposes the ledger as a JSON HTTP API.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/rustyeddy/stockledger/fee"
	"github.com/rustyeddy/stockledger/ledger"
)

// Options configures a Server.
type Options struct {
	Logger         *zap.Logger
	AllowedOrigins []string
	// DefaultCommission applies to opens that omit a commission rate.
	DefaultCommission float64
	// Policy is reported by GET /fees. It should match the book's policy.
	Policy fee.Policy
}

// Server handles REST API requests against a single book.
type Server struct {
	book    *ledger.Book
	router  *mux.Router
	log     *zap.Logger
	opts    Options
	handler http.Handler
}

// NewServer creates a new API server
func NewServer(book *ledger.Book, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.DefaultCommission <= 0 {
		opts.DefaultCommission = fee.DefaultInstrumentCommission
	}
	if opts.Policy.MinCommission == nil {
		opts.Policy = fee.DefaultPolicy()
	}

	s := &Server{
		book:   book,
		router: mux.NewRouter(),
		log:    opts.Logger,
		opts:   opts,
	}
	s.setupRoutes()

	// CORS configuration
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
	})
	s.handler = c.Handler(s.router)
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(requestID, s.accessLog)
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, "not_found", "no route for "+r.URL.Path)
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", r.Method+" not allowed on "+r.URL.Path)
	})

	// API v1 routes
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Instrument endpoints
	api.HandleFunc("/instruments", s.handleListInstruments).Methods("GET")
	api.HandleFunc("/instruments", s.handleOpen).Methods("POST")
	api.HandleFunc("/instruments/order", s.handleReorder).Methods("PUT")
	api.HandleFunc("/instruments/{id:[0-9]+}", s.handleGetInstrument).Methods("GET")
	api.HandleFunc("/instruments/{id:[0-9]+}", s.handleDeleteInstrument).Methods("DELETE")

	// Position actions
	api.HandleFunc("/instruments/{id:[0-9]+}/add", s.handleAdd).Methods("POST")
	api.HandleFunc("/instruments/{id:[0-9]+}/reduce", s.handleReduce).Methods("POST")
	api.HandleFunc("/instruments/{id:[0-9]+}/close", s.handleClose).Methods("POST")
	api.HandleFunc("/instruments/{id:[0-9]+}/undo", s.handleUndo).Methods("POST")

	// Entry endpoints
	api.HandleFunc("/instruments/{id:[0-9]+}/entries", s.handleListEntries).Methods("GET")
	api.HandleFunc("/entries/{id:[0-9]+}/note", s.handleAnnotate).Methods("PUT")

	// Fee endpoints
	api.HandleFunc("/fees", s.handleGetFees).Methods("GET")
	api.HandleFunc("/fees", s.handleUpdateFees).Methods("PUT")
	api.HandleFunc("/fees/segments/{segment}", s.handleUpdateSegmentFees).Methods("PUT")

	// Tools
	api.HandleFunc("/limit-ladder", s.handleLimitLadder).Methods("GET")

	// Health check
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// Handler returns the router wrapped in CORS handling.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("api server starting", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.log.Info("api server stopping")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
