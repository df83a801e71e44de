// Package web serves the diagram editor API: diagram CRUD over the store,
// document generation, mind-map expansion and SSE subscriptions.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/ritzau/blueprint/pkg/expander"
	"github.com/ritzau/blueprint/pkg/logging"
	"github.com/ritzau/blueprint/pkg/pipeline"
	"github.com/ritzau/blueprint/pkg/pubsub"
	"github.com/ritzau/blueprint/pkg/store"
)

var log = logging.New("web")

// Config wires the server to the rest of the application. Store is required;
// without Expander the expansion routes answer 503.
type Config struct {
	Store     *store.Store
	Generator pipeline.Generator
	Runner    *pipeline.Runner
	Expander  *expander.Expander
	Publisher pubsub.Publisher
	Metrics   http.Handler
}

// Server represents the web server
type Server struct {
	router    *mux.Router
	store     *store.Store
	generator pipeline.Generator
	runner    *pipeline.Runner
	expander  *expander.Expander
	publisher pubsub.Publisher
	metrics   http.Handler
	validate  *validator.Validate
}

// NewServer creates a new web server. Committed store mutations are published
// on pubsub.TopicDiagram.
func NewServer(cfg Config) *Server {
	publisher := cfg.Publisher
	if publisher == nil {
		publisher = pubsub.NewSSEPublisher()
	}

	s := &Server{
		router:    mux.NewRouter(),
		store:     cfg.Store,
		generator: cfg.Generator,
		runner:    cfg.Runner,
		expander:  cfg.Expander,
		publisher: publisher,
		metrics:   cfg.Metrics,
		validate:  validator.New(),
	}
	s.store.OnChange(s.publishChange)
	s.setupRoutes()
	return s
}

func (s *Server) publishChange(c store.Change) {
	g := s.store.Snapshot()
	data := pubsub.DiagramChange{
		Kind:       string(c.Kind),
		ID:         c.ID,
		NodesCount: len(g.Nodes),
		EdgesCount: len(g.Edges),
	}
	if err := s.publisher.Publish(pubsub.TopicDiagram, string(c.Kind), data); err != nil {
		log.Warn("failed to publish diagram change", "kind", c.Kind, "error", err)
	}
}

// Publisher returns the publisher used for SSE subscriptions.
func (s *Server) Publisher() pubsub.Publisher {
	return s.publisher
}

func (s *Server) setupRoutes() {
	s.router.Use(logging.RequestIDMiddleware)

	// SSE subscription endpoints
	s.router.HandleFunc("/api/subscribe/{topic}", s.handleSubscribe).Methods("GET")

	// Diagram
	s.router.HandleFunc("/api/diagram", s.handleGetDiagram).Methods("GET")
	s.router.HandleFunc("/api/diagram", s.handlePutDiagram).Methods("PUT")
	s.router.HandleFunc("/api/diagram/diagnostics", s.handleDiagnostics).Methods("GET")
	s.router.HandleFunc("/api/nodes", s.handleAddNode).Methods("POST")
	s.router.HandleFunc("/api/nodes/{id}", s.handleGetNode).Methods("GET")
	s.router.HandleFunc("/api/nodes/{id}", s.handlePatchNode).Methods("PATCH")
	s.router.HandleFunc("/api/nodes/{id}", s.handleDeleteNode).Methods("DELETE")
	s.router.HandleFunc("/api/edges", s.handleAddEdge).Methods("POST")
	s.router.HandleFunc("/api/edges/{id}", s.handleDeleteEdge).Methods("DELETE")

	// Documents
	s.router.HandleFunc("/api/generate", s.handleGenerate).Methods("POST")
	s.router.HandleFunc("/api/documents", s.handleListDocuments).Methods("GET")
	s.router.HandleFunc("/api/documents/{path:.+}", s.handleGetDocument).Methods("GET")
	s.router.HandleFunc("/api/nodes/{id}/spec", s.handleNodeSpec).Methods("GET")

	// Mind-map expansion
	s.router.HandleFunc("/api/nodes/{id}/expand", s.handleExpand).Methods("POST")
	s.router.HandleFunc("/api/nodes/{id}/suggestions/{sid}/accept", s.handleAccept).Methods("POST")
	s.router.HandleFunc("/api/nodes/{id}/suggestions/{sid}/reject", s.handleReject).Methods("POST")
	s.router.HandleFunc("/api/nodes/{id}/suggestions/{sid}", s.handleEditSuggestion).Methods("PATCH")

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics).Methods("GET")
	}
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves on port until ctx is done, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting web server", "url", fmt.Sprintf("http://localhost:%d", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	// SSE streams end when the publisher closes their subscriptions.
	if err := s.publisher.Close(); err != nil {
		log.Warn("closing publisher", "error", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down web server: %w", err)
	}
	return nil
}

var subscribableTopics = map[string]bool{
	pubsub.TopicStatus:    true,
	pubsub.TopicDiagram:   true,
	pubsub.TopicDocuments: true,
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	topic := mux.Vars(r)["topic"]
	if !subscribableTopics[topic] {
		http.Error(w, fmt.Sprintf("unknown topic: %s", topic), http.StatusNotFound)
		return
	}

	// Subscribe before writing headers so failures can still be reported.
	sub, err := s.publisher.Subscribe(r.Context(), topic)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// Send initial comment to establish connection (Safari compatibility)
	fmt.Fprintf(w, ": connected\n\n")
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := pubsub.WriteSSE(w, event); err != nil {
				logging.WarnContext(r.Context(), "error writing SSE event", "topic", topic, "error", err)
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
