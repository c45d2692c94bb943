// Package server exposes a parsed family tree over HTTP.
package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/salmonumbrella/famtree/internal/tree"
)

// maxParseBody caps POST /api/parse request bodies.
const maxParseBody = 10 << 20

// Server is the HTTP API for a family tree.
type Server struct {
	router chi.Router
	root   *tree.Node
	apiKey string
	log    *log.Logger
	opts   []tree.Option
}

// NewServer serves root. When apiKey is non-empty every /api route requires
// it as a bearer token. opts apply to trees posted to /api/parse.
func NewServer(root *tree.Node, apiKey string, logger *log.Logger, opts ...tree.Option) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		root:   root,
		apiKey: apiKey,
		log:    logger,
		opts:   opts,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		if s.apiKey != "" {
			r.Use(AuthMiddleware(s.apiKey))
		}
		r.Get("/tree", s.handleTree)
		r.Get("/search", s.handleSearch)
		r.Get("/flatten", s.handleFlatten)
		r.Get("/stats", s.handleStats)
		r.Post("/parse", s.handleParse)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, document(s.root))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		jsonError(w, "missing query parameter q", http.StatusBadRequest)
		return
	}
	matches := tree.Search(s.root, q)
	if matches == nil {
		matches = []tree.Match{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"query":   q,
		"matches": matches,
	})
}

func (s *Server) handleFlatten(w http.ResponseWriter, r *http.Request) {
	rows := tree.Flatten(s.root)
	if rows == nil {
		rows = []tree.Row{}
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, tree.Summarize(s.root))
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxParseBody))
	if err != nil {
		jsonError(w, "request body too large or unreadable", http.StatusRequestEntityTooLarge)
		return
	}
	root := tree.Parse(string(body), s.opts...)
	s.log.Debug("parsed request body", "bytes", len(body), "nodes", root.Count())
	writeJSON(w, http.StatusOK, document(root))
}

// document maps the empty tree to an empty object.
func document(root *tree.Node) any {
	if root == nil {
		return map[string]any{}
	}
	return root
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
