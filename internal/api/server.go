// Package api exposes the pipeline over HTTP: batch processing with
// comma-separated employee/date lists, per-batch status, and reprocessing.
// All responses are JSON.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/worklens/worklens/internal/pipeline"
	"github.com/worklens/worklens/internal/store"
)

// Pipeline is the subset of the runner the handlers need.
type Pipeline interface {
	Run(ctx context.Context, employeeID, date string, force bool) (*pipeline.Result, error)
	Status(ctx context.Context, employeeID, date string) (*store.Status, error)
	Reprocess(ctx context.Context, employeeID, date string) (*pipeline.Result, error)
}

// Server holds the route handlers.
type Server struct {
	pipeline Pipeline
}

// NewServer creates a Server backed by the given pipeline.
func NewServer(p Pipeline) *Server {
	return &Server{pipeline: p}
}

// Routes builds the request mux. The returned handler is not yet wrapped
// with middleware; callers compose WithLogging themselves.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /process/{employeeIDs}/{dates}", s.handleProcess)
	mux.HandleFunc("GET /status/{employeeID}/{date}", s.handleStatus)
	mux.HandleFunc("POST /reprocess/{employeeID}/{date}", s.handleReprocess)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return mux
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func httpError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
