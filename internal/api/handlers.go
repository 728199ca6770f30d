package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/worklens/worklens/internal/pipeline"
)

// processResponse aggregates every (employee, date) pair in the request.
// Skipped and Errors entries are prefixed "employeeID:date:" so the caller
// can tell the batches apart; Detail carries the unprefixed per-pair results.
type processResponse struct {
	Message        string             `json:"message"`
	ProcessedCount int                `json:"processedCount"`
	Skipped        []string           `json:"skipped"`
	Errors         []string           `json:"errors"`
	Detail         []*pipeline.Result `json:"detail"`
}

type reprocessResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

// handleProcess runs the pipeline for the cartesian product of the
// comma-separated employee and date lists. A failed batch is recorded in
// Errors and the remaining pairs still run; the call only returns 500 when
// every pair failed outright.
func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	employeeIDs := splitList(r.PathValue("employeeIDs"))
	dates := splitList(r.PathValue("dates"))
	if len(employeeIDs) == 0 || len(dates) == 0 {
		httpError(w, http.StatusBadRequest, "employeeIDs and dates must be non-empty")
		return
	}
	force := r.URL.Query().Get("force") == "true"

	resp := processResponse{
		Message: "Processing complete",
		Skipped: []string{},
		Errors:  []string{},
		Detail:  []*pipeline.Result{},
	}
	failures := 0

	for _, employeeID := range employeeIDs {
		for _, date := range dates {
			res, err := s.pipeline.Run(r.Context(), employeeID, date, force)
			if err != nil {
				failures++
				resp.Errors = append(resp.Errors, fmt.Sprintf("%s:%s: %v", employeeID, date, err))
				continue
			}
			resp.ProcessedCount += res.ProcessedCount
			for _, name := range res.Skipped {
				resp.Skipped = append(resp.Skipped, fmt.Sprintf("%s:%s:%s", employeeID, date, name))
			}
			for _, msg := range res.Errors {
				resp.Errors = append(resp.Errors, fmt.Sprintf("%s:%s:%s", employeeID, date, msg))
			}
			resp.Detail = append(resp.Detail, res)
		}
	}

	if failures == len(employeeIDs)*len(dates) {
		log.Error().Strs("errors", resp.Errors).Msg("All batches failed")
		httpError(w, http.StatusInternalServerError, "all batches failed")
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	employeeID := r.PathValue("employeeID")
	date := r.PathValue("date")

	st, err := s.pipeline.Status(r.Context(), employeeID, date)
	if err != nil {
		log.Error().Err(err).Str("employeeId", employeeID).Str("date", date).Msg("Status failed")
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, st)
}

func (s *Server) handleReprocess(w http.ResponseWriter, r *http.Request) {
	employeeID := r.PathValue("employeeID")
	date := r.PathValue("date")

	res, err := s.pipeline.Reprocess(r.Context(), employeeID, date)
	if err != nil {
		log.Error().Err(err).Str("employeeId", employeeID).Str("date", date).Msg("Reprocess failed")
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, reprocessResponse{
		Message: fmt.Sprintf("Reprocessed recordings for %s on %s", employeeID, date),
		Count:   res.ProcessedCount,
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// splitList splits a comma-separated path segment, trimming whitespace and
// dropping empty entries.
func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
