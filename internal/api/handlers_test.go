package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/worklens/worklens/internal/pipeline"
	"github.com/worklens/worklens/internal/store"
)

type fakePipeline struct {
	runs    []string // "employeeID/date/force"
	failFor map[string]bool
	status  *store.Status
}

func (f *fakePipeline) Run(ctx context.Context, employeeID, date string, force bool) (*pipeline.Result, error) {
	f.runs = append(f.runs, fmt.Sprintf("%s/%s/%v", employeeID, date, force))
	if f.failFor[employeeID+"/"+date] {
		return nil, errors.New("bucket unreachable")
	}
	return &pipeline.Result{
		EmployeeID:     employeeID,
		Date:           date,
		ProcessedCount: 2,
		Skipped:        []string{"old.webm"},
		Errors:         []string{},
	}, nil
}

func (f *fakePipeline) Status(ctx context.Context, employeeID, date string) (*store.Status, error) {
	if f.status == nil {
		return nil, errors.New("ledger unreachable")
	}
	return f.status, nil
}

func (f *fakePipeline) Reprocess(ctx context.Context, employeeID, date string) (*pipeline.Result, error) {
	if f.failFor[employeeID+"/"+date] {
		return nil, errors.New("bucket unreachable")
	}
	return &pipeline.Result{EmployeeID: employeeID, Date: date, ProcessedCount: 3}, nil
}

func serve(t *testing.T, p Pipeline, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	NewServer(p).Routes().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
	return v
}

func TestProcessCartesianProduct(t *testing.T) {
	p := &fakePipeline{failFor: map[string]bool{}}
	rec := serve(t, p, http.MethodGet, "/process/emp1,emp2/2024-01-15,2024-01-16")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	want := []string{
		"emp1/2024-01-15/false",
		"emp1/2024-01-16/false",
		"emp2/2024-01-15/false",
		"emp2/2024-01-16/false",
	}
	if !reflect.DeepEqual(p.runs, want) {
		t.Errorf("runs = %v, want %v", p.runs, want)
	}

	resp := decode[processResponse](t, rec)
	if resp.ProcessedCount != 8 {
		t.Errorf("ProcessedCount = %d, want 8", resp.ProcessedCount)
	}
	if len(resp.Detail) != 4 {
		t.Errorf("Detail has %d entries, want 4", len(resp.Detail))
	}
	// Skipped entries carry the batch prefix so pairs stay distinguishable.
	if len(resp.Skipped) != 4 || resp.Skipped[0] != "emp1:2024-01-15:old.webm" {
		t.Errorf("Skipped = %v", resp.Skipped)
	}
}

func TestProcessPartialBatchFailure(t *testing.T) {
	p := &fakePipeline{failFor: map[string]bool{"emp2/2024-01-15": true}}
	rec := serve(t, p, http.MethodGet, "/process/emp1,emp2/2024-01-15")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[processResponse](t, rec)
	if resp.ProcessedCount != 2 {
		t.Errorf("ProcessedCount = %d, want 2", resp.ProcessedCount)
	}
	if len(resp.Errors) != 1 || resp.Errors[0] != "emp2:2024-01-15: bucket unreachable" {
		t.Errorf("Errors = %v", resp.Errors)
	}
	if len(resp.Detail) != 1 {
		t.Errorf("Detail has %d entries, want 1", len(resp.Detail))
	}
}

func TestProcessAllBatchesFail(t *testing.T) {
	p := &fakePipeline{failFor: map[string]bool{"emp1/2024-01-15": true}}
	rec := serve(t, p, http.MethodGet, "/process/emp1/2024-01-15")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestProcessForceFlag(t *testing.T) {
	p := &fakePipeline{failFor: map[string]bool{}}
	serve(t, p, http.MethodGet, "/process/emp1/2024-01-15?force=true")
	if len(p.runs) != 1 || p.runs[0] != "emp1/2024-01-15/true" {
		t.Errorf("runs = %v", p.runs)
	}
}

func TestProcessTrimsListEntries(t *testing.T) {
	p := &fakePipeline{failFor: map[string]bool{}}
	serve(t, p, http.MethodGet, "/process/emp1,%20emp2,/2024-01-15")
	want := []string{"emp1/2024-01-15/false", "emp2/2024-01-15/false"}
	if !reflect.DeepEqual(p.runs, want) {
		t.Errorf("runs = %v, want %v", p.runs, want)
	}
}

func TestStatusEndpoint(t *testing.T) {
	p := &fakePipeline{status: &store.Status{
		EmployeeID: "emp1",
		Date:       "2024-01-15",
		Processed:  []string{"a.webm"},
		Pending:    []string{"b.webm"},
	}}
	rec := serve(t, p, http.MethodGet, "/status/emp1/2024-01-15")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	st := decode[store.Status](t, rec)
	if !reflect.DeepEqual(st.Processed, []string{"a.webm"}) || !reflect.DeepEqual(st.Pending, []string{"b.webm"}) {
		t.Errorf("response = %+v", st)
	}
}

func TestStatusEndpointError(t *testing.T) {
	rec := serve(t, &fakePipeline{}, http.MethodGet, "/status/emp1/2024-01-15")
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestReprocessEndpoint(t *testing.T) {
	p := &fakePipeline{failFor: map[string]bool{}}
	rec := serve(t, p, http.MethodPost, "/reprocess/emp1/2024-01-15")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decode[reprocessResponse](t, rec)
	if resp.Count != 3 {
		t.Errorf("Count = %d, want 3", resp.Count)
	}
	if resp.Message == "" {
		t.Error("Message must not be empty")
	}
}

func TestReprocessRequiresPost(t *testing.T) {
	rec := serve(t, &fakePipeline{}, http.MethodGet, "/reprocess/emp1/2024-01-15")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	rec := serve(t, &fakePipeline{}, http.MethodGet, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]string](t, rec)
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}
