package store

import (
	"context"
	"reflect"
	"testing"

	"github.com/worklens/worklens/internal/analysis"
)

func TestLedgerMarkAndCheck(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	ok, err := l.IsProcessed(ctx, "emp1", "a.webm")
	if err != nil || ok {
		t.Fatalf("IsProcessed before mark = %v, %v", ok, err)
	}

	if err := l.MarkProcessed(ctx, "emp1", "a.webm"); err != nil {
		t.Fatal(err)
	}
	ok, _ = l.IsProcessed(ctx, "emp1", "a.webm")
	if !ok {
		t.Error("IsProcessed after mark should be true")
	}

	// A repeated mark must not create a duplicate entry.
	if err := l.MarkProcessed(ctx, "emp1", "a.webm"); err != nil {
		t.Fatal(err)
	}
	if n := l.Count("emp1"); n != 1 {
		t.Errorf("entry count after double mark = %d, want 1", n)
	}
}

func TestLedgerUnmark(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	if err := l.MarkProcessed(ctx, "emp1", "a.webm"); err != nil {
		t.Fatal(err)
	}
	if err := l.UnmarkProcessed(ctx, "emp1", "a.webm"); err != nil {
		t.Fatal(err)
	}
	ok, _ := l.IsProcessed(ctx, "emp1", "a.webm")
	if ok {
		t.Error("IsProcessed after unmark should be false")
	}

	// Unmarking an absent key is a no-op, not an error.
	if err := l.UnmarkProcessed(ctx, "emp1", "never-seen.webm"); err != nil {
		t.Errorf("unmark of absent key returned error: %v", err)
	}
}

func TestLedgerScopedByEmployee(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	if err := l.MarkProcessed(ctx, "emp1", "a.webm"); err != nil {
		t.Fatal(err)
	}
	ok, _ := l.IsProcessed(ctx, "emp2", "a.webm")
	if ok {
		t.Error("a mark for emp1 must not be visible for emp2")
	}
}

func TestStatusForPartition(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	if err := l.MarkProcessed(ctx, "emp1", "A.webm"); err != nil {
		t.Fatal(err)
	}
	// An entry outside the candidate set must not appear in either partition.
	if err := l.MarkProcessed(ctx, "emp1", "old.webm"); err != nil {
		t.Fatal(err)
	}

	st, err := StatusFor(ctx, l, "emp1", "2024-01-15", []string{"C.webm", "A.webm", "B.webm"})
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(st.Processed, []string{"A.webm"}) {
		t.Errorf("Processed = %v, want [A.webm]", st.Processed)
	}
	if !reflect.DeepEqual(st.Pending, []string{"B.webm", "C.webm"}) {
		t.Errorf("Pending = %v, want [B.webm C.webm] (sorted)", st.Pending)
	}
	if st.EmployeeID != "emp1" || st.Date != "2024-01-15" {
		t.Errorf("identity fields = %s/%s", st.EmployeeID, st.Date)
	}
}

func TestStatusForEmptyCandidates(t *testing.T) {
	st, err := StatusFor(context.Background(), NewMemoryLedger(), "emp1", "2024-01-15", nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(st.Processed) != 0 || len(st.Pending) != 0 {
		t.Errorf("expected empty partitions, got %v / %v", st.Processed, st.Pending)
	}
	// Slices must be non-nil so the JSON response renders [] not null.
	if st.Processed == nil || st.Pending == nil {
		t.Error("partitions must be initialized, not nil")
	}
}

func TestMemoryEventStoreAppends(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryEventStore()

	doc := &analysis.EventLog{
		FileName:   "a.webm",
		CaseID:     analysis.CaseID("emp1", "2024-01-15"),
		EmployeeID: "emp1",
		Events:     []analysis.Event{{StageSequenceID: 1, ActivityName: "Spreadsheet Cleanup"}},
	}
	if err := s.SaveEventLog(ctx, doc); err != nil {
		t.Fatal(err)
	}
	if err := s.SaveEventLog(ctx, &analysis.EventLog{FileName: "b.webm", CaseID: doc.CaseID}); err != nil {
		t.Fatal(err)
	}

	docs := s.Documents()
	if len(docs) != 2 {
		t.Fatalf("got %d documents, want 2", len(docs))
	}
	if docs[0].FileName != "a.webm" || docs[1].FileName != "b.webm" {
		t.Errorf("save order not preserved: %s, %s", docs[0].FileName, docs[1].FileName)
	}
	if docs[0].ProcessedAt.IsZero() {
		t.Error("ProcessedAt should be stamped on save")
	}
	if docs[0].CaseID != "emp1_2024-01-15" {
		t.Errorf("CaseID = %q", docs[0].CaseID)
	}
}
