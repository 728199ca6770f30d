// Package store provides the processing ledger and the event-log document
// store. The ledger is the idempotency record for the pipeline: one entry per
// (employeeID, fileName) pair, written only after a recording's event log has
// been persisted, so a crash mid-file leaves the file pending and a re-run
// resumes without redoing completed work.
//
// The DynamoDB implementations use a composite key design: the ledger table
// keys entries PK=EMP#{employeeID} / SK={fileName}, the event-log table keys
// documents PK=CASE#{employeeID_date} / SK={fileName}. Both writes are plain
// PutItem upserts, which makes concurrent marks for the same key converge on
// a single row instead of erroring.
package store

import (
	"context"
	"sort"
	"time"

	"github.com/worklens/worklens/internal/analysis"
)

// Record is one ledger entry.
type Record struct {
	EmployeeID  string    `json:"employeeID"`
	FileName    string    `json:"fileName"`
	ProcessedAt time.Time `json:"processedAt"`
}

// Status partitions a candidate file set against the ledger.
type Status struct {
	EmployeeID string   `json:"employeeID"`
	Date       string   `json:"date"`
	Processed  []string `json:"processed"`
	Pending    []string `json:"pending"`
}

// Ledger is the idempotency store for processed recordings.
// Implementations must enforce uniqueness on the (employeeID, fileName) pair;
// MarkProcessed has upsert semantics and is safe to call repeatedly.
type Ledger interface {
	// IsProcessed reports whether a ledger entry exists for the pair.
	IsProcessed(ctx context.Context, employeeID, fileName string) (bool, error)

	// MarkProcessed upserts the entry, refreshing processedAt.
	MarkProcessed(ctx context.Context, employeeID, fileName string) error

	// UnmarkProcessed deletes the entry if present; absent is a no-op.
	UnmarkProcessed(ctx context.Context, employeeID, fileName string) error

	// ProcessedFiles returns the set of file names with ledger entries for
	// the employee, across all dates. Date scoping happens through the
	// candidate set the caller supplies to StatusFor.
	ProcessedFiles(ctx context.Context, employeeID string) (map[string]bool, error)
}

// EventStore persists event-log documents, append-only.
type EventStore interface {
	SaveEventLog(ctx context.Context, doc *analysis.EventLog) error
}

// StatusFor partitions candidates into processed and pending against the
// ledger's entries for the employee. Both slices come back sorted
// lexicographically.
func StatusFor(ctx context.Context, l Ledger, employeeID, date string, candidates []string) (*Status, error) {
	processedSet, err := l.ProcessedFiles(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	st := &Status{
		EmployeeID: employeeID,
		Date:       date,
		Processed:  []string{},
		Pending:    []string{},
	}
	for _, name := range candidates {
		if processedSet[name] {
			st.Processed = append(st.Processed, name)
		} else {
			st.Pending = append(st.Pending, name)
		}
	}
	sort.Strings(st.Processed)
	sort.Strings(st.Pending)
	return st, nil
}
