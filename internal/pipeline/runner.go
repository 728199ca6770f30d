// Package pipeline is the unit-of-work orchestrator: for one (employee, date)
// batch it computes the pending recordings and runs each through
// download → sample → synthesize → persist → ledger-mark, isolating failures
// per recording. The ledger mark happens strictly after the event log is
// persisted, so a crash anywhere mid-file leaves the file pending and the
// next non-forced run picks it up again.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/worklens/worklens/internal/analysis"
	"github.com/worklens/worklens/internal/directory"
	"github.com/worklens/worklens/internal/recording"
	"github.com/worklens/worklens/internal/sampler"
	"github.com/worklens/worklens/internal/store"
)

// Lister enumerates candidate recordings for an (employee, date) pair.
type Lister interface {
	List(ctx context.Context, employeeID, date string) ([]recording.Reference, error)
}

// Downloader fetches a recording to a local temp file.
type Downloader interface {
	DownloadToTempFile(ctx context.Context, key string) (string, func(), error)
}

// Sampler probes and samples a local recording into keyframes.
type Sampler interface {
	SampleFrames(ctx context.Context, localPath string, intervalSec int) (*sampler.FrameSet, error)
}

// Synthesizer produces frame captions and the event-log document.
// Both calls degrade internally instead of returning errors.
type Synthesizer interface {
	DescribeFrame(ctx context.Context, framePath string, offsetSec int) analysis.FrameDescription
	SynthesizeEventLog(ctx context.Context, fileName, durationLabel string, frames []analysis.FrameDescription,
		employeeID, fullName, team, date string) *analysis.EventLog
}

// Resolver maps an employee ID to a display profile.
type Resolver interface {
	Resolve(employeeID string) directory.Profile
}

// Result is the partial-success shape every batch returns.
type Result struct {
	EmployeeID     string   `json:"employeeID"`
	Date           string   `json:"date"`
	ProcessedCount int      `json:"processedCount"`
	Skipped        []string `json:"skipped"`
	Errors         []string `json:"errors"`
}

// Runner wires the pipeline's collaborators together.
type Runner struct {
	lister        Lister
	downloader    Downloader
	sampler       Sampler
	synth         Synthesizer
	ledger        store.Ledger
	events        store.EventStore
	directory     Resolver
	frameInterval int
}

// NewRunner creates a Runner. frameIntervalSec is the keyframe sampling
// interval in seconds.
func NewRunner(
	lister Lister,
	downloader Downloader,
	smp Sampler,
	synth Synthesizer,
	ledger store.Ledger,
	events store.EventStore,
	dir Resolver,
	frameIntervalSec int,
) *Runner {
	return &Runner{
		lister:        lister,
		downloader:    downloader,
		sampler:       smp,
		synth:         synth,
		ledger:        ledger,
		events:        events,
		directory:     dir,
		frameInterval: frameIntervalSec,
	}
}

// Run processes one (employee, date) batch. Recordings already in the ledger
// are skipped unless force is true. A listing failure is fatal for the call;
// any per-recording failure is recorded as "<fileName>: <error>" and the
// batch continues. ProcessedCount counts only recordings whose full pipeline
// — through the ledger mark — completed.
func (r *Runner) Run(ctx context.Context, employeeID, date string, force bool) (*Result, error) {
	runID := uuid.NewString()
	logger := log.With().
		Str("runId", runID).
		Str("employeeId", employeeID).
		Str("date", date).
		Logger()

	result := &Result{
		EmployeeID: employeeID,
		Date:       date,
		Skipped:    []string{},
		Errors:     []string{},
	}

	refs, err := r.lister.List(ctx, employeeID, date)
	if err != nil {
		return nil, fmt.Errorf("list recordings for %s/%s: %w", employeeID, date, err)
	}
	if len(refs) == 0 {
		logger.Info().Msg("No recordings for batch")
		return result, nil
	}

	// One directory lookup per batch; Unknown is a normal outcome.
	profile := r.directory.Resolve(employeeID)

	logger.Info().
		Int("candidates", len(refs)).
		Bool("force", force).
		Str("fullName", profile.FullName).
		Msg("Batch started")

	start := time.Now()
	for _, ref := range refs {
		if !force {
			processed, err := r.ledger.IsProcessed(ctx, employeeID, ref.FileName)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", ref.FileName, err))
				continue
			}
			if processed {
				result.Skipped = append(result.Skipped, ref.FileName)
				continue
			}
		}

		if err := r.processOne(ctx, ref, employeeID, date, profile); err != nil {
			logger.Error().Err(err).Str("fileName", ref.FileName).Msg("Recording failed")
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", ref.FileName, err))
			continue
		}
		result.ProcessedCount++
	}

	logger.Info().
		Int("processed", result.ProcessedCount).
		Int("skipped", len(result.Skipped)).
		Int("errors", len(result.Errors)).
		Dur("duration", time.Since(start)).
		Msg("Batch finished")
	return result, nil
}

// processOne runs the full per-recording pipeline. The ledger mark is the
// last step; nothing here marks on partial completion.
func (r *Runner) processOne(ctx context.Context, ref recording.Reference, employeeID, date string, profile directory.Profile) error {
	localPath, removeVideo, err := r.downloader.DownloadToTempFile(ctx, ref.Key)
	if err != nil {
		return err
	}
	defer removeVideo()

	frameSet, err := r.sampler.SampleFrames(ctx, localPath, r.frameInterval)
	if err != nil {
		return err
	}
	defer frameSet.Cleanup()

	descriptions := make([]analysis.FrameDescription, 0, len(frameSet.Frames))
	for _, frame := range frameSet.Frames {
		descriptions = append(descriptions, r.synth.DescribeFrame(ctx, frame.Path, frame.OffsetSec))
	}

	doc := r.synth.SynthesizeEventLog(ctx,
		ref.FileName,
		sampler.HMS(frameSet.DurationSec),
		descriptions,
		employeeID, profile.FullName, profile.Team, date,
	)

	if err := r.events.SaveEventLog(ctx, doc); err != nil {
		return err
	}
	return r.ledger.MarkProcessed(ctx, employeeID, ref.FileName)
}
