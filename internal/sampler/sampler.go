// Package sampler extracts still keyframes from a recording at fixed time
// intervals using ffmpeg, and probes container duration using ffprobe. Both
// tools are shelled out to; no pure Go library handles the container formats
// the capture clients produce.
package sampler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrDecode marks containers ffprobe cannot parse.
var ErrDecode = errors.New("cannot decode container")

// Frame is one sampled keyframe with its offset into the recording.
type Frame struct {
	Path      string
	OffsetSec int
}

// FrameSet is the result of sampling one recording. Cleanup removes the
// per-video temp directory and everything in it; it is safe to call more
// than once and its failures are logged, not escalated.
type FrameSet struct {
	DurationSec float64
	Frames      []Frame
	Cleanup     func()
}

// FFmpeg samples recordings via the ffmpeg/ffprobe binaries on PATH.
type FFmpeg struct{}

// ffprobeFormat is the subset of ffprobe's -show_format JSON output we read.
type ffprobeFormat struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeDuration returns the container duration in seconds. Failures to run
// ffprobe or to read a duration out of its output are decode errors: the
// file is not a video we can work with.
func (FFmpeg) ProbeDuration(ctx context.Context, localPath string) (float64, error) {
	ffprobePath, err := exec.LookPath("ffprobe")
	if err != nil {
		return 0, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}

	cmd := exec.CommandContext(ctx, ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		localPath,
	)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("%w: ffprobe failed for %s: %v", ErrDecode, filepath.Base(localPath), err)
	}

	var probe ffprobeFormat
	if err := json.Unmarshal(output, &probe); err != nil {
		return 0, fmt.Errorf("%w: unparseable ffprobe output: %v", ErrDecode, err)
	}
	dur, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil || dur <= 0 {
		return 0, fmt.Errorf("%w: no duration in container %s", ErrDecode, filepath.Base(localPath))
	}
	return dur, nil
}

// SampleFrames extracts one keyframe at each offset 0, interval, 2*interval,
// … below ceil(duration). A single failed extraction is skipped; the frame
// set just ends up without that offset. The returned FrameSet owns a temp
// directory scoped to this recording.
func (f FFmpeg) SampleFrames(ctx context.Context, localPath string, intervalSec int) (*FrameSet, error) {
	duration, err := f.ProbeDuration(ctx, localPath)
	if err != nil {
		return nil, err
	}

	ffmpegPath, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}

	videoID := strings.TrimSuffix(filepath.Base(localPath), filepath.Ext(localPath))
	frameDir, err := os.MkdirTemp("", "worklens-frames-"+videoID+"-*")
	if err != nil {
		return nil, fmt.Errorf("create frame directory: %w", err)
	}

	cleanup := func() {
		if err := os.RemoveAll(frameDir); err != nil {
			log.Warn().Err(err).Str("dir", frameDir).Msg("Failed to remove frame directory")
		}
	}

	set := &FrameSet{DurationSec: duration, Cleanup: cleanup}
	for _, ts := range Offsets(duration, intervalSec) {
		outFile := filepath.Join(frameDir, fmt.Sprintf("frame_%d.jpg", ts))
		cmd := exec.CommandContext(ctx, ffmpegPath,
			"-ss", strconv.Itoa(ts),
			"-i", localPath,
			"-frames:v", "1",
			"-f", "image2",
			"-c:v", "mjpeg",
			"-loglevel", "error",
			"-y", outFile,
		)
		if output, err := cmd.CombinedOutput(); err != nil {
			log.Warn().
				Err(err).
				Int("offsetSec", ts).
				Str("video", filepath.Base(localPath)).
				Str("output", strings.TrimSpace(string(output))).
				Msg("Frame extraction failed, skipping offset")
			continue
		}
		if _, err := os.Stat(outFile); err != nil {
			continue
		}
		set.Frames = append(set.Frames, Frame{Path: outFile, OffsetSec: ts})
	}

	log.Info().
		Str("video", filepath.Base(localPath)).
		Float64("durationSec", duration).
		Int("intervalSec", intervalSec).
		Int("frames", len(set.Frames)).
		Msg("Frame sampling complete")
	return set, nil
}

// Offsets returns the sampling offsets 0, interval, 2*interval, … strictly
// below ceil(durationSec).
func Offsets(durationSec float64, intervalSec int) []int {
	if intervalSec <= 0 {
		intervalSec = 30
	}
	end := int(math.Ceil(durationSec))
	var offsets []int
	for ts := 0; ts < end; ts += intervalSec {
		offsets = append(offsets, ts)
	}
	return offsets
}

// HMS formats a second count as HH:MM:SS.
func HMS(seconds float64) string {
	s := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}
