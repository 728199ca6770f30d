// Package analysis wraps the Gemini multimodal service behind two calls that
// never fail: per-frame description and whole-recording event-log synthesis.
// Degradation is a first-class result, not an exception path — a frame the
// service cannot describe gets a fixed placeholder caption, and a synthesis
// the service cannot complete gets an empty event list that still carries the
// recording's identifying fields. The orchestrator counts a degraded analysis
// as a processed file; a low-value event log is a valid outcome.
package analysis

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/worklens/worklens/internal/assets"
	"github.com/worklens/worklens/internal/jsonutil"
	"github.com/worklens/worklens/internal/sampler"
)

// FrameDescription is the tagged result of describing one sampled frame.
// Placeholder is true when the text is the generic fallback caption, either
// because visual analysis is disabled or because the service call failed.
type FrameDescription struct {
	OffsetSec   int
	Text        string
	Placeholder bool
}

// Analyzer issues Gemini calls for frame description and event-log synthesis.
type Analyzer struct {
	client        *genai.Client
	model         string
	visionEnabled bool
}

// NewAnalyzer creates an Analyzer using the given client and model.
// visionEnabled gates the per-frame remote calls; synthesis always calls out.
func NewAnalyzer(client *genai.Client, model string, visionEnabled bool) *Analyzer {
	return &Analyzer{
		client:        client,
		model:         ResolveModelName(model),
		visionEnabled: visionEnabled,
	}
}

// placeholderText is the fixed caption used when a frame cannot or must not
// be described by the remote service.
func placeholderText(offsetSec int) string {
	return fmt.Sprintf("At %s, the screen shows an application window with typical work UI elements.",
		sampler.HMS(float64(offsetSec)))
}

// DescribeFrame returns a caption for one sampled frame. It never returns an
// error: when vision is disabled it returns the placeholder without touching
// the network, and any failure (file read, API call, empty response) degrades
// to the same placeholder.
func (a *Analyzer) DescribeFrame(ctx context.Context, framePath string, offsetSec int) FrameDescription {
	if !a.visionEnabled {
		return FrameDescription{OffsetSec: offsetSec, Text: placeholderText(offsetSec), Placeholder: true}
	}

	data, err := os.ReadFile(framePath)
	if err != nil {
		log.Warn().Err(err).Str("frame", framePath).Msg("Cannot read frame, using placeholder")
		return FrameDescription{OffsetSec: offsetSec, Text: placeholderText(offsetSec), Placeholder: true}
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: fmt.Sprintf("Analyze this video frame at %s.", sampler.HMS(float64(offsetSec)))},
			{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: data}},
		},
	}}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: assets.FrameSystemPrompt}},
		},
	}

	callStart := time.Now()
	resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, config)
	if err != nil {
		log.Warn().Err(err).Int("offsetSec", offsetSec).Msg("Frame description failed, using placeholder")
		return FrameDescription{OffsetSec: offsetSec, Text: placeholderText(offsetSec), Placeholder: true}
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		log.Warn().Int("offsetSec", offsetSec).Msg("Empty frame description, using placeholder")
		return FrameDescription{OffsetSec: offsetSec, Text: placeholderText(offsetSec), Placeholder: true}
	}

	log.Debug().
		Int("offsetSec", offsetSec).
		Int("length", len(text)).
		Dur("duration", time.Since(callStart)).
		Msg("Frame described")
	return FrameDescription{OffsetSec: offsetSec, Text: text}
}

// BuildTranscript joins frame descriptions into the per-offset transcript
// block fed to synthesis, one "[HH:MM:SS] caption" line per frame.
func BuildTranscript(frames []FrameDescription) string {
	lines := make([]string, 0, len(frames))
	for _, f := range frames {
		lines = append(lines, fmt.Sprintf("[%s] %s", sampler.HMS(float64(f.OffsetSec)), f.Text))
	}
	return strings.Join(lines, "\n")
}

// SynthesizeEventLog turns the ordered frame descriptions for one recording
// into an event-log document via a single Gemini call. It never returns an
// error: any failure — prompt rendering, the API call, an unparseable
// response — yields the empty-events sentinel carrying the same identifying
// fields, so the orchestrator can persist a valid (if low-value) document.
func (a *Analyzer) SynthesizeEventLog(
	ctx context.Context,
	fileName, durationLabel string,
	frames []FrameDescription,
	employeeID, fullName, team, date string,
) *EventLog {
	empty := func() *EventLog {
		return &EventLog{
			FileName:   fileName,
			CaseID:     CaseID(employeeID, date),
			EmployeeID: employeeID,
			FullName:   fullName,
			Team:       team,
			Date:       date,
			Events:     []Event{},
		}
	}

	prompt, err := assets.RenderEventLogTask(assets.EventLogTaskData{
		Filename:   fileName,
		Duration:   durationLabel,
		Transcript: BuildTranscript(frames),
		CaseID:     CaseID(employeeID, date),
		EmployeeID: employeeID,
		FullName:   fullName,
		Team:       team,
		Date:       date,
	})
	if err != nil {
		log.Error().Err(err).Str("fileName", fileName).Msg("Prompt rendering failed, returning empty event log")
		return empty()
	}

	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: assets.EventLogSystemPrompt}},
		},
	}

	callStart := time.Now()
	resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, config)
	duration := time.Since(callStart)
	if err != nil {
		log.Error().Err(err).Str("fileName", fileName).Dur("duration", duration).
			Msg("Event-log synthesis call failed, returning empty event log")
		return empty()
	}

	raw := resp.Text()
	log.Debug().
		Str("fileName", fileName).
		Int("responseLength", len(raw)).
		Dur("duration", duration).
		Msg("Synthesis response received")

	doc, err := ParseEventLog(raw)
	if err != nil {
		log.Error().Err(err).Str("fileName", fileName).
			Msg("Unparseable synthesis response, returning empty event log")
		return empty()
	}

	// The model echoes the identifying fields; ours are authoritative.
	doc.FileName = fileName
	doc.CaseID = CaseID(employeeID, date)
	doc.EmployeeID = employeeID
	doc.FullName = fullName
	doc.Team = team
	doc.Date = date
	if doc.Events == nil {
		doc.Events = []Event{}
	}

	log.Info().
		Str("fileName", fileName).
		Int("events", len(doc.Events)).
		Msg("Event log synthesized")
	return doc
}

// ParseEventLog parses a raw model response into an EventLog using the
// two-stage strategy: direct parse, then outermost-brace substring.
func ParseEventLog(raw string) (*EventLog, error) {
	doc, err := jsonutil.ParseObject[EventLog](raw)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}
