// Package assets provides the embedded prompt templates for the analysis
// adapter. Prompts live as text files under prompts/ and are embedded at
// compile time, so prompt wording can be reviewed and diffed without reading
// Go string literals.
package assets

import (
	"bytes"
	_ "embed"
	"text/template"
)

// EventLogSystemPrompt is the system instruction for event-log synthesis.
//
//go:embed prompts/event-log-system.txt
var EventLogSystemPrompt string

// FrameSystemPrompt is the instruction sent with each sampled frame when
// visual analysis is enabled.
//
//go:embed prompts/frame-system.txt
var FrameSystemPrompt string

//go:embed prompts/event-log-task.txt
var eventLogTaskTemplate string

// eventLogTaskTmpl is pre-parsed; template.Must panics on a malformed
// template, catching errors at program startup rather than at call time.
var eventLogTaskTmpl = template.Must(template.New("event-log-task").Parse(eventLogTaskTemplate))

// EventLogTaskData holds the dynamic values injected into the task prompt.
type EventLogTaskData struct {
	Filename   string
	Duration   string
	Transcript string
	CaseID     string
	EmployeeID string
	FullName   string
	Team       string
	Date       string
}

// RenderEventLogTask renders the event-log task prompt for one recording.
func RenderEventLogTask(data EventLogTaskData) (string, error) {
	var buf bytes.Buffer
	if err := eventLogTaskTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
