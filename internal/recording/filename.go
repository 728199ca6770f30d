// Package recording defines the screen-recording reference type and the
// parser that derives it from raw object names.
//
// Capture clients upload recordings named
//
//	ScreenRecording_File_<YYYYMMDD>_<HHMMSS>_vt1-<employee-token>[-<platform>-<session>].webm
//
// The embedded date/time is the capture timestamp and the employee token ties
// the file to the employee whose namespace it was uploaded under.
package recording

import (
	"regexp"
	"strings"
	"time"
)

// filenameRE matches the fixed capture-client naming scheme. Matching is
// case-insensitive because some clients uppercase the extension or token.
var filenameRE = regexp.MustCompile(
	`(?i)^ScreenRecording_File_` +
		`(?P<date>\d{8})_` +
		`(?P<time>\d{6})_` +
		`vt1-` +
		`(?P<employee>[0-9a-f-]+)` +
		`(?:-(?P<platform>[^-]+)-(?P<session>[0-9a-f-]+))?` +
		`\.webm$`)

// Reference identifies one recording within an employee's namespace.
// FileName is unique per employee; CapturedAt is parsed from the name.
type Reference struct {
	Key           string
	FileName      string
	CapturedAt    time.Time
	EmployeeToken string
	Platform      string
	Session       string
}

// CaptureDate returns the recording's capture date as YYYY-MM-DD.
func (r *Reference) CaptureDate() string {
	return r.CapturedAt.Format("2006-01-02")
}

// Parse extracts a Reference from an object's base name. It returns nil for
// names that do not match the capture-client scheme; callers skip those
// silently rather than treating them as errors. The returned Reference has no
// Key — the lister fills that in from the enumerated object.
func Parse(name string) *Reference {
	m := filenameRE.FindStringSubmatch(name)
	if m == nil {
		return nil
	}

	groups := make(map[string]string, 5)
	for i, gname := range filenameRE.SubexpNames() {
		if gname != "" {
			groups[gname] = m[i]
		}
	}

	capturedAt, err := time.Parse("20060102150405", groups["date"]+groups["time"])
	if err != nil {
		return nil
	}

	return &Reference{
		FileName:      name,
		CapturedAt:    capturedAt,
		EmployeeToken: strings.ToLower(groups["employee"]),
		Platform:      groups["platform"],
		Session:       strings.ToLower(groups["session"]),
	}
}
