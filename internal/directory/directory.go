// Package directory resolves employee IDs to display profiles from an
// optional JSON mapping file. Resolution never fails: anything missing or
// malformed resolves to the Unknown sentinel, which downstream code treats
// as a normal profile, not an error.
package directory

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// Profile is the read-only reference data attached to event logs.
type Profile struct {
	FullName string
	Team     string
}

// Unknown is the sentinel profile for unresolvable employees.
var Unknown = Profile{FullName: "Unknown", Team: "Unknown"}

// Directory holds the loaded employee map.
type Directory struct {
	profiles map[string]Profile
}

// Load reads the employee map from path. A missing file yields an empty
// directory (every lookup resolves to Unknown) — running without a map is a
// supported configuration, so this logs and returns rather than erroring.
//
// Two file shapes are accepted: an object keyed by employee ID, and an array
// of rows carrying an "Employee ID" field. Both come from HR exports whose
// column names drift, so several key spellings are tolerated per field.
func Load(path string) *Directory {
	d := &Directory{profiles: make(map[string]Profile)}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Info().Str("path", path).Msg("No employee map, all profiles resolve to Unknown")
		return d
	}

	var byID map[string]map[string]any
	if err := json.Unmarshal(raw, &byID); err == nil {
		for id, row := range byID {
			d.profiles[strings.TrimSpace(id)] = profileFromRow(row)
		}
		log.Info().Int("employees", len(d.profiles)).Str("path", path).Msg("Employee map loaded")
		return d
	}

	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err == nil {
		for _, row := range rows {
			id := firstString(row, "Employee ID", "employee_id", "id")
			if id == "" {
				continue
			}
			d.profiles[strings.TrimSpace(id)] = profileFromRow(row)
		}
		log.Info().Int("employees", len(d.profiles)).Str("path", path).Msg("Employee map loaded")
		return d
	}

	log.Warn().Str("path", path).Msg("Unparseable employee map, all profiles resolve to Unknown")
	return d
}

// Resolve returns the profile for employeeID, or Unknown.
func (d *Directory) Resolve(employeeID string) Profile {
	p, ok := d.profiles[strings.TrimSpace(employeeID)]
	if !ok {
		return Unknown
	}
	return p
}

func profileFromRow(row map[string]any) Profile {
	full := firstString(row, "fullName", "full_name")
	if full == "" {
		first := strings.TrimSpace(firstString(row, "First Name", "first_name", "firstName", "FirstName"))
		last := strings.TrimSpace(firstString(row, "Last Name", "last_name", "lastName", "LastName"))
		// "0" shows up as a null-ish last name in some exports.
		if last == "0" {
			last = ""
		}
		full = strings.TrimSpace(first + " " + last)
	}
	if full == "" {
		full = Unknown.FullName
	}

	team := strings.TrimSpace(firstString(row, "Department", "Team", "department", "team", "group"))
	if team == "" {
		team = Unknown.Team
	}

	return Profile{FullName: full, Team: team}
}

func firstString(row map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := row[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
