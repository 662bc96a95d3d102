// Package config handles loading and validation of tracecheck verification profiles.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode"

	"gopkg.in/yaml.v2"

	"github.com/NielsdaWheelz/tracecheck/internal/errors"
	"github.com/NielsdaWheelz/tracecheck/internal/fs"
	"github.com/NielsdaWheelz/tracecheck/internal/sections"
)

// Profile describes what a captured trace must contain.
type Profile struct {
	Name string `yaml:"name"`

	// Subject is the traced process's name, compared with thread names per SubjectMatch.
	Subject      string `yaml:"subject"`
	SubjectMatch string `yaml:"subject_match,omitempty"`

	// MarkerEvent is the ftrace event userspace sections are written as.
	MarkerEvent string `yaml:"marker_event,omitempty"`

	// RequiredSections must begin in this order.
	RequiredSections []string `yaml:"required_sections"`

	// RequiredCategories must be listed by `atrace --list_categories`.
	RequiredCategories []string `yaml:"required_categories,omitempty"`
}

// DefaultProfile is the app-launch profile: launching the atrace test app with
// view tracing enabled must produce its inflate/frame/draw sections in order.
func DefaultProfile() Profile {
	return Profile{
		Name:         "app-launch",
		Subject:      "com.android.cts.atracetestapp",
		SubjectMatch: string(sections.MatchTruncated),
		MarkerEvent:  sections.DefaultMarkerEvent,
		RequiredSections: []string{
			"traceable-app-test-section",
			"inflate",
			"Choreographer#doFrame",
			"traversal",
			"measure",
			"layout",
			"draw",
			"Record View#draw()",
		},
		RequiredCategories: []string{
			"sched",
			"gfx",
			"input",
			"view",
			"webview",
			"wm",
			"am",
			"sm",
			"audio",
			"video",
			"camera",
			"hal",
			"app",
			"res",
			"dalvik",
			"rs",
			"bionic",
			"power",
		},
	}
}

// LoadProfile reads and validates a YAML profile. Unknown keys are rejected.
// An omitted marker_event means tracing_mark_write; an omitted subject_match
// means suffix.
func LoadProfile(filesystem fs.FS, path string) (Profile, error) {
	data, err := filesystem.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Profile{}, errors.NewWithDetails(errors.EInvalidProfile, "profile not found", map[string]string{"profile": path})
		}
		return Profile{}, errors.WrapWithDetails(errors.EInvalidProfile, "failed to read profile", err, map[string]string{"profile": path})
	}

	p, err := ParseProfile(data)
	if err != nil {
		if te, ok := errors.AsTraceError(err); ok {
			details := map[string]string{"profile": path}
			for k, v := range te.Details {
				details[k] = v
			}
			return Profile{}, errors.WrapWithDetails(te.Code, te.Msg, te.Cause, details)
		}
		return Profile{}, err
	}
	return p, nil
}

// ParseProfile decodes and validates YAML profile data.
func ParseProfile(data []byte) (Profile, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return Profile{}, errors.New(errors.EInvalidProfile, "profile is empty")
	}

	var p Profile
	if err := yaml.UnmarshalStrict(data, &p); err != nil {
		return Profile{}, errors.Wrap(errors.EInvalidProfile, "invalid yaml: "+oneLine(err.Error()), err)
	}

	if p.MarkerEvent == "" {
		p.MarkerEvent = sections.DefaultMarkerEvent
	}
	if p.SubjectMatch == "" {
		p.SubjectMatch = string(sections.MatchSuffix)
	}

	if err := ValidateProfile(p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// ValidateProfile checks the fields a verification cannot run without.
func ValidateProfile(p Profile) error {
	if strings.TrimSpace(p.Subject) == "" {
		return errors.New(errors.EInvalidProfile, "missing required field subject")
	}
	if _, err := sections.ParseSubjectMatch(p.SubjectMatch); err != nil {
		return errors.New(errors.EInvalidProfile, "subject_match: "+err.Error())
	}
	if containsWhitespace(p.MarkerEvent) {
		return errors.New(errors.EInvalidProfile, "marker_event must be a single ftrace event name")
	}
	for i, s := range p.RequiredSections {
		if s == "" {
			return errors.New(errors.EInvalidProfile, fmt.Sprintf("required_sections[%d] is empty", i))
		}
	}
	for i, c := range p.RequiredCategories {
		if strings.TrimSpace(c) == "" || strings.Contains(c, "-") {
			return errors.New(errors.EInvalidProfile, fmt.Sprintf("required_categories[%d] is not a category name: %q", i, c))
		}
	}
	return nil
}

// SectionsConfig returns the verifier configuration for p.
// p must have passed ValidateProfile.
func (p Profile) SectionsConfig() sections.Config {
	match, _ := sections.ParseSubjectMatch(p.SubjectMatch)
	return sections.Config{
		Subject:     p.Subject,
		Match:       match,
		MarkerEvent: p.MarkerEvent,
		Required:    append([]string(nil), p.RequiredSections...),
	}
}

// containsWhitespace returns true if s contains any whitespace character.
func containsWhitespace(s string) bool {
	for _, r := range s {
		if unicode.IsSpace(r) {
			return true
		}
	}
	return false
}

// oneLine collapses yaml's multi-line error reports.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
