// Package ids resolves user-typed run identifiers against recorded runs.
// It implements exact-match and unique-prefix resolution.
package ids

import (
	"fmt"
	"sort"
	"strings"
)

// ErrNotFound indicates no matching run_id (exact or prefix).
type ErrNotFound struct {
	Input string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("run not found: %q", e.Input)
}

// ErrAmbiguous indicates prefix matched multiple run_ids.
type ErrAmbiguous struct {
	Input      string
	Candidates []string // sorted ascending
}

func (e *ErrAmbiguous) Error() string {
	return fmt.Sprintf("ambiguous run id %q matches: %s", e.Input, strings.Join(e.Candidates, ", "))
}

// ResolveRunID resolves input to one of runIDs.
//
// Resolution rules:
//  1. Exact match wins.
//  2. Otherwise, input is a prefix:
//     - 0 matches: not found
//     - 1 match: resolve
//     - >1 matches: ambiguous (candidates sorted ascending)
//  3. Input is trimmed; empty after trim is not found.
func ResolveRunID(input string, runIDs []string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", &ErrNotFound{Input: ""}
	}

	var matches []string
	for _, id := range runIDs {
		if id == input {
			return id, nil
		}
		if strings.HasPrefix(id, input) {
			matches = append(matches, id)
		}
	}

	switch len(matches) {
	case 0:
		return "", &ErrNotFound{Input: input}
	case 1:
		return matches[0], nil
	default:
		sort.Strings(matches)
		return "", &ErrAmbiguous{Input: input, Candidates: matches}
	}
}
