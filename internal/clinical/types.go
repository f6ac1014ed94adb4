// Package clinical implements the disease/symptom/specialty store behind
// the co-occurrence ranker, the specialty resolver and the seeding CLI.
// Two backends exist: Postgres for shared deployments and SQLite for
// standalone operation. Both satisfy domain.ClinicalStore.
package clinical

import (
	"sort"
	"strings"
)

// splitProfile turns an aggregated symptom column (comma-joined) into a
// sorted, deduplicated profile slice.
func splitProfile(joined string) []string {
	if joined == "" {
		return []string{}
	}
	parts := strings.Split(joined, ",")
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// intersect returns the sorted intersection of a disease profile with the
// user's symptom set.
func intersect(profile, symptoms []string) []string {
	want := make(map[string]struct{}, len(symptoms))
	for _, s := range symptoms {
		want[s] = struct{}{}
	}
	out := make([]string, 0, len(symptoms))
	for _, p := range profile {
		if _, ok := want[p]; ok {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// cleanSymptoms trims entries and drops empties, preserving order.
func cleanSymptoms(symptoms []string) []string {
	out := make([]string, 0, len(symptoms))
	for _, s := range symptoms {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
