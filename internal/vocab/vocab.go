// Package vocab holds the closed clinical vocabularies the pipeline validates
// against: the canonical symptom tokens and the medical specialty names.
// Both sets are fixed at build time and must stay in sync with the seeded
// clinical database.
package vocab

import "strings"

// Set is an immutable membership set over canonical string tokens.
type Set struct {
	members map[string]struct{}
	ordered []string
}

func newSet(tokens []string) *Set {
	s := &Set{
		members: make(map[string]struct{}, len(tokens)),
		ordered: make([]string, 0, len(tokens)),
	}
	for _, t := range tokens {
		if _, ok := s.members[t]; ok {
			continue
		}
		s.members[t] = struct{}{}
		s.ordered = append(s.ordered, t)
	}
	return s
}

// Contains reports whether token is a member of the set. The token must
// already be in the set's canonical form.
func (s *Set) Contains(token string) bool {
	_, ok := s.members[token]
	return ok
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.ordered)
}

// List returns the members in declaration order. Callers must not mutate
// the returned slice.
func (s *Set) List() []string {
	return s.ordered
}

// Join concatenates the members with sep, for embedding into prompts.
func (s *Set) Join(sep string) string {
	return strings.Join(s.ordered, sep)
}

var (
	symptomSet   = newSet(symptomTokens)
	specialtySet = newSet(specialtyNames)
)

// Symptoms returns the closed canonical symptom vocabulary.
func Symptoms() *Set {
	return symptomSet
}

// Specialties returns the closed canonical specialty vocabulary.
func Specialties() *Set {
	return specialtySet
}

// NormalizeSymptom brings a raw token into canonical symptom form
// (lowercased, surrounding whitespace removed). Membership is decided by
// exact match after normalization.
func NormalizeSymptom(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeSpecialty brings a raw name into canonical specialty form
// (uppercased, surrounding whitespace removed).
func NormalizeSpecialty(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
