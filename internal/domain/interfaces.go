package domain

import (
	"context"
)

// TextGenerator is a single-shot generative text model. No conversation
// state, no streaming.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ClinicalStore provides the disease/symptom/specialty relations the
// pipeline queries: co-occurrence matching, specialty lookup and the
// seeding upserts.
type ClinicalStore interface {
	// MatchDiseases scores every known disease by how many of its profile
	// symptoms intersect the given set. Empty input returns an empty slice
	// without touching the store. Only diseases with score > 0 are
	// returned, sorted by descending score, truncated to topN.
	MatchDiseases(ctx context.Context, symptoms []string, topN int) ([]DiseaseMatch, error)

	// SpecialtyFor returns the raw specialty name linked to a disease
	// (exact case-sensitive name match, first row). Returns ErrNotFound
	// when the disease is unknown or has no linked specialty.
	SpecialtyFor(ctx context.Context, disease string) (string, error)

	// SymptomsFor returns the full symptom profile of a disease.
	SymptomsFor(ctx context.Context, disease string) ([]string, error)

	// UpsertDiseaseEntry creates or updates a disease with its specialty
	// and symptom profile. Idempotent.
	UpsertDiseaseEntry(ctx context.Context, disease, specialization string, symptoms []string) error

	Close() error
}

// DoctorDirectory is the provider lookup collaborator. Consumed as-is;
// failures degrade to an empty result at the pipeline level.
type DoctorDirectory interface {
	Lookup(ctx context.Context, specialty, city, zip string) ([]Doctor, error)
}

// DiseaseRanker is the classifier-backed ranking capability. It has no
// error path: a ranker whose artifacts never loaded, or an empty symptom
// set, yields an empty slice and the pipeline falls through its
// confidence gate.
type DiseaseRanker interface {
	Rank(ctx context.Context, symptoms []string, topN int) []ClassifierPrediction
}

// SymptomExtractor turns a raw utterance into recognized canonical
// symptoms plus the tokens the vocabulary rejected.
type SymptomExtractor interface {
	ExtractSymptoms(ctx context.Context, utterance string) (recognized []string, unrecognized []string, err error)
}

// DiagnosisGuesser proposes a (disease, specialization) pair directly from
// the utterance. A nil guess with nil error means the model's answer did
// not survive validation.
type DiagnosisGuesser interface {
	GuessDiagnosis(ctx context.Context, utterance string) (*FallbackGuess, error)
}
