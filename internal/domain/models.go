package domain

// EvidenceKind tags which ranking strategy produced a candidate. The two
// strategies score on incomparable scales (probability vs. overlap count),
// so candidates of different kinds must never be sorted against each other.
type EvidenceKind string

const (
	EvidenceClassifier   EvidenceKind = "classifier"
	EvidenceCooccurrence EvidenceKind = "co-occurrence"
)

// ClassifierPrediction is a single disease prediction from the trained
// classifier. Confidence is a calibrated probability in [0,1].
type ClassifierPrediction struct {
	Disease    string  `json:"disease"`
	Confidence float64 `json:"confidence"`
}

// DiseaseMatch is a single co-occurrence match from the clinical store.
// Score is the number of the user's symptoms found in the disease profile,
// never a probability.
type DiseaseMatch struct {
	Disease         string   `json:"disease"`
	Score           int      `json:"score"`
	MatchedSymptoms []string `json:"matched_symptoms"`
	AllSymptoms     []string `json:"all_symptoms"`
}

// RankedCandidate is the display-level union over the two ranking scales.
// Exactly one of Confidence (classifier) or Score (co-occurrence) is
// meaningful, selected by Kind.
type RankedCandidate struct {
	Disease         string       `json:"disease"`
	Kind            EvidenceKind `json:"evidence_kind"`
	Confidence      float64      `json:"confidence,omitempty"`
	Score           int          `json:"score,omitempty"`
	MatchedSymptoms []string     `json:"matched_symptoms,omitempty"`
}

// EvidenceSource identifies which component produced the final decision.
type EvidenceSource string

const (
	SourceClassifier EvidenceSource = "classifier"
	SourceSQL        EvidenceSource = "sql"
	SourceFallback   EvidenceSource = "llm_fallback"
	SourceNone       EvidenceSource = "none"
)

// DiagnosisDecision is the outcome of one pipeline turn. It is derived
// entirely from that turn's inputs and never persisted. Empty Disease or
// Specialty means "not determined". A Confidence of exactly 0.0 together
// with SourceFallback marks a value that is not a calibrated probability
// and must not be rendered as a percentage.
type DiagnosisDecision struct {
	Disease    string         `json:"chosen_disease,omitempty"`
	Specialty  string         `json:"chosen_specialty,omitempty"`
	Confidence float64        `json:"confidence"`
	Source     EvidenceSource `json:"evidence_source"`
}

// FallbackGuess is a validated (disease, specialization) pair proposed by
// the generative model. Specialization is always a member of the closed
// specialty vocabulary; Disease is unconstrained free text.
type FallbackGuess struct {
	Disease        string `json:"disease"`
	Specialization string `json:"specialization"`
}

// Doctor is a provider row from the doctor directory.
type Doctor struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Facility  string `json:"facility"`
	Phone     string `json:"phone"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
}

// LikelyCondition is a classifier candidate formatted for the UI list.
type LikelyCondition struct {
	Name            string   `json:"name"`
	Score           string   `json:"score"`
	MatchedSymptoms []string `json:"matched_symptoms"`
}

// Summary is the structured panel accompanying the chat reply. Sections
// always contains the keys likely, why, symptoms, specialty and disclaimer.
type Summary struct {
	Sections         map[string]interface{} `json:"sections"`
	LikelyConditions []LikelyCondition      `json:"likely_conditions"`
	Symptoms         []string               `json:"symptoms"`
	Unrecognized     []string               `json:"unrecognized"`
}

// ChatResult is the caller-facing result of one pipeline turn.
type ChatResult struct {
	AssistantReply string   `json:"assistant_reply"`
	Summary        Summary  `json:"summary"`
	Doctors        []Doctor `json:"doctors"`

	// Decision carries the raw decision record for callers that need more
	// than the rendered text (the MCP tool, tests).
	Decision DiagnosisDecision `json:"decision"`
}
