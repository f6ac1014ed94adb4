package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/medibuddy-diagnosis-server/internal/domain"
)

// SpecialtyLookup resolves a disease name to a specialization.
// domain.ErrNotFound means the disease has no known mapping.
type SpecialtyLookup interface {
	Resolve(ctx context.Context, disease string) (string, error)
}

// PipelineOptions tune the decision pipeline.
type PipelineOptions struct {
	// ConfidenceThreshold gates classifier predictions. Below it the
	// fallback guesser runs.
	ConfidenceThreshold float64
	// TopN bounds both ranking paths.
	TopN int
}

// Pipeline runs one end-to-end diagnosis turn: symptom extraction,
// disease ranking, confidence-gated fallback, specialty resolution and
// doctor lookup. Each call is self-contained; no state survives a turn.
type Pipeline struct {
	extractor domain.SymptomExtractor
	ranker    domain.DiseaseRanker
	guesser   domain.DiagnosisGuesser
	resolver  SpecialtyLookup
	store     domain.ClinicalStore
	directory domain.DoctorDirectory
	opts      PipelineOptions
	log       *logrus.Logger
}

// NewPipeline wires the pipeline collaborators together.
func NewPipeline(
	extractor domain.SymptomExtractor,
	ranker domain.DiseaseRanker,
	guesser domain.DiagnosisGuesser,
	resolver SpecialtyLookup,
	store domain.ClinicalStore,
	directory domain.DoctorDirectory,
	opts PipelineOptions,
	logger *logrus.Logger,
) *Pipeline {
	if opts.ConfidenceThreshold <= 0 {
		opts.ConfidenceThreshold = 0.30
	}
	if opts.TopN <= 0 {
		opts.TopN = 3
	}
	return &Pipeline{
		extractor: extractor,
		ranker:    ranker,
		guesser:   guesser,
		resolver:  resolver,
		store:     store,
		directory: directory,
		opts:      opts,
		log:       logger,
	}
}

// Run executes the classifier-first pipeline for one user turn.
//
// Decision order: extract symptoms, rank with the classifier, trust the
// top prediction only when its confidence clears the threshold, otherwise
// ask the generative model for a direct guess. A fallback guess fully
// overrides the classifier's pick and resets confidence to 0.0, since a
// generated guess is not a calibrated probability.
func (p *Pipeline) Run(ctx context.Context, utterance, city, zip string) (*domain.ChatResult, error) {
	recognized, unrecognized, err := p.extractor.ExtractSymptoms(ctx, utterance)
	if err != nil {
		return nil, domain.NewPipelineError(domain.ErrGeneration, "symptom extraction failed", err.Error())
	}

	predictions := p.ranker.Rank(ctx, recognized, p.opts.TopN)

	decision := domain.DiagnosisDecision{Source: domain.SourceNone}
	if len(predictions) > 0 {
		top := predictions[0]
		decision.Disease = top.Disease
		decision.Confidence = top.Confidence
		decision.Source = domain.SourceClassifier
		decision.Specialty = p.resolveSpecialty(ctx, top.Disease)
	}

	var guess *domain.FallbackGuess
	if decision.Disease == "" || decision.Confidence < p.opts.ConfidenceThreshold {
		guess, err = p.guesser.GuessDiagnosis(ctx, utterance)
		if err != nil {
			return nil, domain.NewPipelineError(domain.ErrGeneration, "fallback diagnosis failed", err.Error())
		}
		if guess != nil {
			decision.Disease = guess.Disease
			decision.Specialty = guess.Specialization
			decision.Confidence = 0.0
			decision.Source = domain.SourceFallback
		}
	}

	p.log.WithFields(logrus.Fields{
		"disease":    decision.Disease,
		"specialty":  decision.Specialty,
		"confidence": decision.Confidence,
		"source":     decision.Source,
	}).Info("Pipeline decision")

	result := &domain.ChatResult{
		AssistantReply: buildAssistantReply(decision),
		Summary:        buildClassifierSummary(decision, predictions, guess, recognized, unrecognized),
		Doctors:        p.lookupDoctors(ctx, decision.Specialty, city, zip),
		Decision:       decision,
	}
	return result, nil
}

// RunLegacy executes the co-occurrence variant: the clinical store's
// overlap ranking supplies the primary disease and the generative guess
// only fills whichever of disease/specialty the store left unset. The
// guesser runs unconditionally in this variant.
func (p *Pipeline) RunLegacy(ctx context.Context, utterance, city, zip string) (*domain.ChatResult, error) {
	recognized, unrecognized, err := p.extractor.ExtractSymptoms(ctx, utterance)
	if err != nil {
		return nil, domain.NewPipelineError(domain.ErrGeneration, "symptom extraction failed", err.Error())
	}

	matches, err := p.store.MatchDiseases(ctx, recognized, p.opts.TopN)
	if err != nil {
		// Store outage is not fatal here, the generative guess can still
		// carry the turn.
		p.log.WithError(err).Warn("Disease matching failed, continuing without store evidence")
		matches = nil
	}

	guess, err := p.guesser.GuessDiagnosis(ctx, utterance)
	if err != nil {
		return nil, domain.NewPipelineError(domain.ErrGeneration, "fallback diagnosis failed", err.Error())
	}

	decision := domain.DiagnosisDecision{Source: domain.SourceNone}
	if len(matches) > 0 {
		decision.Disease = matches[0].Disease
		decision.Source = domain.SourceSQL
		decision.Specialty = p.resolveSpecialty(ctx, decision.Disease)
	}
	if guess != nil {
		if decision.Disease == "" {
			decision.Disease = guess.Disease
			decision.Source = domain.SourceFallback
		}
		if decision.Specialty == "" {
			decision.Specialty = guess.Specialization
		}
	}

	p.log.WithFields(logrus.Fields{
		"disease":   decision.Disease,
		"specialty": decision.Specialty,
		"source":    decision.Source,
	}).Info("Legacy pipeline decision")

	result := &domain.ChatResult{
		AssistantReply: buildLegacyAssistantReply(decision),
		Summary:        buildLegacySummary(decision, matches, guess, recognized, unrecognized),
		Doctors:        p.lookupDoctors(ctx, decision.Specialty, city, zip),
		Decision:       decision,
	}
	return result, nil
}

// resolveSpecialty maps a disease to its specialty, degrading to the
// empty string on a miss or a store failure. A missing specialty only
// downgrades the recommendation text, it never fails the turn.
func (p *Pipeline) resolveSpecialty(ctx context.Context, disease string) string {
	specialty, err := p.resolver.Resolve(ctx, disease)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			p.log.WithError(err).WithField("disease", disease).Warn("Specialty resolution failed")
		}
		return ""
	}
	return specialty
}

// lookupDoctors queries the directory, degrading to an empty list on any
// failure so the chat reply still goes out.
func (p *Pipeline) lookupDoctors(ctx context.Context, specialty, city, zip string) []domain.Doctor {
	if specialty == "" {
		return []domain.Doctor{}
	}
	doctors, err := p.directory.Lookup(ctx, specialty, city, zip)
	if err != nil {
		p.log.WithError(err).WithField("specialty", specialty).Warn("Doctor lookup failed")
		return []domain.Doctor{}
	}
	return doctors
}

func percent(confidence float64) int {
	return int(confidence * 100)
}

func buildAssistantReply(decision domain.DiagnosisDecision) string {
	var likelyPart string
	if decision.Disease != "" {
		if decision.Confidence > 0 {
			likelyPart = fmt.Sprintf("Based on your symptoms, my analysis (Confidence: %d%%) points to **%s**.", percent(decision.Confidence), decision.Disease)
		} else {
			likelyPart = fmt.Sprintf("Based on what you shared, a possible condition is **%s**.", decision.Disease)
		}
	} else {
		likelyPart = "I couldn't pinpoint a specific condition from your symptoms alone."
	}

	var specPart string
	if decision.Specialty != "" {
		specPart = fmt.Sprintf(" You may want to consult a specialist in **%s**.", decision.Specialty)
	} else {
		specPart = " You may want to start with a primary care doctor."
	}

	disclaimer := " This is informational only and not a medical diagnosis. " +
		"If your symptoms are severe, seek emergency care immediately."

	return likelyPart + specPart + disclaimer
}

func buildClassifierSummary(
	decision domain.DiagnosisDecision,
	predictions []domain.ClassifierPrediction,
	guess *domain.FallbackGuess,
	recognized, unrecognized []string,
) domain.Summary {
	sections := map[string]interface{}{}

	if decision.Disease != "" {
		sections["likely"] = fmt.Sprintf("The condition that most closely matches your symptoms is **%s**.", decision.Disease)
	} else {
		sections["likely"] = "I could not determine a clear likely condition."
	}

	var whyLines []string
	if len(predictions) > 0 && decision.Confidence > 0 {
		whyLines = append(whyLines, fmt.Sprintf("AI Model Confidence: **%d%%**", percent(decision.Confidence)))
		whyLines = append(whyLines, fmt.Sprintf("Matched %d symptom(s) from our clinical dataset.", len(recognized)))
	} else if guess != nil {
		whyLines = append(whyLines, fmt.Sprintf("An AI clinical model suggested **%s** based on your description.", guess.Disease))
	} else {
		whyLines = append(whyLines, "Insufficient data for a strong prediction.")
	}
	sections["why"] = whyLines

	sections["symptoms"] = recognized

	if decision.Specialty != "" {
		sections["specialty"] = fmt.Sprintf("Recommended Specialist: **%s**", decision.Specialty)
	} else {
		sections["specialty"] = "Primary Care Physician"
	}

	sections["disclaimer"] = "MediBuddy provides non-diagnostic information. Always consult a licensed professional."

	likelyConditions := make([]domain.LikelyCondition, 0, len(predictions))
	for _, prediction := range predictions {
		likelyConditions = append(likelyConditions, domain.LikelyCondition{
			Name:            prediction.Disease,
			Score:           fmt.Sprintf("%d%%", percent(prediction.Confidence)),
			MatchedSymptoms: recognized,
		})
	}

	return domain.Summary{
		Sections:         sections,
		LikelyConditions: likelyConditions,
		Symptoms:         recognized,
		Unrecognized:     unrecognized,
	}
}

func buildLegacyAssistantReply(decision domain.DiagnosisDecision) string {
	var likelyPart string
	if decision.Disease != "" {
		likelyPart = fmt.Sprintf("Based on what you shared, a possible condition is **%s**.", decision.Disease)
	} else {
		likelyPart = "I couldn't pinpoint a specific condition from your symptoms alone."
	}

	var specPart string
	if decision.Specialty != "" {
		specPart = fmt.Sprintf(" A good type of clinician to talk to would be a specialist in **%s**.", decision.Specialty)
	} else {
		specPart = " You may want to start with a primary care or family medicine doctor."
	}

	disclaimer := " This is informational only and not a medical diagnosis. " +
		"If your symptoms are severe (e.g., chest pain, difficulty breathing, confusion, heavy bleeding), " +
		"seek emergency care immediately."

	return likelyPart + specPart + disclaimer
}

func buildLegacySummary(
	decision domain.DiagnosisDecision,
	matches []domain.DiseaseMatch,
	guess *domain.FallbackGuess,
	recognized, unrecognized []string,
) domain.Summary {
	sections := map[string]interface{}{}

	if decision.Disease != "" {
		sections["likely"] = fmt.Sprintf("The condition that most closely matches your symptoms is **%s**.", decision.Disease)
	} else {
		sections["likely"] = "I could not determine a clear likely condition from your symptoms."
	}

	var whyLines []string
	if len(matches) > 0 {
		top := matches[0]
		whyLines = append(whyLines, fmt.Sprintf(
			"Your symptoms matched %d symptom(s) commonly associated with **%s** in medical datasets.",
			top.Score, top.Disease))
	}
	if guess != nil {
		whyLines = append(whyLines, fmt.Sprintf(
			"An AI clinical model also suggested **%s**, which is typically handled by %s.",
			guess.Disease, guess.Specialization))
	}
	if len(whyLines) == 0 {
		whyLines = append(whyLines, "There was not enough structured or AI-supported evidence to identify a specific condition.")
	}
	sections["why"] = whyLines

	sections["symptoms"] = recognized

	if decision.Specialty != "" {
		sections["specialty"] = fmt.Sprintf("Based on the suspected condition, you may want to consult a specialist in **%s**.", decision.Specialty)
	} else {
		sections["specialty"] = "Since I could not determine a specific specialty, you may want to start with a primary care physician."
	}

	sections["disclaimer"] = "MediBuddy provides non-diagnostic information. " +
		"Always consult a licensed professional for medical advice. " +
		"If you experience severe symptoms such as chest pain, difficulty breathing, confusion, or heavy bleeding, " +
		"seek emergency medical care immediately."

	likelyConditions := make([]domain.LikelyCondition, 0, len(matches))
	for _, match := range matches {
		likelyConditions = append(likelyConditions, domain.LikelyCondition{
			Name:            match.Disease,
			Score:           strconv.Itoa(match.Score),
			MatchedSymptoms: match.MatchedSymptoms,
		})
	}

	return domain.Summary{
		Sections:         sections,
		LikelyConditions: likelyConditions,
		Symptoms:         recognized,
		Unrecognized:     unrecognized,
	}
}
