package service

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/medibuddy-diagnosis-server/internal/domain"
	"github.com/medibuddy-diagnosis-server/internal/vocab"
)

// bracePattern finds the FIRST brace-delimited object in a model response,
// across newlines.
var bracePattern = regexp.MustCompile(`(?s)\{.*?\}`)

const fallbackPromptTemplate = `You are a medical assistant. Based on the user's input, determine the most likely disease and the most appropriate medical specialization.
Choose the specialization strictly from this list: %s
User Input: "%s"
Output ONLY the final dictionary on a single line.
Format: {"disease": "<disease_name>", "specialization": "<specialization_from_list>"}
FAIL if you do not follow this format.`

// FallbackGuesserService asks the generative model for a direct
// (disease, specialization) guess when the classifier is not confident.
// It is a strict validation boundary: nothing leaves it unless the
// specialization is in the closed vocabulary.
type FallbackGuesserService struct {
	generator domain.TextGenerator
	log       *logrus.Logger
}

// NewFallbackGuesserService creates a new fallback guesser.
func NewFallbackGuesserService(generator domain.TextGenerator, logger *logrus.Logger) *FallbackGuesserService {
	return &FallbackGuesserService{
		generator: generator,
		log:       logger,
	}
}

// GuessDiagnosis runs one guess. A nil result with nil error means the
// model's answer was discarded: missing braces, unparseable object, wrong
// keys, or a specialization outside the whitelist. No partial results.
func (s *FallbackGuesserService) GuessDiagnosis(ctx context.Context, utterance string) (*domain.FallbackGuess, error) {
	prompt := fmt.Sprintf(fallbackPromptTemplate, vocab.Specialties().Join(", "), utterance)

	content, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("fallback diagnosis call failed: %w", err)
	}

	guess := parseDiagnosisObject(content)
	if guess == nil {
		s.log.Debug("Fallback guess discarded by validation")
		return nil, nil
	}

	s.log.WithFields(logrus.Fields{
		"disease":   guess.Disease,
		"specialty": guess.Specialization,
	}).Debug("Fallback guess accepted")

	return guess, nil
}

// parseDiagnosisObject applies the fallback grammar: first brace-delimited
// substring, parsed as a flat string object holding exactly the keys
// "disease" and "specialization", with the specialization validated
// (case-insensitively) against the closed vocabulary.
func parseDiagnosisObject(content string) *domain.FallbackGuess {
	match := bracePattern.FindString(content)
	if match == "" {
		return nil
	}

	var parsed map[string]string
	if err := json.Unmarshal([]byte(match), &parsed); err != nil {
		return nil
	}

	disease, hasDisease := parsed["disease"]
	specialization, hasSpecialization := parsed["specialization"]
	if !hasDisease || !hasSpecialization || len(parsed) != 2 {
		return nil
	}

	specialization = vocab.NormalizeSpecialty(specialization)
	if !vocab.Specialties().Contains(specialization) {
		return nil
	}

	disease = strings.TrimSpace(disease)
	if disease == "" {
		return nil
	}

	return &domain.FallbackGuess{
		Disease:        disease,
		Specialization: specialization,
	}
}
