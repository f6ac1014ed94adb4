// Package service implements the diagnosis decision pipeline and its
// stages: symptom extraction, candidate ranking, specialty resolution and
// the confidence-gated fallback guess.
package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/medibuddy-diagnosis-server/internal/domain"
	"github.com/medibuddy-diagnosis-server/internal/vocab"
)

// bracketPattern finds every bracketed list in a model response. The LAST
// match is the answer: models sometimes emit reasoning (which may itself
// contain brackets) before the final list.
var bracketPattern = regexp.MustCompile(`\[(.*?)\]`)

const extractionPromptTemplate = `You are an AI model that extracts symptoms from user input. Only return the extracted symptoms in a comma-separated list, strictly matching the recognized symptoms.

User Input: "%s"
Recognized Symptoms: %s

**Rules**:
- Strictly adhere to the given set and match symptoms from there.
- Do not make symptoms on your own, those will not be recognized.
- ONLY return the final symptom list.
- DO NOT include explanations, thoughts, or analysis.
- If no symptoms match, return an empty string.
- Your response MUST start with [ and end with ].
- The response format is: [symptom1, symptom2, symptom3]
- FAIL IF YOU DON'T FOLLOW THE FORMAT.`

// SymptomExtractorService extracts canonical symptoms from free text via
// the generative model.
type SymptomExtractorService struct {
	generator domain.TextGenerator
	log       *logrus.Logger
}

// NewSymptomExtractorService creates a new extractor.
func NewSymptomExtractorService(generator domain.TextGenerator, logger *logrus.Logger) *SymptomExtractorService {
	return &SymptomExtractorService{
		generator: generator,
		log:       logger,
	}
}

// ExtractSymptoms runs one extraction turn. Malformed model output is not
// an error: it degrades to an empty recognized set. Only a failed model
// call itself is returned as an error.
func (s *SymptomExtractorService) ExtractSymptoms(ctx context.Context, utterance string) ([]string, []string, error) {
	prompt := fmt.Sprintf(extractionPromptTemplate, utterance, vocab.Symptoms().Join(", "))

	content, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, nil, fmt.Errorf("symptom extraction call failed: %w", err)
	}

	recognized, unrecognized := parseSymptomList(content)

	s.log.WithFields(logrus.Fields{
		"recognized":   len(recognized),
		"unrecognized": len(unrecognized),
	}).Debug("Symptom extraction completed")

	return recognized, unrecognized, nil
}

// parseSymptomList applies the extraction grammar: lowercase the whole
// response, take the LAST bracketed substring, split on commas, trim, and
// partition by vocabulary membership. No brackets means no symptoms.
func parseSymptomList(content string) (recognized []string, unrecognized []string) {
	recognized = []string{}
	unrecognized = []string{}

	matches := bracketPattern.FindAllStringSubmatch(strings.ToLower(content), -1)
	if len(matches) == 0 {
		return recognized, unrecognized
	}

	seen := make(map[string]struct{})
	for _, raw := range strings.Split(matches[len(matches)-1][1], ",") {
		token := vocab.NormalizeSymptom(raw)
		if token == "" {
			continue
		}
		if !vocab.Symptoms().Contains(token) {
			unrecognized = append(unrecognized, token)
			continue
		}
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		recognized = append(recognized, token)
	}
	return recognized, unrecognized
}
