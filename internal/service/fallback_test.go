package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuessDiagnosis(t *testing.T) {
	tests := []struct {
		name          string
		response      string
		wantDisease   string
		wantSpecialty string
		wantDiscarded bool
	}{
		{
			name:          "valid single line object",
			response:      `{"disease": "Influenza", "specialization": "FAMILY PRACTICE"}`,
			wantDisease:   "Influenza",
			wantSpecialty: "FAMILY PRACTICE",
		},
		{
			name:          "first brace wins and surrounding prose ignored",
			response:      "Here you go: {\"disease\": \"Angina\", \"specialization\": \"CARDIOVASCULAR DISEASE (CARDIOLOGY)\"} {\"disease\": \"other\"}",
			wantDisease:   "Angina",
			wantSpecialty: "CARDIOVASCULAR DISEASE (CARDIOLOGY)",
		},
		{
			name:          "specialization case folded to vocabulary form",
			response:      `{"disease": "Migraine", "specialization": "neurology"}`,
			wantDisease:   "Migraine",
			wantSpecialty: "NEUROLOGY",
		},
		{
			name:          "trims disease whitespace",
			response:      `{"disease": "  Acne ", "specialization": "DERMATOLOGY"}`,
			wantDisease:   "Acne",
			wantSpecialty: "DERMATOLOGY",
		},
		{
			name:          "specialization outside whitelist discarded even with valid disease",
			response:      `{"disease": "Influenza", "specialization": "WIZARDRY"}`,
			wantDiscarded: true,
		},
		{
			name:          "extra keys discarded",
			response:      `{"disease": "Influenza", "specialization": "FAMILY PRACTICE", "confidence": "high"}`,
			wantDiscarded: true,
		},
		{
			name:          "missing specialization discarded",
			response:      `{"disease": "Influenza"}`,
			wantDiscarded: true,
		},
		{
			name:          "empty disease discarded",
			response:      `{"disease": "  ", "specialization": "FAMILY PRACTICE"}`,
			wantDiscarded: true,
		},
		{
			name:          "no braces discarded",
			response:      "disease: Influenza, specialization: FAMILY PRACTICE",
			wantDiscarded: true,
		},
		{
			name:          "malformed object discarded",
			response:      `{"disease": "Influenza", "specialization":}`,
			wantDiscarded: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guesser := NewFallbackGuesserService(&stubGenerator{response: tt.response}, testLogger())

			guess, err := guesser.GuessDiagnosis(context.Background(), "I feel awful")
			require.NoError(t, err)

			if tt.wantDiscarded {
				assert.Nil(t, guess)
				return
			}
			require.NotNil(t, guess)
			assert.Equal(t, tt.wantDisease, guess.Disease)
			assert.Equal(t, tt.wantSpecialty, guess.Specialization)
		})
	}
}

func TestGuessDiagnosisPromptEmbedsSpecialtyVocabulary(t *testing.T) {
	gen := &stubGenerator{response: "{}"}
	guesser := NewFallbackGuesserService(gen, testLogger())

	_, err := guesser.GuessDiagnosis(context.Background(), "stomach cramps")
	require.NoError(t, err)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "Choose the specialization strictly from this list:")
	assert.Contains(t, gen.prompts[0], "FAMILY PRACTICE")
	assert.Contains(t, gen.prompts[0], `User Input: "stomach cramps"`)
}

func TestGuessDiagnosisGenerationFailure(t *testing.T) {
	boom := errors.New("quota exceeded")
	guesser := NewFallbackGuesserService(&stubGenerator{err: boom}, testLogger())

	guess, err := guesser.GuessDiagnosis(context.Background(), "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, guess)
}
