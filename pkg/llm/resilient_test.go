package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibuddy-diagnosis-server/internal/domain"
)

// scriptedGenerator returns queued results in order, recording call counts.
type scriptedGenerator struct {
	replies []string
	errs    []error
	calls   int
}

func (s *scriptedGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	i := s.calls
	s.calls++
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	return s.replies[i], s.errs[i]
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testGeminiConfig() domain.GeminiConfig {
	return domain.GeminiConfig{
		Model:      "gemini-2.5-flash-lite",
		Timeout:    time.Second,
		RetryCount: 1,
		RateLimit:  100,
		RateBurst:  100,
	}
}

func TestResilientGenerator_SuccessFirstAttempt(t *testing.T) {
	inner := &scriptedGenerator{replies: []string{"[cough]"}, errs: []error{nil}}
	gen := NewResilientGenerator(inner, testGeminiConfig(), testLogger())

	got, err := gen.Generate(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "[cough]", got)
	assert.Equal(t, 1, inner.calls)
}

func TestResilientGenerator_RetriesOnceThenSucceeds(t *testing.T) {
	inner := &scriptedGenerator{
		replies: []string{"", "[fever]"},
		errs:    []error{errors.New("transient network error"), nil},
	}
	gen := NewResilientGenerator(inner, testGeminiConfig(), testLogger())

	got, err := gen.Generate(context.Background(), "prompt")

	require.NoError(t, err)
	assert.Equal(t, "[fever]", got)
	assert.Equal(t, 2, inner.calls, "exactly one retry")
}

func TestResilientGenerator_FailsAfterBoundedRetry(t *testing.T) {
	boom := errors.New("connection refused")
	inner := &scriptedGenerator{replies: []string{"", ""}, errs: []error{boom, boom}}
	gen := NewResilientGenerator(inner, testGeminiConfig(), testLogger())

	_, err := gen.Generate(context.Background(), "prompt")

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, inner.calls, "one attempt plus one retry, no more")
}

func TestResilientGenerator_NoRetryOnCancelledContext(t *testing.T) {
	boom := errors.New("canceled mid-flight")
	inner := &scriptedGenerator{replies: []string{""}, errs: []error{boom}}
	gen := NewResilientGenerator(inner, testGeminiConfig(), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gen.Generate(ctx, "prompt")

	require.Error(t, err)
	assert.LessOrEqual(t, inner.calls, 1)
}
