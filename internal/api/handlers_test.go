package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medibuddy-diagnosis-server/internal/domain"
)

type stubPipeline struct {
	result      *domain.ChatResult
	err         error
	runCalls    int
	legacyCalls int
}

func (p *stubPipeline) Run(context.Context, string, string, string) (*domain.ChatResult, error) {
	p.runCalls++
	return p.result, p.err
}

func (p *stubPipeline) RunLegacy(context.Context, string, string, string) (*domain.ChatResult, error) {
	p.legacyCalls++
	return p.result, p.err
}

type stubDirectory struct {
	doctors   []domain.Doctor
	err       error
	specialty string
}

func (d *stubDirectory) Lookup(_ context.Context, specialty, _, _ string) ([]domain.Doctor, error) {
	d.specialty = specialty
	if d.err != nil {
		return nil, d.err
	}
	return d.doctors, nil
}

func testConfig() *domain.Config {
	return &domain.Config{
		Logging: domain.LoggingConfig{Level: "info"},
	}
}

func newTestServer(t *testing.T, pipeline *stubPipeline, directory *stubDirectory) *Server {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewServer(testConfig(), pipeline, directory, logger)
}

func postChat(t *testing.T, server *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleChat(t *testing.T) {
	pipeline := &stubPipeline{result: &domain.ChatResult{
		AssistantReply: "Based on what you shared, a possible condition is **Influenza**.",
		Decision:       domain.DiagnosisDecision{Disease: "Influenza", Source: domain.SourceFallback},
	}}
	server := newTestServer(t, pipeline, &stubDirectory{})

	rec := postChat(t, server, `{"message": "I have a fever", "city": "Austin"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, pipeline.runCalls)
	assert.Equal(t, 0, pipeline.legacyCalls)

	var result domain.ChatResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Contains(t, result.AssistantReply, "Influenza")
	assert.Equal(t, domain.SourceFallback, result.Decision.Source)
}

func TestHandleChatLegacyRoute(t *testing.T) {
	pipeline := &stubPipeline{result: &domain.ChatResult{}}
	server := newTestServer(t, pipeline, &stubDirectory{})
	server.config.Pipeline.LegacyRanker = true

	rec := postChat(t, server, `{"message": "I have a fever"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, pipeline.runCalls)
	assert.Equal(t, 1, pipeline.legacyCalls)
}

func TestHandleChatEmptyMessage(t *testing.T) {
	pipeline := &stubPipeline{}
	server := newTestServer(t, pipeline, &stubDirectory{})

	rec := postChat(t, server, `{"message": "   "}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, pipeline.runCalls)

	var perr domain.PipelineError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &perr))
	assert.Equal(t, domain.ErrInvalidInput, perr.Code)
}

func TestHandleChatMalformedBody(t *testing.T) {
	server := newTestServer(t, &stubPipeline{}, &stubDirectory{})

	rec := postChat(t, server, `{"message": `)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleChatPipelineFailure(t *testing.T) {
	pipeline := &stubPipeline{err: domain.NewPipelineError(
		domain.ErrGeneration, "fallback diagnosis failed", "model unavailable")}
	server := newTestServer(t, pipeline, &stubDirectory{})

	rec := postChat(t, server, `{"message": "I have a fever"}`)

	require.Equal(t, http.StatusBadGateway, rec.Code)

	var perr domain.PipelineError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &perr))
	assert.Equal(t, domain.ErrGeneration, perr.Code)
	assert.Equal(t, "fallback diagnosis failed", perr.Message)
	// The wrapped transport error stays in the log, not in the response.
	assert.Empty(t, perr.Details)
	assert.NotContains(t, rec.Body.String(), "model unavailable")
}

func TestHandleDoctors(t *testing.T) {
	directory := &stubDirectory{doctors: []domain.Doctor{
		{Name: "Dana Ortiz", Specialty: "NEUROLOGY", Phone: "+1(555)1234-5678"},
	}}
	server := newTestServer(t, &stubPipeline{}, directory)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/doctors?specialty=neurology&city=Austin", nil)
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	// Specialty is normalized to its vocabulary form before lookup.
	assert.Equal(t, "NEUROLOGY", directory.specialty)

	var payload struct {
		Specialty string          `json:"specialty"`
		Doctors   []domain.Doctor `json:"doctors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "NEUROLOGY", payload.Specialty)
	require.Len(t, payload.Doctors, 1)
	assert.Equal(t, "Dana Ortiz", payload.Doctors[0].Name)
}

func TestHandleDoctorsValidation(t *testing.T) {
	server := newTestServer(t, &stubPipeline{}, &stubDirectory{})

	tests := []struct {
		name  string
		query string
	}{
		{"missing specialty", "/api/v1/doctors"},
		{"unknown specialty", "/api/v1/doctors?specialty=WIZARDRY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.query, nil)
			rec := httptest.NewRecorder()
			server.router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)

			var perr domain.PipelineError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &perr))
			assert.Equal(t, domain.ErrInvalidInput, perr.Code)
		})
	}
}

func TestHandleHealth(t *testing.T) {
	server := newTestServer(t, &stubPipeline{}, &stubDirectory{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
