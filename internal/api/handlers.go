package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/medibuddy-diagnosis-server/internal/domain"
	"github.com/medibuddy-diagnosis-server/internal/vocab"
)

// ChatRequest is one user turn.
type ChatRequest struct {
	Message string `json:"message"`
	City    string `json:"city"`
	Zip     string `json:"zip"`
}

// handleChat runs one pipeline turn and returns the decision-shaped result.
func (s *Server) handleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, domain.NewPipelineError(
			domain.ErrInvalidInput, "invalid request body", err.Error()))
		return
	}

	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, domain.NewPipelineError(
			domain.ErrInvalidInput, "message must not be empty", ""))
		return
	}

	run := s.pipeline.Run
	if s.config.Pipeline.LegacyRanker {
		run = s.pipeline.RunLegacy
	}

	result, err := run(c.Request.Context(), req.Message, req.City, req.Zip)
	if err != nil {
		s.log.WithError(err).Error("Chat pipeline failed")

		// Internal error text stays in the log; the response carries only
		// the error code and its public message.
		var pipelineErr *domain.PipelineError
		if errors.As(err, &pipelineErr) {
			c.JSON(http.StatusBadGateway, domain.NewPipelineError(
				pipelineErr.Code, pipelineErr.Message, ""))
			return
		}
		c.JSON(http.StatusBadGateway, domain.NewPipelineError(
			domain.ErrPipeline, "chat pipeline failed", ""))
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleDoctors looks up providers for a specialty directly, without a
// chat turn.
func (s *Server) handleDoctors(c *gin.Context) {
	specialty := vocab.NormalizeSpecialty(c.Query("specialty"))
	if specialty == "" {
		c.JSON(http.StatusBadRequest, domain.NewPipelineError(
			domain.ErrInvalidInput, "specialty query parameter is required", ""))
		return
	}
	if !vocab.Specialties().Contains(specialty) {
		c.JSON(http.StatusBadRequest, domain.NewPipelineError(
			domain.ErrInvalidInput, "unknown specialty", specialty))
		return
	}

	doctors, err := s.directory.Lookup(c.Request.Context(), specialty, c.Query("city"), c.Query("zip"))
	if err != nil {
		s.log.WithError(err).Error("Doctor lookup failed")
		c.JSON(http.StatusBadGateway, domain.NewPipelineError(
			domain.ErrStore, "doctor lookup failed", ""))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"specialty": specialty,
		"doctors":   doctors,
	})
}
