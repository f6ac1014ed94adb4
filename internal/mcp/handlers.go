package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/medibuddy-diagnosis-server/internal/vocab"
)

// DiagnoseParams defines parameters for the diagnose tool
type DiagnoseParams struct {
	Message string `json:"message"`
	City    string `json:"city,omitempty"`
	Zip     string `json:"zip,omitempty"`
	Legacy  bool   `json:"legacy,omitempty"`
}

// ExtractSymptomsParams defines parameters for the extract_symptoms tool
type ExtractSymptomsParams struct {
	Message string `json:"message"`
}

// ExtractSymptomsResult defines the result structure for extract_symptoms
type ExtractSymptomsResult struct {
	Recognized   []string `json:"recognized"`
	Unrecognized []string `json:"unrecognized"`
}

// FindDoctorsParams defines parameters for the find_doctors tool
type FindDoctorsParams struct {
	Specialty string `json:"specialty"`
	City      string `json:"city,omitempty"`
	Zip       string `json:"zip,omitempty"`
}

// handleDiagnose handles the diagnose tool invocation
func (s *Server) handleDiagnose(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logger.WithField("tool", "diagnose").Info("Tool invoked")

	var params DiagnoseParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return s.createErrorResult("Invalid parameters", err), nil
	}

	if params.Message == "" {
		return s.createErrorResult("Missing required parameter", fmt.Errorf("message is required")), nil
	}

	run := s.pipeline.Run
	if params.Legacy {
		run = s.pipeline.RunLegacy
	}

	result, err := run(ctx, params.Message, params.City, params.Zip)
	if err != nil {
		return s.createErrorResult("Diagnosis failed", err), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: result.AssistantReply},
		},
		Meta: map[string]interface{}{
			"result": result,
		},
	}, nil
}

// handleExtractSymptoms handles the extract_symptoms tool invocation
func (s *Server) handleExtractSymptoms(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logger.WithField("tool", "extract_symptoms").Info("Tool invoked")

	var params ExtractSymptomsParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return s.createErrorResult("Invalid parameters", err), nil
	}

	if params.Message == "" {
		return s.createErrorResult("Missing required parameter", fmt.Errorf("message is required")), nil
	}

	recognized, unrecognized, err := s.extractor.ExtractSymptoms(ctx, params.Message)
	if err != nil {
		return s.createErrorResult("Extraction failed", err), nil
	}

	result := ExtractSymptomsResult{
		Recognized:   recognized,
		Unrecognized: unrecognized,
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: fmt.Sprintf("Recognized %d symptom(s), %d token(s) not in the vocabulary",
					len(recognized), len(unrecognized)),
			},
		},
		Meta: map[string]interface{}{
			"result": result,
		},
	}, nil
}

// handleFindDoctors handles the find_doctors tool invocation
func (s *Server) handleFindDoctors(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logger.WithField("tool", "find_doctors").Info("Tool invoked")

	var params FindDoctorsParams
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return s.createErrorResult("Invalid parameters", err), nil
	}

	specialty := vocab.NormalizeSpecialty(params.Specialty)
	if specialty == "" {
		return s.createErrorResult("Missing required parameter", fmt.Errorf("specialty is required")), nil
	}
	if !vocab.Specialties().Contains(specialty) {
		return s.createErrorResult("Unknown specialty", fmt.Errorf("%q is not a known specialization", params.Specialty)), nil
	}

	doctors, err := s.directory.Lookup(ctx, specialty, params.City, params.Zip)
	if err != nil {
		return s.createErrorResult("Doctor lookup failed", err), nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{
				Text: fmt.Sprintf("Found %d provider(s) for %s", len(doctors), specialty),
			},
		},
		Meta: map[string]interface{}{
			"result": doctors,
		},
	}, nil
}

// createErrorResult creates a standardized error result for tool calls
func (s *Server) createErrorResult(message string, err error) *mcp.CallToolResult {
	errorText := fmt.Sprintf("Error: %s", message)
	if err != nil {
		errorText += fmt.Sprintf(" - %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: errorText},
		},
		IsError: true,
	}
}
