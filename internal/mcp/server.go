// Package mcp exposes the diagnosis pipeline as MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/medibuddy-diagnosis-server/internal/domain"
)

// ChatPipeline is the pipeline surface the MCP tools need.
type ChatPipeline interface {
	Run(ctx context.Context, utterance, city, zip string) (*domain.ChatResult, error)
	RunLegacy(ctx context.Context, utterance, city, zip string) (*domain.ChatResult, error)
}

// Server wraps the MCP SDK server around the diagnosis pipeline.
type Server struct {
	mcpServer *mcp.Server
	pipeline  ChatPipeline
	extractor domain.SymptomExtractor
	directory domain.DoctorDirectory
	logger    *logrus.Logger
}

// NewServer creates a new MCP server instance
func NewServer(pipeline ChatPipeline, extractor domain.SymptomExtractor, directory domain.DoctorDirectory, logger *logrus.Logger) (*Server, error) {
	serverInfo := &mcp.Implementation{
		Name:    "medibuddy-mcp-server",
		Version: "v0.1.0",
	}

	server := &Server{
		mcpServer: mcp.NewServer(serverInfo, nil),
		pipeline:  pipeline,
		extractor: extractor,
		directory: directory,
		logger:    logger,
	}

	if err := server.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return server, nil
}

// registerTools registers all diagnosis tools with the MCP SDK
func (s *Server) registerTools() error {
	s.logger.Info("Registering MCP tools...")

	s.mcpServer.AddTool(&mcp.Tool{
		Name:        "diagnose",
		Description: "Run one full diagnosis turn: extract symptoms from free text, rank candidate conditions, and suggest a specialist with matching providers.",
	}, s.handleDiagnose)

	s.mcpServer.AddTool(&mcp.Tool{
		Name:        "extract_symptoms",
		Description: "Extract canonical symptoms from free text against the closed symptom vocabulary.",
	}, s.handleExtractSymptoms)

	s.mcpServer.AddTool(&mcp.Tool{
		Name:        "find_doctors",
		Description: "Look up providers for a medical specialization, optionally filtered by city and ZIP prefix.",
	}, s.handleFindDoctors)

	s.logger.WithField("tool_count", 3).Info("Successfully registered all tools")
	return nil
}

// Start runs the MCP server over stdio until the context is cancelled
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("Starting MediBuddy MCP Server...")

	if err := s.mcpServer.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}

	return nil
}
