// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/huangsam/courseload/internal/contract"
)

// NewMCPServer initializes and configures the Courseload MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Courseload Advising Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: get_burnout_scores ---
	s.AddTool(mcp.NewTool("get_burnout_scores",
		mcp.WithDescription("Compute the burnout probability and utility of every subject a student has not completed, lowest risk first."),
		mcp.WithString("nuid", mcp.Description("The student id."), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Limit the number of subjects returned.")),
	), h.handleGetBurnoutScores)

	// --- 2. Tool: get_recommendations ---
	s.AddTool(mcp.NewTool("get_recommendations",
		mcp.WithDescription("Recommend subjects for a student, split into likely and highly competitive courses."),
		mcp.WithString("nuid", mcp.Description("The student id."), mcp.Required()),
		mcp.WithNumber("semester", mcp.Description("Current semester of the student. Defaults to the semester in the profile.")),
		mcp.WithString("additional_interests", mcp.Description("Comma separated interests added to the profile's interests (e.g. 'ai, web').")),
	), h.handleGetRecommendations)

	// --- 3. Tool: build_schedule ---
	s.AddTool(mcp.NewTool("build_schedule",
		mcp.WithDescription("Build the final schedule from selected subject codes, or from the student's last session."),
		mcp.WithString("nuid", mcp.Description("The student id."), mcp.Required()),
		mcp.WithString("subject_codes", mcp.Description("Comma separated subject codes in selection order.")),
	), h.handleBuildSchedule)

	// --- 4. Tool: compute_utility ---
	s.AddTool(mcp.NewTool("compute_utility",
		mcp.WithDescription("Explain the burnout factors, outcome alignment and utility of one subject for a student."),
		mcp.WithString("nuid", mcp.Description("The student id."), mcp.Required()),
		mcp.WithString("subject_code", mcp.Description("The subject code, e.g. CS5800."), mcp.Required()),
	), h.handleComputeUtility)

	return s
}

// StartMCPServer starts the Courseload MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
