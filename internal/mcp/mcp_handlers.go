package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/huangsam/courseload/core"
	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

// service loads the catalog for one tool call so catalog edits show up without a restart.
func (h *toolHandler) service() (*core.Service, error) {
	return core.NewServiceFromConfig(h.baseCfg, h.mgr)
}

// requireString returns a non-blank argument, or the tool error to send back.
func requireString(request mcp.CallToolRequest, name string) (string, *mcp.CallToolResult) {
	v := strings.TrimSpace(request.GetString(name, ""))
	if v == "" {
		return "", mcp.NewToolResultError(fmt.Sprintf("Missing required parameter: %s", name))
	}
	return v, nil
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleGetBurnoutScores(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nuid, errResult := requireString(request, "nuid")
	if errResult != nil {
		return errResult, nil
	}
	svc, err := h.service()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading catalog failed: %v", err)), nil
	}

	table, err := svc.BurnoutScores(ctx, nuid)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("scoring failed: %v", err)), nil
	}
	rows := table.Rows
	if l := request.GetInt("limit", 0); l > 0 && l < len(rows) {
		rows = rows[:l]
	}
	return jsonResult(schema.EnrichBurnoutScores(rows)), nil
}

func (h *toolHandler) handleGetRecommendations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nuid, errResult := requireString(request, "nuid")
	if errResult != nil {
		return errResult, nil
	}
	semester := request.GetInt("semester", 0)
	if semester < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("semester cannot be negative (received %d)", semester)), nil
	}
	extra := schema.SplitList(request.GetString("additional_interests", ""), ",")

	svc, err := h.service()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading catalog failed: %v", err)), nil
	}
	if semester == 0 {
		p, err := svc.Profile(ctx, nuid)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("recommendation failed: %v", err)), nil
		}
		semester = p.Semester
	}

	result, err := svc.Recommendations(ctx, nuid, semester, extra)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("recommendation failed: %v", err)), nil
	}
	return jsonResult(struct {
		Recommended []schema.EnrichedScoredSubject `json:"recommended_courses"`
		Competitive []schema.EnrichedScoredSubject `json:"highly_competitive_courses"`
	}{
		Recommended: schema.EnrichScoredSubjects(result.Recommended),
		Competitive: schema.EnrichScoredSubjects(result.Competitive),
	}), nil
}

func (h *toolHandler) handleBuildSchedule(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nuid, errResult := requireString(request, "nuid")
	if errResult != nil {
		return errResult, nil
	}
	codes := schema.SplitList(request.GetString("subject_codes", ""), ",")

	svc, err := h.service()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading catalog failed: %v", err)), nil
	}
	schedule, err := svc.Schedule(ctx, nuid, codes)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("schedule failed: %v", err)), nil
	}
	return jsonResult(schedule), nil
}

func (h *toolHandler) handleComputeUtility(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	nuid, errResult := requireString(request, "nuid")
	if errResult != nil {
		return errResult, nil
	}
	code, errResult := requireString(request, "subject_code")
	if errResult != nil {
		return errResult, nil
	}

	svc, err := h.service()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("loading catalog failed: %v", err)), nil
	}
	detail, err := svc.Utility(ctx, nuid, code)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("utility failed: %v", err)), nil
	}
	return jsonResult(struct {
		SubjectCode string                  `json:"subject_code"`
		Burnout     schema.BurnoutBreakdown `json:"burnout"`
		Alignment   float64                 `json:"outcome_alignment"`
		Penalty     float64                 `json:"prerequisite_penalty"`
		Utility     float64                 `json:"utility"`
	}{
		SubjectCode: schema.NormalizeCode(code),
		Burnout:     detail.Breakdown,
		Alignment:   detail.Alignment,
		Penalty:     detail.Penalty,
		Utility:     detail.Utility,
	}), nil
}
