package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/huangsam/courseload/schema"
)

type burnoutRequest struct {
	NUID string `json:"nuid"`
}

type burnoutResponse struct {
	NUID      string                `json:"nuid"`
	Scores    []schema.BurnoutScore `json:"scores"`
	TopScores []schema.BurnoutScore `json:"top_scores"`
}

type recommendationRequest struct {
	NUID                string       `json:"nuid"`
	Semester            *int         `json:"semester"`
	AdditionalInterests interestList `json:"additional_interests"`
}

type recommendationResponse struct {
	NUID        string                 `json:"nuid"`
	Semester    int                    `json:"semester"`
	Recommended []schema.ScoredSubject `json:"recommended_courses"`
	Competitive []schema.ScoredSubject `json:"highly_competitive_courses"`
}

type scheduleRequest struct {
	NUID    string   `json:"nuid"`
	History []string `json:"history"`
}

type scheduleResponse struct {
	NUID     string          `json:"nuid"`
	Schedule schema.Schedule `json:"schedule"`
}

// interestList accepts either a JSON array of strings or one comma separated string.
type interestList []string

func (l *interestList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = schema.SplitList(s, ",")
		return nil
	}
	var items []string
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("additional_interests must be a string or a list of strings")
	}
	*l = items
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleBurnoutScores(w http.ResponseWriter, r *http.Request) {
	var req burnoutRequest
	if !decodeBody(w, r, &req) {
		return
	}
	nuid := strings.TrimSpace(req.NUID)
	if nuid == "" {
		writeMissing(w, "nuid")
		return
	}

	table, err := s.svc.BurnoutScores(r.Context(), nuid)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	rows := table.Rows
	if rows == nil {
		rows = []schema.BurnoutScore{}
	}
	writeJSON(w, http.StatusOK, burnoutResponse{
		NUID:      table.StudentID,
		Scores:    rows,
		TopScores: rows[:min(schema.TopScoresSize, len(rows))],
	})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	nuid := strings.TrimSpace(req.NUID)
	if nuid == "" {
		writeMissing(w, "nuid")
		return
	}
	if req.Semester == nil {
		writeMissing(w, "semester")
		return
	}
	if *req.Semester < 0 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("semester cannot be negative (received %d)", *req.Semester))
		return
	}

	result, err := s.svc.Recommendations(r.Context(), nuid, *req.Semester, req.AdditionalInterests)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recommendationResponse{
		NUID:        nuid,
		Semester:    *req.Semester,
		Recommended: nonNil(result.Recommended),
		Competitive: nonNil(result.Competitive),
	})
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	nuid := strings.TrimSpace(req.NUID)
	if nuid == "" {
		writeMissing(w, "nuid")
		return
	}

	schedule, err := s.svc.Schedule(r.Context(), nuid, req.History)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, scheduleResponse{NUID: nuid, Schedule: schedule})
}

// decodeBody reads a JSON request body into v. An empty body decodes as an empty object
// so that missing fields are reported by name. It writes the 400 itself and reports false
// on malformed input.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	return true
}

func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed",
		"path", r.URL.Path,
		"error", err,
		"request_id", getRequestID(r.Context()),
	)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeMissing(w http.ResponseWriter, name string) {
	writeError(w, http.StatusBadRequest, fmt.Sprintf("Missing required parameter: %s", name))
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func nonNil(s []schema.ScoredSubject) []schema.ScoredSubject {
	if s == nil {
		return []schema.ScoredSubject{}
	}
	return s
}
