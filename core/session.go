package core

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/huangsam/courseload/core/algo"
	"github.com/huangsam/courseload/schema"
)

// Session runs successive recommendation rounds for one student. Each round skips every
// subject an earlier round already offered and keeps the top entries of each list.
// A Session is not safe for concurrent use.
type Session struct {
	ID       string
	engine   *Engine
	profile  *schema.StudentProfile
	semester int
	table    *schema.ScoreTable
	history  []string
	seen     map[string]struct{}
	rounds   []schema.RoundResult
}

// NewSession starts a session. A nil table ranks without burnout or utility.
func NewSession(e *Engine, p *schema.StudentProfile, semester int, table *schema.ScoreTable) (*Session, error) {
	if p == nil {
		return nil, fmt.Errorf("nil profile: %w", ErrStudentNotFound)
	}
	return &Session{
		ID:       uuid.NewString(),
		engine:   e,
		profile:  p,
		semester: semester,
		table:    table,
		seen:     make(map[string]struct{}),
	}, nil
}

// NextRound generates one round using this round's extra interests.
func (s *Session) NextRound(extra []string) (schema.RoundResult, error) {
	res, err := s.engine.GenerateRecommendations(s.profile, s.semester, extra, s.table)
	if err != nil {
		return schema.RoundResult{}, err
	}
	base := s.profile.Interests
	if len(base) == 0 {
		base = s.profile.DesiredOutcomes
	}
	round := schema.RoundResult{
		Round:       len(s.rounds) + 1,
		Interests:   algo.NormalizeInterests(base, extra),
		Recommended: algo.TakeUnseen(res.Recommended, s.seen, schema.RoundSize),
		Competitive: algo.TakeUnseen(res.Competitive, s.seen, schema.RoundSize),
	}
	for _, list := range [][]schema.ScoredSubject{round.Recommended, round.Competitive} {
		for _, subj := range list {
			if _, ok := s.seen[subj.SubjectCode]; ok {
				continue
			}
			s.seen[subj.SubjectCode] = struct{}{}
			s.history = append(s.history, subj.SubjectCode)
		}
	}
	s.rounds = append(s.rounds, round)
	return round, nil
}

// History returns every code offered so far in the order first offered.
func (s *Session) History() []string {
	return append([]string(nil), s.history...)
}

// Rounds returns the rounds run so far.
func (s *Session) Rounds() []schema.RoundResult { return s.rounds }

// Table returns the burnout table the session ranks with, or nil.
func (s *Session) Table() *schema.ScoreTable { return s.table }

// Schedule builds the final schedule from the session history.
func (s *Session) Schedule() schema.Schedule {
	return s.engine.BuildSchedule(s.history, s.table)
}
