package webui

import (
	"tinybf/pkg/bfvm"
	"tinybf/pkg/session"
)

// SessionPayload is the full session view returned by create, get,
// reset, and the breakpoint endpoints. Field names are a wire contract
// shared with the browser front end.
type SessionPayload struct {
	SessionID        string       `json:"session_id"`
	Language         string       `json:"language"`
	Code             string       `json:"code"`
	OriginalSource   *string      `json:"original_source"`
	State            bfvm.State   `json:"state"`
	History          []bfvm.State `json:"history"`
	Finished         bool         `json:"finished"`
	HistorySize      int          `json:"history_size"`
	Breakpoints      []int        `json:"breakpoints"`
	HitBreakpoint    *int         `json:"hit_breakpoint"`
	TotalSteps       int          `json:"total_steps"`
	TotalStepsCapped bool         `json:"total_steps_capped"`
}

// StepResponse is returned by step and run. It carries the snapshots
// produced by this call in States; unlike SessionPayload it has no
// single current state or original source.
type StepResponse struct {
	SessionID        string       `json:"session_id"`
	Language         string       `json:"language"`
	Code             string       `json:"code"`
	States           []bfvm.State `json:"states"`
	History          []bfvm.State `json:"history"`
	Finished         bool         `json:"finished"`
	HistorySize      int          `json:"history_size"`
	Breakpoints      []int        `json:"breakpoints"`
	HitBreakpoint    *int         `json:"hit_breakpoint"`
	TotalSteps       int          `json:"total_steps"`
	TotalStepsCapped bool         `json:"total_steps_capped"`
}

func buildSessionPayload(s *session.Session) SessionPayload {
	history := s.History()
	var source *string
	if src := s.Source(); src != "" {
		source = &src
	}
	return SessionPayload{
		SessionID:        s.ID,
		Language:         s.Language(),
		Code:             s.Code(),
		OriginalSource:   source,
		State:            s.CurrentState(),
		History:          history,
		Finished:         s.Finished(),
		HistorySize:      len(history),
		Breakpoints:      s.Breakpoints(),
		HitBreakpoint:    s.HitBreakpoint(),
		TotalSteps:       s.TotalSteps(),
		TotalStepsCapped: s.TotalStepsCapped(),
	}
}

func buildStepResponse(s *session.Session, states []bfvm.State) StepResponse {
	history := s.History()
	if states == nil {
		states = []bfvm.State{}
	}
	return StepResponse{
		SessionID:        s.ID,
		Language:         s.Language(),
		Code:             s.Code(),
		States:           states,
		History:          history,
		Finished:         s.Finished(),
		HistorySize:      len(history),
		Breakpoints:      s.Breakpoints(),
		HitBreakpoint:    s.HitBreakpoint(),
		TotalSteps:       s.TotalSteps(),
		TotalStepsCapped: s.TotalStepsCapped(),
	}
}
