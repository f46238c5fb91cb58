package model

import "time"

type SessionStatus string

const (
	SessionActive   SessionStatus = "active"
	SessionFinished SessionStatus = "finished"
)

// SessionInfo describes a live survey session
type SessionInfo struct {
	ID        string        `json:"id"`
	Status    SessionStatus `json:"status"`
	Mode      string        `json:"mode"`
	Prompt    string        `json:"prompt,omitempty"`
	Progress  Progress      `json:"progress"`
	StartedAt time.Time     `json:"startedAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// StartSessionResponse is returned when a respondent opens a session
type StartSessionResponse struct {
	SessionID string   `json:"sessionId"`
	Token     string   `json:"token"`
	Prompt    string   `json:"prompt"`
	Progress  Progress `json:"progress"`
}

// ProgressSnapshot is the cached view of a session for hosts
type ProgressSnapshot struct {
	SessionID string        `json:"sessionId"`
	Status    SessionStatus `json:"status"`
	Mode      string        `json:"mode"`
	Progress  Progress      `json:"progress"`
	UpdatedAt time.Time     `json:"updatedAt"`
}
