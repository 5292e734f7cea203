package model

import "time"

// VisitEvent is published for every resolved visit so the external analytics
// pipeline can record it. The resolver itself stores nothing.
type VisitEvent struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Outcome   string    `json:"outcome"`
	Device    string    `json:"device"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	VisitStreamName     = "VISITS"
	VisitStreamSubject  = "visits.resolved"
	VisitStreamMaxBytes = 1024 * 1024 * 100 // 100MB
)
