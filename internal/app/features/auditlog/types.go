// internal/app/features/auditlog/types.go
package auditlog

import (
	"time"
)

// listItem is a single audit event with names resolved.
type listItem struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Category      string            `json:"category"`
	EventType     string            `json:"event_type"`
	ActorName     string            `json:"actor_name,omitempty"`  // resolved from ActorID
	TargetName    string            `json:"target_name,omitempty"` // resolved from UserID
	District      string            `json:"district,omitempty"`
	IP            string            `json:"ip,omitempty"`
	Success       bool              `json:"success"`
	FailureReason string            `json:"failure_reason,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

type listResponse struct {
	Items []listItem `json:"items"`
	Count int        `json:"count"`
}
