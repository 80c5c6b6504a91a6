// Package events defines the canonical webhook event model.
//
// Raw webhook payloads are platform-specific and untrusted; each platform
// client normalizes them into an Event exactly once per invocation. Downstream
// code switches on Kind and never inspects raw payloads again.
package events

import "fmt"

// Kind discriminates the event shapes the handler cares about.
type Kind string

const (
	// KindIssue is a direct issue event (opened, edited, ...).
	KindIssue Kind = "issue"
	// KindComment is a comment on an issue. The issue id on the event is the
	// id of the parent issue, never the comment's own id.
	KindComment Kind = "comment"
)

// IsValid checks if the kind value is valid
func (k Kind) IsValid() bool {
	switch k {
	case KindIssue, KindComment:
		return true
	}
	return false
}

// Actor is the user that triggered the event, as reported by the platform.
// The name is kept verbatim for the bot-loop guard.
type Actor struct {
	Name string `json:"name"`
}

// Event is a normalized webhook event. It is derived once from the raw
// payload, immutable afterward, and never persisted.
type Event struct {
	Kind      Kind   `json:"kind"`
	Actor     Actor  `json:"actor"`
	IssueID   int    `json:"issue_id"`
	ProjectID string `json:"project_id"`
}

// Validate checks if the event has valid field values
func (e *Event) Validate() error {
	if !e.Kind.IsValid() {
		return fmt.Errorf("invalid event kind: %s", e.Kind)
	}
	if e.IssueID <= 0 {
		return fmt.Errorf("issue id must be positive (got %d)", e.IssueID)
	}
	if e.ProjectID == "" {
		return fmt.Errorf("project id is required")
	}
	return nil
}
