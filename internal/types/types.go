// Package types defines the core data model shared by the triage handler:
// issues, labels, and comments as seen through the hosting-platform API.
package types

import (
	"fmt"
	"time"
)

// Issue represents a single tracker issue at the moment it was fetched.
// The handler reads an issue once per invocation and never caches it.
type Issue struct {
	ID        int     `json:"id"`
	Title     string  `json:"title"`
	Labels    []Label `json:"labels"`
	State     State   `json:"state"`
	ProjectID string  `json:"project_id"`
}

// Validate checks if the issue has valid field values
func (i *Issue) Validate() error {
	if i.ID <= 0 {
		return fmt.Errorf("issue id must be positive (got %d)", i.ID)
	}
	if i.ProjectID == "" {
		return fmt.Errorf("project id is required")
	}
	if !i.State.IsValid() {
		return fmt.Errorf("invalid state: %s", i.State)
	}
	return nil
}

// HasLabel reports whether the issue carries a label with the given name.
// Label identity is its name; the platform label set is treated as unordered.
func (i *Issue) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if l.Name == name {
			return true
		}
	}
	return false
}

// State represents the lifecycle state of an issue
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// IsValid checks if the state value is valid
func (s State) IsValid() bool {
	switch s {
	case StateOpen, StateClosed:
		return true
	}
	return false
}

// Label is a platform label. Identity is the name.
type Label struct {
	Name string `json:"name"`
}

// Comment is a single comment (GitLab calls these notes) on an issue.
type Comment struct {
	ID        int       `json:"id"`
	Body      string    `json:"body"`
	Author    Author    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// Author identifies who wrote a comment or triggered an event.
type Author struct {
	Name string `json:"name"`
}
