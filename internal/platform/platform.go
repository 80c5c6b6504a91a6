// Package platform provides an abstraction layer over code-hosting platforms.
// It supports both GitLab and GitHub backends, selected at startup. Field
// names and label shapes differ per platform, so all payload inspection lives
// in the backend implementations, never in the triage core.
package platform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/steveyegge/issuebot/internal/events"
	"github.com/steveyegge/issuebot/internal/types"
)

var (
	// ErrMissingToken is returned when a backend is created without an API token.
	ErrMissingToken = errors.New("missing API token")

	// ErrUnsupportedPlatform is returned for an unknown platform type.
	ErrUnsupportedPlatform = errors.New("unsupported platform")
)

// Type represents the kind of code-hosting platform.
type Type string

const (
	// TypeGitLab represents a GitLab instance (gitlab.com or self-hosted).
	TypeGitLab Type = "gitlab"

	// TypeGitHub represents GitHub (github.com or GitHub Enterprise).
	TypeGitHub Type = "github"
)

// Client defines the platform operations the triage handler depends on.
// All implementations must be safe to call strictly in sequence; the handler
// never fans out concurrently.
type Client interface {
	// Name returns the platform name (e.g. "gitlab", "github").
	Name() string

	// ParseIssueEvent normalizes a raw webhook payload. It returns false for
	// payloads that are not issue or issue-comment events, and for malformed
	// payloads; probe events and unrelated webhook types are common and must
	// not fail the invocation.
	ParseIssueEvent(raw []byte) (*events.Event, bool)

	// GetIssue fetches a single issue. projectID is the platform-native
	// project reference (numeric id on GitLab, "owner/repo" on GitHub) and
	// issueID the platform-native issue number.
	GetIssue(ctx context.Context, projectID string, issueID int) (*types.Issue, error)

	// EditIssue adds exactly one label to the issue. Adding a label the issue
	// already carries is not an error on either platform.
	EditIssue(ctx context.Context, projectID string, issueID int, addLabel types.Label) error

	// GetLabels returns the full label catalog visible to the project,
	// including labels inherited from ancestor scopes where the platform
	// supports them.
	GetLabels(ctx context.Context, projectID string) ([]types.Label, error)

	// GetComments returns all comments on the issue.
	GetComments(ctx context.Context, projectID string, issueID int) ([]types.Comment, error)

	// CreateComment creates a new comment on the issue.
	CreateComment(ctx context.Context, projectID string, issueID int, body string) error

	// EditComment replaces the body of an existing comment.
	EditComment(ctx context.Context, projectID string, issueID int, commentID int, body string) error

	// LabelReference renders a label in the platform's comment reference
	// syntax (GitLab: ~"Name", GitHub: `Name`).
	LabelReference(l types.Label) string
}

// Config holds configuration for platform client initialization.
type Config struct {
	// Type selects the backend: "gitlab" or "github".
	Type Type

	// Token is the API token used to authenticate.
	Token string

	// BaseURL overrides the platform API base URL. Leave empty for
	// gitlab.com / api.github.com.
	BaseURL string

	// HTTPClient overrides the HTTP client, mainly for tests.
	// If nil, a client with a 30 second timeout is used.
	HTTPClient *http.Client
}

// New creates a platform client based on the provided configuration.
func New(cfg Config) (Client, error) {
	if cfg.Token == "" {
		return nil, ErrMissingToken
	}
	httpCli := cfg.HTTPClient
	if httpCli == nil {
		httpCli = &http.Client{Timeout: 30 * time.Second}
	}

	switch cfg.Type {
	case TypeGitLab:
		return newGitLabClient(cfg.Token, cfg.BaseURL, httpCli), nil
	case TypeGitHub:
		return newGitHubClient(cfg.Token, cfg.BaseURL, httpCli), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPlatform, cfg.Type)
	}
}
