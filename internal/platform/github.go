package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/steveyegge/issuebot/internal/events"
	"github.com/steveyegge/issuebot/internal/types"
)

const defaultGitHubBaseURL = "https://api.github.com"

// githubClient talks to the GitHub REST API. The project reference is the
// repository "owner/name" string rather than a numeric id.
type githubClient struct {
	token   string
	baseURL string
	httpCli *http.Client
}

func newGitHubClient(token, baseURL string, httpCli *http.Client) *githubClient {
	if baseURL == "" {
		baseURL = defaultGitHubBaseURL
	}
	return &githubClient{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCli: httpCli,
	}
}

func (c *githubClient) Name() string { return string(TypeGitHub) }

// githubEvent mirrors the normalized GitHub job payload delivered by CI.
type githubEvent struct {
	EventType string `json:"event_type"`
	User      *struct {
		Name  string `json:"name"`
		Login string `json:"login"`
	} `json:"user"`
	Repository *struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
	ObjectAttributes *struct {
		IID int `json:"iid"`
	} `json:"object_attributes"`
	Issue *struct {
		Number int `json:"number"`
	} `json:"issue"`
}

// ParseIssueEvent recognizes "issues" and "issue_comment" events. Pull
// request events share the issue comment shape on GitHub but arrive with a
// different event_type and are ignored here.
func (c *githubClient) ParseIssueEvent(raw []byte) (*events.Event, bool) {
	var payload githubEvent
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, false
	}
	if payload.User == nil || payload.Repository == nil {
		return nil, false
	}

	actor := payload.User.Name
	if actor == "" {
		actor = payload.User.Login
	}
	ev := events.Event{
		Actor:     events.Actor{Name: actor},
		ProjectID: payload.Repository.FullName,
	}

	switch payload.EventType {
	case "issues":
		if payload.ObjectAttributes == nil {
			return nil, false
		}
		ev.Kind = events.KindIssue
		ev.IssueID = payload.ObjectAttributes.IID
	case "issue_comment":
		if payload.Issue == nil {
			return nil, false
		}
		// Resolve the parent issue, not the comment.
		ev.Kind = events.KindComment
		ev.IssueID = payload.Issue.Number
	default:
		return nil, false
	}

	if err := ev.Validate(); err != nil {
		return nil, false
	}
	return &ev, true
}

func (c *githubClient) GetIssue(ctx context.Context, projectID string, issueID int) (*types.Issue, error) {
	var resp struct {
		Number int    `json:"number"`
		Title  string `json:"title"`
		Labels []struct {
			Name string `json:"name"`
		} `json:"labels"`
		State string `json:"state"`
	}
	path := fmt.Sprintf("/repos/%s/issues/%d", projectID, issueID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching issue %d: %w", issueID, err)
	}

	labels := make([]types.Label, len(resp.Labels))
	for i, l := range resp.Labels {
		labels[i] = types.Label{Name: l.Name}
	}
	state := types.StateOpen
	if resp.State == "closed" {
		state = types.StateClosed
	}
	return &types.Issue{
		ID:        resp.Number,
		Title:     resp.Title,
		Labels:    labels,
		State:     state,
		ProjectID: projectID,
	}, nil
}

func (c *githubClient) EditIssue(ctx context.Context, projectID string, issueID int, addLabel types.Label) error {
	path := fmt.Sprintf("/repos/%s/issues/%d/labels", projectID, issueID)
	req := map[string][]string{"labels": {addLabel.Name}}
	if err := c.do(ctx, http.MethodPost, path, req, nil); err != nil {
		return fmt.Errorf("adding label %q to issue %d: %w", addLabel.Name, issueID, err)
	}
	return nil
}

func (c *githubClient) GetLabels(ctx context.Context, projectID string) ([]types.Label, error) {
	var resp []struct {
		Name string `json:"name"`
	}
	path := fmt.Sprintf("/repos/%s/labels?per_page=100", projectID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching labels: %w", err)
	}

	labels := make([]types.Label, len(resp))
	for i, l := range resp {
		labels[i] = types.Label{Name: l.Name}
	}
	return labels, nil
}

func (c *githubClient) GetComments(ctx context.Context, projectID string, issueID int) ([]types.Comment, error) {
	var resp []struct {
		ID   int    `json:"id"`
		Body string `json:"body"`
		User struct {
			Login string `json:"login"`
		} `json:"user"`
		CreatedAt time.Time `json:"created_at"`
	}
	path := fmt.Sprintf("/repos/%s/issues/%d/comments?per_page=100", projectID, issueID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching comments for issue %d: %w", issueID, err)
	}

	comments := make([]types.Comment, len(resp))
	for i, cm := range resp {
		comments[i] = types.Comment{
			ID:        cm.ID,
			Body:      cm.Body,
			Author:    types.Author{Name: cm.User.Login},
			CreatedAt: cm.CreatedAt,
		}
	}
	return comments, nil
}

func (c *githubClient) CreateComment(ctx context.Context, projectID string, issueID int, body string) error {
	path := fmt.Sprintf("/repos/%s/issues/%d/comments", projectID, issueID)
	req := map[string]string{"body": body}
	if err := c.do(ctx, http.MethodPost, path, req, nil); err != nil {
		return fmt.Errorf("creating comment on issue %d: %w", issueID, err)
	}
	return nil
}

func (c *githubClient) EditComment(ctx context.Context, projectID string, issueID int, commentID int, body string) error {
	// Comment ids are repo-scoped on GitHub; the issue number is not needed.
	path := fmt.Sprintf("/repos/%s/issues/comments/%d", projectID, commentID)
	req := map[string]string{"body": body}
	if err := c.do(ctx, http.MethodPatch, path, req, nil); err != nil {
		return fmt.Errorf("editing comment %d: %w", commentID, err)
	}
	return nil
}

// LabelReference renders a label as inline code; GitHub has no label
// reference syntax in markdown.
func (c *githubClient) LabelReference(l types.Label) string {
	return "`" + l.Name + "`"
}

func (c *githubClient) do(ctx context.Context, method, path string, payload, out any) error {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("GitHub API error (status %d): %s", resp.StatusCode, string(body))
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}
