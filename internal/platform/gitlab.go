package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/steveyegge/issuebot/internal/events"
	"github.com/steveyegge/issuebot/internal/types"
)

const defaultGitLabBaseURL = "https://gitlab.com/api/v4"

// gitlabClient talks to the GitLab REST API (v4).
type gitlabClient struct {
	token   string
	baseURL string
	httpCli *http.Client
}

func newGitLabClient(token, baseURL string, httpCli *http.Client) *gitlabClient {
	if baseURL == "" {
		baseURL = defaultGitLabBaseURL
	}
	return &gitlabClient{
		token:   token,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCli: httpCli,
	}
}

func (c *gitlabClient) Name() string { return string(TypeGitLab) }

// gitlabEvent mirrors the subset of GitLab webhook payloads the bot reads.
// Pointers distinguish absent objects from zero values.
type gitlabEvent struct {
	EventType string `json:"event_type"`
	User      *struct {
		Name string `json:"name"`
	} `json:"user"`
	Project *struct {
		ID int `json:"id"`
	} `json:"project"`
	ObjectAttributes *struct {
		IID          int    `json:"iid"`
		NoteableType string `json:"noteable_type"`
	} `json:"object_attributes"`
	Issue *struct {
		IID int `json:"iid"`
	} `json:"issue"`
}

// ParseIssueEvent recognizes GitLab issue events and note-on-issue events.
// Notes on merge requests, snippets etc. are not relevant, and neither is
// anything with missing fields.
func (c *gitlabClient) ParseIssueEvent(raw []byte) (*events.Event, bool) {
	var payload gitlabEvent
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, false
	}
	if payload.User == nil || payload.Project == nil || payload.ObjectAttributes == nil {
		return nil, false
	}

	ev := events.Event{
		Actor:     events.Actor{Name: payload.User.Name},
		ProjectID: strconv.Itoa(payload.Project.ID),
	}

	switch payload.EventType {
	case "issue":
		ev.Kind = events.KindIssue
		ev.IssueID = payload.ObjectAttributes.IID
	case "note":
		if payload.ObjectAttributes.NoteableType != "Issue" || payload.Issue == nil {
			return nil, false
		}
		// The issue id comes from the note's parent issue, not the note itself.
		ev.Kind = events.KindComment
		ev.IssueID = payload.Issue.IID
	default:
		return nil, false
	}

	if err := ev.Validate(); err != nil {
		return nil, false
	}
	return &ev, true
}

func (c *gitlabClient) GetIssue(ctx context.Context, projectID string, issueID int) (*types.Issue, error) {
	var resp struct {
		IID    int      `json:"iid"`
		Title  string   `json:"title"`
		Labels []string `json:"labels"`
		State  string   `json:"state"`
	}
	path := fmt.Sprintf("/projects/%s/issues/%d", url.PathEscape(projectID), issueID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching issue %d: %w", issueID, err)
	}

	labels := make([]types.Label, len(resp.Labels))
	for i, name := range resp.Labels {
		labels[i] = types.Label{Name: name}
	}
	state := types.StateOpen
	if resp.State == "closed" {
		state = types.StateClosed
	}
	return &types.Issue{
		ID:        resp.IID,
		Title:     resp.Title,
		Labels:    labels,
		State:     state,
		ProjectID: projectID,
	}, nil
}

func (c *gitlabClient) EditIssue(ctx context.Context, projectID string, issueID int, addLabel types.Label) error {
	path := fmt.Sprintf("/projects/%s/issues/%d?add_labels=%s",
		url.PathEscape(projectID), issueID, url.QueryEscape(addLabel.Name))
	if err := c.do(ctx, http.MethodPut, path, nil, nil); err != nil {
		return fmt.Errorf("adding label %q to issue %d: %w", addLabel.Name, issueID, err)
	}
	return nil
}

func (c *gitlabClient) GetLabels(ctx context.Context, projectID string) ([]types.Label, error) {
	var resp []struct {
		Name string `json:"name"`
	}
	// include_ancestor_groups pulls in group-level labels the project can use.
	path := fmt.Sprintf("/projects/%s/labels?include_ancestor_groups=true&per_page=100",
		url.PathEscape(projectID))
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching labels: %w", err)
	}

	labels := make([]types.Label, len(resp))
	for i, l := range resp {
		labels[i] = types.Label{Name: l.Name}
	}
	return labels, nil
}

func (c *gitlabClient) GetComments(ctx context.Context, projectID string, issueID int) ([]types.Comment, error) {
	var resp []struct {
		ID     int    `json:"id"`
		Body   string `json:"body"`
		Author struct {
			Name string `json:"name"`
		} `json:"author"`
		CreatedAt time.Time `json:"created_at"`
	}
	path := fmt.Sprintf("/projects/%s/issues/%d/notes?sort=asc&order_by=created_at&per_page=100",
		url.PathEscape(projectID), issueID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("fetching notes for issue %d: %w", issueID, err)
	}

	comments := make([]types.Comment, len(resp))
	for i, n := range resp {
		comments[i] = types.Comment{
			ID:        n.ID,
			Body:      n.Body,
			Author:    types.Author{Name: n.Author.Name},
			CreatedAt: n.CreatedAt,
		}
	}
	return comments, nil
}

func (c *gitlabClient) CreateComment(ctx context.Context, projectID string, issueID int, body string) error {
	path := fmt.Sprintf("/projects/%s/issues/%d/notes", url.PathEscape(projectID), issueID)
	req := map[string]string{"body": body}
	if err := c.do(ctx, http.MethodPost, path, req, nil); err != nil {
		return fmt.Errorf("creating note on issue %d: %w", issueID, err)
	}
	return nil
}

func (c *gitlabClient) EditComment(ctx context.Context, projectID string, issueID int, commentID int, body string) error {
	path := fmt.Sprintf("/projects/%s/issues/%d/notes/%d", url.PathEscape(projectID), issueID, commentID)
	req := map[string]string{"body": body}
	if err := c.do(ctx, http.MethodPut, path, req, nil); err != nil {
		return fmt.Errorf("editing note %d on issue %d: %w", commentID, issueID, err)
	}
	return nil
}

// LabelReference renders a GitLab scoped-label reference, e.g. ~"Priority::Normal".
func (c *gitlabClient) LabelReference(l types.Label) string {
	return fmt.Sprintf("~%q", l.Name)
}

// do performs a single API request. 2xx responses decode into out (when
// non-nil); anything else is an error carrying the response body.
func (c *gitlabClient) do(ctx context.Context, method, path string, payload, out any) error {
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
	req.Header.Set("PRIVATE-TOKEN", c.token)
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
		return fmt.Errorf("GitLab API error (status %d): %s", resp.StatusCode, string(body))
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("parsing response: %w", err)
		}
	}
	return nil
}
