package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/steveyegge/issuebot/internal/events"
	"github.com/steveyegge/issuebot/internal/types"
)

func newTestGitLabClient(t *testing.T, handler http.Handler) *gitlabClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return newGitLabClient("test-token", srv.URL, srv.Client())
}

func TestGitLabParseIssueEvent(t *testing.T) {
	client := newGitLabClient("tok", "", nil)

	tests := []struct {
		name    string
		payload string
		want    *events.Event
	}{
		{
			name: "issue event",
			payload: `{
				"event_type": "issue",
				"user": {"name": "Alice"},
				"project": {"id": 42},
				"object_attributes": {"iid": 7}
			}`,
			want: &events.Event{Kind: events.KindIssue, Actor: events.Actor{Name: "Alice"}, IssueID: 7, ProjectID: "42"},
		},
		{
			name: "note on issue resolves parent issue id",
			payload: `{
				"event_type": "note",
				"user": {"name": "Bob"},
				"project": {"id": 42},
				"object_attributes": {"id": 999, "noteable_type": "Issue"},
				"issue": {"iid": 7}
			}`,
			want: &events.Event{Kind: events.KindComment, Actor: events.Actor{Name: "Bob"}, IssueID: 7, ProjectID: "42"},
		},
		{
			name: "note on merge request is irrelevant",
			payload: `{
				"event_type": "note",
				"user": {"name": "Bob"},
				"project": {"id": 42},
				"object_attributes": {"noteable_type": "MergeRequest"},
				"merge_request": {"iid": 3}
			}`,
		},
		{
			name: "merge request event is irrelevant",
			payload: `{
				"event_type": "merge_request",
				"user": {"name": "Bob"},
				"project": {"id": 42},
				"object_attributes": {"iid": 3}
			}`,
		},
		{
			name:    "missing user fails softly",
			payload: `{"event_type": "issue", "project": {"id": 42}, "object_attributes": {"iid": 7}}`,
		},
		{
			name:    "missing object attributes fails softly",
			payload: `{"event_type": "issue", "user": {"name": "A"}, "project": {"id": 42}}`,
		},
		{
			name:    "garbage payload fails softly",
			payload: `{"event_type": `,
		},
		{
			name:    "empty object fails softly",
			payload: `{}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := client.ParseIssueEvent([]byte(tt.payload))
			if tt.want == nil {
				if ok {
					t.Fatalf("ParseIssueEvent() = %+v, want not relevant", got)
				}
				return
			}
			if !ok {
				t.Fatal("ParseIssueEvent() not relevant, want event")
			}
			if *got != *tt.want {
				t.Errorf("ParseIssueEvent() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGitLabGetIssue(t *testing.T) {
	client := newTestGitLabClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/projects/42/issues/7" {
			t.Errorf("path = %s, want /projects/42/issues/7", r.URL.Path)
		}
		if got := r.Header.Get("PRIVATE-TOKEN"); got != "test-token" {
			t.Errorf("PRIVATE-TOKEN = %q, want test-token", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"iid":    7,
			"title":  "fix: some bug",
			"labels": []string{"Type::Bug"},
			"state":  "opened",
		})
	}))

	issue, err := client.GetIssue(context.Background(), "42", 7)
	if err != nil {
		t.Fatalf("GetIssue() error: %v", err)
	}
	if issue.ID != 7 || issue.Title != "fix: some bug" || issue.ProjectID != "42" {
		t.Errorf("unexpected issue: %+v", issue)
	}
	if issue.State != types.StateOpen {
		t.Errorf("state = %s, want open", issue.State)
	}
	if !issue.HasLabel("Type::Bug") {
		t.Error("expected Type::Bug label")
	}
}

func TestGitLabGetIssueClosedState(t *testing.T) {
	client := newTestGitLabClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"iid": 7, "state": "closed"})
	}))

	issue, err := client.GetIssue(context.Background(), "42", 7)
	if err != nil {
		t.Fatalf("GetIssue() error: %v", err)
	}
	if issue.State != types.StateClosed {
		t.Errorf("state = %s, want closed", issue.State)
	}
}

func TestGitLabEditIssue(t *testing.T) {
	var gotQuery string
	client := newTestGitLabClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		gotQuery = r.URL.RawQuery
		w.WriteHeader(http.StatusOK)
	}))

	err := client.EditIssue(context.Background(), "42", 7, types.Label{Name: "Priority::Must Have"})
	if err != nil {
		t.Fatalf("EditIssue() error: %v", err)
	}
	if gotQuery != "add_labels=Priority%3A%3AMust+Have" {
		t.Errorf("query = %q", gotQuery)
	}
}

func TestGitLabGetComments(t *testing.T) {
	client := newTestGitLabClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/42/issues/7/notes" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[
			{"id": 1, "body": "first", "author": {"name": "Alice"}, "created_at": "2024-01-01T10:00:00Z"},
			{"id": 2, "body": "second", "author": {"name": "Issue Bot"}, "created_at": "2024-01-02T10:00:00Z"}
		]`))
	}))

	comments, err := client.GetComments(context.Background(), "42", 7)
	if err != nil {
		t.Fatalf("GetComments() error: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("len(comments) = %d, want 2", len(comments))
	}
	if comments[1].Author.Name != "Issue Bot" || comments[1].ID != 2 {
		t.Errorf("unexpected comment: %+v", comments[1])
	}
	if comments[0].CreatedAt.After(comments[1].CreatedAt) {
		t.Error("expected created_at timestamps to parse in order")
	}
}

func TestGitLabCreateAndEditComment(t *testing.T) {
	type call struct {
		method string
		path   string
		body   map[string]string
	}
	var calls []call
	client := newTestGitLabClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		calls = append(calls, call{method: r.Method, path: r.URL.Path, body: body})
		w.WriteHeader(http.StatusCreated)
	}))

	ctx := context.Background()
	if err := client.CreateComment(ctx, "42", 7, "hello"); err != nil {
		t.Fatalf("CreateComment() error: %v", err)
	}
	if err := client.EditComment(ctx, "42", 7, 99, "updated"); err != nil {
		t.Fatalf("EditComment() error: %v", err)
	}

	if len(calls) != 2 {
		t.Fatalf("len(calls) = %d, want 2", len(calls))
	}
	if calls[0].method != http.MethodPost || calls[0].path != "/projects/42/issues/7/notes" || calls[0].body["body"] != "hello" {
		t.Errorf("unexpected create call: %+v", calls[0])
	}
	if calls[1].method != http.MethodPut || calls[1].path != "/projects/42/issues/7/notes/99" || calls[1].body["body"] != "updated" {
		t.Errorf("unexpected edit call: %+v", calls[1])
	}
}

func TestGitLabAPIErrorSurfacesStatus(t *testing.T) {
	client := newTestGitLabClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "404 Not Found"}`, http.StatusNotFound)
	}))

	_, err := client.GetIssue(context.Background(), "42", 7)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestGitLabLabelReference(t *testing.T) {
	client := newGitLabClient("tok", "", nil)
	got := client.LabelReference(types.Label{Name: "Priority::Normal"})
	if got != `~"Priority::Normal"` {
		t.Errorf("LabelReference() = %s", got)
	}
}
