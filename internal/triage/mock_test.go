package triage

import (
	"context"
	"fmt"
	"time"

	"github.com/steveyegge/issuebot/internal/events"
	"github.com/steveyegge/issuebot/internal/platform"
	"github.com/steveyegge/issuebot/internal/types"
)

// fakeClient implements platform.Client for testing. Label and comment edits
// mutate the fake's state so tests can run the handler twice against the same
// "issue" and observe idempotence.
type fakeClient struct {
	event    *events.Event
	issue    *types.Issue
	issueErr error
	comments []types.Comment
	labels   []types.Label

	nextCommentID int

	getIssueCalls    int
	getCommentsCalls int
	editIssueCalls   []string
	createdComments  []string
	editedComments   []string
}

var _ platform.Client = (*fakeClient)(nil)

func (f *fakeClient) Name() string { return "fake" }

func (f *fakeClient) ParseIssueEvent(raw []byte) (*events.Event, bool) {
	if f.event == nil {
		return nil, false
	}
	return f.event, true
}

func (f *fakeClient) GetIssue(ctx context.Context, projectID string, issueID int) (*types.Issue, error) {
	f.getIssueCalls++
	if f.issueErr != nil {
		return nil, f.issueErr
	}
	if f.issue == nil {
		return nil, fmt.Errorf("issue %d not found", issueID)
	}
	// Return a copy so the handler never mutates fake state directly.
	copied := *f.issue
	copied.Labels = append([]types.Label(nil), f.issue.Labels...)
	return &copied, nil
}

func (f *fakeClient) EditIssue(ctx context.Context, projectID string, issueID int, addLabel types.Label) error {
	f.editIssueCalls = append(f.editIssueCalls, addLabel.Name)
	if !f.issue.HasLabel(addLabel.Name) {
		f.issue.Labels = append(f.issue.Labels, addLabel)
	}
	return nil
}

func (f *fakeClient) GetLabels(ctx context.Context, projectID string) ([]types.Label, error) {
	return f.labels, nil
}

func (f *fakeClient) GetComments(ctx context.Context, projectID string, issueID int) ([]types.Comment, error) {
	f.getCommentsCalls++
	return append([]types.Comment(nil), f.comments...), nil
}

func (f *fakeClient) CreateComment(ctx context.Context, projectID string, issueID int, body string) error {
	f.createdComments = append(f.createdComments, body)
	f.nextCommentID++
	f.comments = append(f.comments, types.Comment{
		ID:        f.nextCommentID,
		Body:      body,
		Author:    types.Author{Name: BotName},
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(f.nextCommentID) * time.Minute),
	})
	return nil
}

func (f *fakeClient) EditComment(ctx context.Context, projectID string, issueID int, commentID int, body string) error {
	f.editedComments = append(f.editedComments, body)
	for i := range f.comments {
		if f.comments[i].ID == commentID {
			f.comments[i].Body = body
			return nil
		}
	}
	return fmt.Errorf("comment %d not found", commentID)
}

func (f *fakeClient) LabelReference(l types.Label) string {
	return fmt.Sprintf("~%q", l.Name)
}
