package triage

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/steveyegge/issuebot/internal/platform"
	"github.com/steveyegge/issuebot/internal/types"
)

// commentDelimiter separates appended blocks inside the bot's single comment.
const commentDelimiter = "\n\n---\n\n"

// addBotComment posts text as the bot, threading into the bot's existing
// comment when there is one. The newest bot comment accumulates a running
// history of every issue encountered, one rule-delimited block per finding,
// instead of spamming the issue with new comments.
//
// This is the only place comments are written.
func addBotComment(ctx context.Context, client platform.Client, issue *types.Issue, text string) error {
	comments, err := client.GetComments(ctx, issue.ProjectID, issue.ID)
	if err != nil {
		return fmt.Errorf("fetching comments for issue %d: %w", issue.ID, err)
	}

	var botComments []types.Comment
	for _, c := range comments {
		if strings.Contains(c.Author.Name, BotName) {
			botComments = append(botComments, c)
		}
	}

	if len(botComments) == 0 {
		if err := client.CreateComment(ctx, issue.ProjectID, issue.ID, text); err != nil {
			return fmt.Errorf("creating comment on issue %d: %w", issue.ID, err)
		}
		return nil
	}

	// Platforms are not guaranteed to return comments in chronological order,
	// so pick the newest by creation time. The sort is stable: comments with
	// equal timestamps keep the platform's order.
	sort.SliceStable(botComments, func(i, j int) bool {
		return botComments[i].CreatedAt.Before(botComments[j].CreatedAt)
	})
	latest := botComments[len(botComments)-1]

	body := latest.Body + commentDelimiter + text
	if err := client.EditComment(ctx, issue.ProjectID, issue.ID, latest.ID, body); err != nil {
		return fmt.Errorf("editing comment %d on issue %d: %w", latest.ID, issue.ID, err)
	}
	return nil
}
