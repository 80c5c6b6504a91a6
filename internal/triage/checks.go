package triage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/steveyegge/issuebot/internal/config"
	"github.com/steveyegge/issuebot/internal/platform"
	"github.com/steveyegge/issuebot/internal/types"
)

// checkIssueType verifies that the issue title carries a valid type prefix.
// Without one, a comment enumerating the valid prefixes is posted and no
// label is touched. With one, the mapped label is added silently; nothing
// happens when the label is already present.
func checkIssueType(ctx context.Context, client platform.Client, issue *types.Issue, cfg *config.Config, log *slog.Logger) error {
	token, ok := ExtractIssueType(issue.Title, cfg.ValidTypes)
	if !ok {
		log.Error("issue must have a valid type prefix", "issue", issue.ID, "title", issue.Title)
		var b strings.Builder
		b.WriteString("The issue title must begin with one of the following prefixes:\n")
		for _, t := range cfg.ValidTypes {
			fmt.Fprintf(&b, "   - %s\n", t)
		}
		return addBotComment(ctx, client, issue, b.String())
	}

	label := cfg.TypeLabels[token]
	if issue.HasLabel(label.Name) {
		return nil
	}
	log.Debug("adding type label", "issue", issue.ID, "type", token, "label", label.Name)
	if err := client.EditIssue(ctx, issue.ProjectID, issue.ID, label); err != nil {
		return fmt.Errorf("adding type label %q: %w", label.Name, err)
	}
	return nil
}

// Action is the outcome of a required-label reconciliation.
type Action struct {
	// Satisfied is true when the issue already carries a category label.
	Satisfied bool

	// Comment explains the requirement when unsatisfied.
	Comment string

	// AddLabel is the default label to apply when unsatisfied.
	AddLabel types.Label
}

// CheckRequiredLabel decides whether an issue satisfies a category of
// mutually exclusive labels. Only category membership matters: labels outside
// the category never satisfy it. The returned comment lists the category in
// configured order using the platform's label reference syntax. Pure
// function, no I/O.
func CheckRequiredLabel(issue *types.Issue, category []types.Label, defaultLabel types.Label, ref func(types.Label) string) Action {
	for _, l := range category {
		if issue.HasLabel(l.Name) {
			return Action{Satisfied: true}
		}
	}

	var b strings.Builder
	b.WriteString("The issue must have one of the following labels:\n")
	for _, l := range category {
		fmt.Fprintf(&b, "- %s\n", ref(l))
	}
	fmt.Fprintf(&b, "\n\nI am assigning the default label %s. Please replace with the correct label if needed.",
		ref(defaultLabel))

	return Action{Comment: b.String(), AddLabel: defaultLabel}
}

// checkRequiredLabel applies a CheckRequiredLabel decision: post the
// explanatory comment, then add the default label.
func checkRequiredLabel(ctx context.Context, client platform.Client, issue *types.Issue, category []types.Label, defaultLabel types.Label, log *slog.Logger) error {
	action := CheckRequiredLabel(issue, category, defaultLabel, client.LabelReference)
	if action.Satisfied {
		return nil
	}

	log.Warn("issue is missing a required label, assigning default",
		"issue", issue.ID, "default", action.AddLabel.Name)

	if err := addBotComment(ctx, client, issue, action.Comment); err != nil {
		return err
	}
	if err := client.EditIssue(ctx, issue.ProjectID, issue.ID, action.AddLabel); err != nil {
		return fmt.Errorf("adding default label %q: %w", action.AddLabel.Name, err)
	}
	return nil
}
