// Package triage implements the issue triage pipeline: normalize the webhook
// event, guard against bot loops, classify the issue by its title prefix,
// reconcile required labels, and explain unmet requirements in a single
// threaded bot comment.
//
// One invocation processes exactly one issue, strictly in sequence. Every
// check is idempotent, so re-running after a partial failure never double-adds
// a label; a persisting failure condition appends another rule-delimited block
// to the bot comment instead of creating a new one.
package triage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/steveyegge/issuebot/internal/config"
	"github.com/steveyegge/issuebot/internal/logging"
	"github.com/steveyegge/issuebot/internal/platform"
	"github.com/steveyegge/issuebot/internal/types"
)

// BotName is the display name the bot is expected to have in projects,
// assuming users followed the setup steps. It drives both the comment
// deduplication and the anti-loop guard.
const BotName = "Issue Bot"

// Options controls a single handler invocation.
type Options struct {
	// ConfigPath locates the triage policy file. Empty means config.DefaultPath.
	ConfigPath string

	// Silent suppresses warning and error output. Mutually exclusive with Verbose.
	Silent bool

	// Verbose additionally enables informational output.
	Verbose bool

	// Logger overrides the logger built from Silent/Verbose. Mainly for tests.
	Logger *slog.Logger
}

func (o Options) configPath() string {
	if o.ConfigPath == "" {
		return config.DefaultPath
	}
	return o.ConfigPath
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logging.New(os.Stderr, logging.Options{Silent: o.Silent, Verbose: o.Verbose})
}

// Outcome classifies how an invocation terminated.
type Outcome string

const (
	// OutcomeDone means both configured checks ran to completion.
	OutcomeDone Outcome = "done"
	// OutcomeNoEvent means no event payload was passed at all.
	OutcomeNoEvent Outcome = "no_event"
	// OutcomeIgnoredEvent means the payload was not an issue or issue-comment event.
	OutcomeIgnoredEvent Outcome = "ignored_event"
	// OutcomeBotLoop means the event was triggered by another issue bot.
	OutcomeBotLoop Outcome = "bot_loop"
	// OutcomeClosedIssue means the issue is closed and was left alone.
	OutcomeClosedIssue Outcome = "closed_issue"
	// OutcomeConfigError means the triage policy could not be loaded.
	OutcomeConfigError Outcome = "config_error"
	// OutcomeAPIError means a platform API call failed mid-flight.
	OutcomeAPIError Outcome = "api_error"
)

// Result is what an invocation reports back to the caller.
type Result struct {
	// Success is true only for OutcomeDone.
	Success bool

	// Outcome says how the invocation terminated.
	Outcome Outcome

	// Timestamp is the completion time, set on success only.
	Timestamp time.Time

	// ProjectID and IssueID identify what was processed, when the event was
	// relevant enough to be normalized.
	ProjectID string
	IssueID   int
}

// Handle processes one webhook invocation against one issue.
//
// Irrelevant events, bot-triggered events, and closed issues return an
// unsuccessful Result with a nil error: the event simply was not for us.
// Config-load failures and platform API failures return an error; there are
// no retries here, the platform's webhook redelivery is the only recovery
// path.
func Handle(ctx context.Context, client platform.Client, raw []byte, opts Options) (Result, error) {
	log := opts.logger()

	if len(raw) == 0 {
		log.Error("no event payload was passed")
		return Result{Outcome: OutcomeNoEvent}, nil
	}

	ev, ok := client.ParseIssueEvent(raw)
	if !ok {
		log.Warn("ignoring event, it is irrelevant")
		return Result{Outcome: OutcomeIgnoredEvent}, nil
	}

	// Prevent a loop of bots triggering more bots.
	if strings.Contains(ev.Actor.Name, BotName) {
		log.Warn("handler triggered by another issue bot, exiting early", "actor", ev.Actor.Name)
		return Result{Outcome: OutcomeBotLoop, ProjectID: ev.ProjectID, IssueID: ev.IssueID}, nil
	}

	log.Debug("handling event",
		"kind", ev.Kind, "project", ev.ProjectID, "issue", ev.IssueID, "actor", ev.Actor.Name)

	result := Result{ProjectID: ev.ProjectID, IssueID: ev.IssueID}

	issue, err := client.GetIssue(ctx, ev.ProjectID, ev.IssueID)
	if err != nil {
		result.Outcome = OutcomeAPIError
		return result, fmt.Errorf("fetching issue %d in project %s: %w", ev.IssueID, ev.ProjectID, err)
	}

	// Do not do anything to closed issues.
	if issue.State == types.StateClosed {
		log.Warn("leaving early, this issue is closed", "issue", issue.ID)
		result.Outcome = OutcomeClosedIssue
		return result, nil
	}

	cfg, err := config.Load(opts.configPath())
	if err != nil {
		log.Error("could not load triage policy", "error", err)
		result.Outcome = OutcomeConfigError
		return result, err
	}

	// Both checks run when configured; an unmet requirement in one never
	// skips the other.
	if cfg.HasTypeCheck() {
		if err := checkIssueType(ctx, client, issue, cfg, log); err != nil {
			result.Outcome = OutcomeAPIError
			return result, err
		}
	}
	if cfg.HasPriorityCheck() {
		if err := checkRequiredLabel(ctx, client, issue, cfg.PriorityLabels, cfg.DefaultPriorityLabel, log); err != nil {
			result.Outcome = OutcomeAPIError
			return result, err
		}
	}

	result.Success = true
	result.Outcome = OutcomeDone
	result.Timestamp = time.Now()
	return result, nil
}
