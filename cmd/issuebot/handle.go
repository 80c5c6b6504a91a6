package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/steveyegge/issuebot/internal/audit"
	"github.com/steveyegge/issuebot/internal/triage"
)

var payloadFile string

var handleCmd = &cobra.Command{
	Use:   "handle",
	Short: "Process one webhook event payload",
	Long: `Read a webhook event payload and run the triage checks against the issue
it refers to. The payload comes from --payload-file ("-" for stdin) or the
ISSUEBOT_PAYLOAD environment variable.

Irrelevant events (pushes, merge request notes, events raised by the bot
itself) are skipped without error.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		client, err := newClient()
		if err != nil {
			return err
		}

		raw, err := readPayload()
		if err != nil {
			return err
		}

		result, err := triage.Handle(ctx, client, raw, triage.Options{
			ConfigPath: viper.GetString("config"),
			Silent:     viper.GetBool("silent"),
			Verbose:    viper.GetBool("verbose"),
		})

		// The trail records failures too; losing a record never fails the run.
		if dbPath := viper.GetString("audit-db"); dbPath != "" {
			recordInvocation(ctx, dbPath, client.Name(), result, err)
		}

		if err != nil {
			return err
		}

		if !viper.GetBool("silent") {
			printResult(result)
		}
		return nil
	},
}

func init() {
	handleCmd.Flags().StringVar(&payloadFile, "payload-file", "", `payload file path ("-" for stdin)`)
	rootCmd.AddCommand(handleCmd)
}

func readPayload() ([]byte, error) {
	switch {
	case payloadFile == "-":
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload from stdin: %w", err)
		}
		return raw, nil
	case payloadFile != "":
		raw, err := os.ReadFile(payloadFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload file: %w", err)
		}
		return raw, nil
	default:
		return []byte(os.Getenv("ISSUEBOT_PAYLOAD")), nil
	}
}

func recordInvocation(ctx context.Context, dbPath, platformName string, result triage.Result, runErr error) {
	store, err := audit.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to open audit trail: %v\n", err)
		return
	}
	defer store.Close()

	inv := &audit.Invocation{
		Platform:  platformName,
		ProjectID: result.ProjectID,
		IssueID:   result.IssueID,
		Outcome:   string(result.Outcome),
		Success:   result.Success,
	}
	if runErr != nil {
		inv.Error = runErr.Error()
	}
	if err := store.Record(ctx, inv); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record invocation: %v\n", err)
	}
}

func printResult(result triage.Result) {
	green := color.New(color.FgGreen).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	if result.Success {
		fmt.Printf("%s issue %d in project %s triaged at %s\n",
			green("✓"), result.IssueID, result.ProjectID,
			result.Timestamp.Format("2006-01-02 15:04:05"))
		return
	}
	fmt.Printf("%s nothing to do (%s)\n", gray("○"), result.Outcome)
}
