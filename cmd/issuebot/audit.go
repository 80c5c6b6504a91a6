package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/steveyegge/issuebot/internal/audit"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent handler invocations",
	Long:  `List the most recent invocations recorded in the trail database, newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := viper.GetString("audit-db")
		if dbPath == "" {
			return fmt.Errorf("no trail database configured, pass --audit-db or set ISSUEBOT_AUDIT_DB")
		}

		store, err := audit.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		invocations, err := store.Recent(context.Background(), auditLimit)
		if err != nil {
			return err
		}

		gray := color.New(color.FgHiBlack).SprintFunc()
		if len(invocations) == 0 {
			fmt.Printf("%s\n", gray("No invocations recorded"))
			return nil
		}

		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()

		for _, inv := range invocations {
			marker := green("✓")
			if !inv.Success {
				marker = red("✗")
			}
			fmt.Printf("%s %s %s %s issue %d (%s)\n",
				marker,
				inv.Timestamp.Format("2006-01-02 15:04:05"),
				inv.Platform,
				inv.ProjectID,
				inv.IssueID,
				inv.Outcome)
			if inv.Error != "" {
				fmt.Printf("    %s\n", gray(inv.Error))
			}
		}
		return nil
	},
}

func init() {
	auditCmd.Flags().IntVar(&auditLimit, "limit", 20, "maximum number of invocations to show")
	rootCmd.AddCommand(auditCmd)
}
