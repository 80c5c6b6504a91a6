package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/steveyegge/issuebot/internal/config"
	"github.com/steveyegge/issuebot/internal/types"
)

var (
	verifyProject string
)

var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Validate the label policy file",
	Long: `Load and validate the label policy file, then print the checks it enables.
With --verify-project, also fetch the project's labels and warn about policy
labels the project does not define.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := viper.GetString("config")
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan("=== Label Policy: "+path+" ==="))

		if cfg.HasTypeCheck() {
			fmt.Printf("%s\n", yellow("Type check:"))
			for _, token := range cfg.ValidTypes {
				fmt.Printf("  %-10s → %s\n", token, cfg.TypeLabels[token].Name)
			}
		} else {
			fmt.Printf("%s %s\n", yellow("Type check:"), gray("not configured"))
		}
		fmt.Println()

		if cfg.HasPriorityCheck() {
			fmt.Printf("%s\n", yellow("Priority check:"))
			for _, l := range cfg.PriorityLabels {
				marker := " "
				if l == cfg.DefaultPriorityLabel {
					marker = "*"
				}
				fmt.Printf("  %s %s\n", marker, l.Name)
			}
			fmt.Printf("  %s\n", gray("(* = default)"))
		} else {
			fmt.Printf("%s %s\n", yellow("Priority check:"), gray("not configured"))
		}
		fmt.Println()

		if verifyProject != "" {
			return verifyProjectLabels(cfg)
		}
		return nil
	},
}

func init() {
	checkConfigCmd.Flags().StringVar(&verifyProject, "verify-project", "", "project to verify policy labels against")
	rootCmd.AddCommand(checkConfigCmd)
}

// verifyProjectLabels cross-checks the policy against the labels the project
// actually defines. Missing labels are warnings, not errors: platforms create
// labels on first use.
func verifyProjectLabels(cfg *config.Config) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	defined, err := client.GetLabels(context.Background(), verifyProject)
	if err != nil {
		return fmt.Errorf("failed to fetch labels for project %s: %w", verifyProject, err)
	}

	known := make(map[string]bool, len(defined))
	for _, l := range defined {
		known[l.Name] = true
	}

	var policy []types.Label
	for _, token := range cfg.ValidTypes {
		policy = append(policy, cfg.TypeLabels[token])
	}
	policy = append(policy, cfg.PriorityLabels...)

	missing := 0
	for _, l := range policy {
		if !known[l.Name] {
			missing++
			fmt.Fprintf(os.Stderr, "Warning: label %q is not defined in project %s\n", l.Name, verifyProject)
		}
	}

	green := color.New(color.FgGreen).SprintFunc()
	if missing == 0 {
		fmt.Printf("%s all %d policy labels exist in project %s\n", green("✓"), len(policy), verifyProject)
	}
	return nil
}
