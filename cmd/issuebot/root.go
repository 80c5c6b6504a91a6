package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/steveyegge/issuebot/internal/config"
	"github.com/steveyegge/issuebot/internal/platform"
)

var rootCmd = &cobra.Command{
	Use:   "issuebot",
	Short: "Automated issue triage for GitLab and GitHub projects",
	Long: `issuebot reacts to issue webhook events: it classifies issues by their
title prefix, applies the mapped type label, ensures a priority label is set,
and explains unmet requirements in a single bot comment per issue.

Configuration flags can also be supplied through the environment with an
ISSUEBOT_ prefix, e.g. ISSUEBOT_TOKEN or ISSUEBOT_PLATFORM.`,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetBool("silent") && viper.GetBool("verbose") {
			return fmt.Errorf("--silent and --verbose are mutually exclusive")
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("platform", string(platform.TypeGitLab), "issue platform (gitlab or github)")
	rootCmd.PersistentFlags().String("token", "", "API token for the platform")
	rootCmd.PersistentFlags().String("base-url", "", "API base URL override (self-hosted instances)")
	rootCmd.PersistentFlags().String("config", config.DefaultPath, "path to the label policy file")
	rootCmd.PersistentFlags().String("audit-db", "", "path to the invocation trail database (disabled when empty)")
	rootCmd.PersistentFlags().Bool("silent", false, "suppress warning and error output")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable informational output")

	viper.SetEnvPrefix("issuebot")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		panic(err)
	}
}

// newClient builds the platform client from flags and environment.
func newClient() (platform.Client, error) {
	return platform.New(platform.Config{
		Type:    platform.Type(viper.GetString("platform")),
		Token:   viper.GetString("token"),
		BaseURL: viper.GetString("base-url"),
	})
}
