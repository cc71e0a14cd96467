package main

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"portfolio.dev/portfolio-api/internal/config"
	"portfolio.dev/portfolio-api/internal/core"
)

// syncGitHubCmd runs before a site build. It never fails the build: every
// problem is logged and the command exits 0.
var syncGitHubCmd = &cobra.Command{
	Use:   "sync-github",
	Short: "Append newly pinned GitHub repositories to the projects list",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logrus.WithField("component", "github-sync")
		cfg := config.AppConfig

		st, err := openStores(cfg)
		if err != nil {
			log.Warnf("%v. Skipping sync.", err)
			return nil
		}
		defer st.Close()

		gh, err := st.settings.GitHub()
		if err != nil {
			log.Warnf("Could not read GitHub settings: %v. Skipping sync.", err)
			return nil
		}
		if gh.Username == "" || gh.Token == "" {
			log.Info("GitHub username or token not configured. Skipping sync.")
			return nil
		}

		log.Infof("Fetching pinned repos for %s...", gh.Username)
		added, err := core.NewGitHubService(cfg.GitHubGraphQLURL).SyncProjects(cmd.Context(), st.content, gh)
		if err != nil {
			log.Warnf("Sync failed: %v. Skipping sync.", err)
			return nil
		}
		if added == 0 {
			log.Info("All pinned repos already exist in projects. Nothing to add.")
			return nil
		}
		log.Infof("Added %d new project(s).", added)
		return nil
	},
}

var cleanupMaxAgeDays int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete conversations older than --max-age-days",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		maxAge := cleanupMaxAgeDays
		if !cmd.Flags().Changed("max-age-days") {
			maxAge = config.AppConfig.ConversationMaxAgeDays
		}

		st, err := openStores(config.AppConfig)
		if err != nil {
			return err
		}
		defer st.Close()

		deleted, err := st.conversations.Cleanup(maxAge)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d conversation(s) older than %d days\n", deleted, maxAge)
		return nil
	},
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupMaxAgeDays, "max-age-days", 30, "delete conversations not updated for this many days")
}
