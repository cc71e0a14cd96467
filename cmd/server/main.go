package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"portfolio.dev/portfolio-api/internal/api"
	"portfolio.dev/portfolio-api/internal/auth"
	"portfolio.dev/portfolio-api/internal/config"
	"portfolio.dev/portfolio-api/internal/core"
	"portfolio.dev/portfolio-api/internal/store"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Portfolio content and chat API",
	Long: `Serves the portfolio admin content API, the visitor chat assistant and
conversation logging. Running without a subcommand starts the server.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
	RunE:              runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(syncGitHubCmd)
	rootCmd.AddCommand(cleanupCmd)
}

func loadConfig(cmd *cobra.Command, args []string) error {
	if err := config.LoadConfig(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	config.SetupLogging(config.AppConfig)
	return nil
}

// stores holds the file and blob backed stores shared by every command.
type stores struct {
	blob          store.BlobStore
	content       *store.ContentStore
	settings      *store.SettingsStore
	conversations *store.ConversationStore
}

func openStores(c config.Config) (*stores, error) {
	blob, err := openBlobStore(c)
	if err != nil {
		return nil, err
	}
	content := store.NewContentStore(c.ContentDir, blob)
	return &stores{
		blob:          blob,
		content:       content,
		settings:      store.NewSettingsStore(content),
		conversations: store.NewConversationStore(filepath.Join(c.ContentDir, "conversations")),
	}, nil
}

func (s *stores) Close() {
	if s.blob == nil {
		return
	}
	if err := s.blob.Close(); err != nil {
		logrus.Errorf("Error closing blob store: %v", err)
	}
}

// openBlobStore picks the remote content tier. Without one, content is
// read from and written to CONTENT_DIR only.
func openBlobStore(c config.Config) (store.BlobStore, error) {
	switch {
	case c.BlobDatabaseURL != "":
		sqliteStore, err := store.NewSQLiteBlobStore(c.BlobDatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize blob database: %w", err)
		}
		logrus.Infof("Using SQLite blob store at %s", c.BlobDatabaseURL)
		return sqliteStore, nil
	case c.BlobBaseURL != "":
		logrus.Infof("Using HTTP blob store at %s", c.BlobBaseURL)
		return store.NewHTTPBlobStore(c.BlobBaseURL, c.BlobToken), nil
	default:
		return nil, nil
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.AppConfig
	if cfg.LogLevel == "DEBUG" {
		logrus.Debug("Service starting in DEBUG mode")
	}
	if cfg.AdminPassword == "" {
		logrus.Warn("ADMIN_PASSWORD is not set; every admin request will be rejected")
	}

	st, err := openStores(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	// Initialize LLM service
	llmService, err := core.NewLLMService(cmd.Context(), cfg.GeminiAPIKey, cfg.ChatModel)
	if err != nil {
		return err
	}
	defer llmService.Close()

	var mailer core.Mailer
	if cfg.SMTPConfigured() {
		mailer = core.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.TranscriptRecipient)
	} else {
		logrus.Info("SMTP not configured; transcripts will not be emailed")
	}

	sweeper := core.NewSweeper(st.conversations, cfg.ConversationMaxAgeDays)

	apiHandler := api.NewAPIHandler(api.Services{
		Gate:              auth.NewGate(cfg.AdminPassword, cfg.IsProduction()),
		Content:           st.content,
		Settings:          st.settings,
		Conversations:     st.conversations,
		Uploads:           store.NewUploadStore(cfg.UploadsDir),
		Chat:              core.NewChatService(st.content, st.settings, llmService),
		GitHub:            core.NewGitHubService(cfg.GitHubGraphQLURL),
		Transcripts:       core.NewTranscriptService(st.conversations, mailer),
		Sweeper:           sweeper,
		ChatRateLimit:     cfg.ChatRateLimit,
		CleanupMaxAgeDays: cfg.ConversationMaxAgeDays,
	})
	router := api.NewRouter(apiHandler)

	serverAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // chat answers are streamed
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logrus.Infof("Starting server on %s. Press Ctrl+C to quit.", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- fmt.Errorf("could not listen on %s: %w", serverAddr, err)
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}
	logrus.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	sweeper.Wait()

	logrus.Info("Server exiting gracefully")
	return nil
}
