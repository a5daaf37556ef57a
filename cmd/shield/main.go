package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"legalshield/cmd/shield/chat"
	"legalshield/internal/api"
	"legalshield/internal/config"
	"legalshield/internal/logging"
	"legalshield/internal/prefs"
	"legalshield/internal/session"
)

var (
	// Global flags
	verbose    bool
	backendURL string
	workspace  string
	timeout    time.Duration
	userName   string

	// Logger for one-shot commands; the interactive UI logs to files instead.
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "shield",
	Short: "AI Legal Shield - contract risk analysis from your terminal",
	Long: `AI Legal Shield analyzes contracts for risky clauses and lets you
chat with an AI assistant about the results.

Upload a contract, get a structured risk report (overall score, flagged
clauses, negotiation points), then ask follow-up questions in context.
Saved conversations can be reopened or deleted at any time.

Run without arguments to start the interactive interface.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip logger init for interactive mode (it has its own UI)
		if cmd.Use == "shield" && cmd.CalledAs() == "shield" {
			return nil
		}

		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractiveChat()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&backendURL, "backend", "", "Analysis backend URL (default: config or "+api.DefaultBaseURL+")")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "Request timeout (default: config)")
	rootCmd.PersistentFlags().StringVar(&userName, "name", "", "Display name sent with uploads")

	analyzeCmd.Flags().StringVar(&contractType, "type", "", "Contract type: general, lease, employment, nda")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "Print the history list as JSON")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(healthCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// resolveWorkspace returns the workspace directory, defaulting to the
// current directory.
func resolveWorkspace() string {
	if workspace != "" {
		return workspace
	}
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// loadConfig loads the workspace config and applies flag overrides. A user id
// is minted and persisted on first run so the backend can tie sessions to it.
func loadConfig(ws string) (*config.Config, error) {
	cfg, err := config.Load(ws)
	if err != nil {
		return nil, err
	}
	if backendURL != "" {
		cfg.BackendURL = backendURL
	}
	if timeout > 0 {
		cfg.TimeoutSeconds = int(timeout.Seconds())
	}
	if userName != "" {
		cfg.UserName = userName
	}
	if cfg.UserName == "" {
		cfg.UserName = "Guest"
	}
	if cfg.UserID == "" {
		cfg.UserID = "user_" + uuid.NewString()[:8]
		if err := cfg.Save(ws); err != nil {
			return nil, fmt.Errorf("failed to persist user id: %w", err)
		}
	}
	return cfg, nil
}

// runInteractiveChat starts the interactive interface.
func runInteractiveChat() error {
	ws := resolveWorkspace()
	cfg, err := loadConfig(ws)
	if err != nil {
		return err
	}

	if err := logging.Initialize(ws, cfg.DebugMode || verbose); err != nil {
		fmt.Fprintf(os.Stderr, "warning: file logging disabled: %v\n", err)
	}
	defer logging.Close()

	pm := prefs.NewManager(ws)
	if err := pm.Load(); err != nil {
		logging.Get(logging.CategoryBoot).Warn("preferences unreadable, using defaults: %v", err)
	}

	client := api.NewClient(cfg.BackendURL, api.WithTimeout(cfg.Timeout()))
	controller := session.New(client, cfg.UserID, cfg.UserName)

	p := tea.NewProgram(
		chat.New(controller, client, cfg, pm),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	// Live-reload config edits into the running UI.
	watcher, werr := config.Watch(ws, chat.ReloadConfig(p))
	if werr != nil {
		logging.Get(logging.CategoryBoot).Warn("config watcher unavailable: %v", werr)
	} else {
		defer watcher.Close()
	}

	_, err = p.Run()

	pm.Update(func(pr *prefs.Preferences) {
		pr.LastUserName = cfg.UserName
	})
	if serr := pm.Save(); serr != nil {
		logging.Get(logging.CategoryBoot).Warn("failed to save preferences: %v", serr)
	}
	return err
}
