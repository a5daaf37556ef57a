package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"legalshield/internal/api"
	"legalshield/internal/risk"
	"legalshield/internal/session"
)

var (
	contractType string
	historyJSON  bool
)

// analyzeCmd runs one upload/analyze round trip and prints the report.
var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a contract file and print the risk report",
	Long: `Uploads a contract to the analysis backend and prints the structured
risk report: overall score, flagged clauses, and negotiation points.

Example:
  shield analyze lease.pdf --type lease`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

// historyCmd lists saved chat sessions.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved chat sessions",
	RunE:  runHistory,
}

// healthCmd probes the backend.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check backend connectivity",
	RunE:  runHealth,
}

// newCommandContext wraps a context with SIGINT/SIGTERM cancellation.
func newCommandContext(timeoutCtx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(timeoutCtx)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()
	return ctx, cancel
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ws := resolveWorkspace()
	cfg, err := loadConfig(ws)
	if err != nil {
		return err
	}
	if contractType == "" {
		contractType = cfg.DefaultContractType
	}

	tctx, tcancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer tcancel()
	ctx, cancel := newCommandContext(tctx)
	defer cancel()

	client := api.NewClient(cfg.BackendURL, api.WithTimeout(cfg.Timeout()))
	controller := session.New(client, cfg.UserID, cfg.UserName)

	if err := controller.SelectFile(args[0]); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	controller.SetContractType(contractType)

	logger.Info("analyzing contract",
		zap.String("file", args[0]),
		zap.String("type", controller.ContractType()),
		zap.String("backend", cfg.BackendURL))

	if err := controller.Upload(ctx); err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	printReport(controller.Analysis())
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	ws := resolveWorkspace()
	cfg, err := loadConfig(ws)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()

	client := api.NewClient(cfg.BackendURL, api.WithTimeout(cfg.Timeout()))
	items, err := client.ChatHistory(ctx, cfg.UserID)
	if err != nil {
		return fmt.Errorf("failed to fetch chat history: %w", err)
	}

	if historyJSON {
		return json.NewEncoder(os.Stdout).Encode(items)
	}
	if len(items) == 0 {
		fmt.Println("No saved chats.")
		return nil
	}
	for _, it := range items {
		name := it.ContractFilename
		if name == "" {
			name = "Untitled contract"
		}
		fmt.Printf("%-14s %-32s %-12s %3d messages  last %s\n",
			it.ChatID, name, it.ContractType, it.MessageCount, it.LastMessageAt)
	}
	return nil
}

// runHealth probes /health and the history endpoint concurrently; a backend
// that answers one but not the other is worth knowing about.
func runHealth(cmd *cobra.Command, args []string) error {
	ws := resolveWorkspace()
	cfg, err := loadConfig(ws)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout())
	defer cancel()

	client := api.NewClient(cfg.BackendURL, api.WithTimeout(cfg.Timeout()))

	var status *api.HealthStatus
	var sessions int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var herr error
		status, herr = client.Health(gctx)
		return herr
	})
	g.Go(func() error {
		items, herr := client.ChatHistory(gctx, cfg.UserID)
		if herr != nil {
			return herr
		}
		sessions = len(items)
		return nil
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("backend at %s is unhealthy: %w", cfg.BackendURL, err)
	}

	fmt.Printf("Backend:  %s\n", cfg.BackendURL)
	fmt.Printf("Status:   %s\n", status.Status)
	if status.Service != "" {
		fmt.Printf("Service:  %s\n", status.Service)
	}
	fmt.Printf("Sessions: %d saved chats for %s\n", sessions, cfg.UserID)
	return nil
}

// printReport writes the plain-text risk report to stdout.
func printReport(a *api.AnalysisResult) {
	if a == nil {
		fmt.Println("No analysis returned.")
		return
	}

	band := risk.ScoreBand(a.OverallRiskScore)
	fmt.Printf("Overall risk: %.0f/10 (%s)\n", a.OverallRiskScore, band)
	if a.Summary != "" {
		fmt.Printf("\nSummary\n%s\n", a.Summary)
	}

	fmt.Printf("\nRisky clauses (%d)\n", len(a.RiskyClauses))
	for i, clause := range a.RiskyClauses {
		level := risk.ParseLevel(clause.RiskLevel)
		fmt.Printf("%d. [%s] %s\n", i+1, level.Badge(), clause.ClauseText)
		if clause.Explanation != "" {
			fmt.Printf("   Why: %s\n", clause.Explanation)
		}
		if clause.Suggestion != "" {
			fmt.Printf("   Suggestion: %s\n", clause.Suggestion)
		}
	}

	fmt.Printf("\nNegotiation points (%d)\n", len(a.NegotiationPoints))
	for _, point := range a.NegotiationPoints {
		fmt.Printf("  - %s\n", point)
	}
}
