package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/hray3182/diditakeit/internal/api"
	"github.com/hray3182/diditakeit/internal/config"
	"github.com/hray3182/diditakeit/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "diditakeit",
		Short:        "Recurring reminders that nag until you check them off",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigFileName, "Path to the TOML config file")

	loadConfig := func() *config.Config {
		cfg, err := config.Load(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		return cfg
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler, HTTP API, bridge and Telegram bot",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runServe(loadConfig())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "tui",
		Short: "Open the terminal task list with the scheduler running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(loadConfig())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "check",
		Short: "Run one overdue check and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, loadConfig())
		},
	})
	return root
}

func runServe(cfg *config.Config) {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := newApp(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}
	defer a.Close()

	b, err := a.newBot()
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	h := api.NewHandler(a.tasks, a.settings, a.sched)
	h.OnSettingsChange(a.applySettings)
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: api.NewRouter(h),
	}
	go func() {
		log.Printf("HTTP API listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	go a.sched.Start(ctx)

	if br := a.newBridge(); br != nil {
		go br.Run(ctx)
	}

	if b != nil {
		go func() {
			log.Println("Starting bot...")
			if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Bot error: %v", err)
			}
		}()
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shut down HTTP server: %v", err)
	}
}

func runTUI(cfg *config.Config) error {
	f, err := tea.LogToFile("diditakeit.log", "diditakeit")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	screen := tui.NewAlarm()
	a, err := newApp(ctx, cfg, screen)
	if err != nil {
		return err
	}
	defer a.Close()

	go a.sched.Start(ctx)
	if br := a.newBridge(); br != nil {
		go br.Run(ctx)
	}

	err = tui.Run(a.tasks, a.settings, screen)
	cancel()
	return err
}

func runCheck(cmd *cobra.Command, cfg *config.Config) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	report := a.sched.Tick(ctx)
	out := cmd.OutOrStdout()
	if len(report.RolledOver) > 0 {
		fmt.Fprintf(out, "Rolled over %d task(s)\n", len(report.RolledOver))
	}
	if len(report.Overdue) == 0 {
		fmt.Fprintln(out, "Nothing overdue")
		return nil
	}
	fmt.Fprintf(out, "%d overdue task(s):\n", len(report.Overdue))
	for _, t := range report.Overdue {
		fmt.Fprintf(out, "  %s  %s\n", t.DueTime.Format("15:04"), t.Name)
	}
	if report.Dispatched {
		fmt.Fprintln(out, "Sending notification")
	}
	return nil
}
