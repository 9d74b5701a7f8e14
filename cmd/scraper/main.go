package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/skoom21/zocdoc-scraper/internal/browser"
	"github.com/skoom21/zocdoc-scraper/internal/config"
	"github.com/skoom21/zocdoc-scraper/internal/httpserver"
	"github.com/skoom21/zocdoc-scraper/internal/logger"
	"github.com/skoom21/zocdoc-scraper/internal/runner"
	"github.com/skoom21/zocdoc-scraper/internal/scraper"
	"github.com/skoom21/zocdoc-scraper/pkg/models"
)

var configFile string

func main() {
	root := &cobra.Command{
		Use:   "scraper",
		Short: "ZocDoc appointment availability scraper",
		Long:  "Extracts appointment availability for configured providers and exports raw and cleaned CSV views.",
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "path to YAML config file")
	root.AddCommand(runCmd(), serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading configuration: %w", err)
	}
	log, err := logger.NewWithFiles(cfg.Log.Level, cfg.Log.Dir, cfg.Log.Pretty)
	if err != nil {
		return nil, nil, fmt.Errorf("setting up logging: %w", err)
	}
	return cfg, log, nil
}

func newRunFunc(cfg *config.Config, log logger.Logger) runner.RunFunc {
	return func() (models.RunResult, []models.Appointment) {
		s := scraper.New(cfg, log, browser.NewLauncher(log))
		result := s.Run()
		return result, s.Appointments()
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute a single scrape and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			result, _ := newRunFunc(cfg, log)()
			if !result.Success {
				log.Errorf("Scraping failed: %s", result.Error)
				os.Exit(1)
			}
			log.Info("Scraping completed successfully")
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP trigger server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			sup := runner.New(log)
			srv := httpserver.New(cfg.Server.ListenAddr, log, sup, newRunFunc(cfg, log))

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				log.Warnf("Received signal %v, shutting down...", sig)
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Stop(ctx)
			}
		},
	}
}
