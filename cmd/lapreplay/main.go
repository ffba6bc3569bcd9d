// Command lapreplay reconstructs lap passes from RFID race logs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	service "github.com/okian/lapreplay/internal/app"
	"github.com/okian/lapreplay/internal/config"
	"github.com/okian/lapreplay/pkg/logger"
	"github.com/okian/lapreplay/pkg/metrics"
	"github.com/spf13/cobra"
)

// cli carries global flags and the loaded configuration to subcommands.
type cli struct {
	configPath string
	logLevel   string
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "lapreplay <command>",
		Short:         "Replay RFID race logs into lap passes",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return c.teardown(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML config file (default $LAPREPLAY_CONFIG)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddGroup(
		&cobra.Group{ID: "replay", Title: "Replay:"},
		&cobra.Group{ID: "logs", Title: "Logs:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)
	cobra.EnableCommandSorting = false

	root.AddCommand(newPassesCmd(c))
	root.AddCommand(newExportCmd(c))
	root.AddCommand(newFilterCmd(c))
	root.AddCommand(newImportCmd(c))
	root.AddCommand(newSimulateCmd(c))
	root.AddCommand(newServeCmd(c))
	return root
}

func (c *cli) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(cmd.Context(), c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	c.cfg = cfg

	// stdout is reserved for command output.
	if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr()), logger.WithFormat(cfg.LogFormat)); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return nil
}

func (c *cli) teardown(ctx context.Context) error {
	if c.cfg == nil || c.cfg.MetricsFile == "" {
		return nil
	}
	if err := metrics.WriteTextfile(c.cfg.MetricsFile); err != nil {
		return err
	}
	logger.Get().Debug(ctx, "metrics written", logger.String("path", c.cfg.MetricsFile))
	return nil
}

// service builds a Service from the loaded configuration.
func (c *cli) service() (*service.Service, error) {
	names, err := c.cfg.Names()
	if err != nil {
		return nil, err
	}
	return service.New(
		service.WithLogger(logger.Get()),
		service.WithReaders(c.cfg.Readers),
		service.WithTeams(c.cfg.Teams),
		service.WithTeamNames(names),
		service.WithExcludedTeams(c.cfg.ExcludedTeams),
		service.WithThreshold(c.cfg.Threshold),
		service.WithStopOnEnd(c.cfg.StopOnEnd),
		service.WithTags(c.cfg.Tags),
		service.WithStandingsReader(c.cfg.StandingsReader),
		service.WithMaxLineBytes(c.cfg.MaxLineBytes),
	), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
