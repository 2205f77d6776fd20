package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TrendBot/internal/chart"
	"TrendBot/internal/model"
	"TrendBot/internal/scheduler"
	"TrendBot/internal/server"
	"TrendBot/internal/trace"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "configs/config.yaml"

// newRootCmd creates the root command
func newRootCmd() *cobra.Command {
	var cfgPath string

	rootCmd := &cobra.Command{
		Use:   "trendbot",
		Short: "TrendBot - moving-average trend reports for Slack",
		Long: `TrendBot answers a Slack slash command with a stock's short, medium and long term
moving-average trends and uploads a one-year price chart to the channel.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Configuration file path (default $CONFIG_PATH or "+defaultConfigPath+")")

	resolve := func() string {
		if cfgPath != "" {
			return cfgPath
		}
		if v := os.Getenv("CONFIG_PATH"); v != "" {
			return v
		}
		return defaultConfigPath
	}

	rootCmd.AddCommand(newServeCmd(resolve))
	rootCmd.AddCommand(newReportCmd(resolve))
	rootCmd.AddCommand(newChartCmd(resolve))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// newServeCmd creates the serve command
func newServeCmd(cfgPath func() string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the slash-command endpoint and the optional schedule",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cfgPath())
			if err != nil {
				return err
			}
			return runServe(a)
		},
	}
}

func runServe(a *app) error {
	if err := a.cfg.ValidateDelivery(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	defer a.log.Sync()
	a.log.Infow("TrendBot starting", "version", version)

	// Context for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := trace.Setup(ctx, a.cfg.Tracing.Enabled, version)
	if err != nil {
		return fmt.Errorf("init tracing: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(flushCtx); err != nil {
			a.log.Warnw("flush traces", "error", err)
		}
	}()

	if a.cfg.Schedule.Cron != "" {
		req := model.Request{Ticker: a.cfg.Schedule.Ticker, User: a.cfg.Schedule.User, Channel: a.cfg.Schedule.Channel}
		sched := scheduler.NewScheduler(ctx, a.reporter, req, a.log)
		if err := sched.Register(a.cfg.Schedule.Cron); err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()

		if a.cfg.Schedule.RunOnStart {
			a.log.Info("run_on_start enabled, executing scheduled report now")
			sched.Trigger()
		}
	}

	h := server.NewHandler(a.reporter, a.cfg.Slack.SigningSecret, a.cfg.Server.RequestTimeout, a.log)
	srv := server.New(a.cfg.Server.Addr, a.cfg.Server.Path, h, a.log)
	errCh := srv.Start()

	a.log.Infow("TrendBot is running. Press Ctrl+C to stop.", "path", a.cfg.Server.Path)

	var serveErr error
	select {
	case <-ctx.Done():
		a.log.Info("shutdown signal received, stopping...")
	case err, ok := <-errCh:
		if ok {
			serveErr = fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.RequestTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		a.log.Warnw("http shutdown", "error", err)
	}
	a.log.Info("TrendBot stopped")
	return serveErr
}

// newReportCmd creates the report command
func newReportCmd(cfgPath func() string) *cobra.Command {
	var user, channel string
	var deliver bool

	cmd := &cobra.Command{
		Use:   "report TICKER",
		Short: "Compute the trend report for a ticker",
		Long: `Compute the moving-average trend report for a ticker and print it.
With --deliver the message and chart are posted to Slack exactly as the slash command does.
Example: trendbot report AAPL --deliver --channel C0123456`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cfgPath())
			if err != nil {
				return err
			}
			defer a.log.Sync()

			req := model.Request{Ticker: args[0], User: user, Channel: channel}
			ctx := cmd.Context()

			if !deliver {
				report, message, err := a.reporter.Prepare(ctx, req)
				if err != nil {
					printFailure(cmd.ErrOrStderr(), req.Ticker, err)
					return err
				}
				printReport(cmd.OutOrStdout(), report, message)
				return nil
			}

			if err := a.cfg.ValidateDelivery(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}
			if req.Channel == "" {
				return errors.New("--channel is required with --deliver")
			}
			res, err := a.reporter.Run(ctx, req)
			if err != nil {
				a.reporter.Fail(ctx, req, err)
				printFailure(cmd.ErrOrStderr(), req.Ticker, err)
				return err
			}
			printReport(cmd.OutOrStdout(), res.Report, res.Message)
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("delivered to "+req.Channel+" (request "+res.RequestID+")"))
			return nil
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "User to mention in the message")
	cmd.Flags().StringVar(&channel, "channel", "", "Slack channel id for the chart upload")
	cmd.Flags().BoolVar(&deliver, "deliver", false, "Post the message and chart to Slack")

	return cmd
}

// newChartCmd creates the chart command
func newChartCmd(cfgPath func() string) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "chart TICKER",
		Short: "Render the trend chart for a ticker to a PNG file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cfgPath())
			if err != nil {
				return err
			}
			defer a.log.Sync()

			report, err := a.collector.Analyze(cmd.Context(), args[0])
			if err != nil {
				printFailure(cmd.ErrOrStderr(), args[0], err)
				return err
			}
			if out == "" {
				out = report.Symbol + "_Graph.png"
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := chart.Render(f, report, chartOptions(a.cfg)); err != nil {
				f.Close()
				os.Remove(out)
				return fmt.Errorf("render chart: %w", err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("chart written to "+out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default SYMBOL_Graph.png)")

	return cmd
}

// newVersionCmd creates the version command
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "TrendBot "+version)
		},
	}
}
