package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Veraticus/tarifa/internal/common"
	"github.com/Veraticus/tarifa/internal/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	version   = "dev"
	logCloser io.Closer
	rootCmd   = newRootCmd()
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tarifa",
		Short: "🏦 Browse bank fee and rate schedules",
		Long: `tarifa: a terminal client for a remote tarifario dataset.

Filter, sort and page through bank fees and rates, compare records side by
side and export the filtered result as CSV.`,
		PersistentPreRunE:  initConfig,
		PersistentPostRunE: closeLogging,
		SilenceUsage:       true,
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/tarifa/config.yaml)")
	cmd.PersistentFlags().String("api-url", "", "base URL of the tarifario API")
	cmd.PersistentFlags().Duration("timeout", 0, "per-request timeout")
	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	cmd.PersistentFlags().String("log-file", "", "write logs to this file instead of stderr")
	cmd.PersistentFlags().String("metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")

	// Bind flags to viper
	_ = viper.BindPFlag(config.KeyBaseURL, cmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag(config.KeyTimeout, cmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag(config.KeyLogLevel, cmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag(config.KeyLogFormat, cmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag(config.KeyLogFile, cmd.PersistentFlags().Lookup("log-file"))
	_ = viper.BindPFlag(config.KeyMetricsAddr, cmd.PersistentFlags().Lookup("metrics-addr"))

	// Add commands
	cmd.AddCommand(browseCmd())
	cmd.AddCommand(listCmd())
	cmd.AddCommand(exportCmd())
	cmd.AddCommand(statsCmd())
	cmd.AddCommand(compareCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel() // Always cleanup

	if err != nil {
		var userErr *common.UserError
		if errors.As(err, &userErr) {
			fmt.Fprintln(os.Stderr, userErr.UserMessage)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func initConfig(cmd *cobra.Command, _ []string) error {
	// Set up config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		// Search for config in standard locations
		viper.AddConfigPath(fmt.Sprintf("%s/.config/tarifa", home))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Environment variables: api.base_url -> TARIFA_API_BASE_URL
	config.SetDefaults(viper.GetViper())
	viper.SetEnvPrefix("TARIFA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return common.NewUserError("Invalid configuration", err)
	}

	// Set up logging
	if err := setupLogging(cmd, settings); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	if settings.MetricsAddr != "" {
		serveMetrics(cmd.Context(), settings.MetricsAddr)
	}

	return nil
}

// setupLogging installs the global slog logger. The interactive browser owns
// the terminal, so without a log file its logs are dropped.
func setupLogging(cmd *cobra.Command, s config.Settings) error {
	if cmd.Name() == "browse" && s.LogFile == "" {
		level, err := common.ParseLevel(s.LogLevel)
		if err != nil {
			return err
		}
		handler, err := common.NewHandler(io.Discard, level, s.LogFormat)
		if err != nil {
			return err
		}
		slog.SetDefault(slog.New(handler))
		return nil
	}

	closer, err := common.SetupLogger(s.LogLevel, s.LogFormat, s.LogFile)
	if err != nil {
		return err
	}
	logCloser = closer
	return nil
}

func closeLogging(_ *cobra.Command, _ []string) error {
	if logCloser == nil {
		return nil
	}
	err := logCloser.Close()
	logCloser = nil
	return err
}

// serveMetrics exposes the Prometheus registry until ctx is done.
func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tarifa %s\n", version)
		},
	}
}
