// Package cli implements the sandgrid command-line tool.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	sandgrid "github.com/sandgrid/sandgrid-go"
	"github.com/sandgrid/sandgrid-go/internal/logger"
)

// rootOptions carries the flags shared by every subcommand
type rootOptions struct {
	configPath string
	endpoint   string
	apiKey     string
	region     string
	timeout    time.Duration
}

// client builds an SDK client from flags, falling back to the config file
// when no endpoint is given on the command line
func (r *rootOptions) client(ctx context.Context) (*sandgrid.Client, error) {
	if r.endpoint != "" {
		if err := logger.Init(logger.Config{
			Level:   logger.LevelWarn,
			Format:  logger.FormatText,
			Outputs: []logger.OutputConfig{{Type: logger.OutputStderr}},
		}); err != nil {
			return nil, err
		}
		return sandgrid.NewClient(ctx, sandgrid.Config{
			Endpoint: r.endpoint,
			APIKey:   r.apiKey,
			Region:   r.region,
			Timeout:  r.timeout,
		})
	}

	return sandgrid.NewClientFromFile(ctx, r.configPath)
}

// NewRootCmd builds the sandgrid command tree
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "sandgrid",
		Short:         "CLI for the SandGrid agent-sandbox service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultConfig := os.Getenv("SANDGRID_CONFIG")

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfig, "path to config file (default: search standard locations)")
	rootCmd.PersistentFlags().StringVar(&opts.endpoint, "endpoint", "", "service endpoint (overrides config)")
	rootCmd.PersistentFlags().StringVar(&opts.apiKey, "api-key", "", "API key (overrides config)")
	rootCmd.PersistentFlags().StringVar(&opts.region, "region", "", "default region for new sessions")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 0, "per-request timeout; defaults to config or 60s")

	rootCmd.AddCommand(newSessionCmd(opts))
	rootCmd.AddCommand(newFsCmd(opts))
	rootCmd.AddCommand(newRunCmd(opts))

	return rootCmd
}

// Execute runs the CLI and returns the process exit code
func Execute() int {
	defer logger.Shutdown()

	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

// parseLabels parses repeated key=value flags into a map
func parseLabels(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	labels := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid label %q, expected key=value", pair)
		}
		labels[key] = value
	}
	return labels, nil
}
