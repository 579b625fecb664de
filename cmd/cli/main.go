package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/yourusername/clip-extract-go/internal/app"
	"github.com/yourusername/clip-extract-go/internal/domain"
	"github.com/yourusername/clip-extract-go/pkg/logger"
)

var (
	serverURL   string
	configPath  string
	noAutoStart bool
	verbose     bool

	config *domain.Config

	rootCmd = &cobra.Command{
		Use:   "clip-extract",
		Short: "clip-extract - one-click clip downloads from the browser",
		Long: `A command-line companion for downloading video clips.

It drives a Chrome page that gets a "Download Clip" button on clip pages,
and talks to the local clip-extract-server that runs yt-dlp.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.LoadConfig(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("server") {
				c.Relay.ServerURL = serverURL
			} else {
				serverURL = c.Relay.ServerURL
			}
			config = c
			return nil
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:5001", "Server URL")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start server if not running")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(configCmd)
}

// ensureServer checks if server is running and starts it if needed (unless --no-auto-start)
func ensureServer(ctx context.Context) {
	if noAutoStart {
		return
	}
	if err := ensureServerRunning(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

// newLogAdapter builds the console logger of the CLI. Logs go to stderr so
// command output stays clean.
func newLogAdapter() *logger.LoggerAdapter {
	level := config.Logging.Level
	if verbose {
		level = "debug"
	}
	l, err := logger.New(logger.Config{
		Level:      level,
		Format:     config.Logging.Format,
		OutputPath: "stderr",
	})
	if err != nil {
		l = zap.NewNop()
	}
	return logger.NewSingleLoggerAdapter(l)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
