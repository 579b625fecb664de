package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yourusername/clip-extract-go/internal/app"
	"github.com/yourusername/clip-extract-go/internal/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a config file with default values",
	Long:  "Writes the defaults to path, or to $HOME/.clip-extract/config.yaml.",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) == 1 {
			path = args[0]
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			path = filepath.Join(home, ".clip-extract", "config.yaml")
		}

		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		if err := app.SaveConfig(domain.DefaultConfig(), path); err != nil {
			return err
		}
		fmt.Printf("Config written to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Server:")
		fmt.Printf("  Address:         %s:%d\n", config.Server.Host, config.Server.Port)
		fmt.Println("Download:")
		fmt.Printf("  Dir:             %s\n", config.Download.Dir)
		fmt.Printf("  Format:          %s\n", config.Download.Format)
		fmt.Printf("  History:         %s\n", config.Download.DatabasePath)
		fmt.Println("Relay:")
		fmt.Printf("  Server URL:      %s\n", config.Relay.ServerURL)
		fmt.Printf("  Health timeout:  %v\n", config.Relay.HealthTimeout)
		fmt.Println("Observer:")
		fmt.Printf("  Detect delay:    %v\n", config.Observer.DetectDelay)
		fmt.Printf("  Reset delay:     %v\n", config.Observer.ResetDelay)
		fmt.Println("Monitor:")
		fmt.Printf("  Check interval:  %v\n", config.Monitor.CheckInterval)
		fmt.Printf("  Settle delay:    %v\n", config.Monitor.SettleDelay)
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
