package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/clip-extract-go/internal/domain"
)

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	// Start with default config
	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.clip-extract")
		v.AddConfigPath("/etc/clip-extract")
	}

	// CLIPEXTRACT_RELAY_SERVER_URL overrides relay.server_url
	v.SetEnvPrefix("CLIPEXTRACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// configValues flattens the config into the keys LoadConfig reads back
func configValues(c *domain.Config) map[string]interface{} {
	return map[string]interface{}{
		"server.host":            c.Server.Host,
		"server.port":            c.Server.Port,
		"download.dir":           c.Download.Dir,
		"download.logs_dir":      c.Download.LogsDir,
		"download.database_path": c.Download.DatabasePath,
		"download.format":        c.Download.Format,
		"download.ytdlp_binary":  c.Download.YTDLPBinary,
		"relay.server_url":       c.Relay.ServerURL,
		"relay.health_timeout":   c.Relay.HealthTimeout.String(),
		"relay.request_timeout":  c.Relay.RequestTimeout.String(),
		"observer.detect_delay":  c.Observer.DetectDelay.String(),
		"observer.reset_delay":   c.Observer.ResetDelay.String(),
		"observer.headless":      c.Observer.Headless,
		"observer.remote_url":    c.Observer.RemoteURL,
		"monitor.check_interval": c.Monitor.CheckInterval.String(),
		"monitor.settle_delay":   c.Monitor.SettleDelay.String(),
		"notification.enabled":   c.Notification.Enabled,
		"notification.method":    c.Notification.Method,
		"logging.level":          c.Logging.Level,
		"logging.format":         c.Logging.Format,
		"logging.output_path":    c.Logging.OutputPath,
	}
}

// bindEnvKeys registers every known key so AutomaticEnv also applies to
// keys that are absent from the config file.
func bindEnvKeys(v *viper.Viper) {
	for key := range configValues(domain.DefaultConfig()) {
		_ = v.BindEnv(key)
	}
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Download.Dir = expandPath(config.Download.Dir)
	config.Download.LogsDir = expandPath(config.Download.LogsDir)
	config.Download.DatabasePath = expandPath(config.Download.DatabasePath)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	// $HOME first so it resolves even when the variable is unset
	if strings.Contains(path, "$HOME") {
		if home, err := os.UserHomeDir(); err == nil {
			path = strings.ReplaceAll(path, "$HOME", home)
		}
	}

	return os.ExpandEnv(path)
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Server.Port < 1 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Download.Dir == "" {
		return fmt.Errorf("download directory not configured")
	}

	if config.Download.YTDLPBinary == "" {
		return fmt.Errorf("yt-dlp binary not configured")
	}

	if config.Relay.ServerURL == "" {
		return fmt.Errorf("relay server url not configured")
	}

	if config.Relay.HealthTimeout < 0 || config.Relay.RequestTimeout < 0 {
		return fmt.Errorf("relay timeouts cannot be negative")
	}

	if config.Observer.DetectDelay < 0 || config.Observer.ResetDelay < 0 {
		return fmt.Errorf("observer delays cannot be negative")
	}

	if config.Monitor.CheckInterval <= 0 {
		return fmt.Errorf("monitor check interval must be positive")
	}

	if config.Monitor.SettleDelay < 0 {
		return fmt.Errorf("monitor settle delay cannot be negative")
	}

	if config.Download.Format == "" {
		config.Download.Format = domain.DefaultFormat
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *domain.Config, path string) error {
	v := viper.New()
	v.SetConfigType("yaml")

	for key, value := range configValues(config) {
		v.Set(key, value)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
