package domain

import "time"

// Config represents the application configuration
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Download     DownloadConfig     `mapstructure:"download"`
	Relay        RelayConfig        `mapstructure:"relay"`
	Observer     ObserverConfig     `mapstructure:"observer"`
	Monitor      MonitorConfig      `mapstructure:"monitor"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// ServerConfig contains the companion service listen address
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// DownloadConfig contains download-related configuration
type DownloadConfig struct {
	Dir          string `mapstructure:"dir"`
	LogsDir      string `mapstructure:"logs_dir"`
	DatabasePath string `mapstructure:"database_path"`
	Format       string `mapstructure:"format"`
	YTDLPBinary  string `mapstructure:"ytdlp_binary"`
}

// RelayConfig contains settings of the relay that talks to the companion service
type RelayConfig struct {
	ServerURL      string        `mapstructure:"server_url"`
	HealthTimeout  time.Duration `mapstructure:"health_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"` // 0 = no timeout
}

// ObserverConfig contains page observer settings
type ObserverConfig struct {
	DetectDelay time.Duration `mapstructure:"detect_delay"`
	ResetDelay  time.Duration `mapstructure:"reset_delay"`
	Headless    bool          `mapstructure:"headless"`
	RemoteURL   string        `mapstructure:"remote_url"` // existing Chrome DevTools endpoint
}

// MonitorConfig contains live stream monitor settings
type MonitorConfig struct {
	CheckInterval time.Duration `mapstructure:"check_interval"`
	SettleDelay   time.Duration `mapstructure:"settle_delay"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultFormat prefers the 1080p60 HLS renditions, which work better for clips than DASH
const DefaultFormat = "301/300/299+140/bestvideo+bestaudio/best"

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "localhost",
			Port: 5001,
		},
		Download: DownloadConfig{
			Dir:          "$HOME/Downloads",
			LogsDir:      "$HOME/.clip-extract/logs",
			DatabasePath: "$HOME/.clip-extract/history.db",
			Format:       DefaultFormat,
			YTDLPBinary:  "yt-dlp",
		},
		Relay: RelayConfig{
			ServerURL:     "http://localhost:5001",
			HealthTimeout: 3 * time.Second,
		},
		Observer: ObserverConfig{
			DetectDelay: 1000 * time.Millisecond,
			ResetDelay:  2000 * time.Millisecond,
			Headless:    false,
		},
		Monitor: MonitorConfig{
			CheckInterval: 60 * time.Second,
			SettleDelay:   30 * time.Second,
		},
		Notification: NotificationConfig{
			Enabled: true,
			Method:  "osascript",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stdout",
		},
	}
}
