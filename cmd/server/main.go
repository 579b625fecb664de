package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/clip-extract-go/api"
	"github.com/yourusername/clip-extract-go/internal/app"
	"github.com/yourusername/clip-extract-go/internal/domain"
	"github.com/yourusername/clip-extract-go/internal/infrastructure"
	"github.com/yourusername/clip-extract-go/pkg/logger"
)

var (
	serverMode = flag.Bool("server-mode", false, "Internal flag: run in server mode (called by daemon)")
	foreground = flag.Bool("foreground", false, "Run in the foreground instead of detaching")
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	if !*serverMode && !*foreground {
		startAsDaemon()
		return
	}

	runServer()
}

// startAsDaemon re-executes the binary detached with -server-mode
func startAsDaemon() {
	execPath, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to get executable path: %v\n", err)
		os.Exit(1)
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "/"
	}

	args := []string{"-server-mode"}
	if *configPath != "" {
		args = append(args, "-config", *configPath)
	}
	cmd := exec.Command(execPath, args...)
	cmd.Dir = cwd
	cmd.Env = os.Environ()
	setSysProcAttr(cmd)

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open /dev/null: %v\n", err)
		os.Exit(1)
	}
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull

	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start daemon: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Server started as daemon (PID: %d)\n", cmd.Process.Pid)
	os.Exit(0)
}

func runServer() {
	config, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := createDirectories(config); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create directories: %v\n", err)
		os.Exit(1)
	}

	console, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	multiLog, err := logger.NewMultiLogger(logger.MultiLoggerConfig{
		Level:   config.Logging.Level,
		LogsDir: config.Download.LogsDir,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer multiLog.Close()

	logAdapter := logger.NewLoggerAdapter(multiLog, console)
	defer logAdapter.Sync()
	log := logAdapter.Service()

	log.Info("Starting clip download server",
		zap.String("version", "1.0.0"),
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port),
		zap.String("download_dir", config.Download.Dir),
		zap.String("format", config.Download.Format))

	repo, err := infrastructure.NewSQLiteDownloadRepository(config.Download.DatabasePath)
	if err != nil {
		log.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	runner := infrastructure.ExecRunner{}
	notifier := infrastructure.NewNotificationService(&config.Notification, runner, log)
	downloader := infrastructure.NewYTDLPDownloader(&config.Download, runner, log)
	service := app.NewDownloadService(repo, downloader, notifier, log)

	router := api.SetupRouter(service, logAdapter)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// running yt-dlp processes get the same grace period as open requests
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

func createDirectories(config *domain.Config) error {
	dirs := []string{
		config.Download.Dir,
		config.Download.LogsDir,
		filepath.Dir(config.Download.DatabasePath),
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}
