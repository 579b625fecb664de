package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/yourusername/clip-extract-go/internal/relay"
)

const (
	serverBinary       = "clip-extract-server"
	serverStartTimeout = 10 * time.Second
	serverPollInterval = 200 * time.Millisecond
)

// isServerRunning uses the same health probe as the relay
func isServerRunning(ctx context.Context) bool {
	return relay.New(&config.Relay, nil).CheckHealth(ctx) == nil
}

// findServerBinary locates the clip-extract-server binary
func findServerBinary() (string, error) {
	// 1. Same directory as the CLI binary
	execPath, err := os.Executable()
	if err == nil {
		serverPath := filepath.Join(filepath.Dir(execPath), serverBinary)
		if _, err := os.Stat(serverPath); err == nil {
			return serverPath, nil
		}
	}

	// 2. PATH
	if serverPath, err := exec.LookPath(serverBinary); err == nil {
		return serverPath, nil
	}

	// 3. Common locations
	home, _ := os.UserHomeDir()
	commonPaths := []string{
		"/usr/local/bin/" + serverBinary,
		"/usr/bin/" + serverBinary,
		filepath.Join(home, "go/bin", serverBinary),
		filepath.Join(home, ".local/bin", serverBinary),
	}
	for _, p := range commonPaths {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("%s binary not found", serverBinary)
}

// startServerBackground starts the server as a detached background process
func startServerBackground() error {
	serverPath, err := findServerBinary()
	if err != nil {
		return err
	}

	args := []string{"-foreground"}
	if configPath != "" {
		args = append(args, "-config", configPath)
	}
	cmd := exec.Command(serverPath, args...)
	setSysProcAttr(cmd)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	// reap the child if it exits while we are still running
	go func() {
		_ = cmd.Wait()
	}()

	return nil
}

// waitForServerReady polls the health endpoint until it answers or timeout
func waitForServerReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, serverStartTimeout)
	defer cancel()

	ticker := time.NewTicker(serverPollInterval)
	defer ticker.Stop()

	for {
		if isServerRunning(ctx) {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("server did not start within %v", serverStartTimeout)
		case <-ticker.C:
		}
	}
}

// ensureServerRunning checks if server is running, starts it if not
func ensureServerRunning(ctx context.Context) error {
	if isServerRunning(ctx) {
		return nil
	}

	fmt.Fprintln(os.Stderr, "Server not running, starting...")

	if err := startServerBackground(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}

	if err := waitForServerReady(ctx); err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, "Server started successfully")
	return nil
}
