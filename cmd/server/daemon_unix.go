//go:build !windows

package main

import (
	"os/exec"
	"syscall"
)

// setSysProcAttr detaches the daemon into its own session
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}
}
