package infrastructure

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// CommandRunner runs an external program and captures its output
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

// Run implements CommandRunner. The process is killed when ctx is done.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// shellSpecialChars have a meaning to a POSIX shell and force quoting
const shellSpecialChars = " \t\n\r'\"$`\\!*?[](){}|;<>&~#%"

// ShellEscape quotes s for display in a copy-pasteable command line.
// It is only used for logging; commands are never run through a shell.
func ShellEscape(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, shellSpecialChars) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

// ShellEscapeCommand renders binary and args as one escaped command line
func ShellEscapeCommand(binary string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, ShellEscape(binary))
	for _, arg := range args {
		parts = append(parts, ShellEscape(arg))
	}
	return strings.Join(parts, " ")
}

// LastLine returns the last non-empty line of command output
func LastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return ""
}
