// Package spawn fulfils the "obtain a (pty_master_fd, child_pid) pair for
// a pane" contract spec.md §1 leaves as an external collaborator: PTY
// allocation and shell forking via github.com/creack/pty.
package spawn

import (
	"fmt"
	"os"
	"os/exec"
	"os/user"

	"github.com/creack/pty"
)

// Shell is the child process plus the PTY master that drives it.
type Shell struct {
	Master *os.File
	Cmd    *exec.Cmd
}

// Pid returns the child's process id, or -1 if the process has not
// started.
func (s *Shell) Pid() int {
	if s.Cmd == nil || s.Cmd.Process == nil {
		return -1
	}
	return s.Cmd.Process.Pid
}

// Start resolves the user's shell (spec.md §6 "Environment": SHELL, else
// the passwd entry, else /bin/sh), execs it as a session leader attached
// to a fresh PTY sized rows×cols, and exports TERM and MUXKIT in its
// environment.
func Start(rows, cols int, muxkitPID int) (*Shell, error) {
	shellPath := loginShell()

	cmd := exec.Command(shellPath, "-l")
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		fmt.Sprintf("MUXKIT=%d", muxkitPID),
	)

	master, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return nil, fmt.Errorf("spawn: start shell: %w", err)
	}
	return &Shell{Master: master, Cmd: cmd}, nil
}

// Resize propagates a new pane size to the child's controlling terminal
// via TIOCSWINSZ. The client issues this directly to each PTY master per
// pane (spec.md §4.F "Layout recomputation").
func (s *Shell) Resize(rows, cols int) error {
	return pty.Setsize(s.Master, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

// Close closes this process's copy of the PTY master. Per spec.md §9
// ("Ownership of passed fds"), closing one side's copy never closes the
// other's.
func (s *Shell) Close() error {
	return s.Master.Close()
}

func loginShell() string {
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	if u, err := user.Current(); err == nil {
		if sh := shellFromPasswd(u.Username); sh != "" {
			return sh
		}
	}
	return "/bin/sh"
}
