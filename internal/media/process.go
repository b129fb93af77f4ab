package media

import (
	"os/exec"
	"syscall"
	"time"
)

// Process is the cancellation handle for a running external tool. It is
// created when the subprocess starts and handed to the queue so a concurrent
// cancel can reach the process.
type Process struct {
	cmd        *exec.Cmd
	outputPath string
	done       chan struct{}
}

func newProcess(cmd *exec.Cmd, outputPath string) *Process {
	return &Process{
		cmd:        cmd,
		outputPath: outputPath,
		done:       make(chan struct{}),
	}
}

// OutputPath is the file the process is writing; a cancel removes it.
func (p *Process) OutputPath() string {
	return p.outputPath
}

// Terminate asks the process to exit, escalating to a kill when it is still
// alive after the grace period.
func (p *Process) Terminate(grace time.Duration) error {
	if p.cmd.Process == nil {
		return nil
	}
	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		return err
	}
	select {
	case <-p.done:
		return nil
	case <-time.After(grace):
		return p.cmd.Process.Kill()
	}
}

// finish marks the process as exited, releasing any Terminate waiting on it.
func (p *Process) finish() {
	close(p.done)
}
