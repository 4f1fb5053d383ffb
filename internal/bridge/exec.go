package bridge

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"
)

// killGrace bounds how long Wait keeps reading output after the process
// group has been killed.
const killGrace = 2 * time.Second

// Executor starts external processes.
type Executor interface {
	Start(ctx context.Context, binary string, args []string) (Process, error)
}

// Process is a started external process.
type Process interface {
	// Wait blocks until the process exits and returns its combined output.
	Wait() ([]byte, error)
	// Kill terminates the process if it is still running.
	Kill() error
	// Running reports whether Wait has not yet observed an exit.
	Running() bool
}

type commandExecutor struct{}

func (commandExecutor) Start(ctx context.Context, binary string, args []string) (Process, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	proc := &commandProcess{cmd: cmd}
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = killGrace
	cmd.Stdout = &proc.output
	cmd.Stderr = &proc.output
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return proc, nil
}

type commandProcess struct {
	cmd    *exec.Cmd
	output bytes.Buffer
	done   atomic.Bool
	once   sync.Once
	err    error
}

func (p *commandProcess) Wait() ([]byte, error) {
	p.once.Do(func() {
		p.err = p.cmd.Wait()
		p.done.Store(true)
	})
	return p.output.Bytes(), p.err
}

func (p *commandProcess) Kill() error {
	if p.done.Load() || p.cmd.Process == nil {
		return nil
	}
	if err := killProcessGroup(p.cmd); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

func (p *commandProcess) Running() bool {
	return !p.done.Load()
}
