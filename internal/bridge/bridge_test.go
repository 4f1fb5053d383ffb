package bridge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"fastfox/internal/services"
)

type fakeProcess struct {
	mu      sync.Mutex
	release chan struct{}
	killed  bool
	done    bool
	err     error
	output  []byte
}

func (p *fakeProcess) Wait() ([]byte, error) {
	if p.release != nil {
		<-p.release
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = true
	if p.killed {
		return p.output, errors.New("signal: killed")
	}
	return p.output, p.err
}

func (p *fakeProcess) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done {
		return nil
	}
	p.killed = true
	if p.release != nil {
		close(p.release)
	}
	return nil
}

func (p *fakeProcess) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.done
}

type fakeExecutor struct {
	mu       sync.Mutex
	calls    [][]string
	binary   string
	produce  bool
	block    bool
	fail     error
	started  chan *fakeProcess
	lastProc *fakeProcess
}

func (f *fakeExecutor) Start(_ context.Context, binary string, args []string) (Process, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.binary = binary
	f.calls = append(f.calls, append([]string(nil), args...))
	if f.fail != nil {
		return nil, f.fail
	}
	proc := &fakeProcess{}
	if f.block {
		proc.release = make(chan struct{})
	}
	if f.produce {
		outDir, format, src := parseArgs(args)
		base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
		if err := os.WriteFile(filepath.Join(outDir, base+"."+format), []byte("converted"), 0o644); err != nil {
			return nil, err
		}
	} else {
		proc.output = []byte("Error: source file could not be loaded")
		proc.err = errors.New("exit status 1")
	}
	f.lastProc = proc
	if f.started != nil {
		f.started <- proc
	}
	return proc, nil
}

func parseArgs(args []string) (outDir, format, src string) {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--outdir":
			outDir = args[i+1]
			i++
		case "--convert-to":
			format = args[i+1]
			i++
		}
	}
	return outDir, format, args[len(args)-1]
}

func newTestBridge(t *testing.T, exec Executor) (*Bridge, string) {
	t.Helper()
	lockPath := filepath.Join(t.TempDir(), "locks", "bridge.lock")
	return newBridge(Config{LockPath: lockPath, TempDir: t.TempDir()}, exec, nil), lockPath
}

func TestConvertProducesFileInsideSession(t *testing.T) {
	exec := &fakeExecutor{produce: true}
	b, _ := newTestBridge(t, exec)

	src := filepath.Join(t.TempDir(), "letter.doc")
	if err := os.WriteFile(src, []byte("legacy"), 0o644); err != nil {
		t.Fatal(err)
	}

	var workDir string
	err := b.WithSession(context.Background(), func(s *Session) error {
		workDir = s.workDir
		out, err := s.Convert(context.Background(), src, FormatDocx)
		if err != nil {
			return err
		}
		if filepath.Base(out) != "letter.docx" || !strings.HasPrefix(out, workDir) {
			t.Fatalf("unexpected converted path %q", out)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WithSession returned error: %v", err)
	}
	if exec.binary != "soffice" {
		t.Fatalf("unexpected binary %q", exec.binary)
	}
	args := strings.Join(exec.calls[0], " ")
	for _, want := range []string{"--headless", "--convert-to docx", "-env:UserInstallation=file://"} {
		if !strings.Contains(args, want) {
			t.Fatalf("expected %q in args %q", want, args)
		}
	}
	if _, err := os.Stat(workDir); !os.IsNotExist(err) {
		t.Fatalf("expected work dir removed, got %v", err)
	}
}

func TestConvertFailureIsExternalToolError(t *testing.T) {
	b, lockPath := newTestBridge(t, &fakeExecutor{})
	err := b.WithSession(context.Background(), func(s *Session) error {
		_, err := s.Convert(context.Background(), "broken.doc", FormatDocx)
		return err
	})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "could not be loaded") {
		t.Fatalf("expected process output in error, got %v", err)
	}
	assertLockFree(t, lockPath)
}

func TestConvertRejectsUnknownFormat(t *testing.T) {
	b, _ := newTestBridge(t, &fakeExecutor{produce: true})
	err := b.WithSession(context.Background(), func(s *Session) error {
		_, err := s.Convert(context.Background(), "x.doc", "pdf")
		return err
	})
	if err == nil {
		t.Fatal("expected unsupported format error")
	}
}

func TestStartFailureReleasesSession(t *testing.T) {
	b, lockPath := newTestBridge(t, &fakeExecutor{fail: errors.New("executable file not found")})
	err := b.WithSession(context.Background(), func(s *Session) error {
		_, err := s.Convert(context.Background(), "x.doc", FormatDocx)
		return err
	})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	assertLockFree(t, lockPath)
}

func TestSessionHoldsLockUntilClose(t *testing.T) {
	b, lockPath := newTestBridge(t, &fakeExecutor{produce: true})
	session, err := b.Open(context.Background())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	other := flock.New(lockPath)
	locked, err := other.TryLock()
	if err != nil {
		t.Fatalf("TryLock returned error: %v", err)
	}
	if locked {
		_ = other.Unlock()
		t.Fatal("expected bridge lock to be held by the open session")
	}
	if err := session.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}
	assertLockFree(t, lockPath)

	again, err := b.Open(context.Background())
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	_ = again.Close()
}

func TestCloseKillsRunningProcess(t *testing.T) {
	exec := &fakeExecutor{block: true, started: make(chan *fakeProcess, 1)}
	b, lockPath := newTestBridge(t, exec)
	session, err := b.Open(context.Background())
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}

	convertErr := make(chan error, 1)
	go func() {
		_, err := session.Convert(context.Background(), "slow.doc", FormatDocx)
		convertErr <- err
	}()

	var proc *fakeProcess
	select {
	case proc = <-exec.started:
	case <-time.After(5 * time.Second):
		t.Fatal("process never started")
	}
	if err := session.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	select {
	case err := <-convertErr:
		if err == nil {
			t.Fatal("expected conversion to fail after kill")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("conversion did not return after Close")
	}
	proc.mu.Lock()
	killed := proc.killed
	proc.mu.Unlock()
	if !killed {
		t.Fatal("expected running process to be killed")
	}
	if _, err := os.Stat(session.workDir); !os.IsNotExist(err) {
		t.Fatalf("expected work dir removed, got %v", err)
	}
	assertLockFree(t, lockPath)
}

func TestWithSessionReleasesOnPanic(t *testing.T) {
	b, lockPath := newTestBridge(t, &fakeExecutor{produce: true})
	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected panic to propagate")
			}
		}()
		_ = b.WithSession(context.Background(), func(*Session) error {
			panic("extractor bug")
		})
	}()
	assertLockFree(t, lockPath)
}

func assertLockFree(t *testing.T, lockPath string) {
	t.Helper()
	probe := flock.New(lockPath)
	locked, err := probe.TryLock()
	if err != nil {
		t.Fatalf("TryLock returned error: %v", err)
	}
	if !locked {
		t.Fatal("expected bridge lock to be released")
	}
	_ = probe.Unlock()
}

func TestConvertWithReadsBeforeCleanup(t *testing.T) {
	b, lockPath := newTestBridge(t, &fakeExecutor{produce: true})
	src := filepath.Join(t.TempDir(), "budget.xls")
	if err := os.WriteFile(src, []byte("legacy"), 0o644); err != nil {
		t.Fatal(err)
	}

	var seen string
	readErr := errors.New("corrupt workbook")
	err := b.ConvertWith(context.Background(), src, FormatXlsx, func(path string) error {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		seen = path
		if string(data) != "converted" {
			t.Fatalf("unexpected converted content %q", data)
		}
		return readErr
	})
	if !errors.Is(err, readErr) {
		t.Fatalf("expected read error to propagate, got %v", err)
	}
	if filepath.Base(seen) != "budget.xlsx" {
		t.Fatalf("unexpected converted path %q", seen)
	}
	if _, err := os.Stat(seen); !os.IsNotExist(err) {
		t.Fatalf("expected converted file removed with session, got %v", err)
	}
	assertLockFree(t, lockPath)
}
