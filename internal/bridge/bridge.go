package bridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"fastfox/internal/logging"
	"fastfox/internal/services"
)

const (
	defaultBinary  = "soffice"
	defaultTimeout = 2 * time.Minute
	lockRetryDelay = 250 * time.Millisecond
)

// Target formats understood by Convert.
const (
	FormatDocx = "docx"
	FormatXlsx = "xlsx"
)

// Config describes how the office process is launched.
type Config struct {
	Binary   string
	LockPath string
	Timeout  time.Duration
	// TempDir is the parent for per-session scratch directories (os.TempDir when empty).
	TempDir string
}

// Bridge serializes access to the external office application.
type Bridge struct {
	cfg    Config
	exec   Executor
	logger *slog.Logger
	mu     sync.Mutex
}

// New constructs a Bridge that shells out to the configured binary.
func New(cfg Config, logger *slog.Logger) *Bridge {
	return newBridge(cfg, commandExecutor{}, logger)
}

func newBridge(cfg Config, exec Executor, logger *slog.Logger) *Bridge {
	cfg.Binary = strings.TrimSpace(cfg.Binary)
	if cfg.Binary == "" {
		cfg.Binary = defaultBinary
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Bridge{
		cfg:    cfg,
		exec:   exec,
		logger: logging.NewComponentLogger(logger, "bridge"),
	}
}

// Session is an exclusive handle on the office application.
type Session struct {
	bridge  *Bridge
	lock    *flock.Flock
	workDir string
	profile string

	mu      sync.Mutex
	current Process
	closed  bool
}

// Open acquires the bridge and prepares a private working directory. The
// caller must Close the session.
func (b *Bridge) Open(ctx context.Context) (*Session, error) {
	b.mu.Lock()
	release := true
	defer func() {
		if release {
			b.mu.Unlock()
		}
	}()

	var lock *flock.Flock
	if path := strings.TrimSpace(b.cfg.LockPath); path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "bridge", "lock", "create lock directory", err)
		}
		lock = flock.New(path)
		locked, err := lock.TryLockContext(ctx, lockRetryDelay)
		if err != nil {
			return nil, services.Wrap(services.ErrExternalTool, "bridge", "lock", "acquire bridge lock", err)
		}
		if !locked {
			return nil, services.Wrap(services.ErrExternalTool, "bridge", "lock", "bridge lock not acquired", nil)
		}
	}

	workDir, err := os.MkdirTemp(b.cfg.TempDir, "fastfox-bridge-")
	if err != nil {
		if lock != nil {
			_ = lock.Unlock()
		}
		return nil, services.Wrap(services.ErrExternalTool, "bridge", "open", "create work directory", err)
	}
	profile := filepath.Join(workDir, "profile")
	if err := os.MkdirAll(profile, 0o700); err != nil {
		_ = os.RemoveAll(workDir)
		if lock != nil {
			_ = lock.Unlock()
		}
		return nil, services.Wrap(services.ErrExternalTool, "bridge", "open", "create profile directory", err)
	}

	release = false
	b.logger.Debug("bridge session opened", logging.String("work_dir", workDir))
	return &Session{bridge: b, lock: lock, workDir: workDir, profile: profile}, nil
}

// WithSession opens a session, runs fn, and closes the session on every exit path.
func (b *Bridge) WithSession(ctx context.Context, fn func(*Session) error) (err error) {
	session, err := b.Open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(session)
}

// ConvertWith converts src inside a fresh session and hands the converted path
// to read before the session is torn down.
func (b *Bridge) ConvertWith(ctx context.Context, src, format string, read func(path string) error) error {
	return b.WithSession(ctx, func(s *Session) error {
		converted, err := s.Convert(ctx, src, format)
		if err != nil {
			return err
		}
		return read(converted)
	})
}

// Convert converts src into the target format and returns the path of the
// converted file inside the session's working directory.
func (s *Session) Convert(ctx context.Context, src, format string) (string, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != FormatDocx && format != FormatXlsx {
		return "", services.Wrap(services.ErrExternalTool, "bridge", "convert", fmt.Sprintf("unsupported target format %q", format), nil)
	}
	absSrc, err := filepath.Abs(src)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "bridge", "convert", "resolve source path", err)
	}
	outDir := filepath.Join(s.workDir, "out")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "bridge", "convert", "create output directory", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.bridge.cfg.Timeout)
	defer cancel()

	args := []string{
		"--headless",
		"--norestore",
		"--nologo",
		"--nolockcheck",
		"-env:UserInstallation=" + profileURL(s.profile),
		"--convert-to", format,
		"--outdir", outDir,
		absSrc,
	}
	proc, err := s.start(ctx, args)
	if err != nil {
		return "", err
	}
	output, waitErr := proc.Wait()
	s.finish(proc)
	if waitErr != nil {
		if ctx.Err() != nil {
			return "", services.Wrap(services.ErrExternalTool, "bridge", "convert", "conversion timed out", ctx.Err())
		}
		return "", services.Wrap(services.ErrExternalTool, "bridge", "convert", summarizeOutput(output), waitErr)
	}

	base := strings.TrimSuffix(filepath.Base(absSrc), filepath.Ext(absSrc))
	converted := filepath.Join(outDir, base+"."+format)
	if _, err := os.Stat(converted); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "bridge", "convert", "no converted file produced: "+summarizeOutput(output), err)
	}
	s.bridge.logger.Debug("document converted",
		logging.String("source", filepath.Base(absSrc)),
		logging.String("format", format),
	)
	return converted, nil
}

func (s *Session) start(ctx context.Context, args []string) (Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, services.Wrap(services.ErrExternalTool, "bridge", "convert", "session closed", nil)
	}
	proc, err := s.bridge.exec.Start(ctx, s.bridge.cfg.Binary, args)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "bridge", "convert", "start "+s.bridge.cfg.Binary, err)
	}
	s.current = proc
	return proc, nil
}

func (s *Session) finish(proc Process) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == proc {
		s.current = nil
	}
}

// Close terminates a still-running process, removes the working directory,
// and releases the bridge. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	proc := s.current
	s.current = nil
	s.mu.Unlock()

	var errs []error
	if proc != nil && proc.Running() {
		if err := proc.Kill(); err != nil {
			errs = append(errs, fmt.Errorf("kill office process: %w", err))
		} else {
			logging.WarnWithContext(s.bridge.logger, "office process still running at close; killed", "bridge_process_killed",
				logging.String(logging.FieldErrorHint, "check the document for dialogs or corruption"),
				logging.String(logging.FieldImpact, "conversion aborted"),
			)
		}
	}
	if err := os.RemoveAll(s.workDir); err != nil {
		errs = append(errs, fmt.Errorf("remove work directory: %w", err))
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil {
			errs = append(errs, fmt.Errorf("release bridge lock: %w", err))
		}
	}
	s.bridge.mu.Unlock()
	s.bridge.logger.Debug("bridge session closed")
	if len(errs) > 0 {
		return services.Wrap(services.ErrExternalTool, "bridge", "close", "release session", errors.Join(errs...))
	}
	return nil
}

func profileURL(dir string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(dir)}
	return u.String()
}

func summarizeOutput(output []byte) string {
	clean := strings.Join(strings.Fields(string(output)), " ")
	if clean == "" {
		return "office process failed"
	}
	const limit = 200
	if runes := []rune(clean); len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}
