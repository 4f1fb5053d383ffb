package router

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"fastfox/internal/fileutil"
	"fastfox/internal/filetype"
	"fastfox/internal/logging"
	"fastfox/internal/services"
)

// Collision policies.
const (
	PolicyRename = "rename"
	PolicyReject = "reject"
)

const maxRenameAttempts = 10000

var (
	// ErrCollision marks a move rejected because the destination name is taken.
	ErrCollision = errors.New("destination already exists")
	// ErrCrossDevice marks a cross-filesystem move whose copy fallback failed.
	ErrCrossDevice = errors.New("cross-device move failed")
)

// Decision is one file's routing request.
type Decision struct {
	Source   string
	Category filetype.Category
	Label    string
}

// Result describes a completed move.
type Result struct {
	Destination string
	// Renamed is set when the base name was changed to avoid a collision.
	Renamed bool
	// Copied is set when the move crossed filesystems.
	Copied bool
}

// Router owns every filesystem mutation below root.
type Router struct {
	root   string
	policy string
	logger *slog.Logger
	locks  keyedMutex
	rename func(src, dst string) error
}

// New constructs a Router for root. An empty policy means PolicyRename.
func New(root, policy string, logger *slog.Logger) (*Router, error) {
	policy = strings.ToLower(strings.TrimSpace(policy))
	switch policy {
	case "":
		policy = PolicyRename
	case PolicyRename, PolicyReject:
	default:
		return nil, services.Wrap(services.ErrConfiguration, "route", "init", fmt.Sprintf("unknown collision policy %q", policy), nil)
	}
	return &Router{
		root:   root,
		policy: policy,
		logger: logging.NewComponentLogger(logger, "router"),
		rename: renameNoReplace,
	}, nil
}

// Dir returns the destination directory for category and label without
// touching the filesystem.
func (r *Router) Dir(category filetype.Category, label string) (string, error) {
	base := filepath.Join(r.root, category.Dir())
	if !category.Labeled() {
		return base, nil
	}
	label = strings.TrimSpace(label)
	if label == "" || label == "." || label == ".." || strings.ContainsAny(label, `/\`) {
		return "", services.Wrap(services.ErrRoute, "route", "resolve", fmt.Sprintf("invalid label %q", label), nil)
	}
	return filepath.Join(base, label), nil
}

// Plan returns where decision would land if routed now.
func (r *Router) Plan(decision Decision) (string, error) {
	dir, err := r.Dir(decision.Category, decision.Label)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.Base(decision.Source)), nil
}

// EnsureDir creates the destination directory for category and label. It is
// idempotent.
func (r *Router) EnsureDir(category filetype.Category, label string) (string, error) {
	dir, err := r.Dir(category, label)
	if err != nil {
		return "", err
	}
	unlock := r.locks.Lock(dir)
	defer unlock()
	if err := ensureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// Route moves decision.Source into its destination directory, preserving the
// base name unless the collision policy renames it.
func (r *Router) Route(ctx context.Context, decision Decision) (Result, error) {
	dir, err := r.Dir(decision.Category, decision.Label)
	if err != nil {
		return Result{}, err
	}
	unlock := r.locks.Lock(dir)
	defer unlock()

	if err := ensureDir(dir); err != nil {
		return Result{}, err
	}

	base := filepath.Base(decision.Source)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	target := filepath.Join(dir, base)

	for attempt := 1; ; attempt++ {
		copied, err := r.move(decision.Source, target)
		if err == nil {
			result := Result{Destination: target, Renamed: attempt > 1, Copied: copied}
			logging.WithContext(ctx, r.logger).Debug("file routed",
				logging.String("destination", target),
				logging.Bool("renamed", result.Renamed),
				logging.Bool("copied", copied),
			)
			return result, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return Result{}, err
		}
		if r.policy == PolicyReject {
			return Result{}, services.Wrap(services.ErrRoute, "route", "move",
				fmt.Sprintf("%s already exists", target), ErrCollision)
		}
		if attempt >= maxRenameAttempts {
			return Result{}, services.Wrap(services.ErrRoute, "route", "move",
				fmt.Sprintf("exhausted rename slots for %s", base), ErrCollision)
		}
		target = filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, attempt, ext))
	}
}

// move renames src to dst without replacing dst. fs.ErrExist is returned
// unwrapped so the caller can pick another name.
func (r *Router) move(src, dst string) (bool, error) {
	err := r.rename(src, dst)
	if err == nil {
		return false, nil
	}
	if errors.Is(err, fs.ErrExist) {
		return false, err
	}
	if !errors.Is(err, syscall.EXDEV) {
		return false, services.Wrap(services.ErrRoute, "route", "move", "rename failed", err)
	}

	if err := fileutil.CopyFileVerified(src, dst); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, err
		}
		return false, services.Wrap(services.ErrRoute, "route", "copy", "verified copy failed",
			errors.Join(ErrCrossDevice, err))
	}
	if err := os.Remove(src); err != nil {
		_ = os.Remove(dst)
		return false, services.Wrap(services.ErrRoute, "route", "copy", "remove source after copy",
			errors.Join(ErrCrossDevice, err))
	}
	return true, nil
}

func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return services.Wrap(services.ErrRoute, "route", "mkdir", dir, err)
	}
	return nil
}

// checkedRename is the portable fallback: the existence check and rename are
// serialized by the caller's directory lock.
func checkedRename(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		return &os.LinkError{Op: "rename", Old: src, New: dst, Err: fs.ErrExist}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.Rename(src, dst)
}
