package organizer

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"fastfox/internal/extract"
	"fastfox/internal/filetype"
	"fastfox/internal/history"
	"fastfox/internal/logging"
	"fastfox/internal/router"
	"fastfox/internal/services"
)

// Extractor reads the content of one classified file.
type Extractor interface {
	Extract(ctx context.Context, path string, category filetype.Category) (extract.Content, error)
}

// Synthesizer turns extracted content into a topic label.
type Synthesizer interface {
	Synthesize(ctx context.Context, category filetype.Category, content extract.Content) (string, error)
}

// HistoryRecorder stores one entry per organized file.
type HistoryRecorder interface {
	Add(ctx context.Context, entry history.Entry) (history.Entry, error)
}

// Options wire an Organizer's collaborators.
type Options struct {
	Extractor   Extractor
	Synthesizer Synthesizer
	// History receives an organize entry per move; nil disables recording.
	History HistoryRecorder
	// Collision is the router collision policy.
	Collision string
	// LockDir holds per-root lock files; empty disables locking.
	LockDir string
	Logger  *slog.Logger
}

// RunOptions tune a single pass.
type RunOptions struct {
	// DryRun resolves destinations without creating label folders or moving files.
	DryRun bool
}

// Organizer drives the per-file pipeline over a root directory.
type Organizer struct {
	extractor   Extractor
	synthesizer Synthesizer
	history     HistoryRecorder
	collision   string
	lockDir     string
	logger      *slog.Logger
	now         func() time.Time
}

// New constructs an Organizer.
func New(opts Options) (*Organizer, error) {
	if opts.Extractor == nil || opts.Synthesizer == nil {
		return nil, errors.New("organizer requires an extractor and a synthesizer")
	}
	return &Organizer{
		extractor:   opts.Extractor,
		synthesizer: opts.Synthesizer,
		history:     opts.History,
		collision:   opts.Collision,
		lockDir:     opts.LockDir,
		logger:      logging.NewComponentLogger(opts.Logger, "organizer"),
		now:         time.Now,
	}, nil
}

// Organize processes every regular file directly inside root. The returned
// error is non-nil only for root-level failures; per-file failures are in the
// report.
func (o *Organizer) Organize(ctx context.Context, root string, opts RunOptions) (*Report, error) {
	absRoot, err := resolveRoot(root)
	if err != nil {
		return nil, err
	}
	lock, err := acquireRootLock(o.lockDir, absRoot)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := releaseLock(lock); err != nil {
			o.logger.Warn("failed to release organize lock", logging.Error(err))
		}
	}()

	rt, err := router.New(absRoot, o.collision, o.logger)
	if err != nil {
		return nil, err
	}
	return o.pass(ctx, absRoot, rt, opts)
}

func resolveRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", services.Wrap(services.ErrDirectoryNotFound, "organize", "resolve root", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", services.Wrap(services.ErrDirectoryNotFound, "organize", "stat root", abs, err)
	}
	if !info.IsDir() {
		return "", services.Wrap(services.ErrDirectoryNotFound, "organize", "stat root", abs+" is not a directory", nil)
	}
	return abs, nil
}

// ensureCategoryDirs creates the fixed top-level directories under root.
func ensureCategoryDirs(root string) error {
	for _, category := range filetype.All {
		dir := filepath.Join(root, category.Dir())
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return services.Wrap(services.ErrRoute, "organize", "create category directory", dir, err)
		}
	}
	return nil
}

func (o *Organizer) pass(ctx context.Context, root string, rt *router.Router, opts RunOptions) (*Report, error) {
	report := &Report{
		RunID:   uuid.NewString(),
		Root:    root,
		DryRun:  opts.DryRun,
		Started: o.now(),
	}
	ctx = services.WithRunID(ctx, report.RunID)
	logger := logging.WithContext(ctx, o.logger)

	if err := ensureCategoryDirs(root); err != nil {
		report.Finished = o.now()
		return report, err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		report.Finished = o.now()
		return report, services.Wrap(services.ErrDirectoryNotFound, "organize", "list root", root, err)
	}

	logger.Info("organize pass started",
		logging.String("root", root),
		logging.Int("entries", len(entries)),
		logging.Bool("dry_run", opts.DryRun),
	)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			report.Finished = o.now()
			return report, err
		}
		if !o.isRegularFile(root, entry) {
			continue
		}
		report.Outcomes = append(report.Outcomes, o.processFile(ctx, rt, filepath.Join(root, entry.Name()), opts))
	}
	report.Finished = o.now()
	logger.Info("organize pass complete",
		logging.Int("moved", report.Moved()),
		logging.Int("failed", report.Failed()),
		logging.Duration("duration", report.Duration()),
	)
	return report, nil
}

// isRegularFile reports whether entry is a regular file, following symlinks.
func (o *Organizer) isRegularFile(root string, entry fs.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(root, entry.Name()))
	if err != nil || !info.Mode().IsRegular() {
		o.logger.Debug("skipping symlink that does not point to a regular file",
			logging.String(logging.FieldFile, entry.Name()),
		)
		return false
	}
	return true
}

// processFile runs the extract, label, and route chain for one file.
func (o *Organizer) processFile(ctx context.Context, rt *router.Router, path string, opts RunOptions) Outcome {
	name := filepath.Base(path)
	ctx = services.WithFile(ctx, name)
	category := filetype.ForPath(name)
	outcome := Outcome{File: name, Category: category.String()}

	var label string
	if category.Labeled() {
		stageCtx := services.WithStage(ctx, "extract")
		content, err := o.extractor.Extract(stageCtx, path, category)
		if err != nil {
			return o.fail(stageCtx, outcome, err)
		}
		stageCtx = services.WithStage(ctx, "label")
		label, err = o.synthesizer.Synthesize(stageCtx, category, content)
		if err != nil {
			return o.fail(stageCtx, outcome, err)
		}
		outcome.Label = label
	}

	ctx = services.WithStage(ctx, "route")
	decision := router.Decision{Source: path, Category: category, Label: label}
	if opts.DryRun {
		dest, err := rt.Plan(decision)
		if err != nil {
			return o.fail(ctx, outcome, err)
		}
		outcome.Destination = dest
		outcome.Status = StatusPlanned
		logging.WithContext(ctx, o.logger).Info("file planned",
			logging.String("category", outcome.Category),
			logging.String("label", label),
			logging.String("destination", dest),
		)
		return outcome
	}

	res, err := rt.Route(ctx, decision)
	if err != nil {
		return o.fail(ctx, outcome, err)
	}
	outcome.Destination = res.Destination
	outcome.Renamed = res.Renamed
	outcome.Status = StatusMoved
	logging.WithContext(ctx, o.logger).Info("file organized",
		logging.String("category", outcome.Category),
		logging.String("label", label),
		logging.String("destination", res.Destination),
		logging.Bool("renamed", res.Renamed),
	)
	o.record(ctx, path, res.Destination)
	return outcome
}

func (o *Organizer) fail(ctx context.Context, outcome Outcome, err error) Outcome {
	outcome.Status = StatusFailed
	outcome.Err = err
	outcome.Kind = services.FailureKind(err)
	logging.ErrorWithContext(logging.WithContext(ctx, o.logger), "file processing failed", "file_failed",
		logging.String("failure_kind", outcome.Kind),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, failureHint(err)),
		logging.String(logging.FieldImpact, "file left in place"),
	)
	return outcome
}

func failureHint(err error) string {
	switch {
	case errors.Is(err, router.ErrCollision):
		return "a file with the same name already exists; set organize.collision = \"rename\" to keep both"
	case errors.Is(err, router.ErrCrossDevice):
		return "the destination is on another filesystem and the verified copy failed"
	case errors.Is(err, services.ErrConfiguration):
		return "run 'fastfox config validate' and check provider credentials"
	case errors.Is(err, services.ErrExternalTool):
		return "check that the office suite binary is installed and can run headless"
	case errors.Is(err, services.ErrSynthesis):
		return "the inference service failed or returned nothing usable; retry later"
	case errors.Is(err, services.ErrExtraction):
		return "the file may be corrupt or in an unsupported sub-format"
	case errors.Is(err, fs.ErrPermission):
		return "check file and directory permissions"
	default:
		return "check logs for details"
	}
}

func (o *Organizer) record(ctx context.Context, source, destination string) {
	if o.history == nil {
		return
	}
	_, err := o.history.Add(ctx, history.Entry{
		CommandType: history.CommandTypeOrganize,
		Query:       source,
		Response:    destination,
	})
	if err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, o.logger), "failed to record history", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "history database may be locked or read-only"),
			logging.String(logging.FieldImpact, "organize history incomplete"),
		)
	}
}
