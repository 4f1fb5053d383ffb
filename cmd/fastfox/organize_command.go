package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"fastfox/internal/history"
	"fastfox/internal/organizer"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var watch bool
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "organize <directory>",
		Short: "Sort the files directly inside a directory into topic folders",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.ValidateCredentials(); err != nil {
				return err
			}
			logger, err := ctx.logger(cmd.ErrOrStderr())
			if err != nil {
				return fmt.Errorf("init logging: %w", err)
			}

			var store *history.Store
			if cfg.Organize.RecordHistory && !dryRun {
				store, err = history.Open(cfg)
				if err != nil {
					return err
				}
				defer store.Close()
			}

			org, err := buildOrganizer(cmd.Context(), cfg, store, logger)
			if err != nil {
				return err
			}

			root := args[0]
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			opts := organizer.RunOptions{DryRun: dryRun}

			if watch {
				settle := time.Duration(cfg.Watch.SettleSeconds) * time.Second
				fmt.Fprintf(out, "Watching %s (Ctrl+C to stop)\n", root)
				return org.Watch(cmd.Context(), root, opts, settle, func(o organizer.Outcome) {
					fmt.Fprintln(out, renderOutcomeLine(o, colorize))
				})
			}

			report, err := org.Organize(cmd.Context(), root, opts)
			if err != nil {
				if errors.Is(err, organizer.ErrAlreadyRunning) {
					return fmt.Errorf("%w; wait for it to finish or stop the running watcher", err)
				}
				return err
			}
			writeReport(out, report, colorize)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep running and organize files as they arrive")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show where files would go without moving them")
	return cmd
}

func writeReport(out io.Writer, report *organizer.Report, colorize bool) {
	title := "Organize report"
	if report.DryRun {
		title = "Organize plan (dry run)"
	}
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(out, line)
	}
	if len(report.Outcomes) == 0 {
		fmt.Fprintf(out, "No files to organize in %s\n", report.Root)
		return
	}

	rows := make([][]string, 0, len(report.Outcomes))
	for _, o := range report.Outcomes {
		rows = append(rows, []string{
			o.File,
			o.Category,
			dashIfEmpty(o.Label),
			outcomeTarget(report.Root, o),
			string(o.Status),
		})
	}
	fmt.Fprintln(out, renderTable([]column{
		{title: "File", width: 40},
		{title: "Category"},
		{title: "Label", width: 30},
		{title: "Destination", width: 60},
		{title: "Status"},
	}, rows))

	movedLabel := "Moved"
	if report.DryRun {
		movedLabel = "Planned"
	}
	fmt.Fprintln(out, renderStatusLine(movedLabel, statusOK, strconv.Itoa(report.Moved()), colorize))
	failedKind := statusOK
	if report.Failed() > 0 {
		failedKind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine("Failed", failedKind, strconv.Itoa(report.Failed()), colorize))
	fmt.Fprintln(out, renderStatusLine("Duration", statusInfo, report.Duration().Round(time.Millisecond).String(), colorize))
}

// outcomeTarget shows the destination relative to root, or the failure kind.
func outcomeTarget(root string, o organizer.Outcome) string {
	if o.Status == organizer.StatusFailed {
		return o.Kind + " error"
	}
	if rel, err := filepath.Rel(root, o.Destination); err == nil {
		return rel
	}
	return o.Destination
}

func renderOutcomeLine(o organizer.Outcome, colorize bool) string {
	switch o.Status {
	case organizer.StatusFailed:
		return renderStatusLine(o.File, statusError, fmt.Sprintf("%s: %v", o.Kind, o.Err), colorize)
	case organizer.StatusPlanned:
		return renderStatusLine(o.File, statusInfo, "would move to "+o.Destination, colorize)
	default:
		return renderStatusLine(o.File, statusOK, o.Destination, colorize)
	}
}

func dashIfEmpty(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
