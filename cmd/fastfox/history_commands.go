package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"fastfox/internal/history"
)

const historyCellWidth = 60

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [command|code|organize|all]",
		Short: "List recorded history entries",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scope := history.ScopeAll
			if len(args) == 1 {
				scope = args[0]
			}
			return ctx.withHistory(func(store *history.Store) error {
				var (
					entries []history.Entry
					err     error
				)
				if limit > 0 && scope != history.ScopeAll {
					entries, err = store.Context(cmd.Context(), scope, limit)
				} else {
					entries, err = store.List(cmd.Context(), scope)
					if limit > 0 && len(entries) > limit {
						entries = entries[len(entries)-limit:]
					}
				}
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if len(entries) == 0 {
					fmt.Fprintln(out, "No history entries")
					return nil
				}
				rows := make([][]string, 0, len(entries))
				for _, entry := range entries {
					rows = append(rows, []string{
						strconv.FormatInt(entry.ID, 10),
						entry.CommandType,
						entry.CreatedAt.Local().Format(time.DateTime),
						keepTail(entry.Query, historyCellWidth),
						keepTail(entry.Response, historyCellWidth),
					})
				}
				fmt.Fprintln(out, renderTable([]column{
					{title: "ID", align: alignRight},
					{title: "Type"},
					{title: "When"},
					{title: "Query"},
					{title: "Response"},
				}, rows))
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Show only the most recent entries")
	return cmd
}

func newForgetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "forget <command|code|organize|all>",
		Short: "Delete history entries of one type, or all of them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withHistory(func(store *history.Store) error {
				removed, err := store.Forget(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Forgot %d %s\n", removed, pluralize(removed, "entry", "entries"))
				return nil
			})
		},
	}
}

// keepTail shortens s to width runes by dropping its start, so file names
// at the end of a path stay visible.
func keepTail(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width || width <= 3 {
		return s
	}
	return "..." + string(runes[len(runes)-(width-3):])
}

func pluralize(n int64, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
