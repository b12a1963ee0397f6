package main

import (
	"bufio"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CaptShanks/nodeprism/internal/history"
	"github.com/CaptShanks/nodeprism/internal/report"
	"github.com/CaptShanks/nodeprism/internal/tui"
)

type historyOpts struct {
	*rootOpts
}

func newHistory(parent *rootOpts) *historyOpts {
	return &historyOpts{rootOpts: parent}
}

func (opts *historyOpts) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List, view or clear saved comparisons",
	}
	cmd.AddCommand(
		newHistoryList(opts).Command(),
		newHistoryView(opts).Command(),
		newHistoryClear(opts).Command(),
	)
	return cmd
}

// history list

type historyListOpts struct {
	*historyOpts
	differs   bool
	identical bool
}

func newHistoryList(parent *historyOpts) *historyListOpts {
	return &historyListOpts{historyOpts: parent}
}

func (opts *historyListOpts) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved comparisons, newest first",
		RunE:  opts.RunE,
	}
	cmd.Flags().BoolVar(&opts.differs, "differs", false, "only comparisons that found differences")
	cmd.Flags().BoolVar(&opts.identical, "identical", false, "only comparisons of identical documents")
	return cmd
}

func (opts *historyListOpts) RunE(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return errorWantedNoArgs
	}
	if err := checkAtMostOne("--differs, --identical", opts.differs, opts.identical); err != nil {
		return err
	}
	filter := ""
	switch {
	case opts.differs:
		filter = history.StatusDiffers
	case opts.identical:
		filter = history.StatusIdentical
	}

	store, err := opts.historyStore()
	if err != nil {
		return err
	}
	entries, err := store.List(filter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintf(out, "No history files found in %s\n", store.Dir)
		if filter != "" {
			fmt.Fprintf(out, "(filtered by: %s)\n", filter)
		}
		return nil
	}

	fmt.Fprintf(out, "History files in %s:\n\n", store.Dir)
	fmt.Fprintf(out, "%3s  %-19s  %-40s  %s\n", "#", "TIMESTAMP", "COMPARISON", "STATUS")
	fmt.Fprintln(out, strings.Repeat("-", 78))
	for i, entry := range entries {
		fmt.Fprintf(out, "%3d  %s\n", i+1, tui.FormatEntryColored(entry))
	}

	if store.MaxFiles > 0 {
		fmt.Fprintf(out, "\nTotal: %d entries (max: %d)\n", len(entries), store.MaxFiles)
	} else {
		fmt.Fprintf(out, "\nTotal: %d entries\n", len(entries))
	}
	fmt.Fprintln(out, "\nUse 'nodeprism history view <#>' to view a specific entry")
	return nil
}

// history view

type historyViewOpts struct {
	*historyOpts
	print  bool
	format string
}

func newHistoryView(parent *historyOpts) *historyViewOpts {
	return &historyViewOpts{historyOpts: parent}
}

func (opts *historyViewOpts) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [#|file]",
		Short: "Open a saved comparison; without an argument pick one interactively",
		Example: makeExample(
			"nodeprism history view",
			"nodeprism history view 1 --print",
			"nodeprism history view 2 --format text",
		),
		RunE: opts.RunE,
	}
	cmd.Flags().BoolVar(&opts.print, "print", false, "print a colored summary instead of opening the browser")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "write the saved result to stdout as text, json or yaml")
	return cmd
}

func (opts *historyViewOpts) RunE(cmd *cobra.Command, args []string) error {
	if len(args) > 1 {
		return newUsageError("expected at most one history entry")
	}
	var format report.Format
	if opts.format != "" {
		f, err := report.ParseFormat(opts.format)
		if err != nil {
			return newUsageError(err.Error())
		}
		format = f
	}

	store, err := opts.historyStore()
	if err != nil {
		return err
	}

	var path string
	if len(args) == 0 {
		entries, err := store.List("")
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No history files found in %s\n", store.Dir)
			return nil
		}
		path, err = tui.RunPicker(entries)
		if err != nil {
			return err
		}
		if path == "" {
			return nil
		}
	} else {
		path, err = store.Resolve(args[0])
		if err != nil {
			return err
		}
	}

	res, err := store.Load(path)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case format != "":
		return report.Write(out, res, format, report.Options{Details: true})
	case opts.print:
		tui.ForceColor()
		tui.PrintResult(out, res)
		return nil
	default:
		return tui.Run(res, tui.Options{Title: entryTitle(path), Checker: opts.updateChecker()})
	}
}

func entryTitle(path string) string {
	e, err := history.EntryFor(path)
	if err != nil {
		return filepath.Base(path)
	}
	return e.Label + " (" + e.Timestamp.Format("2006-01-02 15:04") + ")"
}

// history clear

type historyClearOpts struct {
	*historyOpts
	yes bool
}

func newHistoryClear(parent *historyOpts) *historyClearOpts {
	return &historyClearOpts{historyOpts: parent}
}

func (opts *historyClearOpts) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all saved comparisons",
		RunE:  opts.RunE,
	}
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (opts *historyClearOpts) RunE(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return errorWantedNoArgs
	}
	store, err := opts.historyStore()
	if err != nil {
		return err
	}
	entries, err := store.List("")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No history files to clear.")
		return nil
	}

	if !opts.yes {
		fmt.Fprintf(out, "This will delete %d history files from %s\n", len(entries), store.Dir)
		fmt.Fprint(out, "Are you sure? (y/N): ")
		response, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if strings.ToLower(strings.TrimSpace(response)) != "y" {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	deleted, err := store.Clear()
	fmt.Fprintf(out, "Deleted %d history files.\n", deleted)
	return err
}

func makeExample(examples ...string) string {
	var buf strings.Builder
	for _, ex := range examples {
		fmt.Fprintf(&buf, "  %s\n", ex)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}
