package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/spf13/cobra"

	"github.com/CaptShanks/nodeprism/internal/compare"
	"github.com/CaptShanks/nodeprism/internal/document"
	"github.com/CaptShanks/nodeprism/internal/history"
	"github.com/CaptShanks/nodeprism/internal/report"
	"github.com/CaptShanks/nodeprism/internal/tui"
)

type compareOpts struct {
	*rootOpts
	output      string
	format      string
	details     bool
	print       bool
	tui         bool
	noNormalize bool
	noHistory   bool
}

func newCompare(parent *rootOpts) *compareOpts {
	return &compareOpts{rootOpts: parent}
}

func (opts *compareOpts) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nodeprism <file1> <file2> [output]",
		Short: "Compare the nodes of two model documents",
		Args:  compareArgs,
		RunE:  opts.RunE,
	}
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default compare_<file1>_vs_<file2>_results.<ext>)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", string(report.FormatText), "output format: text, json or yaml (default inferred from the output extension)")
	cmd.Flags().BoolVar(&opts.details, "details", false, "list the differing fields of shared nodes in the text report")
	cmd.Flags().BoolVar(&opts.print, "print", false, "also print a colored summary to stdout")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "browse the result interactively after writing it")
	cmd.Flags().BoolVar(&opts.noNormalize, "no-normalize", false, "compare nodeid, nodegroup_id and alias values exactly as written")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "do not save this comparison to history")
	return cmd
}

func compareArgs(_ *cobra.Command, args []string) error {
	if len(args) < 2 {
		return newUsageError("expected two model files to compare")
	}
	if len(args) > 3 {
		return newUsageError(fmt.Sprintf("expected at most three arguments, got %d", len(args)))
	}
	if args[0] == "-" && args[1] == "-" {
		return newUsageError("only one of the two model files can be read from stdin")
	}
	return nil
}

func (opts *compareOpts) RunE(cmd *cobra.Command, args []string) error {
	if len(args) == 3 && opts.output != "" {
		return newUsageError("output path given both as an argument and with --output")
	}
	outPath := opts.output
	if len(args) == 3 {
		outPath = args[2]
	}

	format, err := opts.outputFormat(cmd, outPath)
	if err != nil {
		return err
	}
	if outPath == "" {
		outPath = report.OutputFilename(args[0], args[1], format)
	}

	first, err := document.LoadFrom(args[0], cmd.InOrStdin())
	if err != nil {
		return err
	}
	second, err := document.LoadFrom(args[1], cmd.InOrStdin())
	if err != nil {
		return err
	}

	res := compare.Compare(first, second, compare.Options{
		Normalize:      opts.cfg.Compare.Normalize && !opts.noNormalize,
		IdentityFields: opts.cfg.Compare.IdentityFields,
		Logger:         log.With(opts.logger, "component", "compare"),
	})

	if err := writeResult(outPath, res, format, report.Options{Details: opts.details}); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Results written to %s\n", outPath)

	if opts.cfg.History.Enabled && !opts.noHistory {
		opts.saveHistory(args[0], args[1], res)
	}

	if opts.print {
		tui.ForceColor()
		fmt.Fprintln(out)
		tui.PrintResult(out, res)
	}
	if opts.tui {
		title := filepath.Base(args[0]) + " ⇄ " + filepath.Base(args[1])
		return tui.Run(res, tui.Options{Title: title, Checker: opts.updateChecker()})
	}
	return nil
}

// outputFormat resolves --format, falling back to the output file extension
// when the flag was not given.
func (opts *compareOpts) outputFormat(cmd *cobra.Command, outPath string) (report.Format, error) {
	if !cmd.Flags().Changed("format") && outPath != "" {
		if f, err := report.ParseFormat(strings.TrimPrefix(filepath.Ext(outPath), ".")); err == nil {
			return f, nil
		}
	}
	f, err := report.ParseFormat(opts.format)
	if err != nil {
		return "", newUsageError(err.Error())
	}
	return f, nil
}

func writeResult(path string, res *compare.Result, format report.Format, ro report.Options) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := report.Write(f, res, format, ro); err != nil {
		f.Close()
		return fmt.Errorf("failed to write results: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// saveHistory records the result; failures are logged, never fatal
func (opts *compareOpts) saveHistory(file1, file2 string, res *compare.Result) {
	store, err := opts.historyStore()
	if err != nil {
		level.Warn(opts.logger).Log("msg", "history disabled", "err", err)
		return
	}
	if _, err := store.Save(history.Label(file1, file2), res, time.Now()); err != nil {
		level.Warn(opts.logger).Log("msg", "failed to save history", "err", err)
		return
	}
	if n, err := store.Cleanup(); err != nil {
		level.Warn(opts.logger).Log("msg", "failed to prune history", "err", err)
	} else if n > 0 {
		level.Info(opts.logger).Log("msg", "pruned history", "deleted", n)
	}
}
