package main

import (
	"fmt"
	"strings"

	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/log/level"
	"github.com/spf13/cobra"

	"github.com/CaptShanks/nodeprism/internal/config"
	"github.com/CaptShanks/nodeprism/internal/history"
	"github.com/CaptShanks/nodeprism/internal/logging"
	"github.com/CaptShanks/nodeprism/internal/tui"
	"github.com/CaptShanks/nodeprism/internal/updater"
)

type rootOpts struct {
	configPath string
	logLevel   string

	cfg    *config.Config
	logger log.Logger
}

func newRoot() *rootOpts {
	return &rootOpts{logger: log.NewNopLogger()}
}

var rootLongHelp = strings.TrimSpace(`
nodeprism compares two model documents node by node, matching nodes on their
nodeid, and reports the nodes found only in one file and the fields that
differ between nodes present in both.

Workflow:
  nodeprism old_model.json new_model.json           # Write compare_old_model_vs_new_model_results.txt
  nodeprism old.json new.json diff.txt --details    # Choose the output file, list changed fields
  nodeprism old.json new.json --format json --tui   # Structured output, then browse interactively
  nodeprism history view 1                          # Reopen the most recent comparison
`)

func (opts *rootOpts) Command() *cobra.Command {
	compare := newCompare(opts)
	cmd := compare.Command()
	cmd.Long = rootLongHelp
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.PersistentPreRunE = opts.PersistentPreRunE

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "",
		fmt.Sprintf("config file (default ~/%s/%s)", config.AppDir, config.FileName))
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "",
		"diagnostic log level on stderr: debug, info, warn, error or none (default from config, else warn)")

	cmd.AddCommand(
		newHistory(opts).Command(),
		newVersionCommand(opts),
		newUpgradeCommand(),
	)
	return cmd
}

func (opts *rootOpts) PersistentPreRunE(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}

	lvl := cfg.Log.Level
	if cmd.Flags().Changed("log-level") {
		lvl = opts.logLevel
	}
	logger, err := logging.New(cmd.ErrOrStderr(), lvl)
	if err != nil {
		return newUsageError(err.Error())
	}

	for _, w := range cfg.Validate() {
		level.Warn(logger).Log("msg", "invalid configuration", "warning", w)
	}

	opts.cfg = cfg
	opts.logger = logger
	tui.ApplyTheme(cfg.Theme)
	return nil
}

// historyStore opens the configured history directory
func (opts *rootOpts) historyStore() (*history.Store, error) {
	dir, err := opts.cfg.HistoryDir()
	if err != nil {
		return nil, err
	}
	return history.NewStore(dir, opts.cfg.History.MaxFiles, log.With(opts.logger, "component", "history")), nil
}

// updateChecker returns nil when update checks are disabled
func (opts *rootOpts) updateChecker() *updater.Checker {
	if opts.cfg.SkipUpdateCheck {
		return nil
	}
	dir, err := config.Dir()
	if err != nil {
		level.Debug(opts.logger).Log("msg", "update check disabled", "err", err)
		return nil
	}
	return updater.NewChecker(version, dir, opts.cfg.UpdateCheckInterval)
}
