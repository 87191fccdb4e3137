package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tzcc/internal/config"
)

// Execute runs the root command and handles top-level error reporting.
// Every failure exits with status 1.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &config.Config{}

	cmd := &cobra.Command{
		Use:   "tzcc [options] < input",
		Short: "Translate timezone names to country codes",
		Long: `tzcc reads "<timestamp>\t<timezone>" lines from standard input and writes
"<timestamp>\t<country-code>" lines to standard output. Linked zone names are
resolved through the tzdata.zi link records, and country codes come from zone.tab.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTzcc(cmd, cfg)
		},
	}

	bindFlags(cmd.Flags(), cfg)

	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	cmd.MarkFlagsMutuallyExclusive("debug", "quiet")

	return cmd
}

func bindFlags(flags *pflag.FlagSet, cfg *config.Config) {
	flags.StringVar(&cfg.ConfigFile, "config", "", "YAML config file (flags override its values)")
	flags.StringVar(&cfg.ZoneInfoDir, "zoneinfo", "", "Zoneinfo directory holding tzdata.zi and zone.tab (default: search system paths)")
	flags.StringVar(&cfg.AliasFile, "tzdata", "", "Link source file (default: <zoneinfo>/tzdata.zi)")
	flags.StringVar(&cfg.ZoneTable, "zonetab", "", "Zone table file (default: <zoneinfo>/zone.tab)")
	flags.Var((*matchModeFlag)(&cfg.Match), "match", "Zone table matching (exact, substring)")
	flags.BoolVar(&cfg.KeepGoing, "keep-going", false, "Skip malformed or unresolvable lines instead of stopping")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Verbose mode")
	flags.BoolVar(&cfg.Debug, "debug", false, "Debug mode")
	flags.BoolVarP(&cfg.Quiet, "quiet", "q", false, "Quiet mode")
	flags.BoolVar(&cfg.Report, "report", false, "Write a run report to stderr")
	flags.StringVar(&cfg.ReportFile, "report-file", "", "Write the run report to a file")
	flags.Var((*reportFormatFlag)(&cfg.ReportFormat), "report-format", "Report format (summary, json, csv)")
}

func runTzcc(cmd *cobra.Command, cfg *config.Config) error {
	if cfg.ConfigFile != "" {
		if err := applyConfigFile(cmd.Flags(), cfg); err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	return executeTzcc(cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// applyConfigFile loads the YAML file and keeps every value that was set
// explicitly on the command line.
func applyConfigFile(flags *pflag.FlagSet, cfg *config.Config) error {
	fileCfg := *cfg
	if err := fileCfg.LoadFile(cfg.ConfigFile); err != nil {
		return err
	}

	keep := func(name string, apply func()) {
		if !flags.Changed(name) {
			apply()
		}
	}
	keep("zoneinfo", func() { cfg.ZoneInfoDir = fileCfg.ZoneInfoDir })
	keep("tzdata", func() { cfg.AliasFile = fileCfg.AliasFile })
	keep("zonetab", func() { cfg.ZoneTable = fileCfg.ZoneTable })
	keep("match", func() { cfg.Match = fileCfg.Match })
	keep("keep-going", func() { cfg.KeepGoing = fileCfg.KeepGoing })
	keep("report", func() { cfg.Report = fileCfg.Report })
	keep("report-file", func() { cfg.ReportFile = fileCfg.ReportFile })
	keep("report-format", func() { cfg.ReportFormat = fileCfg.ReportFormat })

	return nil
}

type matchModeFlag config.MatchMode

func (f *matchModeFlag) String() string {
	return string(*f)
}

func (f *matchModeFlag) Set(v string) error {
	switch config.MatchMode(v) {
	case config.MatchExact, config.MatchSubstring:
		*f = matchModeFlag(v)
		return nil
	default:
		return fmt.Errorf("must be 'exact' or 'substring'")
	}
}

func (f *matchModeFlag) Type() string {
	return "string"
}

type reportFormatFlag config.ReportFormat

func (f *reportFormatFlag) String() string {
	return string(*f)
}

func (f *reportFormatFlag) Set(v string) error {
	switch config.ReportFormat(v) {
	case config.ReportFormatSummary, config.ReportFormatJSON, config.ReportFormatCSV:
		*f = reportFormatFlag(v)
		return nil
	default:
		return fmt.Errorf("must be 'summary', 'json' or 'csv'")
	}
}

func (f *reportFormatFlag) Type() string {
	return "string"
}
