// Package config provides configuration management and validation for tzcc.
// It centralizes all command-line options and runtime settings, providing
// validation logic to catch configuration errors before any input is read.
package config

import (
	"path/filepath"

	"tzcc/internal/errors"
)

// MatchMode selects how a canonical timezone name is matched against the
// rows of the zone table.
type MatchMode string

// Supported match modes. Exact compares the zone-name column for equality;
// substring returns the first row whose raw text contains the name, which is
// how a grep over zone.tab behaves.
const (
	MatchExact     MatchMode = "exact"
	MatchSubstring MatchMode = "substring"
)

// ReportFormat represents the supported output formats for the run report.
type ReportFormat string

// Supported report format constants.
const (
	ReportFormatSummary ReportFormat = "summary"
	ReportFormatJSON    ReportFormat = "json"
	ReportFormatCSV     ReportFormat = "csv"
)

// Default file names inside a zoneinfo directory.
const (
	AliasFileName = "tzdata.zi"
	ZoneTableName = "zone.tab"
)

// DefaultZoneInfoDirs lists the directories searched for the timezone
// database when no explicit location is configured, in priority order.
var DefaultZoneInfoDirs = []string{
	"/usr/share/zoneinfo",
	"/usr/lib/zoneinfo",
	"/usr/share/lib/zoneinfo",
}

// Config holds all runtime configuration options for a tzcc run.
type Config struct {
	ConfigFile   string
	ZoneInfoDir  string
	AliasFile    string
	ZoneTable    string
	Match        MatchMode
	KeepGoing    bool
	Verbose      bool
	Debug        bool
	Quiet        bool
	Report       bool
	ReportFile   string
	ReportFormat ReportFormat
}

// Validate checks the settings and fills in defaults. Paths are made
// absolute so error messages always name the file that was actually opened.
func (c *Config) Validate() error {
	if err := c.validateMatchMode(); err != nil {
		return err
	}

	if err := c.validateReportFormat(); err != nil {
		return err
	}

	if err := c.validatePaths(); err != nil {
		return err
	}

	c.normalizeConfig()
	return nil
}

func (c *Config) validateMatchMode() error {
	if c.Match != "" && c.Match != MatchExact && c.Match != MatchSubstring {
		return errors.NewConfigError("match mode must be 'exact' or 'substring'", nil)
	}
	return nil
}

func (c *Config) validateReportFormat() error {
	switch c.ReportFormat {
	case "", ReportFormatSummary, ReportFormatJSON, ReportFormatCSV:
		return nil
	default:
		return errors.NewConfigError("report format must be 'summary', 'json' or 'csv'", nil)
	}
}

func (c *Config) validatePaths() error {
	for _, p := range []*string{&c.ZoneInfoDir, &c.AliasFile, &c.ZoneTable, &c.ReportFile} {
		if *p == "" {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return errors.NewConfigErrorWithPath(*p, "invalid path", err)
		}
		*p = abs
	}
	return nil
}

func (c *Config) normalizeConfig() {
	if c.Match == "" {
		c.Match = MatchExact
	}
	if c.ReportFormat == "" {
		c.ReportFormat = ReportFormatSummary
	}
	if c.ReportFile != "" {
		c.Report = true
	}
}

// NeedsDiscovery reports whether the zoneinfo directory has to be located
// before both database files are known.
func (c *Config) NeedsDiscovery() bool {
	return c.ZoneInfoDir == "" && (c.AliasFile == "" || c.ZoneTable == "")
}

// ResolvePaths fills the alias and zone table paths from dir for whichever
// of them was not set explicitly.
func (c *Config) ResolvePaths(dir string) {
	if c.AliasFile == "" {
		c.AliasFile = filepath.Join(dir, AliasFileName)
	}
	if c.ZoneTable == "" {
		c.ZoneTable = filepath.Join(dir, ZoneTableName)
	}
}

// IsVerbose determines if verbose logging is enabled. Quiet wins.
func (c *Config) IsVerbose() bool {
	return c.Verbose && !c.Quiet
}

// IsDebug determines if debug logging is enabled. Quiet wins.
func (c *Config) IsDebug() bool {
	return c.Debug && !c.Quiet
}

// ShouldLog determines if any diagnostic logging should occur.
func (c *Config) ShouldLog() bool {
	return !c.Quiet
}
