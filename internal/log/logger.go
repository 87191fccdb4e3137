// Package log provides diagnostics and run reporting for tzcc.
// Diagnostics go through log/slog to stderr; the optional run report
// summarizes a whole run as text, JSON or CSV.
package log

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"time"

	"tzcc/internal/config"
	"tzcc/internal/errors"
	"tzcc/internal/pipeline"
	"tzcc/internal/resolve"
)

// Entry records a single failed input line.
type Entry struct {
	Line      int    `json:"line"`
	Zone      string `json:"zone,omitempty"`
	ErrorType string `json:"error_type,omitempty"`
	Error     string `json:"error"`
}

// Summary provides aggregate statistics for a run.
type Summary struct {
	AliasFile       string        `json:"alias_file"`
	ZoneTable       string        `json:"zone_table"`
	Aliases         int           `json:"aliases"`
	Zones           int           `json:"zones"`
	Match           string        `json:"match"`
	Records         int           `json:"records"`
	Emitted         int           `json:"emitted"`
	Failed          int           `json:"failed"`
	AliasesResolved int           `json:"aliases_resolved"`
	DistinctZones   int           `json:"distinct_zones"`
	Lookups         int           `json:"lookups"`
	CacheHits       int           `json:"cache_hits"`
	ProcessingTime  time.Duration `json:"processing_time"`
}

// Logger emits diagnostics while a run is in progress and collects what is
// needed for the final report.
type Logger struct {
	config  *config.Config
	diag    *slog.Logger
	writer  io.Writer
	entries []Entry
	summary Summary
}

// NewLogger creates a Logger. Diagnostics are written to stderr; the report
// goes to cfg.ReportFile when set, else to stderr as well.
func NewLogger(cfg *config.Config, stderr io.Writer) (*Logger, error) {
	writer := stderr

	if cfg.ReportFile != "" {
		file, err := os.Create(cfg.ReportFile)
		if err != nil {
			return nil, errors.NewFileError(cfg.ReportFile, "failed to create report file", err)
		}
		writer = file
	}

	return &Logger{
		config:  cfg,
		diag:    NewDiagnostics(cfg, stderr),
		writer:  writer,
		entries: []Entry{},
		summary: Summary{
			Match: string(cfg.Match),
		},
	}, nil
}

// NewDiagnostics builds the slog logger used for progress and warnings.
// Warn is the default level, verbose enables Info, debug enables Debug with
// source locations, and quiet discards everything.
func NewDiagnostics(cfg *config.Config, w io.Writer) *slog.Logger {
	if !cfg.ShouldLog() {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	level := slog.LevelWarn
	addSource := false
	switch {
	case cfg.IsDebug():
		level = slog.LevelDebug
		addSource = true
	case cfg.IsVerbose():
		level = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: addSource,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
				a.Value = slog.StringValue(a.Value.Time().UTC().Format(time.RFC3339Nano))
			}
			return a
		},
	}))
}

// Diagnostics returns the underlying slog logger.
func (l *Logger) Diagnostics() *slog.Logger {
	return l.diag
}

// LogTables records the tables a run loaded.
func (l *Logger) LogTables(aliasFile string, aliases int, zoneTable string, zones int) {
	l.summary.AliasFile = aliasFile
	l.summary.Aliases = aliases
	l.summary.ZoneTable = zoneTable
	l.summary.Zones = zones

	l.diag.Info("tables.loaded",
		"alias_file", aliasFile, "aliases", aliases,
		"zone_table", zoneTable, "zones", zones,
		"match", l.summary.Match)
}

// LogResult records the outcome of one input line.
func (l *Logger) LogResult(result pipeline.RecordResult) {
	l.summary.Records++

	if result.Error != nil {
		l.summary.Failed++
		entry := Entry{
			Line:  result.Line,
			Zone:  result.Record.Zone,
			Error: result.Error.Error(),
		}
		if te, ok := errors.AsToolError(result.Error); ok {
			entry.ErrorType = string(te.Type)
		}
		l.entries = append(l.entries, entry)

		if l.config.KeepGoing {
			l.diag.Warn("record.skipped", "line", result.Line, "error", result.Error.Error())
		}
		return
	}

	l.summary.Emitted++
	if result.Resolution.Aliased {
		l.summary.AliasesResolved++
	}

	l.diag.Debug("record.resolved",
		"line", result.Line,
		"zone", result.Resolution.Input,
		"canonical", result.Resolution.Canonical,
		"country", result.Resolution.CountryCode,
		"cached", result.Resolution.Cached)
}

// SetResolverStats copies the resolver counters into the summary.
func (l *Logger) SetResolverStats(stats resolve.Stats) {
	l.summary.Lookups = stats.Lookups
	l.summary.CacheHits = stats.CacheHits
	l.summary.DistinctZones = stats.DistinctZones
}

// SetProcessingTime records the total run duration.
func (l *Logger) SetProcessingTime(duration time.Duration) {
	l.summary.ProcessingTime = duration
}

// Summary returns the statistics collected so far.
func (l *Logger) Summary() Summary {
	return l.summary
}

// WriteReport writes the run report in the configured format. It is a
// no-op unless reporting is enabled.
func (l *Logger) WriteReport() error {
	l.diag.Info("run.finished",
		"records", l.summary.Records,
		"emitted", l.summary.Emitted,
		"failed", l.summary.Failed,
		"lookups", l.summary.Lookups,
		"cache_hits", l.summary.CacheHits,
		"elapsed", l.summary.ProcessingTime)

	if !l.config.Report {
		return nil
	}

	switch l.config.ReportFormat {
	case config.ReportFormatJSON:
		return l.writeJSONReport()
	case config.ReportFormatCSV:
		return l.writeCSVReport()
	default:
		return l.writeSummaryReport()
	}
}

func (l *Logger) writeJSONReport() error {
	report := struct {
		Summary Summary `json:"summary"`
		Errors  []Entry `json:"errors"`
	}{
		Summary: l.summary,
		Errors:  l.entries,
	}

	encoder := json.NewEncoder(l.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func (l *Logger) writeCSVReport() error {
	writer := csv.NewWriter(l.writer)

	if err := writer.Write([]string{"line", "zone", "error_type", "error"}); err != nil {
		return err
	}
	for _, entry := range l.entries {
		record := []string{strconv.Itoa(entry.Line), entry.Zone, entry.ErrorType, entry.Error}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	fmt.Fprintf(l.writer, "# tzcc CSV Report (match: %s)\n", l.summary.Match)
	fmt.Fprintf(l.writer, "# Records: %d\n", l.summary.Records)
	fmt.Fprintf(l.writer, "# Emitted: %d\n", l.summary.Emitted)
	fmt.Fprintf(l.writer, "# Failed: %d\n", l.summary.Failed)
	fmt.Fprintf(l.writer, "# Aliases resolved: %d\n", l.summary.AliasesResolved)
	fmt.Fprintf(l.writer, "# Distinct zones: %d\n", l.summary.DistinctZones)
	fmt.Fprintf(l.writer, "# Lookups: %d\n", l.summary.Lookups)
	fmt.Fprintf(l.writer, "# Cache hits: %d\n", l.summary.CacheHits)
	fmt.Fprintf(l.writer, "# Processing time: %v\n", l.summary.ProcessingTime)

	return nil
}

func (l *Logger) writeSummaryReport() error {
	fmt.Fprintf(l.writer, "\n=== tzcc Summary (match: %s) ===\n", l.summary.Match)
	fmt.Fprintf(l.writer, "Alias file: %s (%d links)\n", l.summary.AliasFile, l.summary.Aliases)
	fmt.Fprintf(l.writer, "Zone table: %s (%d zones)\n", l.summary.ZoneTable, l.summary.Zones)
	fmt.Fprintf(l.writer, "Records: %d\n", l.summary.Records)
	fmt.Fprintf(l.writer, "Emitted: %d\n", l.summary.Emitted)
	fmt.Fprintf(l.writer, "Failed: %d\n", l.summary.Failed)
	fmt.Fprintf(l.writer, "Aliases resolved: %d\n", l.summary.AliasesResolved)
	fmt.Fprintf(l.writer, "Distinct zones: %d\n", l.summary.DistinctZones)
	fmt.Fprintf(l.writer, "Lookups: %d (cache hits: %d)\n", l.summary.Lookups, l.summary.CacheHits)
	fmt.Fprintf(l.writer, "Processing time: %v\n", l.summary.ProcessingTime)

	if len(l.entries) > 0 {
		fmt.Fprintf(l.writer, "\nErrors encountered:\n")
		for _, entry := range l.entries {
			fmt.Fprintf(l.writer, "  line %d: %s\n", entry.Line, entry.Error)
		}
	}

	return nil
}

// Close releases the report file, if one was opened.
func (l *Logger) Close() error {
	if l.config.ReportFile == "" {
		return nil
	}
	if closer, ok := l.writer.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
