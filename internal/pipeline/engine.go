// Package pipeline provides the middleware-based record pipeline of tzcc.
// Each input line passes through parse, alias and country stages before the
// translated record is written, preserving input order.
package pipeline

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"tzcc/internal/config"
	"tzcc/internal/errors"
	"tzcc/internal/resolve"
)

// MaxLineSize caps the length of one input line.
const MaxLineSize = 1 << 20

// Record is one parsed input line.
type Record struct {
	Timestamp string
	Zone      string
}

// RecordResult is the outcome of pushing one line through the pipeline.
type RecordResult struct {
	Line       int
	Record     Record
	Resolution resolve.Resolution
	Output     string
	Error      error
}

// Middleware defines a processing step in the record pipeline.
type Middleware func(RecordContext) RecordContext

// RecordContext carries state through the pipeline for a single line.
type RecordContext struct {
	LineNum    int
	Text       string
	Resolver   *resolve.Resolver
	Record     Record
	Resolution resolve.Resolution
	Error      error
}

// Engine runs input lines through a middleware pipeline.
type Engine struct {
	config     *config.Config
	resolver   *resolve.Resolver
	middleware []Middleware
}

// NewEngine creates an engine with the standard parse → alias → country
// pipeline.
func NewEngine(cfg *config.Config, resolver *resolve.Resolver) *Engine {
	engine := &Engine{
		config:     cfg,
		resolver:   resolver,
		middleware: []Middleware{},
	}

	engine.Use(parseRecordMiddleware)
	engine.Use(resolveAliasMiddleware)
	engine.Use(resolveCountryMiddleware)

	return engine
}

// Use appends a middleware to the pipeline.
func (e *Engine) Use(middleware Middleware) {
	e.middleware = append(e.middleware, middleware)
}

// ProcessLine runs a single line through the pipeline. lineNum is 1-based
// and only used for error context.
func (e *Engine) ProcessLine(lineNum int, text string) RecordResult {
	ctx := RecordContext{
		LineNum:  lineNum,
		Text:     text,
		Resolver: e.resolver,
	}

	for _, mw := range e.middleware {
		ctx = mw(ctx)
		if ctx.Error != nil {
			break
		}
	}

	result := RecordResult{
		Line:       lineNum,
		Record:     ctx.Record,
		Resolution: ctx.Resolution,
		Error:      ctx.Error,
	}
	if ctx.Error == nil {
		result.Output = FormatRecord(ctx.Record.Timestamp, ctx.Resolution.CountryCode)
	}
	return result
}

// Run reads lines from in until EOF and writes one translated line to out
// per successful record. observe, when non-nil, sees every result in input
// order. Without KeepGoing the first failing line stops the run; with it,
// failing lines are skipped and Run reports how many failed. Output written
// before a failure is always flushed.
func (e *Engine) Run(in io.Reader, out io.Writer, observe func(RecordResult)) (err error) {
	w := bufio.NewWriter(out)
	defer func() {
		if flushErr := w.Flush(); flushErr != nil && err == nil {
			err = errors.NewFileError("stdout", "failed to write output", flushErr)
		}
	}()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)

	lineNum := 0
	failed := 0
	var firstErr error

	for scanner.Scan() {
		lineNum++
		result := e.ProcessLine(lineNum, scanner.Text())
		if observe != nil {
			observe(result)
		}

		if result.Error != nil {
			if !e.keepGoing() {
				return result.Error
			}
			failed++
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}

		if _, werr := w.WriteString(result.Output); werr != nil {
			return errors.NewFileError("stdout", "failed to write output", werr)
		}
	}

	if scanErr := scanner.Err(); scanErr != nil {
		return errors.NewInputError(lineNum+1, "failed to read input", scanErr)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d records failed, first: %w", failed, lineNum, firstErr)
	}
	return nil
}

func (e *Engine) keepGoing() bool {
	return e.config != nil && e.config.KeepGoing
}

// FormatRecord renders an output line.
func FormatRecord(timestamp, countryCode string) string {
	return timestamp + "\t" + countryCode + "\n"
}

// ParseRecord splits an input line into its timestamp and zone fields.
// Surrounding whitespace is ignored; exactly one tab must separate the two
// fields.
func ParseRecord(text string) (Record, error) {
	fields := strings.Split(strings.TrimSpace(text), "\t")
	if len(fields) != 2 {
		return Record{}, fmt.Errorf("expected 2 tab-separated fields, got %d", len(fields))
	}
	return Record{Timestamp: fields[0], Zone: fields[1]}, nil
}

func parseRecordMiddleware(ctx RecordContext) RecordContext {
	record, err := ParseRecord(ctx.Text)
	if err != nil {
		ctx.Error = errors.NewInputError(ctx.LineNum, "malformed record", err)
		return ctx
	}
	ctx.Record = record
	return ctx
}

func resolveAliasMiddleware(ctx RecordContext) RecordContext {
	ctx.Resolution.Input = ctx.Record.Zone
	ctx.Resolution.Canonical = ctx.Resolver.Canonical(ctx.Record.Zone)
	ctx.Resolution.Aliased = ctx.Resolution.Canonical != ctx.Record.Zone
	return ctx
}

func resolveCountryMiddleware(ctx RecordContext) RecordContext {
	code, cached, err := ctx.Resolver.LookupCountry(ctx.Resolution.Canonical)
	if err != nil {
		if te, ok := errors.AsToolError(err); ok && te.Line == 0 {
			te.Line = ctx.LineNum
		}
		ctx.Error = err
		return ctx
	}

	ctx.Resolution.CountryCode = code
	ctx.Resolution.Cached = cached
	return ctx
}
