// Package cmd implements the command-line interface of tzcc and wires the
// configuration, timezone tables, resolver, pipeline and report together.
package cmd

import (
	"io"
	"time"

	"tzcc/internal/config"
	"tzcc/internal/log"
	"tzcc/internal/pipeline"
	"tzcc/internal/resolve"
	"tzcc/internal/zoneinfo"
)

// searchDirs is where the zoneinfo directory is looked for when neither
// --zoneinfo nor both file flags are given.
var searchDirs = config.DefaultZoneInfoDirs

func executeTzcc(cfg *config.Config, in io.Reader, out, errOut io.Writer) error {
	startTime := time.Now()

	switch {
	case cfg.ZoneInfoDir != "":
		cfg.ResolvePaths(cfg.ZoneInfoDir)
	case cfg.NeedsDiscovery():
		dir, err := zoneinfo.Locate(searchDirs)
		if err != nil {
			return err
		}
		cfg.ResolvePaths(dir)
	}

	aliases, err := zoneinfo.LoadAliasTable(cfg.AliasFile)
	if err != nil {
		return err
	}

	zones, err := zoneinfo.LoadZoneTable(cfg.ZoneTable)
	if err != nil {
		return err
	}

	logger, err := log.NewLogger(cfg, errOut)
	if err != nil {
		return err
	}
	defer logger.Close()

	logger.LogTables(cfg.AliasFile, aliases.Size(), cfg.ZoneTable, zones.Size())

	resolver := resolve.NewResolver(aliases, resolve.ZoneTableLookup(zones, cfg.Match))
	engine := pipeline.NewEngine(cfg, resolver)

	runErr := engine.Run(in, out, logger.LogResult)

	logger.SetResolverStats(resolver.Stats())
	logger.SetProcessingTime(time.Since(startTime))
	if reportErr := logger.WriteReport(); reportErr != nil && runErr == nil {
		runErr = reportErr
	}

	return runErr
}
