package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"tzcc/internal/errors"
)

// LoadFile overlays the settings found in a YAML config file onto c.
// Only keys present in the file are applied; callers apply command-line
// flags afterwards so that flags take precedence.
func (c *Config) LoadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapFileError(path, err)
	}

	var y yamlConfig
	if err := yaml.Unmarshal(b, &y); err != nil {
		return errors.NewConfigErrorWithPath(path, "invalid YAML", err)
	}

	t := y.Tzcc
	if t.ZoneInfoDir != "" {
		c.ZoneInfoDir = t.ZoneInfoDir
	}
	if t.TZData != "" {
		c.AliasFile = t.TZData
	}
	if t.ZoneTab != "" {
		c.ZoneTable = t.ZoneTab
	}
	if t.Match != "" {
		c.Match = MatchMode(t.Match)
	}
	if t.KeepGoing != nil {
		c.KeepGoing = *t.KeepGoing
	}
	if t.Report.Enabled != nil {
		c.Report = *t.Report.Enabled
	}
	if t.Report.File != "" {
		c.ReportFile = t.Report.File
	}
	if t.Report.Format != "" {
		c.ReportFormat = ReportFormat(t.Report.Format)
	}

	return nil
}

type yamlConfig struct {
	Tzcc struct {
		ZoneInfoDir string `yaml:"zoneinfo_dir"`
		TZData      string `yaml:"tzdata"`
		ZoneTab     string `yaml:"zonetab"`
		Match       string `yaml:"match"`
		KeepGoing   *bool  `yaml:"keep_going"`

		Report struct {
			Enabled *bool  `yaml:"enabled"`
			File    string `yaml:"file"`
			Format  string `yaml:"format"`
		} `yaml:"report"`
	} `yaml:"tzcc"`
}
