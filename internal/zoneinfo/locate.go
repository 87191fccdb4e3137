package zoneinfo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tzcc/internal/config"
	"tzcc/internal/errors"
)

// FileFilter decides whether a candidate file is usable.
type FileFilter func(path string, info os.FileInfo) bool

// Locate returns the first directory in dirs that holds both tzdata.zi
// and zone.tab as regular files.
func Locate(dirs []string) (string, error) {
	filters := []FileFilter{regularFileFilter(), nonEmptyFilter()}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if hasFile(dir, config.AliasFileName, filters) && hasFile(dir, config.ZoneTableName, filters) {
			return filepath.Clean(dir), nil
		}
	}

	msg := fmt.Sprintf("no directory containing %s and %s (searched %s)",
		config.AliasFileName, config.ZoneTableName, strings.Join(dirs, ", "))
	return "", errors.NewFileError("", msg, nil)
}

func hasFile(dir, name string, filters []FileFilter) bool {
	path := filepath.Join(dir, name)
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	for _, filter := range filters {
		if !filter(path, info) {
			return false
		}
	}
	return true
}

func regularFileFilter() FileFilter {
	return func(_ string, info os.FileInfo) bool {
		return info.Mode().IsRegular()
	}
}

func nonEmptyFilter() FileFilter {
	return func(_ string, info os.FileInfo) bool {
		return info.Size() > 0
	}
}
