// Package zoneinfo loads the two system timezone tables tzcc depends on:
// the link records of the compact tzdata.zi source, which map deprecated or
// alternate zone names to canonical ones, and zone.tab, which maps canonical
// zone names to ISO 3166 country codes.
package zoneinfo

import (
	"bufio"
	"io"
	"os"
	"strings"

	"tzcc/internal/errors"
)

// linkMarker is the first token of a link line in tzdata.zi:
//
//	L <canonical> <linked>
const linkMarker = "L"

// AliasTable maps linked zone names to their canonical names.
// It is immutable once built.
type AliasTable struct {
	links map[string]string
}

// NewAliasTable builds a table from linked → canonical pairs.
func NewAliasTable(links map[string]string) *AliasTable {
	m := make(map[string]string, len(links))
	for linked, canonical := range links {
		m[linked] = canonical
	}
	return &AliasTable{links: m}
}

// Canonical returns the canonical name for name, or name itself when it is
// not a known link.
func (at *AliasTable) Canonical(name string) string {
	if canonical, ok := at.links[name]; ok {
		return canonical
	}
	return name
}

// Lookup returns the canonical name for a linked name and whether a link
// exists at all.
func (at *AliasTable) Lookup(name string) (string, bool) {
	canonical, ok := at.links[name]
	return canonical, ok
}

// Size returns the number of links in the table.
func (at *AliasTable) Size() int {
	return len(at.links)
}

// LoadAliasTable reads the link records of a tzdata.zi file.
func LoadAliasTable(filePath string) (*AliasTable, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.WrapFileError(filePath, err)
	}
	defer file.Close()

	return parseAliases(file, filePath)
}

// parseAliases selects the lines whose first whitespace-delimited token is
// the link marker. Each must carry exactly a canonical and a linked name.
// A linked name that appears twice keeps the last canonical name seen.
func parseAliases(reader io.Reader, filePath string) (*AliasTable, error) {
	links := make(map[string]string)

	scanner := bufio.NewScanner(reader)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || fields[0] != linkMarker {
			continue
		}

		if len(fields) != 3 {
			return nil, errors.NewParsingError(filePath, lineNum, "link line must have the form 'L <canonical> <linked>'", nil)
		}

		canonical, linked := fields[1], fields[2]
		links[linked] = canonical
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.NewFileNotReadableError(filePath, err)
	}

	return &AliasTable{links: links}, nil
}
