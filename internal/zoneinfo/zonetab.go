package zoneinfo

import (
	"bufio"
	"io"
	"os"
	"strings"

	"tzcc/internal/config"
	"tzcc/internal/errors"
)

// Zone is one row of zone.tab.
type Zone struct {
	CountryCode string
	Coordinates string
	Name        string
	Comment     string
	raw         string
}

// ZoneTable holds the rows of zone.tab in file order, indexed by zone name.
type ZoneTable struct {
	zones  []Zone
	byName map[string]int
}

// NewZoneTable builds a table from rows. When a zone name repeats, the
// first row keeps the index entry.
func NewZoneTable(zones []Zone) *ZoneTable {
	zt := &ZoneTable{
		zones:  make([]Zone, len(zones)),
		byName: make(map[string]int, len(zones)),
	}
	copy(zt.zones, zones)

	for i := range zt.zones {
		z := &zt.zones[i]
		if z.raw == "" {
			z.raw = strings.Join([]string{z.CountryCode, z.Coordinates, z.Name, z.Comment}, "\t")
		}
		if _, seen := zt.byName[z.Name]; !seen {
			zt.byName[z.Name] = i
		}
	}

	return zt
}

// Lookup returns the country code for a canonical zone name.
//
// In exact mode the zone-name column must equal name. In substring mode
// the first row, in file order, whose text contains name wins; this may
// hit an unrelated row when name is a fragment of another zone's path.
func (zt *ZoneTable) Lookup(name string, mode config.MatchMode) (string, bool) {
	if name == "" {
		return "", false
	}

	if mode == config.MatchSubstring {
		for _, z := range zt.zones {
			if strings.Contains(z.raw, name) {
				return z.CountryCode, true
			}
		}
		return "", false
	}

	i, ok := zt.byName[name]
	if !ok {
		return "", false
	}
	return zt.zones[i].CountryCode, true
}

// Zones returns the rows in file order.
func (zt *ZoneTable) Zones() []Zone {
	return zt.zones
}

// Size returns the number of rows in the table.
func (zt *ZoneTable) Size() int {
	return len(zt.zones)
}

// LoadZoneTable reads a zone.tab file.
func LoadZoneTable(filePath string) (*ZoneTable, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, errors.WrapFileError(filePath, err)
	}
	defer file.Close()

	return parseZoneTable(file, filePath)
}

func parseZoneTable(reader io.Reader, filePath string) (*ZoneTable, error) {
	var zones []Zone

	scanner := bufio.NewScanner(reader)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 3 {
			return nil, errors.NewParsingError(filePath, lineNum, "zone row needs at least 3 tab-separated fields", nil)
		}

		zone := Zone{
			CountryCode: strings.TrimSpace(fields[0]),
			Coordinates: strings.TrimSpace(fields[1]),
			Name:        strings.TrimSpace(fields[2]),
			raw:         line,
		}
		if len(fields) > 3 {
			zone.Comment = strings.TrimSpace(strings.Join(fields[3:], "\t"))
		}
		if zone.CountryCode == "" || zone.Name == "" {
			return nil, errors.NewParsingError(filePath, lineNum, "zone row has an empty country code or zone name", nil)
		}

		zones = append(zones, zone)
	}

	if err := scanner.Err(); err != nil {
		return nil, errors.NewFileNotReadableError(filePath, err)
	}

	if len(zones) == 0 {
		return nil, errors.NewParsingError(filePath, 0, "no zone rows found", nil)
	}

	return NewZoneTable(zones), nil
}
