package zoneinfo

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"tzcc/internal/config"
	tzerrors "tzcc/internal/errors"
)

const tzdataFixture = `# version 2024a
# This zic input file is in the public domain.
R u 1918 1919 - Mar lastSu 2 1 D
Z America/New_York -4:56:2 - LMT 1883 N 18 17u
-5 u E%sT 1920
Z Asia/Kolkata 5:53:28 - LMT 1854 Jun 28
5:30 - IST
L Asia/Kolkata Asia/Calcutta
L America/New_York US/Eastern
L Europe/Zurich Europe/Busingen
`

const zoneTabFixture = `# tzdb timezone descriptions (deprecated version)
#
# country-
# code	coordinates	TZ	comments
CH	+4723+00832	Europe/Zurich
DE	+5230+01322	Europe/Berlin	most of Germany
DE	+4742+00841	Europe/Busingen	Busingen
IN	+2232+08822	Asia/Kolkata
US	+404251-0740023	America/New_York	Eastern (most areas)
US	+421953-0830245	America/Detroit	Eastern - MI (most areas)
US	+394421-1045903	America/Denver	Mountain (most areas)
`

func TestParseAliases(t *testing.T) {
	table, err := parseAliases(strings.NewReader(tzdataFixture), "tzdata.zi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Size() != 3 {
		t.Errorf("expected 3 links, got %d", table.Size())
	}

	tests := []struct {
		name string
		want string
	}{
		{"Asia/Calcutta", "Asia/Kolkata"},
		{"US/Eastern", "America/New_York"},
		{"Europe/Busingen", "Europe/Zurich"},
		{"Asia/Kolkata", "Asia/Kolkata"},
		{"Moon/Base", "Moon/Base"},
	}
	for _, tt := range tests {
		if got := table.Canonical(tt.name); got != tt.want {
			t.Errorf("Canonical(%q) = %q, expected %q", tt.name, got, tt.want)
		}
	}

	if _, ok := table.Lookup("Asia/Kolkata"); ok {
		t.Error("a canonical name must not be reported as a link")
	}
}

func TestParseAliasesEdgeCases(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		expectSize  int
	}{
		{
			name:       "no link lines",
			input:      "# comment\nZ Etc/UTC 0 - UTC\n",
			expectSize: 0,
		},
		{
			name:       "marker must be the whole first token",
			input:      "Link Asia/Kolkata Asia/Calcutta\nLx a b\n",
			expectSize: 0,
		},
		{
			name:       "extra whitespace between tokens",
			input:      "L   Asia/Kolkata\t Asia/Calcutta\n",
			expectSize: 1,
		},
		{
			name:       "duplicate linked name keeps last",
			input:      "L Europe/Zurich Europe/Vaduz\nL Europe/Berlin Europe/Vaduz\n",
			expectSize: 1,
		},
		{
			name:        "link with missing target",
			input:       "L Asia/Kolkata\n",
			expectError: true,
		},
		{
			name:        "link with extra field",
			input:       "L Asia/Kolkata Asia/Calcutta extra\n",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := parseAliases(strings.NewReader(tt.input), "tzdata.zi")
			if tt.expectError {
				if !errors.Is(err, tzerrors.ErrParsing) {
					t.Errorf("expected parsing error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if table.Size() != tt.expectSize {
				t.Errorf("expected %d links, got %d", tt.expectSize, table.Size())
			}
		})
	}

	table, err := parseAliases(strings.NewReader("L Europe/Zurich Europe/Vaduz\nL Europe/Berlin Europe/Vaduz\n"), "tzdata.zi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := table.Canonical("Europe/Vaduz"); got != "Europe/Berlin" {
		t.Errorf("expected last write to win, got %q", got)
	}
}

func TestParseAliasesReportsLine(t *testing.T) {
	_, err := parseAliases(strings.NewReader("# c\nL a b\nL broken\n"), "tzdata.zi")
	te, ok := tzerrors.AsToolError(err)
	if !ok {
		t.Fatalf("expected tool error, got %v", err)
	}
	if te.Line != 3 || te.Path != "tzdata.zi" {
		t.Errorf("expected tzdata.zi:3, got %s:%d", te.Path, te.Line)
	}
}

func TestParseZoneTable(t *testing.T) {
	table, err := parseZoneTable(strings.NewReader(zoneTabFixture), "zone.tab")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Size() != 7 {
		t.Fatalf("expected 7 rows, got %d", table.Size())
	}

	got := table.Zones()[1]
	want := Zone{
		CountryCode: "DE",
		Coordinates: "+5230+01322",
		Name:        "Europe/Berlin",
		Comment:     "most of Germany",
		raw:         "DE\t+5230+01322\tEurope/Berlin\tmost of Germany",
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(Zone{})); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}

func TestParseZoneTableErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"only comments", "# nothing\n#\n"},
		{"too few fields", "US\t+404251-0740023\n"},
		{"empty code", "\t+404251-0740023\tAmerica/New_York\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseZoneTable(strings.NewReader(tt.input), "zone.tab")
			if !errors.Is(err, tzerrors.ErrParsing) {
				t.Errorf("expected parsing error, got %v", err)
			}
		})
	}
}

func TestZoneTableLookup(t *testing.T) {
	table, err := parseZoneTable(strings.NewReader(zoneTabFixture), "zone.tab")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name   string
		zone   string
		mode   config.MatchMode
		want   string
		wantOK bool
	}{
		{"exact hit", "America/New_York", config.MatchExact, "US", true},
		{"exact hit with comment column", "Europe/Berlin", config.MatchExact, "DE", true},
		{"exact miss", "Moon/Base", config.MatchExact, "", false},
		{"exact rejects fragment", "America/New", config.MatchExact, "", false},
		{"exact empty name", "", config.MatchExact, "", false},
		{"substring hit", "America/New_York", config.MatchSubstring, "US", true},
		{"substring fragment takes first row", "Europe", config.MatchSubstring, "CH", true},
		{"substring hits comment text", "Busingen", config.MatchSubstring, "DE", true},
		{"substring miss", "Moon/Base", config.MatchSubstring, "", false},
		{"substring ignores header comments", "tzdb", config.MatchSubstring, "", false},
		{"substring empty name", "", config.MatchSubstring, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := table.Lookup(tt.zone, tt.mode)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("Lookup(%q, %s) = (%q, %v), expected (%q, %v)", tt.zone, tt.mode, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNewZoneTableFirstRowWins(t *testing.T) {
	table := NewZoneTable([]Zone{
		{CountryCode: "AA", Name: "Test/Zone"},
		{CountryCode: "BB", Name: "Test/Zone"},
	})

	if got, _ := table.Lookup("Test/Zone", config.MatchExact); got != "AA" {
		t.Errorf("expected first row to win, got %q", got)
	}
	if got, _ := table.Lookup("Test/Zone", config.MatchSubstring); got != "AA" {
		t.Errorf("expected first row to win in substring mode, got %q", got)
	}
}

func TestLoadTablesFromDisk(t *testing.T) {
	dir := writeZoneInfo(t)

	aliases, err := LoadAliasTable(filepath.Join(dir, config.AliasFileName))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if aliases.Canonical("Asia/Calcutta") != "Asia/Kolkata" {
		t.Error("alias not loaded")
	}

	zones, err := LoadZoneTable(filepath.Join(dir, config.ZoneTableName))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code, _ := zones.Lookup("Asia/Kolkata", config.MatchExact); code != "IN" {
		t.Errorf("expected IN, got %q", code)
	}
}

func TestLoadMissingFiles(t *testing.T) {
	dir := t.TempDir()

	var notFound *tzerrors.FileNotFoundError
	if _, err := LoadAliasTable(filepath.Join(dir, "tzdata.zi")); !errors.As(err, &notFound) {
		t.Errorf("expected FileNotFoundError for alias table, got %v", err)
	}
	if _, err := LoadZoneTable(filepath.Join(dir, "zone.tab")); !errors.As(err, &notFound) {
		t.Errorf("expected FileNotFoundError for zone table, got %v", err)
	}
}

func TestLocate(t *testing.T) {
	good := writeZoneInfo(t)

	partial := t.TempDir()
	if err := os.WriteFile(filepath.Join(partial, config.AliasFileName), []byte(tzdataFixture), 0o644); err != nil {
		t.Fatal(err)
	}

	empty := t.TempDir()
	for _, name := range []string{config.AliasFileName, config.ZoneTableName} {
		if err := os.WriteFile(filepath.Join(empty, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	dirAsFile := t.TempDir()
	for _, name := range []string{config.AliasFileName, config.ZoneTableName} {
		if err := os.Mkdir(filepath.Join(dirAsFile, name), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	got, err := Locate([]string{"", filepath.Join(good, "missing"), partial, empty, dirAsFile, good})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != good {
		t.Errorf("expected %q, got %q", good, got)
	}

	_, err = Locate([]string{partial, empty})
	if !errors.Is(err, tzerrors.ErrFile) {
		t.Errorf("expected file error, got %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), partial) {
		t.Errorf("error should list searched directories: %v", err)
	}
}

func writeZoneInfo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, config.AliasFileName), []byte(tzdataFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, config.ZoneTableName), []byte(zoneTabFixture), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}
