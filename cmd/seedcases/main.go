// Command seedcases converts the parse case catalog workbook into a SQL seed
// file. Reads the Parse_Cases sheet (case definitions) and the Attributes
// sheet (per-case attribute locators).
// Usage: go run ./cmd/seedcases [workbook.xlsx]
// Output: db/seeds/parse_cases.sql
package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

type caseEntry struct {
	name        string
	formatType  string
	priority    int
	active      bool
	description string
}

type attrEntry struct {
	caseName    string
	name        string
	locator     string
	dataType    string
	required    bool
	position    int
	description string
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	xlsxPath := "parse_case_catalog.xlsx"
	if len(os.Args) > 1 {
		xlsxPath = os.Args[1]
	}
	outPath := "db/seeds/parse_cases.sql"

	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	cases, err := parseCaseSheet(f)
	if err != nil {
		return fmt.Errorf("parse Parse_Cases sheet: %w", err)
	}
	log.Printf("Parse_Cases sheet: %d cases", len(cases))

	attrs, err := parseAttributeSheet(f)
	if err != nil {
		return fmt.Errorf("parse Attributes sheet: %w", err)
	}
	log.Printf("Attributes sheet: %d attributes", len(attrs))

	caseNames := make(map[string]bool, len(cases))
	for _, c := range cases {
		caseNames[c.name] = true
	}
	for _, a := range attrs {
		if !caseNames[a.caseName] {
			return fmt.Errorf("attribute %q references unknown parse case %q", a.name, a.caseName)
		}
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer func() { _ = out.Close() }()

	if err := writeSeed(out, cases, attrs); err != nil {
		return fmt.Errorf("write seed: %w", err)
	}

	log.Printf("Generated %d cases and %d attributes in %s", len(cases), len(attrs), outPath)
	return nil
}

// parseCaseSheet reads the Parse_Cases sheet.
// Columns: A=name, B=format, C=priority, D=active, E=description.
// Data starts at row index 1 (row 0 is the header).
func parseCaseSheet(f *excelize.File) ([]caseEntry, error) {
	rows, err := f.GetRows("Parse_Cases")
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var entries []caseEntry
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		name := strings.TrimSpace(cellVal(row, 0))
		if name == "" {
			continue
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate parse case %q at row %d", name, i+1)
		}
		seen[name] = true

		priority, _ := strconv.Atoi(strings.TrimSpace(cellVal(row, 2)))
		entries = append(entries, caseEntry{
			name:        name,
			formatType:  strings.ToLower(strings.TrimSpace(cellVal(row, 1))),
			priority:    priority,
			active:      parseBool(cellVal(row, 3)),
			description: strings.TrimSpace(cellVal(row, 4)),
		})
	}
	return entries, nil
}

// parseAttributeSheet reads the Attributes sheet.
// Columns: A=parse_case, B=name, C=locator, D=data_type, E=required,
// F=position, G=description. Data starts at row index 1.
func parseAttributeSheet(f *excelize.File) ([]attrEntry, error) {
	rows, err := f.GetRows("Attributes")
	if err != nil {
		return nil, err
	}

	var entries []attrEntry
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		caseName := strings.TrimSpace(cellVal(row, 0))
		name := strings.TrimSpace(cellVal(row, 1))
		if caseName == "" || name == "" {
			continue
		}

		position, _ := strconv.Atoi(strings.TrimSpace(cellVal(row, 5)))
		entries = append(entries, attrEntry{
			caseName:    caseName,
			name:        name,
			locator:     strings.TrimSpace(cellVal(row, 2)),
			dataType:    strings.ToLower(strings.TrimSpace(cellVal(row, 3))),
			required:    parseBool(cellVal(row, 4)),
			position:    position,
			description: strings.TrimSpace(cellVal(row, 6)),
		})
	}
	return entries, nil
}

func writeSeed(out *os.File, cases []caseEntry, attrs []attrEntry) error {
	var b strings.Builder
	b.WriteString("-- Parse case catalog seed data generated from the workbook.\n")
	fmt.Fprintf(&b, "-- %d cases, %d attributes.\n", len(cases), len(attrs))
	b.WriteString("-- Apply with: psql -f db/seeds/parse_cases.sql\n")
	b.WriteString("BEGIN;\n\n")

	for _, c := range cases {
		fmt.Fprintf(&b,
			"INSERT INTO parse_cases (id, name, format_type, detection_priority, is_active, description)\n"+
				"VALUES (gen_random_uuid(), '%s', '%s', %d, %t, '%s')\n"+
				"ON CONFLICT (name) DO UPDATE SET\n"+
				"  format_type = EXCLUDED.format_type,\n"+
				"  detection_priority = EXCLUDED.detection_priority,\n"+
				"  is_active = EXCLUDED.is_active,\n"+
				"  description = EXCLUDED.description,\n"+
				"  updated_at = now();\n\n",
			escapeSQL(c.name), escapeSQL(c.formatType), c.priority, c.active, escapeSQL(c.description))
	}

	for _, a := range attrs {
		fmt.Fprintf(&b,
			"INSERT INTO attribute_definitions (id, parse_case_id, name, locator, data_type, required, position, description)\n"+
				"VALUES (gen_random_uuid(), (SELECT id FROM parse_cases WHERE name = '%s'), '%s', '%s', '%s', %t, %d, '%s')\n"+
				"ON CONFLICT (parse_case_id, name) DO UPDATE SET\n"+
				"  locator = EXCLUDED.locator,\n"+
				"  data_type = EXCLUDED.data_type,\n"+
				"  required = EXCLUDED.required,\n"+
				"  position = EXCLUDED.position,\n"+
				"  description = EXCLUDED.description;\n\n",
			escapeSQL(a.caseName), escapeSQL(a.name), escapeSQL(a.locator),
			escapeSQL(a.dataType), a.required, a.position, escapeSQL(a.description))
	}

	b.WriteString("COMMIT;\n")

	_, err := out.WriteString(b.String())
	return err
}

func cellVal(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		return true
	default:
		return false
	}
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
