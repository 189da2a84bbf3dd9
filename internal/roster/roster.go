// Package roster parses uploaded roster files (CSV or XLSX) into the
// normalized model the batch workers consume.
package roster

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/tealeg/xlsx/v3"
	"golang.org/x/text/encoding/charmap"

	"rosterforge/internal/model"
)

// ErrNoHeader is returned when the upload lacks the headers a flow requires
var ErrNoHeader = errors.New("roster: required header not found")

// single-column header names accepted for individuals-only rosters
var nameHeaders = []string{"student name", "name", "student", "full name", "member", "person"}

var firstHeaders = []string{"first name", "firstname", "first"}
var lastHeaders = []string{"last name", "lastname", "last", "surname", "family name"}

// ParseNames extracts the flat name list for the individuals-only flow.
// filename decides CSV vs XLSX handling.
func ParseNames(data []byte, filename string) ([]string, error) {
	records, err := readRecords(data, filename)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty roster", ErrNoHeader)
	}
	cols := headerIndex(records[0])

	if idx, ok := findColumn(cols, nameHeaders); ok {
		var names []string
		for _, row := range records[1:] {
			if name := cell(row, idx); name != "" {
				names = append(names, name)
			}
		}
		return names, nil
	}

	// first+last form
	first, okF := findColumn(cols, firstHeaders)
	last, okL := findColumn(cols, lastHeaders)
	if okF && okL {
		var names []string
		for _, row := range records[1:] {
			name := strings.TrimSpace(cell(row, first) + " " + cell(row, last))
			if name != "" {
				names = append(names, name)
			}
		}
		return names, nil
	}

	return nil, fmt.Errorf("%w: expected 'Student Name' (or Name/Student/Full Name) or a 'First Name'+'Last Name' pair", ErrNoHeader)
}

// ParseGroupRows extracts (label, members) rows for the groups and mixed
// flows. Rows without any member are dropped; labels are normalized.
func ParseGroupRows(data []byte, filename string) ([]model.GroupRow, error) {
	records, err := readRecords(data, filename)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty roster", ErrNoHeader)
	}
	cols := headerIndex(records[0])
	groupIdx, okG := findColumn(cols, []string{"group"})
	membersIdx, okM := findColumn(cols, []string{"members"})
	if !okG || !okM {
		return nil, fmt.Errorf("%w: expected 'Group' and 'Members' headers", ErrNoHeader)
	}

	var rows []model.GroupRow
	for _, row := range records[1:] {
		label := NormalizeLabel(cell(row, groupIdx))
		members := splitMembers(cell(row, membersIdx))
		if len(members) == 0 {
			continue
		}
		rows = append(rows, model.GroupRow{Label: label, Members: members})
	}
	return rows, nil
}

// NormalizeLabel collapses numeric-looking group labels: "1.0" -> "1",
// "2.50" -> "2.5". Anything that does not parse as a number passes through
// trimmed.
func NormalizeLabel(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func splitMembers(raw string) []string {
	var members []string
	for _, m := range strings.Split(raw, ",") {
		if m = strings.TrimSpace(m); m != "" {
			members = append(members, m)
		}
	}
	return members
}

// --- record extraction ---

// IsXLSX reports whether the upload should be parsed as a workbook, by
// extension or by the zip magic bytes xlsx files start with.
func IsXLSX(filename string, data []byte) bool {
	if strings.HasSuffix(strings.ToLower(filename), ".xlsx") {
		return true
	}
	return len(data) >= 4 && bytes.Equal(data[:4], []byte{'P', 'K', 0x03, 0x04})
}

func readRecords(data []byte, filename string) ([][]string, error) {
	if IsXLSX(filename, data) {
		return readXLSX(data)
	}
	return readCSV(data)
}

func readCSV(data []byte) ([][]string, error) {
	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = sniffDelimiter(text)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("roster: parse csv: %w", err)
	}
	// drop fully blank lines
	var out [][]string
	for _, rec := range records {
		blank := true
		for _, c := range rec {
			if strings.TrimSpace(c) != "" {
				blank = false
				break
			}
		}
		if !blank {
			out = append(out, rec)
		}
	}
	return out, nil
}

func readXLSX(data []byte) ([][]string, error) {
	wb, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, fmt.Errorf("roster: parse xlsx: %w", err)
	}
	if len(wb.Sheets) == 0 {
		return nil, errors.New("roster: workbook has no sheets")
	}
	sheet := wb.Sheets[0]
	var records [][]string
	err = sheet.ForEachRow(func(row *xlsx.Row) error {
		var rec []string
		blank := true
		cellErr := row.ForEachCell(func(c *xlsx.Cell) error {
			v := strings.TrimSpace(c.String())
			if v != "" {
				blank = false
			}
			rec = append(rec, v)
			return nil
		})
		if cellErr != nil {
			return cellErr
		}
		if !blank {
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("roster: read xlsx rows: %w", err)
	}
	return records, nil
}

// decodeText tries UTF-8 first (BOM tolerated), then the two legacy
// single-byte encodings the uploads have historically arrived in.
func decodeText(data []byte) (string, error) {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return string(data), nil
	}
	if s, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil {
		return string(s), nil
	}
	if s, err := charmap.ISO8859_1.NewDecoder().Bytes(data); err == nil {
		return string(s), nil
	}
	return "", errors.New("roster: could not decode file (tried UTF-8, cp1252, latin-1)")
}

// sniffDelimiter picks the candidate separator occurring most often in the
// header line. Only the header is sampled: data cells may contain
// comma-joined member lists that would skew the count.
func sniffDelimiter(text string) rune {
	header := text
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		header = text[:i]
	}
	best := ','
	bestCount := strings.Count(header, ",")
	for _, d := range []rune{';', '\t', '|'} {
		if n := strings.Count(header, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// --- header helpers ---

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, taken := cols[key]; !taken {
			cols[key] = i
		}
	}
	return cols
}

func findColumn(cols map[string]int, candidates []string) (int, bool) {
	for _, c := range candidates {
		if idx, ok := cols[c]; ok {
			return idx, true
		}
	}
	return 0, false
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
