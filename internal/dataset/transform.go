package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Row is one parsed line of the tab separated draw history.
type Row map[string]any

var intColumns = map[string]struct{}{
	"Tag": {}, "Monat": {}, "Jahr": {},
	"Zahl1": {}, "Zahl2": {}, "Zahl3": {}, "Zahl4": {}, "Zahl5": {}, "Zahl6": {},
	"Zusatzzahl": {}, "Superzahl": {},
}

// ParseRows reads tab separated values with a header line. Empty or
// malformed fields are skipped, the row itself is kept. Tag, Monat and Jahr
// are replaced by a single date field.
func ParseRows(r io.Reader) ([]Row, error) {
	var reader = csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	var columnIndex = make(map[string]int)
	for i, name := range header {
		columnIndex[name] = i
	}

	var result []Row
	for {
		values, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		result = append(result, parseRow(header, columnIndex, values))
	}
	return result, nil
}

func parseRow(header []string, columnIndex map[string]int, values []string) Row {
	var row = make(Row)
	for i, name := range header {
		if i >= len(values) {
			break
		}
		var value = strings.TrimSpace(values[i])
		if value == "" {
			continue
		}
		if _, isInt := intColumns[name]; isInt {
			var n, err = strconv.Atoi(value)
			if err != nil {
				continue
			}
			row[name] = n
		} else {
			row[name] = value
		}
	}

	var field = func(name string) (string, bool) {
		var i, found = columnIndex[name]
		if !found || i >= len(values) {
			return "", false
		}
		var v = strings.TrimSpace(values[i])
		return v, v != ""
	}
	var year, yearOk = field("Jahr")
	var month, monthOk = field("Monat")
	var day, dayOk = field("Tag")
	if yearOk && monthOk && dayOk {
		row["date"] = fmt.Sprintf("%v-%v-%v", year, padLeft(month, 2), padLeft(day, 2))
	}
	delete(row, "Tag")
	delete(row, "Monat")
	delete(row, "Jahr")
	return row
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// TransformFile converts the tab separated history at inputPath into a JSON array at outputPath.
func TransformFile(inputPath, outputPath string) ([]Row, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := ParseRows(f)
	if err != nil {
		return nil, fmt.Errorf("parse %v: %w", inputPath, err)
	}
	if rows == nil {
		rows = []Row{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, err
	}
	err = os.WriteFile(outputPath, data, 0644)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
