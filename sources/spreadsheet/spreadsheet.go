// Package spreadsheet turns uploaded .xlsx and .csv files into raw rows keyed
// by the header row's column names.
package spreadsheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"sales-dashboard/models"
)

// ErrUnsupportedFormat is returned for files that are neither xlsx nor csv.
var ErrUnsupportedFormat = errors.New("unsupported spreadsheet format")

var zipMagic = []byte("PK\x03\x04")

// Parse reads the first sheet of an xlsx workbook, or a csv file, and returns
// one row per non-empty data line. The format is picked from the file name's
// extension, falling back to sniffing the content.
func Parse(name string, data []byte) ([]models.Row, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return ParseXLSX(data)
	case ".csv", ".txt":
		return ParseCSV(data)
	case "":
		if bytes.HasPrefix(data, zipMagic) {
			return ParseXLSX(data)
		}
		return ParseCSV(data)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}

// ParseXLSX reads the first worksheet of an xlsx workbook.
func ParseXLSX(data []byte) ([]models.Row, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	cells, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return toRows(cells), nil
}

// ParseCSV reads comma separated text with a header line.
func ParseCSV(data []byte) ([]models.Row, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var cells [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		cells = append(cells, rec)
	}
	return toRows(cells), nil
}

func toRows(cells [][]string) []models.Row {
	if len(cells) == 0 {
		return nil
	}

	header := make([]string, len(cells[0]))
	for i, h := range cells[0] {
		header[i] = strings.TrimSpace(h)
	}

	rows := make([]models.Row, 0, len(cells)-1)
	for _, line := range cells[1:] {
		row := make(models.Row, len(header))
		for i, v := range line {
			if i >= len(header) || header[i] == "" {
				continue
			}
			if strings.TrimSpace(v) == "" {
				continue
			}
			row[header[i]] = v
		}
		if len(row) == 0 {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}
