package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mlproject/domain/dataset"

	"github.com/xuri/excelize/v2"
)

// File types understood by the reader
const (
	TypeCSV  = "csv"
	TypeXLSX = "xlsx"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Reader loads delimited or spreadsheet files into tables
type Reader struct {
	logger *slog.Logger
}

// NewReader creates a reader that reports timings at debug level
func NewReader(logger *slog.Logger) *Reader {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Reader{logger: logger}
}

// FileType infers the file type from the extension; anything but .xlsx is read as CSV.
func FileType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return TypeXLSX
	default:
		return TypeCSV
	}
}

// Read loads the file at path. The first row is the header and at least one data
// row must follow it.
func (r *Reader) Read(path string) (*dataset.Table, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	var (
		rows [][]string
		err  error
	)
	start := time.Now()
	fileType := FileType(path)
	switch fileType {
	case TypeXLSX:
		rows, err = r.readExcelRows(path)
	default:
		rows, err = r.readCSVRows(path)
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("table file read",
		"path", path,
		"type", fileType,
		"rows", len(rows),
		"elapsed_ms", float64(time.Since(start).Nanoseconds())/1e6)

	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have at least a header row and one data row: %s",
			strings.ToUpper(fileType), path)
	}
	return toTable(rows)
}

// readCSVRows reads every record; ragged records are rejected by encoding/csv.
func (r *Reader) readCSVRows(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(data))
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV file %s: %w", path, err)
	}
	return rows, nil
}

// readExcelRows reads the first sheet and pads rows that excelize trimmed.
func (r *Reader) readExcelRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file has no sheets: %s", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return rows, nil
	}

	width := len(rows[0])
	for i := 1; i < len(rows); i++ {
		if len(rows[i]) > width {
			return nil, fmt.Errorf("sheet %s row %d has %d cells, header has %d", sheets[0], i+1, len(rows[i]), width)
		}
		for len(rows[i]) < width {
			rows[i] = append(rows[i], "")
		}
	}
	return rows, nil
}

// toTable converts raw string rows into a table; header names are trimmed,
// cell values are kept as read.
func toTable(rows [][]string) (*dataset.Table, error) {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}
	return dataset.NewTable(headers, rows[1:])
}
