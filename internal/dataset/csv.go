package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Mekd422/ethiopia-financial-inclusion-forecast/internal/model"
)

// ReadCSV reads a delimited table with a header row. Empty fields are null.
// Short rows are padded with nulls; a row with a value past the last header
// column fails with ErrRaggedRow.
func ReadCSV(r io.Reader) (*model.Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("read header: empty file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows [][]model.Cell
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		for i := len(header); i < len(fields); i++ {
			if fields[i] != "" {
				line, _ := reader.FieldPos(i)
				return nil, fmt.Errorf("read row %d (line %d): %w: %d fields, header has %d",
					len(rows)+1, line, ErrRaggedRow, len(fields), len(header))
			}
		}
		row := make([]model.Cell, len(header))
		for i, f := range fields[:min(len(fields), len(header))] {
			if f != "" {
				row[i] = model.Text(f)
			}
		}
		rows = append(rows, row)
	}

	return model.NewTable(header, rows), nil
}

// WriteCSV writes the table with a header row. Nulls are written as empty fields.
func WriteCSV(w io.Writer, t *model.Table) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(t.Columns()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	fields := make([]string, len(t.Columns()))
	for i := 0; i < t.Len(); i++ {
		for j, c := range t.Values(i) {
			fields[j] = c.Str
		}
		if err := writer.Write(fields); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadCSVFile reads the table stored at path
func ReadCSVFile(path string) (*model.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// WriteCSVFile writes t to path, creating parent directories. The file is
// written next to its destination and renamed into place.
func WriteCSVFile(path string, t *model.Table) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".fiforecast-*.csv")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if err := WriteCSV(tmp, t); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

// RequireColumns checks that t carries every named column
func RequireColumns(path string, t *model.Table, columns []string) error {
	var missing []string
	for _, c := range columns {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Path: path, Columns: missing}
	}
	return nil
}
