package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// XLSXSink writes every table to its own sheet of one workbook. The file is
// saved on Close.
type XLSXSink struct {
	path   string
	file   *excelize.File
	sheets int
}

func NewXLSXSink(path string) *XLSXSink {
	return &XLSXSink{path: path, file: excelize.NewFile()}
}

func (s *XLSXSink) WriteTable(_ context.Context, t Table) error {
	sheet := sheetName(t.Name)
	if s.sheets == 0 {
		if err := s.file.SetSheetName("Sheet1", sheet); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
	} else if _, err := s.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}
	s.sheets++

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c
	}
	if err := s.file.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, rec := range t.Records() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := make([]any, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		if err := s.file.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	return nil
}

func (s *XLSXSink) Close() error {
	defer s.file.Close()
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := s.file.SaveAs(s.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// sheetName trims a table name to Excel's 31 character sheet limit.
func sheetName(name string) string {
	if name == "" {
		name = "data"
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}
