package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/chargedocs/chargedocs/internal/core/domain"
	"github.com/chargedocs/chargedocs/internal/core/ports"
)

// ExportUseCase fetches the date-ranged spreadsheet, verifies it is a
// real workbook and saves it. Opening the bytes with excelize is the
// cheapest reliable check that the backend sent a workbook and not an
// error payload with a spreadsheet content type.
type ExportUseCase struct {
	api    ports.DocumentAPI
	outDir string
}

func NewExportUseCase(api ports.DocumentAPI, outDir string) *ExportUseCase {
	if outDir == "" {
		outDir = "."
	}
	return &ExportUseCase{api: api, outDir: outDir}
}

func (uc *ExportUseCase) Export(ctx context.Context, start, end time.Time) (*ports.ExportResult, error) {
	if start.IsZero() || end.IsZero() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "export", errors.New("both start and end dates are required"))
	}
	if end.Before(start) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "export", errors.New("end date must not be before start date"))
	}

	data, err := uc.api.Export(ctx, start, end)
	if err != nil {
		return nil, err
	}

	workbook, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "export", fmt.Errorf("backend returned an unreadable workbook: %w", err))
	}
	defer workbook.Close()

	sheet := workbook.GetSheetName(0)
	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "export", fmt.Errorf("read workbook rows: %w", err))
	}

	filename := fmt.Sprintf("extracted_data_%s_%s.xlsx", start.Format("20060102"), end.Format("20060102"))
	path := filepath.Join(uc.outDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("save workbook: %w", err)
	}

	return &ports.ExportResult{Path: path, Sheet: sheet, RowCount: len(rows)}, nil
}
