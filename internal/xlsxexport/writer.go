package xlsxexport

import (
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"evidos/internal/domain"
)

const sheetName = "Evidence"

// columns defines the worksheet header row.
var columns = []string{
	"Control",
	"Control Title",
	"Document",
	"Relevance Score",
	"Satisfaction",
	"Excerpt Summary",
	"Created At",
}

// WriteWorkbook renders evidence rows into an xlsx workbook and writes it to w.
func WriteWorkbook(w io.Writer, evidence []domain.EvidenceWithControl) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("xlsxexport: creating sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("xlsxexport: removing default sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("xlsxexport: header style: %w", err)
	}

	for col, title := range columns {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("xlsxexport: header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return fmt.Errorf("xlsxexport: header cell: %w", err)
		}
		if err := f.SetCellStyle(sheetName, cell, cell, header); err != nil {
			return fmt.Errorf("xlsxexport: header style: %w", err)
		}
	}

	for i := range evidence {
		if err := writeRow(f, i+2, &evidence[i]); err != nil {
			return err
		}
	}

	widths := []float64{12, 40, 32, 16, 22, 60, 22}
	for col, width := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return fmt.Errorf("xlsxexport: column width: %w", err)
		}
		if err := f.SetColWidth(sheetName, name, name, width); err != nil {
			return fmt.Errorf("xlsxexport: column width: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsxexport: writing workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, row int, e *domain.EvidenceWithControl) error {
	values := []interface{}{
		e.ControlIdentifier,
		e.ControlTitle,
		e.DocumentName,
		e.RelevanceScore,
		string(e.Satisfaction),
		e.ExcerptSummary,
		e.CreatedAt.Format(time.RFC3339),
	}
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("xlsxexport: row cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return fmt.Errorf("xlsxexport: row cell: %w", err)
		}
	}
	return nil
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a system name for use in Content-Disposition.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for the Content-Disposition
// header. Format: {sanitized_system_name}_evidence_{YYYY-MM-DD}.xlsx
func BuildFilename(systemName string) string {
	sanitized := SanitizeFilename(systemName)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_evidence_%s.xlsx", sanitized, date)
}
