package xlsxexport_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"evidos/internal/domain"
	"evidos/internal/xlsxexport"
)

func TestWriteWorkbook_RoundTrip(t *testing.T) {
	rows := []domain.EvidenceWithControl{
		{
			Evidence: domain.Evidence{
				ID:             uuid.New(),
				RelevanceScore: 85,
				Satisfaction:   domain.SatisfactionSatisfies,
				ExcerptSummary: "Directly covered.",
				CreatedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			},
			ControlIdentifier: "AC-1",
			ControlTitle:      "Access Control Policy and Procedures",
			DocumentName:      "access_policy.pdf",
		},
	}

	var buf bytes.Buffer
	require.NoError(t, xlsxexport.WriteWorkbook(&buf, rows))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	header, err := f.GetCellValue("Evidence", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Control", header)

	identifier, err := f.GetCellValue("Evidence", "A2")
	require.NoError(t, err)
	assert.Equal(t, "AC-1", identifier)

	score, err := f.GetCellValue("Evidence", "D2")
	require.NoError(t, err)
	assert.Equal(t, "85", score)

	satisfaction, err := f.GetCellValue("Evidence", "E2")
	require.NoError(t, err)
	assert.Equal(t, "satisfies", satisfaction)
}

func TestWriteWorkbook_EmptyEvidence(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, xlsxexport.WriteWorkbook(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Evidence"}, f.GetSheetList())
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "Payroll_System_v2", xlsxexport.SanitizeFilename("Payroll System (v2)"))
	assert.Equal(t, "a_b", xlsxexport.SanitizeFilename("a///b"))
	assert.Equal(t, "trimmed", xlsxexport.SanitizeFilename("__trimmed__"))
}

func TestBuildFilename(t *testing.T) {
	name := xlsxexport.BuildFilename("Payroll System")
	assert.Contains(t, name, "Payroll_System_evidence_")
	assert.Contains(t, name, ".xlsx")
}
