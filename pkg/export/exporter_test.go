package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:       "DSAR register",
		GeneratedAt: time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC),
		Headers:     []string{"Reference", "Status", "Due"},
		Rows: [][]string{
			{"DSAR-20240101-AB12CD34", "in_progress", "2024-01-31"},
			{"DSAR-20240105-EF56AB78", "completed", "2024-02-04"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "Reference,Status,Due\nDSAR-20240101-AB12CD34,in_progress,2024-01-31\nDSAR-20240105-EF56AB78,completed,2024-02-04\n", string(out))
}

func TestExportersRejectRaggedRows(t *testing.T) {
	data := sampleDataset()
	data.Rows = append(data.Rows, []string{"only-one"})
	_, err := NewCSVExporter().Render(data)
	assert.ErrorContains(t, err, "row 2 has 1 columns, want 3")
	_, err = NewPDFExporter().Render(data)
	assert.Error(t, err)
}

func TestCSVExporterNeutralizesFormulas(t *testing.T) {
	data := Dataset{
		Headers: []string{"Requestor", "Note"},
		Rows: [][]string{
			{"=HYPERLINK(\"http://x\")", "@SUM(A1)"},
			{"Ada Lovelace", "plain, with comma"},
		},
	}
	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "Requestor,Note\n\"'=HYPERLINK(\"\"http://x\"\")\",'@SUM(A1)\nAda Lovelace,\"plain, with comma\"\n", string(out))
}

func TestCSVExporterBOM(t *testing.T) {
	out, err := (&CSVExporter{BOM: true}).Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("\xef\xbb\xbfReference,")))
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestExportersRequireHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}
