package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()
	body, err := exporter.Render(Dataset{
		Headers: []string{"Fecha", "Alumno", "Importe"},
		Rows: []map[string]string{
			{"Fecha": "2025-09-01", "Alumno": "Ana", "Importe": "45.00"},
			{"Fecha": "2025-09-03", "Alumno": "Luis", "Importe": "20.00"},
		},
		Footer: map[string]string{"Alumno": "Total", "Importe": "65.00"},
	})

	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Fecha,Alumno,Importe", lines[0])
	assert.Equal(t, ",Total,65.00", lines[3])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter()
	body, err := exporter.Render(Dataset{
		Headers: []string{"Alumno", "Importe"},
		Rows:    []map[string]string{{"Alumno": "Ana", "Importe": "45.00"}},
		Footer:  map[string]string{"Alumno": "Total", "Importe": "45.00"},
	}, "Pagos 09/2025")

	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "%PDF"))
}
