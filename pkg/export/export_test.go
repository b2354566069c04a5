package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Name", "Jan", "Total"},
		Rows: []map[string]string{
			{"Name": "张三", "Jan": "1.0", "Total": "1.0"},
			{"Name": "Li Si", "Total": "0.0"},
		},
		Footer: map[string]string{"Name": "Total", "Jan": "1.0", "Total": "1.0"},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(out, utf8BOM))

	lines := strings.Split(strings.TrimSpace(string(out[len(utf8BOM):])), "\n")
	assert.Equal(t, []string{"Name,Jan,Total", "张三,1.0,1.0", "Li Si,,0.0", "Total,1.0,1.0"}, lines)
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	var seen []string
	exporter := NewPDFExporter(func(s string) string {
		seen = append(seen, s)
		return strings.ToUpper(s)
	})
	out, err := exporter.Render(sampleDataset(), "Leave summary")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Contains(t, seen, "张三")
	assert.Contains(t, seen, "Leave summary")

	_, err = exporter.Render(Dataset{}, "")
	assert.Error(t, err)
}

func TestColumnWidthsFillPage(t *testing.T) {
	widths := columnWidths(15)
	require.Len(t, widths, 15)
	assert.Equal(t, firstColWidth, widths[0])
	var total float64
	for _, w := range widths {
		total += w
	}
	assert.InDelta(t, landscapeWidth, total, 0.001)
	assert.InDelta(t, landscapeWidth, columnWidths(1)[0], 0.001)
}
