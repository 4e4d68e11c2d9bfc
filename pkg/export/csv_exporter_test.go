package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderColumnsInHeaderOrder(t *testing.T) {
	out, err := NewCSVExporter().Render(Dataset{
		Headers: []string{"Request Number", "Status"},
		Rows: []map[string]string{
			{"Status": "approved", "Request Number": "REQ-1700000000000-001"},
			{"Request Number": "REQ-1700000000000-002"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"Request Number,Status\nREQ-1700000000000-001,approved\nREQ-1700000000000-002,\n",
		string(out))
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}
