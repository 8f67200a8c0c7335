package outwriter

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFormatters(t *testing.T) {
	tests := []struct {
		name      string
		precision int
		value     float64
		expected  string
	}{
		{"precision 2", 2, 3.14159, "3.14"},
		{"precision 4", 4, 3.14159, "3.1416"},
		{"negative value", 2, -42.567, "-42.57"},
		{"zero score", 3, 0, "0.000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fmtFloat, _ := createFormatters(tt.precision)
			assert.Equal(t, tt.expected, fmtFloat(tt.value))
		})
	}

	t.Run("time", func(t *testing.T) {
		_, fmtTime := createFormatters(2)
		assert.Equal(t, "-", fmtTime(time.Time{}))
		assert.Equal(t, "2024-03-01 12:30:00", fmtTime(time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)))
	})
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeJSON(&buf, map[string]any{"name": "glue", "views": 2}))
	assert.Equal(t, "{\n  \"name\": \"glue\",\n  \"views\": 2\n}\n", buf.String())

	err := writeJSON(&buf, make(chan int))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode JSON")
}

func TestWriteCSVWithHeader(t *testing.T) {
	tests := []struct {
		name     string
		header   []string
		rows     [][]string
		expected string
	}{
		{
			name:     "rows",
			header:   []string{"system_name", "score"},
			rows:     [][]string{{"A", "0.7"}, {"B", "0.2"}},
			expected: "system_name,score\nA,0.7\nB,0.2\n",
		},
		{
			name:     "empty rows",
			header:   []string{"col1", "col2"},
			expected: "col1,col2\n",
		},
		{
			name:     "labels with commas",
			header:   []string{"column"},
			rows:     [][]string{{"dataset_name=SST2, metric=accuracy"}},
			expected: "column\n\"dataset_name=SST2, metric=accuracy\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := writeCSVWithHeader(&buf, tt.header, func(w *csv.Writer) error {
				for _, row := range tt.rows {
					if err := w.Write(row); err != nil {
						return err
					}
				}
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, buf.String())
		})
	}

	t.Run("row error", func(t *testing.T) {
		var buf bytes.Buffer
		err := writeCSVWithHeader(&buf, []string{"col"}, func(*csv.Writer) error {
			return assert.AnError
		})
		assert.Equal(t, assert.AnError, err)
	})
}

func TestWriteWithFile(t *testing.T) {
	t.Run("stdout", func(t *testing.T) {
		called := false
		err := writeWithFile("", func(w io.Writer) error {
			called = true
			return nil
		}, "Test message")
		require.NoError(t, err)
		assert.True(t, called, "Writer function should have been called")
	})

	t.Run("file", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "out.txt")
		err := writeWithFile(tmpFile, func(w io.Writer) error {
			_, err := w.Write([]byte("content"))
			return err
		}, "Test message")
		require.NoError(t, err)

		content, err := os.ReadFile(tmpFile)
		require.NoError(t, err)
		assert.Equal(t, "content", string(content))
	})

	t.Run("writer error", func(t *testing.T) {
		err := writeWithFile(filepath.Join(t.TempDir(), "out.txt"), func(io.Writer) error {
			return assert.AnError
		}, "Test message")
		assert.Equal(t, assert.AnError, err)
	})

	t.Run("invalid path", func(t *testing.T) {
		err := writeWithFile("/nonexistent/path/file.txt", func(io.Writer) error { return nil }, "Test message")
		require.Error(t, err)
	})
}
