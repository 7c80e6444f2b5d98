package utils

import (
	"bytes"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractYear(t *testing.T) {
	tests := []struct {
		input string
		want  int
		found bool
	}{
		{"2009-07-15", 2009, true},
		{"1999", 1999, true},
		{"released March 1985", 1985, true},
		{"", 0, false},
		{"unknown", 0, false},
		{"12345-01-01", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ExtractYear(tt.input)
			if !tt.found {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithOutput("debug", "json", &buf)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithField("list_id", 3).Info("loaded")
	assert.Contains(t, buf.String(), `"list_id":3`)
	assert.Contains(t, buf.String(), `"msg":"loaded"`)

	fallback := NewLoggerWithOutput("loud", "text", &buf)
	assert.Equal(t, logrus.InfoLevel, fallback.GetLevel())
	_, ok := fallback.Formatter.(*logrus.TextFormatter)
	assert.True(t, ok)
}
