package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetLevel(t *testing.T) {
	defer SetLevel("info")

	tests := []struct {
		in   string
		want logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"DEBUG", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"warning", logrus.WarnLevel},
		{"error", logrus.ErrorLevel},
		{"", logrus.InfoLevel},
		{"verbose", logrus.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SetLevel(tt.in), tt.in)
		assert.Equal(t, tt.want, Logger.GetLevel())
	}
}

func TestJSONEntries(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetFormat("json")
	SetLevel("info")
	defer SetOutput(bytes.NewBuffer(nil))

	WithFields(logrus.Fields{"filter": "Sobel"}).
		WithError(errors.New("boom")).
		Warn("filter failed")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Sobel", entry["filter"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "warning", entry["level"])
	assert.Equal(t, "filter failed", entry["msg"])
}

func TestLevelFiltersEntries(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel("error")
	defer SetLevel("info")
	defer SetOutput(bytes.NewBuffer(nil))

	WithField("k", 1).Info("hidden")
	assert.Zero(t, buf.Len())
}
