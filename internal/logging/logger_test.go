package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ExpertosTI/presta-pro-sub000/internal/config"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		level    string
		expected logrus.Level
	}{
		{"debug", logrus.DebugLevel},
		{"warn", logrus.WarnLevel},
		{"ERROR", logrus.ErrorLevel},
		{"loud", logrus.InfoLevel},
		{"", logrus.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logger := New(config.LoggingConfig{Level: tt.level})
			assert.Equal(t, tt.expected, logger.GetLevel())
		})
	}
}

func TestNew_JSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(config.LoggingConfig{Level: "info", Format: "json"}, &buf)

	logger.WithField("loan_id", "LOAN-1").Info("payment collected")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "LOAN-1", entry["loan_id"])
	assert.Equal(t, "payment collected", entry["msg"])
}

func TestNew_TextFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithOutput(config.LoggingConfig{Level: "info", Format: "text"}, &buf)

	logger.WithField("collector_id", "C1").Info("route closed")

	assert.Contains(t, buf.String(), "collector_id=C1")
	assert.Contains(t, buf.String(), `msg="route closed"`)
}
