package observability

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/rtc-usersig/internal/config"
)

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "chatty"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLoggerHonoursLevel(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "DEBUG"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))
}

func TestNewLoggerConsoleToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "issuer.log")
	logger, err := NewLogger(config.LoggerConfig{Level: "info", Format: config.LogFormatConsole, Output: path})
	require.NoError(t, err)

	logger.Info("signature issued", zap.String("uid", "alice"))
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "INFO")
	assert.Contains(t, string(data), "signature issued")
	assert.Contains(t, string(data), `"uid": "alice"`)
}

func TestNewLoggerJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "issuer.json")
	logger, err := NewLogger(config.LoggerConfig{Format: config.LogFormatJSON, Output: path})
	require.NoError(t, err)

	logger.Warn("operator alert")
	require.NoError(t, logger.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]any
	require.NoError(t, json.Unmarshal(data, &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "operator alert", entry["message"])
}

func TestMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordIssued("tls")
	m.RecordIssued("tls")
	m.RecordIssued("jwt")
	m.RecordConfigDiagnostic()
	m.RecordSignFailure("jwt")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.issued.WithLabelValues("tls")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.issued.WithLabelValues("jwt")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.configDiagnostics))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.signFailures.WithLabelValues("jwt")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordIssued("tls")
		m.RecordConfigDiagnostic()
		m.RecordSignFailure("tls")
	})
}

func TestLogAlerterWarns(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	NewLogAlerter(zap.New(core)).Alert("configure RTC_SECRET_KEY")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, "configure RTC_SECRET_KEY", entries[0].ContextMap()["alert"])
}

func TestWriterAlerter(t *testing.T) {
	var buf bytes.Buffer
	NewWriterAlerter(&buf).Alert("configure RTC_SDK_APP_ID")
	assert.Equal(t, "!!! configure RTC_SDK_APP_ID\n", buf.String())
}
