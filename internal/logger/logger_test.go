package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-data-adapter/internal/trace"
)

func initBuffer(t *testing.T, detailed bool) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	require.NoError(t, InitWithConfig(LogConfig{
		Level:           "DEBUG",
		Format:          "json",
		DetailedLogging: detailed,
		Output:          buf,
	}))
	return buf
}

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &rec))
	return rec
}

func TestInfoWritesStructuredRecord(t *testing.T) {
	buf := initBuffer(t, false)

	Info(context.Background(), "Fetching prices", "ticker", "AAPL")

	rec := lastLine(t, buf)
	assert.Equal(t, "Fetching prices", rec["msg"])
	assert.Equal(t, "AAPL", rec["ticker"])
	assert.Equal(t, "INFO", rec["level"])
}

func TestDebugRequiresDetailedLogging(t *testing.T) {
	buf := initBuffer(t, false)
	Debug(context.Background(), "hidden")
	assert.Empty(t, buf.String())

	buf = initBuffer(t, true)
	Debug(context.Background(), "shown")
	rec := lastLine(t, buf)
	assert.Equal(t, "shown", rec["msg"])
	assert.Contains(t, rec, "source")
}

func TestFetchEvent(t *testing.T) {
	buf := initBuffer(t, false)

	Fetch(context.Background(), "prices", "MSFT", "ok", 3)

	rec := lastLine(t, buf)
	assert.Equal(t, "FETCH", rec["type"])
	assert.Equal(t, "prices", rec["op"])
	assert.Equal(t, float64(3), rec["count"])
}

func TestErrorWithErrIncludesError(t *testing.T) {
	buf := initBuffer(t, false)

	ErrorWithErrSkip(context.Background(), 0, "vendor call failed", errors.New("timeout"), "ticker", "AAPL")

	rec := lastLine(t, buf)
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, "timeout", rec["error"])
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "WARN", parseLogLevel("warn").String())
	assert.Equal(t, "INFO", parseLogLevel("verbose").String())
}

func TestRecordsCarrySpanIDs(t *testing.T) {
	require.NoError(t, trace.InitWithConfig(trace.Config{Enabled: true, Output: io.Discard}))
	t.Cleanup(func() {
		_ = trace.Shutdown(context.Background())
		_ = trace.InitWithConfig(trace.Config{})
	})
	buf := initBuffer(t, false)

	op := StartOperation(context.Background(), "prices.fetch", "ticker", "AAPL")
	Info(op.ctx, "inside operation")
	rec := lastLine(t, buf)
	assert.NotEmpty(t, rec["trace_id"])
	assert.NotEmpty(t, rec["span_id"])

	op.EndWithError(errors.New("vendor down"))
	rec = lastLine(t, buf)
	assert.Equal(t, "Operation failed", rec["msg"])
	assert.Equal(t, "prices.fetch", rec["operation"])
	assert.Equal(t, "vendor down", rec["error"])
}

func TestCacheWriteOnlyWhenDetailed(t *testing.T) {
	buf := initBuffer(t, false)
	CacheWrite(context.Background(), "memory", "prices", "AAPL", 3)
	assert.Empty(t, buf.String())

	buf = initBuffer(t, true)
	CacheWrite(context.Background(), "memory", "prices", "AAPL", 3)
	rec := lastLine(t, buf)
	assert.Equal(t, "CACHE", rec["type"])
	assert.Equal(t, "memory", rec["backend"])
}
