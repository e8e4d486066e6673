package httplog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutError struct{ op string }

func (e *timeoutError) Error() string { return fmt.Sprintf("%s timed out", e.op) }

func TestReportErrorRecordShape(t *testing.T) {
	sink := &captureSink{}
	i := New(Options{}, sink)

	ctx := WithRequestID(context.Background(), "req-9")
	require.NoError(t, i.ReportError(ctx, "error", errors.New("boom"), nil))

	recs := sink.records(t)
	require.Len(t, recs, 1)
	rec := recs[0]

	assert.Equal(t, "error", rec["log_type"])
	assert.Equal(t, "req-9", rec["request_id"])
	assert.NotContains(t, rec, "duration")
	assert.NotContains(t, rec, "status")

	require.Len(t, sink.linesAt(LevelError), 1)
}

func TestReportErrorTypeFromErrorValue(t *testing.T) {
	sink := &captureSink{}
	i := New(Options{}, sink)

	require.NoError(t, i.ReportError(context.Background(), "error", &timeoutError{op: "dial"}, nil))

	rec := sink.records(t)[0]
	assert.Equal(t, "httplog.timeoutError", rec["error_type"])
	assert.True(t, strings.HasPrefix(rec["message"].(string), "** (httplog.timeoutError) dial timed out"))
}

func TestReportErrorTypeFallsBackToKind(t *testing.T) {
	sink := &captureSink{}
	i := New(Options{}, sink)

	require.NoError(t, i.ReportError(context.Background(), "throw", "something bad", nil))

	rec := sink.records(t)[0]
	assert.Equal(t, "throw", rec["error_type"])
	assert.Equal(t, "** (throw) something bad", rec["message"])
}

func TestReportErrorMessageIncludesStackFrames(t *testing.T) {
	sink := &captureSink{}
	i := New(Options{}, sink)

	require.NoError(t, i.ReportError(context.Background(), "error", errors.New("boom"), CallStack(0)))

	msg := sink.records(t)[0]["message"].(string)
	lines := strings.Split(msg, "\n")
	require.Greater(t, len(lines), 1)
	assert.Equal(t, "** (errors.errorString) boom", lines[0])

	// frames render as <file>:<line>: <function>, innermost first
	assert.Contains(t, lines[1], "error_test.go:")
	assert.Contains(t, lines[1], "TestReportErrorMessageIncludesStackFrames")
}

func TestReportErrorWithoutRequestID(t *testing.T) {
	sink := &captureSink{}
	i := New(Options{}, sink)

	require.NoError(t, i.ReportError(context.Background(), "error", errors.New("boom"), nil))
	assert.Nil(t, sink.records(t)[0]["request_id"])

	require.NoError(t, i.ReportError(nil, "error", errors.New("boom"), nil))
	assert.Nil(t, sink.records(t)[1]["request_id"])
}

func TestReportErrorIgnoresPhaseGates(t *testing.T) {
	sink := &captureSink{}
	i := New(Options{
		ShouldLogRequest:  func(*Snapshot) bool { return false },
		ShouldLogResponse: func(*Snapshot) bool { return false },
	}, sink)

	require.NoError(t, i.ReportError(context.Background(), "error", errors.New("boom"), nil))
	assert.Len(t, sink.records(t), 1)
}
