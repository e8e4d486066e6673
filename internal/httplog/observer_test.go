package httplog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type observation struct {
	logType string
	phase   string
}

type captureObserver struct {
	mu         sync.Mutex
	emitted    []observation
	suppressed []string
}

func (o *captureObserver) RecordEmitted(logType, phase string, elapsed time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.emitted = append(o.emitted, observation{logType: logType, phase: phase})
}

func (o *captureObserver) RecordSuppressed(phase string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.suppressed = append(o.suppressed, phase)
}

func TestObserverSeesDefaultGateOutcomes(t *testing.T) {
	obs := &captureObserver{}
	i := New(Options{Observer: obs}, &captureSink{})

	pc, err := i.OnRequestStart(getSnapshot())
	require.NoError(t, err)
	require.NoError(t, i.OnResponseReady(doneSnapshot(200), pc))

	assert.Equal(t, []string{PhaseRequest}, obs.suppressed)
	assert.Equal(t, []observation{{logType: "http", phase: PhaseResponse}}, obs.emitted)
}

func TestObserverSeesSuppressedResponse(t *testing.T) {
	obs := &captureObserver{}
	i := New(Options{
		Observer:          obs,
		ShouldLogResponse: func(*Snapshot) bool { return false },
	}, &captureSink{})

	pc, err := i.OnRequestStart(getSnapshot())
	require.NoError(t, err)
	require.NoError(t, i.OnResponseReady(doneSnapshot(200), pc))

	assert.Equal(t, []string{PhaseRequest, PhaseResponse}, obs.suppressed)
	assert.Empty(t, obs.emitted)
}

func TestObserverSeesBothPhasesEmitted(t *testing.T) {
	obs := &captureObserver{}
	i := New(Options{
		Observer:         obs,
		ShouldLogRequest: func(*Snapshot) bool { return true },
	}, &captureSink{})

	pc, err := i.OnRequestStart(getSnapshot())
	require.NoError(t, err)
	require.NoError(t, i.OnResponseReady(doneSnapshot(200), pc))

	assert.Empty(t, obs.suppressed)
	assert.Equal(t, []observation{
		{logType: "http", phase: PhaseRequest},
		{logType: "http", phase: PhaseResponse},
	}, obs.emitted)
}

func TestObserverSeesErrorRecords(t *testing.T) {
	obs := &captureObserver{}
	i := New(Options{Observer: obs}, &captureSink{})

	require.NoError(t, i.ReportError(context.Background(), "error", errors.New("boom"), nil))

	assert.Equal(t, []observation{{logType: "error", phase: ""}}, obs.emitted)
}

func TestNilObserverIsSafe(t *testing.T) {
	sink := &captureSink{}
	i := New(Options{}, sink)

	pc, err := i.OnRequestStart(getSnapshot())
	require.NoError(t, err)
	require.NoError(t, i.OnResponseReady(doneSnapshot(200), pc))
	assert.Len(t, sink.records(t), 1)
}
