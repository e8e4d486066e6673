package service

import (
	"context"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuncerburak97/bekci/internal/httplog"
	"github.com/tuncerburak97/bekci/internal/model"
)

type fakeRepo struct {
	mu      sync.Mutex
	entries []*model.Entry
	closed  bool
}

func (f *fakeRepo) Save(ctx context.Context, entry *model.Entry) error {
	return f.SaveBatch(ctx, []*model.Entry{entry})
}

func (f *fakeRepo) SaveBatch(ctx context.Context, batch []*model.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, batch...)
	return nil
}

func (f *fakeRepo) Migrate(ctx context.Context) error { return nil }

func (f *fakeRepo) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeRepo) saved() []*model.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

func newTestRecorder(repo *fakeRepo) *Recorder {
	logger := zerolog.Nop()
	return NewRecorder(repo, &logger, 2, 64)
}

func TestRecorderPersistsRecordsOnShutdown(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRecorder(repo)

	require.NoError(t, r.Write(httplog.LevelInfo, []byte(`{"log_type":"http","phase":"response","method":"GET","path":"/users","status":200,"duration":1.5,"request_id":"req-1"}`)))
	require.NoError(t, r.Write(httplog.LevelError, []byte(`{"log_type":"error","error_type":"RuntimeError","message":"boom","request_id":"req-1"}`)))

	r.Shutdown()

	saved := repo.saved()
	require.Len(t, saved, 2)
	assert.True(t, repo.closed)

	byType := map[string]*model.Entry{}
	for _, e := range saved {
		byType[e.LogType] = e
	}

	http := byType[model.LogTypeHTTP]
	require.NotNil(t, http)
	assert.Equal(t, model.PhaseResponse, http.Phase)
	assert.Equal(t, "GET", http.Method)
	assert.Equal(t, "/users", http.Path)
	assert.Equal(t, 200, http.Status)
	assert.Equal(t, 1.5, http.Duration)
	assert.Equal(t, "req-1", http.RequestID)
	assert.Equal(t, "info", http.Level)
	assert.NotEmpty(t, http.ID)
	assert.JSONEq(t, `{"log_type":"http","phase":"response","method":"GET","path":"/users","status":200,"duration":1.5,"request_id":"req-1"}`, string(http.Record))

	errEntry := byType[model.LogTypeError]
	require.NotNil(t, errEntry)
	assert.Equal(t, "error", errEntry.Level)
}

func TestRecorderSkipsPlainTextNotices(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRecorder(repo)

	require.NoError(t, r.Write(httplog.LevelWarn, []byte(`log level "warn" is deprecated, use "debug" instead`)))
	require.NoError(t, r.Write(httplog.LevelInfo, []byte(`{"no_log_type":"x"}`)))

	r.Shutdown()
	assert.Empty(t, repo.saved())
}

func TestRecorderFlushesFullBatches(t *testing.T) {
	repo := &fakeRepo{}
	r := newTestRecorder(repo)

	for n := 0; n < batchSize*2; n++ {
		require.NoError(t, r.Write(httplog.LevelInfo, []byte(`{"log_type":"http","phase":"response"}`)))
	}

	r.Shutdown()
	assert.Len(t, repo.saved(), batchSize*2)
}
