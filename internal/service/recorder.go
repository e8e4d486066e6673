package service

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tuncerburak97/bekci/internal/httplog"
	"github.com/tuncerburak97/bekci/internal/metrics"
	"github.com/tuncerburak97/bekci/internal/model"
	"github.com/tuncerburak97/bekci/internal/repository"
)

const (
	batchSize     = 100
	flushInterval = 100 * time.Millisecond
)

// Recorder is a httplog.Sink that persists every emitted record through an
// EntryRepository. Lines are decoded into entries, buffered on a channel
// and written in batches by a worker pool, so the sink write on the hot
// path never waits on the database.
type Recorder struct {
	repo        repository.EntryRepository
	entries     chan *model.Entry
	workerCount int
	wg          sync.WaitGroup
	done        chan struct{}
	metrics     *metrics.Collector
	logger      *zerolog.Logger
}

func NewRecorder(repo repository.EntryRepository, logger *zerolog.Logger, workerCount, bufferSize int) *Recorder {
	r := &Recorder{
		repo:        repo,
		entries:     make(chan *model.Entry, bufferSize),
		workerCount: workerCount,
		done:        make(chan struct{}),
		metrics:     metrics.GetCollector("bekci", "bekci_proxy"),
		logger:      logger,
	}

	r.startWorkers()
	return r
}

func (r *Recorder) startWorkers() {
	for i := 0; i < r.workerCount; i++ {
		r.wg.Add(1)
		go r.processEntries()
	}
	go r.monitorBuffer()
}

// Write implements httplog.Sink. Non-record lines (deprecation and
// configuration notices are plain text) are not persisted. Emission
// counters live in the interceptor's observer, not here; this sink only
// persists.
func (r *Recorder) Write(level httplog.Level, line []byte) error {
	entry, ok := decodeEntry(level, line)
	if !ok {
		return nil
	}
	r.entries <- entry
	return nil
}

func decodeEntry(level httplog.Level, line []byte) (*model.Entry, bool) {
	var rec struct {
		LogType    string  `json:"log_type"`
		Phase      string  `json:"phase"`
		RequestID  string  `json:"request_id"`
		Method     string  `json:"method"`
		Path       string  `json:"path"`
		Status     int     `json:"status"`
		Duration   float64 `json:"duration"`
		Handler    string  `json:"handler"`
		APIVersion string  `json:"api_version"`
	}
	if err := json.Unmarshal(line, &rec); err != nil || rec.LogType == "" {
		return nil, false
	}

	return &model.Entry{
		ID:         uuid.New().String(),
		RequestID:  rec.RequestID,
		LogType:    rec.LogType,
		Phase:      rec.Phase,
		Level:      level.String(),
		Timestamp:  time.Now().UTC(),
		Method:     rec.Method,
		Path:       rec.Path,
		Status:     rec.Status,
		Duration:   rec.Duration,
		Handler:    rec.Handler,
		APIVersion: rec.APIVersion,
		Record:     json.RawMessage(append([]byte(nil), line...)),
	}, true
}

func (r *Recorder) processEntries() {
	defer r.wg.Done()

	ctx := context.Background()
	batch := make([]*model.Entry, 0, batchSize)
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		r.saveBatch(ctx, batch)
		batch = batch[:0]
	}

	for {
		select {
		case entry, ok := <-r.entries:
			if !ok {
				flush()
				return
			}
			batch = append(batch, entry)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (r *Recorder) saveBatch(ctx context.Context, batch []*model.Entry) {
	if err := r.repo.SaveBatch(ctx, batch); err != nil {
		r.metrics.LogError("batch_entry_save")
		r.logger.Error().
			Err(err).
			Int("batch_size", len(batch)).
			Msg("Failed to save log entry batch")
	}
}

func (r *Recorder) monitorBuffer() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.done:
			return
		case <-ticker.C:
			r.metrics.ObserveQueueSize("entries", float64(len(r.entries)))
		}
	}
}

// Shutdown drains the buffer, flushes pending batches and closes the
// repository. Write must not be called after Shutdown.
func (r *Recorder) Shutdown() {
	close(r.entries)
	r.wg.Wait()
	close(r.done)
	r.repo.Close()
}
