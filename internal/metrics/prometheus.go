package metrics

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

var (
	defaultCollector *Collector
	once             sync.Once
)

// GetCollector returns the singleton collector instance.
func GetCollector(namespace, appName string) *Collector {
	once.Do(func() {
		defaultCollector = NewCollector(namespace, appName)
	})
	return defaultCollector
}

type Collector struct {
	AppName           string
	RequestDuration   *prometheus.HistogramVec
	RequestCounter    *prometheus.CounterVec
	RecordsEmitted    *prometheus.CounterVec
	RecordsSuppressed *prometheus.CounterVec
	EmitDuration      *prometheus.HistogramVec
	ErrorCounter      *prometheus.CounterVec
	ActiveRequests    prometheus.Gauge
	QueueSize         *prometheus.GaugeVec
	bufferChan        chan metricEvent
	done              chan struct{}
}

type metricEvent struct {
	labels   prometheus.Labels
	duration time.Duration
	err      error
}

func NewCollector(namespace, appName string) *Collector {
	m := &Collector{
		AppName: appName,
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"app", "method", "path", "status"},
		),

		RequestCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of requests",
			},
			[]string{"app", "method", "path", "status"},
		),

		RecordsEmitted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "log_records_total",
				Help:      "Total number of emitted log records",
			},
			[]string{"app", "log_type", "phase"},
		),

		RecordsSuppressed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "log_records_suppressed_total",
				Help:      "Total number of records suppressed by a phase gate",
			},
			[]string{"app", "phase"},
		),

		EmitDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "log_emit_duration_seconds",
				Help:      "Time spent rendering and writing one log record",
				Buckets:   []float64{.00005, .0001, .00025, .0005, .001, .0025, .005, .01, .025},
			},
			[]string{"app", "log_type"},
		),

		ErrorCounter: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of errors",
			},
			[]string{"app", "type"},
		),

		ActiveRequests: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_requests",
				Help:      "Number of active requests",
				ConstLabels: prometheus.Labels{
					"app": appName,
				},
			},
		),

		QueueSize: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "queue_size",
				Help:      "Current size of the queue",
			},
			[]string{"app", "queue"},
		),

		bufferChan: make(chan metricEvent, 100),
		done:       make(chan struct{}),
	}

	m.startCollector()
	return m
}

func (m *Collector) startCollector() {
	go func() {
		batch := make([]metricEvent, 0, 100)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case event := <-m.bufferChan:
				batch = append(batch, event)
				if len(batch) >= 100 {
					m.processBatch(batch)
					batch = batch[:0]
				}
			case <-ticker.C:
				if len(batch) > 0 {
					m.processBatch(batch)
					batch = batch[:0]
				}
			case <-m.done:
				return
			}
		}
	}()
}

func (m *Collector) processBatch(batch []metricEvent) {
	for _, event := range batch {
		if event.err != nil {
			m.LogError("request")
		}
		m.RequestDuration.With(event.labels).Observe(event.duration.Seconds())
		m.RequestCounter.With(event.labels).Inc()
	}
}

func (m *Collector) ObserveRequest(method, path, status string, duration time.Duration, err error) {
	m.bufferChan <- metricEvent{
		labels: prometheus.Labels{
			"app":    m.AppName,
			"method": method,
			"path":   path,
			"status": status,
		},
		duration: duration,
		err:      err,
	}
}

func (m *Collector) IncActiveRequests() {
	m.ActiveRequests.Inc()
}

func (m *Collector) DecActiveRequests() {
	m.ActiveRequests.Dec()
}

func (m *Collector) IncRecordsEmitted(logType, phase string) {
	m.RecordsEmitted.With(prometheus.Labels{
		"app":      m.AppName,
		"log_type": logType,
		"phase":    phase,
	}).Inc()
}

// RecordEmitted implements httplog.Observer.
func (m *Collector) RecordEmitted(logType, phase string, elapsed time.Duration) {
	m.IncRecordsEmitted(logType, phase)
	m.EmitDuration.With(prometheus.Labels{
		"app":      m.AppName,
		"log_type": logType,
	}).Observe(elapsed.Seconds())
}

// RecordSuppressed implements httplog.Observer.
func (m *Collector) RecordSuppressed(phase string) {
	m.RecordsSuppressed.With(prometheus.Labels{
		"app":   m.AppName,
		"phase": phase,
	}).Inc()
}

func (m *Collector) LogError(errorType string) {
	m.ErrorCounter.With(prometheus.Labels{
		"app":  m.AppName,
		"type": errorType,
	}).Inc()
}

func (m *Collector) ObserveQueueSize(queue string, size float64) {
	m.QueueSize.With(prometheus.Labels{
		"app":   m.AppName,
		"queue": queue,
	}).Set(size)
}

type MetricsResponse struct {
	AppName   string         `json:"app_name"`
	Timestamp time.Time      `json:"timestamp"`
	Metrics   map[string]any `json:"metrics"`
}

// MetricsJSON renders a point-in-time snapshot for the /metrics endpoint.
func (m *Collector) MetricsJSON() ([]byte, error) {
	resp := MetricsResponse{
		AppName:   m.AppName,
		Timestamp: time.Now(),
		Metrics: map[string]any{
			"request_duration":       m.histogramValues(m.RequestDuration),
			"requests_total":         m.counterValues(m.RequestCounter),
			"log_records":            m.counterValues(m.RecordsEmitted),
			"log_records_suppressed": m.counterValues(m.RecordsSuppressed),
			"log_emit_duration":      m.histogramValues(m.EmitDuration),
			"errors_total":           m.counterValues(m.ErrorCounter),
			"active_requests":        m.gaugeValue(m.ActiveRequests),
		},
	}
	return json.Marshal(resp)
}

func (m *Collector) histogramValues(vec *prometheus.HistogramVec) map[string]float64 {
	values := make(map[string]float64)
	ch := make(chan prometheus.Metric, 1000)
	vec.Collect(ch)
	close(ch)

	for metric := range ch {
		dtoMetric := &dto.Metric{}
		metric.Write(dtoMetric)
		hist := dtoMetric.GetHistogram()
		values["sum"] += hist.GetSampleSum()
		values["count"] += float64(hist.GetSampleCount())
	}
	return values
}

func (m *Collector) counterValues(vec *prometheus.CounterVec) float64 {
	var total float64
	ch := make(chan prometheus.Metric, 1000)
	vec.Collect(ch)
	close(ch)

	for metric := range ch {
		dtoMetric := &dto.Metric{}
		metric.Write(dtoMetric)
		total += dtoMetric.GetCounter().GetValue()
	}
	return total
}

func (m *Collector) gaugeValue(g prometheus.Gauge) float64 {
	dtoMetric := &dto.Metric{}
	g.Write(dtoMetric)
	return dtoMetric.GetGauge().GetValue()
}
