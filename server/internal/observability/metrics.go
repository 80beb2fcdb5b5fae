package observability

import (
	"sync"
	"sync/atomic"
	"time"
)

// Metrics aggregates counters for pipeline and transcription work. The
// numbers back the stats endpoint and are reset only on restart.
type Metrics struct {
	mu sync.Mutex

	requestTotal   atomic.Int64
	requestFailed  atomic.Int64
	streamChunks   atomic.Int64
	transcriptions atomic.Int64

	stageMetrics map[string]*StageMetrics
}

// StageMetrics holds per-stage counters such as extract_context or
// market_research executions.
type StageMetrics struct {
	executionCount atomic.Int64
	totalDuration  atomic.Int64 // milliseconds
	errorCount     atomic.Int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics() *Metrics {
	return &Metrics{
		stageMetrics: make(map[string]*StageMetrics),
	}
}

var globalMetrics = NewMetrics()

// GlobalMetrics returns the process-wide metrics instance.
func GlobalMetrics() *Metrics {
	return globalMetrics
}

// RecordRequest records a request against a pipeline stage.
func (m *Metrics) RecordRequest(stage string) {
	m.requestTotal.Add(1)
	m.getStageMetrics(stage).executionCount.Add(1)
}

// RecordFailure records a failed request against a pipeline stage.
func (m *Metrics) RecordFailure(stage string) {
	m.requestFailed.Add(1)
	m.getStageMetrics(stage).errorCount.Add(1)
}

// RecordDuration records how long a stage execution took.
func (m *Metrics) RecordDuration(stage string, duration time.Duration) {
	m.getStageMetrics(stage).totalDuration.Add(duration.Milliseconds())
}

// RecordStreamChunk records a streamed response chunk sent to a client.
func (m *Metrics) RecordStreamChunk() {
	m.streamChunks.Add(1)
}

// RecordTranscription records a completed audio transcription.
func (m *Metrics) RecordTranscription() {
	m.transcriptions.Add(1)
}

func (m *Metrics) getStageMetrics(stage string) *StageMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	sm, ok := m.stageMetrics[stage]
	if !ok {
		sm = &StageMetrics{}
		m.stageMetrics[stage] = sm
	}
	return sm
}

// Reset clears all metrics. Intended for tests.
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)
	m.streamChunks.Store(0)
	m.transcriptions.Store(0)

	m.mu.Lock()
	m.stageMetrics = make(map[string]*StageMetrics)
	m.mu.Unlock()
}

// Snapshot returns a point-in-time copy of all counters.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	stages := make(map[string]*StageMetricsSnapshot, len(m.stageMetrics))
	for stage, sm := range m.stageMetrics {
		count := sm.executionCount.Load()
		snapshot := &StageMetricsSnapshot{
			ExecutionCount: count,
			TotalDuration:  sm.totalDuration.Load(),
			ErrorCount:     sm.errorCount.Load(),
		}
		if count > 0 {
			snapshot.AverageDuration = snapshot.TotalDuration / count
		}
		stages[stage] = snapshot
	}

	return &MetricsSnapshot{
		RequestTotal:   m.requestTotal.Load(),
		RequestFailed:  m.requestFailed.Load(),
		StreamChunks:   m.streamChunks.Load(),
		Transcriptions: m.transcriptions.Load(),
		Stages:         stages,
	}
}

// MetricsSnapshot is a point-in-time view of the collected metrics.
type MetricsSnapshot struct {
	RequestTotal   int64                            `json:"request_total"`
	RequestFailed  int64                            `json:"request_failed"`
	StreamChunks   int64                            `json:"stream_chunks"`
	Transcriptions int64                            `json:"transcriptions"`
	Stages         map[string]*StageMetricsSnapshot `json:"stages"`
}

// StageMetricsSnapshot is a point-in-time view of one stage's counters.
type StageMetricsSnapshot struct {
	ExecutionCount  int64 `json:"execution_count"`
	TotalDuration   int64 `json:"total_duration_ms"`
	ErrorCount      int64 `json:"error_count"`
	AverageDuration int64 `json:"average_duration_ms"`
}

// SuccessRate returns the success rate as a percentage.
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.RequestTotal == 0 {
		return 100.0
	}
	return float64(s.RequestTotal-s.RequestFailed) / float64(s.RequestTotal) * 100.0
}
