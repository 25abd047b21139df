package metrics

import (
	"sync"
	"time"
)

// Metrics tracks in-process operational counters, exposed on /metrics.
type Metrics struct {
	mu                 sync.RWMutex
	SessionsStarted    int64
	SessionsCompleted  int64
	SessionsAbandoned  int64
	AnswersEvaluated   int64
	QuestionsAsked     int64
	UpstreamCallsTotal int64
	UpstreamCallsOK    int64
	LastUpdateTime     time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		LastUpdateTime: time.Now(),
	}
}

func (m *Metrics) IncrementSessionsStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionsStarted++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementSessionsCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionsCompleted++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementSessionsAbandoned() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionsAbandoned++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementAnswersEvaluated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AnswersEvaluated++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementQuestionsAsked() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.QuestionsAsked++
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementUpstreamCall(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpstreamCallsTotal++
	if success {
		m.UpstreamCallsOK++
	}
	m.LastUpdateTime = time.Now()
}

// Snapshot returns a copy safe for serialization.
func (m *Metrics) Snapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return map[string]interface{}{
		"sessionsStarted":    m.SessionsStarted,
		"sessionsCompleted":  m.SessionsCompleted,
		"sessionsAbandoned":  m.SessionsAbandoned,
		"answersEvaluated":   m.AnswersEvaluated,
		"questionsAsked":     m.QuestionsAsked,
		"upstreamCallsTotal": m.UpstreamCallsTotal,
		"upstreamCallsOk":    m.UpstreamCallsOK,
		"lastUpdateTime":     m.LastUpdateTime,
	}
}
