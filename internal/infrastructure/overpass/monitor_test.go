package overpass

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	serverA = "https://overpass-a.example.com/api/interpreter"
	serverB = "https://overpass-b.example.com/api/interpreter"
	serverC = "https://overpass-c.example.com/api/interpreter"
)

func TestMonitor_BestServer(t *testing.T) {
	t.Run("empty candidates", func(t *testing.T) {
		m := NewMonitor()
		assert.Equal(t, "", m.BestServer(nil))
	})

	t.Run("untried server is explored first", func(t *testing.T) {
		m := NewMonitor()

		start := m.RecordStart(serverA)
		m.RecordSuccess(serverA, start, 10)

		// serverB ещё не пробовался - возвращается он, несмотря на
		// идеальную статистику serverA
		assert.Equal(t, serverB, m.BestServer([]string{serverA, serverB}))
	})

	t.Run("healthy server beats failing one", func(t *testing.T) {
		m := NewMonitor()

		for i := 0; i < 3; i++ {
			start := m.RecordStart(serverA)
			m.RecordSuccess(serverA, start, 10)
		}
		for i := 0; i < 3; i++ {
			start := m.RecordStart(serverB)
			m.RecordFailure(serverB, errors.New("rate limited"), start, true, false)
		}

		assert.Equal(t, serverA, m.BestServer([]string{serverA, serverB}))
	})

	t.Run("recent error penalizes the server", func(t *testing.T) {
		m := NewMonitor()

		// Оба сервера наполовину успешны, но у B ошибка свежая
		startA := m.RecordStart(serverA)
		m.RecordSuccess(serverA, startA, 10)

		startB := m.RecordStart(serverB)
		m.RecordSuccess(serverB, startB, 10)
		startB = m.RecordStart(serverB)
		m.RecordFailure(serverB, errors.New("timeout"), startB, false, true)

		assert.Equal(t, serverA, m.BestServer([]string{serverA, serverB}))
	})

	t.Run("first candidate wins on equal score", func(t *testing.T) {
		m := NewMonitor()

		for _, s := range []string{serverA, serverB, serverC} {
			start := m.RecordStart(s)
			m.RecordSuccess(s, start, 10)
		}

		assert.Equal(t, serverA, m.BestServer([]string{serverA, serverB, serverC}))
	})
}

func TestMonitor_Metrics(t *testing.T) {
	t.Run("counters are tracked per server and globally", func(t *testing.T) {
		m := NewMonitor()

		start := m.RecordStart(serverA)
		m.RecordSuccess(serverA, start, 5)

		start = m.RecordStart(serverA)
		m.RecordFailure(serverA, errors.New("429 too many requests"), start, true, false)

		start = m.RecordStart(serverB)
		m.RecordFailure(serverB, errors.New("deadline exceeded"), start, false, true)

		snap := m.Snapshot()

		a := snap.Servers[serverA]
		assert.Equal(t, 2, a.Total)
		assert.Equal(t, 1, a.Success)
		assert.Equal(t, 1, a.Failed)
		assert.Equal(t, 1, a.RateLimited)
		assert.Equal(t, 0, a.Timeouts)
		assert.Equal(t, "429 too many requests", a.LastError)

		b := snap.Servers[serverB]
		assert.Equal(t, 1, b.Total)
		assert.Equal(t, 1, b.Timeouts)

		assert.Equal(t, 3, snap.Global.Total)
		assert.Equal(t, 1, snap.Global.Success)
		assert.Equal(t, 2, snap.Global.Failed)
	})

	t.Run("success plus failed never exceeds total", func(t *testing.T) {
		m := NewMonitor()

		for i := 0; i < 10; i++ {
			start := m.RecordStart(serverA)
			if i%3 == 0 {
				m.RecordFailure(serverA, errors.New("boom"), start, false, false)
			} else {
				m.RecordSuccess(serverA, start, 1)
			}
		}

		snap := m.Snapshot()
		a := snap.Servers[serverA]
		assert.LessOrEqual(t, a.Success+a.Failed, a.Total)
		assert.Equal(t, 10, a.Total)
	})

	t.Run("success rate", func(t *testing.T) {
		m := NewMonitor()

		start := m.RecordStart(serverA)
		m.RecordSuccess(serverA, start, 1)
		start = m.RecordStart(serverA)
		m.RecordFailure(serverA, errors.New("boom"), start, false, false)

		snap := m.Snapshot()
		a := snap.Servers[serverA]
		assert.InDelta(t, 0.5, a.SuccessRate(), 1e-9)
	})
}

func TestIncrementalMean(t *testing.T) {
	// Среднее по 10, 20, 30 без хранения истории
	avg := incrementalMean(0, 10, 1)
	avg = incrementalMean(avg, 20, 2)
	avg = incrementalMean(avg, 30, 3)
	assert.InDelta(t, 20.0, avg, 1e-9)
}

func TestMonitor_Reset(t *testing.T) {
	m := NewMonitor()

	start := m.RecordStart(serverA)
	m.RecordSuccess(serverA, start, 5)

	m.Reset()

	snap := m.Snapshot()
	assert.Empty(t, snap.Servers)
	assert.Equal(t, 0, snap.Global.Total)

	// После сброса сервер снова считается непроверенным
	require.Equal(t, serverA, m.BestServer([]string{serverA}))
}

func TestMonitor_SnapshotIsCopy(t *testing.T) {
	m := NewMonitor()

	start := m.RecordStart(serverA)
	m.RecordSuccess(serverA, start, 5)

	snap := m.Snapshot()
	entry := snap.Servers[serverA]
	entry.Total = 999
	snap.Servers[serverA] = entry

	fresh := m.Snapshot()
	assert.Equal(t, 1, fresh.Servers[serverA].Total)
}

func TestMonitor_AvgResponseTime(t *testing.T) {
	m := NewMonitor()

	// Замер от времени старта в прошлом даёт положительное среднее
	start := time.Now().Add(-50 * time.Millisecond)
	m.RecordStart(serverA)
	m.RecordSuccess(serverA, start, 1)

	snap := m.Snapshot()
	assert.Greater(t, snap.Servers[serverA].AvgResponseMs, 0.0)
}
