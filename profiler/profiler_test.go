package profiler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationTimings(t *testing.T) {
	rp := NewRuntimeProfiler(ProfilingOptions{})

	for i := 0; i < 3; i++ {
		done := rp.StartOperation("Sobel/Sequential")
		time.Sleep(time.Millisecond)
		assert.GreaterOrEqual(t, done(), time.Millisecond)
	}

	op, ok := rp.Operation("Sobel/Sequential")
	require.True(t, ok)
	assert.Equal(t, int64(3), op.Count)
	assert.LessOrEqual(t, op.Min, op.Avg)
	assert.LessOrEqual(t, op.Avg, op.Max)

	_, ok = rp.Operation("missing")
	assert.False(t, ok)
}

func TestRollingWindow(t *testing.T) {
	rp := NewRuntimeProfiler(ProfilingOptions{MaxSamples: 2})
	for _, v := range []float64{10, 20, 30} {
		rp.RecordMetric("mpx_per_s", v)
	}

	stats := rp.GetCurrentStats()
	require.Len(t, stats.Metrics, 1)
	m := stats.Metrics[0]
	assert.Equal(t, "mpx_per_s", m.Name)
	assert.Equal(t, 2, m.Samples)
	assert.InDelta(t, 25.0, m.Avg, 1e-9)
	assert.Equal(t, 10.0, m.Min)
	assert.Equal(t, 30.0, m.Max)
}

func TestStatsAreSorted(t *testing.T) {
	rp := NewRuntimeProfiler(ProfilingOptions{})
	for _, name := range []string{"c", "a", "b"} {
		rp.StartOperation(name)()
	}
	stats := rp.GetCurrentStats()
	require.Len(t, stats.Operations, 3)
	assert.Equal(t, "a", stats.Operations[0].Name)
	assert.Equal(t, "c", stats.Operations[2].Name)
	assert.NotZero(t, stats.Memory.Sys)
	assert.GreaterOrEqual(t, stats.Memory.PeakHeap, stats.Memory.HeapAlloc)
}

func TestStartStop(t *testing.T) {
	rp := NewRuntimeProfiler(ProfilingOptions{
		SampleInterval: time.Millisecond,
		ReportInterval: 5 * time.Millisecond,
	})
	rp.Start()
	rp.Start()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rp.StartOperation("concurrent")()
			rp.RecordMetric("value", 1)
		}()
	}
	wg.Wait()

	assert.Eventually(t, func() bool { return len(rp.Samples()) > 0 }, time.Second, time.Millisecond)
	rp.Stop()
	rp.Stop()

	op, ok := rp.Operation("concurrent")
	require.True(t, ok)
	assert.Equal(t, int64(4), op.Count)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.0 KB", FormatBytes(1024))
	assert.Equal(t, "1.5 MB", FormatBytes(1536*1024))
	assert.Equal(t, "2.0 GB", FormatBytes(2<<30))
}
