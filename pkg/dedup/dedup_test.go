package dedup

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecute_ConcurrentIdenticalReadsInvokeFnOnce(t *testing.T) {
	d := New()
	var calls int64

	fn := func() (string, error) {
		atomic.AddInt64(&calls, 1)
		time.Sleep(100 * time.Millisecond)
		return "X", nil
	}

	var wg sync.WaitGroup
	results := make([]string, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			v, err := Execute(d, "k", fn)
			require.NoError(t, err)
			results[idx] = v
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
	for _, v := range results {
		assert.Equal(t, "X", v)
	}

	stats := d.Stats()
	assert.Equal(t, int64(9), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func TestExecute_SequentialCallsAfterCompletionTriggerNewInvocation(t *testing.T) {
	d := New()
	var calls int64
	fn := func() (int, error) {
		atomic.AddInt64(&calls, 1)
		return int(atomic.LoadInt64(&calls)), nil
	}

	v1, err := Execute(d, "k", fn)
	require.NoError(t, err)
	v2, err := Execute(d, "k", fn)
	require.NoError(t, err)

	assert.Equal(t, 1, v1)
	assert.Equal(t, 2, v2)
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}

func TestExecute_ErrorDeliveredToAllWaiters(t *testing.T) {
	d := New()
	boom := assertError("boom")
	fn := func() (string, error) { return "", boom }

	var wg sync.WaitGroup
	errs := make([]error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			_, err := Execute(d, "k", fn)
			errs[idx] = err
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.Equal(t, boom, err)
	}
}

func TestPendingCount_NeverNegative(t *testing.T) {
	d := New()
	assert.GreaterOrEqual(t, d.PendingCount(), 0)
	_, _ = Execute(d, "k", func() (string, error) { return "v", nil })
	assert.GreaterOrEqual(t, d.PendingCount(), 0)
}

type assertError string

func (e assertError) Error() string { return string(e) }
