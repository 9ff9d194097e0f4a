package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/calyptra/dochub/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFiles(n int) []core.FileDescriptor {
	files := make([]core.FileDescriptor, n)
	for i := range files {
		files[i] = core.FileDescriptor{
			ID:         fmt.Sprintf("f%d", i+1),
			Name:       fmt.Sprintf("doc%d.txt", i+1),
			ContentRef: fmt.Sprintf("ref-%d", i+1),
		}
	}
	return files
}

func passthroughExtract(data []byte, _ string) (string, bool) {
	return string(data), true
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithRetries(1, time.Millisecond)}, opts...)
	e, err := NewEngine(opts...)
	require.NoError(t, err)
	t.Cleanup(e.Release)
	return e
}

func TestProcess_AllSucceed(t *testing.T) {
	e := newTestEngine(t)

	fetch := func(_ context.Context, ref string) ([]byte, error) {
		return []byte("content of " + ref), nil
	}

	result, err := e.Process(context.Background(), testFiles(3), fetch, passthroughExtract)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Succeeded)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 0, result.Failed())
	for i := 1; i <= 3; i++ {
		assert.Contains(t, result.Combined, fmt.Sprintf("content of ref-%d", i))
	}
}

func TestProcess_SingleFetchFailureIsolated(t *testing.T) {
	e := newTestEngine(t)

	fetch := func(_ context.Context, ref string) ([]byte, error) {
		if ref == "ref-2" {
			return nil, errors.New("connection reset")
		}
		return []byte("text " + ref), nil
	}

	result, err := e.Process(context.Background(), testFiles(3), fetch, passthroughExtract)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 1, result.Failed())
	assert.Contains(t, result.Combined, "text ref-1")
	assert.Contains(t, result.Combined, "text ref-3")
	assert.NotContains(t, result.Combined, "ref-2")

	// the failed outcome keeps the file identity for troubleshooting
	assert.Equal(t, "f2", result.Outcomes[1].FileID)
	assert.False(t, result.Outcomes[1].Succeeded)
	assert.Contains(t, result.Outcomes[1].ErrorMessage, "connection reset")
}

func TestProcess_FiveFilesBatchOfTwo(t *testing.T) {
	// batch size 2, worker count 2, 5 files where file #3's download throws
	e := newTestEngine(t, WithBatchSize(2), WithWorkers(2))

	fetch := func(_ context.Context, ref string) ([]byte, error) {
		if ref == "ref-3" {
			return nil, errors.New("boom")
		}
		return []byte(ref), nil
	}

	result, err := e.Process(context.Background(), testFiles(5), fetch, passthroughExtract)
	require.NoError(t, err)

	assert.Equal(t, 4, result.Succeeded)
	assert.Equal(t, 5, result.Total)
	for _, ref := range []string{"ref-1", "ref-2", "ref-4", "ref-5"} {
		assert.Contains(t, result.Combined, ref)
	}
	assert.NotContains(t, strings.Split(result.Combined, "\n\n"), "ref-3")
}

func TestProcess_ExtractionFailureIsolated(t *testing.T) {
	e := newTestEngine(t)

	fetch := func(_ context.Context, _ string) ([]byte, error) {
		return []byte("raw"), nil
	}
	extract := func(_ []byte, name string) (string, bool) {
		if name == "doc2.txt" {
			return "[error extracting doc2.txt: corrupt]", false
		}
		return "ok " + name, true
	}

	result, err := e.Process(context.Background(), testFiles(3), fetch, extract)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Succeeded)
	assert.NotContains(t, result.Combined, "error extracting")
	assert.Contains(t, result.Outcomes[1].ErrorMessage, "corrupt")
}

func TestProcess_TimeoutTreatedAsFailure(t *testing.T) {
	e := newTestEngine(t, WithItemTimeout(20*time.Millisecond))

	fetch := func(ctx context.Context, ref string) ([]byte, error) {
		if ref == "ref-1" {
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return []byte(ref), nil
	}

	result, err := e.Process(context.Background(), testFiles(2), fetch, passthroughExtract)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded)
	assert.False(t, result.Outcomes[0].Succeeded)
	assert.Contains(t, result.Combined, "ref-2", "sibling item must complete despite the timeout")
}

func TestProcess_ConcurrencyBoundedByWorkers(t *testing.T) {
	const workers = 3
	e := newTestEngine(t, WithBatchSize(50), WithWorkers(workers))

	var inFlight, peak atomic.Int64
	var mu sync.Mutex
	fetch := func(_ context.Context, ref string) ([]byte, error) {
		current := inFlight.Add(1)
		mu.Lock()
		if current > peak.Load() {
			peak.Store(current)
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return []byte(ref), nil
	}

	result, err := e.Process(context.Background(), testFiles(20), fetch, passthroughExtract)
	require.NoError(t, err)

	assert.Equal(t, 20, result.Succeeded)
	assert.LessOrEqual(t, peak.Load(), int64(workers))
}

func TestProcess_EmptyInput(t *testing.T) {
	e := newTestEngine(t)

	result, err := e.Process(context.Background(), nil,
		func(context.Context, string) ([]byte, error) { return nil, nil },
		passthroughExtract)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Total)
	assert.Empty(t, result.Combined)
}

func TestProcess_NilCallbacksRejected(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Process(context.Background(), testFiles(1), nil, passthroughExtract)
	assert.ErrorIs(t, err, ErrNilFetchFunc)

	_, err = e.Process(context.Background(), testFiles(1),
		func(context.Context, string) ([]byte, error) { return nil, nil }, nil)
	assert.ErrorIs(t, err, ErrNilExtractFunc)
}

func TestProcess_FetchRetriesBeforeFailing(t *testing.T) {
	e := newTestEngine(t, WithRetries(3, time.Millisecond))

	var attempts atomic.Int32
	fetch := func(_ context.Context, _ string) ([]byte, error) {
		if attempts.Add(1) < 3 {
			return nil, errors.New("flaky")
		}
		return []byte("finally"), nil
	}

	result, err := e.Process(context.Background(), testFiles(1), fetch, passthroughExtract)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, int32(3), attempts.Load())
}

func TestRetryWithBackoff_InvalidAttempts(t *testing.T) {
	err := retryWithBackoff(context.Background(), func() error { return nil }, 0, time.Millisecond)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}
