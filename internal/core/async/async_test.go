package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/sugar-reports/constants"
	"github.com/joseph-ayodele/sugar-reports/internal/entity"
)

type stubRunner struct {
	active, peak atomic.Int32
	delay        time.Duration
}

func (s *stubRunner) Run(ctx context.Context, doc entity.Document) entity.DocumentResult {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	select {
	case <-time.After(s.delay):
	case <-ctx.Done():
		return entity.DocumentResult{Document: doc.Name, Status: constants.DocumentStatusAcquisitionFailed, Error: "interrupted"}
	}
	if string(doc.Content) == "bad" {
		return entity.DocumentResult{Document: doc.Name, Status: constants.DocumentStatusAcquisitionFailed, Error: "no text"}
	}
	return entity.DocumentResult{Document: doc.Name, Status: constants.DocumentStatusOK}
}

func bytesJob(name, content string) Job {
	return Job{Name: name, Load: func(context.Context) (entity.Document, error) {
		return entity.Document{Name: name, Content: []byte(content)}, nil
	}}
}

func TestBatch_Run(t *testing.T) {
	runner := &stubRunner{delay: 10 * time.Millisecond}
	var sunk atomic.Int32
	b := NewBatch(runner, nil, WithWorkers(2), WithSink(func(entity.DocumentResult) { sunk.Add(1) }))

	jobs := []Job{
		bytesJob("a.pdf", "ok"),
		bytesJob("b.pdf", "bad"),
		{Name: "c.pdf", Load: func(context.Context) (entity.Document, error) { return entity.Document{}, errors.New("object gone") }},
		bytesJob("d.pdf", "ok"),
		bytesJob("e.pdf", "ok"),
	}
	results, err := b.Run(context.Background(), jobs)
	require.NoError(t, err)
	require.Len(t, results, len(jobs))

	for i, j := range jobs {
		assert.Equal(t, j.Name, results[i].Document)
	}
	assert.Equal(t, constants.DocumentStatusOK, results[0].Status)
	assert.Equal(t, constants.DocumentStatusAcquisitionFailed, results[1].Status)
	assert.Equal(t, constants.DocumentStatusFailed, results[2].Status)
	assert.Contains(t, results[2].Error, "object gone")
	assert.True(t, results[4].OK())

	assert.LessOrEqual(t, runner.peak.Load(), int32(2))
	assert.Equal(t, int32(len(jobs)), sunk.Load())
}

func TestBatch_Timeout(t *testing.T) {
	runner := &stubRunner{delay: time.Second}
	b := NewBatch(runner, nil, WithProcessTimeout(20*time.Millisecond))

	results, err := b.Run(context.Background(), []Job{bytesJob("slow.pdf", "ok")})
	require.NoError(t, err)
	assert.Equal(t, constants.DocumentStatusFailed, results[0].Status)
	assert.Contains(t, results[0].Error, context.DeadlineExceeded.Error())
}

func TestBatch_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := NewBatch(&stubRunner{}, nil)
	results, err := b.Run(ctx, []Job{bytesJob("a.pdf", "ok"), bytesJob("b.pdf", "ok")})
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, constants.DocumentStatusFailed, r.Status)
	}
}

func TestProcessorQueue(t *testing.T) {
	var mu sync.Mutex
	var got []string
	q := NewProcessorQueue(&stubRunner{}, nil, WithWorkers(3), WithQueueSize(1),
		WithSink(func(r entity.DocumentResult) {
			mu.Lock()
			got = append(got, r.Document)
			mu.Unlock()
		}))

	names := []string{"1.pdf", "2.pdf", "3.pdf", "4.pdf", "5.pdf"}
	for _, n := range names {
		require.NoError(t, q.Enqueue(context.Background(), bytesJob(n, "ok")))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, names, got)

	err := q.Enqueue(context.Background(), bytesJob("late.pdf", "ok"))
	assert.ErrorIs(t, err, ErrQueueClosed)
}
