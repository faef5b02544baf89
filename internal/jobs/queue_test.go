package jobs

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func succeed(_ context.Context, job *TranslationJob) (*Outcome, error) {
	return &Outcome{OutputPath: job.Payload.SourcePath + ".out", Total: 3, Translated: 2, Failed: 1}, nil
}

func TestQueue_Enqueue_DeduplicatesSameKey(t *testing.T) {
	q := NewQueue(2, nil)

	jobA, createdA := q.Enqueue(EnqueueRequest{
		Source:    "cli",
		DedupeKey: DedupeKey("/media/ep1.srt", "English"),
	})
	jobB, createdB := q.Enqueue(EnqueueRequest{
		Source:    "watch",
		DedupeKey: DedupeKey("/media/../media/ep1.srt", "english"),
	})

	require.True(t, createdA)
	require.False(t, createdB)
	require.NotNil(t, jobA)
	require.NotNil(t, jobB)
	assert.Equal(t, jobA.ID, jobB.ID)
	assert.Len(t, q.List(), 1)
}

func TestQueue_Enqueue_DifferentTargetsAreDistinct(t *testing.T) {
	q := NewQueue(1, nil)

	_, created := q.Enqueue(EnqueueRequest{DedupeKey: DedupeKey("/media/ep1.srt", "English")})
	require.True(t, created)
	_, created = q.Enqueue(EnqueueRequest{DedupeKey: DedupeKey("/media/ep1.srt", "Japanese")})
	assert.True(t, created)
}

func TestQueue_Enqueue_AllowsRetryAfterFailure(t *testing.T) {
	q := NewQueue(1, nil)

	var attempts atomic.Int32
	q.Start(context.Background(), func(ctx context.Context, job *TranslationJob) (*Outcome, error) {
		if attempts.Add(1) == 1 {
			return nil, assert.AnError
		}
		return succeed(ctx, job)
	})
	defer q.Stop()

	first, created := q.Enqueue(EnqueueRequest{Source: "cli", DedupeKey: "retry-key"})
	require.True(t, created)

	require.Eventually(t, func() bool {
		got, ok := q.Get(first.ID)
		return ok && got.Status == StatusFailed
	}, time.Second, 10*time.Millisecond)
	got, _ := q.Get(first.ID)
	assert.Equal(t, assert.AnError.Error(), got.Error)

	second, created := q.Enqueue(EnqueueRequest{Source: "cli", DedupeKey: "retry-key"})
	require.True(t, created)
	assert.NotEqual(t, first.ID, second.ID)

	require.Eventually(t, func() bool {
		got, ok := q.Get(second.ID)
		return ok && got.Status == StatusCompleted
	}, time.Second, 10*time.Millisecond)
}

func TestQueue_Worker_RecordsOutcome(t *testing.T) {
	q := NewQueue(1, nil)
	q.Start(context.Background(), succeed)
	defer q.Stop()

	job, _ := q.Enqueue(EnqueueRequest{
		Source:    "cli",
		DedupeKey: "k1",
		Payload:   JobPayload{SourcePath: "/media/ep1.srt"},
	})
	require.NoError(t, q.Drain(context.Background()))

	got, ok := q.Get(job.ID)
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, got.Status)
	assert.Equal(t, "/media/ep1.srt.out", got.OutputPath)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, 2, got.Translated)
	assert.Equal(t, 1, got.Failed)
}

func TestQueue_Worker_Skipped(t *testing.T) {
	q := NewQueue(1, nil)
	q.Start(context.Background(), func(context.Context, *TranslationJob) (*Outcome, error) {
		return &Outcome{Skipped: true}, nil
	})
	defer q.Stop()

	job, _ := q.Enqueue(EnqueueRequest{DedupeKey: "k1"})
	require.NoError(t, q.Drain(context.Background()))

	got, _ := q.Get(job.ID)
	assert.Equal(t, StatusSkipped, got.Status)
	assert.Empty(t, got.Error)
}

func TestQueue_JobsEnqueuedBeforeStartRunInOrder(t *testing.T) {
	q := NewQueue(1, nil)
	var order []string
	a, _ := q.Enqueue(EnqueueRequest{DedupeKey: "a"})
	time.Sleep(time.Millisecond)
	b, _ := q.Enqueue(EnqueueRequest{DedupeKey: "b"})

	q.Start(context.Background(), func(_ context.Context, job *TranslationJob) (*Outcome, error) {
		order = append(order, job.ID)
		return &Outcome{}, nil
	})
	defer q.Stop()

	require.NoError(t, q.Drain(context.Background()))
	assert.Equal(t, []string{a.ID, b.ID}, order)
}

func TestQueue_RunsFilesConcurrently(t *testing.T) {
	q := NewQueue(3, nil)
	var inFlight, peak atomic.Int32
	q.Start(context.Background(), func(context.Context, *TranslationJob) (*Outcome, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		return &Outcome{}, nil
	})
	defer q.Stop()

	for _, k := range []string{"a", "b", "c", "d", "e", "f"} {
		q.Enqueue(EnqueueRequest{DedupeKey: k})
	}
	require.NoError(t, q.Drain(context.Background()))
	assert.LessOrEqual(t, peak.Load(), int32(3))
	assert.Greater(t, peak.Load(), int32(1))
}

func TestQueue_DrainHonoursContext(t *testing.T) {
	q := NewQueue(1, nil)
	q.Enqueue(EnqueueRequest{DedupeKey: "never-started"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.Drain(ctx), context.DeadlineExceeded)
}
