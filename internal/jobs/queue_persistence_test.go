package jobs

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryStore struct {
	mu   sync.Mutex
	jobs map[string]*TranslationJob
}

func newMemoryStore() *memoryStore {
	return &memoryStore{jobs: make(map[string]*TranslationJob)}
}

func (m *memoryStore) LoadJobs(_ context.Context) ([]*TranslationJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ret := make([]*TranslationJob, 0, len(m.jobs))
	for _, j := range m.jobs {
		ret = append(ret, cloneJob(j))
	}
	return ret, nil
}

func (m *memoryStore) UpsertJob(_ context.Context, job *TranslationJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[job.ID] = cloneJob(job)
	return nil
}

func (m *memoryStore) DeleteJob(_ context.Context, jobID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.jobs, jobID)
	return nil
}

func (m *memoryStore) get(id string) *TranslationJob {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneJob(m.jobs[id])
}

func TestQueue_MarksUnfinishedJobsFromStoreAsInterrupted(t *testing.T) {
	store := newMemoryStore()
	now := time.Now()
	for id, status := range map[string]Status{"a": StatusPending, "b": StatusRunning, "c": StatusCompleted} {
		store.jobs[id] = &TranslationJob{
			ID:        id,
			Source:    "watch",
			DedupeKey: "/media/" + id + ".srt|english",
			Status:    status,
			Payload:   JobPayload{SourcePath: "/media/" + id + ".srt"},
			CreatedAt: now,
			UpdatedAt: now,
		}
	}

	var executed []string
	q := NewQueue(1, store)
	q.Start(context.Background(), func(_ context.Context, job *TranslationJob) (*Outcome, error) {
		executed = append(executed, job.ID)
		return &Outcome{}, nil
	})
	defer q.Stop()
	require.NoError(t, q.Drain(context.Background()))

	assert.Empty(t, executed, "interrupted jobs must not be resumed")
	for _, id := range []string{"a", "b"} {
		got, ok := q.Get(id)
		require.True(t, ok)
		assert.Equal(t, StatusFailed, got.Status)
		assert.Equal(t, ErrInterrupted.Error(), got.Error)
		assert.Equal(t, StatusFailed, store.get(id).Status)
	}
	got, _ := q.Get("c")
	assert.Equal(t, StatusCompleted, got.Status)

	// the dedupe key of an interrupted job is free again
	_, created := q.Enqueue(EnqueueRequest{DedupeKey: "/media/a.srt|english"})
	assert.True(t, created)
}

func TestQueue_PersistsTerminalOutcome(t *testing.T) {
	store := newMemoryStore()
	q := NewQueue(1, store)
	q.Start(context.Background(), succeed)
	defer q.Stop()

	job, _ := q.Enqueue(EnqueueRequest{Source: "cli", DedupeKey: "k", Payload: JobPayload{SourcePath: "/m/a.srt"}})
	require.NoError(t, q.Drain(context.Background()))

	stored := store.get(job.ID)
	require.NotNil(t, stored)
	assert.Equal(t, StatusCompleted, stored.Status)
	assert.Equal(t, "/m/a.srt.out", stored.OutputPath)
	assert.Equal(t, 2, stored.Translated)
}

func TestQueue_PrunesOldestTerminalJobs(t *testing.T) {
	store := newMemoryStore()
	q := NewQueue(1, store, WithMaxJobs(2))
	q.Start(context.Background(), succeed)
	defer q.Stop()

	var ids []string
	for i := range 4 {
		job, _ := q.Enqueue(EnqueueRequest{DedupeKey: fmt.Sprintf("k%d", i)})
		ids = append(ids, job.ID)
		require.NoError(t, q.Drain(context.Background()))
	}

	assert.Len(t, q.List(), 2)
	_, ok := q.Get(ids[0])
	assert.False(t, ok)
	assert.Nil(t, store.get(ids[0]))
	assert.NotNil(t, store.get(ids[3]))
}
