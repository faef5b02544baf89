package jobs

import "context"

// Store persists job states. Jobs left pending or running by a previous
// process are reported as failed, never resumed.
type Store interface {
	LoadJobs(ctx context.Context) ([]*TranslationJob, error)
	UpsertJob(ctx context.Context, job *TranslationJob) error
	DeleteJob(ctx context.Context, jobID string) error
}
