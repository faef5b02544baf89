package service

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/singleflight"

	"github.com/etklam/srt-subtitle-translator/internal/jobs"
	"github.com/etklam/srt-subtitle-translator/internal/lang"
	"github.com/etklam/srt-subtitle-translator/internal/library"
	"github.com/etklam/srt-subtitle-translator/internal/subtitle"
	"github.com/etklam/srt-subtitle-translator/pkg/icron"
	"github.com/etklam/srt-subtitle-translator/pkg/log"
)

// Enqueuer accepts translation jobs. *jobs.Queue satisfies it.
type Enqueuer interface {
	Enqueue(req jobs.EnqueueRequest) (*jobs.TranslationJob, bool)
}

type WatchConfig struct {
	Dirs     []string
	CronExpr string
	// Template is copied for every file found; SourcePath is filled in.
	Template jobs.JobPayload
	// Reader enables skipping files already in the target language.
	Reader subtitle.Reader
}

// WatchService periodically scans directories and enqueues new subtitles.
type WatchService struct {
	cfg    WatchConfig
	target lang.Language
	cron   *cron.Cron
	queue  Enqueuer
	group  singleflight.Group
	now    func() time.Time

	mu              sync.Mutex
	lastTriggerTime time.Time
}

func NewWatchService(cfg WatchConfig, c *cron.Cron, queue Enqueuer) (*WatchService, error) {
	target, err := lang.Parse(cfg.Template.TargetLanguage)
	if err != nil {
		return nil, WrapError(err, ErrConfig, "invalid watch target language")
	}
	if _, err := icron.GetTriggerInfo(cfg.CronExpr, time.Now()); err != nil {
		return nil, WrapError(err, ErrConfig, "invalid watch schedule")
	}

	return &WatchService{
		cfg:    cfg,
		target: target,
		cron:   c,
		queue:  queue,
		now:    time.Now,
	}, nil
}

// Schedule registers the scan with the cron runner. Overlapping triggers
// share one run.
func (s *WatchService) Schedule(ctx context.Context) error {
	log.Info("Watching %d directories on schedule %q", len(s.cfg.Dirs), s.cfg.CronExpr)

	_, err := s.cron.AddFunc(s.cfg.CronExpr, func() {
		if _, err := s.RunOnce(ctx); err != nil {
			log.Error("Watch run failed: %v", err)
		}
	})
	return err
}

// RunOnce scans every watched directory for subtitles modified since the
// previous run and enqueues them. It returns how many jobs were created.
func (s *WatchService) RunOnce(ctx context.Context) (int, error) {
	v, err, _ := s.group.Do("run", func() (any, error) {
		triggered := s.now()
		start, err := s.startTime()
		if err != nil {
			return 0, err
		}
		log.Info("Searching subtitles modified after %v", start)

		added := 0
		for _, dir := range s.cfg.Dirs {
			n, err := s.run(ctx, dir, start)
			if err != nil {
				log.Error("Failed to run in dir %s: %v", dir, err)
				continue
			}
			added += n
		}

		s.mu.Lock()
		s.lastTriggerTime = triggered
		s.mu.Unlock()
		return added, nil
	})
	if err != nil {
		return 0, err
	}
	return v.(int), nil
}

func (s *WatchService) run(ctx context.Context, dir string, start time.Time) (int, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, fmt.Errorf("directory %s does not exist", dir)
	}

	opts := []library.Option{library.WithModifiedSince(start)}
	if s.cfg.Reader != nil {
		opts = append(opts, library.WithLanguageDetection(s.cfg.Reader))
	}
	result, err := library.NewScanner(s.target, opts...).Scan(ctx, dir)
	if err != nil {
		return 0, err
	}

	added := 0
	for _, path := range result.Files {
		payload := s.cfg.Template
		payload.SourcePath = path
		job, created := s.queue.Enqueue(jobs.EnqueueRequest{
			Source:    "watch",
			DedupeKey: jobs.DedupeKey(path, s.target.String()),
			Payload:   payload,
		})
		if !created {
			log.Debug("%s already queued", path)
			continue
		}
		log.Info("Queued %s as job %s", path, job.ID)
		added++
	}
	log.Info("Found %d subtitles in %s, skipped %d", len(result.Files), dir, len(result.Skipped))
	return added, nil
}

func (s *WatchService) startTime() (time.Time, error) {
	s.mu.Lock()
	last := s.lastTriggerTime
	s.mu.Unlock()
	if !last.IsZero() {
		return last, nil
	}

	now := s.now()
	schedule, err := icron.GetTriggerInfo(s.cfg.CronExpr, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get cron schedule: %w", err)
	}
	// first run: look back a week unless the schedule is sparser than daily
	if now.Add(-24 * time.Hour).Before(schedule.Last) {
		return now.Add(-24 * 7 * time.Hour), nil
	}
	return schedule.Last, nil
}
