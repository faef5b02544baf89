package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/etklam/srt-subtitle-translator/internal/config"
	"github.com/etklam/srt-subtitle-translator/internal/conflict"
	"github.com/etklam/srt-subtitle-translator/internal/service"
	"github.com/etklam/srt-subtitle-translator/internal/subtitle"
	"github.com/etklam/srt-subtitle-translator/pkg/icron"
	"github.com/etklam/srt-subtitle-translator/pkg/log"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var (
		dirs []string
		once bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Translate new subtitles in watched directories on a schedule",
		Long: "Scan watch.dirs on the watch.cron_expr schedule and translate every .srt\n" +
			"modified since the previous scan. Existing outputs are never asked about:\n" +
			"the prompt policy becomes rename.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.closeLog()
			opts := []config.Option{}
			if cmd.Flags().Changed("dir") {
				opts = append(opts, config.WithWatchDirs(dirs...))
			}
			cfg, err := ctx.loadConfig(cmd, opts...)
			if err != nil {
				return err
			}
			return runWatch(cmd, cfg, once)
		},
	}

	cmd.Flags().StringSliceVarP(&dirs, "dir", "d", nil, "Directory to watch (repeatable)")
	cmd.Flags().BoolVar(&once, "once", false, "Scan once, wait for the translations and exit")
	return cmd
}

func runWatch(cmd *cobra.Command, cfg *config.Config, once bool) error {
	runCtx := cmd.Context()
	out := &syncWriter{w: cmd.OutOrStdout()}
	if len(cfg.Watch.Dirs) == 0 {
		return errors.New("no directories to watch; set watch.dirs or pass --dir")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Watch.LockFile), 0o755); err != nil {
		return fmt.Errorf("create lock directory: %w", err)
	}
	lock := flock.New(cfg.Watch.LockFile)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire watch lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another watch is already running (lock %s)", cfg.Watch.LockFile)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.Error("Failed to release watch lock: %v", err)
		}
	}()

	policy := cfg.Translate.ConflictPolicy
	if policy == config.PolicyPrompt {
		policy = conflict.Rename.String()
	}
	p, err := newPipeline(cfg, policy)
	if err != nil {
		return err
	}
	defer p.Close()

	events := make(chan service.Event, 64)
	printed := make(chan struct{})
	go func() {
		printEvents(out, events)
		close(printed)
	}()
	defer func() {
		p.queue.Stop()
		close(events)
		<-printed
	}()

	p.queue.Start(runCtx, p.driver.Executor(events))

	c := cron.New()
	svc, err := service.NewWatchService(service.WatchConfig{
		Dirs:     cfg.Watch.Dirs,
		CronExpr: cfg.Watch.CronExpr,
		Template: p.payload(""),
		Reader:   subtitle.NewReader(),
	}, c, p.queue)
	if err != nil {
		return err
	}

	added, err := svc.RunOnce(runCtx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Queued %d files\n", added)
	if once {
		return p.queue.Drain(runCtx)
	}

	if err := svc.Schedule(runCtx); err != nil {
		return err
	}
	if info, err := icron.GetTriggerInfo(cfg.Watch.CronExpr, time.Now()); err == nil {
		fmt.Fprintf(out, "Next scan at %s\n", formatTime(info.Next))
	}
	c.Start()
	<-runCtx.Done()
	<-c.Stop().Done()
	return nil
}
