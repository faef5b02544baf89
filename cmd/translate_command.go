package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/etklam/srt-subtitle-translator/internal/config"
	"github.com/etklam/srt-subtitle-translator/internal/conflict"
	"github.com/etklam/srt-subtitle-translator/internal/jobs"
	"github.com/etklam/srt-subtitle-translator/internal/library"
	"github.com/etklam/srt-subtitle-translator/internal/service"
	"github.com/etklam/srt-subtitle-translator/pkg/log"
)

type translateFlags struct {
	source    string
	target    string
	model     string
	prompts   string
	encoding  string
	conflict  string
	batchSize int
	workers   int
	replace   bool
	yes       bool
	altPrompt bool
	clean     bool
	debug     bool
}

func (f *translateFlags) options(cmd *cobra.Command) []config.Option {
	changed := cmd.Flags().Changed
	opts := make([]config.Option, 0)
	if changed("source") {
		opts = append(opts, config.WithSourceLanguage(f.source))
	}
	if changed("target") {
		opts = append(opts, config.WithTargetLanguage(f.target))
	}
	if changed("model") {
		opts = append(opts, config.WithModel(f.model))
	}
	if changed("prompts") {
		opts = append(opts, config.WithPromptsFile(f.prompts))
	}
	if changed("encoding") {
		opts = append(opts, config.WithEncoding(f.encoding))
	}
	if changed("conflict") {
		opts = append(opts, config.WithConflictPolicy(f.conflict))
	}
	if changed("batch-size") {
		opts = append(opts, config.WithBatchSize(f.batchSize))
	}
	if changed("workers") {
		opts = append(opts, config.WithWorkers(f.workers))
	}
	if changed("replace") {
		opts = append(opts, config.WithReplaceOriginal(f.replace))
	}
	if changed("alt-prompt") {
		opts = append(opts, config.WithAltPrompt(f.altPrompt))
	}
	if changed("clean") {
		opts = append(opts, config.WithClean(f.clean))
	}
	if changed("debug") {
		opts = append(opts, config.WithDebug(f.debug))
	}
	return opts
}

func newTranslateCommand(ctx *commandContext) *cobra.Command {
	flags := &translateFlags{}

	cmd := &cobra.Command{
		Use:   "translate <file-or-dir>...",
		Short: "Translate subtitle files",
		Long: "Translate every given .srt file, and every .srt found below the given directories,\n" +
			"into the target language. Each file is written next to its source as\n" +
			"{name}{suffix}.srt, e.g. movie.zh_tw.srt.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.closeLog()
			cfg, err := ctx.loadConfig(cmd, flags.options(cmd)...)
			if err != nil {
				return err
			}
			return runTranslate(cmd, cfg, flags.yes, args)
		},
	}

	cmd.Flags().StringVarP(&flags.target, "target", "t", "", "Target language (name or code)")
	cmd.Flags().StringVarP(&flags.source, "source", "s", "", "Source language (name or code)")
	cmd.Flags().StringVarP(&flags.model, "model", "m", "", "Model to translate with")
	cmd.Flags().StringVar(&flags.prompts, "prompts", "", "Prompt file with default_prompt and alt_prompt")
	cmd.Flags().StringVar(&flags.encoding, "encoding", "", "Output encoding (default utf-8)")
	cmd.Flags().StringVar(&flags.conflict, "conflict", "", "Existing output: prompt, overwrite, rename or skip")
	cmd.Flags().IntVarP(&flags.batchSize, "batch-size", "b", 0, "Entries translated concurrently per batch")
	cmd.Flags().IntVarP(&flags.workers, "workers", "w", 0, "Files translated at the same time")
	cmd.Flags().BoolVar(&flags.replace, "replace", false, "Replace the source file (a copy goes to backup/)")
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "Do not ask before replacing source files")
	cmd.Flags().BoolVar(&flags.altPrompt, "alt-prompt", false, "Use the alternate prompt")
	cmd.Flags().BoolVar(&flags.clean, "clean", false, "Drop parenthetical-only entries before translating")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "Log every original and translated entry")

	return cmd
}

func runTranslate(cmd *cobra.Command, cfg *config.Config, yes bool, args []string) error {
	runCtx := cmd.Context()
	out := cmd.OutOrStdout()
	interactive := isTerminal(cmd.InOrStdin()) && isTerminal(out)

	var prompter *conflict.Prompter
	if interactive {
		prompter = conflict.NewPrompter(cmd.InOrStdin(), out)
	}

	if cfg.Translate.ReplaceOriginal && !yes {
		if prompter == nil {
			return errors.New("refusing to replace source files without a terminal to confirm; pass --yes")
		}
		if !prompter.Confirm(runCtx, "Source files will be replaced (copies go to backup/). Continue?") {
			fmt.Fprintln(out, "aborted")
			return nil
		}
	}

	result, err := library.NewScanner(cfg.TargetLanguage()).Scan(runCtx, args...)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Found %d files to translate (skipped %d translated, %d in backup, %d duplicates)\n",
		len(result.Files),
		result.Count(library.SkipTranslated),
		result.Count(library.SkipBackup),
		result.Count(library.SkipDuplicate))
	if len(result.Files) == 0 {
		return nil
	}

	p, err := newPipeline(cfg, "")
	if err != nil {
		return err
	}
	defer p.Close()
	p.serveConflicts(runCtx, prompter)

	events := make(chan service.Event, 64)
	printed := make(chan struct{})
	go func() {
		printEvents(out, events)
		close(printed)
	}()

	p.queue.Start(runCtx, p.driver.Executor(events))

	ids := make([]string, 0, len(result.Files))
	for _, path := range result.Files {
		job, created := p.queue.Enqueue(jobs.EnqueueRequest{
			Source:    "cli",
			DedupeKey: jobs.DedupeKey(path, cfg.TargetLanguage().String()),
			Payload:   p.payload(path),
		})
		if !created {
			log.Warn("%s is already queued", path)
			continue
		}
		ids = append(ids, job.ID)
	}

	drainErr := p.queue.Drain(runCtx)
	p.queue.Stop()
	close(events)
	<-printed

	run := make([]*jobs.TranslationJob, 0, len(ids))
	failed := 0
	for _, id := range ids {
		job, ok := p.queue.Get(id)
		if !ok {
			continue
		}
		if job.Status == jobs.StatusFailed {
			failed++
		}
		run = append(run, job)
	}
	fmt.Fprintln(out, renderTable(summaryHeaders, summaryRows(run),
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight}))

	if drainErr != nil {
		return drainErr
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(run))
	}
	return nil
}
