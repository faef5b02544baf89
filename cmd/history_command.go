package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/etklam/srt-subtitle-translator/internal/jobs"
	"github.com/etklam/srt-subtitle-translator/internal/persistence"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		status string
		limit  int
		purge  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the outcome of earlier translations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.closeLog()
			cfg, err := ctx.loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cfg.History.Enabled {
				return errors.New("run history is disabled (history.enabled = false)")
			}

			store, err := persistence.NewSQLiteStore(cfg.History.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if purge > 0 {
				n, err := store.PurgeBefore(cmd.Context(), time.Now().Add(-purge))
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Purged %d jobs older than %s\n", n, purge)
				return nil
			}

			filter := persistence.HistoryFilter{Limit: limit}
			if status != "" {
				filter.Status = jobs.Status(status)
				switch filter.Status {
				case jobs.StatusPending, jobs.StatusRunning, jobs.StatusCompleted, jobs.StatusSkipped, jobs.StatusFailed:
				default:
					return fmt.Errorf("unknown status %q", status)
				}
			}
			history, err := store.ListHistory(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(history) == 0 {
				fmt.Fprintln(out, "No translations recorded")
				return nil
			}

			rows := make([][]string, 0, len(history))
			for _, job := range history {
				rows = append(rows, []string{
					formatTime(job.UpdatedAt),
					filepath.Base(job.Payload.SourcePath),
					job.Payload.TargetLanguage,
					string(job.Status),
					strconv.Itoa(job.Translated) + "/" + strconv.Itoa(job.Total),
					historyDetail(job),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Updated", "File", "Target", "Status", "Translated", "Output / Error"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only show jobs with this status")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of jobs to show, 0 for all")
	cmd.Flags().DurationVar(&purge, "purge", 0, "Delete finished jobs older than this, e.g. 720h")
	return cmd
}

func historyDetail(job *jobs.TranslationJob) string {
	if job.Status == jobs.StatusFailed {
		return job.Error
	}
	return job.OutputPath
}
