package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/etklam/srt-subtitle-translator/internal/config"
	"github.com/etklam/srt-subtitle-translator/internal/lang"
	"github.com/etklam/srt-subtitle-translator/internal/library"
	"github.com/etklam/srt-subtitle-translator/internal/service"
	"github.com/etklam/srt-subtitle-translator/internal/subtitle"
)

func newCleanCommand(ctx *commandContext) *cobra.Command {
	var noBackup bool

	cmd := &cobra.Command{
		Use:   "clean <file-or-dir>...",
		Short: "Remove parenthetical-only entries such as (door creaks)",
		Long: "Rewrite each subtitle in place without entries whose first line is only a\n" +
			"parenthetical remark, renumbering the rest. The original is copied to backup/ first.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.closeLog()
			cfg, err := ctx.loadConfig(cmd)
			if err != nil {
				return err
			}
			return runClean(cmd, cfg, !noBackup, args)
		},
	}

	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "Do not copy the original to backup/")
	return cmd
}

func runClean(cmd *cobra.Command, cfg *config.Config, backup bool, args []string) error {
	out := cmd.OutOrStdout()

	// no target language: every .srt outside backup/ is a candidate
	result, err := library.NewScanner(lang.Unknown).Scan(cmd.Context(), args...)
	if err != nil {
		return err
	}
	writer, err := subtitle.NewWriter(cfg.Translate.Encoding)
	if err != nil {
		return err
	}
	reader := subtitle.NewReader()

	failed := 0
	for _, path := range result.Files {
		if err := cleanFile(reader, writer, path, backup, out); err != nil {
			fmt.Fprintf(out, "failed: %s: %v\n", path, err)
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(result.Files))
	}
	return nil
}

func cleanFile(reader subtitle.Reader, writer subtitle.Writer, path string, backup bool, out io.Writer) error {
	sub, err := reader.Read(path)
	if err != nil {
		return err
	}
	lines, stats := subtitle.Clean(sub.Lines)
	if stats.Removed() == 0 {
		fmt.Fprintf(out, "unchanged: %s\n", path)
		return nil
	}

	if backup {
		if _, err := service.Backup(path); err != nil {
			fmt.Fprintf(out, "warning: backup failed (%v)\n", err)
		}
	}

	sub.Lines = lines
	if err := writer.Write(path, sub); err != nil {
		return err
	}
	fmt.Fprintf(out, "cleaned: %s (removed %d of %d entries)\n", path, stats.Removed(), stats.Total)
	return nil
}
