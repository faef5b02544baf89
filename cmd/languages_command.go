package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/etklam/srt-subtitle-translator/internal/lang"
)

func newLanguagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List the supported target languages and their file suffixes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all := lang.All()
			rows := make([][]string, 0, len(all))
			for _, l := range all {
				rows = append(rows, []string{l.String(), l.Suffix(), l.Tag().String()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Language", "Suffix", "Tag"}, rows, nil))
			return nil
		},
	}
}
