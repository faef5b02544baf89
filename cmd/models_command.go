package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/etklam/srt-subtitle-translator/internal/llm"
	"github.com/etklam/srt-subtitle-translator/internal/translator"
)

func newModelsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models offered by the inference server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.closeLog()
			cfg, err := ctx.loadConfig(cmd)
			if err != nil {
				return err
			}
			client, err := llm.NewClient(cfg.LLM.ClientConfig())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			models := translator.ListModels(cmd.Context(), client)
			if len(models) == 0 {
				fmt.Fprintf(out, "No models available at %s\n", cfg.LLM.APIURL)
				return nil
			}
			for _, m := range models {
				if m == cfg.LLM.Model {
					fmt.Fprintf(out, "%s (configured)\n", m)
					continue
				}
				fmt.Fprintln(out, m)
			}
			return nil
		},
	}
}
