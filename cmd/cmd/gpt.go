package cmd

import (
	"github.com/ostafen/bootinfo/internal/inspect"
	"github.com/spf13/cobra"
)

func DefineGPTCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "gpt -f <image>",
		Short:        "Decode the GPT partition entries of an image",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         RunGPT,
	}

	defineImageFlags(cmd, false)
	return cmd
}

func RunGPT(cmd *cobra.Command, args []string) error {
	return RunInspect(cmd, args, inspect.ModeGPT)
}
