package cmd

import (
	"context"

	"github.com/ostafen/bootinfo/internal/env"
	"github.com/ostafen/bootinfo/internal/inspect"
	"github.com/spf13/cobra"
)

func Execute(ctx context.Context) error {
	return NewRootCommand().ExecuteContext(ctx)
}

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   env.AppName + " -f <image> [-o offset]... [offset]...",
		Short: env.AppName + " - MBR/GPT partition table inspector",
		Long: `Inspects a raw disk image and prints its partition table.

Images with a valid MBR signature are decoded as MBR, any other image is
decoded as GPT. The MD5, SHA-256 and SHA-512 digests of the image are
stored next to each other in the hash directory.

Offsets are associated with MBR partition table slots by position: the first
offset selects the 16 bytes printed from the first slot's partition, and so on.`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return RunInspect(cmd, args, inspect.ModeAuto)
		},
	}

	defineImageFlags(rootCmd, true)
	defineCommonFlags(rootCmd)

	rootCmd.AddCommand(DefineMBRCommand())
	rootCmd.AddCommand(DefineGPTCommand())
	rootCmd.AddCommand(DefineHashCommand())
	rootCmd.AddCommand(DefineVersionCommand())

	return rootCmd
}
