package cmd

import (
	"github.com/ostafen/bootinfo/internal/inspect"
	"github.com/spf13/cobra"
)

func DefineMBRCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mbr -f <image> [-o offset]... [offset]...",
		Short: "Decode the MBR partition table of an image",
		Long: `Decodes the MBR partition table of an image. Images without a valid MBR
signature are rejected, while a protective MBR (type 0xEE in the first slot)
hands the image over to the GPT decoder.`,
		Args:         cobra.ArbitraryArgs,
		SilenceUsage: true,
		RunE:         RunMBR,
	}

	defineImageFlags(cmd, true)
	return cmd
}

func RunMBR(cmd *cobra.Command, args []string) error {
	return RunInspect(cmd, args, inspect.ModeMBR)
}
