package cmd

import (
	"github.com/ostafen/bootinfo/internal/inspect"
	"github.com/spf13/cobra"
)

func DefineHashCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hash -f <image>",
		Short: "Compute the MD5, SHA-256 and SHA-512 digests of an image",
		Long: `Computes the digests of an image and stores them in the hash directory.
Compressed acquisitions can be verified with --decompress, which hashes the
uncompressed stream.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         RunHash,
	}

	defineImageFlags(cmd, false)
	cmd.Flags().String("decompress", "none", "decompress the image before hashing (none, auto, gzip, zstd, bzip2)")
	return cmd
}

func RunHash(cmd *cobra.Command, args []string) error {
	return RunInspect(cmd, args, inspect.ModeHash)
}
