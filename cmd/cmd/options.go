package cmd

import (
	"fmt"
	"strconv"

	"github.com/ostafen/bootinfo/internal/config"
	"github.com/ostafen/bootinfo/internal/fs"
	"github.com/ostafen/bootinfo/internal/inspect"
	"github.com/ostafen/bootinfo/internal/logger"
	"github.com/spf13/cobra"
)

func defineImageFlags(cmd *cobra.Command, withOffsets bool) {
	cmd.Flags().StringP("file", "f", "", "path to the raw image file or device")
	_ = cmd.MarkFlagRequired("file")

	if withOffsets {
		cmd.Flags().Int64SliceP("offsets", "o", nil, "offsets of the MBR boot records to print, one per partition table slot")
	}
}

func defineCommonFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().String("config", "", "config file (default is ./bootinfo.yaml)")
	cmd.PersistentFlags().String("hash-dir", ".", "directory where the digest files are written")
	cmd.PersistentFlags().String("hash-chunk-size", "4KB", "size of the chunks the image is hashed in")
	cmd.PersistentFlags().Bool("no-hash", false, "do not compute the image digests")
	cmd.PersistentFlags().Bool("parallel", false, "hash and decode the image concurrently")
	cmd.PersistentFlags().String("dfxml", "", "write a DFXML report to the specified file")
	cmd.PersistentFlags().Bool("mmap", false, "memory map the image instead of reading it")
	cmd.PersistentFlags().Bool("segmented", true, "join split images (image.001, image.002, ...)")
	cmd.PersistentFlags().Bool("progress", false, "show hashing progress")
	cmd.PersistentFlags().String("log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR)")
}

func RunInspect(cmd *cobra.Command, args []string, mode inspect.Mode) error {
	opts, err := parseOptions(cmd, args, mode)
	if err != nil {
		return err
	}

	_, err = inspect.Run(cmd.Context(), opts, cmd.OutOrStdout())
	return err
}

func parseOptions(cmd *cobra.Command, args []string, mode inspect.Mode) (inspect.Options, error) {
	configFile, _ := cmd.Flags().GetString("config")

	v := config.New()
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return inspect.Options{}, err
	}

	cfg, err := config.Load(v, configFile)
	if err != nil {
		return inspect.Options{}, err
	}

	chunkSize, err := cfg.ChunkSize()
	if err != nil {
		return inspect.Options{}, err
	}

	offsets, err := parseOffsets(cmd, args)
	if err != nil {
		return inspect.Options{}, err
	}

	path, _ := cmd.Flags().GetString("file")

	return inspect.Options{
		Path:       fs.NormalizeVolumePath(path),
		Mode:       mode,
		Offsets:    offsets,
		HashDir:    cfg.HashDir,
		NoHash:     cfg.NoHash,
		ChunkSize:  chunkSize,
		Decompress: cfg.Decompress,
		Progress:   cfg.Progress,
		Parallel:   cfg.Parallel,
		Mmap:       cfg.Mmap,
		Segmented:  cfg.Segmented,
		DFXMLPath:  cfg.DFXML,
		Logger:     logger.New(cmd.ErrOrStderr(), logger.ParseLevel(cfg.LogLevel)),
		Stderr:     cmd.ErrOrStderr(),
	}, nil
}

// parseOffsets returns the values of --offsets followed by the positional arguments.
func parseOffsets(cmd *cobra.Command, args []string) ([]int64, error) {
	var offsets []int64
	if cmd.Flags().Lookup("offsets") != nil {
		offsets, _ = cmd.Flags().GetInt64Slice("offsets")
	}

	for _, arg := range args {
		off, err := strconv.ParseInt(arg, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid offset %q: %w", arg, err)
		}
		offsets = append(offsets, off)
	}
	return offsets, nil
}
