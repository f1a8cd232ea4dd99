package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/ostafen/bootinfo/cmd/cmd"
	"github.com/ostafen/bootinfo/internal/env"
)

func main() {
	PrintLogo()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

// PrintLogo prints the banner on stderr, stdout only carries the report.
func PrintLogo() {
	fmt.Fprintln(os.Stderr, " _                 _   _        __")
	fmt.Fprintln(os.Stderr, "| |__   ___   ___ | |_(_)_ __  / _| ___")
	fmt.Fprintln(os.Stderr, "| '_ \\ / _ \\ / _ \\| __| | '_ \\| |_ / _ \\")
	fmt.Fprintln(os.Stderr, "| |_) | (_) | (_) | |_| | | | |  _| (_) |")
	fmt.Fprintln(os.Stderr, "|_.__/ \\___/ \\___/ \\__|_|_| |_|_|  \\___/")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "MBR/GPT partition table inspector")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Version:   %s\n", env.Version)
	fmt.Fprintf(os.Stderr, "Commit:    %s\n", env.CommitHash)
	fmt.Fprintf(os.Stderr, "Build Time: %s\n", env.BuildTime)
	fmt.Fprintln(os.Stderr, " ")
}
