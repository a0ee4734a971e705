package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <tour>",
	Short: "Fetch every file of a tour and report the outcome",
	Long: `Fetch the code examples of a tour one by one, using the same loader as
the server, and print their size and fetch time. Exits non-zero when any
file fails to load.

Examples:
  codetour fetch two-column-demo
  CODETOUR_LOADER_TIMEOUT=2s codetour fetch tours/remote.tour.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	t, err := env.openTour(args[0])
	if err != nil {
		return err
	}

	l := env.loader()
	ctx := cmd.Context()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tSOURCE\tSIZE\tTIME\tSTATUS")

	failed := 0
	for _, file := range t.Files() {
		start := time.Now()
		content, err := l.Fetch(ctx, file)
		elapsed := time.Since(start).Round(time.Millisecond)

		status, size := "ok", humanize.Bytes(uint64(len(content)))
		if err != nil {
			failed++
			status, size = err.Error(), "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", file.DirPath, file.Source(), size, elapsed, status)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed to load", failed, len(t.Files()))
	}
	return nil
}
