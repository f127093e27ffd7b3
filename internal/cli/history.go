package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/dirsize/internal/history"
)

// errNoHistory is returned when a history command runs without a database.
var errNoHistory = errors.New("no history database configured: use --history-db or DIRSIZE_HISTORY_DB")

func openHistory(v *viper.Viper) (*history.DB, error) {
	path := v.GetString("history_db")
	if path == "" {
		return nil, errNoHistory
	}

	return history.Open(path)
}

// historyCommand builds "history" and "history show".
func (c CLI) historyCommand(v *viper.Viper, stdout io.Writer) *cobra.Command {
	var (
		root  string
		limit int
		top   int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List saved runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openHistory(v)
			if err != nil {
				return err
			}
			defer db.Close()

			if root != "" {
				if root, err = filepath.Abs(root); err != nil {
					return fmt.Errorf("resolving absolute path: %w", err)
				}
			}

			runs, err := db.List(cmd.Context(), root, limit)
			if err != nil {
				return err
			}

			return PrintRuns(runs, stdout)
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Only list runs of this directory")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list (0 = all)")

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Print a saved run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[0], err)
			}

			db, err := openHistory(v)
			if err != nil {
				return err
			}
			defer db.Close()

			res, err := db.Load(cmd.Context(), id)
			if err != nil {
				return err
			}

			return PrintTable(res, stdout, top, true)
		},
	}

	show.Flags().IntVarP(&top, "top", "t", 0, "Number of largest directories to display (0 = all)")

	cmd.AddCommand(show)

	return cmd
}

// PrintRuns outputs stored runs as a table.
//
//nolint:errcheck // Errors surface on Flush
func PrintRuns(runs []history.Run, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	fmt.Fprintln(w, "ID\tStarted\tRoot\tFiles\tSize\tErrors\tElapsed\t")

	for _, r := range runs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%d ms\t\n",
			r.ID,
			r.StartedAt.Format(time.DateTime),
			r.Root,
			humanize.Comma(r.FileCount),
			humanize.IBytes(uint64(r.Size)), //nolint:gosec // Sizes are never negative
			r.Errors,
			r.Elapsed/time.Millisecond)
	}

	return w.Flush()
}
