package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/cheggaaa/pb/v3"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/dirsize/internal/dirsize"
	"github.com/idelchi/dirsize/internal/history"
)

// progressTemplate renders "Measuring 3 / 12 [====>   ] 25.00%".
const progressTemplate = `{{string . "prefix"}}{{counters . }} {{bar . }} {{percent . }}`

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// newProgressBar starts a bar on w and returns the hook feeding it.
func newProgressBar(w io.Writer) (*pb.ProgressBar, func(completed, total int)) {
	bar := pb.New(0)
	bar.SetWriter(w)
	bar.SetTemplateString(progressTemplate)
	bar.Set("prefix", "Measuring ")
	bar.Start()

	return bar, func(completed, total int) {
		bar.SetTotal(int64(total))
		bar.SetCurrent(int64(completed))
	}
}

// measure runs the engine on path, drawing progress on stderr when enabled.
func measure(ctx context.Context, opts options, path string, stderr io.Writer, showProgress bool) (*dirsize.Result, error) {
	var (
		bar      *pb.ProgressBar
		progress func(int, int)
	)

	if showProgress {
		bar, progress = newProgressBar(stderr)
	}

	res, err := dirsize.Run(ctx, dirsize.Options{
		Path:        path,
		Workers:     opts.Workers,
		Walker:      opts.Walker,
		Progress:    progress,
		Debug:       opts.Debug,
		DebugWriter: stderr,
	})

	if bar != nil {
		bar.Finish()
	}

	return res, err
}

func logic(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	enableProgress := opts.Output == "table" &&
		!opts.Debug &&
		!opts.Interactive &&
		isTerminal(stderr)

	res, err := measure(ctx, opts, opts.Path, stderr, enableProgress)
	if err != nil {
		return err
	}

	if opts.HistoryDB != "" {
		if err := save(ctx, opts.HistoryDB, res, stderr, opts.Debug); err != nil {
			return err
		}
	}

	if opts.PDF != "" {
		if err := WritePDF(res, opts.PDF, opts.Top); err != nil {
			return err
		}
	}

	if opts.Interactive {
		return browse(ctx, res, opts, stdout, stderr)
	}

	var buf bytes.Buffer

	if err := render(res, &buf, opts); err != nil {
		return err
	}

	if _, err := stdout.Write(buf.Bytes()); err != nil {
		return err
	}

	if opts.Clipboard {
		if err := clipboard.WriteAll(buf.String()); err != nil {
			fmt.Fprintf(stderr, "Error writing to clipboard: %v\n", err)
		} else {
			fmt.Fprintln(stderr, "Output copied to clipboard.")
		}
	}

	return nil
}

// render writes res in the selected output format.
func render(res *dirsize.Result, w io.Writer, opts options) error {
	switch opts.Output {
	case "json":
		return PrintJSON(res, w)
	case "paths":
		return PrintPaths(res, w, opts.Top)
	case "table":
		return PrintTable(res, w, opts.Top, opts.Errors)
	default:
		return fmt.Errorf("unknown output format: %s", opts.Output)
	}
}

// save stores res in the history database at path.
func save(ctx context.Context, path string, res *dirsize.Result, stderr io.Writer, debug bool) error {
	db, err := history.Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	id, err := db.Save(ctx, res)
	if err != nil {
		return err
	}

	if debug {
		fmt.Fprintf(stderr, "[debug]: saved run %d to %s\n", id, path)
	}

	return nil
}
