package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/idelchi/dirsize/internal/dirsize"
	"github.com/idelchi/dirsize/internal/integration"
)

// CLI represents the command-line interface.
type CLI struct {
	version string
}

// New creates a new CLI instance with the given version.
func New(version string) CLI {
	return CLI{version: version}
}

// AllowedOutputs lists the supported output formats.
//
//nolint:gochecknoglobals // Config constant
var AllowedOutputs = []string{"table", "json", "paths"}

// options holds the resolved settings of one invocation.
type options struct {
	Path        string
	Workers     int
	Walker      string
	Output      string
	Top         int
	Errors      bool
	HistoryDB   string
	Interactive bool
	Clipboard   bool
	PDF         string
	Debug       bool
	Integration bool
}

// Execute runs the CLI with the process arguments.
// An interrupt cancels the measurement in progress.
func (c CLI) Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return c.command(viper.New(), os.Stdout, os.Stderr).ExecuteContext(ctx)
}

// command builds the root command writing to stdout and stderr.
//
//nolint:funlen // Flag declarations
func (c CLI) command(v *viper.Viper, stdout, stderr io.Writer) *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:   "dirsize [flags] [path]",
		Short: "dirsize reports the size and file count of each subdirectory.",
		Long: heredoc.Doc(`
			dirsize measures a directory and each of its immediate subdirectories.

			The files directly inside the directory are counted first. Every
			subdirectory is then measured recursively, several at a time, and
			reported with its total size and number of files.

			Directories that cannot be read are skipped and listed as errors
			(see --errors). Symbolic links are never followed.

			The '--init' flag prints a zsh snippet that pipes '--output paths'
			into 'fzf' and changes into the selected directory.

			Settings can also come from $HOME/.config/dirsize/config.yaml
			or DIRSIZE_* environment variables (e.g. DIRSIZE_WORKERS=8).
		`),
		Version:       c.version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return loadConfig(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := resolve(v, args)

			if opts.Integration {
				rendered, err := integration.Render()
				if err != nil {
					return fmt.Errorf("rendering integration script: %w", err)
				}

				fmt.Fprintln(stdout, rendered)

				return nil
			}

			if err := validate(opts); err != nil {
				return err
			}

			return logic(cmd.Context(), opts, stdout, stderr)
		},
	}

	root.SetOut(stdout)
	root.SetErr(stderr)

	pflags := root.PersistentFlags()
	pflags.StringVar(&cfgFile, "config", "", "Config file (default $HOME/.config/dirsize/config.yaml)")
	pflags.String("history-db", "", "SQLite database in which runs are saved (empty = do not save)")
	pflags.Bool("debug", false, "Enable debug output")

	flags := root.Flags()
	flags.StringP("path", "p", "", "Directory to measure. Defaults to the positional argument or the current directory")
	flags.IntP("workers", "w", dirsize.DefaultWorkers, "Maximum number of subdirectories measured at once")
	flags.String("walker", dirsize.WalkerFastwalk, fmt.Sprintf("Walker backend: one of %v", dirsize.Walkers))
	flags.StringP("output", "o", "table", fmt.Sprintf("Output format: one of %v", AllowedOutputs))
	flags.IntP("top", "t", 0, "Number of largest directories to display (0 = all)")
	flags.Bool("errors", false, "List directories that could not be read")
	flags.BoolP("interactive", "I", false, "Browse the results interactively")
	flags.BoolP("clipboard", "c", false, "Copy the report to the clipboard")
	flags.String("pdf", "", "Also write the report as a PDF file")
	flags.BoolP("init", "i", false, "Output init script for shell usage")

	flags.SortFlags = false

	bindFlags(v, pflags, flags)

	root.AddCommand(c.historyCommand(v, stdout))

	return root
}

// bindFlags binds every flag to the viper key of the same name with dashes
// replaced by underscores.
func bindFlags(v *viper.Viper, sets ...*pflag.FlagSet) {
	for _, set := range sets {
		set.VisitAll(func(f *pflag.Flag) {
			if f.Name == "config" {
				return
			}

			_ = v.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
		})
	}
}

// loadConfig reads the config file and DIRSIZE_* environment variables.
// A missing default config file is not an error; a missing explicit one is.
func loadConfig(v *viper.Viper, file string) error {
	v.SetEnvPrefix("DIRSIZE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "dirsize"))
		}

		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file == "" && errors.As(err, &notFound) {
			return nil
		}

		return fmt.Errorf("reading config: %w", err)
	}

	return nil
}

// resolve reads the effective settings from flags, environment and config.
func resolve(v *viper.Viper, args []string) options {
	opts := options{
		Path:        v.GetString("path"),
		Workers:     v.GetInt("workers"),
		Walker:      v.GetString("walker"),
		Output:      strings.ToLower(v.GetString("output")),
		Top:         v.GetInt("top"),
		Errors:      v.GetBool("errors"),
		HistoryDB:   v.GetString("history_db"),
		Interactive: v.GetBool("interactive"),
		Clipboard:   v.GetBool("clipboard"),
		PDF:         v.GetString("pdf"),
		Debug:       v.GetBool("debug"),
		Integration: v.GetBool("init"),
	}

	if len(args) > 0 {
		opts.Path = args[0]
	}

	if opts.Path == "" {
		opts.Path = "."
	}

	return opts
}

func validate(opts options) error {
	if !slices.Contains(AllowedOutputs, opts.Output) {
		return fmt.Errorf("invalid output format %q: must be one of %v", opts.Output, AllowedOutputs)
	}

	if !slices.Contains(dirsize.Walkers, opts.Walker) {
		return fmt.Errorf("invalid walker %q: must be one of %v", opts.Walker, dirsize.Walkers)
	}

	if opts.Workers < 1 {
		return errors.New("workers must be at least 1")
	}

	if opts.Top < 0 {
		return errors.New("top cannot be negative")
	}

	if opts.Interactive && opts.Output != "table" {
		return errors.New("interactive mode requires table output")
	}

	return nil
}
