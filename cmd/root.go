package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/aidarkhanov/nanoid"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/peppetort/POLIMI-CG-21-22-dronesimulator/pkg/buildrun"
	"github.com/peppetort/POLIMI-CG-21-22-dronesimulator/pkg/config"
)

// configError marks invalid configuration or command line usage. It results in exit status 2.
type configError struct {
	err error
}

func (e *configError) Error() string {
	return e.err.Error()
}

func (e *configError) Unwrap() error {
	return e.err
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return &configError{eris.Errorf("%s doesn't accept arguments, got %q", cmd.CommandPath(), args)}
	}

	return nil
}

func newRootCmd(executor buildrun.Executor) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cgbuild",
		Short: "Builds and runs the project",
		Long: `This command creates the build directory if it's missing, generates the build files with
cmake, compiles them with make and finally runs the compiled binary. Each step only runs if
the previous one succeeded; the exit status is the one of the last step that ran.`,
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			projectDir, err := resolveProjectDir(cmd)
			if err != nil {
				// the logger depends on the config which lives in the project directory
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				return err
			}

			cfg, err := loadConfig(cmd, projectDir)
			if err != nil {
				return err
			}

			logger := newLogger(cfg, cmd.ErrOrStderr())
			ctx := buildrun.WithLogger(cmd.Context(), &logger)

			opts := cfg.Options(projectDir)
			opts.DryRun, err = cmd.Flags().GetBool("dry")
			if err != nil {
				return err
			}

			progress, err := cmd.Flags().GetBool("progress")
			if err != nil {
				return err
			}

			if progress && !opts.DryRun {
				opts.Reporter = newProgressReporter(cmd.ErrOrStderr(), len(opts.Steps()))
			}

			err = buildrun.Run(ctx, opts, executor)
			if err != nil {
				var stepErr *buildrun.StepError
				if errors.As(err, &stepErr) {
					logger.Error().
						Str("step", stepErr.Step).
						Msgf("exited with status %d", stepErr.ExitCode)
				} else {
					logger.Error().Err(err).Msg("Build failed")
				}
			}

			return err
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "config file (default: "+config.DefaultFile+" if present)")
	flags.String("build-dir", "", "build directory")
	flags.String("binary", "", "name of the compiled binary to run")
	flags.Bool("incremental", false, "skip the generate step if the build files are up to date")
	flags.BoolP("verbose", "v", false, "enable debug output")
	flags.Bool("log-json", false, "output JSON log lines instead of console messages")
	flags.Bool("find-root", false, "use the closest parent directory containing "+ProjectMarker+" as project directory")

	rootCmd.Flags().BoolP("dry", "n", false, "dry run; only print the commands, don't execute anything")
	rootCmd.Flags().Bool("progress", false, "show a progress bar")

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &configError{err}
	})

	rootCmd.AddCommand(newConfigCmd())
	return rootCmd
}

// loadConfig reads the configuration of the project in projectDir and applies the flags that were
// explicitly set.
func loadConfig(cmd *cobra.Command, projectDir string) (*config.Config, error) {
	flags := cmd.Flags()
	file, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}

	cfg, loader := config.Loader(file, projectDir)
	if err := loader.Load(); err != nil {
		return nil, &configError{eris.Wrap(err, "failed to load configuration")}
	}

	if flags.Changed("build-dir") {
		cfg.BuildDir, _ = flags.GetString("build-dir")
	}

	if flags.Changed("binary") {
		cfg.BinaryName, _ = flags.GetString("binary")
	}

	if flags.Changed("incremental") {
		cfg.Incremental, _ = flags.GetBool("incremental")
	}

	if verbose, _ := flags.GetBool("verbose"); verbose {
		cfg.LogLevel = "debug"
	}

	if flags.Changed("log-json") {
		cfg.LogJSON, _ = flags.GetBool("log-json")
	}

	if err := cfg.Validate(); err != nil {
		return nil, &configError{err}
	}

	return cfg, nil
}

func newLogger(cfg *config.Config, out io.Writer) zerolog.Logger {
	var writer io.Writer = out
	if !cfg.LogJSON {
		writer = NewConsoleWriter(out)
	}

	return zerolog.New(writer).
		Level(cfg.Level()).
		With().
		Timestamp().
		Str("run", nanoid.New()).
		Logger()
}

func resolveProjectDir(cmd *cobra.Command) (string, error) {
	findRoot, err := cmd.Flags().GetBool("find-root")
	if err != nil || !findRoot {
		return ".", err
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", eris.Wrap(err, "failed to retrieve the current working directory")
	}

	root, err := findProjectRoot(wd, ProjectMarker)
	if err != nil {
		return "", err
	}

	// keep the logged commands short
	rel, err := filepath.Rel(wd, root)
	if err != nil {
		return root, nil
	}

	return rel, nil
}

func execute(ctx context.Context, rootCmd *cobra.Command, args []string) int {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)

	var cfgErr *configError
	if errors.As(err, &cfgErr) {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		return 2
	}

	return buildrun.ExitCode(err)
}

// Execute runs the CLI and returns the process exit status
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return execute(ctx, newRootCmd(buildrun.NewShellExecutor()), os.Args[1:])
}
