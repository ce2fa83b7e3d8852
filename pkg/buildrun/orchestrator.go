package buildrun

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

// Reporter is notified about the progress of Run.
type Reporter interface {
	StepStarted(step Step, index, total int)
	StepFinished(step Step, exitCode int, elapsed time.Duration)
	StepSkipped(step Step, reason string)
}

type nopReporter struct{}

func (nopReporter) StepStarted(Step, int, int)            {}
func (nopReporter) StepFinished(Step, int, time.Duration) {}
func (nopReporter) StepSkipped(Step, string)              {}

// Run makes sure the build directory exists and then executes the generate, build and run steps.
// The first step exiting with a non-zero status stops the chain and is returned as *StepError.
// A build directory that can't be created is returned as *DirError.
func Run(ctx context.Context, opts Options, executor Executor) error {
	logger := log(ctx)
	reporter := opts.Reporter
	if reporter == nil {
		reporter = nopReporter{}
	}

	buildDir := opts.BuildPath()
	created, err := EnsureBuildDir(buildDir)
	if err != nil {
		return err
	}

	if created {
		logger.Info().
			Str("path", buildDir).
			Msgf("Created build directory %s", buildDir)
	}

	steps := opts.Steps()
	for idx, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		if step.Name == StepGenerate && opts.Incremental && !opts.DryRun && generateIsFresh(ctx, opts, step) {
			reporter.StepSkipped(step, "build files are up to date")
			continue
		}

		logger.Info().
			Str("step", step.Name).
			Bool("command", true).
			Msg(step.String())

		if opts.DryRun {
			continue
		}

		reporter.StepStarted(step, idx, len(steps))
		start := time.Now()
		code, err := executor.Exec(ctx, step)
		if err != nil {
			return eris.Wrapf(err, "step %s failed", step.Name)
		}

		elapsed := time.Since(start)
		reporter.StepFinished(step, code, elapsed)
		logger.Debug().
			Str("step", step.Name).
			Int("status", code).
			Dur("elapsed", elapsed).
			Msg("step finished")

		if code != 0 {
			return &StepError{Step: step.Name, ExitCode: code}
		}

		if step.Name == StepGenerate && opts.Incremental {
			err = writeState(step.Dir, generateState{
				Generator:   step.Args,
				GeneratedAt: time.Now(),
			})
			if err != nil {
				logger.Warn().Err(err).Msg("failed to save generate state")
			}
		}
	}

	return nil
}
