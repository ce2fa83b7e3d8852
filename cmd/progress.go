package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/peppetort/POLIMI-CG-21-22-dronesimulator/pkg/buildrun"
)

// progressReporter renders a bar advancing once per finished or skipped step.
type progressReporter struct {
	bar *progressbar.ProgressBar
}

func newProgressReporter(out io.Writer, total int) *progressReporter {
	return &progressReporter{
		bar: progressbar.NewOptions(total,
			progressbar.OptionSetWriter(out),
			// CI logs don't handle the redraws well
			progressbar.OptionSetVisibility(os.Getenv("CI") != "true"),
			progressbar.OptionSetDescription("starting"),
			progressbar.OptionShowCount(),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(out, "\n")
			}),
		),
	}
}

func (r *progressReporter) StepStarted(step buildrun.Step, index, total int) {
	r.bar.Describe(fmt.Sprintf("%d/%d %s", index+1, total, step.Name))
}

func (r *progressReporter) StepFinished(step buildrun.Step, exitCode int, elapsed time.Duration) {
	if exitCode != 0 {
		r.bar.Describe(fmt.Sprintf("%s failed", step.Name))
		return
	}

	_ = r.bar.Add(1)
}

func (r *progressReporter) StepSkipped(step buildrun.Step, reason string) {
	r.bar.Describe(fmt.Sprintf("%s skipped", step.Name))
	_ = r.bar.Add(1)
}
