package buildrun

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Executor runs a single step and reports its exit status. A non-nil error means the step
// couldn't be run at all (i.e. the context was cancelled); a failing command is reported
// through the exit status instead.
type Executor interface {
	Exec(ctx context.Context, step Step) (int, error)
}

var defaultExecHandler = interp.DefaultExecHandler(2 * time.Second)

func execHandler(ctx context.Context, args []string) error {
	hc := interp.HandlerCtx(ctx)
	log(ctx).Debug().
		Str("dir", hc.Dir).
		Strs("args", args).
		Msg("exec")

	return defaultExecHandler(ctx, args)
}

// ShellExecutor runs steps through the mvdan.cc/sh interpreter. Standard streams default to the
// ones of the current process.
type ShellExecutor struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// ExecHandler replaces the default handler which looks up and starts the program.
	ExecHandler interp.ExecHandlerFunc
}

var _ Executor = (*ShellExecutor)(nil)

// NewShellExecutor returns a ShellExecutor connected to os.Stdin, os.Stdout and os.Stderr
func NewShellExecutor() *ShellExecutor {
	return &ShellExecutor{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Exec implements Executor
func (e *ShellExecutor) Exec(ctx context.Context, step Step) (int, error) {
	if len(step.Args) == 0 {
		return -1, eris.Errorf("step %s has no command", step.Name)
	}

	handler := e.ExecHandler
	if handler == nil {
		handler = execHandler
	}

	env := step.Env
	if env == nil {
		env = os.Environ()
	}

	runner, err := interp.New(
		interp.Dir(step.Dir),
		interp.Env(expand.ListEnviron(env...)),
		interp.ExecHandler(handler),
		interp.StdIO(e.Stdin, e.Stdout, e.Stderr),
	)
	if err != nil {
		return -1, eris.Wrapf(err, "failed to initialize runner for step %s", step.Name)
	}

	// Cancellation only stops the chain before the next step. A running command is never
	// killed by us; it sees Ctrl-C through its process group and reports its own status.
	err = runner.Run(context.WithoutCancel(ctx), callStmt(step.Args))
	if err == nil {
		return 0, nil
	}

	if status, ok := interp.IsExitStatus(err); ok {
		return int(status), nil
	}

	return -1, eris.Wrapf(err, "failed to run step %s", step.Name)
}

// callStmt turns args into "exec args...". Every word is single-quoted so the arguments reach
// the exec handler exactly as given; the exec builtin makes sure names like "echo" or "cd"
// start a program instead of an interpreter builtin.
func callStmt(args []string) *syntax.Stmt {
	call := &syntax.CallExpr{
		Args: make([]*syntax.Word, 0, len(args)+1),
	}

	call.Args = append(call.Args, &syntax.Word{
		Parts: []syntax.WordPart{&syntax.Lit{Value: "exec"}},
	})

	for _, arg := range args {
		call.Args = append(call.Args, &syntax.Word{
			Parts: []syntax.WordPart{&syntax.SglQuoted{Value: arg}},
		})
	}

	return &syntax.Stmt{Cmd: call}
}
