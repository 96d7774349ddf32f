package executor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/fbkclanna/grit/internal/ui"
)

// Step is one process invocation.
type Step struct {
	Dir  string
	Argv []string
	// Env holds KEY=VALUE pairs added to the process environment.
	Env []string
}

func (s Step) String() string {
	return strings.Join(s.Argv, " ")
}

// Task is the unit of work for one repository. Steps run in order and
// stop at the first failure.
type Task struct {
	Label string
	// Prepare runs before the first step. An error fails the task.
	Prepare func() error
	Steps   []Step
	// Quiet suppresses the output block unless the task fails.
	Quiet bool
}

// Executor dispatches tasks to a pool of workers.
type Executor struct {
	Runner Runner
	// Jobs is the number of workers. Values below 1 mean 1.
	Jobs int
	// Force keeps dispatching after a failure.
	Force bool
	// Verbose adds the commands to each output block.
	Verbose bool
	Out     io.Writer
	// Audit receives one record per step, if set.
	Audit *slog.Logger
}

// Run runs tasks and returns their results in task order. Without Force,
// the first failure stops dispatch of new tasks; tasks already running
// finish and the rest are reported as skipped.
func (e *Executor) Run(ctx context.Context, tasks []Task) *Report {
	rep := &Report{Results: make([]Result, len(tasks))}
	for i, t := range tasks {
		rep.Results[i] = Result{Label: t.Label, Status: StatusSkipped, ExitCode: -1}
	}
	if len(tasks) == 0 {
		return rep
	}

	out := e.Out
	if out == nil {
		out = io.Discard
	}
	ordered := ui.NewOrdered(out, len(tasks))

	var (
		mu     sync.Mutex
		next   int
		halted bool
	)
	claim := func() (int, bool) {
		mu.Lock()
		defer mu.Unlock()
		if halted || next >= len(tasks) || ctx.Err() != nil {
			return 0, false
		}
		i := next
		next++
		return i, true
	}
	fail := func() {
		if e.Force {
			return
		}
		mu.Lock()
		halted = true
		mu.Unlock()
	}

	jobs := min(max(e.Jobs, 1), len(tasks))
	var g errgroup.Group
	for range jobs {
		g.Go(func() error {
			for {
				i, ok := claim()
				if !ok {
					return nil
				}
				res := e.runTask(ctx, tasks[i])
				rep.Results[i] = res
				if res.Status == StatusFailed {
					fail()
				}
				if tasks[i].Quiet && res.Status == StatusOK {
					ordered.Skip(i)
					continue
				}
				ordered.Put(i, ui.Frame(res.Label, res.Commands, res.Stdout, res.Stderr, e.Verbose))
			}
		})
	}
	_ = g.Wait()
	ordered.Flush()

	rep.Halted = halted
	return rep
}

func (e *Executor) runTask(ctx context.Context, t Task) Result {
	res := Result{Label: t.Label, Status: StatusOK}
	if t.Prepare != nil {
		if err := t.Prepare(); err != nil {
			res.Status = StatusFailed
			res.ExitCode = -1
			res.Err = err
			res.Stderr = []byte(err.Error() + "\n")
			e.audit(t.Label, Step{}, Output{ExitCode: -1}, err)
			return res
		}
	}
	for _, s := range t.Steps {
		res.Commands = append(res.Commands, s.String())
		o, err := e.Runner.Run(ctx, s.Dir, s.Argv, s.Env)
		res.Stdout = append(res.Stdout, o.Stdout...)
		res.Stderr = append(res.Stderr, o.Stderr...)
		res.ExitCode = o.ExitCode
		e.audit(t.Label, s, o, err)
		if err != nil {
			res.Status = StatusFailed
			res.ExitCode = -1
			res.Err = err
			res.Stderr = append(res.Stderr, err.Error()+"\n"...)
			return res
		}
		if o.ExitCode != 0 {
			res.Status = StatusFailed
			res.Err = fmt.Errorf("%s: exit status %d", s, o.ExitCode)
			return res
		}
	}
	return res
}

func (e *Executor) audit(label string, s Step, o Output, err error) {
	if e.Audit == nil {
		return
	}
	attrs := []any{"repository", label, "dir", s.Dir, "argv", s.String(), "exit", o.ExitCode}
	if out := string(o.Stdout) + string(o.Stderr); out != "" {
		attrs = append(attrs, "output", out)
	}
	if err != nil {
		e.Audit.Error("command", append(attrs, "error", err)...)
		return
	}
	e.Audit.Info("command", attrs...)
}
