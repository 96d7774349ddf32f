package executor

// Status is the outcome of one task.
type Status int

const (
	// StatusSkipped marks tasks that were never dispatched.
	StatusSkipped Status = iota
	StatusOK
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusFailed:
		return "failed"
	default:
		return "skipped"
	}
}

// Result records one task's outcome.
type Result struct {
	Label  string
	Status Status
	// ExitCode is the exit code of the last step run, or -1 when no
	// process ran to completion.
	ExitCode int
	// Err explains a failure.
	Err      error
	Commands []string
	Stdout   []byte
	Stderr   []byte
}

// Report holds the results of a run, in task order.
type Report struct {
	Results []Result
	// Halted is set when a failure stopped further dispatch.
	Halted bool
}

// OK reports whether every task ran and succeeded.
func (r *Report) OK() bool {
	for _, res := range r.Results {
		if res.Status != StatusOK {
			return false
		}
	}
	return true
}

// Failed returns the failed results.
func (r *Report) Failed() []Result {
	return r.filter(StatusFailed)
}

// Skipped returns the results of tasks that were never dispatched.
func (r *Report) Skipped() []Result {
	return r.filter(StatusSkipped)
}

func (r *Report) filter(s Status) []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Status == s {
			out = append(out, res)
		}
	}
	return out
}
