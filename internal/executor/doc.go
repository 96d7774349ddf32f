// Package executor runs per-repository tasks on a bounded pool of workers.
// A task is an ordered list of process steps; output is framed per task
// and emitted in task order regardless of completion order.
package executor
