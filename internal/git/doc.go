// Package git builds the git command lines grit runs per repository and
// wraps the few direct git queries it needs. Command lines are returned as
// argv slices so the executor can run, frame and log them.
package git
