// Package workspace locates the grit workspace directory and integrates
// active manifest and init state loading with path resolution.
package workspace
