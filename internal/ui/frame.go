package ui

import (
	"bytes"
	"strings"
)

// Separator frames each task's output block.
var Separator = strings.Repeat("-", 80)

// Frame renders the output block of one task: a separator, the label,
// the commands when verbose, another separator and then the captured
// output unchanged.
func Frame(label string, commands []string, stdout, stderr []byte, verbose bool) []byte {
	var b bytes.Buffer
	b.WriteString(Separator + "\n")
	b.WriteString("- " + label + "\n")
	if verbose {
		for _, c := range commands {
			b.WriteString("- Command: " + c + "\n")
		}
	}
	b.WriteString(Separator + "\n")
	b.Write(stdout)
	b.Write(stderr)
	return b.Bytes()
}
