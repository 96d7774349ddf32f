package git

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Binary is the VCS executable every generated command line starts with.
const Binary = "git"

// CloneOpts configures a git clone command line.
type CloneOpts struct {
	// Origin names the remote; empty or "origin" leaves git's default.
	Origin string
	// Branch is passed as --branch (a branch or a tag).
	Branch       string
	Depth        int
	SingleBranch bool
	Reference    string
	Dissociate   bool
	Bare         bool
	Mirror       bool
}

// Command returns argv for running git with args.
func Command(args ...string) []string {
	return append([]string{Binary}, args...)
}

// CloneArgs returns argv cloning url into dest.
func CloneArgs(url, dest string, opts CloneOpts) []string {
	args := []string{"clone"}

	// --origin cannot be combined with --bare or --mirror.
	if opts.Origin != "" && opts.Origin != "origin" && !opts.Bare && !opts.Mirror {
		args = append(args, "--origin", opts.Origin)
	}
	if opts.Branch != "" {
		args = append(args, "--branch", opts.Branch)
	}
	if opts.Depth > 0 {
		args = append(args, "--depth", strconv.Itoa(opts.Depth))
	}
	if opts.SingleBranch {
		args = append(args, "--single-branch")
	}
	if opts.Reference != "" {
		args = append(args, "--reference", opts.Reference)
	}
	if opts.Dissociate {
		args = append(args, "--dissociate")
	}
	if opts.Bare {
		args = append(args, "--bare")
	}
	if opts.Mirror {
		args = append(args, "--mirror")
	}

	args = append(args, url, dest)
	return Command(args...)
}

// AddPushURLArgs returns argv configuring a distinct push URL for remote.
func AddPushURLArgs(remote, url string) []string {
	return Command("remote", "set-url", "--add", "--push", remote, url)
}

// CheckoutDetachedArgs returns argv checking out ref with a detached HEAD.
func CheckoutDetachedArgs(ref string) []string {
	return Command("checkout", "--detach", ref)
}

// CheckoutTrackingArgs returns argv creating (or resetting) branch to track
// remote/remoteBranch. -B is needed because clone already created the
// default branch.
func CheckoutTrackingArgs(branch, remote, remoteBranch string) []string {
	return Command("checkout", "-B", branch, "--track", remote+"/"+remoteBranch)
}

// HeadArgs returns argv printing the full commit id of HEAD.
func HeadArgs() []string {
	return Command("rev-parse", "HEAD")
}

// ParseHead extracts the commit id from rev-parse output.
func ParseHead(out []byte) (string, error) {
	sha := strings.TrimSpace(string(out))
	if len(sha) < 40 {
		return "", fmt.Errorf("unexpected rev-parse output %q", sha)
	}
	for _, c := range sha {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return "", fmt.Errorf("unexpected rev-parse output %q", sha)
		}
	}
	return sha, nil
}

// IsGitInstalled returns true if git is available on the system PATH.
func IsGitInstalled() bool {
	_, err := exec.LookPath(Binary)
	return err == nil
}
