package manifest

import (
	"errors"
	"testing"
)

func chainManifest(t *testing.T) *Manifest {
	t.Helper()
	m, err := Fold([]*Fragment{mustFragment(t, `
profiles:
  p1:
    remote-url: https://p1.example.com
    branch: p1-branch
    remote-push-url: ssh://push.example.com
  p2:
    inherit: p1
    branch: p2-branch
  p3:
    inherit: p2
repositories:
  - repository: org/uses-p3
    use-profile: p3
  - repository: org/override
    use-profile: p3
    branch: own-branch
    remote-name: upstream
  - repository: org/no-profile
`)})
	if err != nil {
		t.Fatalf("fold: %v", err)
	}
	return m
}

func TestResolve_profileChain(t *testing.T) {
	m := chainManifest(t)

	res, err := Resolve(m.Repositories[0], m)
	if err != nil {
		t.Fatal(err)
	}
	if res.RemoteURL != "https://p1.example.com" {
		t.Errorf("remote-url set only on p1 = %q", res.RemoteURL)
	}
	if res.Branch != "p2-branch" {
		t.Errorf("branch set on p1 and p2 = %q, want p2's", res.Branch)
	}
	if res.RemoteBranch != "p2-branch" {
		t.Errorf("remote-branch should default to branch, got %q", res.RemoteBranch)
	}
	if res.RemoteName != DefaultRemoteName {
		t.Errorf("remote-name = %q, want default %q", res.RemoteName, DefaultRemoteName)
	}
	if res.SingleBranchOr(false) {
		t.Error("single-branch should default to no")
	}
	if res.Depth != nil {
		t.Errorf("depth = %d, want unset", *res.Depth)
	}
	if res.CloneURL() != "https://p1.example.com/org/uses-p3" {
		t.Errorf("CloneURL() = %q", res.CloneURL())
	}
	if res.PushURL() != "ssh://push.example.com/org/uses-p3" {
		t.Errorf("PushURL() = %q", res.PushURL())
	}
}

func TestResolve_repositoryOverrideWins(t *testing.T) {
	m := chainManifest(t)
	res, err := Resolve(m.Repositories[1], m)
	if err != nil {
		t.Fatal(err)
	}
	if res.Branch != "own-branch" {
		t.Errorf("branch = %q, want own-branch", res.Branch)
	}
	if res.RemoteName != "upstream" {
		t.Errorf("remote-name = %q, want upstream", res.RemoteName)
	}
	if res.RemoteURL != "https://p1.example.com" {
		t.Errorf("remote-url = %q, want inherited from p1", res.RemoteURL)
	}
}

func TestResolve_noProfile(t *testing.T) {
	m := chainManifest(t)
	res, err := Resolve(m.Repositories[2], m)
	if err != nil {
		t.Fatal(err)
	}
	if res.RemoteURL != "" || res.Branch != "" {
		t.Errorf("no profile should leave settings empty, got %+v", res)
	}
}

func TestResolve_defaultProfile(t *testing.T) {
	m := chainManifest(t)
	m.DefaultProfile = "p2"
	res, err := Resolve(m.Repositories[2], m)
	if err != nil {
		t.Fatal(err)
	}
	if res.Branch != "p2-branch" {
		t.Errorf("branch = %q, want default profile's", res.Branch)
	}
}

func TestResolve_cycle(t *testing.T) {
	// Built directly: Fold would reject the cycle before resolution.
	m := New()
	m.Profiles["p3"] = Profile{Inherit: "p1"}
	m.Profiles["p1"] = Profile{Inherit: "p2"}
	m.Profiles["p2"] = Profile{Inherit: "p3"}
	repo := Repository{ID: "a", UseProfile: "p3"}

	_, err := Resolve(repo, m)
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected cycle configuration error, got %v", err)
	}
}

func TestResolve_undefinedProfile(t *testing.T) {
	m := New()
	_, err := Resolve(Repository{ID: "a", UseProfile: "ghost"}, m)
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestResolved_tagOverridesBranch(t *testing.T) {
	m := chainManifest(t)
	repo := m.Repositories[1]
	repo.Tag = "v2.3.4"

	res, err := Resolve(repo, m)
	if err != nil {
		t.Fatal(err)
	}
	ref, detached := res.CheckoutTarget()
	if ref != "v2.3.4" || !detached {
		t.Errorf("CheckoutTarget() = %q, %v; want tag, detached", ref, detached)
	}

	res.Tag = ""
	ref, detached = res.CheckoutTarget()
	if ref != "own-branch" || detached {
		t.Errorf("CheckoutTarget() = %q, %v; want branch, attached", ref, detached)
	}
}

func TestResolved_fallbacks(t *testing.T) {
	var res Resolved
	if !res.SingleBranchOr(true) {
		t.Error("unset single-branch should use the fallback")
	}
	if res.DepthOr(5) != 5 {
		t.Error("unset depth should use the fallback")
	}
	res.SingleBranch = No
	res.Depth = Ptr(1)
	if res.SingleBranchOr(true) {
		t.Error("resolved single-branch should win over the fallback")
	}
	if res.DepthOr(5) != 1 {
		t.Error("resolved depth should win over the fallback")
	}
	res.Depth = Ptr(0)
	if res.DepthOr(5) != 0 {
		t.Error("an explicit depth of 0 should keep full history")
	}
}

func TestResolve_postCloneHooks(t *testing.T) {
	m, err := Fold([]*Fragment{mustFragment(t, `
post-clone: ["make setup"]
repositories:
  - repository: a
    post-clone: ["make hooks"]
`)})
	if err != nil {
		t.Fatal(err)
	}
	res, err := Resolve(m.Repositories[0], m)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.PostClone) != 2 || res.PostClone[0] != "make setup" || res.PostClone[1] != "make hooks" {
		t.Errorf("PostClone = %v, want manifest hooks then repository hooks", res.PostClone)
	}
}
