package publisher

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
)

func TestNoopDeploy(t *testing.T) {
	var p Publisher = Noop{}
	if p.Mode() != "none" {
		t.Errorf("mode: %s", p.Mode())
	}
	if err := p.Deploy(context.Background(), "/nowhere"); err != nil {
		t.Errorf("noop deploy must succeed: %v", err)
	}
}

// fakeCLI writes a script that records its arguments and returns the given
// exit code.
func fakeCLI(t *testing.T, exitCode int) (cliPath, argsFile string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake CLI script requires a POSIX shell")
	}
	dir := t.TempDir()
	argsFile = filepath.Join(dir, "args.log")
	cliPath = filepath.Join(dir, "aws")
	script := "#!/bin/sh\necho \"$@\" >> " + argsFile + "\nexit " + strconv.Itoa(exitCode) + "\n"
	if err := os.WriteFile(cliPath, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
	return cliPath, argsFile
}

func TestS3CLIDeploySyncsAndInvalidates(t *testing.T) {
	cli, argsFile := fakeCLI(t, 0)
	p := NewS3CLI("my-bucket", "E123", cli, nil)

	if err := p.Deploy(context.Background(), "/tmp/site"); err != nil {
		t.Fatalf("Deploy: %v", err)
	}

	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatal(err)
	}
	calls := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(calls) != 2 {
		t.Fatalf("expected 2 CLI calls, got %v", calls)
	}
	if !strings.Contains(calls[0], "s3 sync /tmp/site s3://my-bucket --delete") {
		t.Errorf("unexpected sync call: %s", calls[0])
	}
	if !strings.Contains(calls[1], "cloudfront create-invalidation --distribution-id E123") {
		t.Errorf("unexpected invalidation call: %s", calls[1])
	}
}

func TestS3CLIDeployWithoutDistributionSkipsInvalidation(t *testing.T) {
	cli, argsFile := fakeCLI(t, 0)
	p := NewS3CLI("my-bucket", "", cli, nil)
	if err := p.Deploy(context.Background(), "/tmp/site"); err != nil {
		t.Fatal(err)
	}
	data, _ := os.ReadFile(argsFile)
	if strings.Contains(string(data), "cloudfront") {
		t.Error("no invalidation call expected without a distribution id")
	}
}

func TestS3CLIDeployFailureClassified(t *testing.T) {
	cli, _ := fakeCLI(t, 1)
	p := NewS3CLI("my-bucket", "", cli, nil)
	err := p.Deploy(context.Background(), "/tmp/site")
	if !sberrors.IsCategory(err, sberrors.CategoryPublish) {
		t.Errorf("expected publish error, got %v", err)
	}
}

func TestS3CLIRequiresBucket(t *testing.T) {
	p := NewS3CLI("", "", "aws", nil)
	err := p.Deploy(context.Background(), "/tmp/site")
	if !sberrors.IsCategory(err, sberrors.CategoryConfig) {
		t.Errorf("expected config error, got %v", err)
	}
}

func TestGitDeployPushesSnapshot(t *testing.T) {
	remoteDir := t.TempDir()
	if _, err := gogit.PlainInit(remoteDir, true); err != nil {
		t.Fatal(err)
	}

	siteDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(siteDir, "index.html"), []byte("<html>v1</html>"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewGit(remoteDir, "pages", "Test", "test@example.com", "", nil)
	if err := p.Deploy(context.Background(), siteDir); err != nil {
		t.Fatalf("Deploy: %v", err)
	}

	remote, err := gogit.PlainOpen(remoteDir)
	if err != nil {
		t.Fatal(err)
	}
	ref, err := remote.Reference(plumbing.NewBranchReferenceName("pages"), true)
	if err != nil {
		t.Fatalf("pages branch missing on remote: %v", err)
	}
	commit, err := remote.CommitObject(ref.Hash())
	if err != nil {
		t.Fatal(err)
	}
	if commit.Author.Name != "Test" {
		t.Errorf("author: %s", commit.Author.Name)
	}

	// second deploy with changes pushes a new snapshot
	if err := os.WriteFile(filepath.Join(siteDir, "index.html"), []byte("<html>v2</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := p.Deploy(context.Background(), siteDir); err != nil {
		t.Fatalf("second Deploy: %v", err)
	}

	// unchanged deploy is a no-op, not an error
	if err := p.Deploy(context.Background(), siteDir); err != nil {
		t.Fatalf("unchanged Deploy: %v", err)
	}
}

func TestGitRequiresURL(t *testing.T) {
	p := NewGit("", "pages", "", "", "", nil)
	err := p.Deploy(context.Background(), t.TempDir())
	if !sberrors.IsCategory(err, sberrors.CategoryConfig) {
		t.Errorf("expected config error, got %v", err)
	}
}
