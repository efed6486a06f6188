package publisher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	gogit "github.com/go-git/go-git/v5"
	gitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
)

// Git publishes by committing the site directory and force-pushing it to a
// pages branch. The site directory itself is the worktree; history is not
// meaningful here, each deploy is a snapshot.
type Git struct {
	URL         string
	Branch      string
	AuthorName  string
	AuthorEmail string
	Token       string
	Logger      *slog.Logger

	now func() time.Time
}

func NewGit(url, branch, authorName, authorEmail, token string, logger *slog.Logger) *Git {
	if branch == "" {
		branch = "gh-pages"
	}
	if authorName == "" {
		authorName = "sitebuilder"
	}
	if authorEmail == "" {
		authorEmail = "sitebuilder@localhost"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Git{
		URL: url, Branch: branch,
		AuthorName: authorName, AuthorEmail: authorEmail,
		Token: token, Logger: logger,
		now: time.Now,
	}
}

func (p *Git) Mode() string { return "git" }

func (p *Git) Deploy(ctx context.Context, dir string) error {
	if p.URL == "" {
		return sberrors.ConfigRequired("publish.git.url")
	}

	repo, err := p.openOrInit(dir)
	if err != nil {
		return sberrors.PublishFailed(dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return sberrors.PublishFailed(dir, err)
	}
	if err := wt.AddWithOptions(&gogit.AddOptions{All: true}); err != nil {
		return sberrors.PublishFailed(dir, fmt.Errorf("stage files: %w", err))
	}

	status, err := wt.Status()
	if err != nil {
		return sberrors.PublishFailed(dir, err)
	}
	if !status.IsClean() {
		sig := &object.Signature{Name: p.AuthorName, Email: p.AuthorEmail, When: p.now()}
		if _, err := wt.Commit("deploy site snapshot", &gogit.CommitOptions{Author: sig}); err != nil {
			return sberrors.PublishFailed(dir, fmt.Errorf("commit: %w", err))
		}
	}

	refspec := gitcfg.RefSpec(fmt.Sprintf("+refs/heads/%s:refs/heads/%s", p.Branch, p.Branch))
	p.Logger.Info("pushing site snapshot", logfields.URL(p.URL), slog.String("branch", p.Branch))
	err = repo.PushContext(ctx, &gogit.PushOptions{
		RemoteName: gogit.DefaultRemoteName,
		RefSpecs:   []gitcfg.RefSpec{refspec},
		Auth:       p.auth(),
		Force:      true,
	})
	if err != nil && !errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return sberrors.PublishFailed(dir, fmt.Errorf("push: %w", err))
	}
	return nil
}

// openOrInit opens the repository embedded in the site directory, creating
// it on the first deploy. The local branch is kept at p.Branch so the
// refspec always resolves.
func (p *Git) openOrInit(dir string) (*gogit.Repository, error) {
	repo, err := gogit.PlainOpen(dir)
	if errors.Is(err, gogit.ErrRepositoryNotExists) {
		repo, err = gogit.PlainInit(dir, false)
		if err != nil {
			return nil, fmt.Errorf("init repository: %w", err)
		}
		head := plumbing.NewSymbolicReference(plumbing.HEAD, plumbing.NewBranchReferenceName(p.Branch))
		if err := repo.Storer.SetReference(head); err != nil {
			return nil, fmt.Errorf("set head: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	_, err = repo.Remote(gogit.DefaultRemoteName)
	if errors.Is(err, gogit.ErrRemoteNotFound) {
		_, err = repo.CreateRemote(&gitcfg.RemoteConfig{
			Name: gogit.DefaultRemoteName,
			URLs: []string{p.URL},
		})
	}
	if err != nil {
		return nil, fmt.Errorf("configure remote: %w", err)
	}
	return repo, nil
}

func (p *Git) auth() transport.AuthMethod {
	if p.Token == "" {
		return nil
	}
	return &githttp.BasicAuth{Username: "token", Password: p.Token}
}
