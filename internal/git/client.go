// Package git obtains local working copies of the configured source
// repositories using go-git.
package git

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	appcfg "git.home.luguber.info/inful/docsync/internal/config"
	"git.home.luguber.info/inful/docsync/internal/logfields"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// Client handles Git operations against the clone workspace.
type Client struct {
	workspaceDir string
}

// NewClient creates a new Git client with the specified workspace directory
func NewClient(workspaceDir string) *Client {
	return &Client{workspaceDir: workspaceDir}
}

// Fetch obtains a working copy of the repository and returns its local path.
//
// With a commit SHA the local copy is always recreated: shallow clone of the
// branch, then a best-effort checkout of the exact revision. A failed revision
// checkout falls back to the branch tip with a warning; a stale documentation
// mirror beats a failed run. Without a SHA an existing copy is updated
// incrementally, and a failed update falls back to a fresh clone.
func (c *Client) Fetch(repo appcfg.Repository, commitSHA string) (string, error) {
	repoPath := filepath.Join(c.workspaceDir, repo.Name)

	if commitSHA != "" {
		if err := os.RemoveAll(repoPath); err != nil {
			return "", fmt.Errorf("failed to remove existing directory: %w", err)
		}
		if _, err := c.clone(repo, repoPath); err != nil {
			return "", err
		}
		c.checkoutCommit(repoPath, repo, commitSHA)
		return repoPath, nil
	}

	if _, err := os.Stat(filepath.Join(repoPath, ".git")); err == nil {
		slog.Debug("Updating existing repository", logfields.Repository(repo.Name), logfields.Path(repoPath))
		if err := c.pull(repoPath, repo); err != nil {
			slog.Warn("Update failed, attempting fresh clone", logfields.Repository(repo.Name), logfields.Error(err))
			if err := os.RemoveAll(repoPath); err != nil {
				return "", fmt.Errorf("failed to remove stale working copy: %w", err)
			}
			if _, err := c.clone(repo, repoPath); err != nil {
				return "", err
			}
		}
		return repoPath, nil
	}

	if _, err := c.clone(repo, repoPath); err != nil {
		return "", err
	}
	return repoPath, nil
}

// clone performs a shallow single-branch clone of the repository.
func (c *Client) clone(repo appcfg.Repository, repoPath string) (*git.Repository, error) {
	slog.Info("Cloning repository", logfields.Repository(repo.Name), logfields.URL(repo.URL), logfields.Branch(repo.Branch))

	cloneOptions := &git.CloneOptions{
		URL:   repo.URL,
		Depth: 1,
	}
	if repo.Branch != "" {
		cloneOptions.ReferenceName = plumbing.ReferenceName("refs/heads/" + repo.Branch)
		cloneOptions.SingleBranch = true
	}
	cloneOptions.Auth = c.authFor(repo)

	repository, err := git.PlainClone(repoPath, false, cloneOptions)
	if err != nil {
		return nil, classifyCloneError(repo.URL, err)
	}

	if ref, herr := repository.Head(); herr == nil {
		slog.Info("Repository cloned", logfields.Repository(repo.Name), logfields.Commit(shortHash(ref.Hash().String())), logfields.Path(repoPath))
	} else {
		slog.Info("Repository cloned", logfields.Repository(repo.Name), logfields.Path(repoPath))
	}
	return repository, nil
}

// checkoutCommit moves the working tree to the exact revision. Failure is
// never fatal: the shallow clone may simply not contain the commit, in which
// case the branch tip is used instead.
func (c *Client) checkoutCommit(repoPath string, repo appcfg.Repository, commitSHA string) {
	repository, err := git.PlainOpen(repoPath)
	if err != nil {
		slog.Warn("Could not open repository for revision checkout, using branch tip", logfields.Repository(repo.Name), logfields.Error(err))
		return
	}
	wt, err := repository.Worktree()
	if err != nil {
		slog.Warn("Could not get worktree for revision checkout, using branch tip", logfields.Repository(repo.Name), logfields.Error(err))
		return
	}
	if err := wt.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(commitSHA)}); err != nil {
		slog.Warn("Revision checkout failed, using branch tip", logfields.Repository(repo.Name), logfields.Commit(shortHash(commitSHA)), logfields.Error(err))
		return
	}
	slog.Info("Checked out revision", logfields.Repository(repo.Name), logfields.Commit(shortHash(commitSHA)))
}

// pull fast-forwards an existing working copy from origin.
func (c *Client) pull(repoPath string, repo appcfg.Repository) error {
	repository, err := git.PlainOpen(repoPath)
	if err != nil {
		return fmt.Errorf("open repo: %w", err)
	}
	wt, err := repository.Worktree()
	if err != nil {
		return fmt.Errorf("worktree: %w", err)
	}

	pullOptions := &git.PullOptions{RemoteName: "origin", Auth: c.authFor(repo)}
	if repo.Branch != "" {
		pullOptions.ReferenceName = plumbing.ReferenceName("refs/heads/" + repo.Branch)
	}

	err = wt.Pull(pullOptions)
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("pull %s: %w", repo.URL, err)
	}

	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		slog.Info("Repository already up to date", logfields.Repository(repo.Name))
	} else if ref, herr := repository.Head(); herr == nil {
		slog.Info("Repository updated", logfields.Repository(repo.Name), logfields.Commit(shortHash(ref.Hash().String())))
	}
	return nil
}

// authFor builds transport credentials for the repository. Token auth only
// applies to HTTPS remotes; SSH-style URLs rely on ambient key-based
// authentication and cannot carry a token.
func (c *Client) authFor(repo appcfg.Repository) transport.AuthMethod {
	token := repo.Token()
	if token == "" {
		return nil
	}
	if strings.HasPrefix(repo.URL, "git@") || strings.HasPrefix(repo.URL, "ssh://") {
		slog.Warn("Token authentication not supported for SSH URLs, relying on SSH keys", logfields.Repository(repo.Name))
		return nil
	}
	return &http.BasicAuth{
		Username: "token", // GitHub/GitLab accept any non-empty username with a token
		Password: token,
	}
}

// EnsureWorkspace creates the workspace directory if it doesn't exist
func (c *Client) EnsureWorkspace() error {
	if err := os.MkdirAll(c.workspaceDir, 0o750); err != nil {
		return fmt.Errorf("failed to create workspace directory: %w", err)
	}
	return nil
}

func shortHash(h string) string {
	if len(h) > 8 {
		return h[:8]
	}
	return h
}
