// Package gitops implements the local version-control operations of the
// pipeline: branch setup, change detection, selective commit staging, and
// branch push.
package gitops

import (
	"context"
	"errors"
	"fmt"
	"time"

	git "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/rewritebot/domain"
)

// Bot identity used for every commit created by the pipeline.
const (
	botName  = "OpenRewrite Bot"
	botEmail = "rewritebot@users.noreply.github.com"
)

// Client implements domain.GitClient with go-git.
type Client struct{}

// NewClient creates a git client.
func NewClient() *Client {
	return &Client{}
}

var _ domain.GitClient = (*Client)(nil)

// CreateBranch creates and checks out a new branch cut from the current
// default branch tip.
func (c *Client) CreateBranch(workspace *domain.Workspace, name string) error {
	worktree, err := openWorktree(workspace)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrBranch, err)
	}

	err = worktree.Checkout(&git.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	})
	if err != nil {
		return fmt.Errorf("%w: checkout %q: %w", domain.ErrBranch, name, err)
	}

	logger.Infof("Created and checked out branch %q", name)
	return nil
}

// HasChanges reports whether any tracked or untracked path differs from HEAD.
func (c *Client) HasChanges(workspace *domain.Workspace) (bool, error) {
	worktree, err := openWorktree(workspace)
	if err != nil {
		return false, err
	}

	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("failed to read working tree status: %w", err)
	}

	return !status.IsClean(), nil
}

// Commit stages the whole working tree, unstages the excluded paths, and
// commits whatever remains. The two-phase stage/unstage/verify sequence keeps
// pipeline-internal files out of the repository's permanent history while
// still allowing whole-tree staging.
func (c *Client) Commit(
	workspace *domain.Workspace,
	excludePaths []string,
	message string,
) (domain.CommitOutcome, error) {
	worktree, err := openWorktree(workspace)
	if err != nil {
		return domain.CommitSkipped, err
	}

	// 1. Stage the entire working tree.
	if addErr := worktree.AddWithOptions(&git.AddOptions{All: true}); addErr != nil {
		return domain.CommitSkipped, fmt.Errorf("failed to stage working tree: %w", addErr)
	}

	// 2. Unstage the excluded paths. A path that was never staged is not
	// an error; it simply has nothing to unstage.
	if unstageErr := unstage(worktree, excludePaths); unstageErr != nil {
		return domain.CommitSkipped, unstageErr
	}

	// 3. Verify something real is still staged.
	staged, err := hasStagedContent(worktree)
	if err != nil {
		return domain.CommitSkipped, err
	}
	if !staged {
		logger.Warnf("No content staged for commit after excluding pipeline files, skipping commit")
		return domain.CommitSkipped, nil
	}

	// 4. Commit under the bot identity.
	_, err = worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  botName,
			Email: botEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return domain.CommitSkipped, fmt.Errorf("failed to commit: %w", err)
	}

	logger.Infof("Committed changes: %s", message)
	return domain.CommitCreated, nil
}

// Push sends the local branch to origin. The remote URL carries the
// credentials embedded at clone time.
func (c *Client) Push(
	ctx context.Context,
	workspace *domain.Workspace,
	branch string,
) error {
	repo, err := git.PlainOpen(workspace.Root)
	if err != nil {
		return fmt.Errorf("%w: failed to open repository: %w", domain.ErrPush, err)
	}

	refSpec := gitconfig.RefSpec(
		fmt.Sprintf("refs/heads/%s:refs/heads/%s", branch, branch),
	)
	err = repo.PushContext(ctx, &git.PushOptions{
		RemoteName: "origin",
		RefSpecs:   []gitconfig.RefSpec{refSpec},
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		return fmt.Errorf("%w: branch %q: %w", domain.ErrPush, branch, err)
	}

	logger.Infof("Pushed branch %q", branch)
	return nil
}

// unstage resets the given workspace-relative paths out of the index. Paths
// that are not currently staged are skipped explicitly.
func unstage(worktree *git.Worktree, paths []string) error {
	status, err := worktree.Status()
	if err != nil {
		return fmt.Errorf("failed to read status before unstaging: %w", err)
	}

	var staged []string
	for _, path := range paths {
		file := status.File(path)
		if file.Staging == git.Unmodified || file.Staging == git.Untracked {
			continue
		}
		staged = append(staged, path)
	}
	if len(staged) == 0 {
		return nil
	}

	err = worktree.Restore(&git.RestoreOptions{Staged: true, Files: staged})
	if err != nil {
		return fmt.Errorf("failed to unstage %v: %w", staged, err)
	}
	return nil
}

// hasStagedContent reports whether the index holds any added or modified
// entries relative to HEAD.
func hasStagedContent(worktree *git.Worktree) (bool, error) {
	status, err := worktree.Status()
	if err != nil {
		return false, fmt.Errorf("failed to read status after unstaging: %w", err)
	}

	for _, file := range status {
		if file.Staging == git.Added || file.Staging == git.Modified {
			return true, nil
		}
	}
	return false, nil
}

func openWorktree(workspace *domain.Workspace) (*git.Worktree, error) {
	repo, err := git.PlainOpen(workspace.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", workspace.Root, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}
	return worktree, nil
}
