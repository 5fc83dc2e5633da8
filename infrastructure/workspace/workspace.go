// Package workspace manages the ephemeral, isolated filesystem root owned by
// one in-flight repository transaction.
package workspace

import (
	"context"
	"fmt"
	"os"

	git "github.com/go-git/go-git/v5"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/rewritebot/domain"
)

// Manager implements domain.WorkspaceManager on top of go-git and a
// process-unique temporary directory per repository.
type Manager struct {
	provider domain.Provider
}

// NewManager creates a workspace manager that clones through the given
// provider's authenticated transport.
func NewManager(provider domain.Provider) *Manager {
	return &Manager{provider: provider}
}

var _ domain.WorkspaceManager = (*Manager)(nil)

// Acquire clones the repository into a fresh temporary directory. The
// directory is removed again if the clone fails partway.
func (m *Manager) Acquire(
	ctx context.Context,
	repo domain.RepositoryRef,
) (*domain.Workspace, error) {
	dir, err := os.MkdirTemp("", "rewritebot-"+repo.Name+"-*")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create temp dir: %w", domain.ErrClone, err)
	}

	logger.Infof("Cloning %s into %s", repo, dir)

	// The clone URL carries the provider credentials, so no separate auth
	// config is needed here or on later pushes to origin.
	_, err = git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{
		URL: m.provider.CloneURL(repo),
	})
	if err != nil {
		if removeErr := os.RemoveAll(dir); removeErr != nil {
			logger.Warnf("Failed to remove %s after clone failure: %v", dir, removeErr)
		}
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrClone, repo, err)
	}

	return &domain.Workspace{Root: dir, Repo: repo}, nil
}

// Release recursively deletes the workspace directory.
func (m *Manager) Release(workspace *domain.Workspace) {
	if workspace == nil || workspace.Root == "" {
		return
	}
	if err := os.RemoveAll(workspace.Root); err != nil {
		logger.Warnf("Failed to remove workspace %s: %v", workspace.Root, err)
		return
	}
	logger.Debugf("Released workspace %s", workspace.Root)
}
