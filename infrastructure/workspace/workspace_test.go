package workspace_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/rewritebot/domain"
	"github.com/rios0rios0/rewritebot/infrastructure/workspace"
	testdoubles "github.com/rios0rios0/rewritebot/test"
)

// initOrigin creates a local repository that stands in for the remote.
func initOrigin(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	worktree, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "pom.xml"),
		[]byte("<project/>\n"), 0o644,
	))
	_, err = worktree.Add("pom.xml")
	require.NoError(t, err)
	_, err = worktree.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	return dir
}

func TestManager(t *testing.T) {
	t.Parallel()

	t.Run("should clone the repository into a fresh temporary directory", func(t *testing.T) {
		t.Parallel()

		// given
		origin := initOrigin(t)
		repo := domain.RepositoryRef{Owner: "acme", Name: "widgets"}
		provider := &testdoubles.SpyProvider{
			CloneURLs: map[string]string{"acme/widgets": origin},
		}
		manager := workspace.NewManager(provider)

		// when
		ws, err := manager.Acquire(context.Background(), repo)

		// then
		require.NoError(t, err)
		t.Cleanup(func() { manager.Release(ws) })

		assert.Equal(t, repo, ws.Repo)
		assert.FileExists(t, filepath.Join(ws.Root, "pom.xml"))
		assert.DirExists(t, filepath.Join(ws.Root, ".git"))
	})

	t.Run("should hand out a distinct root per acquisition", func(t *testing.T) {
		t.Parallel()

		// given
		origin := initOrigin(t)
		repo := domain.RepositoryRef{Owner: "acme", Name: "widgets"}
		provider := &testdoubles.SpyProvider{
			CloneURLs: map[string]string{"acme/widgets": origin},
		}
		manager := workspace.NewManager(provider)

		// when
		first, err := manager.Acquire(context.Background(), repo)
		require.NoError(t, err)
		second, err := manager.Acquire(context.Background(), repo)
		require.NoError(t, err)
		t.Cleanup(func() {
			manager.Release(first)
			manager.Release(second)
		})

		// then
		assert.NotEqual(t, first.Root, second.Root)
	})

	t.Run("should delete the directory on release", func(t *testing.T) {
		t.Parallel()

		// given
		origin := initOrigin(t)
		repo := domain.RepositoryRef{Owner: "acme", Name: "widgets"}
		provider := &testdoubles.SpyProvider{
			CloneURLs: map[string]string{"acme/widgets": origin},
		}
		manager := workspace.NewManager(provider)
		ws, err := manager.Acquire(context.Background(), repo)
		require.NoError(t, err)

		// when
		manager.Release(ws)

		// then
		assert.NoDirExists(t, ws.Root)
	})

	t.Run("should fail with a clone error for a nonexistent remote", func(t *testing.T) {
		t.Parallel()

		// given
		repo := domain.RepositoryRef{Owner: "acme", Name: "widgets"}
		provider := &testdoubles.SpyProvider{
			CloneURLs: map[string]string{
				"acme/widgets": filepath.Join(t.TempDir(), "definitely-missing"),
			},
		}
		manager := workspace.NewManager(provider)

		// when
		_, err := manager.Acquire(context.Background(), repo)

		// then
		require.ErrorIs(t, err, domain.ErrClone)
	})

	t.Run("should tolerate releasing a nil workspace", func(t *testing.T) {
		t.Parallel()

		// given
		manager := workspace.NewManager(&testdoubles.SpyProvider{})

		// when / then
		assert.NotPanics(t, func() { manager.Release(nil) })
	})
}
