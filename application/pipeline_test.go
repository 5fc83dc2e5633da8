package application_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rios0rios0/rewritebot/application"
	"github.com/rios0rios0/rewritebot/config"
	"github.com/rios0rios0/rewritebot/domain"
	"github.com/rios0rios0/rewritebot/infrastructure/gitops"
	"github.com/rios0rios0/rewritebot/infrastructure/rewrite"
	"github.com/rios0rios0/rewritebot/infrastructure/workspace"
	testdoubles "github.com/rios0rios0/rewritebot/test"
)

// initOrigin creates a local repository with one committed pom.xml that
// stands in for the hosting platform's remote.
func initOrigin(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)

	worktree, err := repo.Worktree()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "pom.xml"),
		[]byte("<project><version>1.0.0</version></project>\n"), 0o644,
	))
	_, err = worktree.Add("pom.xml")
	require.NoError(t, err)
	_, err = worktree.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "tester", Email: "tester@example.com", When: time.Now()},
	})
	require.NoError(t, err)

	return dir
}

// mutatingTransformer stands in for the engine: it rewrites pom.xml in place
// the way the real recipe would.
type mutatingTransformer struct {
	failRun  bool
	zeroDiff bool
	style    string
}

func (m *mutatingTransformer) WriteDescriptor(
	ws *domain.Workspace,
	_ domain.DependencyTarget,
) (string, error) {
	if m.style == config.StyleInline {
		return "", nil
	}
	path := filepath.Join(ws.Root, rewrite.DescriptorFileName)
	return path, os.WriteFile(path, []byte("---\ntype: specs.openrewrite.org/v1beta/recipe\n"), 0o644)
}

func (m *mutatingTransformer) Run(
	_ context.Context,
	ws *domain.Workspace,
	target domain.DependencyTarget,
	_ string,
) error {
	if m.failRun {
		return domain.ErrTransformation
	}
	if m.zeroDiff {
		return nil
	}
	pom := "<project><version>" + target.NewVersion + "</version></project>\n"
	return os.WriteFile(filepath.Join(ws.Root, "pom.xml"), []byte(pom), 0o644)
}

// recordingManager wraps the real workspace manager and remembers every root
// it handed out, so tests can verify the directories are gone afterwards.
type recordingManager struct {
	inner domain.WorkspaceManager
	roots []string
}

func (r *recordingManager) Acquire(
	ctx context.Context,
	repo domain.RepositoryRef,
) (*domain.Workspace, error) {
	ws, err := r.inner.Acquire(ctx, repo)
	if ws != nil {
		r.roots = append(r.roots, ws.Root)
	}
	return ws, err
}

func (r *recordingManager) Release(ws *domain.Workspace) {
	r.inner.Release(ws)
}

type pipelineFixture struct {
	origin    string
	provider  *testdoubles.SpyProvider
	manager   *recordingManager
	transform *mutatingTransformer
	settings  *config.Settings
	service   *application.UpgradeService
}

func newPipelineFixture(t *testing.T) *pipelineFixture {
	t.Helper()

	origin := initOrigin(t)
	provider := &testdoubles.SpyProvider{
		ProviderName:      "github",
		DefaultBranchName: "main",
		CloneURLs:         map[string]string{"acme/widgets": origin},
	}
	manager := &recordingManager{inner: workspace.NewManager(provider)}
	transform := &mutatingTransformer{}
	settings := config.Default()

	service := application.NewUpgradeService(
		provider, manager, gitops.NewClient(), transform,
		domain.NewBranchNamer(settings.BranchPrefix), settings,
	)

	return &pipelineFixture{
		origin:    origin,
		provider:  provider,
		manager:   manager,
		transform: transform,
		settings:  settings,
		service:   service,
	}
}

func TestPipelineEndToEnd(t *testing.T) {
	t.Parallel()

	t.Run("should commit the upgrade, push a branch, and open one PR", func(t *testing.T) {
		t.Parallel()

		// given
		f := newPipelineFixture(t)

		// when
		summary := f.service.Run(context.Background(), target(), []string{"acme/widgets"})

		// then
		assert.Equal(t, 1, summary.Published)
		assert.Equal(t, 0, summary.Failed)

		require.Len(t, f.provider.PRInputs, 1)
		pr := f.provider.PRInputs[0]
		assert.Equal(t, "chore: upgrade widgets-lib to 2.0.0", pr.Title)
		assert.Equal(t, "main", pr.TargetBranch)

		// the branch arrived at origin, carrying the upgrade but not the
		// descriptor file
		origin, err := git.PlainOpen(f.origin)
		require.NoError(t, err)
		ref, err := origin.Reference(plumbing.NewBranchReferenceName(pr.SourceBranch), false)
		require.NoError(t, err)
		commit, err := origin.CommitObject(ref.Hash())
		require.NoError(t, err)
		assert.Equal(t, "chore: upgrade widgets-lib to 2.0.0", commit.Message)

		pom, err := commit.File("pom.xml")
		require.NoError(t, err)
		content, err := pom.Contents()
		require.NoError(t, err)
		assert.Contains(t, content, "2.0.0")

		_, err = commit.File(rewrite.DescriptorFileName)
		require.ErrorIs(t, err, object.ErrFileNotFound)

		// the workspace is gone
		require.Len(t, f.manager.roots, 1)
		assert.NoDirExists(t, f.manager.roots[0])
	})

	t.Run("should clean up and publish nothing when the engine fails", func(t *testing.T) {
		t.Parallel()

		// given
		f := newPipelineFixture(t)
		f.transform.failRun = true

		// when
		summary := f.service.Run(context.Background(), target(), []string{"acme/widgets"})

		// then
		assert.Equal(t, 1, summary.Failed)
		assert.Empty(t, f.provider.PRInputs)

		require.Len(t, f.manager.roots, 1)
		assert.NoDirExists(t, f.manager.roots[0])
	})

	t.Run("should clean up and publish nothing when the diff is empty", func(t *testing.T) {
		t.Parallel()

		// given
		f := newPipelineFixture(t)
		f.transform.zeroDiff = true
		f.transform.style = config.StyleInline

		// when
		summary := f.service.Run(context.Background(), target(), []string{"acme/widgets"})

		// then
		assert.Equal(t, 1, summary.Skipped)
		assert.Equal(t, 0, summary.Failed)
		assert.Empty(t, f.provider.PRInputs)

		require.Len(t, f.manager.roots, 1)
		assert.NoDirExists(t, f.manager.roots[0])
	})

	t.Run("should skip when only the descriptor differs from HEAD", func(t *testing.T) {
		t.Parallel()

		// given: config-file style writes rewrite.yml, engine changes nothing
		f := newPipelineFixture(t)
		f.transform.zeroDiff = true

		// when
		summary := f.service.Run(context.Background(), target(), []string{"acme/widgets"})

		// then: the tree was dirty (descriptor), but the commit composer
		// refused to produce a descriptor-only commit
		assert.Equal(t, 1, summary.Skipped)
		assert.Empty(t, f.provider.PRInputs)

		origin, err := git.PlainOpen(f.origin)
		require.NoError(t, err)
		refs, err := origin.Branches()
		require.NoError(t, err)
		count := 0
		require.NoError(t, refs.ForEach(func(*plumbing.Reference) error {
			count++
			return nil
		}))
		assert.Equal(t, 1, count) // only the original default branch
	})
}
