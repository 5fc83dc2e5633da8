// Package testdoubles provides test doubles (spies, stubs, dummies) for domain
// interfaces. These are hand-crafted implementations, no mock frameworks.
package testdoubles

import (
	"context"

	"github.com/rios0rios0/rewritebot/domain"
)

// ---------------------------------------------------------------------------
// SpyProvider
// ---------------------------------------------------------------------------

// SpyProvider implements domain.Provider as a configurable spy.
// Configure the response fields for the methods your test exercises,
// then inspect the call-tracking fields to verify behavior.
type SpyProvider struct {
	// --- identity ---
	ProviderName string
	Token        string

	// --- CloneURL ---
	CloneURLs map[string]string // "owner/name" -> URL

	// --- DefaultBranch ---
	DefaultBranchName string
	DefaultBranchErr  error

	// --- CreatePullRequest ---
	CreatedPR   *domain.PullRequest
	CreatePRErr error
	// spy: inputs received
	PRInputs []domain.PullRequestInput

	// --- PullRequestExists ---
	PRExistsResult bool
	PRExistsErr    error
	// spy: branch names checked
	PRExistsBranches []string
}

var _ domain.Provider = (*SpyProvider)(nil)

func (p *SpyProvider) Name() string { return p.ProviderName }

func (p *SpyProvider) AuthToken() string { return p.Token }

func (p *SpyProvider) CloneURL(repo domain.RepositoryRef) string {
	if url, ok := p.CloneURLs[repo.String()]; ok {
		return url
	}
	return "https://example.invalid/" + repo.String() + ".git"
}

func (p *SpyProvider) DefaultBranch(
	_ context.Context,
	_ domain.RepositoryRef,
) (string, error) {
	if p.DefaultBranchName == "" && p.DefaultBranchErr == nil {
		return "main", nil
	}
	return p.DefaultBranchName, p.DefaultBranchErr
}

func (p *SpyProvider) CreatePullRequest(
	_ context.Context,
	_ domain.RepositoryRef,
	input domain.PullRequestInput,
) (*domain.PullRequest, error) {
	p.PRInputs = append(p.PRInputs, input)
	if p.CreatePRErr != nil {
		return nil, p.CreatePRErr
	}
	if p.CreatedPR != nil {
		return p.CreatedPR, nil
	}
	return &domain.PullRequest{ID: 1, Title: input.Title, URL: "https://example.invalid/pr/1", Status: "open"}, nil
}

func (p *SpyProvider) PullRequestExists(
	_ context.Context,
	_ domain.RepositoryRef,
	sourceBranch string,
) (bool, error) {
	p.PRExistsBranches = append(p.PRExistsBranches, sourceBranch)
	return p.PRExistsResult, p.PRExistsErr
}

// ---------------------------------------------------------------------------
// SpyWorkspaceManager
// ---------------------------------------------------------------------------

// SpyWorkspaceManager implements domain.WorkspaceManager without touching the
// filesystem. Acquire hands out fake workspace roots and Release records
// every workspace it was given.
type SpyWorkspaceManager struct {
	// AcquireErrs maps "owner/name" to the error Acquire should return.
	AcquireErrs map[string]error

	// spy: call tracking
	Acquired []domain.RepositoryRef
	Released []*domain.Workspace
}

var _ domain.WorkspaceManager = (*SpyWorkspaceManager)(nil)

func (m *SpyWorkspaceManager) Acquire(
	_ context.Context,
	repo domain.RepositoryRef,
) (*domain.Workspace, error) {
	m.Acquired = append(m.Acquired, repo)
	if err, ok := m.AcquireErrs[repo.String()]; ok && err != nil {
		return nil, err
	}
	return &domain.Workspace{Root: "/tmp/fake-" + repo.Name, Repo: repo}, nil
}

func (m *SpyWorkspaceManager) Release(workspace *domain.Workspace) {
	m.Released = append(m.Released, workspace)
}

// ---------------------------------------------------------------------------
// SpyGitClient
// ---------------------------------------------------------------------------

// SpyGitClient implements domain.GitClient as a configurable spy.
type SpyGitClient struct {
	// --- CreateBranch ---
	CreateBranchErr error
	// spy: branch names created
	Branches []string

	// --- HasChanges ---
	Dirty         bool
	HasChangesErr error

	// --- Commit ---
	CommitOutcome domain.CommitOutcome
	CommitErr     error
	// spy: inputs received
	CommitMessages []string
	ExcludedPaths  [][]string

	// --- Push ---
	PushErr error
	// spy: branch names pushed
	PushedBranches []string
}

var _ domain.GitClient = (*SpyGitClient)(nil)

func (c *SpyGitClient) CreateBranch(_ *domain.Workspace, name string) error {
	c.Branches = append(c.Branches, name)
	return c.CreateBranchErr
}

func (c *SpyGitClient) HasChanges(_ *domain.Workspace) (bool, error) {
	return c.Dirty, c.HasChangesErr
}

func (c *SpyGitClient) Commit(
	_ *domain.Workspace,
	excludePaths []string,
	message string,
) (domain.CommitOutcome, error) {
	c.CommitMessages = append(c.CommitMessages, message)
	c.ExcludedPaths = append(c.ExcludedPaths, excludePaths)
	return c.CommitOutcome, c.CommitErr
}

func (c *SpyGitClient) Push(
	_ context.Context,
	_ *domain.Workspace,
	branch string,
) error {
	c.PushedBranches = append(c.PushedBranches, branch)
	return c.PushErr
}

// ---------------------------------------------------------------------------
// SpyTransformer
// ---------------------------------------------------------------------------

// SpyTransformer implements domain.Transformer as a configurable spy.
type SpyTransformer struct {
	// --- WriteDescriptor ---
	DescriptorPath string
	WriteErr       error
	// spy: targets written
	WrittenTargets []domain.DependencyTarget

	// --- Run ---
	RunErr error
	// spy: workspaces the engine ran against
	RunWorkspaces []*domain.Workspace
}

var _ domain.Transformer = (*SpyTransformer)(nil)

func (t *SpyTransformer) WriteDescriptor(
	_ *domain.Workspace,
	target domain.DependencyTarget,
) (string, error) {
	t.WrittenTargets = append(t.WrittenTargets, target)
	return t.DescriptorPath, t.WriteErr
}

func (t *SpyTransformer) Run(
	_ context.Context,
	workspace *domain.Workspace,
	_ domain.DependencyTarget,
	_ string,
) error {
	t.RunWorkspaces = append(t.RunWorkspaces, workspace)
	return t.RunErr
}
