package domain

import "context"

// WorkspaceManager acquires and releases the ephemeral local checkout used
// by one repository transaction.
type WorkspaceManager interface {
	// Acquire clones the repository into a fresh process-unique temporary
	// directory. Failures wrap ErrClone.
	Acquire(ctx context.Context, repo RepositoryRef) (*Workspace, error)

	// Release recursively deletes the workspace directory. It must be
	// invoked on every exit path of a unit, success or failure.
	Release(workspace *Workspace)
}

// GitClient performs local version-control operations inside a workspace.
type GitClient interface {
	// CreateBranch creates and checks out a new branch cut from the
	// current default branch tip. Failures wrap ErrBranch.
	CreateBranch(workspace *Workspace, name string) error

	// HasChanges reports whether the working tree differs from HEAD in
	// any tracked or untracked path.
	HasChanges(workspace *Workspace) (bool, error)

	// Commit stages the whole working tree, unstages the given
	// workspace-relative paths (absence is not an error), and commits the
	// remainder under the bot identity. When nothing but the excluded
	// paths was staged it returns CommitSkipped without committing.
	Commit(workspace *Workspace, excludePaths []string, message string) (CommitOutcome, error)

	// Push sends the local branch to origin under the same authenticated
	// transport used for cloning. Failures wrap ErrPush.
	Push(ctx context.Context, workspace *Workspace, branch string) error
}

// Transformer drives the external transformation engine against a workspace.
type Transformer interface {
	// WriteDescriptor materializes the declarative recipe descriptor
	// inside the workspace and returns its absolute path. It returns ""
	// when the configured invocation style passes the recipe inline and
	// no descriptor file is needed.
	WriteDescriptor(workspace *Workspace, target DependencyTarget) (string, error)

	// Run invokes the engine as a subprocess with the workspace as its
	// working directory. A nonzero exit wraps ErrTransformation.
	Run(ctx context.Context, workspace *Workspace, target DependencyTarget, descriptorPath string) error
}

// Provider abstracts a Git hosting service (GitHub, GitLab, ...). Each
// implementation handles authentication, clone URLs, and pull request
// management for its platform.
type Provider interface {
	// Name returns the provider identifier (e.g. "github", "gitlab").
	Name() string

	// AuthToken returns the authentication token configured for this provider.
	AuthToken() string

	// CloneURL returns an HTTPS clone URL with embedded credentials.
	CloneURL(repo RepositoryRef) string

	// DefaultBranch returns the repository's default integration branch.
	DefaultBranch(ctx context.Context, repo RepositoryRef) (string, error)

	// CreatePullRequest opens a pull/merge request. Failures wrap ErrPublish.
	CreatePullRequest(ctx context.Context, repo RepositoryRef, input PullRequestInput) (*PullRequest, error)

	// PullRequestExists checks if an open pull request already exists for
	// the given source branch.
	PullRequestExists(ctx context.Context, repo RepositoryRef, sourceBranch string) (bool, error)
}
