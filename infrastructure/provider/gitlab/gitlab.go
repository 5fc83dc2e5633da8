package gitlab

import (
	"context"
	"errors"
	"fmt"

	gl "gitlab.com/gitlab-org/api/client-go"

	"github.com/rios0rios0/rewritebot/domain"
)

const providerName = "gitlab"

var errClientNotInitialized = errors.New("gitlab client not initialized")

// Provider implements domain.Provider for GitLab.
type Provider struct {
	token  string
	client *gl.Client
}

// New creates a new GitLab provider with the given token.
func New(token string) domain.Provider {
	client, err := gl.NewClient(token)
	if err != nil {
		// Return a provider that will fail on use rather than panicking at construction
		return &Provider{token: token, client: nil}
	}
	return &Provider{
		token:  token,
		client: client,
	}
}

func (p *Provider) Name() string      { return providerName }
func (p *Provider) AuthToken() string { return p.token }

// CloneURL returns an HTTPS clone URL with the token embedded as an oauth2
// credential.
func (p *Provider) CloneURL(repo domain.RepositoryRef) string {
	return fmt.Sprintf(
		"https://oauth2:%s@gitlab.com/%s/%s.git",
		p.token, repo.Owner, repo.Name,
	)
}

// DefaultBranch returns the project's default branch.
func (p *Provider) DefaultBranch(
	ctx context.Context,
	repo domain.RepositoryRef,
) (string, error) {
	if p.client == nil {
		return "", errClientNotInitialized
	}

	project, _, err := p.client.Projects.GetProject(
		repo.String(), nil, gl.WithContext(ctx),
	)
	if err != nil {
		return "", fmt.Errorf("failed to get project %s: %w", repo, err)
	}
	if project.DefaultBranch == "" {
		return "main", nil
	}
	return project.DefaultBranch, nil
}

// CreatePullRequest opens a merge request from the pushed branch into the
// target branch.
func (p *Provider) CreatePullRequest(
	ctx context.Context,
	repo domain.RepositoryRef,
	input domain.PullRequestInput,
) (*domain.PullRequest, error) {
	if p.client == nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrPublish, errClientNotInitialized)
	}

	mr, _, err := p.client.MergeRequests.CreateMergeRequest(
		repo.String(),
		&gl.CreateMergeRequestOptions{
			Title:              gl.Ptr(input.Title),
			Description:        gl.Ptr(input.Description),
			SourceBranch:       gl.Ptr(input.SourceBranch),
			TargetBranch:       gl.Ptr(input.TargetBranch),
			RemoveSourceBranch: gl.Ptr(true),
		},
		gl.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrPublish, repo, err)
	}

	return &domain.PullRequest{
		ID:     int(mr.IID),
		Title:  mr.Title,
		URL:    mr.WebURL,
		Status: mr.State,
	}, nil
}

// PullRequestExists checks if an open merge request already exists for the
// given source branch.
func (p *Provider) PullRequestExists(
	ctx context.Context,
	repo domain.RepositoryRef,
	sourceBranch string,
) (bool, error) {
	if p.client == nil {
		return false, errClientNotInitialized
	}

	mrs, _, err := p.client.MergeRequests.ListProjectMergeRequests(
		repo.String(),
		&gl.ListProjectMergeRequestsOptions{
			SourceBranch: gl.Ptr(sourceBranch),
			State:        gl.Ptr("opened"),
		},
		gl.WithContext(ctx),
	)
	if err != nil {
		return false, fmt.Errorf("failed to list merge requests: %w", err)
	}

	return len(mrs) > 0, nil
}
