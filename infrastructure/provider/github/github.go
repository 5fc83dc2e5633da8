package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v66/github"

	"github.com/rios0rios0/rewritebot/domain"
)

const providerName = "github"

// Provider implements domain.Provider for GitHub.
type Provider struct {
	token  string
	client *gh.Client
}

// New creates a new GitHub provider with the given token.
func New(token string) domain.Provider {
	client := gh.NewClient(nil).WithAuthToken(token)
	return &Provider{
		token:  token,
		client: client,
	}
}

func (p *Provider) Name() string      { return providerName }
func (p *Provider) AuthToken() string { return p.token }

// CloneURL returns an HTTPS clone URL with the token embedded as an
// x-access-token credential, the same transport used for pushing.
func (p *Provider) CloneURL(repo domain.RepositoryRef) string {
	return fmt.Sprintf(
		"https://x-access-token:%s@github.com/%s/%s.git",
		p.token, repo.Owner, repo.Name,
	)
}

// DefaultBranch returns the repository's default integration branch.
func (p *Provider) DefaultBranch(
	ctx context.Context,
	repo domain.RepositoryRef,
) (string, error) {
	r, _, err := p.client.Repositories.Get(ctx, repo.Owner, repo.Name)
	if err != nil {
		return "", fmt.Errorf("failed to get repository %s: %w", repo, err)
	}
	if r.GetDefaultBranch() == "" {
		return "main", nil
	}
	return r.GetDefaultBranch(), nil
}

// CreatePullRequest opens a pull request from the pushed branch into the
// target branch.
func (p *Provider) CreatePullRequest(
	ctx context.Context,
	repo domain.RepositoryRef,
	input domain.PullRequestInput,
) (*domain.PullRequest, error) {
	maintainerCanModify := true
	pr, _, err := p.client.PullRequests.Create(
		ctx, repo.Owner, repo.Name,
		&gh.NewPullRequest{
			Title:               &input.Title,
			Head:                &input.SourceBranch,
			Base:                &input.TargetBranch,
			Body:                &input.Description,
			MaintainerCanModify: &maintainerCanModify,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrPublish, repo, err)
	}

	return &domain.PullRequest{
		ID:     pr.GetNumber(),
		Title:  pr.GetTitle(),
		URL:    pr.GetHTMLURL(),
		Status: pr.GetState(),
	}, nil
}

// PullRequestExists checks if an open pull request already exists for the
// given source branch.
func (p *Provider) PullRequestExists(
	ctx context.Context,
	repo domain.RepositoryRef,
	sourceBranch string,
) (bool, error) {
	prs, _, err := p.client.PullRequests.List(
		ctx, repo.Owner, repo.Name,
		&gh.PullRequestListOptions{
			Head:  repo.Owner + ":" + sourceBranch,
			State: "open",
		},
	)
	if err != nil {
		return false, fmt.Errorf("failed to list pull requests: %w", err)
	}

	return len(prs) > 0, nil
}
