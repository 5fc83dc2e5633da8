// Package application orchestrates the per-repository transaction pipeline:
// acquire workspace -> branch -> write descriptor -> run transformation ->
// detect change -> commit -> publish -> release workspace.
package application

import (
	"context"
	"fmt"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/rewritebot/config"
	"github.com/rios0rios0/rewritebot/domain"
	"github.com/rios0rios0/rewritebot/infrastructure/rewrite"
)

// UpgradeService runs the upgrade pipeline for every repository in a batch,
// isolating failures per unit and guaranteeing workspace cleanup.
type UpgradeService struct {
	provider    domain.Provider
	workspaces  domain.WorkspaceManager
	git         domain.GitClient
	transformer domain.Transformer
	namer       *domain.BranchNamer
	settings    *config.Settings
}

// NewUpgradeService creates a service wired with the given collaborators.
func NewUpgradeService(
	provider domain.Provider,
	workspaces domain.WorkspaceManager,
	git domain.GitClient,
	transformer domain.Transformer,
	namer *domain.BranchNamer,
	settings *config.Settings,
) *UpgradeService {
	return &UpgradeService{
		provider:    provider,
		workspaces:  workspaces,
		git:         git,
		transformer: transformer,
		namer:       namer,
		settings:    settings,
	}
}

// Summary aggregates the outcomes of one batch run.
type Summary struct {
	Processed int
	Published int
	Skipped   int
	Failed    int
}

// Run processes every repository token independently. An error in one unit is
// logged with the repository identifier and never aborts the batch; the run
// terminates only after the last repository has been attempted.
func (s *UpgradeService) Run(
	ctx context.Context,
	target domain.DependencyTarget,
	repoTokens []string,
) Summary {
	if s.settings.Verbose {
		logger.SetLevel(logger.DebugLevel)
	}

	var summary Summary
	for _, token := range repoTokens {
		summary.Processed++
		logger.Infof("=== Processing: %s ===", token)

		published, err := s.processRepository(ctx, target, token)
		switch {
		case err != nil:
			summary.Failed++
			logger.Errorf("Failed to process %s: %v", token, err)
		case published:
			summary.Published++
		default:
			summary.Skipped++
		}
	}

	logger.Infof(
		"Run complete: %d repos processed, %d PRs created, %d skipped, %d errors",
		summary.Processed, summary.Published, summary.Skipped, summary.Failed,
	)
	return summary
}

// processRepository executes the full pipeline for one repository. It returns
// whether a pull request was published. The workspace is released on every
// exit path.
func (s *UpgradeService) processRepository(
	ctx context.Context,
	target domain.DependencyTarget,
	repoToken string,
) (bool, error) {
	repo, err := domain.ParseRepositoryRef(repoToken)
	if err != nil {
		return false, err
	}

	ws, err := s.workspaces.Acquire(ctx, repo)
	if err != nil {
		return false, err
	}
	defer s.workspaces.Release(ws)

	branch := s.namer.Next(target.ArtifactID)
	if branchErr := s.git.CreateBranch(ws, branch); branchErr != nil {
		return false, branchErr
	}

	descriptorPath, err := s.transformer.WriteDescriptor(ws, target)
	if err != nil {
		return false, fmt.Errorf("%w: %w", domain.ErrTransformation, err)
	}

	if runErr := s.transformer.Run(ctx, ws, target, descriptorPath); runErr != nil {
		return false, runErr
	}

	dirty, err := s.git.HasChanges(ws)
	if err != nil {
		return false, err
	}
	if !dirty {
		logger.Infof("No changes detected in %s", repo)
		return false, nil
	}

	if s.settings.DryRun {
		logger.Infof(
			"[DRY RUN] Would commit and open a PR upgrading %s to %s in %s",
			target.ArtifactID, target.NewVersion, repo,
		)
		return false, nil
	}

	message := commitMessage(target)
	outcome, err := s.git.Commit(ws, []string{rewrite.DescriptorFileName}, message)
	if err != nil {
		return false, err
	}
	if outcome == domain.CommitSkipped {
		logger.Infof("Nothing left to commit in %s after excluding pipeline files", repo)
		return false, nil
	}

	pr, err := s.publish(ctx, repo, ws, branch, target, message)
	if err != nil {
		return false, err
	}

	logger.Infof("PR created for %s: %s", repo, pr.URL)
	return true, nil
}

// publish pushes the branch and opens the pull request.
func (s *UpgradeService) publish(
	ctx context.Context,
	repo domain.RepositoryRef,
	ws *domain.Workspace,
	branch string,
	target domain.DependencyTarget,
	title string,
) (*domain.PullRequest, error) {
	exists, err := s.provider.PullRequestExists(ctx, repo, branch)
	if err != nil {
		logger.Warnf("Failed to check existing PRs for %s: %v", repo, err)
	}
	if exists {
		return nil, fmt.Errorf(
			"%w: open pull request already exists for branch %q", domain.ErrPublish, branch,
		)
	}

	if pushErr := s.git.Push(ctx, ws, branch); pushErr != nil {
		return nil, pushErr
	}

	pr, err := s.provider.CreatePullRequest(ctx, repo, domain.PullRequestInput{
		SourceBranch: branch,
		TargetBranch: s.baseBranch(ctx, repo),
		Title:        title,
		Description:  prDescription(target),
	})
	if err != nil {
		return nil, err
	}
	return pr, nil
}

// baseBranch resolves the PR target branch: the configured override when set,
// else the repository's default branch, else "main".
func (s *UpgradeService) baseBranch(ctx context.Context, repo domain.RepositoryRef) string {
	if s.settings.BaseBranch != "" {
		return s.settings.BaseBranch
	}

	branch, err := s.provider.DefaultBranch(ctx, repo)
	if err != nil {
		logger.Warnf("Failed to resolve default branch for %s, using \"main\": %v", repo, err)
		return "main"
	}
	return branch
}

func commitMessage(target domain.DependencyTarget) string {
	return fmt.Sprintf("chore: upgrade %s to %s", target.ArtifactID, target.NewVersion)
}

func prDescription(target domain.DependencyTarget) string {
	return fmt.Sprintf(
		"Automated dependency update via OpenRewrite\n\n"+
			"Dependency: %s\n"+
			"New Version: %s\n"+
			"Created by: OpenRewrite Dependency Update Bot",
		target.ArtifactID, target.NewVersion,
	)
}
