package cmd

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/rewritebot/application"
	"github.com/rios0rios0/rewritebot/config"
	"github.com/rios0rios0/rewritebot/domain"
	"github.com/rios0rios0/rewritebot/infrastructure/gitops"
	providerPkg "github.com/rios0rios0/rewritebot/infrastructure/provider"
	ghProv "github.com/rios0rios0/rewritebot/infrastructure/provider/github"
	glProv "github.com/rios0rios0/rewritebot/infrastructure/provider/gitlab"
	"github.com/rios0rios0/rewritebot/infrastructure/rewrite"
	"github.com/rios0rios0/rewritebot/infrastructure/workspace"
)

// buildService wires every component through a DIG container. The token and
// settings are explicit inputs; nothing is read from ambient process state.
func buildService(
	token string,
	settings *config.Settings,
) (*application.UpgradeService, error) {
	container := dig.New()

	constructors := []any{
		func() *config.Settings { return settings },
		buildProviderRegistry,
		func(registry *providerPkg.Registry, s *config.Settings) (domain.Provider, error) {
			return registry.Get(s.Provider, token)
		},
		func(provider domain.Provider) domain.WorkspaceManager {
			return workspace.NewManager(provider)
		},
		func() domain.GitClient { return gitops.NewClient() },
		func(s *config.Settings) domain.Transformer {
			return rewrite.NewMavenTransformer(s.MavenHome, s.InvocationStyle, s.Timeout)
		},
		func(s *config.Settings) *domain.BranchNamer {
			return domain.NewBranchNamer(s.BranchPrefix)
		},
		application.NewUpgradeService,
	}
	for _, constructor := range constructors {
		if err := container.Provide(constructor); err != nil {
			return nil, err
		}
	}

	var service *application.UpgradeService
	if err := container.Invoke(func(s *application.UpgradeService) {
		service = s
	}); err != nil {
		return nil, err
	}
	return service, nil
}

func buildProviderRegistry() *providerPkg.Registry {
	registry := providerPkg.NewRegistry()
	registry.Register("github", ghProv.New)
	registry.Register("gitlab", glProv.New)
	return registry
}
