// Package rewrite drives the OpenRewrite transformation engine: it
// materializes the declarative recipe descriptor and invokes the engine as a
// Maven subprocess against the workspace.
package rewrite

import (
	"fmt"
	"os"
	"path/filepath"

	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/rios0rios0/rewritebot/config"
	"github.com/rios0rios0/rewritebot/domain"
)

const (
	// DescriptorFileName is the workspace-relative path of the recipe
	// descriptor. It is written before the engine runs, excluded from the
	// eventual commit, and deleted along with the workspace.
	DescriptorFileName = "rewrite.yml"

	descriptorType = "specs.openrewrite.org/v1beta/recipe"

	// wrapperRecipeName is the name of the custom wrapper recipe declared
	// by the descriptor and activated on the engine.
	wrapperRecipeName = "com.rewritebot.UpgradeDependencyVersion"

	// upgradeRecipe is the built-in recipe the wrapper delegates to.
	upgradeRecipe = "org.openrewrite.maven.UpgradeDependencyVersion"

	descriptorFileMode = 0o644
)

// descriptor is the on-disk shape of a single-recipe rewrite.yml.
type descriptor struct {
	Type        string                         `yaml:"type"`
	Name        string                         `yaml:"name"`
	DisplayName string                         `yaml:"displayName"`
	RecipeList  []map[string]upgradeDependency `yaml:"recipeList"`
}

type upgradeDependency struct {
	GroupID    string `yaml:"groupId"`
	ArtifactID string `yaml:"artifactId"`
	NewVersion string `yaml:"newVersion"`
}

// WriteDescriptor writes the recipe descriptor into the workspace root and
// returns its absolute path. In the inline invocation style no descriptor is
// needed and "" is returned. Pure formatting; whether the coordinate exists
// in the target repository is the engine's concern.
func (t *MavenTransformer) WriteDescriptor(
	workspace *domain.Workspace,
	target domain.DependencyTarget,
) (string, error) {
	if t.style == config.StyleInline {
		return "", nil
	}

	doc := descriptor{
		Type:        descriptorType,
		Name:        wrapperRecipeName,
		DisplayName: fmt.Sprintf("Upgrade %s:%s to %s", target.GroupID, target.ArtifactID, target.NewVersion),
		RecipeList: []map[string]upgradeDependency{
			{
				upgradeRecipe: {
					GroupID:    target.GroupID,
					ArtifactID: target.ArtifactID,
					NewVersion: target.NewVersion,
				},
			},
		},
	}

	content, err := yaml.Marshal(&doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal recipe descriptor: %w", err)
	}
	content = append([]byte("---\n"), content...)

	path := filepath.Join(workspace.Root, DescriptorFileName)
	if writeErr := os.WriteFile(path, content, descriptorFileMode); writeErr != nil {
		return "", fmt.Errorf("failed to write recipe descriptor: %w", writeErr)
	}

	logger.Infof("Wrote recipe descriptor %s", path)
	return path, nil
}
