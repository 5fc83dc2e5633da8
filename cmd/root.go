package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rios0rios0/rewritebot/config"
	"github.com/rios0rios0/rewritebot/domain"
)

//nolint:gochecknoglobals // required by cobra CLI pattern
var (
	providerName    string
	branchPrefix    string
	baseBranch      string
	mavenHome       string
	invocationStyle string
	timeout         time.Duration
	failOnError     bool
	dryRun          bool
	verbose         bool
)

const minArgs = 5

//nolint:gochecknoglobals // required by cobra CLI pattern
var rootCmd = &cobra.Command{
	Use:   "rewritebot <token> <groupId> <artifactId> <newVersion> <repo1> [repo2 ...]",
	Short: "Bulk Maven dependency upgrades via OpenRewrite pull requests",
	Long: `A CLI tool that upgrades one Maven dependency coordinate across many
repositories. For each "owner/name" repository it clones the remote, applies
the OpenRewrite UpgradeDependencyVersion recipe through Maven, and - when the
transformation produced a material change - pushes a branch and opens a pull
request proposing the upgrade.

Repositories are processed strictly in sequence. A failure in one repository
is logged and never aborts the rest of the batch, and every workspace is
deleted again whether its repository succeeded, was skipped, or failed.`,
	Args: cobra.MinimumNArgs(minArgs),
	RunE: runBatch,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

//nolint:gochecknoinits // required by cobra CLI pattern
func init() {
	rootCmd.Flags().StringVar(&providerName, "provider", "github",
		"Hosting platform for clone/push and pull requests (github, gitlab)")
	rootCmd.Flags().StringVar(&branchPrefix, "branch-prefix", "openrewrite",
		"Prefix of generated branch names")
	rootCmd.Flags().StringVar(&baseBranch, "base-branch", "",
		"Target branch for PRs (default: the repository's default branch)")
	rootCmd.Flags().StringVar(&mavenHome, "maven-home", "",
		"Maven installation directory (default: MAVEN_HOME, M2_HOME, then PATH)")
	rootCmd.Flags().StringVar(&invocationStyle, "invocation-style", config.StyleConfigFile,
		"How the recipe reaches the engine (config-file, inline)")
	rootCmd.Flags().DurationVar(&timeout, "timeout", config.Default().Timeout,
		"Deadline for a single transformation run (0 disables)")
	rootCmd.Flags().BoolVar(&failOnError, "fail-on-error", false,
		"Exit nonzero when any repository failed")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false,
		"Show what would be done without committing or publishing")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")
}

func runBatch(command *cobra.Command, args []string) error {
	// Argument count is validated by cobra; from here on, errors are run
	// failures and must not re-print the usage text.
	command.SilenceUsage = true

	token := config.ResolveToken(args[0])
	target := domain.DependencyTarget{
		GroupID:    args[1],
		ArtifactID: args[2],
		NewVersion: args[3],
	}
	repos := args[4:]

	settings := &config.Settings{
		Provider:        providerName,
		BranchPrefix:    branchPrefix,
		BaseBranch:      baseBranch,
		MavenHome:       mavenHome,
		InvocationStyle: invocationStyle,
		Timeout:         timeout,
		FailOnError:     failOnError,
		DryRun:          dryRun,
		Verbose:         verbose,
	}
	if err := config.Validate(settings); err != nil {
		return err
	}

	service, err := buildService(token, settings)
	if err != nil {
		return fmt.Errorf("failed to wire components: %w", err)
	}

	summary := service.Run(command.Context(), target, repos)

	if settings.FailOnError && summary.Failed > 0 {
		return fmt.Errorf(
			"%d of %d repositories failed", summary.Failed, summary.Processed,
		)
	}
	return nil
}
