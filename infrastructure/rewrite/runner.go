package rewrite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/rewritebot/config"
	"github.com/rios0rios0/rewritebot/domain"
)

// rewriteGoal is the short plugin goal used in the config-file style. It
// requires the rewrite plugin to be configured in the target repo's POM.
const rewriteGoal = "rewrite:run"

// inlineGoal is the fully-qualified plugin goal used in the inline style, so
// the target repo needs no plugin configuration of its own.
const inlineGoal = "org.openrewrite.maven:rewrite-maven-plugin:run"

// killDelay bounds how long Wait keeps reading output pipes after the
// process group was killed at the deadline.
const killDelay = 5 * time.Second

// MavenTransformer implements domain.Transformer by invoking Maven with the
// OpenRewrite plugin as a child process of the pipeline.
type MavenTransformer struct {
	mavenHome string
	style     string
	timeout   time.Duration
}

// NewMavenTransformer creates a transformer. mavenHome may be empty; the
// binary is then located through the environment (see findMavenBinary).
func NewMavenTransformer(mavenHome, style string, timeout time.Duration) *MavenTransformer {
	return &MavenTransformer{
		mavenHome: mavenHome,
		style:     style,
		timeout:   timeout,
	}
}

var _ domain.Transformer = (*MavenTransformer)(nil)

// Run invokes the engine with the workspace as its working directory. The
// subprocess is bounded by the configured deadline so one hung repository
// cannot stall the whole batch.
func (t *MavenTransformer) Run(
	ctx context.Context,
	workspace *domain.Workspace,
	target domain.DependencyTarget,
	descriptorPath string,
) error {
	mvn, err := findMavenBinary(t.mavenHome)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransformation, err)
	}

	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	args := buildMavenArgs(t.style, descriptorPath, target)
	logger.Infof("Running %s %v in %s", mvn, args, workspace.Root)

	cmd := exec.CommandContext(ctx, mvn, args...)
	cmd.Dir = workspace.Root

	// mvn is a launcher script; the JVM it spawns inherits the output
	// pipes, so killing only the direct child would leave CombinedOutput
	// blocked until the JVM exits. Run the tree in its own process group,
	// kill the whole group at the deadline, and bound the pipe wait for
	// anything that still survives.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
	cmd.WaitDelay = killDelay

	output, err := cmd.CombinedOutput()
	logger.Debugf("Engine output:\n%s", string(output))

	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf(
				"%w: engine timed out after %s", domain.ErrTransformation, t.timeout,
			)
		}
		return fmt.Errorf(
			"%w: %w\nOutput:\n%s", domain.ErrTransformation, err, string(output),
		)
	}

	logger.Infof("Transformation completed for %s", workspace.Repo)
	return nil
}

// buildMavenArgs assembles the engine invocation for the given style.
func buildMavenArgs(style, descriptorPath string, target domain.DependencyTarget) []string {
	if style == config.StyleInline {
		return []string{
			"-B",
			inlineGoal,
			"-Drewrite.activeRecipes=" + upgradeRecipe,
			"-DgroupId=" + target.GroupID,
			"-DartifactId=" + target.ArtifactID,
			"-DnewVersion=" + target.NewVersion,
		}
	}
	return []string{
		"-B",
		rewriteGoal,
		"-Drewrite.configLocation=" + descriptorPath,
		"-Drewrite.activeRecipes=" + wrapperRecipeName,
	}
}

// findMavenBinary locates the mvn executable. Precedence is externally
// observable behavior: an explicitly configured installation path, else the
// MAVEN_HOME or M2_HOME environment variables, else mvn on the PATH.
func findMavenBinary(configuredHome string) (string, error) {
	homes := []string{configuredHome, os.Getenv("MAVEN_HOME"), os.Getenv("M2_HOME")}
	for _, home := range homes {
		if home == "" {
			continue
		}
		candidate := filepath.Join(home, "bin", "mvn")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		logger.Warnf("No mvn binary under %q, trying next location", home)
	}

	if path, err := exec.LookPath("mvn"); err == nil {
		logger.Warnf("MAVEN_HOME/M2_HOME not set, relying on mvn from PATH")
		return path, nil
	}

	return "", errors.New("mvn binary not found in configured home, MAVEN_HOME, M2_HOME, or PATH")
}
