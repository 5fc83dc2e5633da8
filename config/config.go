package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"
)

// Invocation styles for the transformation engine. Both yield identical
// recipe semantics; they differ only in how the recipe reaches the engine.
const (
	// StyleConfigFile writes a rewrite.yml descriptor into the workspace
	// and points the engine at it with a configLocation property.
	StyleConfigFile = "config-file"
	// StyleInline passes the recipe and its options directly as engine
	// properties, with no descriptor file.
	StyleInline = "inline"
)

// Settings holds the run configuration shared by every repository in a
// batch. It is built once at startup and passed into each component
// constructor; there are no ambient singletons.
type Settings struct {
	// Provider selects the hosting platform ("github" or "gitlab").
	Provider string

	// BranchPrefix is the first segment of generated branch names.
	BranchPrefix string

	// BaseBranch overrides the PR target branch. Empty means use the
	// repository's default branch as reported by the provider.
	BaseBranch string

	// MavenHome is an explicit Maven installation directory. When empty
	// the runner falls back to MAVEN_HOME, then M2_HOME, then PATH.
	MavenHome string

	// InvocationStyle is StyleConfigFile or StyleInline.
	InvocationStyle string

	// Timeout bounds a single transformation subprocess. Zero disables
	// the deadline.
	Timeout time.Duration

	// FailOnError makes the process exit nonzero when any unit failed.
	// The default preserves the always-exit-zero batch behavior.
	FailOnError bool

	// DryRun stops each unit after change detection and logs what would
	// have been committed and published.
	DryRun bool

	// Verbose enables debug logging.
	Verbose bool
}

const defaultTimeout = 30 * time.Minute

// Default returns the settings used when no flag overrides them.
func Default() *Settings {
	return &Settings{
		Provider:        "github",
		BranchPrefix:    "openrewrite",
		InvocationStyle: StyleConfigFile,
		Timeout:         defaultTimeout,
	}
}

// Validate checks for unsupported setting values.
func Validate(s *Settings) error {
	if s.Provider == "" {
		return errors.New("provider is required")
	}
	if s.InvocationStyle != StyleConfigFile && s.InvocationStyle != StyleInline {
		return fmt.Errorf(
			"invalid invocation style %q (expected %q or %q)",
			s.InvocationStyle, StyleConfigFile, StyleInline,
		)
	}
	if s.BranchPrefix == "" {
		return errors.New("branch prefix must not be empty")
	}
	if s.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	return nil
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// ResolveToken resolves the token argument: an inline value with ${VAR}
// references expanded, or, if the resolved string is a path to an existing
// file, the trimmed content of that file.
func ResolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	// Expand ${ENV_VAR} references
	resolved := envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})

	// If the resolved value is a path to an existing file, read the token from it
	if _, statErr := os.Stat(resolved); statErr == nil {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read token file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Infof("Read token from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}
