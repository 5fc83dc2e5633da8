package domain

import (
	"fmt"
	"strings"
)

// RepositoryRef identifies a repository on the hosting platform.
type RepositoryRef struct {
	Owner string
	Name  string
}

// ParseRepositoryRef parses an "owner/name" token into a RepositoryRef.
// A malformed token is an input error for that repository only.
func ParseRepositoryRef(token string) (RepositoryRef, error) {
	parts := strings.Split(strings.TrimSpace(token), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RepositoryRef{}, fmt.Errorf(
			"%w: %q (expected \"owner/name\")", ErrInput, token,
		)
	}
	return RepositoryRef{Owner: parts[0], Name: parts[1]}, nil
}

func (r RepositoryRef) String() string {
	return r.Owner + "/" + r.Name
}

// DependencyTarget describes the single Maven coordinate upgraded across the
// whole batch. It is immutable once a run starts.
type DependencyTarget struct {
	GroupID    string
	ArtifactID string
	NewVersion string
}

// Workspace is the ephemeral local checkout of one repository, owned
// exclusively by its processing unit from clone until release.
type Workspace struct {
	Root string
	Repo RepositoryRef
}

// PullRequestInput contains the data needed to create a pull request.
type PullRequestInput struct {
	SourceBranch string
	TargetBranch string
	Title        string
	Description  string
}

// PullRequest represents a pull/merge request returned by a provider.
type PullRequest struct {
	ID     int
	Title  string
	URL    string
	Status string
}

// CommitOutcome reports what the commit step did after staging.
type CommitOutcome int

const (
	// CommitCreated means real content was staged and a commit was made.
	CommitCreated CommitOutcome = iota
	// CommitSkipped means only pipeline artifacts were staged, so no
	// commit was produced.
	CommitSkipped
)
