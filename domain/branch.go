package domain

import (
	"fmt"
	"sync"
	"time"
)

// BranchNamer generates run-unique branch names of the form
// "<prefix>/update-<artifactId>-<timestamp>". The timestamp is a
// millisecond-resolution clock bumped monotonically, so two names requested
// within the same tick still come out distinct.
type BranchNamer struct {
	prefix string

	mu   sync.Mutex
	last int64
}

// NewBranchNamer creates a namer with the given branch prefix.
func NewBranchNamer(prefix string) *BranchNamer {
	return &BranchNamer{prefix: prefix}
}

// Next returns the next branch name for the given artifact.
func (n *BranchNamer) Next(artifactID string) string {
	n.mu.Lock()
	defer n.mu.Unlock()

	now := time.Now().UnixMilli()
	if now <= n.last {
		now = n.last + 1
	}
	n.last = now

	return fmt.Sprintf("%s/update-%s-%d", n.prefix, artifactID, now)
}
