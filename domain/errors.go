package domain

import "errors"

// Stage-level errors. Each pipeline stage wraps its failures with one of
// these sentinels so the orchestrator boundary can classify outcomes without
// inspecting error strings. None of them propagates past a single repository.
var (
	// ErrInput marks a malformed "owner/name" repository token.
	ErrInput = errors.New("invalid repository reference")

	// ErrClone marks a failed workspace acquisition (network,
	// authentication, or nonexistent repository).
	ErrClone = errors.New("clone failed")

	// ErrBranch marks a failed branch creation or checkout.
	ErrBranch = errors.New("branch setup failed")

	// ErrTransformation marks a transformation engine run that exited
	// nonzero or could not be started.
	ErrTransformation = errors.New("transformation failed")

	// ErrPush marks a rejected or failed branch push.
	ErrPush = errors.New("push failed")

	// ErrPublish marks a failed pull request creation.
	ErrPublish = errors.New("pull request creation failed")
)
