package rulestore

import "errors"

// Sentinel errors for the Rule Store, the same pattern the rest of this
// codebase uses for repository-level failures.
var (
	ErrNotFound     = errors.New("rule not found")
	ErrInvalidInput = errors.New("invalid rule input")
)
