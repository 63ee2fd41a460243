package sync

import "errors"

// State is the orchestrator lifecycle state for one process instance.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateInitializing  State = "initializing"
	StateReady         State = "ready"
	// StateFailed is terminal for this instance; a fresh orchestrator may
	// retry from uninitialized.
	StateFailed State = "failed"
)

// ErrNotReady is raised when a bounded readiness wait expires. It is the
// only error the UI layer is expected to handle explicitly.
var ErrNotReady = errors.New("data manager not ready")

// StrategyName identifies one step of the fallback pipeline, for logging
// and the error log.
type StrategyName string

const (
	StrategyCache        StrategyName = "cache"
	StrategyPrimary      StrategyName = "primary"
	StrategyRESTFallback StrategyName = "rest_fallback"
	StrategySnapshot     StrategyName = "snapshot"
)
