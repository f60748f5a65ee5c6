// Package buildenv captures the build-time process environment as an immutable value.
//
// The CLI takes one snapshot per build and passes it down explicitly; nothing
// below cmd/ reads the process environment on its own.
package buildenv

import (
	"log/slog"
	"os"
)

// Environment variable names consulted when taking a snapshot. They come from
// different hosting providers; a port to another provider edits this table.
const (
	EnvRuntimeMode       = "NODE_ENV"
	EnvDeploymentBranch  = "DEPLOYMENT_BRANCH"
	EnvDeploymentContext = "CONTEXT"
	EnvDisableAnalytics  = "DISABLE_GTM"
)

// Values with special meaning for the gating predicates.
const (
	ProductionValue        = "production"
	PreviewBranch          = "preview"
	DeployPreviewContext   = "deploy-preview"
	analyticsDisabledValue = "true"
)

// RuntimeMode is the coarse build mode.
type RuntimeMode string

const (
	ModeProduction    RuntimeMode = "production"
	ModeNonProduction RuntimeMode = "non-production"
)

// BuildEnvironment is a read-only snapshot of the environment at build time.
type BuildEnvironment struct {
	RuntimeMode       RuntimeMode `json:"runtime_mode"`
	DeploymentBranch  string      `json:"deployment_branch"`
	DeploymentContext string      `json:"deployment_context"`
	AnalyticsDisabled bool        `json:"analytics_disabled"`
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// FromLookup builds a snapshot from an arbitrary lookup. Missing variables are
// treated as empty; any NODE_ENV other than the exact literal "production"
// yields ModeNonProduction.
func FromLookup(lookup LookupFunc) BuildEnvironment {
	if lookup == nil {
		lookup = func(string) (string, bool) { return "", false }
	}
	get := func(key string) string {
		v, _ := lookup(key)
		return v
	}

	mode := ModeNonProduction
	if get(EnvRuntimeMode) == ProductionValue {
		mode = ModeProduction
	}

	return BuildEnvironment{
		RuntimeMode:       mode,
		DeploymentBranch:  get(EnvDeploymentBranch),
		DeploymentContext: get(EnvDeploymentContext),
		AnalyticsDisabled: get(EnvDisableAnalytics) == analyticsDisabledValue,
	}
}

// FromOS snapshots the current process environment.
func FromOS() BuildEnvironment {
	return FromLookup(os.LookupEnv)
}

// FromMap is a convenience for tests and callers holding a plain map.
func FromMap(vars map[string]string) BuildEnvironment {
	return FromLookup(func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	})
}

// IsProduction reports whether the snapshot was taken in production mode.
func (e BuildEnvironment) IsProduction() bool {
	return e.RuntimeMode == ModeProduction
}

// IsDeployPreview reports whether the provider flagged this build as a preview deploy.
func (e BuildEnvironment) IsDeployPreview() bool {
	return e.DeploymentBranch == PreviewBranch || e.DeploymentContext == DeployPreviewContext
}

// LogValue implements slog.LogValuer.
func (e BuildEnvironment) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("runtime_mode", string(e.RuntimeMode)),
		slog.String("deployment_branch", e.DeploymentBranch),
		slog.String("deployment_context", e.DeploymentContext),
		slog.Bool("analytics_disabled", e.AnalyticsDisabled),
	)
}
