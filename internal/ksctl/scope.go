package ksctl

import (
	"context"
	"sync"
)

// Runner executes argument lists with per-call domain scoping. Two
// strategies exist, selected by the caller:
//
//   - Run appends --domain/--auth-domain flags to the argument list. It is
//     stateless and preferred; most ksctl commands accept these flags.
//   - RunWithGlobalOverride temporarily swaps the process-wide domain
//     settings for commands whose CLI form has no such flags, and restores
//     them unconditionally afterward. Overlapping override windows are
//     serialized so a concurrent call never observes a foreign domain.
type Runner struct {
	exec     Executor
	settings *Settings
	metrics  MetricsRecorder

	// overrideMu serializes the global-override window.
	overrideMu sync.Mutex
}

// NewRunner creates a Runner over the given executor and settings.
func NewRunner(exec Executor, settings *Settings, metrics MetricsRecorder) *Runner {
	return &Runner{exec: exec, settings: settings, metrics: metrics}
}

// Run executes args, appending explicit domain override flags when given.
func (r *Runner) Run(ctx context.Context, args []string, domain, authDomain string) (Result, error) {
	scoped := make([]string, len(args), len(args)+4)
	copy(scoped, args)
	if domain != "" {
		scoped = append(scoped, "--domain", domain)
	}
	if authDomain != "" {
		scoped = append(scoped, "--auth-domain", authDomain)
	}
	return r.exec.Execute(ctx, scoped)
}

// RunWithGlobalOverride executes args under temporarily overridden global
// domain settings. The prior settings are restored even when execution
// fails or panics.
func (r *Runner) RunWithGlobalOverride(ctx context.Context, args []string, domain, authDomain string) (Result, error) {
	r.overrideMu.Lock()
	defer r.overrideMu.Unlock()

	if r.metrics != nil {
		r.metrics.RecordKsctlOverride()
	}

	origDomain, origAuthDomain := r.settings.Domains()
	defer r.settings.SetDomains(origDomain, origAuthDomain)

	newDomain, newAuthDomain := origDomain, origAuthDomain
	if domain != "" {
		newDomain = domain
	}
	if authDomain != "" {
		newAuthDomain = authDomain
	}
	r.settings.SetDomains(newDomain, newAuthDomain)

	return r.exec.Execute(ctx, args)
}
