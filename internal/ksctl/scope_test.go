package ksctl

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"
)

type recordingExecutor struct {
	mu      sync.Mutex
	calls   [][]string
	domains []string
	result  Result
	err     error

	settings *Settings
	delay    time.Duration
}

func (r *recordingExecutor) Execute(_ context.Context, args []string) (Result, error) {
	r.mu.Lock()
	recorded := make([]string, len(args))
	copy(recorded, args)
	r.calls = append(r.calls, recorded)
	if r.settings != nil {
		domain, _ := r.settings.Domains()
		r.domains = append(r.domains, domain)
	}
	r.mu.Unlock()

	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	return r.result, r.err
}

func testSettings() *Settings {
	return NewSettings("ksctl", "https://ctm.example.com", "admin", "pw", "root", "root", time.Minute)
}

func TestRun_noDomainFlags(t *testing.T) {
	exec := &recordingExecutor{}
	r := NewRunner(exec, testSettings(), nil)

	_, err := r.Run(context.Background(), []string{"cckm", "aws", "keys", "list"}, "", "")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"cckm", "aws", "keys", "list"}
	if !reflect.DeepEqual(exec.calls[0], want) {
		t.Errorf("args = %v, want %v", exec.calls[0], want)
	}
}

func TestRun_appendsDomainFlags(t *testing.T) {
	exec := &recordingExecutor{}
	r := NewRunner(exec, testSettings(), nil)

	_, err := r.Run(context.Background(), []string{"keys", "list"}, "finance", "root")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"keys", "list", "--domain", "finance", "--auth-domain", "root"}
	if !reflect.DeepEqual(exec.calls[0], want) {
		t.Errorf("args = %v, want %v", exec.calls[0], want)
	}
}

func TestRun_domainOnlyWithoutAuthDomain(t *testing.T) {
	exec := &recordingExecutor{}
	r := NewRunner(exec, testSettings(), nil)

	_, _ = r.Run(context.Background(), []string{"keys", "list"}, "finance", "")
	want := []string{"keys", "list", "--domain", "finance"}
	if !reflect.DeepEqual(exec.calls[0], want) {
		t.Errorf("args = %v, want %v", exec.calls[0], want)
	}
}

func TestRun_doesNotMutateInputSlice(t *testing.T) {
	exec := &recordingExecutor{}
	r := NewRunner(exec, testSettings(), nil)

	args := []string{"cluster", "info"}
	_, _ = r.Run(context.Background(), args, "finance", "root")
	if !reflect.DeepEqual(args, []string{"cluster", "info"}) {
		t.Errorf("input slice mutated: %v", args)
	}
}

func TestRunWithGlobalOverride_swapsAndRestores(t *testing.T) {
	settings := testSettings()
	exec := &recordingExecutor{settings: settings}
	r := NewRunner(exec, settings, nil)

	_, err := r.RunWithGlobalOverride(context.Background(), []string{"cluster", "info"}, "finance", "fin-auth")
	if err != nil {
		t.Fatal(err)
	}

	if got := exec.domains[0]; got != "finance" {
		t.Errorf("domain during call = %q, want finance", got)
	}
	domain, authDomain := settings.Domains()
	if domain != "root" || authDomain != "root" {
		t.Errorf("domains after call = %q/%q, want root/root", domain, authDomain)
	}
	if !reflect.DeepEqual(exec.calls[0], []string{"cluster", "info"}) {
		t.Errorf("args = %v", exec.calls[0])
	}
}

func TestRunWithGlobalOverride_restoresOnError(t *testing.T) {
	settings := testSettings()
	exec := &recordingExecutor{settings: settings, err: errors.New("exit status 1")}
	r := NewRunner(exec, settings, nil)

	_, err := r.RunWithGlobalOverride(context.Background(), []string{"cluster", "delete"}, "finance", "")
	if err == nil {
		t.Fatal("expected error")
	}
	domain, authDomain := settings.Domains()
	if domain != "root" || authDomain != "root" {
		t.Errorf("domains after failed call = %q/%q, want root/root", domain, authDomain)
	}
}

func TestRunWithGlobalOverride_emptyOverrideKeepsCurrent(t *testing.T) {
	settings := testSettings()
	exec := &recordingExecutor{settings: settings}
	r := NewRunner(exec, settings, nil)

	_, _ = r.RunWithGlobalOverride(context.Background(), []string{"services", "status"}, "", "")
	if got := exec.domains[0]; got != "root" {
		t.Errorf("domain during call = %q, want root", got)
	}
}

func TestRunWithGlobalOverride_serializesConcurrentCalls(t *testing.T) {
	settings := testSettings()
	exec := &recordingExecutor{settings: settings, delay: 10 * time.Millisecond}
	r := NewRunner(exec, settings, nil)

	var wg sync.WaitGroup
	domains := []string{"alpha", "beta", "gamma"}
	for _, d := range domains {
		wg.Add(1)
		go func(d string) {
			defer wg.Done()
			_, _ = r.RunWithGlobalOverride(context.Background(), []string{"cluster", "info"}, d, "")
		}(d)
	}
	wg.Wait()

	// Each call must observe its own override, never a peer's.
	seen := make(map[string]bool)
	for _, d := range exec.domains {
		seen[d] = true
	}
	for _, d := range domains {
		if !seen[d] {
			t.Errorf("override %q never observed: %v", d, exec.domains)
		}
	}
	if domain, _ := settings.Domains(); domain != "root" {
		t.Errorf("domain after all calls = %q, want root", domain)
	}
}

type countingRecorder struct {
	invocations int
	overrides   int
}

func (c *countingRecorder) RecordKsctlInvocation(int, time.Duration) { c.invocations++ }
func (c *countingRecorder) RecordKsctlOverride()                     { c.overrides++ }

func TestRunWithGlobalOverride_recordsMetric(t *testing.T) {
	rec := &countingRecorder{}
	r := NewRunner(&recordingExecutor{}, testSettings(), rec)

	_, _ = r.RunWithGlobalOverride(context.Background(), []string{"cluster", "info"}, "finance", "")
	if rec.overrides != 1 {
		t.Errorf("overrides = %d, want 1", rec.overrides)
	}
}

func TestRun_nilRecorderIsValid(t *testing.T) {
	r := NewRunner(&recordingExecutor{}, testSettings(), nil)
	if _, err := r.Run(context.Background(), []string{"cluster", "info"}, "", ""); err != nil {
		t.Fatal(err)
	}
}
