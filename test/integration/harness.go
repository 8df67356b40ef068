// Package integration provides a reusable test harness for end-to-end
// testing of the ksbridge tool server. It starts a full HTTP server over a
// stub ksctl executor and, optionally, a test JWT issuer.
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/trustgate/ksbridge/internal/cckm"
	"github.com/trustgate/ksbridge/internal/cckm/aws"
	"github.com/trustgate/ksbridge/internal/cckm/google"
	"github.com/trustgate/ksbridge/internal/cckm/oci"
	"github.com/trustgate/ksbridge/internal/config"
	"github.com/trustgate/ksbridge/internal/ksctl"
	"github.com/trustgate/ksbridge/internal/observability"
	"github.com/trustgate/ksbridge/internal/tools"
	"github.com/trustgate/ksbridge/internal/tools/cluster"
	"github.com/trustgate/ksbridge/internal/tools/services"
	"github.com/trustgate/ksbridge/internal/transport"
)

// StubExecutor replaces the ksctl subprocess. It records every argument
// list it receives and replies from a canned response table.
type StubExecutor struct {
	mu        sync.Mutex
	calls     [][]string
	responses []stubResponse
	settings  *ksctl.Settings

	// domains observed at execution time, one entry per call. Lets tests
	// assert on the global-override window.
	observedDomains []string
}

type stubResponse struct {
	match  func(args []string) bool
	result ksctl.Result
	err    error
}

// Execute implements ksctl.Executor.
func (s *StubExecutor) Execute(_ context.Context, args []string) (ksctl.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	recorded := make([]string, len(args))
	copy(recorded, args)
	s.calls = append(s.calls, recorded)

	if s.settings != nil {
		domain, _ := s.settings.Domains()
		s.observedDomains = append(s.observedDomains, domain)
	}

	for _, r := range s.responses {
		if r.match(args) {
			return r.result, r.err
		}
	}
	return ksctl.Result{Data: map[string]any{}, Stdout: "{}"}, nil
}

// Respond registers a canned result for calls whose argument list contains
// every given token, in any position.
func (s *StubExecutor) Respond(result ksctl.Result, err error, tokens ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, stubResponse{
		match: func(args []string) bool {
			for _, tok := range tokens {
				if !contains(args, tok) {
					return false
				}
			}
			return true
		},
		result: result,
		err:    err,
	})
}

// Calls returns a copy of every recorded argument list.
func (s *StubExecutor) Calls() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]string, len(s.calls))
	copy(out, s.calls)
	return out
}

// LastCall returns the most recent argument list, or nil.
func (s *StubExecutor) LastCall() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.calls) == 0 {
		return nil
	}
	return s.calls[len(s.calls)-1]
}

// ObservedDomains returns the global domain setting seen at each call.
func (s *StubExecutor) ObservedDomains() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.observedDomains))
	copy(out, s.observedDomains)
	return out
}

func contains(args []string, tok string) bool {
	for _, a := range args {
		if a == tok {
			return true
		}
	}
	return false
}

// TestHarness encapsulates a fully wired tool server with a stub executor.
type TestHarness struct {
	t      *testing.T
	server *httptest.Server
	issuer *tokenIssuer

	Exec     *StubExecutor
	Settings *ksctl.Settings
	Runner   *ksctl.Runner
	cfg      *config.Config
}

// HarnessOption configures the test harness.
type HarnessOption func(*harnessConfig)

type harnessConfig struct {
	authEnabled    bool
	handlerTimeout time.Duration
	domain         string
	authDomain     string
}

// WithAuth enables JWT authentication backed by a test token issuer.
func WithAuth() HarnessOption {
	return func(c *harnessConfig) {
		c.authEnabled = true
	}
}

// WithHandlerTimeout sets the per-request handler timeout.
func WithHandlerTimeout(d time.Duration) HarnessOption {
	return func(c *harnessConfig) {
		c.handlerTimeout = d
	}
}

// WithDomains sets the initial global domain scoping.
func WithDomains(domain, authDomain string) HarnessOption {
	return func(c *harnessConfig) {
		c.domain = domain
		c.authDomain = authDomain
	}
}

// NewTestHarness creates and starts a full tool server test instance. The
// server is automatically cleaned up when the test completes.
func NewTestHarness(t *testing.T, opts ...HarnessOption) *TestHarness {
	t.Helper()

	hc := &harnessConfig{handlerTimeout: 10 * time.Second}
	for _, opt := range opts {
		opt(hc)
	}

	cfg := config.Defaults()
	cfg.Server.HandlerTimeout = hc.handlerTimeout
	cfg.Ksctl.URL = "https://ctm.test.invalid"
	cfg.Ksctl.User = "admin"
	cfg.Ksctl.Domain = hc.domain
	cfg.Ksctl.AuthDomain = hc.authDomain
	cfg.Observability.Metrics.Enabled = false

	settings := ksctl.NewSettings(
		cfg.Ksctl.Binary, cfg.Ksctl.URL, cfg.Ksctl.User, "test-password",
		hc.domain, hc.authDomain, cfg.Ksctl.Timeout,
	)

	stub := &StubExecutor{settings: settings}
	runner := ksctl.NewRunner(stub, settings, nil)

	logger := zap.NewNop()
	cckmTool := cckm.NewRegistry(logger,
		aws.NewDispatcher(runner),
		oci.NewDispatcher(runner),
		google.NewDispatcher(runner),
	)
	registry := tools.NewRegistry(
		cckmTool,
		cluster.NewTool(runner),
		services.NewTool(runner),
	)

	h := &TestHarness{
		t:        t,
		Exec:     stub,
		Settings: settings,
		Runner:   runner,
		cfg:      cfg,
	}

	var authenticate func(http.Handler) http.Handler
	if hc.authEnabled {
		h.issuer = newTokenIssuer(t)
		cfg.Identity.Enabled = true
		cfg.Identity.Issuer = h.issuer.Issuer()
		cfg.Identity.Audience = h.issuer.Audience()
		cfg.Identity.JWKSURL = h.issuer.JWKSURL()
		jwks := transport.NewJWKSClient(cfg.Identity.JWKSURL, cfg.Identity.JWKSCacheTTL, logger)
		authenticate = transport.JWTAuthenticator(cfg.Identity, jwks)
	}

	router := transport.NewRouter(transport.Dependencies{
		Config:       cfg,
		Logger:       logger,
		Tools:        registry,
		Authenticate: authenticate,
		Ready: observability.ReadinessChecks{
			ToolsLoaded: func() bool { return true },
		},
	})

	h.server = httptest.NewServer(router)
	t.Cleanup(h.server.Close)

	return h
}

// URL returns the base URL of the running test server.
func (h *TestHarness) URL() string {
	return h.server.URL
}

// Token returns a valid bearer token for the given subject. Fails the test
// unless the harness was created with WithAuth.
func (h *TestHarness) Token(subject string, roles ...string) string {
	h.t.Helper()
	if h.issuer == nil {
		h.t.Fatal("harness was not created with WithAuth")
	}
	return h.issuer.GenerateToken(TestClaims{SubjectID: subject, Roles: roles})
}

// ExpiredToken returns an expired bearer token.
func (h *TestHarness) ExpiredToken(subject string) string {
	h.t.Helper()
	if h.issuer == nil {
		h.t.Fatal("harness was not created with WithAuth")
	}
	return h.issuer.GenerateExpiredToken(TestClaims{SubjectID: subject})
}

// Do performs an HTTP request against the test server and decodes the JSON
// response body into a generic mapping.
func (h *TestHarness) Do(method, path string, body any, token string) (int, map[string]any) {
	h.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			h.t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, h.server.URL+path, reader)
	if err != nil {
		h.t.Fatalf("build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		h.t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		h.t.Fatalf("read response body: %v", err)
	}

	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			h.t.Fatalf("decode response %q: %v", raw, err)
		}
	}
	return resp.StatusCode, decoded
}

// ExecuteTool POSTs a parameter mapping to a tool endpoint.
func (h *TestHarness) ExecuteTool(tool string, params map[string]any, token string) (int, map[string]any) {
	h.t.Helper()
	return h.Do(http.MethodPost, "/v1/tools/"+tool, params, token)
}
