// Package ksctl runs the CipherTrust Manager CLI (ksctl) as a subprocess
// and exposes domain-scoped execution on top of it.
package ksctl

import (
	"sync"
	"time"
)

// Settings holds the process-wide ksctl connection configuration. The
// domain pair is the only field mutated after startup: the global-override
// execution strategy temporarily swaps it for the duration of one call.
type Settings struct {
	Binary      string
	URL         string
	User        string
	Password    string
	NoSSLVerify bool
	Timeout     time.Duration

	mu         sync.Mutex
	domain     string
	authDomain string
}

// NewSettings creates Settings with initial domain scoping.
func NewSettings(binary, url, user, password, domain, authDomain string, timeout time.Duration) *Settings {
	return &Settings{
		Binary:     binary,
		URL:        url,
		User:       user,
		Password:   password,
		Timeout:    timeout,
		domain:     domain,
		authDomain: authDomain,
	}
}

// Domains returns the current domain and auth-domain.
func (s *Settings) Domains() (domain, authDomain string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.domain, s.authDomain
}

// SetDomains replaces the current domain and auth-domain.
func (s *Settings) SetDomains(domain, authDomain string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.domain = domain
	s.authDomain = authDomain
}

// connectionArgs renders the settings as ksctl global flags. The domain
// pair is read under the lock so an in-flight global override is observed
// consistently.
func (s *Settings) connectionArgs() []string {
	args := make([]string, 0, 10)
	if s.URL != "" {
		args = append(args, "--url", s.URL)
	}
	if s.User != "" {
		args = append(args, "--user", s.User)
	}
	if s.Password != "" {
		args = append(args, "--password", s.Password)
	}
	if s.NoSSLVerify {
		args = append(args, "--nosslverify")
	}

	domain, authDomain := s.Domains()
	if domain != "" {
		args = append(args, "--domain", domain)
	}
	if authDomain != "" {
		args = append(args, "--auth-domain", authDomain)
	}
	return args
}
