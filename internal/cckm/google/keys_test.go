package google

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/trustgate/ksbridge/internal/cckm"
	"github.com/trustgate/ksbridge/internal/ksctl"
)

func TestBuildCommand_create(t *testing.T) {
	args, err := buildCommand("create", map[string]any{
		"alias":      "payments",
		"project_id": "proj-1",
		"location":   "us-east1",
		"key_ring":   "ring-1",
		"algorithm":  "GOOGLE_SYMMETRIC_ENCRYPTION",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{
		"cckm", "google", "keys", "create",
		"--alias", "payments",
		"--project-id", "proj-1",
		"--location", "us-east1",
		"--key-ring", "ring-1",
		"--algorithm", "GOOGLE_SYMMETRIC_ENCRYPTION",
	}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestBuildCommand_simpleVerbsAreUnprefixed(t *testing.T) {
	tests := []struct {
		action string
		want   string
	}{
		{"get", "get"},
		{"rotate", "rotate"},
		{"destroy", "destroy"},
		{"schedule_destroy", "schedule-destroy"},
		{"cancel_schedule_destroy", "cancel-schedule-destroy"},
		{"download_public_key", "download-public-key"},
		{"re_import", "re-import"},
		{"get_update_all_versions_status", "get-update-all-versions-status"},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			args, err := buildCommand(tt.action, map[string]any{"id": "key-1"})
			if err != nil {
				t.Fatal(err)
			}
			want := []string{"cckm", "google", "keys", tt.want, "--id", "key-1"}
			if !reflect.DeepEqual(args, want) {
				t.Errorf("args = %v, want %v", args, want)
			}
		})
	}
}

func TestBuildCommand_updateEnabledYesNo(t *testing.T) {
	tests := []struct {
		name    string
		enabled any
		want    []string
	}{
		{"true renders yes", true, []string{"cckm", "google", "keys", "update", "--id", "key-1", "--enabled", "yes"}},
		{"false renders no", false, []string{"cckm", "google", "keys", "update", "--id", "key-1", "--enabled", "no"}},
		{"absent omits flag", nil, []string{"cckm", "google", "keys", "update", "--id", "key-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := map[string]any{"id": "key-1"}
			if tt.enabled != nil {
				p["enabled"] = tt.enabled
			}
			args, err := buildCommand("update", p)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(args, tt.want) {
				t.Errorf("args = %v, want %v", args, tt.want)
			}
		})
	}
}

func TestBuildCommand_familyRouting(t *testing.T) {
	tests := []struct {
		action string
		params map[string]any
		want   []string
	}{
		{
			"keyrings_create",
			map[string]any{"keyring_name": "ring-1", "project_id": "proj-1", "location": "us-east1"},
			[]string{"cckm", "google", "key-rings", "create", "--keyring-name", "ring-1", "--project-id", "proj-1", "--location", "us-east1"},
		},
		{
			"locations_get_locations",
			map[string]any{},
			[]string{"cckm", "google", "locations", "get-locations"},
		},
		{
			"projects_add",
			map[string]any{"project_id": "proj-1"},
			[]string{"cckm", "google", "projects", "add", "--project-id", "proj-1"},
		},
		{
			"projects_get",
			map[string]any{"project_id": "proj-1"},
			[]string{"cckm", "google", "projects", "get", "--id", "proj-1"},
		},
		{
			"reports_generate",
			map[string]any{"report_type": "keys"},
			[]string{"cckm", "google", "reports", "generate-report", "--report-type", "keys"},
		},
		{
			"keys_sync_jobs_start",
			map[string]any{"project_id": "proj-1"},
			[]string{"cckm", "google", "keys", "synchronization-jobs", "start", "--project-id", "proj-1"},
		},
		{
			"keys_sync_jobs_cancel",
			map[string]any{"job_id": "job-7"},
			[]string{"cckm", "google", "keys", "synchronization-jobs", "cancel", "--id", "job-7"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			args, err := buildCommand(tt.action, tt.params)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(args, tt.want) {
				t.Errorf("args = %v, want %v", args, tt.want)
			}
		})
	}
}

func TestBuildCommand_restore(t *testing.T) {
	args, err := buildCommand("restore", map[string]any{"backup_data": "blob=="})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"cckm", "google", "keys", "restore", "--backup-data", "blob=="}
	if !reflect.DeepEqual(args, want) {
		t.Errorf("args = %v, want %v", args, want)
	}
}

func TestBuildCommand_unknownAction(t *testing.T) {
	_, err := buildCommand("levitate", map[string]any{})
	var unsupported *cckm.UnsupportedOperationError
	if !errors.As(err, &unsupported) {
		t.Fatalf("err = %v, want UnsupportedOperationError", err)
	}
	if unsupported.Provider != "google" {
		t.Errorf("provider = %q", unsupported.Provider)
	}
}

type stubExecutor struct {
	calls [][]string
}

func (s *stubExecutor) Execute(_ context.Context, args []string) (ksctl.Result, error) {
	recorded := make([]string, len(args))
	copy(recorded, args)
	s.calls = append(s.calls, recorded)
	return ksctl.Result{Data: map[string]any{}}, nil
}

func TestDispatcher_executeUsesGenericBag(t *testing.T) {
	stub := &stubExecutor{}
	settings := ksctl.NewSettings("ksctl", "https://ctm.example.com", "admin", "pw", "", "", time.Minute)
	d := NewDispatcher(ksctl.NewRunner(stub, settings, nil))

	_, err := d.Execute(context.Background(), "get", map[string]any{
		"cloud_provider": "google",
		"google_params":  map[string]any{"id": "key-1"},
		"domain":         "finance",
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"cckm", "google", "keys", "get", "--id", "key-1", "--domain", "finance"}
	if !reflect.DeepEqual(stub.calls[0], want) {
		t.Errorf("args = %v, want %v", stub.calls[0], want)
	}
}

func TestDispatcher_operationsIncludeAllFamilies(t *testing.T) {
	settings := ksctl.NewSettings("ksctl", "", "", "", "", "", 0)
	d := NewDispatcher(ksctl.NewRunner(&stubExecutor{}, settings, nil))

	seen := make(map[string]bool)
	for _, op := range d.Operations() {
		seen[op] = true
	}
	for _, op := range []string{"create", "list", "rotate", "keyrings_list", "projects_add", "locations_get_locations", "reports_generate", "keys_sync_jobs_start"} {
		if !seen[op] {
			t.Errorf("operations missing %s", op)
		}
	}
}

func TestRequirements_everyOperationAcceptsDomainScope(t *testing.T) {
	for action, req := range requirements() {
		optional := make(map[string]bool)
		for _, name := range req.Optional {
			optional[name] = true
		}
		if !optional["domain"] || !optional["auth_domain"] {
			t.Errorf("%s optional = %v, want domain and auth_domain included", action, req.Optional)
		}
	}
}
