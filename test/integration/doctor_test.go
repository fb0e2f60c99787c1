//go:build integration

package integration

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDoctor_Basic(t *testing.T) {
	ctx := testContext(t)
	env := NewTestEnv(t)
	env.WriteRegistry(t, firefoxRegistry)

	// The profile directory does not exist, which is only a warning.
	out := env.MustRun(ctx, t, "doctor")
	for _, want := range []string{"ffpm Diagnostics", "[OK] Firefox executable", "[!!] Profile directories"} {
		if !strings.Contains(out, want) {
			t.Errorf("doctor output missing %q:\n%s", want, out)
		}
	}
}

func TestDoctor_JSONOutput(t *testing.T) {
	ctx := testContext(t)
	env := NewTestEnv(t)
	env.WriteRegistry(t, "[Profile0]\nName=broken\n")

	stdout, _, err := env.Run(ctx, t, "doctor", "-o", "json")
	if err == nil {
		t.Fatal("doctor should fail on a malformed registry")
	}

	var report struct {
		Checks []struct {
			Name   string `json:"name"`
			Status string `json:"status"`
		} `json:"checks"`
		HasErrors bool `json:"has_errors"`
	}
	if err := json.Unmarshal([]byte(stdout), &report); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if !report.HasErrors {
		t.Error("has_errors should be true")
	}
	for _, c := range report.Checks {
		if c.Name == "profiles.ini" && c.Status != "ERROR" {
			t.Errorf("profiles.ini status = %s, want ERROR", c.Status)
		}
	}
}
