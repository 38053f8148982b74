package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseSteps(t *testing.T) {
	if got, err := parseSteps(nil); err != nil || got != 1 {
		t.Fatalf("unexpected default steps: got=%d err=%v", got, err)
	}
	if got, err := parseSteps([]string{" 3 "}); err != nil || got != 3 {
		t.Fatalf("unexpected steps: got=%d err=%v", got, err)
	}
	for _, raw := range []string{"0", "-1", "two"} {
		if _, err := parseSteps([]string{raw}); err == nil {
			t.Fatalf("expected error for steps %q", raw)
		}
	}
}

func TestParseVersionAndTarget(t *testing.T) {
	if got, err := parseVersion("3"); err != nil || got != 3 {
		t.Fatalf("unexpected version: got=%d err=%v", got, err)
	}
	if _, err := parseVersion("-2"); err == nil {
		t.Fatalf("expected error for negative version")
	}
	if got, err := parseTarget("2"); err != nil || got != 2 {
		t.Fatalf("unexpected target: got=%d err=%v", got, err)
	}
	if _, err := parseTarget("latest"); err == nil {
		t.Fatalf("expected error for non-numeric target")
	}
}

func TestRegistryCheck_EmbeddedRegistry(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"registry", "check"})

	if err := root.Execute(); err != nil {
		t.Fatalf("registry check: %v", err)
	}
	if !strings.Contains(out.String(), "total_distance") {
		t.Fatalf("expected averageable keys in output, got %q", out.String())
	}
}

func TestRecompute_RequiresExactlyOneTarget(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"recompute", "--club", "club-demo"})

	if err := root.Execute(); err == nil {
		t.Fatalf("expected error without --player or --team")
	}
}
