package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolvePlan_Builtin(t *testing.T) {
	plan, err := resolvePlan([]string{"tuner"}, "")
	if err != nil {
		t.Fatalf("resolvePlan() error = %v", err)
	}
	if plan.Name != "tuner" {
		t.Errorf("plan = %q, want tuner", plan.Name)
	}
}

func TestResolvePlan_UnknownLesson(t *testing.T) {
	if _, err := resolvePlan([]string{"theremin"}, ""); err == nil {
		t.Error("resolvePlan() should reject unknown lessons")
	}
}

func TestResolvePlan_NoArgs(t *testing.T) {
	if _, err := resolvePlan(nil, ""); err == nil {
		t.Error("resolvePlan() should require a lesson name or plan file")
	}
}

func TestResolvePlan_PlanFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	doc := "name: custom\nkind: note-lesson\ntargets: [E]\nbootstrap_sentinel: AA\ncheck_path: /note/check\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write plan: %v", err)
	}

	plan, err := resolvePlan(nil, path)
	if err != nil {
		t.Fatalf("resolvePlan() error = %v", err)
	}
	if plan.Name != "custom" {
		t.Errorf("plan = %q, want custom", plan.Name)
	}
}
