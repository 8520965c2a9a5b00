package main

import (
	"strings"
	"testing"
)

func TestServeCmd_Help(t *testing.T) {
	out, err := runCmd(t, "serve", "--help")
	if err != nil {
		t.Fatalf("serve --help failed: %v", err)
	}
	for _, want := range []string{"API", "--port", "--config"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected help to mention %q, got: %s", want, out)
		}
	}
}

func TestServeCmd_MissingConfig(t *testing.T) {
	_, err := runCmd(t, "serve", "--config", "/nonexistent/sentimeter.yaml")
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "load config") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "load config")
	}
}

func TestServeCmd_Defaults(t *testing.T) {
	cmd := newServeCmd()
	if f := cmd.Flags().Lookup("port"); f == nil || f.DefValue != "0" {
		t.Errorf("--port default = %v, want 0 (use config)", f)
	}
	if f := cmd.Flags().Lookup("config"); f == nil || f.DefValue != defaultConfigPath {
		t.Errorf("--config default = %v, want %q", f, defaultConfigPath)
	}
}

func TestServeCmd_BadSweepSchedule(t *testing.T) {
	cfgPath := writeConfig(t, "batch:\n  sweep_schedule: \"not a schedule\"\n")
	_, err := runCmd(t, "serve", "--config", cfgPath)
	if err == nil {
		t.Fatal("expected error for invalid sweep schedule")
	}
}
