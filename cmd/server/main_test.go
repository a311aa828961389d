package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func newFlagCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	addServeFlags(cmd)
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatalf("ParseFlags(%v): %v", args, err)
	}
	return cmd
}

func TestOverridesOnlyForChangedFlags(t *testing.T) {
	o, err := overridesFromFlags(newFlagCmd(t).Flags())
	if err != nil {
		t.Fatalf("overridesFromFlags() error: %v", err)
	}
	if o.Host != nil || o.Port != nil || o.UpstreamHost != nil || o.UpstreamPort != nil || o.UpstreamType != nil || o.LogLevel != nil {
		t.Errorf("unset flags produced overrides: %+v", o)
	}
}

func TestOverridesFromFlags(t *testing.T) {
	o, err := overridesFromFlags(newFlagCmd(t,
		"--upstream-host", "vllm",
		"--upstream-port", "8000",
		"--upstream-type", "embeddings",
		"--port", "8080",
		"--log-level", "DEBUG",
	).Flags())
	if err != nil {
		t.Fatalf("overridesFromFlags() error: %v", err)
	}

	if o.UpstreamHost == nil || *o.UpstreamHost != "vllm" {
		t.Errorf("UpstreamHost = %v, want vllm", o.UpstreamHost)
	}
	if o.UpstreamPort == nil || *o.UpstreamPort != 8000 {
		t.Errorf("UpstreamPort = %v, want 8000", o.UpstreamPort)
	}
	if o.UpstreamType == nil || *o.UpstreamType != "embeddings" {
		t.Errorf("UpstreamType = %v, want embeddings", o.UpstreamType)
	}
	if o.Port == nil || *o.Port != 8080 {
		t.Errorf("Port = %v, want 8080", o.Port)
	}
	if o.LogLevel == nil || *o.LogLevel != "DEBUG" {
		t.Errorf("LogLevel = %v, want DEBUG", o.LogLevel)
	}
	if o.Host != nil {
		t.Errorf("Host = %q, want unset", *o.Host)
	}
}

func TestInvalidPortFlag(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	addServeFlags(cmd)
	if err := cmd.ParseFlags([]string{"--port", "eighty"}); err == nil {
		t.Error("ParseFlags(--port eighty) should fail")
	}
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)

	out := buf.String()
	if !strings.HasPrefix(out, "azproxy "+Version) {
		t.Errorf("version output = %q", out)
	}
	if !strings.Contains(out, "Go Version:") {
		t.Error("version output missing Go version")
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"serve": false, "version": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}
