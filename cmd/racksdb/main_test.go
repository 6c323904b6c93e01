package main

import (
	"bytes"
	"strings"
	"testing"
)

const testInventory = "../../racks/testdata/inventory.yml"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append(args, "--config", "", "--db", testInventory))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestNodesList(t *testing.T) {
	out, err := execute(t, "nodes", "--infrastructure", "jupiter", "--list", "--fold")
	if err != nil {
		t.Fatalf("nodes failed: %v", err)
	}
	if got := strings.TrimSpace(out); got != "jupcn[01-08]" {
		t.Errorf("output = %q, want jupcn[01-08]", got)
	}
}

func TestRacksJSON(t *testing.T) {
	out, err := execute(t, "racks", "--name", "L1-02", "--format", "json")
	if err != nil {
		t.Fatalf("racks failed: %v", err)
	}
	if !strings.Contains(out, `"L1-02"`) {
		t.Errorf("output does not contain L1-02:\n%s", out)
	}
}

func TestValidate(t *testing.T) {
	out, err := execute(t, "validate")
	if err != nil {
		t.Fatalf("validate failed: %v", err)
	}
	for _, want := range []string{"Nodes: 73", "Racks: 10", "Database is valid."} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestViewUnsupportedFilter(t *testing.T) {
	_, err := execute(t, "datacenters", "--infrastructure", "mercury")
	if err == nil {
		t.Error("datacenters should not accept --infrastructure")
	}
}

func TestViewFormat(t *testing.T) {
	tests := []struct {
		flag       string
		configured string
		want       string
		wantErr    bool
	}{
		{"", "yaml", "yaml", false},
		{"", "json", "json", false},
		{"", "console", "yaml", false},
		{"json", "yaml", "json", false},
		{"console", "yaml", "", true},
	}

	for _, tt := range tests {
		got, err := viewFormat(tt.flag, tt.configured)
		if (err != nil) != tt.wantErr {
			t.Errorf("viewFormat(%q, %q) error = %v, wantErr %v", tt.flag, tt.configured, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("viewFormat(%q, %q) = %s, want %s", tt.flag, tt.configured, got, tt.want)
		}
	}
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out, "schema: 0.5.0") {
		t.Errorf("output = %q, want schema 0.5.0", out)
	}
}
