package deps

import "testing"

func TestCheckBinaries(t *testing.T) {
	results := CheckBinaries([]Requirement{
		{Name: "Shell", Command: "sh", Description: "always present"},
		{Name: "Missing", Command: "definitely-not-a-real-binary-xyz"},
		{Name: "Unconfigured", Command: "  "},
	})
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	if !results[0].Available {
		t.Errorf("sh unavailable: %+v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Errorf("missing binary reported available: %+v", results[1])
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Errorf("unconfigured command: %+v", results[2])
	}
}
