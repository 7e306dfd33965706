package model

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSectionForPType(t *testing.T) {
	tests := []struct {
		ptype string
		want  string
	}{
		{"p", SectionPolicy},
		{"p2", SectionPolicy},
		{"g", SectionGrouping},
		{"g2", SectionGrouping},
		{"abac", SectionPolicy},
	}
	for _, tt := range tests {
		if got := SectionForPType(tt.ptype); got != tt.want {
			t.Errorf("SectionForPType(%q) = %q, want %q", tt.ptype, got, tt.want)
		}
	}
}

func TestAddRuleDerivesSection(t *testing.T) {
	m := New()
	m.AddRule("", "p", []string{"alice", "data1", "read"})
	m.AddRule("", "g", []string{"alice", "admin"})

	if got := m.Rules(SectionPolicy, "p"); len(got) != 1 {
		t.Errorf("policy section holds %d rules, want 1", len(got))
	}
	if got := m.Rules(SectionGrouping, "g"); len(got) != 1 {
		t.Errorf("grouping section holds %d rules, want 1", len(got))
	}
}

func TestAddRuleCopiesParams(t *testing.T) {
	m := New()
	params := []string{"alice", "data1", "read"}
	m.AddRule("p", "p", params)
	params[0] = "mallory"

	got := m.Rules(SectionPolicy, "p")[0]
	if got[0] != "alice" {
		t.Errorf("stored rule mutated through caller slice: %v", got)
	}
}

func TestHasRule(t *testing.T) {
	m := New()
	m.AddRule("p", "p", []string{"alice", "data1", "read"})

	if !m.HasRule("p", "p", []string{"alice", "data1", "read"}) {
		t.Error("HasRule() = false for stored rule")
	}
	if m.HasRule("p", "p", []string{"bob", "data1", "read"}) {
		t.Error("HasRule() = true for absent rule")
	}
}

func TestClear(t *testing.T) {
	m := New()
	m.AddRule("p", "p", []string{"alice", "data1", "read"})
	m.AddRule("g", "g", []string{"alice", "admin"})
	m.Clear()

	if n := m.RuleCount(); n != 0 {
		t.Errorf("RuleCount() after Clear = %d, want 0", n)
	}
}

func TestWalkOrder(t *testing.T) {
	m := New()
	m.AddRule("g", "g", []string{"alice", "admin"})
	m.AddRule("p", "p2", []string{"bob", "data2", "write"})
	m.AddRule("p", "p", []string{"alice", "data1", "read"})

	var seen []string
	err := m.Walk(func(sec, ptype string, params []string) error {
		seen = append(seen, sec+"/"+ptype)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk() failed: %v", err)
	}
	want := []string{"p/p", "p/p2", "g/g"}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("Walk order mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCSV(t *testing.T) {
	input := `
# access rules
p, alice, data1, read
p, bob, data2, write

g, alice, admin
`
	m, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV() failed: %v", err)
	}

	wantP := [][]string{
		{"alice", "data1", "read"},
		{"bob", "data2", "write"},
	}
	if diff := cmp.Diff(wantP, m.Rules(SectionPolicy, "p")); diff != "" {
		t.Errorf("p rules mismatch (-want +got):\n%s", diff)
	}
	wantG := [][]string{{"alice", "admin"}}
	if diff := cmp.Diff(wantG, m.Rules(SectionGrouping, "g")); diff != "" {
		t.Errorf("g rules mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCSVRejectsEmptyPType(t *testing.T) {
	if _, err := ParseCSV(strings.NewReader(", alice, data1")); err == nil {
		t.Error("ParseCSV() accepted a line with no rule-set name")
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	m := New()
	m.AddRule("p", "p", []string{"alice", "data1", "read"})
	m.AddRule("g", "g", []string{"alice", "admin"})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, m); err != nil {
		t.Fatalf("WriteCSV() failed: %v", err)
	}

	got, err := ParseCSV(&buf)
	if err != nil {
		t.Fatalf("ParseCSV() of written output failed: %v", err)
	}
	if diff := cmp.Diff(m.Rules("p", "p"), got.Rules("p", "p")); diff != "" {
		t.Errorf("round-tripped p rules mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(m.Rules("g", "g"), got.Rules("g", "g")); diff != "" {
		t.Errorf("round-tripped g rules mismatch (-want +got):\n%s", diff)
	}
}
