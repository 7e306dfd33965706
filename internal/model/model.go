// Package model holds the in-memory policy model the storage adapter loads
// into and saves from. The model groups rule sets into two sections: "p"
// for access rules and "g" for role-grouping rules. It carries no matching
// or evaluation logic.
package model

import (
	"slices"
	"sort"
	"strings"
)

// Section names for the two top-level rule groups.
const (
	SectionPolicy   = "p"
	SectionGrouping = "g"
)

// Model maps rule-set names (ptypes) to their ordered rule parameter lists.
// Order within a rule set is preserved on insertion but carries no meaning;
// policy rules are set-like.
type Model struct {
	sections map[string]map[string][][]string
}

// New returns an empty model with both sections present.
func New() *Model {
	return &Model{
		sections: map[string]map[string][][]string{
			SectionPolicy:   {},
			SectionGrouping: {},
		},
	}
}

// SectionForPType derives the section a rule set belongs to from its name:
// names starting with "g" are grouping rules, everything else is an access
// rule.
func SectionForPType(ptype string) string {
	if strings.HasPrefix(ptype, SectionGrouping) {
		return SectionGrouping
	}
	return SectionPolicy
}

// AddRule appends a rule to the named rule set. An empty section is derived
// from the ptype.
func (m *Model) AddRule(sec, ptype string, params []string) {
	if sec == "" {
		sec = SectionForPType(ptype)
	}
	rules, ok := m.sections[sec]
	if !ok {
		rules = map[string][][]string{}
		m.sections[sec] = rules
	}
	rules[ptype] = append(rules[ptype], slices.Clone(params))
}

// Rules returns the rule set stored under ptype in the given section.
func (m *Model) Rules(sec, ptype string) [][]string {
	return m.sections[sec][ptype]
}

// HasRule reports whether an identical rule exists in the named rule set.
func (m *Model) HasRule(sec, ptype string, params []string) bool {
	for _, r := range m.sections[sec][ptype] {
		if slices.Equal(r, params) {
			return true
		}
	}
	return false
}

// PTypes returns the rule-set names present in a section, sorted for
// deterministic iteration.
func (m *Model) PTypes(sec string) []string {
	names := make([]string, 0, len(m.sections[sec]))
	for name := range m.sections[sec] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RuleCount returns the total number of rules across both sections.
func (m *Model) RuleCount() int {
	n := 0
	for _, rules := range m.sections {
		for _, rs := range rules {
			n += len(rs)
		}
	}
	return n
}

// Clear drops all rules from both sections, keeping the section structure.
func (m *Model) Clear() {
	for sec := range m.sections {
		m.sections[sec] = map[string][][]string{}
	}
}

// Walk calls fn for every rule in the model, section by section, rule sets
// in sorted name order. Walking stops at the first error.
func (m *Model) Walk(fn func(sec, ptype string, params []string) error) error {
	for _, sec := range []string{SectionPolicy, SectionGrouping} {
		for _, ptype := range m.PTypes(sec) {
			for _, params := range m.sections[sec][ptype] {
				if err := fn(sec, ptype, params); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
