package inputtracking

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// MembershipRuleKind is the kind of directory-membership-fingerprinter rule
// in effect for a directory root (spec.md §4.1).
type MembershipRuleKind uint8

const (
	// RuleDisableFilesystemEnumeration forbids enumeration of the directory
	// entirely; TrackDirectory refuses such a directory and returns an error.
	RuleDisableFilesystemEnumeration MembershipRuleKind = iota
	// RuleIgnoreWildcards enumerates normally but excludes members whose
	// name matches one of the rule's glob patterns from the membership
	// fingerprint.
	RuleIgnoreWildcards
)

// MembershipRule binds a MembershipRuleKind to the directory root it
// applies to. Exactly one rule may be active for a given root; rules are
// matched by the longest root prefix of the directory being tracked.
type MembershipRule struct {
	Root     string
	Kind     MembershipRuleKind
	Patterns []string
}

// RuleSet is an ordered collection of MembershipRules.
type RuleSet struct {
	rules []MembershipRule
}

// NewRuleSet creates a RuleSet from the given rules.
func NewRuleSet(rules []MembershipRule) *RuleSet {
	return &RuleSet{rules: rules}
}

// ruleFor returns the rule whose root is the longest prefix match of path,
// or nil if no rule applies.
func (s *RuleSet) ruleFor(path string) *MembershipRule {
	if s == nil {
		return nil
	}
	var best *MembershipRule
	for i := range s.rules {
		rule := &s.rules[i]
		if !isUnderRoot(path, rule.Root) {
			continue
		}
		if best == nil || len(rule.Root) > len(best.Root) {
			best = rule
		}
	}
	return best
}

// isUnderRoot reports whether path is root or a descendant of root.
func isUnderRoot(path, root string) bool {
	if root == "" {
		return true
	}
	return path == root || strings.HasPrefix(path, root+"/")
}

// excluded reports whether name should be excluded from the membership
// fingerprint of a directory governed by rule.
func (rule *MembershipRule) excluded(name string) bool {
	if rule == nil || rule.Kind != RuleIgnoreWildcards {
		return false
	}
	for _, pattern := range rule.Patterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
