package inputtracking

import "testing"

func TestRuleSetLongestPrefixWins(t *testing.T) {
	rules := NewRuleSet([]MembershipRule{
		{Root: "/repo", Kind: RuleIgnoreWildcards, Patterns: []string{"*.tmp"}},
		{Root: "/repo/build", Kind: RuleDisableFilesystemEnumeration},
	})

	if rule := rules.ruleFor("/repo/src"); rule == nil || rule.Kind != RuleIgnoreWildcards {
		t.Fatalf("ruleFor(/repo/src) = %v, want RuleIgnoreWildcards", rule)
	}
	if rule := rules.ruleFor("/repo/build/out.o"); rule == nil || rule.Kind != RuleDisableFilesystemEnumeration {
		t.Fatalf("ruleFor(/repo/build/out.o) = %v, want RuleDisableFilesystemEnumeration", rule)
	}
	if rule := rules.ruleFor("/other"); rule != nil {
		t.Fatalf("ruleFor(/other) = %v, want nil", rule)
	}
}

func TestMembershipRuleExcludedMatchesGlob(t *testing.T) {
	rule := &MembershipRule{Kind: RuleIgnoreWildcards, Patterns: []string{"*.tmp", "cache"}}
	if !rule.excluded("scratch.tmp") {
		t.Fatal("excluded(scratch.tmp) = false, want true")
	}
	if !rule.excluded("cache") {
		t.Fatal("excluded(cache) = false, want true")
	}
	if rule.excluded("main.go") {
		t.Fatal("excluded(main.go) = true, want false")
	}
}

func TestMembershipRuleExcludedNilRuleNeverExcludes(t *testing.T) {
	var rule *MembershipRule
	if rule.excluded("anything") {
		t.Fatal("nil rule excluded(anything) = true, want false")
	}
}

func TestNilRuleSetHasNoRules(t *testing.T) {
	var rules *RuleSet
	if rule := rules.ruleFor("/repo"); rule != nil {
		t.Fatalf("ruleFor on nil RuleSet = %v, want nil", rule)
	}
}
