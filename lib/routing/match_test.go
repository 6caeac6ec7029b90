// Copyright 2026 The mcpdispatch Authors
// SPDX-License-Identifier: Apache-2.0

package routing

import "testing"

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		want    bool
	}{
		{"exact", "/home/alice/projects", "/home/alice/projects", true},
		{"exact mismatch", "/home/alice/projects", "/home/alice/project", false},
		{"star crosses separators", "/repo/a*", "/repo/a/sub", true},
		{"star matches bare segment", "/repo/a*", "/repo/a", true},
		{"star mid-pattern", "/home/*/projects/web*", "/home/alice/projects/web-app", true},
		{"star mid-pattern bare", "/home/*/projects/web*", "/home/alice/projects/web", true},
		{"star mid-pattern mismatch", "/home/*/projects/web*", "/home/alice/projects/api", false},
		{"leading star", "*/build", "/tmp/x/build", true},
		{"lone star", "*", "/anything/at/all", true},
		{"empty path lone star", "*", "", true},
		{"question mark", "/v?", "/v1", true},
		{"question mark no crossing absent char", "/v?", "/v", false},
		{"two stars collapse", "/a**b", "/a/x/b", true},
		{"class member", "/srv/[abc]", "/srv/b", true},
		{"class non-member", "/srv/[abc]", "/srv/d", false},
		{"class range", "/srv/[a-c]", "/srv/b", true},
		{"class range boundary", "/srv/[a-c]", "/srv/c", true},
		{"negated class", "/srv/[!abc]", "/srv/d", true},
		{"negated class member", "/srv/[!abc]", "/srv/a", false},
		{"literal close bracket", "/srv/[]x]", "/srv/]", true},
		{"case sensitive", "/Repo/*", "/repo/x", false},
		{"braces are literal", "/srv/{web,api}", "/srv/web", false},
		{"braces literal exact", "/srv/{web,api}", "/srv/{web,api}", true},
		{"unterminated class is literal bracket", "/srv/[abc", "/srv/[abc", true},
		{"unterminated class no class semantics", "/srv/[abc", "/srv/a", false},
		{"unterminated class behind star", "*[", "x[", true},
		{"unterminated class behind star mismatch", "*[", "xy", false},
		{"star backtracking", "*ab*ab", "xabxabxab", true},
		{"trailing star empty", "/repo/*", "/repo/", true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := Match(test.pattern, test.path); got != test.want {
				t.Errorf("Match(%q, %q) = %v, want %v", test.pattern, test.path, got, test.want)
			}
		})
	}
}
