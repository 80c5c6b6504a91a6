package triage

import "testing"

func TestExtractIssueType(t *testing.T) {
	validTypes := []string{"fix", "feat", "chore"}

	tests := []struct {
		title     string
		wantToken string
		wantOK    bool
	}{
		{"fix: some bug", "fix", true},
		{"fix(ui): broken button", "fix", true},
		{"fix(): empty scope", "fix", true},
		{"feat: shiny", "feat", true},
		{"fix:no space after colon", "fix", true},
		{"oops x", "", false},
		{"fix some bug", "", false},
		{"invalid: x", "", false},
		{"Fix: case matters", "", false},
		{" fix: leading space", "", false},
		{"fix(ui: unbalanced", "", false},
		{"", "", false},
		{":", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			token, ok := ExtractIssueType(tt.title, validTypes)
			if ok != tt.wantOK || token != tt.wantToken {
				t.Errorf("ExtractIssueType(%q) = (%q, %v), want (%q, %v)",
					tt.title, token, ok, tt.wantToken, tt.wantOK)
			}
		})
	}
}

func TestExtractIssueTypeEmptyVocabulary(t *testing.T) {
	if _, ok := ExtractIssueType("fix: x", nil); ok {
		t.Error("no token should match an empty vocabulary")
	}
}
