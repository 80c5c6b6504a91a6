package triage

import (
	"fmt"
	"strings"
	"testing"

	"github.com/steveyegge/issuebot/internal/types"
)

func glRef(l types.Label) string { return fmt.Sprintf("~%q", l.Name) }

func priorityCategory() []types.Label {
	return []types.Label{
		{Name: "Priority::Normal"},
		{Name: "Priority::Important"},
		{Name: "Priority::Must Have"},
		{Name: "Priority::Hot Fix"},
	}
}

func TestCheckRequiredLabelSatisfied(t *testing.T) {
	issue := &types.Issue{
		ID: 1, ProjectID: "42", State: types.StateOpen,
		Labels: []types.Label{{Name: "Priority::Important"}},
	}

	action := CheckRequiredLabel(issue, priorityCategory(), types.Label{Name: "Priority::Normal"}, glRef)
	if !action.Satisfied {
		t.Fatal("expected category to be satisfied")
	}
	if action.Comment != "" || action.AddLabel.Name != "" {
		t.Errorf("satisfied action should be empty, got %+v", action)
	}
}

func TestCheckRequiredLabelNeedsDefault(t *testing.T) {
	issue := &types.Issue{ID: 1, ProjectID: "42", State: types.StateOpen}

	def := types.Label{Name: "Priority::Normal"}
	action := CheckRequiredLabel(issue, priorityCategory(), def, glRef)
	if action.Satisfied {
		t.Fatal("expected category to be unsatisfied")
	}
	if action.AddLabel != def {
		t.Errorf("AddLabel = %+v, want %+v", action.AddLabel, def)
	}

	// The comment lists every category label in configured order, then names
	// the default.
	want := "The issue must have one of the following labels:\n" +
		"- ~\"Priority::Normal\"\n" +
		"- ~\"Priority::Important\"\n" +
		"- ~\"Priority::Must Have\"\n" +
		"- ~\"Priority::Hot Fix\"\n" +
		"\n\nI am assigning the default label ~\"Priority::Normal\". Please replace with the correct label if needed."
	if action.Comment != want {
		t.Errorf("comment mismatch:\ngot:\n%s\nwant:\n%s", action.Comment, want)
	}
}

func TestCheckRequiredLabelIgnoresLabelsOutsideCategory(t *testing.T) {
	// Labels outside the category never satisfy it.
	issue := &types.Issue{
		ID: 1, ProjectID: "42", State: types.StateOpen,
		Labels: []types.Label{{Name: "Type::Feature"}, {Name: "backlog"}},
	}

	action := CheckRequiredLabel(issue, priorityCategory(), types.Label{Name: "Priority::Normal"}, glRef)
	if action.Satisfied {
		t.Error("labels outside the category must not satisfy it")
	}
}

func TestCheckRequiredLabelUsesReferenceSyntax(t *testing.T) {
	issue := &types.Issue{ID: 1, ProjectID: "owner/repo", State: types.StateOpen}
	ghRef := func(l types.Label) string { return "`" + l.Name + "`" }

	action := CheckRequiredLabel(issue, priorityCategory(), types.Label{Name: "Priority::Normal"}, ghRef)
	if !strings.Contains(action.Comment, "- `Priority::Normal`\n") {
		t.Errorf("comment should use the platform reference syntax, got:\n%s", action.Comment)
	}
}
