package registration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validInput() Input {
	return Input{
		FullName:     "Asha Rao",
		Organization: "Acme Actuarial",
		Phone:        "+91 98765-43210",
		Email:        "asha@example.co.in",
	}
}

func mustDefaultRules(t *testing.T) *Rules {
	t.Helper()
	rules, err := DefaultRules()
	if err != nil {
		t.Fatalf("DefaultRules() failed: %v", err)
	}
	return rules
}

func TestDefaultRulesCompile(t *testing.T) {
	rules := mustDefaultRules(t)
	if rules.Len() == 0 {
		t.Fatal("DefaultRules() should compile at least one rule")
	}
}

func TestCheckAcceptsValidInput(t *testing.T) {
	rules := mustDefaultRules(t)

	if failures := rules.Check(validInput()); len(failures) != 0 {
		t.Errorf("Check() = %v, want no failures", failures)
	}
}

func TestCheckOptionalFields(t *testing.T) {
	rules := mustDefaultRules(t)

	in := validInput()
	in.Organization = ""
	in.Email = "   "

	if failures := rules.Check(in); len(failures) != 0 {
		t.Errorf("Check() = %v, want optional fields to be accepted empty", failures)
	}
}

func TestCheckRejections(t *testing.T) {
	rules := mustDefaultRules(t)

	tests := []struct {
		name        string
		mutate      func(*Input)
		wantField   string
		wantMessage string
	}{
		{"missing name", func(in *Input) { in.FullName = "  " }, "fullName", "Full name is required"},
		{"missing phone", func(in *Input) { in.Phone = "" }, "phone", "Phone number is required"},
		{"phone with letters", func(in *Input) { in.Phone = "555-CALL-NOW" }, "phone", "Invalid phone number"},
		{"phone too short", func(in *Input) { in.Phone = "12345" }, "phone", "Invalid phone number"},
		{"phone too long", func(in *Input) { in.Phone = "1234567890123456" }, "phone", "Invalid phone number"},
		{"email without domain", func(in *Input) { in.Email = "asha@" }, "email", "Invalid email"},
		{"email with short tld", func(in *Input) { in.Email = "asha@example.c" }, "email", "Invalid email"},
		{"name too long", func(in *Input) { in.FullName = strings.Repeat("a", 201) }, "fullName", "Full name is too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			failures := rules.Check(in)
			if len(failures) != 1 {
				t.Fatalf("Check() = %v, want exactly one failure", failures)
			}
			if failures[0].Field != tt.wantField || failures[0].Message != tt.wantMessage {
				t.Errorf("Check() = %+v, want {%s %s}", failures[0], tt.wantField, tt.wantMessage)
			}
		})
	}
}

func TestCheckEmailCaseInsensitive(t *testing.T) {
	rules := mustDefaultRules(t)

	in := validInput()
	in.Email = "Asha.Rao@Example.COM"
	if failures := rules.Check(in); len(failures) != 0 {
		t.Errorf("Check() = %v, want mixed-case email accepted", failures)
	}
}

func TestCheckReportsInRuleOrder(t *testing.T) {
	rules := mustDefaultRules(t)

	failures := rules.Check(Input{Email: "nope"})
	if len(failures) != 3 {
		t.Fatalf("Check() = %v, want 3 failures", failures)
	}
	want := []string{"fullName", "phone", "email"}
	for i, f := range failures {
		if f.Field != want[i] {
			t.Errorf("failure %d field = %s, want %s", i, f.Field, want[i])
		}
	}
}

func TestNewRulesRejectsBadDefinitions(t *testing.T) {
	tests := []struct {
		name    string
		defs    []Rule
		wantErr string
	}{
		{"empty", nil, "at least one rule"},
		{"missing field", []Rule{{Expression: "true", Message: "m"}}, "field is required"},
		{"unknown field", []Rule{{Field: "address", Expression: "true", Message: "m"}}, "unknown field"},
		{"missing message", []Rule{{Field: "phone", Expression: "true"}}, "message is required"},
		{"syntax error", []Rule{{Field: "phone", Expression: "phone ==", Message: "m"}}, "compile error"},
		{"unknown variable", []Rule{{Field: "phone", Expression: `address != ""`, Message: "m"}}, "compile error"},
		{"non-bool", []Rule{{Field: "phone", Expression: "size(phone)", Message: "m"}}, "must evaluate to bool"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRules(tt.defs)
			if err == nil {
				t.Fatal("NewRules() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewRules() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRulesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `rules:
  - field: organization
    expression: 'organization != ""'
    message: Organization is required
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write rules file: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules() failed: %v", err)
	}

	failures := rules.Check(Input{})
	if len(failures) != 1 || failures[0].Message != "Organization is required" {
		t.Errorf("Check() = %v, want organization failure", failures)
	}
}

func TestLoadRulesDefaultsAndMissingFile(t *testing.T) {
	if _, err := LoadRules(""); err != nil {
		t.Errorf("LoadRules(\"\") failed: %v", err)
	}
	if _, err := LoadRules(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadRules() should fail for a missing file")
	}
}

func TestParseRulesInvalidYAML(t *testing.T) {
	if _, err := ParseRules([]byte("rules: [")); err == nil {
		t.Error("ParseRules() should fail on invalid YAML")
	}
}
