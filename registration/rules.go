package registration

import (
	_ "embed"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// costLimit bounds a single rule evaluation
const costLimit = 100000

// fieldNames are the CEL variables every rule can reference
var fieldNames = []string{"fullName", "organization", "phone", "email"}

// Rule is a single field check written in CEL
type Rule struct {
	Field      string `yaml:"field"`
	Expression string `yaml:"expression"`
	Message    string `yaml:"message"`
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

type compiledRule struct {
	Rule
	prog cel.Program
}

// Rules validates registration input against compiled CEL rules.
// Safe for concurrent use once built.
type Rules struct {
	env   *cel.Env
	rules []compiledRule
}

// DefaultRules compiles the embedded rule file
func DefaultRules() (*Rules, error) {
	return ParseRules(defaultRulesYAML)
}

// LoadRules reads a rule file from disk. An empty path loads the defaults.
func LoadRules(path string) (*Rules, error) {
	if path == "" {
		return DefaultRules()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}
	rules, err := ParseRules(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	return rules, nil
}

// ParseRules parses and compiles a YAML rule file
func ParseRules(data []byte) (*Rules, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid rules YAML: %w", err)
	}
	return NewRules(f.Rules)
}

// NewRules compiles rule definitions. Every expression must type-check
// to bool against the registration fields.
func NewRules(defs []Rule) (*Rules, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("at least one rule must be defined")
	}

	opts := []cel.EnvOption{ext.Strings()}
	for _, name := range fieldNames {
		opts = append(opts, cel.Variable(name, cel.StringType))
	}
	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	r := &Rules{env: env}
	for i, def := range defs {
		if def.Field == "" {
			return nil, fmt.Errorf("rule %d: field is required", i)
		}
		if !slices.Contains(fieldNames, def.Field) {
			return nil, fmt.Errorf("rule %d: unknown field %q (must be one of: %s)", i, def.Field, strings.Join(fieldNames, ", "))
		}
		if def.Message == "" {
			return nil, fmt.Errorf("rule %d (%s): message is required", i, def.Field)
		}

		prog, err := r.compile(def.Expression)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, def.Field, err)
		}
		r.rules = append(r.rules, compiledRule{Rule: def, prog: prog})
	}

	return r, nil
}

func (r *Rules) compile(expression string) (cel.Program, error) {
	ast, issues := r.env.Compile(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if !ast.OutputType().IsExactType(cel.BoolType) {
		return nil, fmt.Errorf("expression %q must evaluate to bool, got %s", expression, ast.OutputType())
	}

	prog, err := r.env.Program(ast, cel.CostLimit(costLimit))
	if err != nil {
		return nil, fmt.Errorf("program creation error: %w", err)
	}
	return prog, nil
}

// Normalize trims every field
func Normalize(in Input) Input {
	return Input{
		FullName:     strings.TrimSpace(in.FullName),
		Organization: strings.TrimSpace(in.Organization),
		Phone:        strings.TrimSpace(in.Phone),
		Email:        strings.TrimSpace(in.Email),
	}
}

// Check evaluates every rule against the normalized input and returns
// the failures in rule order. An evaluation error counts as a failure.
func (r *Rules) Check(in Input) []FieldError {
	in = Normalize(in)
	vars := map[string]any{
		"fullName":     in.FullName,
		"organization": in.Organization,
		"phone":        in.Phone,
		"email":        in.Email,
	}

	var failures []FieldError
	for _, rule := range r.rules {
		out, _, err := rule.prog.Eval(vars)
		if err == nil {
			if ok, isBool := out.Value().(bool); isBool && ok {
				continue
			}
		}
		failures = append(failures, FieldError{Field: rule.Field, Message: rule.Message})
	}
	return failures
}

// Len returns the number of compiled rules
func (r *Rules) Len() int {
	return len(r.rules)
}
