package scanner

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule conditions.
const (
	ConditionAny = "any"
	ConditionAll = "all"
)

var (
	// ErrNoRules is returned when a rule file defines no rules.
	ErrNoRules = errors.New("scanner: rule file defines no rules")

	// ErrInvalidRule is wrapped by every rule validation failure.
	ErrInvalidRule = errors.New("scanner: invalid rule")
)

// RuleFile is the on-disk layout of a signature file.
type RuleFile struct {
	Rules []RuleSpec `yaml:"rules"`
}

// RuleSpec describes a single signature.
type RuleSpec struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Tags        []string     `yaml:"tags"`
	Condition   string       `yaml:"condition"` // "any" (default) | "all"
	Strings     []StringSpec `yaml:"strings"`
}

// StringSpec is one pattern of a rule. Exactly one of Text, Hex or Regex
// must be set.
type StringSpec struct {
	ID     string `yaml:"id"`
	Text   string `yaml:"text"`
	Hex    string `yaml:"hex"`
	Regex  string `yaml:"regex"`
	NoCase bool   `yaml:"nocase"`
}

type matcher func(data, folded []byte) bool

type compiledString struct {
	id    string
	match matcher
}

type compiledRule struct {
	name        string
	description string
	tags        []string
	all         bool
	strings     []compiledString
}

// ruleSet is immutable once compiled.
type ruleSet struct {
	rules []compiledRule
}

// ParseRules decodes a rule file. Unknown fields and multiple documents are
// rejected.
func ParseRules(r io.Reader) (*RuleFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file RuleFile
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoRules
		}
		return nil, fmt.Errorf("failed to decode rule file: %w", err)
	}

	var extra any
	if err := dec.Decode(&extra); err == nil {
		return nil, errors.New("scanner: multiple YAML documents are not allowed")
	} else if !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode rule file: %w", err)
	}

	return &file, nil
}

// compile validates the rule file and builds its matchers.
func compile(file *RuleFile) (*ruleSet, error) {
	if file == nil || len(file.Rules) == 0 {
		return nil, ErrNoRules
	}

	seen := make(map[string]struct{}, len(file.Rules))
	set := &ruleSet{rules: make([]compiledRule, 0, len(file.Rules))}

	for i, spec := range file.Rules {
		name := strings.TrimSpace(spec.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: rule #%d has no name", ErrInvalidRule, i+1)
		}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("%w: duplicate rule name %q", ErrInvalidRule, name)
		}
		seen[name] = struct{}{}

		rule, err := compileRule(name, spec)
		if err != nil {
			return nil, err
		}
		set.rules = append(set.rules, rule)
	}

	return set, nil
}

func compileRule(name string, spec RuleSpec) (compiledRule, error) {
	rule := compiledRule{
		name:        name,
		description: spec.Description,
		tags:        spec.Tags,
	}

	switch strings.ToLower(strings.TrimSpace(spec.Condition)) {
	case "", ConditionAny:
	case ConditionAll:
		rule.all = true
	default:
		return rule, fmt.Errorf("%w: rule %q has unknown condition %q", ErrInvalidRule, name, spec.Condition)
	}

	if len(spec.Strings) == 0 {
		return rule, fmt.Errorf("%w: rule %q has no strings", ErrInvalidRule, name)
	}

	for i, s := range spec.Strings {
		id := s.ID
		if id == "" {
			id = fmt.Sprintf("$s%d", i)
		}
		m, err := compileString(s)
		if err != nil {
			return rule, fmt.Errorf("%w: rule %q string %s: %v", ErrInvalidRule, name, id, err)
		}
		rule.strings = append(rule.strings, compiledString{id: id, match: m})
	}

	return rule, nil
}

func compileString(s StringSpec) (matcher, error) {
	set := 0
	for _, v := range []string{s.Text, s.Hex, s.Regex} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return nil, errors.New("exactly one of text, hex or regex is required")
	}

	switch {
	case s.Text != "":
		needle := []byte(s.Text)
		if s.NoCase {
			needle = bytes.ToLower(needle)
			return func(_, folded []byte) bool { return bytes.Contains(folded, needle) }, nil
		}
		return func(data, _ []byte) bool { return bytes.Contains(data, needle) }, nil

	case s.Hex != "":
		needle, err := hex.DecodeString(strings.Join(strings.Fields(s.Hex), ""))
		if err != nil {
			return nil, fmt.Errorf("bad hex pattern: %w", err)
		}
		return func(data, _ []byte) bool { return bytes.Contains(data, needle) }, nil

	default:
		expr := s.Regex
		if s.NoCase {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("bad regex: %w", err)
		}
		return func(data, _ []byte) bool { return re.Match(data) }, nil
	}
}

// evaluate returns the ids of the matching strings and whether the rule
// condition holds.
func (r *compiledRule) evaluate(data, folded []byte) ([]string, bool) {
	var hits []string
	for _, s := range r.strings {
		if s.match(data, folded) {
			hits = append(hits, s.id)
		} else if r.all {
			return nil, false
		}
	}
	return hits, len(hits) > 0
}
