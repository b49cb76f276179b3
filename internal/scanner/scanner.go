package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

// ErrNotActive is returned by Scan and Check before a rule set is loaded.
var ErrNotActive = errors.New("scanner: not active")

// Match reports a rule that matched scanned content.
type Match struct {
	Rule        string   `json:"rule"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Strings     []string `json:"strings"`
}

// RuleScanner scans content against the rules of a single YAML file.
type RuleScanner struct {
	path   string
	logger *slog.Logger

	mu    sync.RWMutex
	rules *ruleSet
}

// NewRuleScanner creates a scanner for the rule file at path. Rules are not
// read until Activate.
func NewRuleScanner(path string, logger *slog.Logger) *RuleScanner {
	if logger == nil {
		logger = slog.Default()
	}
	return &RuleScanner{
		path:   path,
		logger: logger.With("component", "scanner"),
	}
}

// Activate loads and compiles the rule file. On failure the scanner keeps
// whatever rule set it had before, which for a fresh scanner means it stays
// inactive.
func (s *RuleScanner) Activate(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	set, err := s.load()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.rules = set
	s.mu.Unlock()

	s.logger.Info("rules loaded", "path", s.path, "rules", len(set.rules))
	return nil
}

func (s *RuleScanner) load() (*ruleSet, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rule file: %w", err)
	}
	defer f.Close()

	file, err := ParseRules(f)
	if err != nil {
		return nil, err
	}
	return compile(file)
}

// Ready reports whether a rule set is loaded.
func (s *RuleScanner) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rules != nil
}

// RuleCount returns the number of loaded rules.
func (s *RuleScanner) RuleCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.rules == nil {
		return 0
	}
	return len(s.rules.rules)
}

// Check returns ErrNotActive until a rule set is loaded.
func (s *RuleScanner) Check(_ context.Context) error {
	if !s.Ready() {
		return ErrNotActive
	}
	return nil
}

// Scan returns every rule matching data, in rule file order.
func (s *RuleScanner) Scan(ctx context.Context, data []byte) ([]Match, error) {
	s.mu.RLock()
	set := s.rules
	s.mu.RUnlock()

	if set == nil {
		return nil, ErrNotActive
	}

	folded := bytes.ToLower(data)
	matches := make([]Match, 0)

	for i := range set.rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rule := &set.rules[i]
		hits, ok := rule.evaluate(data, folded)
		if !ok {
			continue
		}
		matches = append(matches, Match{
			Rule:        rule.name,
			Description: rule.description,
			Tags:        rule.tags,
			Strings:     hits,
		})
	}

	return matches, nil
}
