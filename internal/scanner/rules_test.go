package scanner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRules(t *testing.T) {
	t.Run("valid file", func(t *testing.T) {
		file, err := ParseRules(strings.NewReader(`
rules:
  - name: demo
    tags: [a, b]
    strings:
      - id: $x
        text: hello
`))
		require.NoError(t, err)
		require.Len(t, file.Rules, 1)
		assert.Equal(t, "demo", file.Rules[0].Name)
		assert.Equal(t, []string{"a", "b"}, file.Rules[0].Tags)
		assert.Equal(t, "hello", file.Rules[0].Strings[0].Text)
	})

	t.Run("empty document", func(t *testing.T) {
		_, err := ParseRules(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrNoRules)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := ParseRules(strings.NewReader("rules:\n  - name: demo\n    severity: high\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to decode rule file")
	})

	t.Run("multiple documents", func(t *testing.T) {
		_, err := ParseRules(strings.NewReader("rules: []\n---\nrules: []\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "multiple YAML documents")
	})
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		file    *RuleFile
		wantErr error
		errText string
	}{
		{
			name:    "nil file",
			file:    nil,
			wantErr: ErrNoRules,
		},
		{
			name:    "no rules",
			file:    &RuleFile{},
			wantErr: ErrNoRules,
		},
		{
			name:    "missing name",
			file:    &RuleFile{Rules: []RuleSpec{{Strings: []StringSpec{{Text: "x"}}}}},
			wantErr: ErrInvalidRule,
			errText: "has no name",
		},
		{
			name: "duplicate name",
			file: &RuleFile{Rules: []RuleSpec{
				{Name: "a", Strings: []StringSpec{{Text: "x"}}},
				{Name: "a", Strings: []StringSpec{{Text: "y"}}},
			}},
			wantErr: ErrInvalidRule,
			errText: "duplicate rule name",
		},
		{
			name:    "unknown condition",
			file:    &RuleFile{Rules: []RuleSpec{{Name: "a", Condition: "most", Strings: []StringSpec{{Text: "x"}}}}},
			wantErr: ErrInvalidRule,
			errText: "unknown condition",
		},
		{
			name:    "no strings",
			file:    &RuleFile{Rules: []RuleSpec{{Name: "a"}}},
			wantErr: ErrInvalidRule,
			errText: "has no strings",
		},
		{
			name:    "two pattern kinds",
			file:    &RuleFile{Rules: []RuleSpec{{Name: "a", Strings: []StringSpec{{Text: "x", Hex: "41"}}}}},
			wantErr: ErrInvalidRule,
			errText: "exactly one of",
		},
		{
			name:    "bad hex",
			file:    &RuleFile{Rules: []RuleSpec{{Name: "a", Strings: []StringSpec{{Hex: "4G"}}}}},
			wantErr: ErrInvalidRule,
			errText: "bad hex pattern",
		},
		{
			name:    "bad regex",
			file:    &RuleFile{Rules: []RuleSpec{{Name: "a", Strings: []StringSpec{{Regex: "(unclosed"}}}}},
			wantErr: ErrInvalidRule,
			errText: "bad regex",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compile(tt.file)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.errText != "" {
				assert.Contains(t, err.Error(), tt.errText)
			}
		})
	}
}

func TestCompiledRuleEvaluate(t *testing.T) {
	set, err := compile(&RuleFile{Rules: []RuleSpec{
		{
			Name: "any",
			Strings: []StringSpec{
				{ID: "$a", Text: "alpha"},
				{ID: "$b", Text: "beta"},
			},
		},
		{
			Name:      "all",
			Condition: "ALL",
			Strings: []StringSpec{
				{ID: "$a", Text: "alpha"},
				{ID: "$b", Text: "beta"},
			},
		},
		{
			Name: "mixed",
			Strings: []StringSpec{
				{Text: "SHOUT", NoCase: true},
				{Hex: "de ad be ef"},
				{Regex: `id=\d+`},
			},
		},
	}})
	require.NoError(t, err)

	eval := func(idx int, data string) ([]string, bool) {
		b := []byte(data)
		return set.rules[idx].evaluate(b, []byte(strings.ToLower(data)))
	}

	hits, ok := eval(0, "only beta here")
	assert.True(t, ok)
	assert.Equal(t, []string{"$b"}, hits)

	_, ok = eval(1, "only beta here")
	assert.False(t, ok)

	hits, ok = eval(1, "alpha and beta")
	assert.True(t, ok)
	assert.Equal(t, []string{"$a", "$b"}, hits)

	hits, ok = eval(2, "someone said shout")
	assert.True(t, ok)
	assert.Equal(t, []string{"$s0"}, hits)

	hits, ok = eval(2, "\xde\xad\xbe\xef and id=42")
	assert.True(t, ok)
	assert.Equal(t, []string{"$s1", "$s2"}, hits)

	_, ok = eval(2, "nothing to see")
	assert.False(t, ok)
}
