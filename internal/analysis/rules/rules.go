package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed default_rules.yaml
var defaultRules []byte

// ErrInvalidRules is wrapped by every validation failure.
var ErrInvalidRules = errors.New("invalid keyword rules")

// Table is one labelled keyword list. A table matches when any keyword is a
// substring of the lower-cased text.
type Table struct {
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
	// MinCompound gates the table on a sentiment compound strictly above it.
	MinCompound *float64 `yaml:"min_compound,omitempty"`
}

// Match reports whether lower contains any keyword of the table. The caller
// lower-cases the text once and reuses it across tables.
func (t Table) Match(lower string) bool {
	return ContainsAny(lower, t.Keywords)
}

// Allows reports whether the compound gate of the table is satisfied.
func (t Table) Allows(compound float64) bool {
	return t.MinCompound == nil || compound > *t.MinCompound
}

// PersonalityTables are the four indicator sets of the personality feature
// vector.
type PersonalityTables struct {
	Risk      []string `yaml:"risk"`
	Safe      []string `yaml:"safe"`
	Impulsive []string `yaml:"impulsive"`
	Emotional []string `yaml:"emotional"`
}

// CasualTables drive small-talk detection.
type CasualTables struct {
	Greetings        []string `yaml:"greetings"`
	Acknowledgements []string `yaml:"acknowledgements"`
	Financial        []string `yaml:"financial"`
}

// Set is the complete rule configuration.
type Set struct {
	Emotion     []Table           `yaml:"emotion"`
	Personality PersonalityTables `yaml:"personality"`
	Casual      CasualTables      `yaml:"casual"`
	Topics      []Table           `yaml:"topics"`
}

var (
	defaultOnce sync.Once
	defaultSet  *Set
)

// Default returns the embedded rule set. The embedded document is part of the
// binary, so a parse failure is a programming error.
func Default() *Set {
	defaultOnce.Do(func() {
		set, err := Parse(defaultRules)
		if err != nil {
			panic(fmt.Sprintf("embedded rules: %v", err))
		}
		defaultSet = set
	})
	return defaultSet
}

// Load reads and validates a rule set from a YAML file.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML rule set. Keywords are lower-cased and
// trimmed so matching can run against lower-cased text.
func Parse(data []byte) (*Set, error) {
	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("decode rules: %w", err)
	}

	normalizeTables(set.Emotion)
	normalizeTables(set.Topics)
	set.Personality.Risk = normalize(set.Personality.Risk)
	set.Personality.Safe = normalize(set.Personality.Safe)
	set.Personality.Impulsive = normalize(set.Personality.Impulsive)
	set.Personality.Emotional = normalize(set.Personality.Emotional)
	set.Casual.Greetings = normalize(set.Casual.Greetings)
	set.Casual.Acknowledgements = normalize(set.Casual.Acknowledgements)
	set.Casual.Financial = normalize(set.Casual.Financial)

	if err := set.Validate(); err != nil {
		return nil, err
	}
	return &set, nil
}

// Validate checks that ordered groups are non-empty, labelled and disjoint.
func (s *Set) Validate() error {
	if len(s.Emotion) == 0 {
		return fmt.Errorf("%w: no emotion tables", ErrInvalidRules)
	}
	if err := validateGroup("emotion", s.Emotion); err != nil {
		return err
	}
	if err := validateGroup("topics", s.Topics); err != nil {
		return err
	}

	personality := []Table{
		{Label: "risk", Keywords: s.Personality.Risk},
		{Label: "safe", Keywords: s.Personality.Safe},
		{Label: "impulsive", Keywords: s.Personality.Impulsive},
		{Label: "emotional", Keywords: s.Personality.Emotional},
	}
	if err := validateGroup("personality", personality); err != nil {
		return err
	}

	if len(s.Casual.Financial) == 0 {
		return fmt.Errorf("%w: casual.financial is empty", ErrInvalidRules)
	}
	return nil
}

// ContainsAny reports whether text contains any of the keywords.
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func validateGroup(group string, tables []Table) error {
	seen := make(map[string]string)
	labels := make(map[string]struct{})
	for i, table := range tables {
		if table.Label == "" {
			return fmt.Errorf("%w: %s[%d] has no label", ErrInvalidRules, group, i)
		}
		if _, dup := labels[table.Label]; dup {
			return fmt.Errorf("%w: %s label %q repeated", ErrInvalidRules, group, table.Label)
		}
		labels[table.Label] = struct{}{}

		if len(table.Keywords) == 0 {
			return fmt.Errorf("%w: %s %q has no keywords", ErrInvalidRules, group, table.Label)
		}
		for _, kw := range table.Keywords {
			if owner, ok := seen[kw]; ok && owner != table.Label {
				return fmt.Errorf("%w: %s keyword %q in both %q and %q", ErrInvalidRules, group, kw, owner, table.Label)
			}
			seen[kw] = table.Label
		}
	}
	return nil
}

func normalizeTables(tables []Table) {
	for i := range tables {
		tables[i].Label = strings.TrimSpace(tables[i].Label)
		tables[i].Keywords = normalize(tables[i].Keywords)
	}
}

func normalize(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}
