package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRulesPriorityOrder(t *testing.T) {
	set := Default()

	labels := make([]string, 0, len(set.Emotion))
	for _, table := range set.Emotion {
		labels = append(labels, table.Label)
	}
	assert.Equal(t, []string{"Stress", "Fear", "Hesitation", "Overconfidence", "Excitement"}, labels)

	topics := make([]string, 0, len(set.Topics))
	for _, table := range set.Topics {
		topics = append(topics, table.Label)
	}
	assert.Equal(t, []string{"stocks", "savings", "debt", "budgeting"}, topics)
}

func TestDefaultRulesGates(t *testing.T) {
	set := Default()
	for _, table := range set.Emotion {
		switch table.Label {
		case "Overconfidence", "Excitement":
			require.NotNil(t, table.MinCompound, table.Label)
			assert.False(t, table.Allows(0.3), "gate must be strict for %s", table.Label)
			assert.True(t, table.Allows(0.31))
		default:
			assert.Nil(t, table.MinCompound, table.Label)
			assert.True(t, table.Allows(-1))
		}
	}
}

func TestTableMatch(t *testing.T) {
	table := Table{Label: "Fear", Keywords: []string{"crash", "not sure"}}

	assert.True(t, table.Match("what if the market crashes"))
	assert.True(t, table.Match("i'm not sure"))
	assert.False(t, table.Match("all good"))
}

func TestParseNormalizesKeywords(t *testing.T) {
	set, err := Parse([]byte(`
emotion:
  - label: Fear
    keywords: ["  CRASH ", ""]
personality:
  risk: [YOLO]
  safe: [" Low Risk "]
  impulsive: [FOMO]
  emotional: [Nervous]
casual:
  financial: [Invest]
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"crash"}, set.Emotion[0].Keywords)
	assert.Equal(t, []string{"yolo"}, set.Personality.Risk)
	assert.Equal(t, []string{"low risk"}, set.Personality.Safe)
	assert.Equal(t, []string{"invest"}, set.Casual.Financial)
}

func TestParseRejectsInvalidSets(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "no emotion tables",
			doc:  "casual:\n  financial: [invest]\n",
		},
		{
			name: "missing label",
			doc:  "emotion:\n  - keywords: [crash]\ncasual:\n  financial: [invest]\n",
		},
		{
			name: "empty table",
			doc:  "emotion:\n  - label: Fear\ncasual:\n  financial: [invest]\n",
		},
		{
			name: "keyword shared across tables",
			doc:  "emotion:\n  - label: Fear\n    keywords: [panic]\n  - label: Stress\n    keywords: [panic]\ncasual:\n  financial: [invest]\n",
		},
		{
			name: "repeated label",
			doc:  "emotion:\n  - label: Fear\n    keywords: [panic]\n  - label: Fear\n    keywords: [crash]\ncasual:\n  financial: [invest]\n",
		},
		{
			name: "empty personality list",
			doc:  "emotion:\n  - label: Fear\n    keywords: [panic]\npersonality:\n  risk: [yolo]\ncasual:\n  financial: [invest]\n",
		},
		{
			name: "no financial keywords",
			doc:  "emotion:\n  - label: Fear\n    keywords: [panic]\npersonality:\n  risk: [yolo]\n  safe: [fd]\n  impulsive: [fomo]\n  emotional: [nervous]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidRules)
		})
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	_, err := Parse([]byte("emotion: [unclosed"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidRules)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, defaultRules, 0o600))

	set, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, set.Emotion, len(Default().Emotion))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
