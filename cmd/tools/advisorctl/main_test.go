package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	t.Setenv("MODEL_DIR", t.TempDir())
	t.Setenv("EMOTION_TRAINING_CSV", filepath.Join(t.TempDir(), "none.csv"))
	t.Setenv("RULES_FILE", "")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func TestClassifyCommand(t *testing.T) {
	out := run(t, "", "classify", "I want to gamble on crypto, yolo")

	var got classification
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.False(t, got.Casual)
	assert.Equal(t, "Risk-Taker", got.Personality)
	assert.NotEmpty(t, got.Emotion)

	out = run(t, "", "classify", "ok", "thanks")
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Casual)
}

func TestCleanCommand(t *testing.T) {
	out := run(t, "", "clean", "personality_type: Neutral\nfinancial_advice: Diversify your portfolio.")
	assert.Equal(t, "Diversify your portfolio.\n", out)

	out = run(t, "", "clean")
	assert.Equal(t, "Please consult with a financial advisor for personalized advice.\n", out)
}

func TestTrainCommandSkipsMissingData(t *testing.T) {
	out := run(t, "", "train")
	assert.Contains(t, out, "emotion: SKIPPED")
	assert.Contains(t, out, "personality: OK (5 labels)")
}
