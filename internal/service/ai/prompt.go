package ai

import (
	"fmt"
	"strings"

	"github.com/finpsyche/advisor/backend/internal/model/profile"
)

// PromptTemplate holds the per-personality instructions layered on top of a
// profile.
type PromptTemplate struct {
	SystemPrompt     string
	PersonalityHints []string
	ContextRules     []string
}

// PromptManager builds system and user prompts for advice generation.
type PromptManager struct {
	templates map[string]*PromptTemplate
}

// NewPromptManager creates a prompt manager with the default templates.
func NewPromptManager() *PromptManager {
	pm := &PromptManager{templates: make(map[string]*PromptTemplate)}
	pm.loadDefaultTemplates()
	return pm
}

// BuildSystemPrompt describes the advisor role for the profile and the
// user's current emotion.
func (pm *PromptManager) BuildSystemPrompt(p profile.Profile, emotion string, emotionScore float64) string {
	var b strings.Builder
	b.WriteString("You are a friendly, responsible personal finance advisor. ")
	b.WriteString("Give practical advice in plain language and never promise returns.\n\n")

	fmt.Fprintf(&b, "Investor personality: %s (%s)\n", p.Personality, p.Title)
	fmt.Fprintf(&b, "Tone: %s\n", p.Tone)
	if p.PromptHint != "" {
		fmt.Fprintf(&b, "Guidance: %s\n", p.PromptHint)
	}
	if p.BaseAdvice != "" {
		fmt.Fprintf(&b, "Baseline recommendation: %s\n", p.BaseAdvice)
	}

	if tpl, ok := pm.templates[p.Personality]; ok {
		b.WriteString("\n")
		b.WriteString(tpl.SystemPrompt)
		if len(tpl.PersonalityHints) > 0 {
			b.WriteString("\nHints:\n- ")
			b.WriteString(strings.Join(tpl.PersonalityHints, "\n- "))
		}
		if len(tpl.ContextRules) > 0 {
			b.WriteString("\nRules:\n- ")
			b.WriteString(strings.Join(tpl.ContextRules, "\n- "))
		}
		b.WriteString("\n")
	}

	if emotion != "" {
		fmt.Fprintf(&b, "\nThe user currently sounds %s (intensity %.2f). %s", strings.ToLower(emotion), emotionScore, describeEmotion(emotion))
	}
	return b.String()
}

// BuildUserPrompt asks for the acknowledgement line and the financial_advice
// line only. A reply carrying personality_type would be read by advice.Clean
// as a CSV record and split on its commas.
func (pm *PromptManager) BuildUserPrompt(message, personality, emotion string, snippets []string) string {
	context := "General financial advice"
	if len(snippets) > 0 {
		n := min(len(snippets), 2)
		parts := make([]string, 0, n)
		for _, s := range snippets[:n] {
			parts = append(parts, snippetAdvice(s))
		}
		context = strings.Join(parts, " ")
	}

	return fmt.Sprintf(`Format your response as exactly two lines:
I understand: '[user message]'
financial_advice: [your advice in 2-3 sentences on a single line]

Do not add any other labels.

User: %s
Personality: %s
Emotion: %s
Context: %s

Give personalized advice:`, message, personality, emotion, context)
}

// snippetAdvice keeps only the advice text of a labelled knowledge-base
// snippet so the labels are not echoed back.
func snippetAdvice(snippet string) string {
	for _, line := range strings.Split(snippet, "\n") {
		if value, ok := strings.CutPrefix(strings.TrimSpace(line), "financial_advice:"); ok {
			return strings.TrimSpace(value)
		}
	}
	return strings.TrimSpace(snippet)
}

func describeEmotion(emotion string) string {
	switch emotion {
	case "Stress":
		return "Acknowledge the pressure and offer one small, concrete step."
	case "Fear":
		return "Reassure them that fear is normal and favour safe, gradual moves."
	case "Hesitation":
		return "Validate caution and suggest a low-risk way to start."
	case "Overconfidence":
		return "Gently ground them: markets are unpredictable and position sizing matters."
	case "Excitement":
		return "Channel the energy into a written plan before acting."
	case "Confidence":
		return "Support the confidence while keeping the plan diversified."
	case "Calm":
		return "Build on the calm with steady, long-term habits."
	default:
		return ""
	}
}

func (pm *PromptManager) loadDefaultTemplates() {
	pm.templates["Risk-Taker"] = &PromptTemplate{
		SystemPrompt: "This user chases growth and is comfortable with volatility.",
		PersonalityHints: []string{
			"Acknowledge the upside they are looking for before discussing risk",
			"Always mention a maximum position size for speculative assets",
		},
		ContextRules: []string{
			"Never encourage borrowing to invest",
		},
	}
	pm.templates["Risk-Averse"] = &PromptTemplate{
		SystemPrompt: "This user values safety of capital above returns.",
		PersonalityHints: []string{
			"Prefer deposits, debt funds and small SIPs",
			"Explain risk in everyday terms",
		},
		ContextRules: []string{
			"Do not push equity-heavy allocations",
		},
	}
	pm.templates["Impulsive"] = &PromptTemplate{
		SystemPrompt: "This user tends to act on impulse and fear of missing out.",
		PersonalityHints: []string{
			"Introduce a waiting rule or a spending limit",
		},
		ContextRules: []string{
			"Never create urgency",
		},
	}
	pm.templates["Emotional"] = &PromptTemplate{
		SystemPrompt: "This user's money decisions are driven by worry and market news.",
		PersonalityHints: []string{
			"Name the feeling before giving advice",
			"Focus on long-term goals and an emergency fund",
		},
	}
}
