package profile

// Profile describes how the advisor speaks to one investor personality.
type Profile struct {
	Personality string   `json:"personality"`
	Title       string   `json:"title"`
	Tone        string   `json:"tone"`
	BaseAdvice  string   `json:"baseAdvice"`
	PromptHint  string   `json:"promptHint"`
	VoiceID     string   `json:"voiceId,omitempty"`
	Traits      []string `json:"traits,omitempty"`
}

// Seed provides one profile per personality label.
func Seed() []Profile {
	return []Profile{
		{
			Personality: "Risk-Taker",
			Title:       "Growth Strategist",
			Tone:        "energetic, direct, grounded",
			BaseAdvice:  "Diversify your portfolio and never invest more than 10% in a single high-risk asset.",
			PromptHint:  "Respect their appetite for growth but always name the downside and a position-size limit.",
			VoiceID:     "en_male_glen_emo_v2_mars_bigtts",
			Traits:      []string{"bold", "growth-seeking", "tolerates volatility"},
		},
		{
			Personality: "Risk-Averse",
			Title:       "Steady Planner",
			Tone:        "reassuring, patient, concrete",
			BaseAdvice:  "Consider low-risk investments like Fixed Deposits (FDs) or SIPs in debt funds for steady returns.",
			PromptHint:  "Lead with capital safety and small first steps. Avoid jargon and big percentages.",
			VoiceID:     "en_female_candice_emo_v2_mars_bigtts",
			Traits:      []string{"cautious", "security-first", "prefers guarantees"},
		},
		{
			Personality: "Neutral",
			Title:       "Balanced Advisor",
			Tone:        "clear, even-handed, practical",
			BaseAdvice:  "Maintain a balanced portfolio: 50% equity, 30% debt, 10% gold, 10% cash.",
			PromptHint:  "Offer a balanced allocation and a simple review habit.",
			VoiceID:     "en_male_sylus_emo_v2_mars_bigtts",
			Traits:      []string{"pragmatic", "moderate", "open to guidance"},
		},
		{
			Personality: "Impulsive",
			Title:       "Habit Coach",
			Tone:        "friendly, firm, action-oriented",
			BaseAdvice:  "Use the 24-hour rule before purchases above Rs 5000. Create a monthly budget.",
			PromptHint:  "Slow them down with one concrete rule they can apply today.",
			VoiceID:     "en_male_corey_emo_v2_mars_bigtts",
			Traits:      []string{"spontaneous", "fast-moving", "fomo-prone"},
		},
		{
			Personality: "Emotional",
			Title:       "Calm Companion",
			Tone:        "gentle, empathetic, steady",
			BaseAdvice:  "Focus on long-term goals rather than daily market movements. Build an emergency fund first.",
			PromptHint:  "Acknowledge the feeling first, then give one calming and practical step.",
			VoiceID:     "en_female_skye_emo_v2_mars_bigtts",
			Traits:      []string{"sensitive to news", "anxious about losses", "values reassurance"},
		},
	}
}
