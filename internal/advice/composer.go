package advice

import (
	"strings"

	"github.com/finpsyche/advisor/backend/internal/analysis/emotion"
	"github.com/finpsyche/advisor/backend/internal/analysis/personality"
	"github.com/finpsyche/advisor/backend/internal/analysis/rules"
)

const (
	maxContextChars  = 350
	maxContextPieces = 2
	contextPrefix    = "Related guidance: "
	clarifyingPrompt = "Could you tell me a bit more about your situation? For example, are you thinking about investing, saving, paying off debt or setting a budget?"
)

const (
	topicStocks    = "stocks"
	topicSavings   = "savings"
	topicDebt      = "debt"
	topicBudgeting = "budgeting"
)

// Draft is an ordered list of advice fragments.
type Draft []string

// String joins the fragments with single spaces.
func (d Draft) String() string {
	parts := make([]string, 0, len(d))
	for _, f := range d {
		if f = strings.TrimSpace(f); f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}

var emotionGuidance = map[emotion.Label]string{
	emotion.Stress:         "Track expenses daily and set up automatic savings that move money before you can spend it. Build an emergency fund first.",
	emotion.Fear:           "Fear is normal, but don't let it paralyze your decisions. Start with small, safe steps like building an emergency fund.",
	emotion.Hesitation:     "It's okay to be cautious. Research thoroughly before deciding and start with low-risk investments.",
	emotion.Overconfidence: "Stay grounded and remember that markets are unpredictable. Diversify and never invest more than you can afford to lose.",
	emotion.Excitement:     "Channel this energy into careful planning rather than impulsive action. Create a budget and stick to it.",
	emotion.Confidence:     "Your confidence is good, but keep a balanced approach and diversify your portfolio.",
	emotion.Calm:           "Your calm approach is valuable for long-term planning. Keep making steady, consistent investments.",
}

// Composer builds deterministic advice when no language model is available.
type Composer struct {
	topics []rules.Table
}

// NewComposer builds a composer over the ordered topic tables.
func NewComposer(topics []rules.Table) *Composer {
	return &Composer{topics: topics}
}

// Compose drafts advice for message and returns it cleaned. Snippets are
// ordered best-first.
func (c *Composer) Compose(message string, p personality.Result, e emotion.Result, snippets []string) string {
	topic := c.topic(strings.ToLower(message))
	riskTolerant := isRiskTolerant(p.Label)
	stressed := isStressed(e.Label)
	context := contextExcerpt(snippets)

	var draft Draft
	switch topic {
	case topicStocks:
		draft = append(draft, stocksTemplate(riskTolerant, stressed))
	case topicSavings:
		if stressed {
			draft = append(draft, "Saving while you feel under pressure is hard, so start small. Automate a modest transfer on payday and build toward three months of expenses in an emergency fund before anything else.")
		} else {
			draft = append(draft, "A good rhythm is to pay yourself first. Automate savings on payday, keep three to six months of expenses in an emergency fund and move the surplus into a recurring deposit or a SIP.")
		}
	case topicDebt:
		if stressed {
			draft = append(draft, "Debt feels heavy, but it can be tackled one step at a time. List every loan with its interest rate, keep up the minimum payments and put any extra money on the costliest debt first.")
		} else {
			draft = append(draft, "Prioritise high-interest debt such as credit cards before investing. Consider the avalanche method and avoid taking new loans for spending.")
		}
	case topicBudgeting:
		if p.Label == personality.Impulsive {
			draft = append(draft, "Try the 24-hour rule before any non-essential purchase. Set a weekly spending limit and keep a separate account for fun money so impulse buys never touch your savings.")
		} else {
			draft = append(draft, "Start with the 50/30/20 rule. Put 50% of income toward needs, 30% toward wants and 20% toward savings and debt repayment, then review it monthly.")
		}
	default:
		if context == "" {
			return Clean(clarifyingPrompt)
		}
		draft = append(draft, guidance(e.Label))
	}

	if context != "" {
		draft = append(draft, contextPrefix+context)
	}
	return Clean(draft.String())
}

func (c *Composer) topic(lower string) string {
	for _, t := range c.topics {
		if t.Match(lower) {
			return t.Label
		}
	}
	return ""
}

func stocksTemplate(riskTolerant, stressed bool) string {
	switch {
	case riskTolerant && stressed:
		return "You like taking risks, but stress can push you into rushed trades. Pause new positions for now, keep no more than 10% in any single stock and let a diversified index fund carry most of your portfolio."
	case riskTolerant:
		return "With your appetite for risk, a growth-tilted mix can work: around 70% equity across large, mid and small caps, 20% in index funds and 10% in debt. Never put more than 10% into a single high-risk asset."
	case stressed:
		return "When markets make you anxious, a conservative allocation helps you stay invested. Consider 40% equity through index funds, 40% debt funds and 20% in fixed deposits, and invest gradually through a SIP."
	default:
		return "A balanced allocation suits steady investing: about 50% equity, 30% debt, 10% gold and 10% cash. Invest monthly through a SIP and rebalance once a year."
	}
}

func guidance(label emotion.Label) string {
	if g, ok := emotionGuidance[label]; ok {
		return g
	}
	return emotionGuidance[emotion.Calm]
}

func isRiskTolerant(label personality.Label) bool {
	return strings.Contains(strings.ToLower(string(label)), "taker")
}

func isStressed(label emotion.Label) bool {
	l := strings.ToLower(string(label))
	return strings.Contains(l, "stress") || strings.Contains(l, "fear") || strings.Contains(l, "anx")
}

// contextExcerpt cleans the top snippets and caps the result on a word
// boundary.
func contextExcerpt(snippets []string) string {
	var pieces []string
	for _, s := range snippets {
		if len(pieces) == maxContextPieces {
			break
		}
		cleaned := Clean(s)
		if cleaned == Disclaimer {
			continue
		}
		pieces = append(pieces, cleaned)
	}
	return truncateWords(strings.Join(pieces, " "), maxContextChars)
}

func truncateWords(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := string(runes[:limit])
	if i := strings.LastIndexByte(cut, ' '); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:") + "..."
}
