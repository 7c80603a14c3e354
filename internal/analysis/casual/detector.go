package casual

import (
	"strings"
	"unicode"

	"github.com/finpsyche/advisor/backend/internal/analysis/rules"
)

const maxCasualTokens = 3

var farewells = map[string]struct{}{
	"bye": {}, "goodbye": {}, "see you": {}, "good night": {},
}

// Detector recognises small talk that needs no financial analysis.
type Detector struct {
	greetings        []string
	acknowledgements map[string]struct{}
	greetingSet      map[string]struct{}
	financial        []string
}

// NewDetector builds a detector from the casual tables.
func NewDetector(tables rules.CasualTables) *Detector {
	d := &Detector{
		greetings:        tables.Greetings,
		acknowledgements: make(map[string]struct{}, len(tables.Acknowledgements)),
		greetingSet:      make(map[string]struct{}, len(tables.Greetings)),
		financial:        tables.Financial,
	}
	for _, g := range tables.Greetings {
		d.greetingSet[g] = struct{}{}
	}
	for _, a := range tables.Acknowledgements {
		d.acknowledgements[a] = struct{}{}
	}
	return d
}

// IsCasual reports whether message is small talk.
func (d *Detector) IsCasual(message string) bool {
	normalized := normalize(message)
	if normalized == "" {
		return true
	}
	if _, ok := d.greetingSet[normalized]; ok {
		return true
	}
	if _, ok := d.acknowledgements[normalized]; ok {
		return true
	}
	if d.startsWithGreeting(normalized) {
		return true
	}

	words := tokens(normalized)
	return len(words) <= maxCasualTokens && !d.mentionsFinance(normalized, words)
}

// Reply returns a canned answer for a casual message.
func (d *Detector) Reply(message string) string {
	normalized := normalize(message)
	switch {
	case normalized == "":
		return "I'm here whenever you're ready. Tell me what's on your mind about your money."
	case isFarewell(normalized):
		return "Take care! Come back any time you want to talk through a money decision."
	case isThanks(normalized):
		return "You're welcome! Let me know if there's anything else about your finances I can help with."
	case d.startsWithGreeting(normalized) || d.isGreeting(normalized):
		return "Hi there! I'm your financial wellness assistant. Ask me about saving, investing, budgeting or debt and I'll tailor advice to how you feel about it."
	default:
		return "Got it. Whenever you're ready, ask me a question about your money and I'll help you think it through."
	}
}

func (d *Detector) isGreeting(normalized string) bool {
	_, ok := d.greetingSet[normalized]
	return ok
}

// startsWithGreeting requires the greeting to end at a word boundary so that
// "high risk" is not read as "hi".
func (d *Detector) startsWithGreeting(normalized string) bool {
	for _, g := range d.greetings {
		if !strings.HasPrefix(normalized, g) {
			continue
		}
		rest := normalized[len(g):]
		if rest == "" {
			return true
		}
		r := []rune(rest)[0]
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			return true
		}
	}
	return false
}

// mentionsFinance matches single-word keywords as token prefixes and
// multi-word keywords as substrings.
func (d *Detector) mentionsFinance(normalized string, words []string) bool {
	for _, kw := range d.financial {
		if strings.Contains(kw, " ") {
			if strings.Contains(normalized, kw) {
				return true
			}
			continue
		}
		for _, w := range words {
			if strings.HasPrefix(w, kw) {
				return true
			}
		}
	}
	return false
}

func isFarewell(normalized string) bool {
	for f := range farewells {
		if strings.Contains(normalized, f) {
			return true
		}
	}
	return false
}

func isThanks(normalized string) bool {
	for _, tok := range tokens(normalized) {
		if tok == "thx" || tok == "ty" || strings.HasPrefix(tok, "thank") {
			return true
		}
	}
	return false
}

func normalize(message string) string {
	s := strings.ToLower(strings.TrimSpace(message))
	s = strings.TrimRightFunc(s, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSpace(r)
	})
	return strings.Join(strings.Fields(s), " ")
}

func tokens(normalized string) []string {
	return strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}
