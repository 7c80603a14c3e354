package advice

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Disclaimer is returned when nothing speakable survives cleaning.
const Disclaimer = "Please consult with a financial advisor for personalized advice."

const (
	minValidLength    = 10
	minLineLength     = 5
	minSentenceLength = 20
	quoteChars        = "\"'“”‘’`"
)

var (
	personalityTag = regexp.MustCompile(`(?i)personality_type`)
	adviceLabel    = regexp.MustCompile(`(?i)financial_advice\s*:`)
	// nextLabel ends a labelled advice field.
	nextLabel = regexp.MustCompile(`(?i)\n|personality_type\s*:|emotion\s*:|financial_advice\s*:|i understand\s*:`)

	metadataPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)personality_type\s*:\s*[\w-]*\s*[,;]?`),
		regexp.MustCompile(`(?i)emotion\s*:\s*[\w-]*\s*[,;]?`),
		regexp.MustCompile(`(?i)financial_advice\s*:`),
		regexp.MustCompile(`(?i)i understand\s*:[^\n]*`),
	}

	labelLineStart = regexp.MustCompile(`(?i)^(personality_type|financial_advice|emotion\s*:|i understand\s*:)`)
	leadingLabel   = regexp.MustCompile(`(?i)^(?:(?:personality_type|financial_advice)\s*:?|(?:emotion|i understand)\s*:)\s*`)
	strayTokens    = []*regexp.Regexp{
		regexp.MustCompile(`(?i)personality_type\s*:?`),
		regexp.MustCompile(`(?i)financial_advice\s*:?`),
		regexp.MustCompile(`(?i)emotion\s*:`),
		regexp.MustCompile(`(?i)i understand\s*:`),
	}
	anyLabel = regexp.MustCompile(`(?i)personality_type|financial_advice|emotion\s*:|i understand\s*:`)
	sentence = regexp.MustCompile(`[^.!?]+[.!?]*`)
	spaces   = regexp.MustCompile(`\s+`)

	leadingPunct = regexp.MustCompile(`^[\s.,;:!?]+`)
)

const orphanPunct = " \t.,;:!?"

// Clean turns raw advice, possibly carrying knowledge-base labels or a model's
// labelled answer format, into plain speakable prose. The result is never
// empty and carries no metadata labels. Clean(Clean(x)) == Clean(x).
func Clean(text string) string {
	s := extractCSVAdvice(text)
	s = extractLabelledAdvice(s)
	s = stripMetadata(s)
	s = filterLines(s)
	s = tidy(s)

	if utf8.RuneCountInString(s) > minValidLength && !labelLineStart.MatchString(s) {
		return s
	}
	if fallback, ok := lastSentence(text); ok {
		return fallback
	}
	return Disclaimer
}

// extractCSVAdvice recovers the advice column of a
// "personality_type,emotion,financial_advice" record.
func extractCSVAdvice(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.Contains(trimmed, ",") || !personalityTag.MatchString(trimmed) || startsWithQuote(trimmed) {
		return text
	}
	parts := strings.Split(trimmed, ",")
	if len(parts) < 3 {
		return text
	}
	return strings.Trim(strings.TrimSpace(parts[len(parts)-1]), quoteChars)
}

func extractLabelledAdvice(text string) string {
	loc := adviceLabel.FindStringIndex(text)
	if loc == nil {
		return text
	}
	rest := strings.TrimLeft(text[loc[1]:], " \t\r\n")
	if end := nextLabel.FindStringIndex(rest); end != nil {
		rest = rest[:end[0]]
	}
	if value := strings.TrimSpace(rest); value != "" {
		return value
	}
	return text
}

func stripMetadata(text string) string {
	for _, re := range metadataPatterns {
		text = removeAll(re, text)
	}
	return text
}

// removeAll deletes every match of re. Punctuation left dangling at a seam,
// after a sentence end or at the start of a line, is dropped with the label;
// the rest of the text is not touched.
func removeAll(re *regexp.Regexp, text string) string {
	for {
		loc := re.FindStringIndex(text)
		if loc == nil || loc[0] == loc[1] {
			return text
		}
		left := strings.TrimRight(text[:loc[0]], " \t")
		right := strings.TrimLeft(text[loc[1]:], " \t")
		if left == "" || strings.HasSuffix(left, "\n") || strings.ContainsAny(left[len(left)-1:], ".,;:!?") {
			right = strings.TrimLeft(right, orphanPunct)
		}
		switch {
		case left == "" || right == "" || strings.HasSuffix(left, "\n") || strings.HasPrefix(right, "\n"):
			text = left + right
		default:
			text = left + " " + right
		}
	}
}

func filterLines(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || labelLineStart.MatchString(line) {
			continue
		}
		line = strings.TrimSpace(stripMetadata(line))
		if utf8.RuneCountInString(line) > minLineLength {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, " ")
}

// tidy strips quotes, stray labels and orphaned punctuation until nothing
// changes.
func tidy(text string) string {
	for {
		next := strings.Trim(text, " \t\r\n"+quoteChars)
		next = removeAll(leadingLabel, next)
		for _, re := range strayTokens {
			next = removeAll(re, next)
		}
		next = stripMetadata(next)
		next = spaces.ReplaceAllString(next, " ")
		next = strings.TrimSpace(leadingPunct.ReplaceAllString(next, ""))
		if next == text {
			return next
		}
		text = next
	}
}

// lastSentence scans the original text from the end for a label-free
// sentence.
func lastSentence(text string) (string, bool) {
	sentences := sentence.FindAllString(text, -1)
	for i := len(sentences) - 1; i >= 0; i-- {
		if anyLabel.MatchString(sentences[i]) {
			continue
		}
		s := tidy(sentences[i])
		if utf8.RuneCountInString(s) > minSentenceLength {
			return s, true
		}
	}
	return "", false
}

func startsWithQuote(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return strings.ContainsRune(quoteChars, r)
}
