package knowledge

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode"
)

// Retriever returns advice snippets ordered best-first. An empty slice is a
// valid answer.
type Retriever interface {
	Retrieve(ctx context.Context, query, personality, emotion string, k int) ([]string, error)
}

// Entry is one knowledge-base row.
type Entry struct {
	Personality string
	Emotion     string
	Advice      string

	terms map[string]struct{}
}

// Snippet renders the entry the way the CSV loader did: one labelled field
// per line.
func (e Entry) Snippet() string {
	return fmt.Sprintf("personality_type: %s\nemotion: %s\nfinancial_advice: %s", e.Personality, e.Emotion, e.Advice)
}

// Base is an in-memory lexical retriever over a CSV knowledge base.
type Base struct {
	entries []Entry
}

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "i": {}, "me": {}, "my": {}, "to": {}, "of": {}, "and": {}, "or": {},
	"in": {}, "on": {}, "for": {}, "is": {}, "am": {}, "are": {}, "it": {}, "be": {}, "should": {},
	"what": {}, "how": {}, "do": {}, "you": {}, "your": {}, "with": {}, "about": {}, "at": {}, "this": {},
	"that": {}, "can": {}, "will": {}, "so": {}, "if": {}, "but": {}, "im": {}, "want": {},
}

const (
	personalityBonus = 2.0
	emotionBonus     = 1.0
)

// Load reads a knowledge base with personality_type, emotion and
// financial_advice columns.
func Load(path string) (*Base, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open knowledge base: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a knowledge base from r.
func Parse(r io.Reader) (*Base, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return NewBase(nil), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read knowledge base header: %w", err)
	}

	cols := map[string]int{"personality_type": -1, "emotion": -1, "financial_advice": -1}
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := cols[key]; ok {
			cols[key] = i
		}
	}
	for name, idx := range cols {
		if idx < 0 {
			return nil, fmt.Errorf("knowledge base missing column %q", name)
		}
	}

	var entries []Entry
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read knowledge base: %w", err)
		}
		get := func(col string) string {
			if idx := cols[col]; idx < len(record) {
				return strings.TrimSpace(record[idx])
			}
			return ""
		}
		entry := Entry{
			Personality: get("personality_type"),
			Emotion:     get("emotion"),
			Advice:      get("financial_advice"),
		}
		if entry.Advice == "" {
			continue
		}
		entries = append(entries, entry)
	}
	return NewBase(entries), nil
}

// NewBase indexes entries.
func NewBase(entries []Entry) *Base {
	b := &Base{entries: make([]Entry, len(entries))}
	for i, e := range entries {
		e.terms = terms(e.Advice + " " + e.Personality + " " + e.Emotion)
		b.entries[i] = e
	}
	return b
}

// Len returns the number of entries.
func (b *Base) Len() int {
	return len(b.entries)
}

type scored struct {
	index int
	score float64
}

// Retrieve implements Retriever. Entries are ranked by query-term overlap
// plus bonuses for matching personality and emotion; entries with no
// overlap at all are never returned.
func (b *Base) Retrieve(ctx context.Context, query, personality, emotion string, k int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 || len(b.entries) == 0 {
		return nil, nil
	}

	augmented := fmt.Sprintf("%s personality:%s emotion:%s", query, personality, emotion)
	queryTerms := terms(augmented)

	var ranked []scored
	for i, e := range b.entries {
		var score float64
		for t := range queryTerms {
			if _, ok := e.terms[t]; ok {
				score++
			}
		}
		if score == 0 {
			continue
		}
		if personality != "" && strings.EqualFold(e.Personality, personality) {
			score += personalityBonus
		}
		if emotion != "" && strings.EqualFold(e.Emotion, emotion) {
			score += emotionBonus
		}
		ranked = append(ranked, scored{index: i, score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}

	snippets := make([]string, 0, len(ranked))
	for _, r := range ranked {
		snippets = append(snippets, b.entries[r.index].Snippet())
	}
	return snippets, nil
}

func terms(text string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	}) {
		w = strings.Trim(w, "-")
		if len(w) < 2 {
			continue
		}
		if _, stop := stopwords[w]; stop {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}
