package godeck

import (
	"strings"
	"unicode"
)

// snippetMaxLen is the approximate maximum character length for a snippet.
const snippetMaxLen = 200

// extractSnippet returns the one or two lines or sentences of content that
// share the most words with queryWords. When nothing matches, the first line
// is returned, truncated to snippetMaxLen.
func extractSnippet(content string, queryWords map[string]bool) string {
	sentences := snippetSplitSentences(content)
	if len(sentences) == 0 {
		return ""
	}

	// Score each sentence by overlap with query words.
	type scored struct {
		text  string
		score int
	}
	scoredSentences := make([]scored, len(sentences))
	for i, s := range sentences {
		overlap := 0
		for w := range significantWords(s) {
			if queryWords[w] {
				overlap++
			}
		}
		scoredSentences[i] = scored{text: s, score: overlap}
	}

	bestIdx := 0
	bestScore := scoredSentences[0].score
	for i, s := range scoredSentences {
		if s.score > bestScore {
			bestScore = s.score
			bestIdx = i
		}
	}

	result := scoredSentences[bestIdx].text
	if bestScore == 0 {
		return truncate(result, snippetMaxLen)
	}

	// Try to add the better-scoring neighbour if it fits within the limit.
	if len(result) < snippetMaxLen && len(scoredSentences) > 1 {
		candidateIdx := -1
		candidateScore := 0
		for _, delta := range []int{1, -1} {
			adj := bestIdx + delta
			if adj >= 0 && adj < len(scoredSentences) && scoredSentences[adj].score > candidateScore {
				candidateScore = scoredSentences[adj].score
				candidateIdx = adj
			}
		}
		if candidateIdx >= 0 {
			combined := result + " " + scoredSentences[candidateIdx].text
			if candidateIdx < bestIdx {
				combined = scoredSentences[candidateIdx].text + " " + result
			}
			if len(combined) <= snippetMaxLen {
				result = combined
			}
		}
	}

	return truncate(result, snippetMaxLen)
}

// significantWords returns the set of lowercased words of at least three
// characters, excluding stop words. A trailing plural "s" is dropped so
// "channels" and "channel" match.
func significantWords(text string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if len(w) < 3 || stopWords[w] {
			continue
		}
		if len(w) > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss") {
			w = w[:len(w)-1]
		}
		words[w] = true
	}
	return words
}

// snippetSplitSentences splits text into lines, and lines into sentences at
// period/question/exclamation boundaries followed by whitespace or end of
// line.
func snippetSplitSentences(text string) []string {
	var sentences []string
	for _, line := range strings.Split(text, "\n") {
		var cur strings.Builder
		runes := []rune(line)
		for i := 0; i < len(runes); i++ {
			cur.WriteRune(runes[i])
			if runes[i] == '.' || runes[i] == '?' || runes[i] == '!' {
				if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\t' {
					if s := strings.TrimSpace(cur.String()); s != "" {
						sentences = append(sentences, s)
					}
					cur.Reset()
				}
			}
		}
		if s := strings.TrimSpace(cur.String()); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	head := string(r[:n-1])
	if cut := strings.LastIndex(head, " "); cut > 0 {
		head = head[:cut]
	}
	return head + "…"
}

// stopWords is a set of common English stop words to exclude from matching.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true,
	"but": true, "not": true, "you": true, "all": true,
	"can": true, "her": true, "was": true, "one": true,
	"our": true, "out": true, "has": true, "how": true,
	"that": true, "this": true, "with": true, "from": true,
	"have": true, "been": true, "were": true, "they": true,
	"their": true, "will": true, "would": true, "could": true,
	"should": true, "about": true, "which": true, "there": true,
	"these": true, "those": true, "then": true, "than": true,
	"them": true, "what": true, "when": true, "where": true,
	"your": true, "more": true, "some": true, "such": true,
	"only": true, "also": true, "very": true, "just": true,
	"into": true, "over": true, "each": true, "does": true,
	"most": true, "after": true, "before": true, "other": true,
	"being": true, "same": true, "both": true, "between": true,
}
