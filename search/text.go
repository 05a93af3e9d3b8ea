package search

import "strings"

// Stop words filtered out before lexical scoring. Tender documents are
// mostly French with English technical vocabulary mixed in, so both
// languages are covered.
var stopWords = map[string]bool{
	// French
	"le": true, "la": true, "les": true, "un": true, "une": true, "des": true,
	"de": true, "du": true, "au": true, "aux": true, "et": true, "ou": true,
	"que": true, "qui": true, "dans": true, "pour": true, "par": true,
	"sur": true, "avec": true, "sans": true, "est": true, "sont": true,
	"être": true, "avoir": true, "ce": true, "cette": true, "ces": true,
	"son": true, "sa": true, "ses": true, "leur": true, "leurs": true,
	"ne": true, "pas": true, "plus": true, "votre": true, "vos": true,
	"nous": true, "vous": true, "il": true, "elle": true, "en": true,
	// English
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		// Lowercase and trim punctuation
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}«»"))

		// Skip stop words and empty strings
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// lexicalRank scores how well a document covers the query terms.
// Each query term contributes tf/(tf+1), where tf is the term's
// frequency in the document, and the sum is averaged over the query
// terms. The result is in [0, 1): 0 when no term appears, approaching
// 1 as every term appears often.
func lexicalRank(queryTerms []string, document string) float32 {
	if len(queryTerms) == 0 {
		return 0
	}

	docTerms := tokenizeAndFilter(document)
	frequencies := make(map[string]int, len(docTerms))
	for _, term := range docTerms {
		frequencies[term]++
	}

	var total float32
	for _, term := range queryTerms {
		tf := float32(frequencies[term])
		total += tf / (tf + 1)
	}
	return total / float32(len(queryTerms))
}
